package assets

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogapi/pkg/logger"
)

// makeUpload builds a real multipart file + header the way net/http would
// hand them to a handler
func makeUpload(t *testing.T, filename, contentType string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	reader := multipart.NewReader(&buf, w.Boundary())
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	header := form.File["image"][0]
	file, err := header.Open()
	require.NoError(t, err)
	t.Cleanup(func() { file.Close() })

	return file, header
}

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir(), "/uploads", logger.New("error"))
	require.NoError(t, err)
	return store
}

func TestSave_PNG(t *testing.T) {
	store := newTestStore(t)
	content := []byte("fake png bytes")

	file, header := makeUpload(t, "logo.png", "image/png", content)

	path, err := store.Save(file, header)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, "/uploads/"))
	assert.True(t, strings.HasSuffix(path, ".png"))

	stored, err := os.ReadFile(filepath.Join(store.Dir(), filepath.Base(path)))
	require.NoError(t, err)
	assert.Equal(t, content, stored)
}

func TestSave_JPEGExtension(t *testing.T) {
	store := newTestStore(t)

	file, header := makeUpload(t, "photo.jpeg", "image/jpeg", []byte("fake jpeg"))

	path, err := store.Save(file, header)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".jpg"))
}

func TestSave_GeneratedNamesNeverCollide(t *testing.T) {
	store := newTestStore(t)

	file1, header1 := makeUpload(t, "a.png", "image/png", []byte("one"))
	file2, header2 := makeUpload(t, "a.png", "image/png", []byte("two"))

	path1, err := store.Save(file1, header1)
	require.NoError(t, err)
	path2, err := store.Save(file2, header2)
	require.NoError(t, err)

	assert.NotEqual(t, path1, path2)
}

func TestSave_RejectsUnsupportedType(t *testing.T) {
	store := newTestStore(t)

	file, header := makeUpload(t, "notes.txt", "text/plain", []byte("not an image"))

	_, err := store.Save(file, header)
	assert.ErrorIs(t, err, ErrUnsupportedImageType)

	// Rejected uploads must leave nothing behind
	entries, readErr := os.ReadDir(store.Dir())
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestSave_RejectsOversizedImage(t *testing.T) {
	store := newTestStore(t)

	file, header := makeUpload(t, "big.png", "image/png", make([]byte, MaxImageSize+1))

	_, err := store.Save(file, header)
	assert.ErrorIs(t, err, ErrImageTooLarge)

	entries, readErr := os.ReadDir(store.Dir())
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestSave_AcceptsExactlyMaxSize(t *testing.T) {
	store := newTestStore(t)

	file, header := makeUpload(t, "max.png", "image/png", make([]byte, MaxImageSize))

	_, err := store.Save(file, header)
	assert.NoError(t, err)
}

func TestRemove(t *testing.T) {
	store := newTestStore(t)

	file, header := makeUpload(t, "gone.png", "image/png", []byte("bytes"))
	path, err := store.Save(file, header)
	require.NoError(t, err)

	store.Remove(path)

	_, statErr := os.Stat(filepath.Join(store.Dir(), filepath.Base(path)))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRemove_MissingFileIsBestEffort(t *testing.T) {
	store := newTestStore(t)

	// Must not panic or surface an error
	store.Remove("/uploads/does-not-exist.png")
	store.Remove("")
}

func TestRemove_IgnoresPathTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, "/uploads", logger.New("error"))
	require.NoError(t, err)

	outside := filepath.Join(filepath.Dir(dir), "outside.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep me"), 0o644))
	t.Cleanup(func() { os.Remove(outside) })

	store.Remove("/uploads/../outside.txt")

	_, statErr := os.Stat(outside)
	assert.NoError(t, statErr)
}
