package assets

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"

	"catalogapi/internal/metrics"
)

// MaxImageSize is the largest accepted upload, 2 MiB
const MaxImageSize = 2 << 20

var (
	ErrUnsupportedImageType = errors.New("image must be png or jpeg")
	ErrImageTooLarge        = errors.New("image exceeds maximum size of 2 MiB")
)

// extensions maps accepted mime types to the stored file extension
var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

// Store writes uploaded images to a local directory and serves them back
// under a public URL prefix. Filenames are generated, never client-supplied.
type Store struct {
	dir        string
	publicPath string
	log        *slog.Logger
}

// NewStore creates the upload directory if needed and returns a store over it
func NewStore(dir, publicPath string, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	return &Store{
		dir:        dir,
		publicPath: publicPath,
		log:        log,
	}, nil
}

// Dir returns the directory uploads are written to
func (s *Store) Dir() string {
	return s.dir
}

// Save validates and stores an uploaded image, returning its public path
// (e.g. /uploads/3f1a....png). Validation happens before any byte is written.
func (s *Store) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext, ok := extensions[header.Header.Get("Content-Type")]
	if !ok {
		return "", ErrUnsupportedImageType
	}

	if header.Size > MaxImageSize {
		return "", ErrImageTooLarge
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("creating image file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("writing image file: %w", err)
	}

	return path.Join(s.publicPath, name), nil
}

// Remove deletes the file behind a public path, best-effort. Failures are
// logged and counted but never returned: asset cleanup must not block or
// fail the record mutation that triggered it.
func (s *Store) Remove(publicPath string) {
	if publicPath == "" {
		return
	}

	// Only the generated filename is trusted, never the full client-visible path
	target := filepath.Join(s.dir, filepath.Base(publicPath))

	if err := os.Remove(target); err != nil {
		s.log.Warn("failed to remove image file", "path", target, "error", err)
		metrics.AssetCleanupFailed()
		return
	}

	s.log.Debug("removed image file", "path", target)
}
