package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"catalogapi/internal/models"
	"catalogapi/internal/repository"
)

var (
	ErrNameRequired = errors.New("name is required")
)

// ImageStore abstracts the filesystem asset store so services can be tested
// without touching disk. Remove is best-effort and never reports failure.
type ImageStore interface {
	Save(file multipart.File, header *multipart.FileHeader) (string, error)
	Remove(publicPath string)
}

// CategoryInput carries the fields of a category create/update request.
// Image and ImageHeader are nil when no file was uploaded.
type CategoryInput struct {
	Name        string
	Detail      string
	Image       multipart.File
	ImageHeader *multipart.FileHeader
}

func (in *CategoryInput) hasImage() bool {
	return in.Image != nil && in.ImageHeader != nil
}

// CategoryService handles business logic for categories, coordinating the
// record store with the image asset store
type CategoryService struct {
	repo   repository.CategoryRepository
	images ImageStore
}

// NewCategoryService creates a new category service
func NewCategoryService(repo repository.CategoryRepository, images ImageStore) *CategoryService {
	return &CategoryService{
		repo:   repo,
		images: images,
	}
}

// Create validates and stores a new category, storing its image first if one
// was uploaded. Image validation failures abort before any record is written.
func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*models.Category, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrNameRequired
	}

	var imagePath *string
	if input.hasImage() {
		path, err := s.images.Save(input.Image, input.ImageHeader)
		if err != nil {
			return nil, err
		}
		imagePath = &path
	}

	category := &models.Category{
		Name:      input.Name,
		Detail:    input.Detail,
		ImagePath: imagePath,
	}

	return s.repo.Insert(ctx, category)
}

// List returns all categories
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.repo.GetAll(ctx)
}

// GetByID returns a category by id
func (s *CategoryService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	return s.repo.GetByID(ctx, id)
}

// Update replaces a category's mutable fields. When a new image is uploaded
// it is stored first, then the previous file (if any) is removed best-effort;
// the record points at the new path regardless of the cleanup outcome. Without
// a new image the existing image path is preserved. There is no way to clear
// an image without replacing it.
func (s *CategoryService) Update(ctx context.Context, id primitive.ObjectID, input CategoryInput) (*models.Category, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrNameRequired
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	imagePath := existing.ImagePath
	if input.hasImage() {
		path, err := s.images.Save(input.Image, input.ImageHeader)
		if err != nil {
			return nil, err
		}
		if existing.ImagePath != nil {
			s.images.Remove(*existing.ImagePath)
		}
		imagePath = &path
	}

	category := &models.Category{
		Name:      input.Name,
		Detail:    input.Detail,
		ImagePath: imagePath,
	}

	return s.repo.Update(ctx, id, category)
}

// Delete removes a category and best-effort reclaims its image file. The
// image path is read off the record before the record is deleted. Dependent
// products are left untouched; a dangling reference surfaces as a null
// snapshot on later product reads.
func (s *CategoryService) Delete(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing.ImagePath != nil {
		s.images.Remove(*existing.ImagePath)
	}

	return s.repo.Delete(ctx, id)
}
