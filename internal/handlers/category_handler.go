package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"catalogapi/internal/assets"
	"catalogapi/internal/models"
	"catalogapi/internal/repository"
	"catalogapi/internal/service"
)

// maxMultipartMemory bounds how much of a multipart body is held in memory
// while parsing; larger parts spill to temp files
const maxMultipartMemory = 4 << 20

// CategoryProvider is the service surface the category handler depends on
type CategoryProvider interface {
	Create(ctx context.Context, input service.CategoryInput) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	Update(ctx context.Context, id primitive.ObjectID, input service.CategoryInput) (*models.Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
}

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	service CategoryProvider
	logger  *slog.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(service CategoryProvider, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		logger:  logger,
	}
}

// ListCategories handles GET /api/categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list categories", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, categories, h.logger)
}

// GetCategory handles GET /api/categories/{categoryId}
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	category, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeCategoryError(w, id, err)
		return
	}

	WriteJSON(w, http.StatusOK, category, h.logger)
}

// CreateCategory handles POST /api/categories with a multipart form:
// name, detail, and an optional image file
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	input, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	if input.Image != nil {
		defer input.Image.Close()
	}

	category, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.writeCategoryError(w, primitive.NilObjectID, err)
		return
	}

	h.logger.Info("category created", "category_id", category.ID.Hex(), "name", category.Name)
	WriteJSON(w, http.StatusCreated, category, h.logger)
}

// UpdateCategory handles PUT /api/categories/{categoryId}. Supplying a new
// image replaces the stored one; omitting it keeps the existing image.
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	input, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	if input.Image != nil {
		defer input.Image.Close()
	}

	category, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.writeCategoryError(w, id, err)
		return
	}

	h.logger.Info("category updated", "category_id", id.Hex())
	WriteJSON(w, http.StatusOK, category, h.logger)
}

// DeleteCategory handles DELETE /api/categories/{categoryId} and returns the
// deleted document
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	category, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.writeCategoryError(w, id, err)
		return
	}

	h.logger.Info("category deleted", "category_id", id.Hex())
	WriteJSON(w, http.StatusOK, category, h.logger)
}

// parseID validates the path id; malformed ids are rejected with 400 before
// any lookup
func (h *CategoryHandler) parseID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	raw := chi.URLParam(r, "categoryId")

	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		h.logger.Warn("invalid category ID format", "categoryId", raw)
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
		return primitive.NilObjectID, false
	}

	return id, true
}

// parseForm extracts the category fields from a multipart form. A missing
// image part is fine; any other form problem is a 400.
func (h *CategoryHandler) parseForm(w http.ResponseWriter, r *http.Request) (service.CategoryInput, bool) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		h.logger.Warn("failed to parse multipart form", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid form data", h.logger)
		return service.CategoryInput{}, false
	}

	input := service.CategoryInput{
		Name:   r.FormValue("name"),
		Detail: r.FormValue("detail"),
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		input.Image = file
		input.ImageHeader = header
	case errors.Is(err, http.ErrMissingFile):
		// no image uploaded
	default:
		h.logger.Warn("failed to read image part", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid image upload", h.logger)
		return service.CategoryInput{}, false
	}

	return input, true
}

// writeCategoryError maps service errors onto HTTP responses
func (h *CategoryHandler) writeCategoryError(w http.ResponseWriter, id primitive.ObjectID, err error) {
	switch {
	case errors.Is(err, repository.ErrCategoryNotFound):
		h.logger.Info("category not found", "category_id", id.Hex())
		WriteError(w, http.StatusNotFound, "Category not found", h.logger)
	case errors.Is(err, service.ErrNameRequired),
		errors.Is(err, assets.ErrUnsupportedImageType),
		errors.Is(err, assets.ErrImageTooLarge):
		h.logger.Warn("invalid category request", "error", err)
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
	default:
		h.logger.Error("category operation failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
	}
}
