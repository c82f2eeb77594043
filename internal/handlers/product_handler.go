package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"catalogapi/internal/models"
	"catalogapi/internal/repository"
	"catalogapi/internal/service"
)

// ProductProvider is the service surface the product handler depends on
type ProductProvider interface {
	Create(ctx context.Context, input service.ProductInput) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, input service.ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	service ProductProvider
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service ProductProvider, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// productRequest is the JSON body of product create/update requests
type productRequest struct {
	Name        string   `json:"name"`
	CategoryID  *string  `json:"category_id"`
	Price       float64  `json:"price"`
	SalePrice   *float64 `json:"sale_price"`
	Description string   `json:"description"`
}

// ListProducts handles GET /api/products.
// Each product carries its category snapshot, resolved at read time.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, products, h.logger)
}

// GetProduct handles GET /api/products/{productId}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeProductError(w, id, err)
		return
	}

	WriteJSON(w, http.StatusOK, product, h.logger)
}

// CreateProduct handles POST /api/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	input, ok := h.parseBody(w, r)
	if !ok {
		return
	}

	product, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.writeProductError(w, primitive.NilObjectID, err)
		return
	}

	h.logger.Info("product created", "product_id", product.ID.Hex(), "name", product.Name)
	WriteJSON(w, http.StatusCreated, product, h.logger)
}

// UpdateProduct handles PUT /api/products/{productId}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	input, ok := h.parseBody(w, r)
	if !ok {
		return
	}

	product, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.writeProductError(w, id, err)
		return
	}

	h.logger.Info("product updated", "product_id", id.Hex())
	WriteJSON(w, http.StatusOK, product, h.logger)
}

// DeleteProduct handles DELETE /api/products/{productId} and returns the
// deleted document
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	product, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.writeProductError(w, id, err)
		return
	}

	h.logger.Info("product deleted", "product_id", id.Hex())
	WriteJSON(w, http.StatusOK, product, h.logger)
}

// parseID validates the path id; malformed ids are rejected with 400 before
// any lookup
func (h *ProductHandler) parseID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	raw := chi.URLParam(r, "productId")

	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		h.logger.Warn("invalid product ID format", "productId", raw)
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
		return primitive.NilObjectID, false
	}

	return id, true
}

// parseBody decodes and converts a product request body. A malformed
// category_id is rejected here, before the service runs its existence check.
func (h *ProductHandler) parseBody(w http.ResponseWriter, r *http.Request) (service.ProductInput, bool) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode product request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return service.ProductInput{}, false
	}

	input := service.ProductInput{
		Name:        req.Name,
		Price:       req.Price,
		SalePrice:   req.SalePrice,
		Description: req.Description,
	}

	if req.CategoryID != nil && *req.CategoryID != "" {
		id, err := primitive.ObjectIDFromHex(*req.CategoryID)
		if err != nil {
			h.logger.Warn("invalid category reference format", "category_id", *req.CategoryID)
			WriteError(w, http.StatusBadRequest, "Invalid category reference", h.logger)
			return service.ProductInput{}, false
		}
		input.CategoryID = &id
	}

	return input, true
}

// writeProductError maps service errors onto HTTP responses
func (h *ProductHandler) writeProductError(w http.ResponseWriter, id primitive.ObjectID, err error) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		h.logger.Info("product not found", "product_id", id.Hex())
		WriteError(w, http.StatusNotFound, "Product not found", h.logger)
	case errors.Is(err, service.ErrInvalidCategoryRef):
		h.logger.Warn("invalid category reference", "product_id", id.Hex())
		WriteError(w, http.StatusBadRequest, "Invalid category reference", h.logger)
	case errors.Is(err, service.ErrNameRequired), errors.Is(err, service.ErrNegativePrice):
		h.logger.Warn("invalid product request", "error", err)
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
	default:
		h.logger.Error("product operation failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
	}
}
