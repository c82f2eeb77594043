package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"catalogapi/internal/models"
	"catalogapi/internal/repository"
	"catalogapi/internal/service"
	"catalogapi/pkg/logger"
)

// --- stub provider ---

type stubProductService struct {
	products  []models.Product
	product   *models.Product
	err       error
	lastInput service.ProductInput
	lastID    primitive.ObjectID
}

func (s *stubProductService) Create(ctx context.Context, input service.ProductInput) (*models.Product, error) {
	s.lastInput = input
	return s.product, s.err
}

func (s *stubProductService) List(ctx context.Context) ([]models.Product, error) {
	return s.products, s.err
}

func (s *stubProductService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.lastID = id
	return s.product, s.err
}

func (s *stubProductService) Update(ctx context.Context, id primitive.ObjectID, input service.ProductInput) (*models.Product, error) {
	s.lastID = id
	s.lastInput = input
	return s.product, s.err
}

func (s *stubProductService) Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.lastID = id
	return s.product, s.err
}

func newProductRouter(stub *stubProductService) chi.Router {
	handler := NewProductHandler(stub, logger.New("error"))

	r := chi.NewRouter()
	r.Get("/api/products", handler.ListProducts)
	r.Post("/api/products", handler.CreateProduct)
	r.Get("/api/products/{productId}", handler.GetProduct)
	r.Put("/api/products/{productId}", handler.UpdateProduct)
	r.Delete("/api/products/{productId}", handler.DeleteProduct)
	return r
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(data)
}

// --- tests ---

func TestListProducts_WithCategorySnapshot(t *testing.T) {
	categoryID := primitive.NewObjectID()
	stub := &stubProductService{
		products: []models.Product{
			{
				ID:         primitive.NewObjectID(),
				Name:       "Cola",
				Price:      1.50,
				CategoryID: &categoryID,
				Category: &models.CategorySnapshot{
					ID:     categoryID,
					Name:   "Drinks",
					Detail: "Beverages",
				},
			},
		},
	}
	r := newProductRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var products []models.Product
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&products))
	require.Len(t, products, 1)
	require.NotNil(t, products[0].Category)
	assert.Equal(t, "Drinks", products[0].Category.Name)
}

func TestListProducts_DanglingReference(t *testing.T) {
	categoryID := primitive.NewObjectID()
	stub := &stubProductService{
		products: []models.Product{
			{ID: primitive.NewObjectID(), Name: "Cola", Price: 1.50, CategoryID: &categoryID},
		},
	}
	r := newProductRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	// the reference is kept, the snapshot is null
	assert.Contains(t, rec.Body.String(), `"category_id":"`+categoryID.Hex()+`"`)
	assert.Contains(t, rec.Body.String(), `"category":null`)
}

func TestGetProduct(t *testing.T) {
	id := primitive.NewObjectID()
	stub := &stubProductService{product: &models.Product{ID: id, Name: "Cola", Price: 1.50}}
	r := newProductRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/products/"+id.Hex(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, stub.lastID)
}

func TestGetProduct_MalformedID(t *testing.T) {
	stub := &stubProductService{}
	r := newProductRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/products/123abc", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid ID supplied", decodeError(t, rec))
}

func TestGetProduct_NotFound(t *testing.T) {
	stub := &stubProductService{err: repository.ErrProductNotFound}
	r := newProductRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/products/"+primitive.NewObjectID().Hex(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", decodeError(t, rec))
}

func TestCreateProduct(t *testing.T) {
	categoryID := primitive.NewObjectID()
	created := &models.Product{ID: primitive.NewObjectID(), Name: "Cola", Price: 1.50, CategoryID: &categoryID}
	stub := &stubProductService{product: created}
	r := newProductRouter(stub)

	hexID := categoryID.Hex()
	body := jsonBody(t, map[string]interface{}{
		"name":        "Cola",
		"category_id": hexID,
		"price":       1.50,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/products", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Cola", stub.lastInput.Name)
	assert.Equal(t, 1.50, stub.lastInput.Price)
	require.NotNil(t, stub.lastInput.CategoryID)
	assert.Equal(t, categoryID, *stub.lastInput.CategoryID)
}

func TestCreateProduct_InvalidJSON(t *testing.T) {
	stub := &stubProductService{}
	r := newProductRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decodeError(t, rec))
}

func TestCreateProduct_MalformedCategoryRef(t *testing.T) {
	stub := &stubProductService{}
	r := newProductRouter(stub)

	body := jsonBody(t, map[string]interface{}{
		"name":        "Cola",
		"category_id": "not-an-object-id",
		"price":       1.50,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/products", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid category reference", decodeError(t, rec))
	// rejected before reaching the service
	assert.Empty(t, stub.lastInput.Name)
}

func TestCreateProduct_NonexistentCategoryRef(t *testing.T) {
	stub := &stubProductService{err: service.ErrInvalidCategoryRef}
	r := newProductRouter(stub)

	body := jsonBody(t, map[string]interface{}{
		"name":        "Cola",
		"category_id": "000000000000000000000000",
		"price":       1.50,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/products", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid category reference", decodeError(t, rec))
}

func TestCreateProduct_ValidationError(t *testing.T) {
	stub := &stubProductService{err: service.ErrNegativePrice}
	r := newProductRouter(stub)

	body := jsonBody(t, map[string]interface{}{"name": "Cola", "price": -1})
	req := httptest.NewRequest(http.MethodPost, "/api/products", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProduct(t *testing.T) {
	id := primitive.NewObjectID()
	stub := &stubProductService{product: &models.Product{ID: id, Name: "Diet Cola", Price: 1.75}}
	r := newProductRouter(stub)

	salePrice := 1.25
	body := jsonBody(t, map[string]interface{}{
		"name":       "Diet Cola",
		"price":      1.75,
		"sale_price": salePrice,
	})
	req := httptest.NewRequest(http.MethodPut, "/api/products/"+id.Hex(), body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, stub.lastID)
	require.NotNil(t, stub.lastInput.SalePrice)
	assert.Equal(t, salePrice, *stub.lastInput.SalePrice)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	stub := &stubProductService{err: repository.ErrProductNotFound}
	r := newProductRouter(stub)

	body := jsonBody(t, map[string]interface{}{"name": "Cola", "price": 1.50})
	req := httptest.NewRequest(http.MethodPut, "/api/products/"+primitive.NewObjectID().Hex(), body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProduct(t *testing.T) {
	id := primitive.NewObjectID()
	stub := &stubProductService{product: &models.Product{ID: id, Name: "Cola", Price: 1.50}}
	r := newProductRouter(stub)

	req := httptest.NewRequest(http.MethodDelete, "/api/products/"+id.Hex(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var product models.Product
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&product))
	assert.Equal(t, id, product.ID)
}

func TestDeleteProduct_NotFound(t *testing.T) {
	stub := &stubProductService{err: repository.ErrProductNotFound}
	r := newProductRouter(stub)

	req := httptest.NewRequest(http.MethodDelete, "/api/products/"+primitive.NewObjectID().Hex(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
