package service

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"catalogapi/internal/models"
	"catalogapi/internal/repository"
)

var (
	ErrNegativePrice      = errors.New("price must not be negative")
	ErrInvalidCategoryRef = errors.New("referenced category does not exist")
)

// ProductInput carries the fields of a product create/update request
type ProductInput struct {
	Name        string
	CategoryID  *primitive.ObjectID
	Price       float64
	SalePrice   *float64
	Description string
}

// ProductService handles business logic for products. It holds the category
// repository as well: the category reference is existence-checked on writes,
// and reads join the category snapshot onto each product.
type ProductService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
}

// NewProductService creates a new product service
func NewProductService(products repository.ProductRepository, categories repository.CategoryRepository) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
	}
}

// validate checks input fields and the category reference, before any write.
// sale_price is allowed to exceed price; only non-negativity is enforced.
func (s *ProductService) validate(ctx context.Context, input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrNameRequired
	}

	if input.Price < 0 {
		return ErrNegativePrice
	}

	if input.SalePrice != nil && *input.SalePrice < 0 {
		return ErrNegativePrice
	}

	if input.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return ErrInvalidCategoryRef
			}
			return err
		}
	}

	return nil
}

// Create validates and stores a new product. A supplied category reference
// must exist at this moment; it is not enforced afterward.
func (s *ProductService) Create(ctx context.Context, input ProductInput) (*models.Product, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        input.Name,
		CategoryID:  input.CategoryID,
		Price:       input.Price,
		SalePrice:   input.SalePrice,
		Description: input.Description,
	}

	return s.products.Insert(ctx, product)
}

// List returns all products with their category snapshots resolved. The join
// runs on every read; a deleted category yields a null snapshot while the
// product's stored reference stays as it was written.
func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(products))
	seen := make(map[primitive.ObjectID]bool, len(products))
	for _, p := range products {
		if p.CategoryID != nil && !seen[*p.CategoryID] {
			seen[*p.CategoryID] = true
			ids = append(ids, *p.CategoryID)
		}
	}

	categories, err := s.categories.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range products {
		if products[i].CategoryID == nil {
			continue
		}
		if c, ok := categories[*products[i].CategoryID]; ok {
			products[i].Category = c.Snapshot()
		}
	}

	return products, nil
}

// GetByID returns a product by id with its category snapshot resolved
func (s *ProductService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if product.CategoryID != nil {
		category, err := s.categories.GetByID(ctx, *product.CategoryID)
		switch {
		case err == nil:
			product.Category = category.Snapshot()
		case errors.Is(err, repository.ErrCategoryNotFound):
			// dangling reference, snapshot stays null
		default:
			return nil, err
		}
	}

	return product, nil
}

// Update validates and replaces a product's mutable fields, with the same
// category existence check as Create
func (s *ProductService) Update(ctx context.Context, id primitive.ObjectID, input ProductInput) (*models.Product, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        input.Name,
		CategoryID:  input.CategoryID,
		Price:       input.Price,
		SalePrice:   input.SalePrice,
		Description: input.Description,
	}

	return s.products.Update(ctx, id, product)
}

// Delete removes a product and returns the deleted document
func (s *ProductService) Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return s.products.Delete(ctx, id)
}
