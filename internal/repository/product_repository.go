package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"catalogapi/internal/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Insert(ctx context.Context, product *models.Product) (*models.Product, error)
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

// MongoProductRepository implements ProductRepository on a MongoDB collection
type MongoProductRepository struct {
	col *mongo.Collection
}

// NewMongoProductRepository creates a product repository backed by the
// "products" collection of the given database
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{
		col: db.Collection("products"),
	}
}

// Insert stores a new product and returns it with its generated id
func (r *MongoProductRepository) Insert(ctx context.Context, product *models.Product) (*models.Product, error) {
	product.ID = primitive.NewObjectID()

	if _, err := r.col.InsertOne(ctx, product); err != nil {
		return nil, fmt.Errorf("inserting product: %w", err)
	}

	return product, nil
}

// GetAll returns all products without their category snapshots; the join
// against categories happens in the service layer on every read
func (r *MongoProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("finding products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decoding products: %w", err)
	}

	return products, nil
}

// GetByID returns a product by its id
func (r *MongoProductRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("finding product: %w", err)
	}

	return &product, nil
}

// Update overwrites the mutable fields of a product and returns the updated document
func (r *MongoProductRepository) Update(ctx context.Context, id primitive.ObjectID, product *models.Product) (*models.Product, error) {
	set := bson.M{
		"name":        product.Name,
		"price":       product.Price,
		"sale_price":  product.SalePrice,
		"description": product.Description,
	}

	update := bson.M{"$set": set}
	if product.CategoryID != nil {
		set["category_id"] = product.CategoryID
	} else {
		update["$unset"] = bson.M{"category_id": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Product
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("updating product: %w", err)
	}

	return &updated, nil
}

// Delete removes a product and returns the deleted document
func (r *MongoProductRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var deleted models.Product
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("deleting product: %w", err)
	}

	return &deleted, nil
}
