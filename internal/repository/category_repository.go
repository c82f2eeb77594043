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
	ErrCategoryNotFound = errors.New("category not found")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Insert(ctx context.Context, category *models.Category) (*models.Category, error)
	GetAll(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Category, error)
	Update(ctx context.Context, id primitive.ObjectID, category *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
}

// MongoCategoryRepository implements CategoryRepository on a MongoDB collection
type MongoCategoryRepository struct {
	col *mongo.Collection
}

// NewMongoCategoryRepository creates a category repository backed by the
// "categories" collection of the given database
func NewMongoCategoryRepository(db *mongo.Database) *MongoCategoryRepository {
	return &MongoCategoryRepository{
		col: db.Collection("categories"),
	}
}

// Insert stores a new category and returns it with its generated id
func (r *MongoCategoryRepository) Insert(ctx context.Context, category *models.Category) (*models.Category, error) {
	category.ID = primitive.NewObjectID()

	if _, err := r.col.InsertOne(ctx, category); err != nil {
		return nil, fmt.Errorf("inserting category: %w", err)
	}

	return category, nil
}

// GetAll returns all categories
func (r *MongoCategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("finding categories: %w", err)
	}
	defer cursor.Close(ctx)

	categories := make([]models.Category, 0)
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("decoding categories: %w", err)
	}

	return categories, nil
}

// GetByID returns a category by its id
func (r *MongoCategoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var category models.Category
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&category); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("finding category: %w", err)
	}

	return &category, nil
}

// GetByIDs returns the categories with the given ids, keyed by id.
// Missing ids are simply absent from the result, not an error.
func (r *MongoCategoryRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Category, error) {
	result := make(map[primitive.ObjectID]models.Category, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("finding categories by ids: %w", err)
	}
	defer cursor.Close(ctx)

	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("decoding categories: %w", err)
	}

	for _, c := range categories {
		result[c.ID] = c
	}

	return result, nil
}

// Update overwrites the mutable fields of a category and returns the updated document
func (r *MongoCategoryRepository) Update(ctx context.Context, id primitive.ObjectID, category *models.Category) (*models.Category, error) {
	update := bson.M{"$set": bson.M{
		"name":       category.Name,
		"detail":     category.Detail,
		"image_path": category.ImagePath,
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Category
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("updating category: %w", err)
	}

	return &updated, nil
}

// Delete removes a category and returns the deleted document
func (r *MongoCategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var deleted models.Category
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("deleting category: %w", err)
	}

	return &deleted, nil
}
