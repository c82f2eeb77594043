package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Category represents a product grouping with an optional uploaded image.
// ImagePath is the public path of the stored file, nil when no image was uploaded.
type Category struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Detail    string             `bson:"detail,omitempty" json:"detail,omitempty"`
	ImagePath *string            `bson:"image_path,omitempty" json:"image_path"`
}

// CategorySnapshot is the denormalized view of a category embedded in
// product reads. It is resolved at read time, never stored.
type CategorySnapshot struct {
	ID        primitive.ObjectID `json:"id"`
	Name      string             `json:"name"`
	Detail    string             `json:"detail,omitempty"`
	ImagePath *string            `json:"image_path"`
}

// Snapshot returns the read-time view of the category.
func (c *Category) Snapshot() *CategorySnapshot {
	return &CategorySnapshot{
		ID:        c.ID,
		Name:      c.Name,
		Detail:    c.Detail,
		ImagePath: c.ImagePath,
	}
}
