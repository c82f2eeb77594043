package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Product represents a sellable catalog item.
// CategoryID is a weak reference: it is checked against the categories
// collection at write time only, so it may dangle after a category delete.
type Product struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string              `bson:"name" json:"name"`
	CategoryID  *primitive.ObjectID `bson:"category_id,omitempty" json:"category_id,omitempty"`
	Price       float64             `bson:"price" json:"price"`
	SalePrice   *float64            `bson:"sale_price,omitempty" json:"sale_price,omitempty"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`

	// Category is populated on reads by joining against the categories
	// collection; null when CategoryID is unset or dangling.
	Category *CategorySnapshot `bson:"-" json:"category"`
}
