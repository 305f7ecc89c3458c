package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LowStockThreshold marks variants reported on the admin dashboard.
const LowStockThreshold = 10

type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Slug        string             `json:"slug" bson:"slug"`
	Description string             `json:"description" bson:"description"`
	CategoryID  primitive.ObjectID `json:"categoryId" bson:"categoryId"`
	ImageURLs   []string           `json:"imageUrls" bson:"imageUrls"`
	Tags        []string           `json:"tags" bson:"tags"`
	Variants    []Variant          `json:"variants" bson:"variants"`
	IsActive    bool               `json:"isActive" bson:"isActive"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Variant is a purchasable pack size of a product ("250g", "1kg").
type Variant struct {
	ID    primitive.ObjectID `json:"id" bson:"_id"`
	Label string             `json:"label" bson:"label"`
	Price float64            `json:"price" bson:"price"`
	MRP   float64            `json:"mrp,omitempty" bson:"mrp,omitempty"`
	Stock int                `json:"stock" bson:"stock"`
}

func (p Product) Variant(id primitive.ObjectID) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}
