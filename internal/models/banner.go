package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Banner struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title     string             `json:"title" bson:"title"`
	Subtitle  string             `json:"subtitle,omitempty" bson:"subtitle,omitempty"`
	ImageURL  string             `json:"imageUrl" bson:"imageUrl"`
	ObjectKey string             `json:"-" bson:"objectKey,omitempty"`
	LinkURL   string             `json:"linkUrl,omitempty" bson:"linkUrl,omitempty"`
	Position  int                `json:"position" bson:"position"`
	IsActive  bool               `json:"isActive" bson:"isActive"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}
