package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Blog struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Slug        string             `json:"slug" bson:"slug"`
	Excerpt     string             `json:"excerpt,omitempty" bson:"excerpt,omitempty"`
	Markdown    string             `json:"markdown,omitempty" bson:"markdown"`
	HTML        string             `json:"html" bson:"html"`
	CoverURL    string             `json:"coverUrl,omitempty" bson:"coverUrl,omitempty"`
	Tags        []string           `json:"tags" bson:"tags"`
	Published   bool               `json:"published" bson:"published"`
	PublishedAt *time.Time         `json:"publishedAt,omitempty" bson:"publishedAt,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}
