package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	UserName  string             `json:"userName" bson:"userName"`
	Rating    int                `json:"rating" bson:"rating"` // 1-5
	Comment   string             `json:"comment" bson:"comment"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

type ProductRating struct {
	ProductID     primitive.ObjectID `json:"productId"`
	AverageRating float64            `json:"averageRating"`
	TotalReviews  int                `json:"totalReviews"`
}
