package store

import (
	"context"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"farmlyf_back_end/internal/models"
)

type mongoReviews struct {
	col *mongo.Collection
}

// Create relies on the unique (productId, userId) index for one review per user.
func (s *mongoReviews) Create(ctx context.Context, r *models.Review) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	r.CreatedAt = time.Now().UTC()
	_, err := s.col.InsertOne(ctx, r)
	return duplicate(err)
}

func (s *mongoReviews) ListByProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error) {
	cur, err := s.col.Find(ctx, bson.M{"productId": productID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	out := []models.Review{}
	return out, cur.All(ctx, &out)
}

func (s *mongoReviews) Rating(ctx context.Context, productID primitive.ObjectID) (models.ProductRating, error) {
	rating := models.ProductRating{ProductID: productID}
	cur, err := s.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"productId": productID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return rating, err
	}
	var rows []struct {
		Avg   float64 `bson:"avg"`
		Count int     `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return rating, err
	}
	if len(rows) > 0 {
		rating.AverageRating = math.Round(rows[0].Avg*10) / 10
		rating.TotalReviews = rows[0].Count
	}
	return rating, nil
}

func (s *mongoReviews) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
