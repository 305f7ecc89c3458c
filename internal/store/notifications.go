package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"farmlyf_back_end/internal/models"
)

type mongoNotifications struct {
	col *mongo.Collection
}

func (s *mongoNotifications) Create(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := s.col.InsertOne(ctx, n)
	return err
}

func (s *mongoNotifications) List(ctx context.Context, unreadOnly bool, limit int) ([]models.Notification, error) {
	filter := bson.M{}
	if unreadOnly {
		filter["read"] = false
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	cur, err := s.col.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	out := []models.Notification{}
	return out, cur.All(ctx, &out)
}

func (s *mongoNotifications) UnreadCount(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{"read": false})
}

func (s *mongoNotifications) MarkRead(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoNotifications) MarkAllRead(ctx context.Context) error {
	_, err := s.col.UpdateMany(ctx, bson.M{"read": false}, bson.M{"$set": bson.M{"read": true}})
	return err
}
