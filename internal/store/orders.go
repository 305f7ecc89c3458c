package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"farmlyf_back_end/internal/models"
)

type mongoOrders struct {
	col *mongo.Collection
}

func (s *mongoOrders) Create(ctx context.Context, o *models.Order) error {
	now := time.Now().UTC()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	o.CreatedAt, o.UpdatedAt = now, now
	_, err := s.col.InsertOne(ctx, o)
	return duplicate(err)
}

func (s *mongoOrders) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (s *mongoOrders) FindByPaymentIntent(ctx context.Context, intentID string) (*models.Order, error) {
	var o models.Order
	if err := s.col.FindOne(ctx, bson.M{"paymentIntentId": intentID}).Decode(&o); err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (s *mongoOrders) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	cur, err := s.col.Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	out := []models.Order{}
	return out, cur.All(ctx, &out)
}

func (s *mongoOrders) List(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	page := f.Page.Normalize()
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	out := []models.Order{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *mongoOrders) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus, at time.Time) (*models.Order, error) {
	set := bson.M{"status": to, "updatedAt": at}
	if to == models.OrderDelivered {
		set["deliveredAt"] = at
	}

	var o models.Order
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&o)
	if err == nil {
		return &o, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	if _, ferr := s.FindByID(ctx, id); ferr != nil {
		return nil, ferr
	}
	return nil, ErrConflict
}

func (s *mongoOrders) SetPayment(ctx context.Context, id primitive.ObjectID, paymentStatus, intentID string) error {
	set := bson.M{"paymentStatus": paymentStatus, "updatedAt": time.Now().UTC()}
	if intentID != "" {
		set["paymentIntentId"] = intentID
	}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoOrders) ClaimReturnItems(ctx context.Context, id primitive.ObjectID, keys []string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "returnedItems": bson.M{"$nin": keys}},
		bson.M{
			"$addToSet": bson.M{"returnedItems": bson.M{"$each": keys}},
			"$set":      bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := s.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

func (s *mongoOrders) ReleaseReturnItems(ctx context.Context, id primitive.ObjectID, keys []string) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$pullAll": bson.M{"returnedItems": keys},
			"$set":     bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	return err
}

func (s *mongoOrders) HasDeliveredProduct(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{
		"userId":           userID,
		"status":           models.OrderDelivered,
		"items.productRef": productID,
	}, options.Count().SetLimit(1))
	return n > 0, err
}

func (s *mongoOrders) Stats(ctx context.Context) (OrderStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":    "$status",
			"count":  bson.M{"$sum": 1},
			"amount": bson.M{"$sum": "$amount"},
		}}},
	}
	cur, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return OrderStats{}, err
	}
	var rows []struct {
		Status string  `bson:"_id"`
		Count  int64   `bson:"count"`
		Amount float64 `bson:"amount"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return OrderStats{}, err
	}

	stats := OrderStats{ByStatus: map[string]int64{}}
	for _, r := range rows {
		stats.Total += r.Count
		stats.ByStatus[r.Status] = r.Count
		if r.Status != string(models.OrderCancelled) {
			stats.Revenue += r.Amount
		}
	}
	return stats, nil
}
