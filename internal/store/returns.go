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

type mongoReturns struct {
	col *mongo.Collection
}

func (s *mongoReturns) Create(ctx context.Context, r *models.ReturnRequest) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	r.UpdatedAt = r.RequestDate
	_, err := s.col.InsertOne(ctx, r)
	return err
}

func (s *mongoReturns) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ReturnRequest, error) {
	var r models.ReturnRequest
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *mongoReturns) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.ReturnRequest, error) {
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	out := []models.ReturnRequest{}
	return out, cur.All(ctx, &out)
}

func (s *mongoReturns) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.ReturnRequest, error) {
	return s.find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "requestDate", Value: -1}}))
}

func (s *mongoReturns) ListByOrder(ctx context.Context, orderID primitive.ObjectID) ([]models.ReturnRequest, error) {
	return s.find(ctx, bson.M{"orderId": orderID},
		options.Find().SetSort(bson.D{{Key: "requestDate", Value: 1}}))
}

func (s *mongoReturns) List(ctx context.Context, f ReturnFilter) ([]models.ReturnRequest, int64, error) {
	page := f.Page.Normalize()
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out, err := s.find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "requestDate", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit)))
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *mongoReturns) UpdateStatus(ctx context.Context, id primitive.ObjectID, from models.ReturnStatus, change models.StatusChange, refundRef string) (*models.ReturnRequest, error) {
	set := bson.M{"status": change.Status, "updatedAt": change.At}
	if refundRef != "" {
		set["refundReference"] = refundRef
	}
	return s.modify(ctx, id,
		bson.M{"status": from},
		bson.M{"$set": set, "$push": bson.M{"history": change}},
	)
}

// modify applies update to the request matching filter or reports why
// nothing matched.
func (s *mongoReturns) modify(ctx context.Context, id primitive.ObjectID, filter, update bson.M) (*models.ReturnRequest, error) {
	filter["_id"] = id
	var r models.ReturnRequest
	err := s.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&r)
	if err == nil {
		return &r, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	if _, ferr := s.FindByID(ctx, id); ferr != nil {
		return nil, ferr
	}
	return nil, ErrConflict
}

func (s *mongoReturns) SetRefundReference(ctx context.Context, id primitive.ObjectID, ref string) (*models.ReturnRequest, error) {
	return s.modify(ctx, id,
		bson.M{"refundReference": models.RefundPending},
		bson.M{"$set": bson.M{"refundReference": ref}},
	)
}

func (s *mongoReturns) RevertStatus(ctx context.Context, id primitive.ObjectID, from, to models.ReturnStatus) (*models.ReturnRequest, error) {
	return s.modify(ctx, id,
		bson.M{"status": from, "refundReference": models.RefundPending},
		bson.M{
			"$set":   bson.M{"status": to, "updatedAt": time.Now().UTC()},
			"$unset": bson.M{"refundReference": ""},
			"$pop":   bson.M{"history": 1},
		},
	)
}

func (s *mongoReturns) CountByStatus(ctx context.Context) (map[string]int64, error) {
	cur, err := s.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}
