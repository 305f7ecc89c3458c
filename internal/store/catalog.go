package store

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"farmlyf_back_end/internal/models"
)

type mongoCategories struct {
	col *mongo.Collection
}

func (s *mongoCategories) List(ctx context.Context) ([]models.Category, error) {
	cur, err := s.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []models.Category{}
	return out, cur.All(ctx, &out)
}

func (s *mongoCategories) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var c models.Category
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *mongoCategories) Create(ctx context.Context, c *models.Category) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.CreatedAt = time.Now().UTC()
	_, err := s.col.InsertOne(ctx, c)
	return duplicate(err)
}

func (s *mongoCategories) Update(ctx context.Context, c *models.Category) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return duplicate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoCategories) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type mongoProducts struct {
	col *mongo.Collection
}

func (s *mongoProducts) List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	page := f.Page.Normalize()
	filter := bson.M{}
	if f.CategoryID != nil {
		filter["categoryId"] = *f.CategoryID
	}
	if f.ActiveOnly {
		filter["isActive"] = true
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
	out := []models.Product{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *mongoProducts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *mongoProducts) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var p models.Product
	if err := s.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *mongoProducts) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	cur, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	out := []models.Product{}
	return out, cur.All(ctx, &out)
}

func (s *mongoProducts) Create(ctx context.Context, p *models.Product) error {
	now := time.Now().UTC()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	for i := range p.Variants {
		if p.Variants[i].ID.IsZero() {
			p.Variants[i].ID = primitive.NewObjectID()
		}
	}
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := s.col.InsertOne(ctx, p)
	return duplicate(err)
}

func (s *mongoProducts) Update(ctx context.Context, p *models.Product) error {
	for i := range p.Variants {
		if p.Variants[i].ID.IsZero() {
			p.Variants[i].ID = primitive.NewObjectID()
		}
	}
	p.UpdatedAt = time.Now().UTC()
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return duplicate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoProducts) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Search is the regex fallback used when Elasticsearch is unavailable.
func (s *mongoProducts) Search(ctx context.Context, q string, limit int) ([]models.Product, error) {
	rx := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	filter := bson.M{
		"isActive": true,
		"$or": bson.A{
			bson.M{"name": rx},
			bson.M{"description": rx},
			bson.M{"tags": rx},
		},
	}
	cur, err := s.col.Find(ctx, filter, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	out := []models.Product{}
	return out, cur.All(ctx, &out)
}

func (s *mongoProducts) DecrementStock(ctx context.Context, productID, variantID primitive.ObjectID, qty int) error {
	filter := bson.M{
		"_id":      productID,
		"variants": bson.M{"$elemMatch": bson.M{"_id": variantID, "stock": bson.M{"$gte": qty}}},
	}
	update := bson.M{"$inc": bson.M{"variants.$.stock": -qty}}
	res, err := s.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNoStock
	}
	return nil
}

func (s *mongoProducts) IncrementStock(ctx context.Context, productID, variantID primitive.ObjectID, qty int) error {
	filter := bson.M{"_id": productID, "variants._id": variantID}
	res, err := s.col.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"variants.$.stock": qty}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoProducts) Count(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{})
}

func (s *mongoProducts) LowStock(ctx context.Context, threshold int) ([]models.LowStockItem, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$variants"}},
		{{Key: "$match", Value: bson.M{"variants.stock": bson.M{"$lt": threshold}}}},
		{{Key: "$project", Value: bson.M{
			"_id":          0,
			"productId":    "$_id",
			"productName":  "$name",
			"variantId":    "$variants._id",
			"variantLabel": "$variants.label",
			"stock":        "$variants.stock",
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "stock", Value: 1}}}},
		{{Key: "$limit", Value: 50}},
	}
	cur, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	out := []models.LowStockItem{}
	return out, cur.All(ctx, &out)
}
