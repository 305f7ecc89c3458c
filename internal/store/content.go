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

type mongoBanners struct {
	col *mongo.Collection
}

func (s *mongoBanners) List(ctx context.Context, activeOnly bool) ([]models.Banner, error) {
	filter := bson.M{}
	if activeOnly {
		filter["isActive"] = true
	}
	cur, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "position", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []models.Banner{}
	return out, cur.All(ctx, &out)
}

func (s *mongoBanners) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Banner, error) {
	var b models.Banner
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (s *mongoBanners) Create(ctx context.Context, b *models.Banner) error {
	now := time.Now().UTC()
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	b.CreatedAt, b.UpdatedAt = now, now
	_, err := s.col.InsertOne(ctx, b)
	return err
}

func (s *mongoBanners) Update(ctx context.Context, b *models.Banner) error {
	b.UpdatedAt = time.Now().UTC()
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": b.ID}, b)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Reorder assigns positions following the order of ids.
func (s *mongoBanners) Reorder(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, 0, len(ids))
	for i, id := range ids {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$set": bson.M{"position": i, "updatedAt": time.Now().UTC()}}))
	}
	_, err := s.col.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}

func (s *mongoBanners) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type mongoContent struct {
	col *mongo.Collection
}

func (s *mongoContent) Get(ctx context.Context, key string) (*models.ContentSection, error) {
	var sec models.ContentSection
	if err := s.col.FindOne(ctx, bson.M{"_id": key}).Decode(&sec); err != nil {
		return nil, notFound(err)
	}
	return &sec, nil
}

func (s *mongoContent) Upsert(ctx context.Context, sec *models.ContentSection) error {
	sec.UpdatedAt = time.Now().UTC()
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": sec.Key}, sec, options.Replace().SetUpsert(true))
	return err
}

type mongoBlogs struct {
	col *mongo.Collection
}

func (s *mongoBlogs) List(ctx context.Context, publishedOnly bool, page Page) ([]models.Blog, int64, error) {
	page = page.Normalize()
	filter := bson.M{}
	sortKey := "createdAt"
	if publishedOnly {
		filter["published"] = true
		sortKey = "publishedAt"
	}
	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: sortKey, Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
	if publishedOnly {
		opts.SetProjection(bson.M{"markdown": 0})
	}
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	out := []models.Blog{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *mongoBlogs) FindBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	var b models.Blog
	if err := s.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&b); err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (s *mongoBlogs) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	var b models.Blog
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (s *mongoBlogs) SlugExists(ctx context.Context, slug string, except primitive.ObjectID) (bool, error) {
	filter := bson.M{"slug": slug}
	if !except.IsZero() {
		filter["_id"] = bson.M{"$ne": except}
	}
	n, err := s.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	return n > 0, err
}

func (s *mongoBlogs) Create(ctx context.Context, b *models.Blog) error {
	now := time.Now().UTC()
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	b.CreatedAt, b.UpdatedAt = now, now
	_, err := s.col.InsertOne(ctx, b)
	return duplicate(err)
}

func (s *mongoBlogs) Update(ctx context.Context, b *models.Blog) error {
	b.UpdatedAt = time.Now().UTC()
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": b.ID}, b)
	if err != nil {
		return duplicate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoBlogs) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
