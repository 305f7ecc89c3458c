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

type mongoUsers struct {
	col *mongo.Collection
}

func (s *mongoUsers) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.col.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *mongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *mongoUsers) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"phone": phone})
}

func (s *mongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *mongoUsers) FindByProvider(ctx context.Context, provider, providerID string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"provider": provider, "providerId": providerID})
}

func (s *mongoUsers) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Addresses == nil {
		u.Addresses = []models.Address{}
	}
	u.CreatedAt, u.UpdatedAt = now, now
	_, err := s.col.InsertOne(ctx, u)
	return duplicate(err)
}

func (s *mongoUsers) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := s.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"password": hash, "updatedAt": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoUsers) SetRole(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error) {
	var u models.User
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"role": role, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&u)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *mongoUsers) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, email string, addresses []models.Address) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if name != "" {
		set["name"] = name
	}
	if email != "" {
		set["email"] = email
	}
	if addresses != nil {
		set["addresses"] = addresses
	}

	var u models.User
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&u)
	if err != nil {
		return nil, duplicate(notFound(err))
	}
	return &u, nil
}

func (s *mongoUsers) List(ctx context.Context, page Page) ([]models.User, int64, error) {
	page = page.Normalize()
	total, err := s.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *mongoUsers) Count(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{"role": models.RoleCustomer})
}
