package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"

	ProviderOTP    = "otp"
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

type User struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name       string             `json:"name,omitempty" bson:"name"`
	Phone      string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Email      string             `json:"email,omitempty" bson:"email,omitempty"`
	Password   string             `json:"-" bson:"password,omitempty"`
	Role       string             `json:"role" bson:"role"`
	Provider   string             `json:"provider,omitempty" bson:"provider"`
	ProviderID string             `json:"-" bson:"providerId,omitempty"`
	Addresses  []Address          `json:"addresses" bson:"addresses"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
