package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NotifyNewOrder     = "order.created"
	NotifyOrderCancel  = "order.cancelled"
	NotifyOrderStatus  = "order.status"
	NotifyNewReturn    = "return.created"
	NotifyPaymentPaid  = "payment.succeeded"
	NotifyReviewPosted = "review.created"
)

// Notification feeds the admin header badge.
type Notification struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Kind       string             `json:"kind" bson:"kind"`
	Message    string             `json:"message" bson:"message"`
	ResourceID string             `json:"resourceId,omitempty" bson:"resourceId,omitempty"`
	Read       bool               `json:"read" bson:"read"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}
