package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReturnType string

const (
	ReturnRefund  ReturnType = "refund"
	ReturnReplace ReturnType = "replace"
)

type ReturnStatus string

const (
	ReturnPending      ReturnStatus = "Pending"
	ReturnApproved     ReturnStatus = "Approved"
	ReturnPickedUp     ReturnStatus = "Picked Up"
	ReturnQualityCheck ReturnStatus = "Quality Check"
	ReturnDispatched   ReturnStatus = "Dispatched"
	ReturnRefunded     ReturnStatus = "Refunded"
	ReturnDelivered    ReturnStatus = "Delivered"
	ReturnRejected     ReturnStatus = "Rejected"
)

// RefundPending marks a refund claimed by a status change and not yet
// confirmed by the gateway.
const RefundPending = "pending"

type ReturnRequest struct {
	ID                   primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	OrderID              primitive.ObjectID  `json:"orderId" bson:"orderId"`
	OrderNumber          string              `json:"orderNumber" bson:"orderNumber"`
	UserID               primitive.ObjectID  `json:"userId" bson:"userId"`
	Items                []ReturnItem        `json:"items" bson:"items"`
	Type                 ReturnType          `json:"type" bson:"type"`
	Status               ReturnStatus        `json:"status" bson:"status"`
	Reason               string              `json:"reason" bson:"reason"`
	Comments             string              `json:"comments,omitempty" bson:"comments,omitempty"`
	RefundAmount         float64             `json:"refundAmount" bson:"refundAmount"`
	ReplacementVariantID *primitive.ObjectID `json:"replacementVariantId,omitempty" bson:"replacementVariantId,omitempty"`
	PriceDifference      *float64            `json:"priceDifference,omitempty" bson:"priceDifference,omitempty"`
	RefundReference      string              `json:"refundReference,omitempty" bson:"refundReference,omitempty"`
	History              []StatusChange      `json:"history" bson:"history"`
	RequestDate          time.Time           `json:"requestDate" bson:"requestDate"`
	UpdatedAt            time.Time           `json:"updatedAt" bson:"updatedAt"`
}

type ReturnItem struct {
	ProductRef   primitive.ObjectID `json:"productRef" bson:"productRef"`
	VariantRef   primitive.ObjectID `json:"variantRef" bson:"variantRef"`
	Name         string             `json:"name" bson:"name"`
	VariantLabel string             `json:"variantLabel" bson:"variantLabel"`
	Qty          int                `json:"qty" bson:"qty"`
	Price        float64            `json:"price" bson:"price"`
}

// StatusChange is one entry of a return's status history.
type StatusChange struct {
	Status  ReturnStatus `json:"status" bson:"status"`
	Comment string       `json:"comment,omitempty" bson:"comment,omitempty"`
	ActorID string       `json:"actorId,omitempty" bson:"actorId,omitempty"`
	At      time.Time    `json:"at" bson:"at"`
}
