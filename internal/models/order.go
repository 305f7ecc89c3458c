package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

const (
	PaymentCOD    = "cod"
	PaymentOnline = "online"

	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusCOD      = "cod"
	PaymentStatusRefunded = "refunded"
)

type Order struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Number          string             `json:"number" bson:"number"`
	UserID          primitive.ObjectID `json:"userId" bson:"userId"`
	Items           []OrderItem        `json:"items" bson:"items"`
	Subtotal        float64            `json:"subtotal" bson:"subtotal"`
	ShippingFee     float64            `json:"shippingFee" bson:"shippingFee"`
	Amount          float64            `json:"amount" bson:"amount"`
	Status          OrderStatus        `json:"status" bson:"status"`
	PaymentMethod   string             `json:"paymentMethod" bson:"paymentMethod"`
	PaymentStatus   string             `json:"paymentStatus" bson:"paymentStatus"`
	PaymentIntentID string             `json:"paymentIntentId,omitempty" bson:"paymentIntentId,omitempty"`
	Address         Address            `json:"address" bson:"address"`
	DeliveredAt     *time.Time         `json:"deliveredAt,omitempty" bson:"deliveredAt,omitempty"`
	// ReturnedItems holds the line keys claimed by live return requests.
	ReturnedItems []string  `json:"-" bson:"returnedItems,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

type OrderItem struct {
	ProductRef   primitive.ObjectID `json:"productRef" bson:"productRef"`
	VariantRef   primitive.ObjectID `json:"variantRef" bson:"variantRef"`
	Name         string             `json:"name" bson:"name"`
	VariantLabel string             `json:"variantLabel" bson:"variantLabel"`
	ImageURL     string             `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Qty          int                `json:"qty" bson:"qty"`
	Price        float64            `json:"price" bson:"price"`
}

func (o Order) Item(productRef, variantRef primitive.ObjectID) (OrderItem, bool) {
	for _, it := range o.Items {
		if it.ProductRef == productRef && it.VariantRef == variantRef {
			return it, true
		}
	}
	return OrderItem{}, false
}
