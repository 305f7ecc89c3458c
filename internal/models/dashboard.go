package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type DashboardStats struct {
	TotalOrders     int64            `json:"totalOrders"`
	Revenue         float64          `json:"revenue"`
	TotalUsers      int64            `json:"totalUsers"`
	TotalProducts   int64            `json:"totalProducts"`
	OrdersByStatus  map[string]int64 `json:"ordersByStatus"`
	ReturnsByStatus map[string]int64 `json:"returnsByStatus"`
	PendingReturns  int64            `json:"pendingReturns"`
	LowStock        []LowStockItem   `json:"lowStock"`
}

type LowStockItem struct {
	ProductID    primitive.ObjectID `json:"productId" bson:"productId"`
	ProductName  string             `json:"productName" bson:"productName"`
	VariantID    primitive.ObjectID `json:"variantId" bson:"variantId"`
	VariantLabel string             `json:"variantLabel" bson:"variantLabel"`
	Stock        int                `json:"stock" bson:"stock"`
}
