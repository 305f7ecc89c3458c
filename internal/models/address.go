package models

type Address struct {
	Label     string `json:"label,omitempty" bson:"label,omitempty"`
	FullName  string `json:"fullName" bson:"fullName" binding:"required"`
	Phone     string `json:"phone" bson:"phone" binding:"required,phone"`
	Line1     string `json:"line1" bson:"line1" binding:"required"`
	Line2     string `json:"line2,omitempty" bson:"line2,omitempty"`
	City      string `json:"city" bson:"city" binding:"required"`
	State     string `json:"state" bson:"state" binding:"required"`
	Pincode   string `json:"pincode" bson:"pincode" binding:"required,len=6,numeric"`
	IsDefault bool   `json:"isDefault" bson:"isDefault"`
}
