package handlers

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"farmlyf_back_end/internal/models"
	"farmlyf_back_end/internal/utils"
)

// MailUser sends the mail built by build when the user has an address.
func (d *Deps) MailUser(ctx context.Context, uid primitive.ObjectID, build func(to string) (utils.Mail, error)) {
	if d.Mailer == nil {
		return
	}
	u, err := d.Stores.Users.FindByID(ctx, uid)
	if err != nil || u.Email == "" {
		return
	}
	m, err := build(u.Email)
	if err != nil {
		zap.L().Error("❌ render email", zap.Error(err))
		return
	}
	utils.SendAsync(d.Mailer, m)
}

// Restock puts the units of a cancelled order back on the shelf.
func (d *Deps) Restock(ctx context.Context, items []models.OrderItem) {
	ctx = context.WithoutCancel(ctx)
	for _, it := range items {
		if err := d.Stores.Products.IncrementStock(ctx, it.ProductRef, it.VariantRef, it.Qty); err != nil {
			zap.L().Error("❌ restock failed",
				zap.String("product", it.ProductRef.Hex()),
				zap.String("variant", it.VariantRef.Hex()),
				zap.Int("qty", it.Qty),
				zap.Error(err))
		}
	}
}

// RefundCancelled pays back a cancelled online order in full and marks it
// refunded. Orders that were never paid online return an empty reference.
func (d *Deps) RefundCancelled(ctx context.Context, o *models.Order) (string, error) {
	if o.PaymentMethod != models.PaymentOnline || o.PaymentStatus != models.PaymentStatusPaid || o.PaymentIntentID == "" {
		return "", nil
	}
	if d.Payments == nil {
		return "", errors.New("payment gateway not configured")
	}
	ref, err := d.Payments.Refund(ctx, o.PaymentIntentID, o.Amount, "order-"+o.ID.Hex()+"-cancel")
	if err != nil {
		return "", err
	}
	if err := d.Stores.Orders.SetPayment(context.WithoutCancel(ctx), o.ID, models.PaymentStatusRefunded, ""); err != nil {
		return ref, err
	}
	return ref, nil
}
