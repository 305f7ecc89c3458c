package payment

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"farmlyf_back_end/internal/handlers"
	"farmlyf_back_end/internal/models"
	"farmlyf_back_end/internal/services"
	"farmlyf_back_end/internal/store"
	"farmlyf_back_end/internal/utils"
)

const maxWebhookBody = int64(65536)

// Handler wires online payments to the order lifecycle.
type Handler struct {
	*handlers.Deps
}

func New(d *handlers.Deps) *Handler {
	return &Handler{Deps: d}
}

type intentRequest struct {
	OrderID string `json:"orderId" binding:"required,len=24,hexadecimal"`
}

// 💳 CreateIntent opens a PaymentIntent for one of the caller's online orders.
func (h *Handler) CreateIntent(c *gin.Context) {
	if h.Payments == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Online payments are not available"})
		return
	}
	uid, ok := handlers.CurrentUserID(c)
	if !ok {
		return
	}
	var req intentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}
	orderID, _ := primitive.ObjectIDFromHex(req.OrderID)

	ctx, cancel := handlers.Ctx(c, 15*time.Second)
	defer cancel()

	o, err := h.Stores.Orders.FindByID(ctx, orderID)
	if err != nil || o.UserID != uid {
		if err == nil || errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		utils.HandleError(c, err)
		return
	}
	switch {
	case o.PaymentMethod != models.PaymentOnline:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Order is not an online payment order"})
		return
	case o.PaymentStatus == models.PaymentStatusPaid, o.PaymentStatus == models.PaymentStatusRefunded:
		c.JSON(http.StatusConflict, gin.H{"error": "Order is already paid"})
		return
	case o.Status == models.OrderCancelled:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Order was cancelled"})
		return
	}

	intentID, secret, err := h.Payments.CreateIntent(ctx, *o)
	if err != nil {
		zap.L().Error("❌ payment intent", zap.String("order", o.Number), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider unavailable"})
		return
	}
	if err := h.Stores.Orders.SetPayment(ctx, o.ID, models.PaymentStatusPending, intentID); err != nil {
		utils.HandleError(c, err)
		return
	}

	zap.L().Info("💳 payment intent created", zap.String("order", o.Number), zap.String("intent", intentID), zap.Float64("amount", o.Amount))
	c.JSON(http.StatusOK, gin.H{"clientSecret": secret, "paymentId": intentID, "amount": o.Amount})
}

// Webhook applies Stripe payment events to orders. Unknown events are
// acknowledged so Stripe stops retrying them.
func (h *Handler) Webhook(c *gin.Context) {
	if h.Payments == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Online payments are not available"})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Payload too large"})
		return
	}

	event, err := h.Payments.ParseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		zap.L().Warn("⚠️ webhook signature rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	var status string
	switch event.Type {
	case services.EventPaymentSucceeded:
		status = models.PaymentStatusPaid
	case services.EventPaymentFailed:
		status = models.PaymentStatusFailed
	default:
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	ctx, cancel := handlers.Ctx(c, 10*time.Second)
	defer cancel()

	o, err := h.findOrder(c, event)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			zap.L().Warn("⚠️ webhook for unknown order", zap.String("intent", event.IntentID), zap.String("order", event.OrderID))
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		utils.HandleError(c, err)
		return
	}
	if o.PaymentStatus == models.PaymentStatusPaid || o.PaymentStatus == models.PaymentStatusRefunded {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if err := h.Stores.Orders.SetPayment(ctx, o.ID, status, event.IntentID); err != nil {
		utils.HandleError(c, err)
		return
	}

	if status == models.PaymentStatusPaid {
		zap.L().Info("✅ payment received", zap.String("order", o.Number), zap.String("intent", event.IntentID))
		h.Notifier.Notify(ctx, models.NotifyPaymentPaid, "Payment received for order "+o.Number, o.ID.Hex())
	} else {
		zap.L().Warn("❌ payment failed", zap.String("order", o.Number), zap.String("intent", event.IntentID))
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// findOrder matches by intent id first, then by the order id stored in the
// intent metadata.
func (h *Handler) findOrder(c *gin.Context, e *services.PaymentEvent) (*models.Order, error) {
	ctx := c.Request.Context()
	if e.IntentID != "" {
		o, err := h.Stores.Orders.FindByPaymentIntent(ctx, e.IntentID)
		if err == nil || !errors.Is(err, store.ErrNotFound) {
			return o, err
		}
	}
	id, err := primitive.ObjectIDFromHex(e.OrderID)
	if err != nil {
		return nil, store.ErrNotFound
	}
	return h.Stores.Orders.FindByID(ctx, id)
}
