package user

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"farmlyf_back_end/internal/handlers"
	"farmlyf_back_end/internal/models"
	"farmlyf_back_end/internal/store"
	"farmlyf_back_end/internal/utils"
	"farmlyf_back_end/internal/workflow"
)

type orderLineRequest struct {
	ProductID string `json:"productId" binding:"required,len=24,hexadecimal"`
	VariantID string `json:"variantId" binding:"required,len=24,hexadecimal"`
	Qty       int    `json:"qty" binding:"required,min=1,max=50"`
}

type createOrderRequest struct {
	Items         []orderLineRequest `json:"items" binding:"required,min=1,max=50,dive"`
	Address       models.Address     `json:"address" binding:"required"`
	PaymentMethod string             `json:"paymentMethod" binding:"required,oneof=cod online"`
}

// stockHold tracks decremented variants so a failed checkout can give them back.
type stockHold struct {
	products store.ProductStore
	taken    []models.OrderItem
}

func (s *stockHold) take(ctx context.Context, it models.OrderItem) error {
	if err := s.products.DecrementStock(ctx, it.ProductRef, it.VariantRef, it.Qty); err != nil {
		return err
	}
	s.taken = append(s.taken, it)
	return nil
}

func (s *stockHold) release(ctx context.Context) {
	for _, it := range s.taken {
		if err := s.products.IncrementStock(ctx, it.ProductRef, it.VariantRef, it.Qty); err != nil {
			zap.L().Error("❌ stock rollback failed",
				zap.String("product", it.ProductRef.Hex()),
				zap.String("variant", it.VariantRef.Hex()),
				zap.Int("qty", it.Qty),
				zap.Error(err))
		}
	}
	s.taken = nil
}

// CreateOrder prices the cart against the catalog, reserves stock and
// stores the order as Processing.
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := handlers.CurrentUserID(c)
	if !ok {
		return
	}
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}

	ctx, cancel := handlers.Ctx(c, 15*time.Second)
	defer cancel()

	items, err := h.resolveLines(ctx, req.Items)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	hold := &stockHold{products: h.Stores.Products}
	for _, it := range items {
		if err := hold.take(ctx, it); err != nil {
			hold.release(context.WithoutCancel(ctx))
			if errors.Is(err, store.ErrNoStock) {
				c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("%s (%s) is out of stock", it.Name, it.VariantLabel)})
				return
			}
			utils.HandleError(c, err)
			return
		}
	}

	totals := workflow.PriceOrder(items, workflow.ShippingPolicy{
		Fee:           h.Config.ShippingFee,
		FreeThreshold: h.Config.FreeShippingThreshold,
	})
	req.Address.Phone = utils.NormalizePhone(req.Address.Phone)

	order := models.Order{
		Number:        "FL-" + ulid.Make().String(),
		UserID:        uid,
		Items:         items,
		Subtotal:      totals.Subtotal,
		ShippingFee:   totals.ShippingFee,
		Amount:        totals.Amount,
		Status:        models.OrderProcessing,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: models.PaymentStatusCOD,
		Address:       req.Address,
	}
	if req.PaymentMethod == models.PaymentOnline {
		order.PaymentStatus = models.PaymentStatusPending
	}

	if err := h.Stores.Orders.Create(ctx, &order); err != nil {
		hold.release(context.WithoutCancel(ctx))
		utils.HandleError(c, err)
		return
	}

	zap.L().Info("🛒 order placed",
		zap.String("order", order.Number),
		zap.String("user_id", uid.Hex()),
		zap.Float64("amount", order.Amount))
	h.Notifier.Notify(ctx, models.NotifyNewOrder,
		fmt.Sprintf("New order %s for ₹%.2f", order.Number, order.Amount), order.ID.Hex())
	h.MailUser(ctx, uid, func(to string) (utils.Mail, error) { return utils.OrderPlacedMail(to, order) })

	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// resolveLines loads the catalog entries of the cart and fixes the prices.
// Repeated lines of the same variant are merged.
func (h *Handler) resolveLines(ctx context.Context, lines []orderLineRequest) ([]models.OrderItem, error) {
	type key struct{ p, v primitive.ObjectID }
	qty := make(map[key]int, len(lines))
	order := make([]key, 0, len(lines))
	ids := make([]primitive.ObjectID, 0, len(lines))
	for _, l := range lines {
		pid, err := primitive.ObjectIDFromHex(l.ProductID)
		if err != nil {
			return nil, utils.NewAppError(http.StatusBadRequest, "Invalid productId")
		}
		vid, err := primitive.ObjectIDFromHex(l.VariantID)
		if err != nil {
			return nil, utils.NewAppError(http.StatusBadRequest, "Invalid variantId")
		}
		k := key{pid, vid}
		if _, seen := qty[k]; !seen {
			order = append(order, k)
			ids = append(ids, pid)
		}
		qty[k] += l.Qty
	}

	products, err := h.Stores.Products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]models.OrderItem, 0, len(order))
	for _, k := range order {
		p, ok := byID[k.p]
		if !ok || !p.IsActive {
			return nil, utils.NewAppError(http.StatusBadRequest, "A product in the cart is no longer available")
		}
		v, ok := p.Variant(k.v)
		if !ok {
			return nil, utils.NewAppError(http.StatusBadRequest, fmt.Sprintf("Unknown pack size for %s", p.Name))
		}
		var image string
		if len(p.ImageURLs) > 0 {
			image = p.ImageURLs[0]
		}
		items = append(items, models.OrderItem{
			ProductRef:   p.ID,
			VariantRef:   v.ID,
			Name:         p.Name,
			VariantLabel: v.Label,
			ImageURL:     image,
			Qty:          qty[k],
			Price:        v.Price,
		})
	}
	return items, nil
}

// GetMyOrders lists the orders of the authenticated customer, newest first.
func (h *Handler) GetMyOrders(c *gin.Context) {
	uid, ok := handlers.CurrentUserID(c)
	if !ok {
		return
	}
	ctx, cancel := handlers.Ctx(c, 10*time.Second)
	defer cancel()

	orders, err := h.Stores.Orders.ListByUser(ctx, uid)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// loadOrder returns the order named by :id when the caller owns it or is an
// admin. Other users get a 404 so order ids stay private.
func (h *Handler) loadOrder(ctx context.Context, c *gin.Context) (*models.Order, bool) {
	uid, ok := handlers.CurrentUserID(c)
	if !ok {
		return nil, false
	}
	id, ok := handlers.ObjectIDParam(c, "id")
	if !ok {
		return nil, false
	}
	o, err := h.Stores.Orders.FindByID(ctx, id)
	if err != nil {
		utils.HandleError(c, err)
		return nil, false
	}
	if o.UserID != uid && !handlers.IsAdmin(c) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return nil, false
	}
	return o, true
}

func (h *Handler) GetOrder(c *gin.Context) {
	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	o, ok := h.loadOrder(ctx, c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, o)
}

// CancelOrder lets the customer cancel an order that has not shipped yet.
// Stock is put back and a paid online order is refunded in full.
func (h *Handler) CancelOrder(c *gin.Context) {
	ctx, cancel := handlers.Ctx(c, 15*time.Second)
	defer cancel()

	o, ok := h.loadOrder(ctx, c)
	if !ok {
		return
	}
	if !workflow.CanCustomerCancel(*o) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("Order is %s and can no longer be cancelled", o.Status)})
		return
	}

	updated, err := h.Stores.Orders.UpdateStatus(ctx, o.ID, o.Status, models.OrderCancelled, h.Clock())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	h.Restock(ctx, o.Items)

	if _, err := h.RefundCancelled(ctx, o); err != nil {
		zap.L().Error("❌ refund of cancelled order failed", zap.String("order", o.Number), zap.Error(err))
	}

	h.Notifier.Notify(ctx, models.NotifyOrderCancel, "Order "+o.Number+" was cancelled by the customer", o.ID.Hex())
	h.MailUser(ctx, o.UserID, func(to string) (utils.Mail, error) { return utils.OrderStatusMail(to, *updated) })

	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled", "order": updated})
}

// Invoice renders the order invoice as a PDF.
func (h *Handler) Invoice(c *gin.Context) {
	ctx, cancel := handlers.Ctx(c, 45*time.Second)
	defer cancel()

	o, ok := h.loadOrder(ctx, c)
	if !ok {
		return
	}

	var qr string
	if h.payableByUPI(*o) {
		if png, err := utils.UPIQRCode(h.Config.UPIVPA, h.Config.UPIPayeeName, o.Number, o.Amount, 200); err == nil {
			qr = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
		}
	}

	html, err := utils.RenderInvoiceHTML(*o, qr)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	pdf, err := utils.RenderInvoicePDF(ctx, html)
	if err != nil {
		zap.L().Error("❌ invoice pdf", zap.String("order", o.Number), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Invoice generation unavailable"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice-%s.pdf"`, o.Number))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *Handler) payableByUPI(o models.Order) bool {
	return h.Config.UPIVPA != "" &&
		o.Status != models.OrderCancelled &&
		o.PaymentStatus != models.PaymentStatusPaid
}

// UPIQR returns a PNG QR code that opens any UPI app on the order amount.
func (h *Handler) UPIQR(c *gin.Context) {
	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	o, ok := h.loadOrder(ctx, c)
	if !ok {
		return
	}
	if h.Config.UPIVPA == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "UPI payments are not configured"})
		return
	}
	if !h.payableByUPI(*o) {
		c.JSON(http.StatusConflict, gin.H{"error": "Nothing to pay on this order"})
		return
	}

	png, err := utils.UPIQRCode(h.Config.UPIVPA, h.Config.UPIPayeeName, o.Number, o.Amount, 256)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}
