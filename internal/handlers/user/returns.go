package user

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"farmlyf_back_end/internal/handlers"
	"farmlyf_back_end/internal/models"
	"farmlyf_back_end/internal/store"
	"farmlyf_back_end/internal/utils"
	"farmlyf_back_end/internal/workflow"
)

type returnLineRequest struct {
	ProductRef string `json:"productRef" binding:"required,len=24,hexadecimal"`
	VariantRef string `json:"variantRef" binding:"required,len=24,hexadecimal"`
	Qty        int    `json:"qty" binding:"min=0,max=50"`
}

type createReturnRequest struct {
	OrderID              string              `json:"orderId" binding:"required,len=24,hexadecimal"`
	Items                []returnLineRequest `json:"items" binding:"required,min=1,dive"`
	Type                 string              `json:"type" binding:"required"`
	Reason               string              `json:"reason" binding:"required,min=3,max=200"`
	Comments             string              `json:"comments" binding:"max=1000"`
	ReplacementVariantID string              `json:"replacementVariantId" binding:"omitempty,len=24,hexadecimal"`
}

// CreateReturn files a refund or replacement request for delivered items.
func (h *Handler) CreateReturn(c *gin.Context) {
	uid, ok := handlers.CurrentUserID(c)
	if !ok {
		return
	}
	var req createReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}
	rtype, err := workflow.ParseReturnType(req.Type)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	orderID, _ := primitive.ObjectIDFromHex(req.OrderID)

	ctx, cancel := handlers.Ctx(c, 10*time.Second)
	defer cancel()

	order, err := h.Stores.Orders.FindByID(ctx, orderID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if order.UserID != uid {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	now := h.Clock()
	if err := workflow.CheckReturnWindow(*order, h.Config.ReturnWindow, now); err != nil {
		utils.HandleError(c, err)
		return
	}

	existing, err := h.Stores.Returns.ListByOrder(ctx, order.ID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	requested := make([]workflow.RequestedItem, 0, len(req.Items))
	for _, it := range req.Items {
		p, _ := primitive.ObjectIDFromHex(it.ProductRef)
		v, _ := primitive.ObjectIDFromHex(it.VariantRef)
		requested = append(requested, workflow.RequestedItem{ProductRef: p, VariantRef: v, Qty: it.Qty})
	}
	items, err := workflow.ValidateReturnItems(*order, requested, workflow.ReturnedItemSet(existing))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	rr := models.ReturnRequest{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		UserID:      uid,
		Items:       items,
		Type:        rtype,
		Status:      models.ReturnPending,
		Reason:      req.Reason,
		Comments:    utils.StripTags(req.Comments),
		RequestDate: now,
		History: []models.StatusChange{{
			Status:  models.ReturnPending,
			Comment: "Request submitted",
			ActorID: uid.Hex(),
			At:      now,
		}},
	}

	switch rtype {
	case models.ReturnRefund:
		rr.RefundAmount = workflow.RefundAmount(items)
	case models.ReturnReplace:
		if req.ReplacementVariantID != "" {
			vid, _ := primitive.ObjectIDFromHex(req.ReplacementVariantID)
			diff, err := h.replacementDifference(c, items, vid)
			if err != nil {
				utils.HandleError(c, err)
				return
			}
			rr.ReplacementVariantID = &vid
			rr.PriceDifference = &diff
		}
	}

	// The claim on the order is the atomic check: two requests racing past
	// the validation above cannot both hold the same line.
	keys := workflow.ClaimKeys(items)
	if err := h.Stores.Orders.ClaimReturnItems(ctx, order.ID, keys); err != nil {
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "These items already have a return in progress"})
			return
		}
		utils.HandleError(c, err)
		return
	}
	if err := h.Stores.Returns.Create(ctx, &rr); err != nil {
		if rerr := h.Stores.Orders.ReleaseReturnItems(context.WithoutCancel(ctx), order.ID, keys); rerr != nil {
			zap.L().Error("❌ release return claim", zap.String("order", order.Number), zap.Error(rerr))
		}
		utils.HandleError(c, err)
		return
	}

	zap.L().Info("📦 return requested",
		zap.String("return_id", rr.ID.Hex()),
		zap.String("order", order.Number),
		zap.String("type", string(rtype)))
	h.Notifier.Notify(ctx, models.NotifyNewReturn,
		fmt.Sprintf("New %s request on order %s", rtype, order.Number), rr.ID.Hex())

	c.JSON(http.StatusCreated, handlers.ReturnView(rr))
}

// replacementDifference checks the replacement pack size against the
// returned lines and prices the swap.
func (h *Handler) replacementDifference(c *gin.Context, items []models.ReturnItem, variantID primitive.ObjectID) (float64, error) {
	productID := items[0].ProductRef
	qty := 0
	for _, it := range items {
		if it.ProductRef != productID {
			return 0, utils.NewAppError(http.StatusBadRequest, "A replacement pack size can only be chosen for items of one product")
		}
		qty += it.Qty
	}

	p, err := h.Stores.Products.FindByID(c.Request.Context(), productID)
	if err != nil {
		return 0, err
	}
	v, ok := p.Variant(variantID)
	if !ok {
		return 0, utils.NewAppError(http.StatusBadRequest, "Replacement variant does not belong to this product")
	}
	if v.Stock < qty {
		return 0, utils.NewAppError(http.StatusConflict, fmt.Sprintf("Only %d of %s in stock", v.Stock, v.Label))
	}
	return workflow.PriceDifference(items, v.Price), nil
}

func (h *Handler) GetMyReturns(c *gin.Context) {
	uid, ok := handlers.CurrentUserID(c)
	if !ok {
		return
	}
	ctx, cancel := handlers.Ctx(c, 10*time.Second)
	defer cancel()

	returns, err := h.Stores.Returns.ListByUser(ctx, uid)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"returns": returns})
}

// GetReturn shows one request with its timeline.
func (h *Handler) GetReturn(c *gin.Context) {
	uid, ok := handlers.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := handlers.ObjectIDParam(c, "id")
	if !ok {
		return
	}
	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	r, err := h.Stores.Returns.FindByID(ctx, id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if r.UserID != uid && !handlers.IsAdmin(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Return not found"})
		return
	}
	c.JSON(http.StatusOK, handlers.ReturnView(*r))
}

// Returnable reports, per order line, whether a return can still be filed.
func (h *Handler) Returnable(c *gin.Context) {
	uid, ok := handlers.CurrentUserID(c)
	if !ok {
		return
	}
	orderID, ok := handlers.ObjectIDParam(c, "orderId")
	if !ok {
		return
	}
	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	order, err := h.Stores.Orders.FindByID(ctx, orderID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if order.UserID != uid {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	existing, err := h.Stores.Returns.ListByOrder(ctx, order.ID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	lines := workflow.ReturnableLines(*order, workflow.ReturnedItemSet(existing))
	resp := gin.H{"orderId": order.ID, "items": lines, "returnable": false}
	if err := workflow.CheckReturnWindow(*order, h.Config.ReturnWindow, h.Clock()); err != nil {
		resp["reason"] = err.Error()
	} else {
		for _, l := range lines {
			if l.Returnable {
				resp["returnable"] = true
				break
			}
		}
	}
	if order.DeliveredAt != nil && h.Config.ReturnWindow > 0 {
		resp["windowEndsAt"] = order.DeliveredAt.Add(h.Config.ReturnWindow)
	}
	c.JSON(http.StatusOK, resp)
}
