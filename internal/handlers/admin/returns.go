package admin

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farmlyf_back_end/internal/handlers"
	"farmlyf_back_end/internal/middleware"
	"farmlyf_back_end/internal/models"
	"farmlyf_back_end/internal/store"
	"farmlyf_back_end/internal/utils"
	"farmlyf_back_end/internal/workflow"
)

// manualRefund marks refunds settled outside the payment gateway (COD).
const manualRefund = "manual"

// ListReturns pages through return requests; ?status= and ?type= filter.
func (h *Handler) ListReturns(c *gin.Context) {
	page := utils.PageFromQuery(c)
	f := store.ReturnFilter{Page: page}
	if raw := c.Query("type"); raw != "" {
		t, err := workflow.ParseReturnType(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown return type"})
			return
		}
		f.Type = t
	}
	if raw := c.Query("status"); raw != "" {
		st, err := workflow.ParseReturnStatus(f.Type, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown return status"})
			return
		}
		f.Status = st
	}

	ctx, cancel := handlers.Ctx(c, 10*time.Second)
	defer cancel()

	returns, total, err := h.Stores.Returns.List(ctx, f)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.PageResponse("returns", returns, total, page))
}

// GetReturn shows one request with its tracker and the allowed next statuses.
func (h *Handler) GetReturn(c *gin.Context) {
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
	c.JSON(http.StatusOK, handlers.ReturnView(*r))
}

// UpdateReturnStatus advances a return request. The write is a
// compare-and-set on the status the admin saw, so two admins cannot both
// move the same request.
//
// A refund claims the Refunded status with a pending reference before the
// gateway is called. A gateway failure reverts the claim.
func (h *Handler) UpdateReturnStatus(c *gin.Context) {
	id, ok := handlers.ObjectIDParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}

	ctx, cancel := handlers.Ctx(c, 20*time.Second)
	defer cancel()

	r, err := h.Stores.Returns.FindByID(ctx, id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	to, err := workflow.ParseReturnStatus(r.Type, req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown return status"})
		return
	}
	changed, err := workflow.ApplyTransition(r.Type, r.Status, to)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   err.Error(),
			"from":    r.Status,
			"to":      to,
			"allowed": workflow.NextStatuses(r.Type, r.Status),
		})
		return
	}
	if !changed {
		// An earlier attempt claimed the refund but never settled it.
		if r.Status == models.ReturnRefunded && r.RefundReference == models.RefundPending {
			if r, err = h.settleRefund(ctx, r); err != nil {
				zap.L().Error("❌ refund retry failed", zap.String("return", id.Hex()), zap.Error(err))
				c.JSON(http.StatusBadGateway, gin.H{"error": "Refund is still pending, retry later"})
				return
			}
		}
		view := handlers.ReturnView(*r)
		view["changed"] = false
		c.JSON(http.StatusOK, view)
		return
	}

	var reserved []models.OrderItem
	if to == models.ReturnDispatched {
		reserved, err = h.reserveReplacement(ctx, r)
		if err != nil {
			if errors.Is(err, store.ErrNoStock) {
				c.JSON(http.StatusConflict, gin.H{"error": "Replacement pack size is out of stock"})
				return
			}
			utils.HandleError(c, err)
			return
		}
	}

	var refundRef string
	if to == models.ReturnRefunded {
		refundRef = models.RefundPending
	}

	uid, _ := c.Get(middleware.CtxUserID)
	actor, _ := uid.(string)
	change := models.StatusChange{Status: to, Comment: utils.StripTags(req.Comment), ActorID: actor, At: h.Clock()}
	updated, err := h.Stores.Returns.UpdateStatus(ctx, r.ID, r.Status, change, refundRef)
	if err != nil {
		h.Restock(ctx, reserved)
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "Return was updated by someone else, reload and retry"})
			return
		}
		utils.HandleError(c, err)
		return
	}

	switch to {
	case models.ReturnRefunded:
		settled, err := h.settleRefund(ctx, updated)
		if err != nil {
			zap.L().Error("❌ refund failed", zap.String("return", r.ID.Hex()), zap.Error(err))
			if _, rerr := h.Stores.Returns.RevertStatus(context.WithoutCancel(ctx), r.ID, to, r.Status); rerr != nil {
				zap.L().Error("❌ refund claim not reverted", zap.String("return", r.ID.Hex()), zap.Error(rerr))
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": "Refund could not be issued, status unchanged"})
			return
		}
		updated = settled
		refundRef = settled.RefundReference
	case models.ReturnRejected:
		if err := h.Stores.Orders.ReleaseReturnItems(context.WithoutCancel(ctx), r.OrderID, workflow.ClaimKeys(r.Items)); err != nil {
			zap.L().Error("❌ release return claim", zap.String("return", r.ID.Hex()), zap.Error(err))
		}
	}

	zap.L().Info("↩️ return status",
		zap.String("return", updated.ID.Hex()),
		zap.String("from", string(r.Status)),
		zap.String("to", string(to)),
		zap.String("refund", refundRef))
	h.MailUser(ctx, updated.UserID, func(addr string) (utils.Mail, error) { return utils.ReturnStatusMail(addr, *updated) })
	c.Set(middleware.CtxAuditValue, gin.H{"from": r.Status, "to": to, "comment": change.Comment, "refund": refundRef})

	view := handlers.ReturnView(*updated)
	view["changed"] = true
	c.JSON(http.StatusOK, view)
}

// settleRefund pays back the return and swaps the pending reference for
// the gateway's. The idempotency key makes a retry reuse the first refund
// instead of paying twice.
func (h *Handler) settleRefund(ctx context.Context, r *models.ReturnRequest) (*models.ReturnRequest, error) {
	ref, err := h.refund(ctx, r)
	if err != nil {
		return nil, err
	}
	return h.Stores.Returns.SetRefundReference(context.WithoutCancel(ctx), r.ID, ref)
}

func (h *Handler) refund(ctx context.Context, r *models.ReturnRequest) (string, error) {
	o, err := h.Stores.Orders.FindByID(ctx, r.OrderID)
	if err != nil {
		return "", err
	}
	if o.PaymentMethod != models.PaymentOnline || o.PaymentStatus != models.PaymentStatusPaid || o.PaymentIntentID == "" {
		return manualRefund, nil
	}
	if h.Payments == nil {
		return "", errors.New("payment gateway not configured")
	}
	return h.Payments.Refund(ctx, o.PaymentIntentID, r.RefundAmount, "return-"+r.ID.Hex()+"-refund")
}

// reserveReplacement takes the replacement units off the shelf. Without a
// replacement pack size the same variants go out again.
func (h *Handler) reserveReplacement(ctx context.Context, r *models.ReturnRequest) ([]models.OrderItem, error) {
	if r.Type != models.ReturnReplace || len(r.Items) == 0 {
		return nil, nil
	}
	var lines []models.OrderItem
	if r.ReplacementVariantID != nil {
		qty := 0
		for _, it := range r.Items {
			qty += it.Qty
		}
		lines = append(lines, models.OrderItem{ProductRef: r.Items[0].ProductRef, VariantRef: *r.ReplacementVariantID, Qty: qty})
	} else {
		for _, it := range r.Items {
			lines = append(lines, models.OrderItem{ProductRef: it.ProductRef, VariantRef: it.VariantRef, Qty: it.Qty})
		}
	}

	taken := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		if err := h.Stores.Products.DecrementStock(ctx, l.ProductRef, l.VariantRef, l.Qty); err != nil {
			h.Restock(ctx, taken)
			return nil, err
		}
		taken = append(taken, l)
	}
	return taken, nil
}
