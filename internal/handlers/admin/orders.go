package admin

import (
	"errors"
	"fmt"
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

// ListOrders pages through all orders, optionally filtered by ?status=.
func (h *Handler) ListOrders(c *gin.Context) {
	page := utils.PageFromQuery(c)
	f := store.OrderFilter{Page: page}
	if raw := c.Query("status"); raw != "" {
		status, err := workflow.ParseOrderStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
			return
		}
		f.Status = status
	}

	ctx, cancel := handlers.Ctx(c, 10*time.Second)
	defer cancel()

	orders, total, err := h.Stores.Orders.List(ctx, f)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.PageResponse("orders", orders, total, page))
}

type statusRequest struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment" binding:"max=500"`
}

// 📦 UpdateOrderStatus moves an order along Processing → Shipped → Delivered
// or cancels it. Cancelling restocks the lines and refunds a paid online order.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := handlers.ObjectIDParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}
	to, err := workflow.ParseOrderStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
		return
	}

	ctx, cancel := handlers.Ctx(c, 10*time.Second)
	defer cancel()

	o, err := h.Stores.Orders.FindByID(ctx, id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	changed, err := workflow.ApplyOrderTransition(o.Status, to)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "from": o.Status, "to": to})
		return
	}
	if !changed {
		c.JSON(http.StatusOK, gin.H{"order": o, "changed": false})
		return
	}

	updated, err := h.Stores.Orders.UpdateStatus(ctx, id, o.Status, to, h.Clock())
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "Order was updated by someone else, reload and retry"})
			return
		}
		utils.HandleError(c, err)
		return
	}
	audit := gin.H{"from": o.Status, "to": to, "comment": req.Comment}
	if to == models.OrderCancelled {
		h.Restock(ctx, updated.Items)
		ref, err := h.RefundCancelled(ctx, o)
		if err != nil {
			zap.L().Error("❌ refund of cancelled order failed", zap.String("order", o.Number), zap.Error(err))
		}
		if ref != "" {
			audit["refund"] = ref
		}
	}

	zap.L().Info("📦 order status", zap.String("order", updated.Number), zap.String("from", string(o.Status)), zap.String("to", string(to)))
	h.Notifier.Notify(ctx, models.NotifyOrderStatus, fmt.Sprintf("Order %s moved to %s", updated.Number, to), updated.ID.Hex())
	h.MailUser(ctx, updated.UserID, func(addr string) (utils.Mail, error) { return utils.OrderStatusMail(addr, *updated) })
	c.Set(middleware.CtxAuditValue, audit)
	c.JSON(http.StatusOK, gin.H{"order": updated, "changed": true})
}
