package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farmlyf_back_end/internal/handlers"
	"farmlyf_back_end/internal/middleware"
	"farmlyf_back_end/internal/utils"
)

func (h *Handler) ListUsers(c *gin.Context) {
	page := utils.PageFromQuery(c)
	ctx, cancel := handlers.Ctx(c, 10*time.Second)
	defer cancel()

	users, total, err := h.Stores.Users.List(ctx, page)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.PageResponse("users", users, total, page))
}

type roleRequest struct {
	Role string `json:"role" binding:"required,oneof=customer admin"`
}

// SetUserRole grants or revokes back office access. Admins cannot demote
// themselves.
func (h *Handler) SetUserRole(c *gin.Context) {
	id, ok := handlers.ObjectIDParam(c, "id")
	if !ok {
		return
	}
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}
	if id.Hex() == c.GetString(middleware.CtxUserID) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "You cannot change your own role"})
		return
	}

	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	u, err := h.Stores.Users.SetRole(ctx, id, req.Role)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	zap.L().Info("🔐 role changed", zap.String("user", u.ID.Hex()), zap.String("role", u.Role))
	c.Set(middleware.CtxAuditValue, gin.H{"role": u.Role})
	c.JSON(http.StatusOK, u)
}
