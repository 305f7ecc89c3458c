package admin

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farmlyf_back_end/internal/handlers"
	"farmlyf_back_end/internal/models"
	"farmlyf_back_end/internal/store"
	"farmlyf_back_end/internal/utils"
)

// Handler serves the back office: login, dashboard, order and return
// processing, users, notifications and the audit trail.
type Handler struct {
	*handlers.Deps
}

func New(d *handlers.Deps) *Handler {
	return &Handler{Deps: d}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// 🔑 Login authenticates an admin with email and password.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := handlers.Ctx(c, 5*time.Second)
	defer cancel()

	u, err := h.Stores.Users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		utils.HandleError(c, err)
		return
	}
	if err != nil || u.Role != models.RoleAdmin || u.Password == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	ok, err := utils.VerifyPassword(req.Password, u.Password)
	if err != nil {
		zap.L().Error("❌ stored password hash unreadable", zap.String("user", u.ID.Hex()), zap.Error(err))
	}
	if !ok {
		zap.L().Warn("⚠️ admin login failed", zap.String("email", email), zap.String("ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if utils.NeedsRehash(u.Password) {
		if hash, err := utils.HashPassword(req.Password); err == nil {
			if err := h.Stores.Users.SetPassword(ctx, u.ID, hash); err != nil {
				zap.L().Warn("⚠️ password rehash", zap.String("user", u.ID.Hex()), zap.Error(err))
			}
		}
	}

	session, err := h.StartSession(c, *u)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	zap.L().Info("🔑 admin logged in", zap.String("user", u.ID.Hex()))
	c.JSON(http.StatusOK, session)
}
