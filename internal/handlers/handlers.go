// Package handlers holds the dependencies shared by the HTTP handler
// packages and the small request helpers they all use.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"farmlyf_back_end/internal/cache"
	"farmlyf_back_end/internal/config"
	"farmlyf_back_end/internal/middleware"
	"farmlyf_back_end/internal/models"
	"farmlyf_back_end/internal/services"
	"farmlyf_back_end/internal/store"
	"farmlyf_back_end/internal/utils"
)

// Deps is built once in main and handed to every handler package.
// Payments, Storage and Search are nil when the backend is not configured.
type Deps struct {
	Config   *config.Config
	Stores   *store.Stores
	Cache    cache.Cache
	Tokens   *utils.TokenIssuer
	OTP      services.OTPSender
	Mailer   utils.Mailer
	Notifier *services.Notifier
	Payments services.PaymentGateway
	Storage  services.Storage
	Search   services.ProductIndex
	Now      func() time.Time
}

func (d *Deps) Clock() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

// Ctx bounds a handler's storage calls.
func Ctx(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), timeout)
}

// ObjectIDParam parses the named path parameter, answering 400 when malformed.
func ObjectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return primitive.NilObjectID, false
	}
	return id, true
}

// CurrentUserID reads the authenticated user set by AuthRequired.
func CurrentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString(middleware.CtxUserID))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func IsAdmin(c *gin.Context) bool {
	return c.GetString(middleware.CtxRole) == models.RoleAdmin
}

// BindError answers 400 with the validator message.
func BindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid data", "details": err.Error()})
}
