package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"farmlyf_back_end/internal/models"
	"farmlyf_back_end/internal/store"
)

// Audit actions recorded for the back office.
const (
	ActionOrderStatus   = "order.status"
	ActionReturnStatus  = "return.status"
	ActionProductCreate = "product.create"
	ActionProductUpdate = "product.update"
	ActionProductDelete = "product.delete"
	ActionCategoryWrite = "category.write"
	ActionBannerWrite   = "banner.write"
	ActionContentWrite  = "content.write"
	ActionBlogWrite     = "blog.write"
	ActionReviewDelete  = "review.delete"
	ActionAdminLogin    = "auth.admin_login"
)

// CtxAuditValue lets a handler attach the new value to the audit entry.
const CtxAuditValue = "audit_value"

// Audit records the outcome of the wrapped route asynchronously.
func Audit(audit store.AuditStore, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		entry := models.AuditLog{
			ID:         gocql.TimeUUID(),
			UserID:     c.GetString(CtxUserID),
			Action:     action,
			Resource:   resource,
			ResourceID: c.Param("id"),
			IPAddress:  c.ClientIP(),
			UserAgent:  c.GetHeader("User-Agent"),
			Success:    status >= 200 && status < 300,
			Status:     status,
			Timestamp:  time.Now().UTC(),
		}
		if entry.ResourceID == "" {
			entry.ResourceID = c.Param("key")
		}
		if v, ok := c.Get(CtxAuditValue); ok {
			if b, err := json.Marshal(v); err == nil {
				entry.NewValue = string(b)
			}
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := audit.Record(ctx, entry); err != nil {
				zap.L().Warn("⚠️ audit write failed", zap.String("action", action), zap.Error(err))
			}
		}()
	}
}
