package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"farmlyf_back_end/internal/models"
)

// RequireAdmin must run after AuthRequired.
func RequireAdmin(c *gin.Context) {
	if c.GetString(CtxRole) != models.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}
	c.Next()
}
