package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farmlyf_back_end/internal/cache"
	"farmlyf_back_end/internal/utils"
)

// TokenCookie is the HttpOnly cookie used when no Authorization header is sent.
const TokenCookie = "token"

// Context keys set by AuthRequired.
const (
	CtxUserID   = "user_id"
	CtxRole     = "role"
	CtxEmail    = "email"
	CtxPhone    = "phone"
	CtxTokenID  = "token_id"
	CtxTokenExp = "token_exp"
)

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if tok, err := c.Cookie(TokenCookie); err == nil {
		return tok
	}
	return ""
}

// AuthRequired accepts a Bearer access token, falling back to the session
// cookie, and rejects revoked tokens.
func AuthRequired(issuer *utils.TokenIssuer, sessions cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
			return
		}

		claims, err := issuer.Parse(raw)
		if err != nil {
			zap.L().Debug("rejected token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		revoked, err := sessions.IsBlacklisted(c.Request.Context(), claims.ID)
		if err != nil {
			zap.L().Warn("⚠️ blacklist lookup failed", zap.Error(err))
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token revoked"})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is sent and lets
// anonymous requests through otherwise.
func OptionalAuth(issuer *utils.TokenIssuer, sessions cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.Next()
			return
		}
		claims, err := issuer.Parse(raw)
		if err != nil {
			c.Next()
			return
		}
		if revoked, _ := sessions.IsBlacklisted(c.Request.Context(), claims.ID); !revoked {
			setClaims(c, claims)
		}
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *utils.Claims) {
	c.Set(CtxUserID, claims.UserID)
	c.Set(CtxRole, claims.Role)
	c.Set(CtxEmail, claims.Email)
	c.Set(CtxPhone, claims.Phone)
	c.Set(CtxTokenID, claims.ID)
	if claims.ExpiresAt != nil {
		c.Set(CtxTokenExp, claims.ExpiresAt.Time)
	}
}

// TokenRemaining returns how long the current access token stays valid.
func TokenRemaining(c *gin.Context) time.Duration {
	exp, ok := c.Get(CtxTokenExp)
	if !ok {
		return 0
	}
	return time.Until(exp.(time.Time))
}
