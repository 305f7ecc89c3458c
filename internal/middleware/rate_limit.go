package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farmlyf_back_end/internal/cache"
	"farmlyf_back_end/internal/utils"
)

const (
	OTPRequestMax    = 3
	OTPRequestWindow = 10 * time.Minute

	AdminLoginMax    = 5
	AdminLoginWindow = 15 * time.Minute

	APIMaxRequests = 120
	APIWindow      = time.Minute
)

// RateLimit allows limit hits per window for the key returned by keyFn.
// An empty key skips the check.
func RateLimit(limiter cache.Cache, name string, limit int64, window time.Duration, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)
		if key == "" {
			c.Next()
			return
		}
		n, ttl, err := limiter.Hit(c.Request.Context(), name+":"+key, window)
		if err != nil {
			zap.L().Warn("⚠️ rate limiter unavailable", zap.String("limit", name), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
		remaining := limit - n
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if n > limit {
			c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Too many requests, retry in %d minutes", int(ttl.Minutes())+1),
				"retry_after": int(ttl.Seconds()),
			})
			return
		}
		c.Next()
	}
}

// ClientIPKey limits per caller address.
func ClientIPKey(c *gin.Context) string { return c.ClientIP() }

// JSONFieldKey peeks at a JSON body field without consuming the body.
func JSONFieldKey(field string, normalize func(string) string) func(*gin.Context) string {
	return func(c *gin.Context) string {
		if c.Request.Body == nil {
			return ""
		}
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return ""
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		var payload map[string]any
		if json.Unmarshal(body, &payload) != nil {
			return ""
		}
		v, _ := payload[field].(string)
		if normalize != nil {
			v = normalize(v)
		}
		return v
	}
}

// OTPRequestLimit allows three OTP requests per phone every ten minutes.
func OTPRequestLimit(limiter cache.Cache) gin.HandlerFunc {
	return RateLimit(limiter, "otp", OTPRequestMax, OTPRequestWindow, JSONFieldKey("phone", utils.NormalizePhone))
}

// APIRateLimit is the coarse per IP limit of the public API.
func APIRateLimit(limiter cache.Cache) gin.HandlerFunc {
	return RateLimit(limiter, "api", APIMaxRequests, APIWindow, ClientIPKey)
}

// AdminLoginLimit counts failed admin logins per email and locks the
// address once the limit is reached.
func AdminLoginLimit(limiter cache.Cache) gin.HandlerFunc {
	keyFn := JSONFieldKey("email", nil)
	return func(c *gin.Context) {
		email := keyFn(c)
		if email == "" {
			c.Next()
			return
		}
		failKey := "admin_login:" + email
		var failures int64
		if ok, _ := limiter.GetJSON(c.Request.Context(), failKey, &failures); ok && failures >= AdminLoginMax {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Too many failed attempts, account locked for %d minutes", int(AdminLoginWindow.Minutes())),
				"retry_after": int(AdminLoginWindow.Seconds()),
			})
			return
		}

		c.Next()

		switch c.Writer.Status() {
		case http.StatusUnauthorized:
			_ = limiter.SetJSON(c.Request.Context(), failKey, failures+1, AdminLoginWindow)
		case http.StatusOK:
			_ = limiter.Delete(c.Request.Context(), failKey)
		}
	}
}
