// Package cache wraps Redis for OTP codes, session tokens, rate limit
// counters and read-through JSON caching.
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrOTPExpired  = errors.New("otp expired or not requested")
	ErrOTPMismatch = errors.New("otp does not match")
	ErrOTPLocked   = errors.New("too many wrong attempts")
	ErrTokenGone   = errors.New("refresh token expired or revoked")
)

const (
	OTPTTL         = 5 * time.Minute
	OTPMaxAttempts = 5
	CategoriesKey  = "cache:categories"
	CategoriesTTL  = time.Hour
	BannersKey     = "cache:banners"
	BannersTTL     = 10 * time.Minute
	ContentTTL     = time.Hour
)

// ContentKey is the cache entry of one CMS section.
func ContentKey(section string) string { return "cache:content:" + section }

// Cache is everything the HTTP layer needs from Redis.
type Cache interface {
	SaveOTP(ctx context.Context, phone, code string, ttl time.Duration) error
	// VerifyOTP consumes the code on success and counts failed attempts.
	VerifyOTP(ctx context.Context, phone, code string) error

	StoreRefreshToken(ctx context.Context, token, userID string, ttl time.Duration) error
	// ConsumeRefreshToken returns the owner and deletes the token.
	ConsumeRefreshToken(ctx context.Context, token string) (string, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)

	// Hit increments the counter of key and starts its window on first use.
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)

	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

func otpKey(phone string) string     { return "otp:" + phone }
func refreshKey(token string) string { return "refresh:" + token }
func blacklistKey(jti string) string { return "blacklist:" + jti }
func rateKey(key string) string      { return "ratelimit:" + key }
