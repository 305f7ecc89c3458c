package cache

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis implements Cache on a go-redis client.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func (r *Redis) SaveOTP(ctx context.Context, phone, code string, ttl time.Duration) error {
	key := otpKey(phone)
	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, "code", code, "attempts", 0)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Redis) VerifyOTP(ctx context.Context, phone, code string) error {
	key := otpKey(phone)
	vals, err := r.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return err
	}
	stored, ok := vals["code"]
	if !ok {
		return ErrOTPExpired
	}
	attempts, _ := strconv.Atoi(vals["attempts"])
	if attempts >= OTPMaxAttempts {
		return ErrOTPLocked
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		n, err := r.rdb.HIncrBy(ctx, key, "attempts", 1).Result()
		if err != nil {
			return err
		}
		if n >= OTPMaxAttempts {
			zap.L().Warn("⚠️ otp locked after failed attempts", zap.String("phone", phone))
			return ErrOTPLocked
		}
		return ErrOTPMismatch
	}
	return r.rdb.Del(ctx, key).Err()
}

func (r *Redis) StoreRefreshToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	return r.rdb.Set(ctx, refreshKey(token), userID, ttl).Err()
}

func (r *Redis) ConsumeRefreshToken(ctx context.Context, token string) (string, error) {
	userID, err := r.rdb.GetDel(ctx, refreshKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenGone
	}
	return userID, err
}

func (r *Redis) DeleteRefreshToken(ctx context.Context, token string) error {
	return r.rdb.Del(ctx, refreshKey(token)).Err()
}

func (r *Redis) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, blacklistKey(jti), "revoked", ttl).Err()
}

func (r *Redis) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := r.rdb.Exists(ctx, blacklistKey(jti)).Result()
	return n > 0, err
}

func (r *Redis) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	k := rateKey(key)
	n, err := r.rdb.Incr(ctx, k).Result()
	if err != nil {
		return 0, 0, err
	}
	if n == 1 {
		if err := r.rdb.Expire(ctx, k, window).Err(); err != nil {
			return n, window, err
		}
		return n, window, nil
	}
	ttl, err := r.rdb.TTL(ctx, k).Result()
	if err != nil {
		return n, 0, err
	}
	if ttl < 0 {
		// counter lost its expiry, restart the window
		r.rdb.Expire(ctx, k, window)
		ttl = window
	}
	return n, ttl, nil
}

func (r *Redis) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, key, data, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.rdb.Del(ctx, keys...).Err()
}
