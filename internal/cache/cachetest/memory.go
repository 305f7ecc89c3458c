// Package cachetest is an in-memory cache.Cache for tests.
package cachetest

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"farmlyf_back_end/internal/cache"
)

type entry struct {
	value    string
	attempts int
	expires  time.Time
}

// Memory mirrors the Redis semantics closely enough for handler tests.
type Memory struct {
	mu   sync.Mutex
	data map[string]*entry
	now  func() time.Time
}

func New() *Memory {
	return &Memory{data: map[string]*entry{}, now: time.Now}
}

func (m *Memory) get(key string) *entry {
	e, ok := m.data[key]
	if !ok {
		return nil
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.data, key)
		return nil
	}
	return e
}

func (m *Memory) set(key, value string, ttl time.Duration) {
	e := &entry{value: value}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.data[key] = e
}

// OTP returns the pending code for phone, for tests that bypass delivery.
func (m *Memory) OTP(phone string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e := m.get("otp:" + phone); e != nil {
		return e.value
	}
	return ""
}

func (m *Memory) SaveOTP(_ context.Context, phone, code string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set("otp:"+phone, code, ttl)
	return nil
}

func (m *Memory) VerifyOTP(_ context.Context, phone, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.get("otp:" + phone)
	if e == nil {
		return cache.ErrOTPExpired
	}
	if e.attempts >= cache.OTPMaxAttempts {
		return cache.ErrOTPLocked
	}
	if e.value != code {
		e.attempts++
		if e.attempts >= cache.OTPMaxAttempts {
			return cache.ErrOTPLocked
		}
		return cache.ErrOTPMismatch
	}
	delete(m.data, "otp:"+phone)
	return nil
}

func (m *Memory) StoreRefreshToken(_ context.Context, token, userID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set("refresh:"+token, userID, ttl)
	return nil
}

func (m *Memory) ConsumeRefreshToken(_ context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.get("refresh:" + token)
	if e == nil {
		return "", cache.ErrTokenGone
	}
	delete(m.data, "refresh:"+token)
	return e.value, nil
}

func (m *Memory) DeleteRefreshToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, "refresh:"+token)
	return nil
}

func (m *Memory) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set("blacklist:"+jti, "revoked", ttl)
	return nil
}

func (m *Memory) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get("blacklist:"+jti) != nil, nil
}

func (m *Memory) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := "ratelimit:" + key
	e := m.get(k)
	if e == nil {
		m.set(k, "", window)
		e = m.data[k]
	}
	e.attempts++
	return int64(e.attempts), e.expires.Sub(m.now()), nil
}

func (m *Memory) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.get(key)
	if e == nil {
		return false, nil
	}
	return true, json.Unmarshal([]byte(e.value), dst)
}

func (m *Memory) SetJSON(_ context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(key, string(data), ttl)
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

var _ cache.Cache = (*Memory)(nil)
