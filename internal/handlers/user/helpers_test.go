package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"farmlyf_back_end/internal/cache/cachetest"
	"farmlyf_back_end/internal/config"
	"farmlyf_back_end/internal/handlers"
	"farmlyf_back_end/internal/middleware"
	"farmlyf_back_end/internal/models"
	"farmlyf_back_end/internal/services"
	"farmlyf_back_end/internal/store"
	"farmlyf_back_end/internal/store/storetest"
	"farmlyf_back_end/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeOTP struct {
	mu    sync.Mutex
	codes map[string]string
}

func (f *fakeOTP) SendOTP(_ context.Context, phone, _, code string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[phone] = code
	return nil
}

func (f *fakeOTP) last(phone string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes[phone]
}

type testEnv struct {
	deps   *handlers.Deps
	stores *store.Stores
	cache  *cachetest.Memory
	otp    *fakeOTP
	router *gin.Engine
	now    time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		stores: storetest.New(),
		cache:  cachetest.New(),
		otp:    &fakeOTP{codes: map[string]string{}},
		now:    time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
	}
	cfg := &config.Config{
		AppEnv:                "dev",
		AccessTokenTTL:        15 * time.Minute,
		RefreshTokenTTL:       24 * time.Hour,
		ReturnWindow:          7 * 24 * time.Hour,
		ShippingFee:           49,
		FreeShippingThreshold: 499,
		UPIVPA:                "farmlyf@upi",
		UPIPayeeName:          "FarmLyf",
		FrontendURL:           "http://localhost:5173",
	}
	env.deps = &handlers.Deps{
		Config:   cfg,
		Stores:   env.stores,
		Cache:    env.cache,
		Tokens:   utils.NewTokenIssuer("test-secret", cfg.AccessTokenTTL),
		OTP:      env.otp,
		Notifier: services.NewNotifier(env.stores.Notifications, services.NewHub()),
		Now:      func() time.Time { return env.now },
	}

	h := New(env.deps)
	r := gin.New()
	auth := middleware.AuthRequired(env.deps.Tokens, env.cache)

	users := r.Group("/api/users")
	users.POST("/otp/request", h.RequestOTP)
	users.POST("/otp/verify", h.VerifyOTP)
	users.POST("/refresh", h.Refresh)
	users.POST("/logout", auth, h.Logout)
	users.GET("/me", auth, h.Me)
	users.PUT("/me", auth, h.UpdateMe)

	orders := r.Group("/api/orders", auth)
	orders.POST("", h.CreateOrder)
	orders.GET("/my", h.GetMyOrders)
	orders.GET("/:id", h.GetOrder)
	orders.POST("/:id/cancel", h.CancelOrder)
	orders.GET("/:id/upi-qr", h.UPIQR)

	returns := r.Group("/api/returns", auth)
	returns.POST("", h.CreateReturn)
	returns.GET("/my", h.GetMyReturns)
	returns.GET("/order/:orderId/returnable", h.Returnable)
	returns.GET("/:id", h.GetReturn)

	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// customer creates a user and returns it with a valid access token.
func (e *testEnv) customer(t *testing.T, phone string) (models.User, string) {
	t.Helper()
	u := models.User{Name: "Asha", Phone: phone, Email: "", Role: models.RoleCustomer, Provider: models.ProviderOTP}
	require.NoError(t, e.stores.Users.Create(context.Background(), &u))
	token, _, err := e.deps.Tokens.Issue(u)
	require.NoError(t, err)
	return u, token
}

func (e *testEnv) product(t *testing.T, name string, variants ...models.Variant) models.Product {
	t.Helper()
	p := models.Product{Name: name, Slug: name, IsActive: true, Variants: variants}
	require.NoError(t, e.stores.Products.Create(context.Background(), &p))
	return p
}

func (e *testEnv) stock(t *testing.T, p models.Product, i int) int {
	t.Helper()
	got, err := e.stores.Products.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	return got.Variants[i].Stock
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func validAddress() models.Address {
	return models.Address{
		FullName: "Asha Rao",
		Phone:    "9876543210",
		Line1:    "12 MG Road",
		City:     "Pune",
		State:    "Maharashtra",
		Pincode:  "411001",
	}
}
