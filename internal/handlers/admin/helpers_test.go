package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

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

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateIntent(ctx context.Context, o models.Order) (string, string, error) {
	args := m.Called(ctx, o)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockGateway) Refund(ctx context.Context, intentID string, amount float64, key string) (string, error) {
	args := m.Called(ctx, intentID, amount, key)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) ParseWebhook(payload []byte, signature string) (*services.PaymentEvent, error) {
	args := m.Called(payload, signature)
	ev, _ := args.Get(0).(*services.PaymentEvent)
	return ev, args.Error(1)
}

const adminPassword = "correct horse battery"

type testEnv struct {
	deps    *handlers.Deps
	stores  *store.Stores
	gateway *mockGateway
	router  *gin.Engine
	admin   models.User
	token   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	e := &testEnv{stores: storetest.New(), gateway: &mockGateway{}}
	mem := cachetest.New()
	e.deps = &handlers.Deps{
		Config: &config.Config{
			AppEnv:          "dev",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: time.Hour,
		},
		Stores:   e.stores,
		Cache:    mem,
		Tokens:   utils.NewTokenIssuer("test-secret", 15*time.Minute),
		Notifier: services.NewNotifier(e.stores.Notifications, services.NewHub()),
		Payments: e.gateway,
		Now:      func() time.Time { return time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC) },
	}

	h := New(e.deps)
	r := gin.New()
	r.POST("/api/admin/login", middleware.AdminLoginLimit(mem), h.Login)
	g := r.Group("/api/admin", middleware.AuthRequired(e.deps.Tokens, mem), middleware.RequireAdmin)
	g.GET("/dashboard", h.Dashboard)
	g.GET("/orders", h.ListOrders)
	g.PUT("/orders/:id/status", h.UpdateOrderStatus)
	g.GET("/returns", h.ListReturns)
	g.GET("/returns/:id", h.GetReturn)
	g.PUT("/returns/:id/status", middleware.Audit(e.stores.Audit, "return.status", "return"), h.UpdateReturnStatus)
	g.GET("/users", h.ListUsers)
	g.PUT("/users/:id/role", h.SetUserRole)
	g.GET("/notifications", h.ListNotifications)
	g.GET("/notifications/unread-count", h.UnreadCount)
	g.PUT("/notifications/:id/read", h.MarkRead)
	g.PUT("/notifications/read-all", h.MarkAllRead)
	g.GET("/notifications/ws", h.NotificationSocket)
	g.GET("/audit", h.GetAuditLogs)
	g.GET("/audit/stats", h.GetAuditStats)
	e.router = r

	hash, err := utils.HashPassword(adminPassword)
	require.NoError(t, err)
	e.admin = models.User{Name: "Ops", Email: "ops@farmlyf.in", Password: hash, Role: models.RoleAdmin, Provider: models.ProviderLocal}
	require.NoError(t, e.stores.Users.Create(context.Background(), &e.admin))
	e.token, _, err = e.deps.Tokens.Issue(e.admin)
	require.NoError(t, err)
	return e
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return e.doAs(t, method, path, body, e.token)
}

func (e *testEnv) doAs(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
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

func (e *testEnv) customer(t *testing.T, email string) models.User {
	t.Helper()
	u := models.User{Name: "Asha", Email: email, Role: models.RoleCustomer, Provider: models.ProviderOTP}
	require.NoError(t, e.stores.Users.Create(context.Background(), &u))
	return u
}

func (e *testEnv) product(t *testing.T, stock int) models.Product {
	t.Helper()
	p := models.Product{Name: "Almonds", Slug: "almonds", IsActive: true, Variants: []models.Variant{{Label: "500g", Price: 200, Stock: stock}}}
	require.NoError(t, e.stores.Products.Create(context.Background(), &p))
	return p
}

func (e *testEnv) order(t *testing.T, u models.User, p models.Product, status models.OrderStatus, method string) models.Order {
	t.Helper()
	o := models.Order{
		Number:        "FL-" + primitive.NewObjectID().Hex(),
		UserID:        u.ID,
		Items:         []models.OrderItem{{ProductRef: p.ID, VariantRef: p.Variants[0].ID, Name: p.Name, VariantLabel: "500g", Qty: 2, Price: 200}},
		Subtotal:      400,
		Amount:        400,
		Status:        status,
		PaymentMethod: method,
		PaymentStatus: models.PaymentStatusCOD,
	}
	if method == models.PaymentOnline {
		o.PaymentStatus = models.PaymentStatusPaid
		o.PaymentIntentID = "pi_paid"
	}
	require.NoError(t, e.stores.Orders.Create(context.Background(), &o))
	return o
}

func (e *testEnv) returnRequest(t *testing.T, o models.Order, rtype models.ReturnType, status models.ReturnStatus) models.ReturnRequest {
	t.Helper()
	r := models.ReturnRequest{
		OrderID:      o.ID,
		OrderNumber:  o.Number,
		UserID:       o.UserID,
		Items:        []models.ReturnItem{{ProductRef: o.Items[0].ProductRef, VariantRef: o.Items[0].VariantRef, Qty: 1, Price: 200}},
		Type:         rtype,
		Status:       status,
		Reason:       "Damaged pack",
		RefundAmount: 200,
		History:      []models.StatusChange{{Status: models.ReturnPending, Comment: "Request submitted"}},
		RequestDate:  time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, e.stores.Returns.Create(context.Background(), &r))
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
