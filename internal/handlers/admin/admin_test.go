package admin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"farmlyf_back_end/internal/models"
	"farmlyf_back_end/internal/store"
	"farmlyf_back_end/internal/store/storetest"
	"farmlyf_back_end/internal/workflow"
)

type returnResponse struct {
	Return  models.ReturnRequest  `json:"return"`
	Changed bool                  `json:"changed"`
	Next    []models.ReturnStatus `json:"next"`
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)

	w := e.doAs(t, http.MethodPost, "/api/admin/login", map[string]string{"email": "OPS@farmlyf.in", "password": adminPassword}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "access_token")
	assert.NotEmpty(t, w.Result().Cookies())

	w = e.doAs(t, http.MethodPost, "/api/admin/login", map[string]string{"email": "ops@farmlyf.in", "password": "wrong password"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	cust := models.User{Email: "buyer@farmlyf.in", Password: e.admin.Password, Role: models.RoleCustomer}
	require.NoError(t, e.stores.Users.Create(context.Background(), &cust))
	w = e.doAs(t, http.MethodPost, "/api/admin/login", map[string]string{"email": "buyer@farmlyf.in", "password": adminPassword}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "customers cannot use the admin login")
}

func TestLoginUpgradesLegacyHash(t *testing.T) {
	e := newTestEnv(t)
	legacy, err := bcrypt.GenerateFromPassword([]byte("legacy password"), bcrypt.MinCost)
	require.NoError(t, err)
	u := models.User{Email: "old@farmlyf.in", Password: string(legacy), Role: models.RoleAdmin}
	require.NoError(t, e.stores.Users.Create(context.Background(), &u))

	w := e.doAs(t, http.MethodPost, "/api/admin/login", map[string]string{"email": "old@farmlyf.in", "password": "legacy password"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := e.stores.Users.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.Password, "$argon2id$"))
}

func TestLoginLockout(t *testing.T) {
	e := newTestEnv(t)
	body := map[string]string{"email": "ops@farmlyf.in", "password": "wrong password"}
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusUnauthorized, e.doAs(t, http.MethodPost, "/api/admin/login", body, "").Code)
	}
	body["password"] = adminPassword
	assert.Equal(t, http.StatusTooManyRequests, e.doAs(t, http.MethodPost, "/api/admin/login", body, "").Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	e := newTestEnv(t)
	cust := e.customer(t, "asha@example.com")
	token, _, err := e.deps.Tokens.Issue(cust)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, e.doAs(t, http.MethodGet, "/api/admin/dashboard", nil, token).Code)
	assert.Equal(t, http.StatusUnauthorized, e.doAs(t, http.MethodGet, "/api/admin/dashboard", nil, "").Code)
}

func TestDashboard(t *testing.T) {
	e := newTestEnv(t)
	cust := e.customer(t, "asha@example.com")
	p := e.product(t, 3)
	e.order(t, cust, p, models.OrderDelivered, models.PaymentCOD)
	e.order(t, cust, p, models.OrderCancelled, models.PaymentCOD)
	o := e.order(t, cust, p, models.OrderDelivered, models.PaymentOnline)
	e.returnRequest(t, o, models.ReturnRefund, models.ReturnPending)

	w := e.do(t, http.MethodGet, "/api/admin/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats models.DashboardStats
	decode(t, w, &stats)

	assert.Equal(t, int64(3), stats.TotalOrders)
	assert.Equal(t, 800.0, stats.Revenue, "cancelled orders do not count")
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.TotalProducts)
	assert.Equal(t, int64(2), stats.OrdersByStatus["Delivered"])
	assert.Equal(t, int64(1), stats.PendingReturns)
	require.Len(t, stats.LowStock, 1)
	assert.Equal(t, 3, stats.LowStock[0].Stock)
}

func TestUpdateOrderStatus(t *testing.T) {
	e := newTestEnv(t)
	cust := e.customer(t, "asha@example.com")
	p := e.product(t, 10)
	o := e.order(t, cust, p, models.OrderProcessing, models.PaymentCOD)
	path := "/api/admin/orders/" + o.ID.Hex() + "/status"

	w := e.do(t, http.MethodPut, path, map[string]string{"status": "Delivered"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "cannot skip shipping")

	w = e.do(t, http.MethodPut, path, map[string]string{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPut, path, map[string]string{"status": "shipped"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"changed":true`)

	w = e.do(t, http.MethodPut, path, map[string]string{"status": "Shipped"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"changed":false`)

	w = e.do(t, http.MethodPut, path, map[string]string{"status": "Delivered"})
	require.Equal(t, http.StatusOK, w.Code)
	stored, err := e.stores.Orders.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.DeliveredAt)
	assert.Equal(t, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC), *stored.DeliveredAt)

	w = e.do(t, http.MethodPut, path, map[string]string{"status": "Cancelled"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "delivered is final")
}

func TestCancelOrderRestocks(t *testing.T) {
	e := newTestEnv(t)
	cust := e.customer(t, "asha@example.com")
	p := e.product(t, 10)
	o := e.order(t, cust, p, models.OrderProcessing, models.PaymentCOD)

	w := e.do(t, http.MethodPut, "/api/admin/orders/"+o.ID.Hex()+"/status", map[string]string{"status": "Cancelled"})
	require.Equal(t, http.StatusOK, w.Code)

	got, err := e.stores.Products.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, got.Variants[0].Stock)
}

func TestCancelPaidOnlineOrderRefunds(t *testing.T) {
	e := newTestEnv(t)
	cust := e.customer(t, "asha@example.com")
	p := e.product(t, 10)
	o := e.order(t, cust, p, models.OrderProcessing, models.PaymentOnline)

	e.gateway.On("Refund", mock.Anything, "pi_paid", 400.0, "order-"+o.ID.Hex()+"-cancel").Return("re_cancel", nil).Once()

	w := e.do(t, http.MethodPut, "/api/admin/orders/"+o.ID.Hex()+"/status", map[string]string{"status": "Cancelled"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	e.gateway.AssertExpectations(t)

	stored, err := e.stores.Orders.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, stored.PaymentStatus)
}

func TestOrderStatusNotifiesAdmins(t *testing.T) {
	e := newTestEnv(t)
	cust := e.customer(t, "asha@example.com")
	p := e.product(t, 10)
	o := e.order(t, cust, p, models.OrderProcessing, models.PaymentCOD)

	w := e.do(t, http.MethodPut, "/api/admin/orders/"+o.ID.Hex()+"/status", map[string]string{"status": "Shipped"})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/api/admin/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Notifications []models.Notification `json:"notifications"`
	}
	decode(t, w, &list)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, models.NotifyOrderStatus, list.Notifications[0].Kind)
	assert.Equal(t, o.ID.Hex(), list.Notifications[0].ResourceID)
	assert.Contains(t, list.Notifications[0].Message, "Shipped")
}

func TestListOrdersFilter(t *testing.T) {
	e := newTestEnv(t)
	cust := e.customer(t, "asha@example.com")
	p := e.product(t, 10)
	e.order(t, cust, p, models.OrderProcessing, models.PaymentCOD)
	e.order(t, cust, p, models.OrderShipped, models.PaymentCOD)

	w := e.do(t, http.MethodGet, "/api/admin/orders?status=shipped", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Orders []models.Order `json:"orders"`
		Total  int64          `json:"total"`
	}
	decode(t, w, &page)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, models.OrderShipped, page.Orders[0].Status)

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/api/admin/orders?status=lost", nil).Code)
}

func TestReturnTransitions(t *testing.T) {
	e := newTestEnv(t)
	cust := e.customer(t, "asha@example.com")
	p := e.product(t, 10)
	o := e.order(t, cust, p, models.OrderDelivered, models.PaymentCOD)
	r := e.returnRequest(t, o, models.ReturnRefund, models.ReturnPending)
	path := "/api/admin/returns/" + r.ID.Hex() + "/status"

	w := e.do(t, http.MethodPut, path, map[string]string{"status": "Refunded"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"allowed":["Approved","Rejected"]`)

	w = e.do(t, http.MethodPut, path, map[string]string{"status": "Dispatched"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "not a refund step")

	w = e.do(t, http.MethodPut, path, map[string]string{"status": "teleported"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPut, path, map[string]string{"status": "approved", "comment": "<b>ok</b> to collect"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp returnResponse
	decode(t, w, &resp)
	assert.True(t, resp.Changed)
	assert.Equal(t, models.ReturnApproved, resp.Return.Status)
	require.Len(t, resp.Return.History, 2)
	assert.Equal(t, "ok to collect", resp.Return.History[1].Comment)
	assert.Equal(t, e.admin.ID.Hex(), resp.Return.History[1].ActorID)
	assert.Equal(t, []models.ReturnStatus{models.ReturnPickedUp, models.ReturnRejected}, resp.Next)

	w = e.do(t, http.MethodPut, path, map[string]string{"status": "Approved"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.False(t, resp.Changed)
	assert.Len(t, resp.Return.History, 2, "re-applying a status adds no history")

	w = e.do(t, http.MethodPut, path, map[string]string{"status": "Rejected"})
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodPut, path, map[string]string{"status": "Approved"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "rejected is terminal")
}

func TestReplaceCompletedAlias(t *testing.T) {
	e := newTestEnv(t)
	cust := e.customer(t, "asha@example.com")
	p := e.product(t, 10)
	o := e.order(t, cust, p, models.OrderDelivered, models.PaymentCOD)
	r := e.returnRequest(t, o, models.ReturnReplace, models.ReturnDispatched)

	w := e.do(t, http.MethodPut, "/api/admin/returns/"+r.ID.Hex()+"/status", map[string]string{"status": "Completed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp returnResponse
	decode(t, w, &resp)
	assert.Equal(t, models.ReturnDelivered, resp.Return.Status)
	e.gateway.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRefundOnlineOrder(t *testing.T) {
	e := newTestEnv(t)
	cust := e.customer(t, "asha@example.com")
	p := e.product(t, 10)
	o := e.order(t, cust, p, models.OrderDelivered, models.PaymentOnline)
	r := e.returnRequest(t, o, models.ReturnRefund, models.ReturnQualityCheck)

	e.gateway.On("Refund", mock.Anything, "pi_paid", 200.0, "return-"+r.ID.Hex()+"-refund").Return("re_123", nil).Once()

	w := e.do(t, http.MethodPut, "/api/admin/returns/"+r.ID.Hex()+"/status", map[string]string{"status": "Refunded"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp returnResponse
	decode(t, w, &resp)
	assert.Equal(t, models.ReturnRefunded, resp.Return.Status)
	assert.Equal(t, "re_123", resp.Return.RefundReference)
	e.gateway.AssertExpectations(t)

	require.Eventually(t, func() bool {
		return len(e.stores.Audit.(*storetest.Audit).Snapshot()) == 1
	}, time.Second, 10*time.Millisecond)
	entry := e.stores.Audit.(*storetest.Audit).Snapshot()[0]
	assert.Equal(t, "return.status", entry.Action)
	assert.Equal(t, r.ID.Hex(), entry.ResourceID)
	assert.Contains(t, entry.NewValue, "re_123")
}

func TestRefundFailureKeepsStatus(t *testing.T) {
	e := newTestEnv(t)
	cust := e.customer(t, "asha@example.com")
	p := e.product(t, 10)
	o := e.order(t, cust, p, models.OrderDelivered, models.PaymentOnline)
	r := e.returnRequest(t, o, models.ReturnRefund, models.ReturnPickedUp)

	e.gateway.On("Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("card declined")).Once()

	w := e.do(t, http.MethodPut, "/api/admin/returns/"+r.ID.Hex()+"/status", map[string]string{"status": "Refunded"})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	stored, err := e.stores.Returns.FindByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReturnPickedUp, stored.Status)
	assert.Empty(t, stored.RefundReference)
	assert.Len(t, stored.History, 1, "the claimed step is rolled back")
}

func TestRefundWinsOverConcurrentReject(t *testing.T) {
	e := newTestEnv(t)
	cust := e.customer(t, "asha@example.com")
	p := e.product(t, 10)
	o := e.order(t, cust, p, models.OrderDelivered, models.PaymentOnline)
	r := e.returnRequest(t, o, models.ReturnRefund, models.ReturnQualityCheck)

	// Another admin rejects the request while the gateway is still paying out.
	var rejectErr error
	e.gateway.On("Refund", mock.Anything, "pi_paid", 200.0, "return-"+r.ID.Hex()+"-refund").
		Run(func(mock.Arguments) {
			_, rejectErr = e.stores.Returns.UpdateStatus(context.Background(), r.ID, models.ReturnQualityCheck,
				models.StatusChange{Status: models.ReturnRejected, At: time.Now()}, "")
		}).
		Return("re_123", nil).Once()

	w := e.do(t, http.MethodPut, "/api/admin/returns/"+r.ID.Hex()+"/status", map[string]string{"status": "Refunded"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.ErrorIs(t, rejectErr, store.ErrConflict)

	stored, err := e.stores.Returns.FindByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReturnRefunded, stored.Status)
	assert.Equal(t, "re_123", stored.RefundReference)
	e.gateway.AssertNumberOfCalls(t, "Refund", 1)
}

func TestPendingRefundIsSettledOnRetry(t *testing.T) {
	e := newTestEnv(t)
	cust := e.customer(t, "asha@example.com")
	p := e.product(t, 10)
	o := e.order(t, cust, p, models.OrderDelivered, models.PaymentOnline)
	r := e.returnRequest(t, o, models.ReturnRefund, models.ReturnQualityCheck)
	_, err := e.stores.Returns.UpdateStatus(context.Background(), r.ID, models.ReturnQualityCheck,
		models.StatusChange{Status: models.ReturnRefunded, At: time.Now()}, models.RefundPending)
	require.NoError(t, err)

	e.gateway.On("Refund", mock.Anything, "pi_paid", 200.0, "return-"+r.ID.Hex()+"-refund").Return("re_123", nil).Once()

	w := e.do(t, http.MethodPut, "/api/admin/returns/"+r.ID.Hex()+"/status", map[string]string{"status": "Refunded"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp returnResponse
	decode(t, w, &resp)
	assert.False(t, resp.Changed)
	assert.Equal(t, "re_123", resp.Return.RefundReference)
	e.gateway.AssertExpectations(t)
}

func TestRejectReleasesReturnClaim(t *testing.T) {
	e := newTestEnv(t)
	cust := e.customer(t, "asha@example.com")
	p := e.product(t, 10)
	o := e.order(t, cust, p, models.OrderDelivered, models.PaymentCOD)
	r := e.returnRequest(t, o, models.ReturnRefund, models.ReturnPending)
	ctx := context.Background()
	require.NoError(t, e.stores.Orders.ClaimReturnItems(ctx, o.ID, workflow.ClaimKeys(r.Items)))

	w := e.do(t, http.MethodPut, "/api/admin/returns/"+r.ID.Hex()+"/status", map[string]string{"status": "Rejected"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := e.stores.Orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ReturnedItems)
	assert.NoError(t, e.stores.Orders.ClaimReturnItems(ctx, o.ID, workflow.ClaimKeys(r.Items)), "line can be returned again")
}

func replaceRequest(t *testing.T, e *testEnv, o models.Order, replacement *primitive.ObjectID) models.ReturnRequest {
	t.Helper()
	r := models.ReturnRequest{
		OrderID:              o.ID,
		OrderNumber:          o.Number,
		UserID:               o.UserID,
		Items:                []models.ReturnItem{{ProductRef: o.Items[0].ProductRef, VariantRef: o.Items[0].VariantRef, Qty: 2, Price: 200}},
		Type:                 models.ReturnReplace,
		Status:               models.ReturnQualityCheck,
		Reason:               "Wrong pack size",
		ReplacementVariantID: replacement,
		History:              []models.StatusChange{{Status: models.ReturnPending}},
	}
	require.NoError(t, e.stores.Returns.Create(context.Background(), &r))
	return r
}

func TestDispatchReservesReplacementStock(t *testing.T) {
	e := newTestEnv(t)
	cust := e.customer(t, "asha@example.com")
	p := models.Product{Name: "Cashews", Slug: "cashews", IsActive: true, Variants: []models.Variant{
		{Label: "500g", Price: 200, Stock: 10},
		{Label: "1kg", Price: 380, Stock: 1},
	}}
	require.NoError(t, e.stores.Products.Create(context.Background(), &p))
	o := e.order(t, cust, p, models.OrderDelivered, models.PaymentCOD)

	t.Run("same variant", func(t *testing.T) {
		r := replaceRequest(t, e, o, nil)
		w := e.do(t, http.MethodPut, "/api/admin/returns/"+r.ID.Hex()+"/status", map[string]string{"status": "Dispatched"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		got, err := e.stores.Products.FindByID(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, 8, got.Variants[0].Stock)
	})

	t.Run("replacement out of stock", func(t *testing.T) {
		big := p.Variants[1].ID
		r := replaceRequest(t, e, o, &big)
		w := e.do(t, http.MethodPut, "/api/admin/returns/"+r.ID.Hex()+"/status", map[string]string{"status": "Dispatched"})
		assert.Equal(t, http.StatusConflict, w.Code)

		stored, err := e.stores.Returns.FindByID(context.Background(), r.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ReturnQualityCheck, stored.Status)
		got, err := e.stores.Products.FindByID(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Variants[1].Stock)
	})
}

func TestRefundCODIsManual(t *testing.T) {
	e := newTestEnv(t)
	cust := e.customer(t, "asha@example.com")
	p := e.product(t, 10)
	o := e.order(t, cust, p, models.OrderDelivered, models.PaymentCOD)
	r := e.returnRequest(t, o, models.ReturnRefund, models.ReturnQualityCheck)

	w := e.do(t, http.MethodPut, "/api/admin/returns/"+r.ID.Hex()+"/status", map[string]string{"status": "Refunded"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp returnResponse
	decode(t, w, &resp)
	assert.Equal(t, manualRefund, resp.Return.RefundReference)
	e.gateway.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// staleReturns serves a copy of a request read before another admin moved it.
type staleReturns struct {
	store.ReturnStore
	stale models.ReturnRequest
}

func (s staleReturns) FindByID(context.Context, primitive.ObjectID) (*models.ReturnRequest, error) {
	r := s.stale
	return &r, nil
}

func TestConcurrentReturnUpdateConflicts(t *testing.T) {
	e := newTestEnv(t)
	cust := e.customer(t, "asha@example.com")
	p := e.product(t, 10)
	o := e.order(t, cust, p, models.OrderDelivered, models.PaymentCOD)
	r := e.returnRequest(t, o, models.ReturnRefund, models.ReturnPending)

	_, err := e.stores.Returns.UpdateStatus(context.Background(), r.ID, models.ReturnPending,
		models.StatusChange{Status: models.ReturnRejected, At: time.Now()}, "")
	require.NoError(t, err)
	e.stores.Returns = staleReturns{ReturnStore: e.stores.Returns, stale: r}

	w := e.do(t, http.MethodPut, "/api/admin/returns/"+r.ID.Hex()+"/status", map[string]string{"status": "Approved"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListReturnsFilters(t *testing.T) {
	e := newTestEnv(t)
	cust := e.customer(t, "asha@example.com")
	p := e.product(t, 10)
	o := e.order(t, cust, p, models.OrderDelivered, models.PaymentCOD)
	e.returnRequest(t, o, models.ReturnRefund, models.ReturnPending)
	e.returnRequest(t, o, models.ReturnReplace, models.ReturnPickedUp)

	w := e.do(t, http.MethodGet, "/api/admin/returns?status=picked_up", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Returns []models.ReturnRequest `json:"returns"`
		Total   int64                  `json:"total"`
	}
	decode(t, w, &page)
	require.Len(t, page.Returns, 1)
	assert.Equal(t, models.ReturnReplace, page.Returns[0].Type)

	w = e.do(t, http.MethodGet, "/api/admin/returns?type=refund", nil)
	decode(t, w, &page)
	assert.Equal(t, int64(1), page.Total)

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/api/admin/returns?type=swap", nil).Code)
}

func TestSetUserRole(t *testing.T) {
	e := newTestEnv(t)
	cust := e.customer(t, "asha@example.com")

	w := e.do(t, http.MethodPut, "/api/admin/users/"+e.admin.ID.Hex()+"/role", map[string]string{"role": "customer"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = e.do(t, http.MethodPut, "/api/admin/users/"+cust.ID.Hex()+"/role", map[string]string{"role": "superuser"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPut, "/api/admin/users/"+cust.ID.Hex()+"/role", map[string]string{"role": "admin"})
	require.Equal(t, http.StatusOK, w.Code)
	stored, err := e.stores.Users.FindByID(context.Background(), cust.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, stored.Role)

	w = e.do(t, http.MethodGet, "/api/admin/users?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":2`)
	assert.Contains(t, w.Body.String(), `"pages":2`)
	assert.NotContains(t, w.Body.String(), "argon2id", "password hashes never leave the server")
}

func TestNotifications(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.deps.Notifier.Notify(ctx, models.NotifyNewOrder, "Order FL-1 placed", "a")
	e.deps.Notifier.Notify(ctx, models.NotifyNewReturn, "Return requested", "b")

	w := e.do(t, http.MethodGet, "/api/admin/notifications?unread=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Notifications []models.Notification `json:"notifications"`
		Unread        int64                 `json:"unread"`
	}
	decode(t, w, &list)
	require.Len(t, list.Notifications, 2)
	assert.Equal(t, int64(2), list.Unread)
	assert.Equal(t, "Return requested", list.Notifications[0].Message, "newest first")

	w = e.do(t, http.MethodPut, "/api/admin/notifications/"+list.Notifications[0].ID.Hex()+"/read", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodGet, "/api/admin/notifications/unread-count", nil)
	assert.JSONEq(t, `{"unread":1}`, w.Body.String())

	require.Equal(t, http.StatusOK, e.do(t, http.MethodPut, "/api/admin/notifications/read-all", nil).Code)
	w = e.do(t, http.MethodGet, "/api/admin/notifications/unread-count", nil)
	assert.JSONEq(t, `{"unread":0}`, w.Body.String())
}

func TestNotificationSocket(t *testing.T) {
	e := newTestEnv(t)
	srv := httptest.NewServer(e.router)
	defer srv.Close()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+e.token)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/admin/notifications/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	var hello map[string]any
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "connected", hello["type"])

	e.deps.Notifier.Notify(context.Background(), models.NotifyNewOrder, "Order FL-9 placed", "x")

	var msg struct {
		Type         string              `json:"type"`
		Notification models.Notification `json:"notification"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "notification", msg.Type)
	assert.Equal(t, "Order FL-9 placed", msg.Notification.Message)
}

func TestAuditEndpoints(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, e.stores.Audit.Record(ctx, models.AuditLog{Action: "product.update", Success: true}))
	require.NoError(t, e.stores.Audit.Record(ctx, models.AuditLog{Action: "product.update", Success: false}))
	require.NoError(t, e.stores.Audit.Record(ctx, models.AuditLog{Action: "return.status", Success: true}))

	w := e.do(t, http.MethodGet, "/api/admin/audit?action=product.update", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":2`)

	w = e.do(t, http.MethodGet, "/api/admin/audit/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":3,"failed":1,"byAction":{"product.update":2,"return.status":1}}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/api/admin/audit?day=yesterday", nil).Code)
}
