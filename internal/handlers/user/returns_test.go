package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"farmlyf_back_end/internal/models"
	"farmlyf_back_end/internal/store"
	"farmlyf_back_end/internal/workflow"
)

type returnResponse struct {
	Return struct {
		ID              string   `json:"id"`
		Status          string   `json:"status"`
		Type            string   `json:"type"`
		RefundAmount    float64  `json:"refundAmount"`
		PriceDifference *float64 `json:"priceDifference"`
		Items           []struct {
			Qty int `json:"qty"`
		} `json:"items"`
	} `json:"return"`
	Steps       []string `json:"steps"`
	CurrentStep int      `json:"currentStep"`
	Timeline    []struct {
		Status  string `json:"status"`
		Done    bool   `json:"done"`
		Current bool   `json:"current"`
	} `json:"timeline"`
}

// deliveredOrder stores an order delivered `ago` before the test clock.
func (e *testEnv) deliveredOrder(t *testing.T, u models.User, ago time.Duration, p models.Product) models.Order {
	t.Helper()
	delivered := e.now.Add(-ago)
	o := models.Order{
		Number: "FL-TEST" + p.Slug,
		UserID: u.ID,
		Items: []models.OrderItem{
			{ProductRef: p.ID, VariantRef: p.Variants[0].ID, Name: p.Name, VariantLabel: p.Variants[0].Label, Qty: 2, Price: p.Variants[0].Price},
			{ProductRef: p.ID, VariantRef: p.Variants[1].ID, Name: p.Name, VariantLabel: p.Variants[1].Label, Qty: 1, Price: p.Variants[1].Price},
		},
		Amount:        2*p.Variants[0].Price + p.Variants[1].Price,
		Status:        models.OrderDelivered,
		PaymentMethod: models.PaymentCOD,
		PaymentStatus: models.PaymentStatusCOD,
		DeliveredAt:   &delivered,
	}
	require.NoError(t, e.stores.Orders.Create(context.Background(), &o))
	return o
}

func (e *testEnv) almonds(t *testing.T) models.Product {
	return e.product(t, "almonds",
		models.Variant{Label: "250g", Price: 200, Stock: 10},
		models.Variant{Label: "500g", Price: 380, Stock: 10},
		models.Variant{Label: "1kg", Price: 720, Stock: 1})
}

func returnBody(o models.Order, kind string, lines ...models.OrderItem) map[string]any {
	items := make([]any, 0, len(lines))
	for _, l := range lines {
		items = append(items, map[string]any{"productRef": l.ProductRef.Hex(), "variantRef": l.VariantRef.Hex(), "qty": l.Qty})
	}
	return map[string]any{"orderId": o.ID.Hex(), "items": items, "type": kind, "reason": "Damaged pack"}
}

func TestCreateRefundReturn(t *testing.T) {
	env := newTestEnv(t)
	u, token := env.customer(t, "9876543210")
	order := env.deliveredOrder(t, u, 48*time.Hour, env.almonds(t))

	first := order.Items[0]
	first.Qty = 1
	w := env.do(t, http.MethodPost, "/api/returns", returnBody(order, "refund", first), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp returnResponse
	decode(t, w, &resp)
	assert.Equal(t, "Pending", resp.Return.Status)
	assert.Equal(t, 200.0, resp.Return.RefundAmount)
	assert.Nil(t, resp.Return.PriceDifference)
	assert.Equal(t, []string{"Pending", "Approved", "Picked Up", "Quality Check", "Refunded"}, resp.Steps)
	assert.Equal(t, 0, resp.CurrentStep)
	require.Len(t, resp.Timeline, 5)
	assert.True(t, resp.Timeline[0].Current)
	assert.False(t, resp.Timeline[1].Done)

	w = env.do(t, http.MethodPost, "/api/returns", returnBody(order, "replace", order.Items[0]), token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "a line already covered cannot be returned again")

	w = env.do(t, http.MethodGet, "/api/returns/order/"+order.ID.Hex()+"/returnable", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var returnable struct {
		Returnable bool `json:"returnable"`
		Items      []struct {
			Returnable   bool   `json:"returnable"`
			ReturnStatus string `json:"returnStatus"`
		} `json:"items"`
	}
	decode(t, w, &returnable)
	assert.True(t, returnable.Returnable)
	require.Len(t, returnable.Items, 2)
	assert.False(t, returnable.Items[0].Returnable)
	assert.Equal(t, "Pending", returnable.Items[0].ReturnStatus)
	assert.True(t, returnable.Items[1].Returnable)

	n, err := env.stores.Notifications.UnreadCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCreateReplaceReturnPricesDifference(t *testing.T) {
	env := newTestEnv(t)
	u, token := env.customer(t, "9876543210")
	p := env.almonds(t)
	order := env.deliveredOrder(t, u, 24*time.Hour, p)

	body := returnBody(order, "replace", order.Items[0])
	body["replacementVariantId"] = p.Variants[1].ID.Hex()
	w := env.do(t, http.MethodPost, "/api/returns", body, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp returnResponse
	decode(t, w, &resp)
	require.NotNil(t, resp.Return.PriceDifference)
	assert.Equal(t, 360.0, *resp.Return.PriceDifference)
	assert.Len(t, resp.Steps, 6)

	body = returnBody(order, "replace", order.Items[1])
	body["replacementVariantId"] = p.Variants[2].ID.Hex()
	w = env.do(t, http.MethodPost, "/api/returns", body, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &resp)
	assert.Equal(t, 340.0, *resp.Return.PriceDifference)
}

func TestCreateReturnRejectsIneligibleOrders(t *testing.T) {
	env := newTestEnv(t)
	u, token := env.customer(t, "9876543210")
	_, other := env.customer(t, "9123456789")
	p := env.almonds(t)

	late := env.deliveredOrder(t, u, 8*24*time.Hour, p)
	w := env.do(t, http.MethodPost, "/api/returns", returnBody(late, "refund", late.Items[0]), token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "return window closed")

	pending := models.Order{UserID: u.ID, Items: late.Items, Status: models.OrderShipped}
	require.NoError(t, env.stores.Orders.Create(context.Background(), &pending))
	w = env.do(t, http.MethodPost, "/api/returns", returnBody(pending, "refund", pending.Items[0]), token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "not delivered yet")

	fresh := env.deliveredOrder(t, u, time.Hour, p)
	w = env.do(t, http.MethodPost, "/api/returns", returnBody(fresh, "refund", fresh.Items[0]), other)
	assert.Equal(t, http.StatusNotFound, w.Code, "someone else's order")

	w = env.do(t, http.MethodPost, "/api/returns", returnBody(fresh, "swap", fresh.Items[0]), token)
	assert.Equal(t, http.StatusBadRequest, w.Code, "unknown type")

	tooMany := fresh.Items[1]
	tooMany.Qty = 5
	w = env.do(t, http.MethodPost, "/api/returns", returnBody(fresh, "refund", tooMany), token)
	assert.Equal(t, http.StatusBadRequest, w.Code, "more than ordered")
}

func TestGetReturnIsScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	u, token := env.customer(t, "9876543210")
	_, other := env.customer(t, "9123456789")
	order := env.deliveredOrder(t, u, time.Hour, env.almonds(t))

	w := env.do(t, http.MethodPost, "/api/returns", returnBody(order, "refund", order.Items[1]), token)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp returnResponse
	decode(t, w, &resp)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/returns/"+resp.Return.ID, nil, token).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/returns/"+resp.Return.ID, nil, other).Code)

	w = env.do(t, http.MethodGet, "/api/returns/my", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var mine struct {
		Returns []any `json:"returns"`
	}
	decode(t, w, &mine)
	assert.Len(t, mine.Returns, 1)
}

// slowReturns widens the window between reading an order's returns and
// writing a new one.
type slowReturns struct {
	store.ReturnStore
	delay time.Duration
}

func (s slowReturns) ListByOrder(ctx context.Context, orderID primitive.ObjectID) ([]models.ReturnRequest, error) {
	time.Sleep(s.delay)
	return s.ReturnStore.ListByOrder(ctx, orderID)
}

func TestConcurrentReturnsForSameLine(t *testing.T) {
	env := newTestEnv(t)
	u, token := env.customer(t, "9876543210")
	order := env.deliveredOrder(t, u, 24*time.Hour, env.almonds(t))
	env.stores.Returns = slowReturns{ReturnStore: env.stores.Returns, delay: 50 * time.Millisecond}

	payload, err := json.Marshal(returnBody(order, "refund", order.Items[0]))
	require.NoError(t, err)

	codes := make([]int, 2)
	var wg sync.WaitGroup
	for i := range codes {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/returns", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)
			codes[i] = w.Code
		}()
	}
	wg.Wait()

	slices.Sort(codes)
	assert.Equal(t, []int{http.StatusCreated, http.StatusConflict}, codes)

	live, err := env.stores.Returns.ListByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, live, 1)

	stored, err := env.stores.Orders.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	key := workflow.ItemKey{ProductRef: order.Items[0].ProductRef, VariantRef: order.Items[0].VariantRef}
	assert.Equal(t, []string{key.String()}, stored.ReturnedItems)
}
