package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmlyf_back_end/internal/models"
)

func TestOrderTransitions(t *testing.T) {
	_, err := ApplyOrderTransition(models.OrderProcessing, models.OrderShipped)
	assert.NoError(t, err)
	_, err = ApplyOrderTransition(models.OrderShipped, models.OrderDelivered)
	assert.NoError(t, err)
	_, err = ApplyOrderTransition(models.OrderProcessing, models.OrderCancelled)
	assert.NoError(t, err)

	_, err = ApplyOrderTransition(models.OrderShipped, models.OrderCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = ApplyOrderTransition(models.OrderDelivered, models.OrderProcessing)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = ApplyOrderTransition(models.OrderCancelled, models.OrderShipped)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	changed, err := ApplyOrderTransition(models.OrderShipped, models.OrderShipped)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestParseOrderStatus(t *testing.T) {
	st, err := ParseOrderStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, st)

	st, err = ParseOrderStatus("Canceled")
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, st)

	_, err = ParseOrderStatus("Returned")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestCheckReturnWindow(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	delivered := now.Add(-72 * time.Hour)
	order := models.Order{Status: models.OrderDelivered, DeliveredAt: &delivered}

	assert.NoError(t, CheckReturnWindow(order, 7*24*time.Hour, now))
	assert.ErrorIs(t, CheckReturnWindow(order, 48*time.Hour, now), ErrNotReturnable)

	order.Status = models.OrderShipped
	assert.ErrorIs(t, CheckReturnWindow(order, 7*24*time.Hour, now), ErrNotReturnable)
}

func TestCanCustomerCancel(t *testing.T) {
	assert.True(t, CanCustomerCancel(models.Order{Status: models.OrderProcessing}))
	assert.False(t, CanCustomerCancel(models.Order{Status: models.OrderShipped}))
}
