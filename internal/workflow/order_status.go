package workflow

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"farmlyf_back_end/internal/models"
)

var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderProcessing: {models.OrderShipped, models.OrderCancelled},
	models.OrderShipped:    {models.OrderDelivered},
}

// ParseOrderStatus accepts any casing of the four order statuses.
func ParseOrderStatus(s string) (models.OrderStatus, error) {
	for _, st := range []models.OrderStatus{models.OrderProcessing, models.OrderShipped, models.OrderDelivered, models.OrderCancelled} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	if strings.EqualFold(strings.TrimSpace(s), "canceled") {
		return models.OrderCancelled, nil
	}
	return "", fmt.Errorf("%w: order status %q", ErrUnknownStatus, s)
}

func CanTransitionOrder(from, to models.OrderStatus) bool {
	if from == to {
		return true
	}
	return slices.Contains(orderTransitions[from], to)
}

func ApplyOrderTransition(from, to models.OrderStatus) (bool, error) {
	if !CanTransitionOrder(from, to) {
		return false, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, to)
	}
	return from != to, nil
}

// CanCustomerCancel is true while the order has not left the warehouse.
func CanCustomerCancel(o models.Order) bool {
	return o.Status == models.OrderProcessing
}

// CheckReturnWindow fails unless the order was delivered within window of now.
func CheckReturnWindow(o models.Order, window time.Duration, now time.Time) error {
	if o.Status != models.OrderDelivered {
		return fmt.Errorf("%w: order is %s", ErrNotReturnable, o.Status)
	}
	if o.DeliveredAt == nil || window <= 0 {
		return nil
	}
	if now.After(o.DeliveredAt.Add(window)) {
		return fmt.Errorf("%w: return window closed on %s", ErrNotReturnable, o.DeliveredAt.Add(window).Format("02 Jan 2006"))
	}
	return nil
}
