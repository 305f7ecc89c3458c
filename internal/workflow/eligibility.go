package workflow

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"farmlyf_back_end/internal/models"
)

// ItemKey identifies an order line.
type ItemKey struct {
	ProductRef primitive.ObjectID
	VariantRef primitive.ObjectID
}

func (k ItemKey) String() string {
	return k.ProductRef.Hex() + ":" + k.VariantRef.Hex()
}

// ReturnedItemSet collects the lines already covered by a live return.
// Rejected requests release their items.
func ReturnedItemSet(existing []models.ReturnRequest) map[ItemKey]models.ReturnStatus {
	covered := make(map[ItemKey]models.ReturnStatus)
	for _, r := range existing {
		if r.Status == models.ReturnRejected {
			continue
		}
		for _, it := range r.Items {
			covered[ItemKey{it.ProductRef, it.VariantRef}] = r.Status
		}
	}
	return covered
}

// ClaimKeys lists the order lines a return request holds.
func ClaimKeys(items []models.ReturnItem) []string {
	keys := make([]string, 0, len(items))
	for _, it := range items {
		keys = append(keys, ItemKey{it.ProductRef, it.VariantRef}.String())
	}
	return keys
}

// RequestedItem is a line the customer asks to return.
type RequestedItem struct {
	ProductRef primitive.ObjectID
	VariantRef primitive.ObjectID
	Qty        int
}

// ValidateReturnItems resolves requested lines against the order and rejects
// unknown, duplicated, over-quantity or already covered lines.
func ValidateReturnItems(order models.Order, requested []RequestedItem, covered map[ItemKey]models.ReturnStatus) ([]models.ReturnItem, error) {
	if len(requested) == 0 {
		return nil, fmt.Errorf("%w: no items selected", ErrInvalidItems)
	}
	seen := make(map[ItemKey]bool, len(requested))
	out := make([]models.ReturnItem, 0, len(requested))
	for _, r := range requested {
		key := ItemKey{r.ProductRef, r.VariantRef}
		if seen[key] {
			return nil, fmt.Errorf("%w: item %s listed twice", ErrInvalidItems, key)
		}
		seen[key] = true

		line, ok := order.Item(r.ProductRef, r.VariantRef)
		if !ok {
			return nil, fmt.Errorf("%w: item %s is not part of order %s", ErrInvalidItems, key, order.Number)
		}
		if st, taken := covered[key]; taken {
			return nil, fmt.Errorf("%w: %s already has a return in status %s", ErrNotReturnable, line.Name, st)
		}
		qty := r.Qty
		if qty == 0 {
			qty = line.Qty
		}
		if qty < 0 || qty > line.Qty {
			return nil, fmt.Errorf("%w: quantity %d for %s (ordered %d)", ErrInvalidItems, r.Qty, line.Name, line.Qty)
		}
		out = append(out, models.ReturnItem{
			ProductRef:   line.ProductRef,
			VariantRef:   line.VariantRef,
			Name:         line.Name,
			VariantLabel: line.VariantLabel,
			Qty:          qty,
			Price:        line.Price,
		})
	}
	return out, nil
}

// ReturnableLine describes whether one order line can still be returned.
type ReturnableLine struct {
	models.OrderItem
	Returnable   bool                `json:"returnable"`
	ReturnStatus models.ReturnStatus `json:"returnStatus,omitempty"`
}

func ReturnableLines(order models.Order, covered map[ItemKey]models.ReturnStatus) []ReturnableLine {
	out := make([]ReturnableLine, 0, len(order.Items))
	for _, it := range order.Items {
		st, taken := covered[ItemKey{it.ProductRef, it.VariantRef}]
		out = append(out, ReturnableLine{OrderItem: it, Returnable: !taken, ReturnStatus: st})
	}
	return out
}
