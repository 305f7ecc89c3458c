package workflow

import (
	"github.com/shopspring/decimal"

	"farmlyf_back_end/internal/models"
)

// ShippingPolicy decides the delivery fee charged on an order.
type ShippingPolicy struct {
	Fee           float64
	FreeThreshold float64
}

// Totals is the priced breakdown of an order.
type Totals struct {
	Subtotal    float64
	ShippingFee float64
	Amount      float64
}

func money(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func lineTotal(price float64, qty int) decimal.Decimal {
	return money(price).Mul(decimal.NewFromInt(int64(qty)))
}

// PriceOrder sums the lines and applies the shipping policy.
func PriceOrder(items []models.OrderItem, policy ShippingPolicy) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(lineTotal(it.Price, it.Qty))
	}
	fee := decimal.Zero
	if policy.Fee > 0 && (policy.FreeThreshold <= 0 || subtotal.LessThan(money(policy.FreeThreshold))) {
		fee = money(policy.Fee)
	}
	return Totals{
		Subtotal:    subtotal.Round(2).InexactFloat64(),
		ShippingFee: fee.Round(2).InexactFloat64(),
		Amount:      subtotal.Add(fee).Round(2).InexactFloat64(),
	}
}

// RefundAmount is the value of the returned lines at the price paid.
func RefundAmount(items []models.ReturnItem) float64 {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(lineTotal(it.Price, it.Qty))
	}
	return total.Round(2).InexactFloat64()
}

// PriceDifference is what the customer owes (positive) or is owed (negative)
// when every returned line is swapped for the replacement variant.
func PriceDifference(items []models.ReturnItem, replacementPrice float64) float64 {
	diff := decimal.Zero
	for _, it := range items {
		diff = diff.Add(money(replacementPrice).Sub(money(it.Price)).Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	return diff.Round(2).InexactFloat64()
}

// ToMinorUnits converts rupees to paise for the payment gateway.
func ToMinorUnits(amount float64) int64 {
	return money(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
