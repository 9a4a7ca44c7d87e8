// internal/domain/order/pricing.go
package order

import "math"

// Totals is the price breakdown of a single branch order, in cents
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Discount int64 `json:"discount"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// ComputeTotals derives tax and total from a subtotal and discount.
// Tax applies to the discounted amount and rounds to the nearest cent.
func ComputeTotals(subtotal, discount int64, taxRate float64) Totals {
	if discount > subtotal {
		discount = subtotal
	}
	taxable := subtotal - discount
	tax := int64(math.Round(float64(taxable) * taxRate))

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    taxable + tax,
	}
}
