// internal/domain/order/pricing_test.go
package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/mall-marketplace/internal/pkg/apperrors"
)

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name     string
		subtotal int64
		discount int64
		taxRate  float64
		want     Totals
	}{
		{
			name:     "no discount no tax",
			subtotal: 10000,
			want:     Totals{Subtotal: 10000, Discount: 0, Tax: 0, Total: 10000},
		},
		{
			name:     "tax on discounted amount",
			subtotal: 10000,
			discount: 2000,
			taxRate:  0.08,
			want:     Totals{Subtotal: 10000, Discount: 2000, Tax: 640, Total: 8640},
		},
		{
			name:     "tax rounds to nearest cent",
			subtotal: 999,
			taxRate:  0.08,
			want:     Totals{Subtotal: 999, Discount: 0, Tax: 80, Total: 1079},
		},
		{
			name:     "discount capped at subtotal",
			subtotal: 1000,
			discount: 5000,
			taxRate:  0.08,
			want:     Totals{Subtotal: 1000, Discount: 1000, Tax: 0, Total: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeTotals(tt.subtotal, tt.discount, tt.taxRate))
		})
	}
}

func TestDedupeBranchIDs(t *testing.T) {
	assert.Equal(t, []uint{3, 1, 2}, dedupeBranchIDs([]uint{3, 1, 3, 2, 1}))
	assert.Equal(t, []uint{5}, dedupeBranchIDs([]uint{0, 5, 0}))
	assert.Empty(t, dedupeBranchIDs(nil))
}

func TestFirstDiscountedOrder(t *testing.T) {
	orders := []Order{
		{ID: 1, BranchID: 1, DiscountAmount: 0},
		{ID: 2, BranchID: 2, DiscountAmount: 500},
		{ID: 3, BranchID: 3, DiscountAmount: 900},
	}

	discounted := firstDiscountedOrder(orders)
	require.NotNil(t, discounted)
	assert.Equal(t, uint(2), discounted.ID)

	assert.Nil(t, firstDiscountedOrder([]Order{{ID: 1}}))
	assert.Nil(t, firstDiscountedOrder(nil))
}

func TestCheckoutResultSucceeded(t *testing.T) {
	empty := &CheckoutResult{}
	assert.False(t, empty.Succeeded())
	assert.Nil(t, empty.FirstError())

	partial := &CheckoutResult{
		OrdersCreated: []Order{{ID: 1}},
		Errors: []BranchError{
			{BranchID: 2, Message: "insufficient stock", err: apperrors.Conflict("insufficient stock")},
		},
	}
	assert.True(t, partial.Succeeded(), "one order is enough for overall success")
	assert.True(t, apperrors.IsConflict(partial.FirstError()))

	allFailed := &CheckoutResult{
		Errors: []BranchError{
			{BranchID: 1, Message: "no cart items for branch 1", err: apperrors.NotFound("no cart items for branch 1")},
			{BranchID: 2, Message: "insufficient stock", err: apperrors.Conflict("insufficient stock")},
		},
	}
	assert.False(t, allFailed.Succeeded())
	assert.True(t, apperrors.IsNotFound(allFailed.FirstError()), "first branch error decides the status")
}

func TestOrderCanBeCancelled(t *testing.T) {
	assert.True(t, (&Order{Status: OrderStatusPending}).CanBeCancelled())
	assert.False(t, (&Order{Status: OrderStatusDelivered}).CanBeCancelled())
	assert.False(t, (&Order{Status: OrderStatusCancelled}).CanBeCancelled())
}
