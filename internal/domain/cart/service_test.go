// internal/domain/cart/service_test.go
package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCartViewGroupsByBranch(t *testing.T) {
	rows := []lineRow{
		{LineID: 1, VariantID: 10, ProductID: 100, ProductName: "Slim Jeans", BranchID: 1, BranchName: "Denim Co", Quantity: 2, UnitPrice: 4999, Stock: 8},
		{LineID: 2, VariantID: 11, ProductID: 101, ProductName: "Hoodie", BranchID: 2, BranchName: "Street Hub", Quantity: 1, UnitPrice: 7500, Stock: 3},
		{LineID: 3, VariantID: 12, ProductID: 102, ProductName: "Denim Jacket", BranchID: 1, BranchName: "Denim Co", Quantity: 1, UnitPrice: 12900, Stock: 2},
	}

	view := buildCartView(rows)

	require.Len(t, view.Groups, 2)

	denim := view.Groups[0]
	assert.Equal(t, uint(1), denim.BranchID)
	assert.Len(t, denim.Lines, 2)
	assert.Equal(t, int64(2*4999+12900), denim.Subtotal)

	street := view.Groups[1]
	assert.Equal(t, uint(2), street.BranchID)
	assert.Len(t, street.Lines, 1)
	assert.Equal(t, int64(7500), street.Subtotal)

	assert.Equal(t, 4, view.TotalQuantity)
	assert.Equal(t, denim.Subtotal+street.Subtotal, view.GrandTotal)
}

func TestBuildCartViewLineTotalsUseLivePrices(t *testing.T) {
	rows := []lineRow{
		{LineID: 1, VariantID: 10, BranchID: 1, BranchName: "Denim Co", Quantity: 3, UnitPrice: 1000},
	}

	view := buildCartView(rows)

	require.Len(t, view.Groups, 1)
	require.Len(t, view.Groups[0].Lines, 1)
	assert.Equal(t, int64(3000), view.Groups[0].Lines[0].LineTotal)
	assert.Equal(t, int64(3000), view.GrandTotal)
}

func TestBuildCartViewEmpty(t *testing.T) {
	view := buildCartView(nil)

	assert.NotNil(t, view.Groups)
	assert.Empty(t, view.Groups)
	assert.Zero(t, view.TotalQuantity)
	assert.Zero(t, view.GrandTotal)
}
