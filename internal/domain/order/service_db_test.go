// internal/domain/order/service_db_test.go
package order

import (
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/mall-marketplace/internal/config"
	"github.com/your-org/mall-marketplace/internal/domain/cart"
	"github.com/your-org/mall-marketplace/internal/domain/coupon"
	"github.com/your-org/mall-marketplace/internal/domain/product"
	"github.com/your-org/mall-marketplace/internal/domain/user"
	"github.com/your-org/mall-marketplace/internal/pkg/apperrors"
	"github.com/your-org/mall-marketplace/internal/pkg/push"
)

func newTestService(t *testing.T) (*Service, *coupon.Service) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&user.Card{},
		&user.DeviceToken{},
		&product.Category{},
		&product.Color{},
		&product.Product{},
		&product.ProductImage{},
		&product.ProductVariant{},
		&cart.CartLine{},
		&coupon.Coupon{},
		&coupon.Redemption{},
		&Order{},
		&OrderItem{},
	))

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		Checkout: config.CheckoutConfig{
			TaxRate:        0.1,
			CurrencyCode:   "USD",
			CouponCacheTTL: time.Minute,
		},
	}

	couponService := coupon.NewService(db, redisClient, cfg)
	return NewService(db, cfg, couponService, push.NewService(cfg)), couponService
}

func seedCard(t *testing.T, db *gorm.DB, userID uint) uint {
	t.Helper()

	card := user.Card{UserID: userID, Brand: "visa", Last4: "4242", ExpMonth: 12, ExpYear: 2031}
	require.NoError(t, db.Create(&card).Error)
	return card.ID
}

// seedBranchVariant creates a product with one variant on the given
// branch and returns the variant ID
func seedBranchVariant(t *testing.T, db *gorm.DB, branchID uint, price int64, stock int) uint {
	t.Helper()

	sku := fmt.Sprintf("SKU-%d-%d", branchID, stock)
	p := product.Product{
		SKU:        sku,
		Name:       "Hoodie " + sku,
		Slug:       "hoodie-" + sku,
		BranchID:   branchID,
		CategoryID: 1,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&p).Error)

	variant := product.ProductVariant{
		ProductID: p.ID,
		SKU:       sku + "-L",
		ColorID:   1,
		Size:      "L",
		Price:     price,
		Stock:     stock,
		IsActive:  true,
	}
	require.NoError(t, db.Create(&variant).Error)
	return variant.ID
}

func addCartLine(t *testing.T, db *gorm.DB, userID, variantID uint, quantity int) {
	t.Helper()

	line := cart.CartLine{UserID: userID, ProductVariantID: variantID, Quantity: quantity, Active: true}
	require.NoError(t, db.Create(&line).Error)
}

func seedBranchCoupon(t *testing.T, db *gorm.DB, branchID uint, percent int, minPurchase int64) *coupon.Coupon {
	t.Helper()

	now := time.Now().UTC()
	c := coupon.Coupon{
		Code:            fmt.Sprintf("SAVE%d-B%d", percent, branchID),
		DiscountPercent: percent,
		MinPurchase:     minPurchase,
		BranchID:        branchID,
		StartsAt:        now.Add(-time.Hour),
		EndsAt:          now.Add(time.Hour),
		MaxRedemptions:  10,
		IsActive:        true,
	}
	require.NoError(t, db.Create(&c).Error)
	return &c
}

func variantStock(t *testing.T, db *gorm.DB, variantID uint) int {
	t.Helper()

	var variant product.ProductVariant
	require.NoError(t, db.First(&variant, variantID).Error)
	return variant.Stock
}

func TestCheckoutCreatesOneOrderPerBranch(t *testing.T) {
	svc, _ := newTestService(t)
	cardID := seedCard(t, svc.db, 7)
	variantA := seedBranchVariant(t, svc.db, 1, 1000, 10)
	variantB := seedBranchVariant(t, svc.db, 2, 2500, 10)
	addCartLine(t, svc.db, 7, variantA, 2)
	addCartLine(t, svc.db, 7, variantB, 1)

	result, err := svc.CreateMultiBranchOrders(7, &CheckoutRequest{
		CardID:    cardID,
		BranchIDs: []uint{1, 2},
	})
	require.NoError(t, err)
	require.True(t, result.Succeeded())
	require.Len(t, result.OrdersCreated, 2)
	assert.Empty(t, result.Errors)

	for _, o := range result.OrdersCreated {
		assert.Equal(t, OrderStatusPending, o.Status)
		assert.Contains(t, o.OrderNumber, "ORD-")
		assert.NotEmpty(t, o.ConfirmationCode)
		require.Len(t, o.Items, 1)
	}

	first := result.OrdersCreated[0]
	assert.Equal(t, int64(2000), first.SubtotalAmount)
	assert.Equal(t, int64(200), first.TaxAmount)
	assert.Equal(t, int64(2200), first.TotalAmount)

	// Stock consumed, cart emptied
	assert.Equal(t, 8, variantStock(t, svc.db, variantA))
	assert.Equal(t, 9, variantStock(t, svc.db, variantB))

	var active int64
	require.NoError(t, svc.db.Model(&cart.CartLine{}).
		Where("user_id = ? AND active = ?", 7, true).
		Count(&active).Error)
	assert.Zero(t, active)
}

func TestCheckoutStockConflictFailsOnlyItsBranch(t *testing.T) {
	svc, _ := newTestService(t)
	cardID := seedCard(t, svc.db, 7)
	variantA := seedBranchVariant(t, svc.db, 1, 1000, 10)
	variantB := seedBranchVariant(t, svc.db, 2, 2500, 1)
	addCartLine(t, svc.db, 7, variantA, 2)
	addCartLine(t, svc.db, 7, variantB, 5) // Over stock

	result, err := svc.CreateMultiBranchOrders(7, &CheckoutRequest{
		CardID:    cardID,
		BranchIDs: []uint{1, 2},
	})
	require.NoError(t, err)
	require.True(t, result.Succeeded())
	require.Len(t, result.OrdersCreated, 1)
	require.Len(t, result.Errors, 1)

	assert.Equal(t, uint(1), result.OrdersCreated[0].BranchID)
	assert.Equal(t, uint(2), result.Errors[0].BranchID)
	assert.True(t, apperrors.IsConflict(result.FirstError()))

	// The failed branch rolled back untouched
	assert.Equal(t, 1, variantStock(t, svc.db, variantB))

	var line cart.CartLine
	require.NoError(t, svc.db.Where("product_variant_id = ?", variantB).First(&line).Error)
	assert.True(t, line.Active)
}

func TestCheckoutAppliesCouponToItsBranchOnly(t *testing.T) {
	svc, couponService := newTestService(t)
	cardID := seedCard(t, svc.db, 7)
	variantA := seedBranchVariant(t, svc.db, 1, 1000, 10)
	variantB := seedBranchVariant(t, svc.db, 2, 2500, 10)
	addCartLine(t, svc.db, 7, variantA, 2)
	addCartLine(t, svc.db, 7, variantB, 1)
	c := seedBranchCoupon(t, svc.db, 1, 10, 0)

	result, err := svc.CreateMultiBranchOrders(7, &CheckoutRequest{
		CardID:    cardID,
		BranchIDs: []uint{1, 2},
		CouponID:  &c.ID,
	})
	require.NoError(t, err)
	require.Len(t, result.OrdersCreated, 2)

	var discounted, plain *Order
	for i := range result.OrdersCreated {
		if result.OrdersCreated[i].BranchID == 1 {
			discounted = &result.OrdersCreated[i]
		} else {
			plain = &result.OrdersCreated[i]
		}
	}
	require.NotNil(t, discounted)
	require.NotNil(t, plain)

	// 10% of 2000, tax on the remainder
	assert.Equal(t, int64(200), discounted.DiscountAmount)
	assert.Equal(t, int64(180), discounted.TaxAmount)
	assert.Equal(t, int64(1980), discounted.TotalAmount)
	require.NotNil(t, discounted.CouponID)
	assert.Equal(t, c.ID, *discounted.CouponID)

	assert.Zero(t, plain.DiscountAmount)
	assert.Nil(t, plain.CouponID)

	redeemed, err := couponService.HasRedeemed(c.ID, 7)
	require.NoError(t, err)
	assert.True(t, redeemed)

	var reloaded coupon.Coupon
	require.NoError(t, svc.db.First(&reloaded, c.ID).Error)
	assert.Equal(t, 1, reloaded.RedemptionsUsed)
}

func TestCheckoutLeavesCouponWhenItsBranchFails(t *testing.T) {
	svc, couponService := newTestService(t)
	cardID := seedCard(t, svc.db, 7)
	variantA := seedBranchVariant(t, svc.db, 1, 1000, 10)
	variantB := seedBranchVariant(t, svc.db, 2, 2500, 1)
	addCartLine(t, svc.db, 7, variantA, 2)
	addCartLine(t, svc.db, 7, variantB, 5) // Coupon branch fails on stock
	c := seedBranchCoupon(t, svc.db, 2, 10, 0)

	result, err := svc.CreateMultiBranchOrders(7, &CheckoutRequest{
		CardID:    cardID,
		BranchIDs: []uint{1, 2},
		CouponID:  &c.ID,
	})
	require.NoError(t, err)
	require.True(t, result.Succeeded())
	require.Len(t, result.OrdersCreated, 1)
	require.Len(t, result.Errors, 1)
	assert.Zero(t, result.OrdersCreated[0].DiscountAmount)

	// The coupon survives for a later purchase
	redeemed, err := couponService.HasRedeemed(c.ID, 7)
	require.NoError(t, err)
	assert.False(t, redeemed)

	var reloaded coupon.Coupon
	require.NoError(t, svc.db.First(&reloaded, c.ID).Error)
	assert.Zero(t, reloaded.RedemptionsUsed)
}

func TestCheckoutBelowMinPurchaseSkipsCoupon(t *testing.T) {
	svc, couponService := newTestService(t)
	cardID := seedCard(t, svc.db, 7)
	variantA := seedBranchVariant(t, svc.db, 1, 1000, 10)
	addCartLine(t, svc.db, 7, variantA, 1)
	c := seedBranchCoupon(t, svc.db, 1, 10, 5000)

	result, err := svc.CreateMultiBranchOrders(7, &CheckoutRequest{
		CardID:    cardID,
		BranchIDs: []uint{1},
		CouponID:  &c.ID,
	})
	require.NoError(t, err)
	require.Len(t, result.OrdersCreated, 1)
	assert.Zero(t, result.OrdersCreated[0].DiscountAmount)

	redeemed, err := couponService.HasRedeemed(c.ID, 7)
	require.NoError(t, err)
	assert.False(t, redeemed)
}

func TestCheckoutAllBranchesFailed(t *testing.T) {
	svc, _ := newTestService(t)
	cardID := seedCard(t, svc.db, 7)
	variantA := seedBranchVariant(t, svc.db, 1, 1000, 1)
	addCartLine(t, svc.db, 7, variantA, 3)

	result, err := svc.CreateMultiBranchOrders(7, &CheckoutRequest{
		CardID:    cardID,
		BranchIDs: []uint{1, 2},
	})
	require.NoError(t, err)
	assert.False(t, result.Succeeded())
	require.Len(t, result.Errors, 2)

	// First error decides the response: branch 1 failed on stock
	assert.True(t, apperrors.IsConflict(result.FirstError()))
}

func TestCheckoutUnknownCardNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	variantA := seedBranchVariant(t, svc.db, 1, 1000, 10)
	addCartLine(t, svc.db, 7, variantA, 1)

	_, err := svc.CreateMultiBranchOrders(7, &CheckoutRequest{
		CardID:    999,
		BranchIDs: []uint{1},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCancelOrderRestoresStock(t *testing.T) {
	svc, _ := newTestService(t)
	cardID := seedCard(t, svc.db, 7)
	variantA := seedBranchVariant(t, svc.db, 1, 1000, 10)
	addCartLine(t, svc.db, 7, variantA, 3)

	result, err := svc.CreateMultiBranchOrders(7, &CheckoutRequest{
		CardID:    cardID,
		BranchIDs: []uint{1},
	})
	require.NoError(t, err)
	require.Len(t, result.OrdersCreated, 1)
	require.Equal(t, 7, variantStock(t, svc.db, variantA))

	require.NoError(t, svc.CancelOrder(7, result.OrdersCreated[0].ID))

	assert.Equal(t, 10, variantStock(t, svc.db, variantA))

	var cancelled Order
	require.NoError(t, svc.db.First(&cancelled, result.OrdersCreated[0].ID).Error)
	assert.Equal(t, OrderStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	// A cancelled order cannot be cancelled again
	err = svc.CancelOrder(7, result.OrdersCreated[0].ID)
	assert.True(t, apperrors.IsConflict(err))
}

func TestGenerateOrderNumberUsesCheckoutInstant(t *testing.T) {
	o := Order{ConfirmationCode: "a1b2c3d4-e5f6-7890-abcd-ef1234567890"}
	at := time.Date(2026, 8, 31, 23, 59, 0, 0, time.UTC)

	number := o.GenerateOrderNumber(at)

	assert.Equal(t, "ORD-20260831-A1B2C3D4E5F6", number)
}
