// internal/domain/cart/service_db_test.go
package cart

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/mall-marketplace/internal/config"
	"github.com/your-org/mall-marketplace/internal/domain/company"
	"github.com/your-org/mall-marketplace/internal/domain/product"
	"github.com/your-org/mall-marketplace/internal/pkg/apperrors"
)

func newTestService(t *testing.T) *Service {
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
		&company.Company{},
		&company.Branch{},
		&product.Category{},
		&product.Color{},
		&product.Product{},
		&product.ProductImage{},
		&product.ProductVariant{},
		&CartLine{},
	))

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	return NewService(db, redisClient, &config.Config{})
}

func seedVariant(t *testing.T, db *gorm.DB, sku string, stock int) *product.ProductVariant {
	t.Helper()

	branch := company.Branch{CompanyID: 1, Name: "Denim Co " + sku, IsActive: true}
	require.NoError(t, db.Create(&branch).Error)

	p := product.Product{
		SKU:        sku,
		Name:       "Slim Jeans " + sku,
		Slug:       "slim-jeans-" + sku,
		BranchID:   branch.ID,
		CategoryID: 1,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&p).Error)

	variant := product.ProductVariant{
		ProductID: p.ID,
		SKU:       sku + "-M",
		ColorID:   1,
		Size:      "M",
		Price:     4999,
		Stock:     stock,
		IsActive:  true,
	}
	require.NoError(t, db.Create(&variant).Error)
	return &variant
}

func TestAddItemSumsQuantityForActiveLine(t *testing.T) {
	svc := newTestService(t)
	variant := seedVariant(t, svc.db, "JEANS-1", 10)

	_, err := svc.AddItem(7, &AddItemRequest{ProductVariantID: variant.ID, Quantity: 2})
	require.NoError(t, err)

	view, err := svc.AddItem(7, &AddItemRequest{ProductVariantID: variant.ID, Quantity: 3})
	require.NoError(t, err)

	require.Len(t, view.Groups, 1)
	require.Len(t, view.Groups[0].Lines, 1)
	assert.Equal(t, 5, view.Groups[0].Lines[0].Quantity)

	var count int64
	require.NoError(t, svc.db.Unscoped().Model(&CartLine{}).
		Where("user_id = ? AND product_variant_id = ?", 7, variant.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAddItemReactivatesRemovedLine(t *testing.T) {
	svc := newTestService(t)
	variant := seedVariant(t, svc.db, "JEANS-2", 10)

	_, err := svc.AddItem(7, &AddItemRequest{ProductVariantID: variant.ID, Quantity: 4})
	require.NoError(t, err)

	var line CartLine
	require.NoError(t, svc.db.Where("user_id = ?", 7).First(&line).Error)
	require.NoError(t, svc.RemoveLine(7, line.ID))

	// Re-adding replaces the old quantity instead of accumulating it
	_, err = svc.AddItem(7, &AddItemRequest{ProductVariantID: variant.ID, Quantity: 1})
	require.NoError(t, err)

	var reactivated CartLine
	require.NoError(t, svc.db.Where("user_id = ?", 7).First(&reactivated).Error)
	assert.Equal(t, line.ID, reactivated.ID)
	assert.True(t, reactivated.Active)
	assert.Equal(t, 1, reactivated.Quantity)

	var count int64
	require.NoError(t, svc.db.Unscoped().Model(&CartLine{}).
		Where("user_id = ? AND product_variant_id = ?", 7, variant.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAddItemRejectsCumulativeOverStock(t *testing.T) {
	svc := newTestService(t)
	variant := seedVariant(t, svc.db, "JEANS-3", 3)

	_, err := svc.AddItem(7, &AddItemRequest{ProductVariantID: variant.ID, Quantity: 2})
	require.NoError(t, err)

	_, err = svc.AddItem(7, &AddItemRequest{ProductVariantID: variant.ID, Quantity: 2})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	var line CartLine
	require.NoError(t, svc.db.Where("user_id = ?", 7).First(&line).Error)
	assert.Equal(t, 2, line.Quantity)
}

func TestAddItemUnknownVariantNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.AddItem(7, &AddItemRequest{ProductVariantID: 999, Quantity: 1})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateLineOverStockKeepsStoredQuantity(t *testing.T) {
	svc := newTestService(t)
	variant := seedVariant(t, svc.db, "JEANS-4", 5)

	_, err := svc.AddItem(7, &AddItemRequest{ProductVariantID: variant.ID, Quantity: 2})
	require.NoError(t, err)

	var line CartLine
	require.NoError(t, svc.db.Where("user_id = ?", 7).First(&line).Error)

	_, err = svc.UpdateLine(7, line.ID, &UpdateLineRequest{Quantity: 99})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	var after CartLine
	require.NoError(t, svc.db.First(&after, line.ID).Error)
	assert.Equal(t, 2, after.Quantity)
}

func TestUpdateLineValidatesQuantity(t *testing.T) {
	svc := newTestService(t)
	variant := seedVariant(t, svc.db, "JEANS-5", 5)

	_, err := svc.AddItem(7, &AddItemRequest{ProductVariantID: variant.ID, Quantity: 2})
	require.NoError(t, err)

	var line CartLine
	require.NoError(t, svc.db.Where("user_id = ?", 7).First(&line).Error)

	_, err = svc.UpdateLine(7, line.ID, &UpdateLineRequest{Quantity: 0})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.UpdateLine(7, 12345, &UpdateLineRequest{Quantity: 1})
	assert.True(t, apperrors.IsNotFound(err))
}
