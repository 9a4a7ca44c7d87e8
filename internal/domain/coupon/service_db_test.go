// internal/domain/coupon/service_db_test.go
package coupon

import (
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

	require.NoError(t, db.AutoMigrate(&Coupon{}, &Redemption{}))

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		Checkout: config.CheckoutConfig{CouponCacheTTL: time.Minute},
	}

	return NewService(db, redisClient, cfg)
}

func seedCoupon(t *testing.T, db *gorm.DB, code string, maxRedemptions int) *Coupon {
	t.Helper()

	now := time.Now().UTC()
	c := Coupon{
		Code:            code,
		DiscountPercent: 10,
		BranchID:        1,
		StartsAt:        now.Add(-time.Hour),
		EndsAt:          now.Add(time.Hour),
		MaxRedemptions:  maxRedemptions,
		IsActive:        true,
	}
	require.NoError(t, db.Create(&c).Error)
	return &c
}

func TestRedeemTwiceSameUserConflict(t *testing.T) {
	svc := newTestService(t)
	c := seedCoupon(t, svc.db, "SPRING10", 5)

	require.NoError(t, svc.Redeem(c.ID, 7, 100))

	err := svc.Redeem(c.ID, 7, 101)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	var reloaded Coupon
	require.NoError(t, svc.db.First(&reloaded, c.ID).Error)
	assert.Equal(t, 1, reloaded.RedemptionsUsed)

	var count int64
	require.NoError(t, svc.db.Model(&Redemption{}).
		Where("coupon_id = ? AND user_id = ?", c.ID, 7).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRedeemPastCapConflict(t *testing.T) {
	svc := newTestService(t)
	c := seedCoupon(t, svc.db, "LAST1", 1)

	require.NoError(t, svc.Redeem(c.ID, 7, 100))

	err := svc.Redeem(c.ID, 8, 101)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	var reloaded Coupon
	require.NoError(t, svc.db.First(&reloaded, c.ID).Error)
	assert.Equal(t, 1, reloaded.RedemptionsUsed)

	// The failed attempt must not leave a redemption row behind
	var count int64
	require.NoError(t, svc.db.Model(&Redemption{}).
		Where("user_id = ?", 8).
		Count(&count).Error)
	assert.Zero(t, count)
}

func TestBestActiveDiscountCachesEmptyResult(t *testing.T) {
	svc := newTestService(t)

	best, err := svc.BestActiveDiscount()
	require.NoError(t, err)
	assert.Nil(t, best)

	// A coupon created behind the cache's back stays invisible until
	// the cache is dropped
	seedCoupon(t, svc.db, "HIDDEN10", 5)

	best, err = svc.BestActiveDiscount()
	require.NoError(t, err)
	assert.Nil(t, best)

	svc.InvalidateBestCache()

	best, err = svc.BestActiveDiscount()
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, "HIDDEN10", best.Code)
}

func TestCreateCouponInvalidatesBestCache(t *testing.T) {
	svc := newTestService(t)

	best, err := svc.BestActiveDiscount()
	require.NoError(t, err)
	assert.Nil(t, best)

	now := time.Now().UTC()
	_, err = svc.CreateCoupon(&CreateCouponRequest{
		Code:            "FRESH15",
		DiscountPercent: 15,
		BranchID:        1,
		StartsAt:        now.Add(-time.Minute),
		EndsAt:          now.Add(time.Hour),
		MaxRedemptions:  10,
	})
	require.NoError(t, err)

	best, err = svc.BestActiveDiscount()
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, "FRESH15", best.Code)
}
