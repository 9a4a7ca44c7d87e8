// internal/domain/coupon/service.go
package coupon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/mall-marketplace/internal/config"
	"github.com/your-org/mall-marketplace/internal/pkg/apperrors"
)

const (
	bestCouponCacheKey = "coupon:best"

	// Cached when no coupon qualifies, so an empty coupon table does
	// not turn every request into a database query
	bestCouponCacheNone = "none"
)

// Service handles coupon business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new coupon service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// CreateCouponRequest represents coupon creation data
type CreateCouponRequest struct {
	Code            string    `json:"code" binding:"required,max=50"`
	Description     string    `json:"description"`
	DiscountPercent int       `json:"discount_percent" binding:"required,min=1,max=100"`
	MinPurchase     int64     `json:"min_purchase" binding:"gte=0"`
	BranchID        uint      `json:"branch_id" binding:"required"`
	CategoryID      *uint     `json:"category_id"`
	StartsAt        time.Time `json:"starts_at" binding:"required"`
	EndsAt          time.Time `json:"ends_at" binding:"required"`
	MaxRedemptions  int       `json:"max_redemptions" binding:"required,min=1"`
}

// RedemptionStatus reports a user's standing against a coupon
type RedemptionStatus struct {
	CouponID        uint `json:"coupon_id"`
	AlreadyRedeemed bool `json:"already_redeemed"`
	Remaining       int  `json:"remaining"`
}

// GetCoupon retrieves a coupon by ID
func (s *Service) GetCoupon(couponID uint) (*Coupon, error) {
	var c Coupon
	if err := s.db.First(&c, couponID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("coupon not found")
		}
		return nil, apperrors.Internal(err)
	}
	return &c, nil
}

// GetCouponByCode retrieves a coupon by its code
func (s *Service) GetCouponByCode(code string) (*Coupon, error) {
	var c Coupon
	if err := s.db.Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&c).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("coupon not found")
		}
		return nil, apperrors.Internal(err)
	}
	return &c, nil
}

// BestActiveDiscount returns the best currently usable coupon, or nil
// when none qualifies. The result is cached briefly in Redis and the
// cache is dropped whenever a redemption moves a usage counter.
func (s *Service) BestActiveDiscount() (*Coupon, error) {
	ctx := context.Background()

	if cached, err := s.redisClient.Get(ctx, bestCouponCacheKey).Result(); err == nil {
		if cached == bestCouponCacheNone {
			return nil, nil
		}
		var c Coupon
		if json.Unmarshal([]byte(cached), &c) == nil && c.ID != 0 {
			return &c, nil
		}
	}

	now := time.Now().UTC()

	var candidates []Coupon
	err := s.db.
		Where("is_active = ? AND starts_at <= ? AND ends_at >= ? AND redemptions_used < max_redemptions", true, now, now).
		Find(&candidates).Error
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to load coupons: %w", err))
	}

	best := SelectBest(candidates, now)
	if best == nil {
		s.redisClient.Set(ctx, bestCouponCacheKey, bestCouponCacheNone, s.config.Checkout.CouponCacheTTL)
		return nil, nil
	}

	if data, err := json.Marshal(best); err == nil {
		s.redisClient.Set(ctx, bestCouponCacheKey, data, s.config.Checkout.CouponCacheTTL)
	}

	return best, nil
}

// CheckRedemption reports whether the user already redeemed the coupon
// and how many redemptions remain overall
func (s *Service) CheckRedemption(couponID, userID uint) (*RedemptionStatus, error) {
	c, err := s.GetCoupon(couponID)
	if err != nil {
		return nil, err
	}

	var count int64
	err = s.db.Model(&Redemption{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &RedemptionStatus{
		CouponID:        c.ID,
		AlreadyRedeemed: count > 0,
		Remaining:       c.RemainingRedemptions(),
	}, nil
}

// HasRedeemed reports whether the user has a redemption row for the coupon
func (s *Service) HasRedeemed(couponID, userID uint) (bool, error) {
	var count int64
	err := s.db.Model(&Redemption{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Internal(err)
	}
	return count > 0, nil
}

// Redeem records a redemption for the user in one transaction. The
// unique (coupon_id, user_id) index rejects a second redemption by the
// same user and the guarded counter update rejects redemption past the
// cap, so concurrent checkouts cannot overshoot either limit.
func (s *Service) Redeem(couponID, userID, orderID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		redemption := Redemption{
			CouponID:   couponID,
			UserID:     userID,
			OrderID:    orderID,
			RedeemedAt: time.Now().UTC(),
		}
		if err := tx.Create(&redemption).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict("coupon already redeemed by this user")
			}
			return apperrors.Internal(fmt.Errorf("failed to record redemption: %w", err))
		}

		result := tx.Model(&Coupon{}).
			Where("id = ? AND redemptions_used < max_redemptions", couponID).
			Update("redemptions_used", gorm.Expr("redemptions_used + 1"))
		if result.Error != nil {
			return apperrors.Internal(result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.Conflict("coupon redemption limit reached")
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.InvalidateBestCache()
	return nil
}

// InvalidateBestCache drops the cached best coupon
func (s *Service) InvalidateBestCache() {
	ctx := context.Background()
	s.redisClient.Del(ctx, bestCouponCacheKey)
}

// CreateCoupon creates a new coupon (admin)
func (s *Service) CreateCoupon(req *CreateCouponRequest) (*Coupon, error) {
	if !req.EndsAt.After(req.StartsAt) {
		return nil, apperrors.Validation("ends_at must be after starts_at")
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))

	var existing Coupon
	if result := s.db.Where("code = ?", code).First(&existing); result.Error == nil {
		return nil, apperrors.Conflict("coupon code %s already exists", code)
	}

	c := Coupon{
		Code:            code,
		Description:     req.Description,
		DiscountPercent: req.DiscountPercent,
		MinPurchase:     req.MinPurchase,
		BranchID:        req.BranchID,
		CategoryID:      req.CategoryID,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
		MaxRedemptions:  req.MaxRedemptions,
		IsActive:        true,
	}

	if err := s.db.Create(&c).Error; err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create coupon: %w", err))
	}

	s.InvalidateBestCache()
	return &c, nil
}

// ListCoupons lists coupons, optionally filtered by branch (admin)
func (s *Service) ListCoupons(branchID uint) ([]Coupon, error) {
	query := s.db.Order("ends_at ASC")
	if branchID > 0 {
		query = query.Where("branch_id = ?", branchID)
	}

	var coupons []Coupon
	if err := query.Find(&coupons).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return coupons, nil
}

// DeactivateCoupon turns a coupon off (admin)
func (s *Service) DeactivateCoupon(couponID uint) error {
	result := s.db.Model(&Coupon{}).Where("id = ?", couponID).Update("is_active", false)
	if result.Error != nil {
		return apperrors.Internal(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("coupon not found")
	}

	s.InvalidateBestCache()
	return nil
}
