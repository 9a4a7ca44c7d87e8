// internal/domain/coupon/entity.go
package coupon

import (
	"time"

	"gorm.io/gorm"
)

// Coupon represents a percent discount campaign of a single branch.
// RedemptionsUsed never exceeds MaxRedemptions; the counter is only
// moved by a guarded UPDATE inside the redemption transaction.
type Coupon struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Code            string         `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Description     string         `gorm:"size:500" json:"description"`
	DiscountPercent int            `gorm:"not null;check:discount_percent > 0 AND discount_percent <= 100" json:"discount_percent"`
	MinPurchase     int64          `gorm:"not null;default:0" json:"min_purchase"` // Cents
	BranchID        uint           `gorm:"not null;index" json:"branch_id"`
	CategoryID      *uint          `gorm:"index" json:"category_id"`
	StartsAt        time.Time      `gorm:"not null" json:"starts_at"`
	EndsAt          time.Time      `gorm:"not null" json:"ends_at"`
	MaxRedemptions  int            `gorm:"not null" json:"max_redemptions"`
	RedemptionsUsed int            `gorm:"not null;default:0" json:"redemptions_used"`
	IsActive        bool           `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// Redemption records that a user redeemed a coupon. The unique index on
// (coupon_id, user_id) is what makes one-redemption-per-user hold under
// concurrent checkouts.
type Redemption struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CouponID   uint      `gorm:"not null;uniqueIndex:idx_redemptions_coupon_user" json:"coupon_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_redemptions_coupon_user" json:"user_id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	RedeemedAt time.Time `gorm:"not null" json:"redeemed_at"`
}

// TableName overrides the table name for Coupon
func (Coupon) TableName() string {
	return "coupons"
}

// TableName overrides the table name for Redemption
func (Redemption) TableName() string {
	return "coupon_redemptions"
}

// IsWithinWindow reports whether now falls inside the validity window
func (c *Coupon) IsWithinWindow(now time.Time) bool {
	return !now.Before(c.StartsAt) && !now.After(c.EndsAt)
}

// HasRemainingRedemptions reports whether the redemption cap is not yet
// reached
func (c *Coupon) HasRemainingRedemptions() bool {
	return c.RedemptionsUsed < c.MaxRedemptions
}

// RemainingRedemptions returns how many redemptions are left
func (c *Coupon) RemainingRedemptions() int {
	remaining := c.MaxRedemptions - c.RedemptionsUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsUsable reports whether the coupon can currently be applied at all
func (c *Coupon) IsUsable(now time.Time) bool {
	return c.IsActive && c.IsWithinWindow(now) && c.HasRemainingRedemptions()
}

// DiscountAmount computes the discount for a subtotal, zero when the
// minimum purchase is not met. Integer cents, rounded down.
func (c *Coupon) DiscountAmount(subtotal int64) int64 {
	if subtotal < c.MinPurchase {
		return 0
	}
	return subtotal * int64(c.DiscountPercent) / 100
}

// EligibleDiscount computes the discount a coupon grants on a branch
// order. It is zero unless the order belongs to the coupon's branch,
// the coupon is usable, the user has not redeemed it yet and the
// subtotal meets the minimum purchase.
func EligibleDiscount(c *Coupon, branchID uint, subtotal int64, alreadyRedeemed bool, now time.Time) int64 {
	if c == nil || alreadyRedeemed {
		return 0
	}
	if c.BranchID != branchID {
		return 0
	}
	if !c.IsUsable(now) {
		return 0
	}
	return c.DiscountAmount(subtotal)
}

// SelectBest picks the best currently usable coupon: highest discount
// percent, ties broken by the earliest end of the validity window, then
// by the lowest ID. Deterministic for equal inputs.
func SelectBest(coupons []Coupon, now time.Time) *Coupon {
	var best *Coupon
	for i := range coupons {
		c := &coupons[i]
		if !c.IsUsable(now) {
			continue
		}
		if best == nil {
			best = c
			continue
		}
		switch {
		case c.DiscountPercent > best.DiscountPercent:
			best = c
		case c.DiscountPercent == best.DiscountPercent && c.EndsAt.Before(best.EndsAt):
			best = c
		case c.DiscountPercent == best.DiscountPercent && c.EndsAt.Equal(best.EndsAt) && c.ID < best.ID:
			best = c
		}
	}
	return best
}
