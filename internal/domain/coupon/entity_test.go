// internal/domain/coupon/entity_test.go
package coupon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func usableCoupon(id uint, percent int) Coupon {
	return Coupon{
		ID:              id,
		Code:            "TEST",
		DiscountPercent: percent,
		BranchID:        1,
		StartsAt:        now.Add(-24 * time.Hour),
		EndsAt:          now.Add(24 * time.Hour),
		MaxRedemptions:  100,
		RedemptionsUsed: 0,
		IsActive:        true,
	}
}

func TestIsUsable(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Coupon)
		want   bool
	}{
		{"valid", func(c *Coupon) {}, true},
		{"inactive", func(c *Coupon) { c.IsActive = false }, false},
		{"not started", func(c *Coupon) { c.StartsAt = now.Add(time.Hour) }, false},
		{"expired", func(c *Coupon) { c.EndsAt = now.Add(-time.Hour) }, false},
		{"exhausted", func(c *Coupon) { c.RedemptionsUsed = c.MaxRedemptions }, false},
		{"window edge start", func(c *Coupon) { c.StartsAt = now }, true},
		{"window edge end", func(c *Coupon) { c.EndsAt = now }, true},
		{"last redemption left", func(c *Coupon) { c.RedemptionsUsed = c.MaxRedemptions - 1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := usableCoupon(1, 10)
			tt.mutate(&c)
			assert.Equal(t, tt.want, c.IsUsable(now))
		})
	}
}

func TestDiscountAmount(t *testing.T) {
	c := usableCoupon(1, 20)
	c.MinPurchase = 5000

	assert.Equal(t, int64(0), c.DiscountAmount(4999), "below minimum purchase")
	assert.Equal(t, int64(1000), c.DiscountAmount(5000))
	assert.Equal(t, int64(2199), c.DiscountAmount(10999), "rounds down")
}

func TestEligibleDiscount(t *testing.T) {
	c := usableCoupon(1, 10)
	c.MinPurchase = 1000

	assert.Equal(t, int64(500), EligibleDiscount(&c, 1, 5000, false, now))

	// discount only applies to the coupon's own branch
	assert.Zero(t, EligibleDiscount(&c, 2, 5000, false, now))

	// a user who already redeemed gets nothing
	assert.Zero(t, EligibleDiscount(&c, 1, 5000, true, now))

	// below minimum purchase
	assert.Zero(t, EligibleDiscount(&c, 1, 999, false, now))

	// nil coupon means no coupon sent with the order
	assert.Zero(t, EligibleDiscount(nil, 1, 5000, false, now))

	expired := usableCoupon(2, 10)
	expired.EndsAt = now.Add(-time.Minute)
	assert.Zero(t, EligibleDiscount(&expired, 1, 5000, false, now))
}

func TestSelectBestHighestPercentWins(t *testing.T) {
	coupons := []Coupon{
		usableCoupon(1, 10),
		usableCoupon(2, 30),
		usableCoupon(3, 20),
	}

	best := SelectBest(coupons, now)
	require.NotNil(t, best)
	assert.Equal(t, uint(2), best.ID)
}

func TestSelectBestSkipsUnusable(t *testing.T) {
	big := usableCoupon(1, 50)
	big.RedemptionsUsed = big.MaxRedemptions

	expired := usableCoupon(2, 40)
	expired.EndsAt = now.Add(-time.Hour)

	coupons := []Coupon{big, expired, usableCoupon(3, 15)}

	best := SelectBest(coupons, now)
	require.NotNil(t, best)
	assert.Equal(t, uint(3), best.ID)
}

func TestSelectBestTieBreaksOnEarliestEnd(t *testing.T) {
	a := usableCoupon(1, 25)
	a.EndsAt = now.Add(48 * time.Hour)

	b := usableCoupon(2, 25)
	b.EndsAt = now.Add(12 * time.Hour)

	best := SelectBest([]Coupon{a, b}, now)
	require.NotNil(t, best)
	assert.Equal(t, uint(2), best.ID, "coupon ending sooner wins the tie")

	// identical windows fall back to lowest ID, regardless of slice order
	c := usableCoupon(7, 25)
	d := usableCoupon(3, 25)
	c.EndsAt = b.EndsAt
	d.EndsAt = b.EndsAt

	best = SelectBest([]Coupon{b, c, d}, now)
	require.NotNil(t, best)
	assert.Equal(t, uint(2), best.ID)

	best = SelectBest([]Coupon{c, d}, now)
	require.NotNil(t, best)
	assert.Equal(t, uint(3), best.ID)
}

func TestSelectBestNoCandidates(t *testing.T) {
	assert.Nil(t, SelectBest(nil, now))

	exhausted := usableCoupon(1, 10)
	exhausted.RedemptionsUsed = exhausted.MaxRedemptions
	assert.Nil(t, SelectBest([]Coupon{exhausted}, now))
}

func TestRemainingRedemptions(t *testing.T) {
	c := usableCoupon(1, 10)
	c.MaxRedemptions = 5
	c.RedemptionsUsed = 3
	assert.Equal(t, 2, c.RemainingRedemptions())

	c.RedemptionsUsed = 7
	assert.Equal(t, 0, c.RemainingRedemptions(), "never negative")
}
