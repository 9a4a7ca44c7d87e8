// internal/domain/review/entity.go
package review

import (
	"time"

	"gorm.io/gorm"
)

// Review represents a customer review of a purchased product
type Review struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ProductID  uint           `gorm:"not null;index" json:"product_id"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	OrderID    *uint          `gorm:"index" json:"order_id,omitempty"` // Link to verified purchase
	Rating     int            `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Title      string         `gorm:"size:255" json:"title"`
	Content    string         `gorm:"type:text" json:"content"`
	IsVerified bool           `gorm:"default:false" json:"is_verified"` // Verified purchase
	IsApproved bool           `gorm:"default:false" json:"is_approved"` // Admin approved
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name for Review
func (Review) TableName() string {
	return "reviews"
}

// CanBeEditedBy reports whether the user may still edit the review.
// Users can edit their own reviews within 30 days.
func (r *Review) CanBeEditedBy(userID uint) bool {
	if r.UserID != userID {
		return false
	}
	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	return r.CreatedAt.After(thirtyDaysAgo)
}
