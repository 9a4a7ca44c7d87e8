// internal/domain/favorite/entity.go
package favorite

import (
	"time"

	"gorm.io/gorm"
)

// FavoriteItem marks a variant a user wants to keep an eye on.
// One row per user and variant.
type FavoriteItem struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"not null;uniqueIndex:idx_favorites_user_variant" json:"user_id"`
	ProductVariantID uint           `gorm:"not null;uniqueIndex:idx_favorites_user_variant" json:"product_variant_id"`
	AddedAt          time.Time      `json:"added_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (FavoriteItem) TableName() string {
	return "favorite_items"
}
