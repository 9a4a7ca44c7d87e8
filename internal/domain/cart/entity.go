// internal/domain/cart/entity.go
package cart

import (
	"time"

	"gorm.io/gorm"
)

// CartLine represents one variant in a user's cart. At most one active
// line exists per user and variant; removing a line clears Active and
// re-adding the same variant reactivates the row instead of inserting
// a duplicate.
type CartLine struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"not null;index:idx_cart_lines_user_variant" json:"user_id"`
	ProductVariantID uint           `gorm:"not null;index:idx_cart_lines_user_variant" json:"product_variant_id"`
	Quantity         int            `gorm:"not null;default:1" json:"quantity"`
	Active           bool           `gorm:"not null;default:true;index" json:"active"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (CartLine) TableName() string {
	return "cart_lines"
}

// LineView is a cart line joined with live variant and product data.
// Prices are always read from the variant at request time, never stored
// on the line.
type LineView struct {
	LineID      uint   `json:"line_id"`
	VariantID   uint   `json:"variant_id"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	ColorName   string `json:"color_name"`
	Size        string `json:"size"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	LineTotal   int64  `json:"line_total"`
	Stock       int    `json:"stock"`
	ImageURL    string `json:"image_url,omitempty"`
}

// BranchGroup holds the cart lines of one branch with their subtotal
type BranchGroup struct {
	BranchID   uint       `json:"branch_id"`
	BranchName string     `json:"branch_name"`
	Lines      []LineView `json:"lines"`
	Subtotal   int64      `json:"subtotal"`
}

// CartView is the branch-grouped cart returned to clients
type CartView struct {
	Groups        []BranchGroup `json:"groups"`
	TotalQuantity int           `json:"total_quantity"`
	GrandTotal    int64         `json:"grand_total"`
}
