// internal/domain/order/entity.go
package order

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order represents a single-branch order. A checkout that touches
// several branches produces one Order row per branch; an order never
// spans branches.
type Order struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	OrderNumber      string      `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	ConfirmationCode string      `gorm:"uniqueIndex;not null;size:64" json:"confirmation_code"` // Presented as QR at pickup
	UserID           uint        `gorm:"not null;index" json:"user_id"`
	BranchID         uint        `gorm:"not null;index" json:"branch_id"`
	CardID           uint        `gorm:"not null" json:"card_id"`
	CouponID         *uint       `gorm:"index" json:"coupon_id,omitempty"`
	Status           OrderStatus `gorm:"not null;default:'pending'" json:"status"`

	// Financial information, all in cents
	SubtotalAmount int64 `gorm:"not null" json:"subtotal_amount"`
	DiscountAmount int64 `gorm:"default:0" json:"discount_amount"`
	TaxAmount      int64 `gorm:"default:0" json:"tax_amount"`
	TotalAmount    int64 `gorm:"not null" json:"total_amount"`

	Currency string `gorm:"size:3;default:'USD'" json:"currency"`
	Notes    string `gorm:"type:text" json:"notes"`

	// Timestamps
	DeliveredAt *time.Time     `json:"delivered_at"`
	CancelledAt *time.Time     `json:"cancelled_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// OrderItem represents one variant in an order. Price is a snapshot of
// the variant price at checkout time.
type OrderItem struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	OrderID          uint      `gorm:"not null;index" json:"order_id"`
	ProductVariantID uint      `gorm:"not null;index" json:"product_variant_id"`
	SKU              string    `gorm:"not null;size:100" json:"sku"`
	Name             string    `gorm:"not null;size:255" json:"name"`
	ColorName        string    `gorm:"size:100" json:"color_name"`
	Size             string    `gorm:"size:20" json:"size"`
	Quantity         int       `gorm:"not null" json:"quantity"`
	UnitPrice        int64     `gorm:"not null" json:"unit_price"`   // Per unit in cents
	TotalPrice       int64     `gorm:"not null" json:"total_price"`  // Quantity * UnitPrice
	ImageURL         string    `gorm:"size:500" json:"image_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }

// GenerateOrderNumber derives the order number from the checkout
// instant and the confirmation code, so it exists before the row does.
// Format: ORD-YYYYMMDD-XXXXXXXXXXXX
func (o *Order) GenerateOrderNumber(now time.Time) string {
	code := strings.ToUpper(strings.ReplaceAll(o.ConfirmationCode, "-", ""))
	if len(code) > 12 {
		code = code[:12]
	}
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), code)
}

// GetFormattedTotal returns total amount as float
func (o *Order) GetFormattedTotal() float64 {
	return float64(o.TotalAmount) / 100
}

// CanBeCancelled checks if order can be cancelled. Only pending orders
// can; cancellation restores the stock its items consumed.
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending
}

// IsDelivered checks if order has been handed over
func (o *Order) IsDelivered() bool {
	return o.Status == OrderStatusDelivered
}
