// internal/domain/user/entity.go
package user

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// User represents the user entity
type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Email           string         `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password        string         `gorm:"not null;size:255" json:"-"` // Don't return in JSON
	FirstName       string         `gorm:"size:100" json:"first_name"`
	LastName        string         `gorm:"size:100" json:"last_name"`
	Phone           string         `gorm:"size:20" json:"phone"`
	Avatar          string         `gorm:"size:500" json:"avatar"`
	IsActive        bool           `gorm:"default:true" json:"is_active"`
	IsAdmin         bool           `gorm:"default:false" json:"is_admin"`
	EmailVerified   bool           `gorm:"default:false" json:"email_verified"`
	EmailVerifiedAt *time.Time     `json:"email_verified_at"`
	LastLoginAt     *time.Time     `json:"last_login_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Cards        []Card        `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"cards,omitempty"`
	DeviceTokens []DeviceToken `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// Card represents a saved payment card. Only masked data is stored,
// never the full card number.
type Card struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Brand      string    `gorm:"size:20;not null" json:"brand"` // visa, mastercard, amex
	Last4      string    `gorm:"size:4;not null" json:"last4"`
	ExpMonth   int       `gorm:"not null" json:"exp_month"`
	ExpYear    int       `gorm:"not null" json:"exp_year"`
	HolderName string    `gorm:"size:100" json:"holder_name"`
	IsDefault  bool      `gorm:"default:false" json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DeviceToken represents a push notification token for one of the
// user's devices
type DeviceToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_device_tokens_user_token" json:"user_id"`
	Token     string    `gorm:"size:500;not null;uniqueIndex:idx_device_tokens_user_token" json:"token"`
	Platform  string    `gorm:"size:20;not null" json:"platform"` // ios, android, web
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Card
func (Card) TableName() string {
	return "cards"
}

// TableName overrides the table name for DeviceToken
func (DeviceToken) TableName() string {
	return "device_tokens"
}

// BeforeCreate hook to handle business logic before user creation
func (u *User) BeforeCreate(tx *gorm.DB) error {
	// Email should be lowercase
	u.Email = strings.ToLower(u.Email)
	return nil
}

// GetFullName returns the user's full name
func (u *User) GetFullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// GetDisplayName returns display name (full name or email)
func (u *User) GetDisplayName() string {
	fullName := u.GetFullName()
	if fullName != "" {
		return fullName
	}
	return u.Email
}

// MaskedNumber returns the card number in masked display form
func (c *Card) MaskedNumber() string {
	return fmt.Sprintf("**** **** **** %s", c.Last4)
}

// IsExpired reports whether the card has passed its expiry month
func (c *Card) IsExpired(now time.Time) bool {
	if c.ExpYear < now.Year() {
		return true
	}
	if c.ExpYear == now.Year() && c.ExpMonth < int(now.Month()) {
		return true
	}
	return false
}
