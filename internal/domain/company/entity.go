// internal/domain/company/entity.go
package company

import (
	"time"

	"gorm.io/gorm"
)

// Company represents a retail company operating in the mall
type Company struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	Logo        string         `gorm:"size:500" json:"logo"`
	Website     string         `gorm:"size:255" json:"website"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Branches []Branch `gorm:"foreignKey:CompanyID" json:"branches,omitempty"`
}

// Branch represents a single store of a company inside the mall.
// Orders and coupons are always scoped to one branch.
type Branch struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CompanyID uint           `gorm:"not null;index" json:"company_id"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	Floor     string         `gorm:"size:50" json:"floor"`
	UnitCode  string         `gorm:"size:50" json:"unit_code"`
	Phone     string         `gorm:"size:20" json:"phone"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}

// TableName overrides the table name for Company
func (Company) TableName() string {
	return "companies"
}

// TableName overrides the table name for Branch
func (Branch) TableName() string {
	return "branches"
}
