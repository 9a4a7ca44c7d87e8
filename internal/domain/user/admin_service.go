// internal/domain/user/admin_service.go
package user

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/mall-marketplace/internal/config"
	"github.com/your-org/mall-marketplace/internal/pkg/apperrors"
)

// AdminService handles admin user management operations
type AdminService struct {
	db     *gorm.DB
	config *config.Config
}

// NewAdminService creates a new admin user service
func NewAdminService(db *gorm.DB, cfg *config.Config) *AdminService {
	return &AdminService{
		db:     db,
		config: cfg,
	}
}

// UserListRequest represents user list query parameters
type UserListRequest struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	Search    string `form:"search"`
	Status    string `form:"status"` // active, inactive, all
	Role      string `form:"role"`   // admin, user, all
	SortBy    string `form:"sort_by,default=created_at"`
	SortOrder string `form:"sort_order,default=desc"`
}

// UserListResponse represents user list with pagination
type UserListResponse struct {
	Users      []UserWithStats `json:"users"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// UserWithStats represents user with additional statistics
type UserWithStats struct {
	User
	OrderCount  int64      `json:"order_count"`
	TotalSpent  int64      `json:"total_spent"` // In cents
	LastOrderAt *time.Time `json:"last_order_at"`
}

// UserStatusUpdateRequest represents user status update data
type UserStatusUpdateRequest struct {
	IsActive *bool  `json:"is_active" binding:"required"`
	Reason   string `json:"reason,omitempty"`
}

// GetUsers retrieves users with filtering and pagination
func (s *AdminService) GetUsers(req *UserListRequest) (*UserListResponse, error) {
	var users []User
	var total int64

	query := s.db.Model(&User{})

	if req.Search != "" {
		searchTerm := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where(
			"LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			searchTerm, searchTerm, searchTerm,
		)
	}

	switch req.Status {
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
	}

	switch req.Role {
	case "admin":
		query = query.Where("is_admin = ?", true)
	case "user":
		query = query.Where("is_admin = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to count users: %w", err))
	}

	orderClause := req.SortBy
	if req.SortOrder == "desc" {
		orderClause += " DESC"
	} else {
		orderClause += " ASC"
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order(orderClause).Offset(offset).Limit(req.Limit).Find(&users).Error; err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to retrieve users: %w", err))
	}

	usersWithStats := make([]UserWithStats, 0, len(users))
	for _, u := range users {
		stats := s.getUserStats(u.ID)
		stats.User = u
		stats.User.Password = ""
		usersWithStats = append(usersWithStats, *stats)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &UserListResponse{
		Users:      usersWithStats,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
	}, nil
}

// GetUser retrieves a single user by ID with stats
func (s *AdminService) GetUser(userID uint) (*UserWithStats, error) {
	var user User
	if err := s.db.Preload("Cards").First(&user, userID).Error; err != nil {
		return nil, apperrors.NotFound("user not found")
	}

	stats := s.getUserStats(userID)
	stats.User = user
	stats.User.Password = ""

	return stats, nil
}

// UpdateUserStatus updates user active status
func (s *AdminService) UpdateUserStatus(userID uint, req *UserStatusUpdateRequest, adminID uint) error {
	var user User
	if err := s.db.First(&user, userID).Error; err != nil {
		return apperrors.NotFound("user not found")
	}

	if userID == adminID && req.IsActive != nil && !*req.IsActive {
		return apperrors.Forbidden("cannot deactivate your own account")
	}

	updates := map[string]interface{}{
		"is_active":  *req.IsActive,
		"updated_at": time.Now().UTC(),
	}

	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return apperrors.Internal(fmt.Errorf("failed to update user status: %w", err))
	}

	return nil
}

// ToggleUserAdmin toggles user admin status
func (s *AdminService) ToggleUserAdmin(userID uint, isAdmin bool, adminID uint) error {
	var user User
	if err := s.db.First(&user, userID).Error; err != nil {
		return apperrors.NotFound("user not found")
	}

	if userID == adminID && !isAdmin {
		return apperrors.Forbidden("cannot remove your own admin privileges")
	}

	if !isAdmin {
		var adminCount int64
		s.db.Model(&User{}).Where("is_admin = ? AND id != ?", true, userID).Count(&adminCount)
		if adminCount == 0 {
			return apperrors.Conflict("at least one admin must remain")
		}
	}

	updates := map[string]interface{}{
		"is_admin":   isAdmin,
		"updated_at": time.Now().UTC(),
	}

	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return apperrors.Internal(fmt.Errorf("failed to update admin status: %w", err))
	}

	return nil
}

// getUserStats gets order statistics for a user. Stats are best effort,
// a failed query falls back to zero values.
func (s *AdminService) getUserStats(userID uint) *UserWithStats {
	stats := &UserWithStats{}

	var orderStats struct {
		OrderCount  int64
		TotalSpent  int64
		LastOrderAt *time.Time
	}

	err := s.db.Raw(`
		SELECT
			COUNT(*) as order_count,
			COALESCE(SUM(total_amount), 0) as total_spent,
			MAX(created_at) as last_order_at
		FROM orders
		WHERE user_id = ? AND status != 'cancelled'
	`, userID).Scan(&orderStats).Error
	if err != nil {
		return stats
	}

	stats.OrderCount = orderStats.OrderCount
	stats.TotalSpent = orderStats.TotalSpent
	stats.LastOrderAt = orderStats.LastOrderAt

	return stats
}
