// internal/domain/company/service.go
package company

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/mall-marketplace/internal/config"
	"github.com/your-org/mall-marketplace/internal/pkg/apperrors"
)

// Service handles company and branch reference data
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new company service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// ListCompanies returns all active companies with their branches
func (s *Service) ListCompanies() ([]Company, error) {
	var companies []Company
	err := s.db.Where("is_active = ?", true).
		Preload("Branches", "is_active = ?", true).
		Order("name ASC").
		Find(&companies).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return companies, nil
}

// GetCompany returns a single company by ID
func (s *Service) GetCompany(companyID uint) (*Company, error) {
	var company Company
	err := s.db.Where("id = ? AND is_active = ?", companyID, true).
		Preload("Branches", "is_active = ?", true).
		First(&company).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("company not found")
		}
		return nil, apperrors.Internal(err)
	}
	return &company, nil
}

// ListBranches returns all active branches, optionally filtered by company
func (s *Service) ListBranches(companyID uint) ([]Branch, error) {
	query := s.db.Where("is_active = ?", true).Preload("Company")
	if companyID > 0 {
		query = query.Where("company_id = ?", companyID)
	}

	var branches []Branch
	if err := query.Order("name ASC").Find(&branches).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return branches, nil
}

// GetBranch returns a single active branch by ID
func (s *Service) GetBranch(branchID uint) (*Branch, error) {
	var branch Branch
	err := s.db.Where("id = ? AND is_active = ?", branchID, true).
		Preload("Company").
		First(&branch).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("branch not found")
		}
		return nil, apperrors.Internal(err)
	}
	return &branch, nil
}
