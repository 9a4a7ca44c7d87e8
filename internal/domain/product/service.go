// internal/domain/product/service.go
package product

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/mall-marketplace/internal/config"
	"github.com/your-org/mall-marketplace/internal/pkg/apperrors"
)

// Service handles product business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=20"`
	BranchID   uint   `form:"branch_id"`
	CategoryID uint   `form:"category_id"`
	BrandID    uint   `form:"brand_id"`
	SeasonID   uint   `form:"season_id"`
	Gender     string `form:"gender"`
	Search     string `form:"search"`
	SortBy     string `form:"sort_by,default=created_at"`
	SortOrder  string `form:"sort_order,default=desc"`
	IsActive   *bool  `form:"is_active"`
	IsFeatured *bool  `form:"is_featured"`
}

// ProductCreateRequest represents product creation data
type ProductCreateRequest struct {
	SKU         string                 `json:"sku" binding:"required"`
	Name        string                 `json:"name" binding:"required"`
	Description string                 `json:"description"`
	ShortDesc   string                 `json:"short_description"`
	BranchID    uint                   `json:"branch_id" binding:"required"`
	CategoryID  uint                   `json:"category_id" binding:"required"`
	BrandID     *uint                  `json:"brand_id"`
	SeasonID    *uint                  `json:"season_id"`
	Gender      string                 `json:"gender"`
	IsActive    bool                   `json:"is_active"`
	IsFeatured  bool                   `json:"is_featured"`
	Variants    []VariantCreateRequest `json:"variants"`
}

// VariantCreateRequest represents variant creation data
type VariantCreateRequest struct {
	SKU     string `json:"sku" binding:"required"`
	ColorID uint   `json:"color_id" binding:"required"`
	Size    string `json:"size" binding:"required"`
	Price   int64  `json:"price" binding:"required,gt=0"`
	Stock   int    `json:"stock" binding:"gte=0"`
}

// ProductUpdateRequest represents product update data
type ProductUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ShortDesc   *string `json:"short_description"`
	CategoryID  *uint   `json:"category_id"`
	BrandID     *uint   `json:"brand_id"`
	SeasonID    *uint   `json:"season_id"`
	Gender      *string `json:"gender"`
	IsActive    *bool   `json:"is_active"`
	IsFeatured  *bool   `json:"is_featured"`
}

// VariantUpdateRequest represents variant update data
type VariantUpdateRequest struct {
	Price    *int64 `json:"price"`
	Stock    *int   `json:"stock"`
	IsActive *bool  `json:"is_active"`
}

// ProductResponse represents product response with pagination
type ProductResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// GetProducts retrieves products with filtering and pagination
func (s *Service) GetProducts(req *ProductListRequest) (*ProductResponse, error) {
	var products []Product
	var total int64

	// Build query
	query := s.db.Model(&Product{}).
		Preload("Category").
		Preload("Brand").
		Preload("Season").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, sort_order ASC, id ASC")
		}).
		Preload("Variants", "is_active = ?", true).
		Preload("Variants.Color")

	// Apply filters
	if req.BranchID > 0 {
		query = query.Where("branch_id = ?", req.BranchID)
	}

	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}

	if req.BrandID > 0 {
		query = query.Where("brand_id = ?", req.BrandID)
	}

	if req.SeasonID > 0 {
		query = query.Where("season_id = ?", req.SeasonID)
	}

	if req.Gender != "" {
		query = query.Where("gender = ?", req.Gender)
	}

	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", search, search)
	}

	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}

	if req.IsFeatured != nil {
		query = query.Where("is_featured = ?", *req.IsFeatured)
	}

	// Count total records
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to count products: %w", err))
	}

	// Apply sorting
	orderClause := s.buildOrderClause(req.SortBy, req.SortOrder)
	query = query.Order(orderClause)

	// Apply pagination
	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to retrieve products: %w", err))
	}

	// Calculate pagination info
	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	pagination := Pagination{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    req.Page < totalPages,
		HasPrev:    req.Page > 1,
	}

	return &ProductResponse{
		Products:   products,
		Pagination: pagination,
	}, nil
}

// GetProduct retrieves a single product by ID
func (s *Service) GetProduct(id uint) (*Product, error) {
	var product Product
	result := s.db.
		Preload("Category").
		Preload("Brand").
		Preload("Season").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("Variants", "is_active = ?", true).
		Preload("Variants.Color").
		Where("id = ?", id).
		First(&product)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("product not found")
		}
		return nil, apperrors.Internal(result.Error)
	}

	return &product, nil
}

// GetProductBySlug retrieves a single product by slug
func (s *Service) GetProductBySlug(slug string) (*Product, error) {
	var product Product
	result := s.db.
		Preload("Category").
		Preload("Brand").
		Preload("Season").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("Variants", "is_active = ?", true).
		Preload("Variants.Color").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("product not found")
		}
		return nil, apperrors.Internal(result.Error)
	}

	return &product, nil
}

// GetVariant retrieves a single active variant with its product
func (s *Service) GetVariant(variantID uint) (*ProductVariant, error) {
	var variant ProductVariant
	result := s.db.
		Preload("Product").
		Preload("Color").
		Where("id = ? AND is_active = ?", variantID, true).
		First(&variant)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("product variant not found")
		}
		return nil, apperrors.Internal(result.Error)
	}

	return &variant, nil
}

// CreateProduct creates a new product with its variants
func (s *Service) CreateProduct(req *ProductCreateRequest) (*Product, error) {
	// Check if SKU already exists
	var existing Product
	if result := s.db.Where("sku = ?", req.SKU).First(&existing); result.Error == nil {
		return nil, apperrors.Conflict("product with SKU %s already exists", req.SKU)
	}

	// Generate slug from name
	slug := s.generateSlug(req.Name)

	product := Product{
		SKU:         req.SKU,
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		ShortDesc:   req.ShortDesc,
		BranchID:    req.BranchID,
		CategoryID:  req.CategoryID,
		BrandID:     req.BrandID,
		SeasonID:    req.SeasonID,
		Gender:      req.Gender,
		IsActive:    req.IsActive,
		IsFeatured:  req.IsFeatured,
	}

	for _, v := range req.Variants {
		product.Variants = append(product.Variants, ProductVariant{
			SKU:      v.SKU,
			ColorID:  v.ColorID,
			Size:     v.Size,
			Price:    v.Price,
			Stock:    v.Stock,
			IsActive: true,
		})
	}

	if err := s.db.Create(&product).Error; err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create product: %w", err))
	}

	// Load relationships
	s.db.Preload("Category").Preload("Brand").Preload("Variants.Color").First(&product, product.ID)

	return &product, nil
}

// UpdateProduct updates an existing product
func (s *Service) UpdateProduct(id uint, req *ProductUpdateRequest) (*Product, error) {
	var product Product
	result := s.db.Where("id = ?", id).First(&product)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("product not found")
		}
		return nil, apperrors.Internal(result.Error)
	}

	// Update fields
	updates := make(map[string]interface{})

	if req.Name != nil {
		updates["name"] = *req.Name
		updates["slug"] = s.generateSlug(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ShortDesc != nil {
		updates["short_desc"] = *req.ShortDesc
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.BrandID != nil {
		updates["brand_id"] = *req.BrandID
	}
	if req.SeasonID != nil {
		updates["season_id"] = *req.SeasonID
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}

	if err := s.db.Model(&product).Updates(updates).Error; err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to update product: %w", err))
	}

	// Load updated product with relationships
	s.db.Preload("Category").Preload("Brand").Preload("Variants.Color").First(&product, product.ID)

	return &product, nil
}

// UpdateVariant updates price, stock or active flag of a variant
func (s *Service) UpdateVariant(variantID uint, req *VariantUpdateRequest) (*ProductVariant, error) {
	var variant ProductVariant
	result := s.db.Where("id = ?", variantID).First(&variant)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("product variant not found")
		}
		return nil, apperrors.Internal(result.Error)
	}

	updates := make(map[string]interface{})
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, apperrors.Validation("price must be positive")
		}
		updates["price"] = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, apperrors.Validation("stock cannot be negative")
		}
		updates["stock"] = *req.Stock
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.db.Model(&variant).Updates(updates).Error; err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to update variant: %w", err))
	}

	s.db.Preload("Color").First(&variant, variant.ID)

	return &variant, nil
}

// DeleteProduct soft deletes a product
func (s *Service) DeleteProduct(id uint) error {
	result := s.db.Where("id = ?", id).Delete(&Product{})
	if result.Error != nil {
		return apperrors.Internal(fmt.Errorf("failed to delete product: %w", result.Error))
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("product not found")
	}
	return nil
}

// ListSeasons returns all active seasons
func (s *Service) ListSeasons() ([]Season, error) {
	var seasons []Season
	if err := s.db.Where("is_active = ?", true).Order("year DESC, name ASC").Find(&seasons).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return seasons, nil
}

// ListColors returns all colors
func (s *Service) ListColors() ([]Color, error) {
	var colors []Color
	if err := s.db.Order("name ASC").Find(&colors).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return colors, nil
}

// buildOrderClause builds ORDER BY clause for sorting
func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"name":       true,
		"created_at": true,
		"updated_at": true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}

// generateSlug generates URL-friendly slug from name
func (s *Service) generateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")

	return slug + "-" + fmt.Sprintf("%d", time.Now().Unix())
}
