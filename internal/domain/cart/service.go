// internal/domain/cart/service.go
package cart

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/mall-marketplace/internal/config"
	"github.com/your-org/mall-marketplace/internal/domain/product"
	"github.com/your-org/mall-marketplace/internal/pkg/apperrors"
)

// Service handles cart business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// AddItemRequest represents add to cart request
type AddItemRequest struct {
	ProductVariantID uint `json:"product_variant_id" binding:"required"`
	Quantity         int  `json:"quantity" binding:"required,min=1"`
}

// UpdateLineRequest represents update cart line request
type UpdateLineRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// lineRow is the join of a cart line with its live variant, product and
// branch data
type lineRow struct {
	LineID      uint
	VariantID   uint
	ProductID   uint
	ProductName string
	ColorName   string
	Size        string
	Quantity    int
	UnitPrice   int64
	Stock       int
	BranchID    uint
	BranchName  string
	ImageURL    string
}

// AddItem adds a variant to the user's cart. If an active line for the
// variant exists its quantity grows; a previously removed line is
// reactivated with the requested quantity. Stock is never mutated here.
func (s *Service) AddItem(userID uint, req *AddItemRequest) (*CartView, error) {
	variant, err := s.loadSellableVariant(req.ProductVariantID)
	if err != nil {
		return nil, err
	}

	var existing CartLine
	result := s.db.Unscoped().
		Where("user_id = ? AND product_variant_id = ? AND deleted_at IS NULL", userID, req.ProductVariantID).
		First(&existing)

	switch {
	case result.Error == gorm.ErrRecordNotFound:
		if !variant.HasStock(req.Quantity) {
			return nil, apperrors.Conflict("insufficient stock: %d available", variant.Stock)
		}
		line := CartLine{
			UserID:           userID,
			ProductVariantID: req.ProductVariantID,
			Quantity:         req.Quantity,
			Active:           true,
		}
		if err := s.db.Create(&line).Error; err != nil {
			return nil, apperrors.Internal(fmt.Errorf("failed to create cart line: %w", err))
		}

	case result.Error != nil:
		return nil, apperrors.Internal(result.Error)

	case existing.Active:
		newQuantity := existing.Quantity + req.Quantity
		if !variant.HasStock(newQuantity) {
			return nil, apperrors.Conflict("insufficient stock: %d available", variant.Stock)
		}
		err := s.db.Model(&existing).Updates(map[string]interface{}{"quantity": newQuantity}).Error
		if err != nil {
			return nil, apperrors.Internal(err)
		}

	default:
		// Removed line comes back with the requested quantity
		if !variant.HasStock(req.Quantity) {
			return nil, apperrors.Conflict("insufficient stock: %d available", variant.Stock)
		}
		err := s.db.Model(&existing).Updates(map[string]interface{}{
			"quantity": req.Quantity,
			"active":   true,
		}).Error
		if err != nil {
			return nil, apperrors.Internal(err)
		}
	}

	s.invalidateCountCache(userID)
	return s.GetCart(userID)
}

// UpdateLine changes the quantity of an active cart line. The stored
// quantity is left untouched when validation fails.
func (s *Service) UpdateLine(userID, lineID uint, req *UpdateLineRequest) (*CartView, error) {
	if req.Quantity <= 0 {
		return nil, apperrors.Validation("quantity must be positive")
	}

	var line CartLine
	result := s.db.Where("id = ? AND user_id = ? AND active = ?", lineID, userID, true).First(&line)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("cart line not found")
		}
		return nil, apperrors.Internal(result.Error)
	}

	variant, err := s.loadSellableVariant(line.ProductVariantID)
	if err != nil {
		return nil, err
	}
	if !variant.HasStock(req.Quantity) {
		return nil, apperrors.Conflict("insufficient stock: %d available", variant.Stock)
	}

	if err := s.db.Model(&line).Update("quantity", req.Quantity).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	s.invalidateCountCache(userID)
	return s.GetCart(userID)
}

// RemoveLine deactivates a cart line; the row survives so re-adding the
// same variant later reactivates it
func (s *Service) RemoveLine(userID, lineID uint) error {
	result := s.db.Model(&CartLine{}).
		Where("id = ? AND user_id = ? AND active = ?", lineID, userID, true).
		Update("active", false)
	if result.Error != nil {
		return apperrors.Internal(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("cart line not found")
	}

	s.invalidateCountCache(userID)
	return nil
}

// ClearCart deactivates every active line of the user. Clearing an
// already empty cart succeeds.
func (s *Service) ClearCart(userID uint) error {
	err := s.db.Model(&CartLine{}).
		Where("user_id = ? AND active = ?", userID, true).
		Update("active", false).Error
	if err != nil {
		return apperrors.Internal(err)
	}

	s.invalidateCountCache(userID)
	return nil
}

// GetCart returns the user's active lines grouped by branch. Prices are
// read live from the variants, so totals always reflect current prices.
func (s *Service) GetCart(userID uint) (*CartView, error) {
	rows, err := s.loadLineRows(userID)
	if err != nil {
		return nil, err
	}
	return buildCartView(rows), nil
}

// GetCartItemCount returns the total quantity across active lines
func (s *Service) GetCartItemCount(userID uint) (int, error) {
	ctx := context.Background()
	cacheKey := s.countCacheKey(userID)

	if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
		if count, err := strconv.Atoi(cached); err == nil {
			return count, nil
		}
	}

	var count int64
	err := s.db.Model(&CartLine{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("user_id = ? AND active = ?", userID, true).
		Scan(&count).Error
	if err != nil {
		return 0, apperrors.Internal(err)
	}

	s.redisClient.Set(ctx, cacheKey, strconv.FormatInt(count, 10), 5*time.Minute)
	return int(count), nil
}

// loadSellableVariant loads a variant and verifies that it, its product
// and its branch are all active
func (s *Service) loadSellableVariant(variantID uint) (*product.ProductVariant, error) {
	var variant product.ProductVariant
	err := s.db.
		Joins("JOIN products ON products.id = product_variants.product_id AND products.is_active = ? AND products.deleted_at IS NULL", true).
		Joins("JOIN branches ON branches.id = products.branch_id AND branches.is_active = ? AND branches.deleted_at IS NULL", true).
		Where("product_variants.id = ? AND product_variants.is_active = ?", variantID, true).
		First(&variant).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("product variant not found")
		}
		return nil, apperrors.Internal(err)
	}
	return &variant, nil
}

func (s *Service) loadLineRows(userID uint) ([]lineRow, error) {
	var rows []lineRow
	err := s.db.Table("cart_lines").
		Select(`cart_lines.id AS line_id,
			product_variants.id AS variant_id,
			products.id AS product_id,
			products.name AS product_name,
			colors.name AS color_name,
			product_variants.size AS size,
			cart_lines.quantity AS quantity,
			product_variants.price AS unit_price,
			product_variants.stock AS stock,
			branches.id AS branch_id,
			branches.name AS branch_name,
			COALESCE((SELECT url FROM product_images WHERE product_images.product_id = products.id ORDER BY is_primary DESC, sort_order ASC LIMIT 1), '') AS image_url`).
		Joins("JOIN product_variants ON product_variants.id = cart_lines.product_variant_id").
		Joins("JOIN products ON products.id = product_variants.product_id").
		Joins("JOIN branches ON branches.id = products.branch_id").
		Joins("LEFT JOIN colors ON colors.id = product_variants.color_id").
		Where("cart_lines.user_id = ? AND cart_lines.active = ? AND cart_lines.deleted_at IS NULL", userID, true).
		Order("branches.name ASC, cart_lines.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to load cart: %w", err))
	}
	return rows, nil
}

// buildCartView groups line rows by branch and computes subtotals from
// live unit prices
func buildCartView(rows []lineRow) *CartView {
	view := &CartView{Groups: []BranchGroup{}}
	index := make(map[uint]int)

	for _, row := range rows {
		lineTotal := row.UnitPrice * int64(row.Quantity)
		line := LineView{
			LineID:      row.LineID,
			VariantID:   row.VariantID,
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			ColorName:   row.ColorName,
			Size:        row.Size,
			Quantity:    row.Quantity,
			UnitPrice:   row.UnitPrice,
			LineTotal:   lineTotal,
			Stock:       row.Stock,
			ImageURL:    row.ImageURL,
		}

		pos, ok := index[row.BranchID]
		if !ok {
			view.Groups = append(view.Groups, BranchGroup{
				BranchID:   row.BranchID,
				BranchName: row.BranchName,
			})
			pos = len(view.Groups) - 1
			index[row.BranchID] = pos
		}

		view.Groups[pos].Lines = append(view.Groups[pos].Lines, line)
		view.Groups[pos].Subtotal += lineTotal
		view.TotalQuantity += row.Quantity
		view.GrandTotal += lineTotal
	}

	return view
}

func (s *Service) countCacheKey(userID uint) string {
	return fmt.Sprintf("cart:count:%d", userID)
}

func (s *Service) invalidateCountCache(userID uint) {
	ctx := context.Background()
	s.redisClient.Del(ctx, s.countCacheKey(userID))
}
