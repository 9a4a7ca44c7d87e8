// internal/domain/favorite/service.go
package favorite

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/mall-marketplace/internal/config"
	"github.com/your-org/mall-marketplace/internal/domain/cart"
	"github.com/your-org/mall-marketplace/internal/domain/product"
	"github.com/your-org/mall-marketplace/internal/pkg/apperrors"
)

// Service handles favorites business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
	cartService *cart.Service
}

// NewService creates a new favorites service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
		cartService: cart.NewService(db, redisClient, cfg),
	}
}

// AddFavoriteRequest represents add to favorites request
type AddFavoriteRequest struct {
	ProductVariantID uint `json:"product_variant_id" binding:"required"`
}

// FavoriteItemResponse represents a favorite with live variant details
type FavoriteItemResponse struct {
	ID          uint                    `json:"id"`
	VariantID   uint                    `json:"variant_id"`
	Variant     *product.ProductVariant `json:"variant,omitempty"`
	IsAvailable bool                    `json:"is_available"`
	AddedAt     time.Time               `json:"added_at"`
}

// FavoritesResponse represents the user's favorite list
type FavoritesResponse struct {
	Items []FavoriteItemResponse `json:"items"`
	Count int                    `json:"count"`
}

// AddFavorite adds a variant to the user's favorites
func (s *Service) AddFavorite(userID uint, req *AddFavoriteRequest) (*FavoriteItemResponse, error) {
	var variant product.ProductVariant
	result := s.db.Preload("Product").Preload("Color").
		Where("id = ? AND is_active = ?", req.ProductVariantID, true).
		First(&variant)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("product variant not found")
		}
		return nil, apperrors.Internal(result.Error)
	}

	var existing FavoriteItem
	if s.db.Where("user_id = ? AND product_variant_id = ?", userID, req.ProductVariantID).First(&existing).Error == nil {
		return nil, apperrors.Conflict("item already in favorites")
	}

	item := FavoriteItem{
		UserID:           userID,
		ProductVariantID: req.ProductVariantID,
		AddedAt:          time.Now().UTC(),
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to add favorite: %w", err))
	}

	return &FavoriteItemResponse{
		ID:          item.ID,
		VariantID:   item.ProductVariantID,
		Variant:     &variant,
		IsAvailable: variant.IsActive && variant.Stock > 0,
		AddedAt:     item.AddedAt,
	}, nil
}

// RemoveFavorite removes a variant from the user's favorites
func (s *Service) RemoveFavorite(userID, variantID uint) error {
	result := s.db.Where("user_id = ? AND product_variant_id = ?", userID, variantID).Delete(&FavoriteItem{})
	if result.Error != nil {
		return apperrors.Internal(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("item not found in favorites")
	}
	return nil
}

// GetFavorites lists the user's favorites with live variant data
func (s *Service) GetFavorites(userID uint) (*FavoritesResponse, error) {
	var items []FavoriteItem
	err := s.db.Where("user_id = ?", userID).Order("added_at DESC").Find(&items).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	responses := make([]FavoriteItemResponse, 0, len(items))
	for _, item := range items {
		resp := FavoriteItemResponse{
			ID:        item.ID,
			VariantID: item.ProductVariantID,
			AddedAt:   item.AddedAt,
		}

		var variant product.ProductVariant
		err := s.db.Preload("Product").Preload("Color").
			Where("id = ?", item.ProductVariantID).
			First(&variant).Error
		if err == nil {
			resp.Variant = &variant
			resp.IsAvailable = variant.IsActive && variant.Stock > 0
		}

		responses = append(responses, resp)
	}

	return &FavoritesResponse{
		Items: responses,
		Count: len(responses),
	}, nil
}

// IsFavorite checks whether a variant is in the user's favorites
func (s *Service) IsFavorite(userID, variantID uint) (bool, error) {
	var count int64
	err := s.db.Model(&FavoriteItem{}).
		Where("user_id = ? AND product_variant_id = ?", userID, variantID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Internal(err)
	}
	return count > 0, nil
}

// MoveToCart adds a favorite to the cart and removes it from favorites
func (s *Service) MoveToCart(userID, variantID uint, quantity int) error {
	isFavorite, err := s.IsFavorite(userID, variantID)
	if err != nil {
		return err
	}
	if !isFavorite {
		return apperrors.NotFound("item not found in favorites")
	}

	_, err = s.cartService.AddItem(userID, &cart.AddItemRequest{
		ProductVariantID: variantID,
		Quantity:         quantity,
	})
	if err != nil {
		return err
	}

	return s.RemoveFavorite(userID, variantID)
}
