// internal/interfaces/http/handlers/favorite.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/mall-marketplace/internal/config"
	"github.com/your-org/mall-marketplace/internal/domain/favorite"
	"github.com/your-org/mall-marketplace/internal/interfaces/http/middleware"
	"github.com/your-org/mall-marketplace/internal/pkg/apperrors"
)

// FavoriteHandler handles favorite endpoints
type FavoriteHandler struct {
	favoriteService *favorite.Service
	config          *config.Config
}

// NewFavoriteHandler creates a new favorite handler
func NewFavoriteHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteService: favorite.NewService(db, redisClient, cfg),
		config:          cfg,
	}
}

// GetFavorites handles GET /favorites
func (h *FavoriteHandler) GetFavorites(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	favorites, err := h.favoriteService.GetFavorites(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, favorites, "favorites retrieved successfully")
}

// AddFavorite handles POST /favorites
func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	var req favorite.AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.favoriteService.AddFavorite(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, item, "item added to favorites")
}

// RemoveFavorite handles DELETE /favorites/:id
func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	variantID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, apperrors.Validation("invalid variant ID"))
		return
	}

	if err := h.favoriteService.RemoveFavorite(userID, uint(variantID)); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, nil, "item removed from favorites")
}

// CheckFavorite handles GET /favorites/:id
func (h *FavoriteHandler) CheckFavorite(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	variantID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, apperrors.Validation("invalid variant ID"))
		return
	}

	isFavorite, err := h.favoriteService.IsFavorite(userID, uint(variantID))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"is_favorite": isFavorite}, "favorite status retrieved")
}

// MoveToCartRequest represents a move-to-cart request body
type MoveToCartRequest struct {
	Quantity int `json:"quantity"`
}

// MoveToCart handles POST /favorites/:id/move-to-cart
func (h *FavoriteHandler) MoveToCart(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	variantID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, apperrors.Validation("invalid variant ID"))
		return
	}

	var req MoveToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondBindError(c, err)
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	if err := h.favoriteService.MoveToCart(userID, uint(variantID), req.Quantity); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, nil, "item moved to cart")
}
