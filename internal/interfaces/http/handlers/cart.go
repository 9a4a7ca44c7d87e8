// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/mall-marketplace/internal/config"
	"github.com/your-org/mall-marketplace/internal/domain/cart"
	"github.com/your-org/mall-marketplace/internal/domain/upload"
	"github.com/your-org/mall-marketplace/internal/interfaces/http/middleware"
	"github.com/your-org/mall-marketplace/internal/pkg/apperrors"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	config      *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CartHandler {
	return &CartHandler{
		cartService: cart.NewService(db, redisClient, cfg),
		config:      cfg,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	view, err := h.cartService.GetCart(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.rewriteImageURLs(view, middleware.GetPlatformFromContext(c))

	respond(c, http.StatusOK, view, "cart retrieved successfully")
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := h.cartService.AddItem(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.rewriteImageURLs(view, middleware.GetPlatformFromContext(c))

	respond(c, http.StatusOK, view, "item added to cart")
}

// UpdateLine handles PUT /cart/items/:id
func (h *CartHandler) UpdateLine(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	lineID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, apperrors.Validation("invalid cart line ID"))
		return
	}

	var req cart.UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := h.cartService.UpdateLine(userID, uint(lineID), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.rewriteImageURLs(view, middleware.GetPlatformFromContext(c))

	respond(c, http.StatusOK, view, "cart line updated")
}

// RemoveLine handles DELETE /cart/items/:id
func (h *CartHandler) RemoveLine(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	lineID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, apperrors.Validation("invalid cart line ID"))
		return
	}

	if err := h.cartService.RemoveLine(userID, uint(lineID)); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, nil, "item removed from cart")
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	if err := h.cartService.ClearCart(userID); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, nil, "cart cleared")
}

// GetCartCount handles GET /cart/count
func (h *CartHandler) GetCartCount(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	count, err := h.cartService.GetCartItemCount(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"count": count}, "cart count retrieved successfully")
}

func (h *CartHandler) rewriteImageURLs(view *cart.CartView, platform string) {
	for gi := range view.Groups {
		for li := range view.Groups[gi].Lines {
			line := &view.Groups[gi].Lines[li]
			line.ImageURL = upload.RewriteURL(line.ImageURL, platform, h.config)
		}
	}
}
