// internal/interfaces/http/handlers/card.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/your-org/mall-marketplace/internal/config"
	"github.com/your-org/mall-marketplace/internal/domain/user"
	"github.com/your-org/mall-marketplace/internal/interfaces/http/middleware"
	"github.com/your-org/mall-marketplace/internal/pkg/apperrors"
)

// CardHandler handles saved payment card endpoints
type CardHandler struct {
	cardService *user.CardService
	config      *config.Config
}

// NewCardHandler creates a new card handler
func NewCardHandler(db *gorm.DB, cfg *config.Config) *CardHandler {
	return &CardHandler{
		cardService: user.NewCardService(db, cfg),
		config:      cfg,
	}
}

// GetCards handles GET /users/me/cards
func (h *CardHandler) GetCards(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	cards, err := h.cardService.GetUserCards(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, cards, "cards retrieved successfully")
}

// AddCard handles POST /users/me/cards
func (h *CardHandler) AddCard(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	var req user.AddCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	card, err := h.cardService.AddCard(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, card, "card saved successfully")
}

// DeleteCard handles DELETE /users/me/cards/:id
func (h *CardHandler) DeleteCard(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	cardID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, apperrors.Validation("invalid card ID"))
		return
	}

	if err := h.cardService.DeleteCard(userID, uint(cardID)); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, nil, "card deleted successfully")
}

// SetDefaultCard handles PUT /users/me/cards/:id/default
func (h *CardHandler) SetDefaultCard(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	cardID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, apperrors.Validation("invalid card ID"))
		return
	}

	if err := h.cardService.SetDefaultCard(userID, uint(cardID)); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, nil, "default card updated")
}
