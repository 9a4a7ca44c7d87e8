// internal/domain/user/card_service.go
package user

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/mall-marketplace/internal/config"
	"github.com/your-org/mall-marketplace/internal/pkg/apperrors"
)

// CardService handles saved payment card business logic
type CardService struct {
	db     *gorm.DB
	config *config.Config
}

// NewCardService creates a new card service
func NewCardService(db *gorm.DB, cfg *config.Config) *CardService {
	return &CardService{
		db:     db,
		config: cfg,
	}
}

// AddCardRequest represents card creation data. The card number is used
// to derive the brand and last four digits and is never persisted.
type AddCardRequest struct {
	Number     string `json:"number" binding:"required,min=12,max=19"`
	ExpMonth   int    `json:"exp_month" binding:"required,min=1,max=12"`
	ExpYear    int    `json:"exp_year" binding:"required"`
	HolderName string `json:"holder_name" binding:"required"`
	IsDefault  bool   `json:"is_default"`
}

// GetUserCards retrieves all saved cards for a user
func (s *CardService) GetUserCards(userID uint) ([]Card, error) {
	var cards []Card
	err := s.db.Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&cards).Error
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to retrieve cards: %w", err))
	}
	return cards, nil
}

// GetCard retrieves a specific card for a user
func (s *CardService) GetCard(userID, cardID uint) (*Card, error) {
	var card Card
	result := s.db.Where("id = ? AND user_id = ?", cardID, userID).First(&card)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("card not found")
		}
		return nil, apperrors.Internal(result.Error)
	}
	return &card, nil
}

// AddCard stores a new masked card for a user
func (s *CardService) AddCard(userID uint, req *AddCardRequest) (*Card, error) {
	number := strings.ReplaceAll(req.Number, " ", "")
	if !isDigits(number) {
		return nil, apperrors.Validation("card number must contain only digits")
	}

	now := time.Now().UTC()
	if req.ExpYear < now.Year() || (req.ExpYear == now.Year() && req.ExpMonth < int(now.Month())) {
		return nil, apperrors.Validation("card is expired")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if req.IsDefault {
		if err := s.unsetDefaultCards(tx, userID); err != nil {
			tx.Rollback()
			return nil, apperrors.Internal(err)
		}
	}

	card := Card{
		UserID:     userID,
		Brand:      detectBrand(number),
		Last4:      number[len(number)-4:],
		ExpMonth:   req.ExpMonth,
		ExpYear:    req.ExpYear,
		HolderName: req.HolderName,
		IsDefault:  req.IsDefault,
	}

	if err := tx.Create(&card).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Internal(fmt.Errorf("failed to save card: %w", err))
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to commit transaction: %w", err))
	}

	return &card, nil
}

// DeleteCard deletes a saved card
func (s *CardService) DeleteCard(userID, cardID uint) error {
	result := s.db.Where("id = ? AND user_id = ?", cardID, userID).Delete(&Card{})
	if result.Error != nil {
		return apperrors.Internal(fmt.Errorf("failed to delete card: %w", result.Error))
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("card not found")
	}
	return nil
}

// SetDefaultCard marks a card as the user's default
func (s *CardService) SetDefaultCard(userID, cardID uint) error {
	card, err := s.GetCard(userID, cardID)
	if err != nil {
		return err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := s.unsetDefaultCards(tx, userID); err != nil {
		tx.Rollback()
		return apperrors.Internal(err)
	}

	if err := tx.Model(card).Update("is_default", true).Error; err != nil {
		tx.Rollback()
		return apperrors.Internal(fmt.Errorf("failed to set default card: %w", err))
	}

	return tx.Commit().Error
}

// unsetDefaultCards removes the default flag from all of the user's cards
func (s *CardService) unsetDefaultCards(tx *gorm.DB, userID uint) error {
	return tx.Model(&Card{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// detectBrand derives the card brand from the leading digits
func detectBrand(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return "visa"
	case strings.HasPrefix(number, "5"), strings.HasPrefix(number, "2"):
		return "mastercard"
	case strings.HasPrefix(number, "34"), strings.HasPrefix(number, "37"):
		return "amex"
	case strings.HasPrefix(number, "6"):
		return "discover"
	default:
		return "unknown"
	}
}
