// internal/domain/review/service.go
package review

import (
	"fmt"
	"math"
	"strings"

	"gorm.io/gorm"

	"github.com/your-org/mall-marketplace/internal/pkg/apperrors"
)

// Service handles review business logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new review service
func NewService(db *gorm.DB) *Service {
	return &Service{
		db: db,
	}
}

// CreateReviewRequest represents the request to create a review
type CreateReviewRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	OrderID   *uint  `json:"order_id,omitempty"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Title     string `json:"title" binding:"required,max=255"`
	Content   string `json:"content" binding:"required,max=2000"`
}

// ReviewListResponse represents paginated review list with summary
type ReviewListResponse struct {
	Reviews    []Review      `json:"reviews"`
	Summary    ReviewSummary `json:"summary"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	Total      int64         `json:"total"`
	TotalPages int           `json:"total_pages"`
}

// ReviewSummary provides review statistics
type ReviewSummary struct {
	TotalReviews    int64          `json:"total_reviews"`
	AverageRating   float64        `json:"average_rating"`
	RatingBreakdown map[string]int `json:"rating_breakdown"`
}

// CreateReview creates a new product review. A review is marked verified
// only when it references a delivered order of the same user that
// contains the reviewed product.
func (s *Service) CreateReview(userID uint, req *CreateReviewRequest) (*Review, error) {
	// One review per user and product
	var existing Review
	if result := s.db.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&existing); result.Error == nil {
		return nil, apperrors.Conflict("you have already reviewed this product")
	}

	var productCount int64
	s.db.Table("products").Where("id = ? AND is_active = ? AND deleted_at IS NULL", req.ProductID, true).Count(&productCount)
	if productCount == 0 {
		return nil, apperrors.NotFound("product not found")
	}

	isVerified := false
	if req.OrderID != nil {
		var orderExists bool
		s.db.Raw(`
			SELECT EXISTS(
				SELECT 1 FROM orders o
				JOIN order_items oi ON o.id = oi.order_id
				JOIN product_variants pv ON pv.id = oi.product_variant_id
				WHERE o.id = ? AND o.user_id = ? AND pv.product_id = ?
				AND o.status = 'delivered'
			)
		`, req.OrderID, userID, req.ProductID).Scan(&orderExists)

		if !orderExists {
			return nil, apperrors.Validation("cannot review: order not delivered or product not purchased")
		}
		isVerified = true
	}

	review := Review{
		ProductID:  req.ProductID,
		UserID:     userID,
		OrderID:    req.OrderID,
		Rating:     req.Rating,
		Title:      strings.TrimSpace(req.Title),
		Content:    strings.TrimSpace(req.Content),
		IsVerified: isVerified,
		IsApproved: isVerified, // Verified purchases publish immediately
	}

	if err := s.db.Create(&review).Error; err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create review: %w", err))
	}

	return &review, nil
}

// GetProductReviews lists approved reviews of a product with a rating summary
func (s *Service) GetProductReviews(productID uint, page, limit int) (*ReviewListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&Review{}).Where("product_id = ? AND is_approved = ?", productID, true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	var reviews []Review
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&reviews).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	summary, err := s.buildSummary(productID)
	if err != nil {
		return nil, err
	}

	return &ReviewListResponse{
		Reviews:    reviews,
		Summary:    *summary,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

// DeleteReview removes the user's own review
func (s *Service) DeleteReview(userID, reviewID uint) error {
	result := s.db.Where("id = ? AND user_id = ?", reviewID, userID).Delete(&Review{})
	if result.Error != nil {
		return apperrors.Internal(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("review not found")
	}
	return nil
}

func (s *Service) buildSummary(productID uint) (*ReviewSummary, error) {
	type ratingRow struct {
		Rating int
		Count  int
	}

	var rows []ratingRow
	err := s.db.Model(&Review{}).
		Select("rating, COUNT(*) as count").
		Where("product_id = ? AND is_approved = ?", productID, true).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	summary := &ReviewSummary{
		RatingBreakdown: map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0},
	}

	sum := 0
	for _, row := range rows {
		summary.TotalReviews += int64(row.Count)
		summary.RatingBreakdown[fmt.Sprintf("%d", row.Rating)] = row.Count
		sum += row.Rating * row.Count
	}

	if summary.TotalReviews > 0 {
		avg := float64(sum) / float64(summary.TotalReviews)
		summary.AverageRating = math.Round(avg*10) / 10
	}

	return summary, nil
}
