// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/your-org/mall-marketplace/internal/config"
	"github.com/your-org/mall-marketplace/internal/domain/cart"
	"github.com/your-org/mall-marketplace/internal/domain/coupon"
	"github.com/your-org/mall-marketplace/internal/pkg/apperrors"
	"github.com/your-org/mall-marketplace/internal/pkg/push"
)

// Service handles order business logic
type Service struct {
	db            *gorm.DB
	config        *config.Config
	couponService *coupon.Service
	pushService   *push.Service
	logger        *logrus.Logger
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, couponService *coupon.Service, pushService *push.Service) *Service {
	return &Service{
		db:            db,
		config:        cfg,
		couponService: couponService,
		pushService:   pushService,
		logger:        logrus.New(),
	}
}

// CheckoutRequest represents a multi-branch checkout
type CheckoutRequest struct {
	CardID    uint   `json:"card_id" binding:"required"`
	BranchIDs []uint `json:"branch_ids" binding:"required,min=1"`
	CouponID  *uint  `json:"coupon_id"`
	Notes     string `json:"notes"`
}

// BranchError reports why one branch of a checkout failed
type BranchError struct {
	BranchID uint   `json:"branch_id"`
	Message  string `json:"message"`

	err error
}

// CheckoutResult aggregates the per-branch outcomes of one checkout.
// Branches succeed and fail independently; the checkout as a whole
// succeeds when at least one order was created.
type CheckoutResult struct {
	OrdersCreated []Order       `json:"orders_created"`
	Errors        []BranchError `json:"errors"`
}

// Succeeded reports whether at least one order was created
func (r *CheckoutResult) Succeeded() bool {
	return len(r.OrdersCreated) > 0
}

// FirstError returns the underlying error of the first failed branch
func (r *CheckoutResult) FirstError() error {
	if len(r.Errors) == 0 {
		return nil
	}
	if r.Errors[0].err != nil {
		return r.Errors[0].err
	}
	return apperrors.Internal(fmt.Errorf("%s", r.Errors[0].Message))
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page      int         `form:"page,default=1"`
	Limit     int         `form:"limit,default=20"`
	Status    OrderStatus `form:"status"`
	UserID    uint        `form:"user_id"`
	BranchID  uint        `form:"branch_id"`
	SortBy    string      `form:"sort_by,default=created_at"`
	SortOrder string      `form:"sort_order,default=desc"`
}

// OrderResponse represents order response with pagination
type OrderResponse struct {
	Orders     []Order    `json:"orders"`
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

// checkoutRow is a locked cart line with its live variant data
type checkoutRow struct {
	LineID      uint
	VariantID   uint
	SKU         string
	ProductName string
	ColorName   string
	Size        string
	Quantity    int
	UnitPrice   int64
	Stock       int
	ImageURL    string
}

// CreateMultiBranchOrders turns the user's cart into one order per
// requested branch. Each branch runs in its own transaction, so a stock
// conflict at one branch never rolls back the orders of the others.
// A coupon discounts only the order of its own branch; it is redeemed
// once, after the fan-out, and only when some order carries a discount.
func (s *Service) CreateMultiBranchOrders(userID uint, req *CheckoutRequest) (*CheckoutResult, error) {
	branchIDs := dedupeBranchIDs(req.BranchIDs)
	if len(branchIDs) == 0 {
		return nil, apperrors.Validation("at least one branch is required")
	}

	if err := s.verifyCard(userID, req.CardID); err != nil {
		return nil, err
	}

	// Resolve the coupon once; an unknown coupon fails the whole checkout
	var appliedCoupon *coupon.Coupon
	alreadyRedeemed := false
	if req.CouponID != nil {
		c, err := s.couponService.GetCoupon(*req.CouponID)
		if err != nil {
			return nil, err
		}
		appliedCoupon = c

		alreadyRedeemed, err = s.couponService.HasRedeemed(c.ID, userID)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	result := &CheckoutResult{}

	for _, branchID := range branchIDs {
		created, err := s.createBranchOrder(userID, branchID, req, appliedCoupon, alreadyRedeemed, now)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"user_id":   userID,
				"branch_id": branchID,
			}).WithError(err).Warn("branch order failed")

			result.Errors = append(result.Errors, BranchError{
				BranchID: branchID,
				Message:  apperrors.MessageOf(err),
				err:      err,
			})
			continue
		}
		result.OrdersCreated = append(result.OrdersCreated, *created)
	}

	// Redeem against the first order that actually received a discount.
	// When no order did (wrong branch, minimum not met), the coupon
	// stays unredeemed for a later purchase.
	if appliedCoupon != nil && !alreadyRedeemed {
		if discounted := firstDiscountedOrder(result.OrdersCreated); discounted != nil {
			if err := s.couponService.Redeem(appliedCoupon.ID, userID, discounted.ID); err != nil {
				s.logger.WithFields(logrus.Fields{
					"user_id":   userID,
					"coupon_id": appliedCoupon.ID,
					"order_id":  discounted.ID,
				}).WithError(err).Error("coupon redemption failed after checkout")

				result.Errors = append(result.Errors, BranchError{
					BranchID: discounted.BranchID,
					Message:  "orders were created but the coupon could not be redeemed",
					err:      err,
				})
			}
		}
	}

	if result.Succeeded() {
		s.notifyOrderCreated(userID, result.OrdersCreated)
	}

	return result, nil
}

// createBranchOrder creates one order for one branch inside its own
// transaction. Cart lines and their variants are row-locked; the stock
// decrement is guarded so a concurrent checkout cannot drive stock
// negative.
func (s *Service) createBranchOrder(userID, branchID uint, req *CheckoutRequest, appliedCoupon *coupon.Coupon, alreadyRedeemed bool, now time.Time) (*Order, error) {
	var created Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		rows, err := s.lockBranchCartLines(tx, userID, branchID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return apperrors.NotFound("no cart items for branch %d", branchID)
		}

		var subtotal int64
		for _, row := range rows {
			if row.Quantity > row.Stock {
				return apperrors.Conflict("insufficient stock for %s (%s %s): %d available",
					row.ProductName, row.ColorName, row.Size, row.Stock)
			}
			subtotal += row.UnitPrice * int64(row.Quantity)
		}

		discount := coupon.EligibleDiscount(appliedCoupon, branchID, subtotal, alreadyRedeemed, now)
		totals := ComputeTotals(subtotal, discount, s.config.Checkout.TaxRate)

		order := Order{
			ConfirmationCode: uuid.NewString(),
			UserID:           userID,
			BranchID:         branchID,
			CardID:           req.CardID,
			Status:           OrderStatusPending,
			SubtotalAmount:   totals.Subtotal,
			DiscountAmount:   totals.Discount,
			TaxAmount:        totals.Tax,
			TotalAmount:      totals.Total,
			Currency:         s.config.Checkout.CurrencyCode,
			Notes:            req.Notes,
		}
		if appliedCoupon != nil && discount > 0 {
			couponID := appliedCoupon.ID
			order.CouponID = &couponID
		}
		order.OrderNumber = order.GenerateOrderNumber(now)

		if err := tx.Create(&order).Error; err != nil {
			return apperrors.Internal(fmt.Errorf("failed to create order: %w", err))
		}

		lineIDs := make([]uint, 0, len(rows))
		for _, row := range rows {
			item := OrderItem{
				OrderID:          order.ID,
				ProductVariantID: row.VariantID,
				SKU:              row.SKU,
				Name:             row.ProductName,
				ColorName:        row.ColorName,
				Size:             row.Size,
				Quantity:         row.Quantity,
				UnitPrice:        row.UnitPrice,
				TotalPrice:       row.UnitPrice * int64(row.Quantity),
				ImageURL:         row.ImageURL,
			}
			if err := tx.Create(&item).Error; err != nil {
				return apperrors.Internal(fmt.Errorf("failed to create order item: %w", err))
			}

			// Guarded decrement; zero rows means stock moved under us
			result := tx.Exec(
				"UPDATE product_variants SET stock = stock - ? WHERE id = ? AND stock >= ?",
				row.Quantity, row.VariantID, row.Quantity,
			)
			if result.Error != nil {
				return apperrors.Internal(result.Error)
			}
			if result.RowsAffected == 0 {
				return apperrors.Conflict("insufficient stock for %s (%s %s)",
					row.ProductName, row.ColorName, row.Size)
			}

			lineIDs = append(lineIDs, row.LineID)
		}

		// Consumed lines leave the cart
		err = tx.Model(&cart.CartLine{}).
			Where("id IN ?", lineIDs).
			Update("active", false).Error
		if err != nil {
			return apperrors.Internal(fmt.Errorf("failed to clear cart lines: %w", err))
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Items").First(&created, created.ID).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return &created, nil
}

// GetOrders retrieves orders with filtering and pagination
func (s *Service) GetOrders(req *OrderListRequest) (*OrderResponse, error) {
	var orders []Order
	var total int64

	query := s.db.Model(&Order{}).Preload("Items")

	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.UserID > 0 {
		query = query.Where("user_id = ?", req.UserID)
	}
	if req.BranchID > 0 {
		query = query.Where("branch_id = ?", req.BranchID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to count orders: %w", err))
	}

	orderClause := s.buildOrderClause(req.SortBy, req.SortOrder)
	query = query.Order(orderClause)

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&orders).Error; err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to retrieve orders: %w", err))
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	pagination := Pagination{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    req.Page < totalPages,
		HasPrev:    req.Page > 1,
	}

	return &OrderResponse{
		Orders:     orders,
		Pagination: pagination,
	}, nil
}

// GetUserOrders retrieves orders for a specific user
func (s *Service) GetUserOrders(userID uint, page, limit int) (*OrderResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.GetOrders(&OrderListRequest{
		Page:      page,
		Limit:     limit,
		UserID:    userID,
		SortBy:    "created_at",
		SortOrder: "desc",
	})
}

// GetUserOrder retrieves a single order owned by the user
func (s *Service) GetUserOrder(userID, orderID uint) (*Order, error) {
	var order Order
	result := s.db.
		Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("order not found")
		}
		return nil, apperrors.Internal(result.Error)
	}

	return &order, nil
}

// GetOrderByNumber retrieves a single order by order number (admin)
func (s *Service) GetOrderByNumber(orderNumber string) (*Order, error) {
	var order Order
	result := s.db.Preload("Items").Where("order_number = ?", orderNumber).First(&order)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("order not found")
		}
		return nil, apperrors.Internal(result.Error)
	}
	return &order, nil
}

// MarkDelivered moves a pending order to delivered (admin, at pickup)
func (s *Service) MarkDelivered(orderID uint) (*Order, error) {
	var order Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("order not found")
		}
		return nil, apperrors.Internal(err)
	}

	if order.Status != OrderStatusPending {
		return nil, apperrors.Conflict("order cannot be delivered in status %s", order.Status)
	}

	now := time.Now().UTC()
	err := s.db.Model(&order).Updates(map[string]interface{}{
		"status":       OrderStatusDelivered,
		"delivered_at": now,
	}).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	order.Status = OrderStatusDelivered
	order.DeliveredAt = &now
	return &order, nil
}

// CancelOrder cancels a pending order and restores the stock its items
// consumed, in one transaction
func (s *Service) CancelOrder(userID, orderID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var order Order
		query := tx.Where("id = ? AND user_id = ?", orderID, userID)
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		err := query.First(&order).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NotFound("order not found")
			}
			return apperrors.Internal(err)
		}

		if !order.CanBeCancelled() {
			return apperrors.Conflict("order cannot be cancelled in status %s", order.Status)
		}

		var items []OrderItem
		if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			return apperrors.Internal(err)
		}

		for _, item := range items {
			result := tx.Exec(
				"UPDATE product_variants SET stock = stock + ? WHERE id = ?",
				item.Quantity, item.ProductVariantID,
			)
			if result.Error != nil {
				return apperrors.Internal(fmt.Errorf("failed to restore stock: %w", result.Error))
			}
		}

		now := time.Now().UTC()
		err = tx.Model(&order).Updates(map[string]interface{}{
			"status":       OrderStatusCancelled,
			"cancelled_at": now,
		}).Error
		if err != nil {
			return apperrors.Internal(err)
		}

		return nil
	})
}

// Private helper methods

func (s *Service) verifyCard(userID, cardID uint) error {
	var count int64
	err := s.db.Table("cards").
		Where("id = ? AND user_id = ?", cardID, userID).
		Count(&count).Error
	if err != nil {
		return apperrors.Internal(err)
	}
	if count == 0 {
		return apperrors.NotFound("payment card not found")
	}
	return nil
}

// lockBranchCartLines loads the user's active cart lines of one branch
// with their variants row-locked for the rest of the transaction
func (s *Service) lockBranchCartLines(tx *gorm.DB, userID, branchID uint) ([]checkoutRow, error) {
	var rows []checkoutRow
	query := tx.Table("cart_lines").
		Select(`cart_lines.id AS line_id,
			product_variants.id AS variant_id,
			product_variants.sku AS sku,
			products.name AS product_name,
			COALESCE(colors.name, '') AS color_name,
			product_variants.size AS size,
			cart_lines.quantity AS quantity,
			product_variants.price AS unit_price,
			product_variants.stock AS stock,
			COALESCE((SELECT url FROM product_images WHERE product_images.product_id = products.id ORDER BY is_primary DESC, sort_order ASC LIMIT 1), '') AS image_url`).
		Joins("JOIN product_variants ON product_variants.id = cart_lines.product_variant_id AND product_variants.is_active = true").
		Joins("JOIN products ON products.id = product_variants.product_id AND products.is_active = true").
		Joins("LEFT JOIN colors ON colors.id = product_variants.color_id").
		Where("cart_lines.user_id = ? AND cart_lines.active = ? AND cart_lines.deleted_at IS NULL AND products.branch_id = ?", userID, true, branchID).
		Order("cart_lines.id ASC")

	// SELECT ... FOR UPDATE is a Postgres feature; SQLite serializes
	// writers on its own
	if tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "product_variants"}})
	}

	err := query.Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to load cart lines: %w", err))
	}
	return rows, nil
}

// notifyOrderCreated pushes a confirmation to the user's devices.
// Best effort; delivery failures never affect the checkout outcome.
func (s *Service) notifyOrderCreated(userID uint, orders []Order) {
	var tokens []string
	err := s.db.Table("device_tokens").
		Where("user_id = ?", userID).
		Pluck("token", &tokens).Error
	if err != nil || len(tokens) == 0 {
		return
	}

	numbers := make([]string, len(orders))
	for i, o := range orders {
		numbers[i] = o.OrderNumber
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.External.Push.Timeout)
		defer cancel()

		if err := s.pushService.Send(ctx, tokens, push.NewOrderNotification(numbers)); err != nil {
			s.logger.WithField("user_id", userID).WithError(err).Warn("order push notification failed")
		}
	}()
}

func firstDiscountedOrder(orders []Order) *Order {
	for i := range orders {
		if orders[i].DiscountAmount > 0 {
			return &orders[i]
		}
	}
	return nil
}

func dedupeBranchIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at":   true,
		"updated_at":   true,
		"total_amount": true,
		"status":       true,
		"order_number": true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}
