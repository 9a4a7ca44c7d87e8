// internal/interfaces/http/handlers/order.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/mall-marketplace/internal/config"
	"github.com/your-org/mall-marketplace/internal/domain/coupon"
	"github.com/your-org/mall-marketplace/internal/domain/order"
	"github.com/your-org/mall-marketplace/internal/domain/upload"
	"github.com/your-org/mall-marketplace/internal/interfaces/http/middleware"
	"github.com/your-org/mall-marketplace/internal/pkg/apperrors"
	"github.com/your-org/mall-marketplace/internal/pkg/push"
)

// OrderHandler handles checkout and order endpoints
type OrderHandler struct {
	orderService *order.Service
	config       *config.Config
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *OrderHandler {
	couponService := coupon.NewService(db, redisClient, cfg)
	pushService := push.NewService(cfg)

	return &OrderHandler{
		orderService: order.NewService(db, cfg, couponService, pushService),
		config:       cfg,
	}
}

// Checkout handles POST /checkout
func (h *OrderHandler) Checkout(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	var req order.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.orderService.CreateMultiBranchOrders(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	// A checkout succeeds when at least one branch produced an order.
	// Failed branches are reported alongside the created orders.
	if !result.Succeeded() {
		respondError(c, result.FirstError())
		return
	}

	respond(c, http.StatusCreated, result, "checkout completed")
}

// GetMyOrders handles GET /orders
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	response, err := h.orderService.GetUserOrders(userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, response, "orders retrieved successfully")
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, apperrors.Validation("invalid order ID"))
		return
	}

	o, err := h.orderService.GetUserOrder(userID, uint(orderID))
	if err != nil {
		respondError(c, err)
		return
	}

	h.rewriteImageURLs(o, middleware.GetPlatformFromContext(c))

	respond(c, http.StatusOK, o, "order retrieved successfully")
}

// CancelOrder handles POST /orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, apperrors.Validation("invalid order ID"))
		return
	}

	if err := h.orderService.CancelOrder(userID, uint(orderID)); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, nil, "order cancelled")
}

func (h *OrderHandler) rewriteImageURLs(o *order.Order, platform string) {
	for i := range o.Items {
		o.Items[i].ImageURL = upload.RewriteURL(o.Items[i].ImageURL, platform, h.config)
	}
}

// GetOrders handles GET /admin/orders
func (h *OrderHandler) GetOrders(c *gin.Context) {
	var req order.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.orderService.GetOrders(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, response, "orders retrieved successfully")
}

// GetOrderByNumber handles GET /admin/orders/number/:number
func (h *OrderHandler) GetOrderByNumber(c *gin.Context) {
	o, err := h.orderService.GetOrderByNumber(c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, o, "order retrieved successfully")
}

// MarkDelivered handles PUT /admin/orders/:id/delivered
func (h *OrderHandler) MarkDelivered(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, apperrors.Validation("invalid order ID"))
		return
	}

	o, err := h.orderService.MarkDelivered(uint(orderID))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, o, "order marked as delivered")
}
