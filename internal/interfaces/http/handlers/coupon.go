// internal/interfaces/http/handlers/coupon.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/mall-marketplace/internal/config"
	"github.com/your-org/mall-marketplace/internal/domain/coupon"
	"github.com/your-org/mall-marketplace/internal/interfaces/http/middleware"
	"github.com/your-org/mall-marketplace/internal/pkg/apperrors"
)

// CouponHandler handles coupon endpoints
type CouponHandler struct {
	couponService *coupon.Service
	config        *config.Config
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CouponHandler {
	return &CouponHandler{
		couponService: coupon.NewService(db, redisClient, cfg),
		config:        cfg,
	}
}

// GetBestCoupon handles GET /coupons/best
func (h *CouponHandler) GetBestCoupon(c *gin.Context) {
	best, err := h.couponService.BestActiveDiscount()
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, best, "best active coupon retrieved")
}

// GetCouponByCode handles GET /coupons/code/:code
func (h *CouponHandler) GetCouponByCode(c *gin.Context) {
	found, err := h.couponService.GetCouponByCode(c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, found, "coupon retrieved successfully")
}

// CheckRedemption handles GET /coupons/:id/redemption
func (h *CouponHandler) CheckRedemption(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	couponID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, apperrors.Validation("invalid coupon ID"))
		return
	}

	status, err := h.couponService.CheckRedemption(uint(couponID), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, status, "redemption status retrieved")
}

// CreateCoupon handles POST /admin/coupons
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var req coupon.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	created, err := h.couponService.CreateCoupon(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, created, "coupon created successfully")
}

// GetCoupons handles GET /admin/coupons
func (h *CouponHandler) GetCoupons(c *gin.Context) {
	var branchID uint
	if param := c.Query("branch_id"); param != "" {
		id, err := strconv.ParseUint(param, 10, 32)
		if err != nil {
			respondError(c, apperrors.Validation("invalid branch ID"))
			return
		}
		branchID = uint(id)
	}

	coupons, err := h.couponService.ListCoupons(branchID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, coupons, "coupons retrieved successfully")
}

// DeactivateCoupon handles DELETE /admin/coupons/:id
func (h *CouponHandler) DeactivateCoupon(c *gin.Context) {
	couponID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, apperrors.Validation("invalid coupon ID"))
		return
	}

	if err := h.couponService.DeactivateCoupon(uint(couponID)); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, nil, "coupon deactivated")
}
