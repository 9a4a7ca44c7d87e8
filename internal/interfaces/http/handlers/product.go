// internal/interfaces/http/handlers/product.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/your-org/mall-marketplace/internal/config"
	"github.com/your-org/mall-marketplace/internal/domain/product"
	"github.com/your-org/mall-marketplace/internal/domain/upload"
	"github.com/your-org/mall-marketplace/internal/interfaces/http/middleware"
	"github.com/your-org/mall-marketplace/internal/pkg/apperrors"
)

// ProductHandler handles product endpoints
type ProductHandler struct {
	productService *product.Service
	config         *config.Config
}

// NewProductHandler creates a new product handler
func NewProductHandler(db *gorm.DB, cfg *config.Config) *ProductHandler {
	return &ProductHandler{
		productService: product.NewService(db, cfg),
		config:         cfg,
	}
}

// GetProducts handles GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var req product.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	// Catalog endpoints only expose active products
	active := true
	req.IsActive = &active

	response, err := h.productService.GetProducts(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	platform := middleware.GetPlatformFromContext(c)
	for i := range response.Products {
		h.rewriteImageURLs(&response.Products[i], platform)
	}

	respond(c, http.StatusOK, response, "products retrieved successfully")
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, apperrors.Validation("invalid product ID"))
		return
	}

	p, err := h.productService.GetProduct(uint(productID))
	if err != nil {
		respondError(c, err)
		return
	}

	h.rewriteImageURLs(p, middleware.GetPlatformFromContext(c))

	respond(c, http.StatusOK, p, "product retrieved successfully")
}

// GetProductBySlug handles GET /products/slug/:slug
func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	p, err := h.productService.GetProductBySlug(c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.rewriteImageURLs(p, middleware.GetPlatformFromContext(c))

	respond(c, http.StatusOK, p, "product retrieved successfully")
}

// GetSeasons handles GET /products/seasons
func (h *ProductHandler) GetSeasons(c *gin.Context) {
	seasons, err := h.productService.ListSeasons()
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, seasons, "seasons retrieved successfully")
}

// GetColors handles GET /products/colors
func (h *ProductHandler) GetColors(c *gin.Context) {
	colors, err := h.productService.ListColors()
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, colors, "colors retrieved successfully")
}

// CreateProduct handles POST /admin/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req product.ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p, err := h.productService.CreateProduct(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, p, "product created successfully")
}

// UpdateProduct handles PUT /admin/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, apperrors.Validation("invalid product ID"))
		return
	}

	var req product.ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p, err := h.productService.UpdateProduct(uint(productID), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, p, "product updated successfully")
}

// UpdateVariant handles PUT /admin/variants/:id
func (h *ProductHandler) UpdateVariant(c *gin.Context) {
	variantID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, apperrors.Validation("invalid variant ID"))
		return
	}

	var req product.VariantUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	variant, err := h.productService.UpdateVariant(uint(variantID), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, variant, "variant updated successfully")
}

// DeleteProduct handles DELETE /admin/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, apperrors.Validation("invalid product ID"))
		return
	}

	if err := h.productService.DeleteProduct(uint(productID)); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, nil, "product deleted successfully")
}

// rewriteImageURLs points image URLs at the CDN base matching the
// client platform
func (h *ProductHandler) rewriteImageURLs(p *product.Product, platform string) {
	for i := range p.Images {
		p.Images[i].URL = upload.RewriteURL(p.Images[i].URL, platform, h.config)
	}
}
