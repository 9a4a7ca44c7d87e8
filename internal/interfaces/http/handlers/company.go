// internal/interfaces/http/handlers/company.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/mall-marketplace/internal/config"
	"github.com/your-org/mall-marketplace/internal/domain/company"
	"github.com/your-org/mall-marketplace/internal/pkg/apperrors"
)

// CompanyHandler handles company and branch endpoints
type CompanyHandler struct {
	companyService *company.Service
	config         *config.Config
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CompanyHandler {
	return &CompanyHandler{
		companyService: company.NewService(db, redisClient, cfg),
		config:         cfg,
	}
}

// GetCompanies handles GET /companies
func (h *CompanyHandler) GetCompanies(c *gin.Context) {
	companies, err := h.companyService.ListCompanies()
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, companies, "companies retrieved successfully")
}

// GetCompany handles GET /companies/:id
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	companyID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, apperrors.Validation("invalid company ID"))
		return
	}

	co, err := h.companyService.GetCompany(uint(companyID))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, co, "company retrieved successfully")
}

// GetBranches handles GET /branches
func (h *CompanyHandler) GetBranches(c *gin.Context) {
	var companyID uint
	if param := c.Query("company_id"); param != "" {
		id, err := strconv.ParseUint(param, 10, 32)
		if err != nil {
			respondError(c, apperrors.Validation("invalid company ID"))
			return
		}
		companyID = uint(id)
	}

	branches, err := h.companyService.ListBranches(companyID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, branches, "branches retrieved successfully")
}

// GetBranch handles GET /branches/:id
func (h *CompanyHandler) GetBranch(c *gin.Context) {
	branchID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, apperrors.Validation("invalid branch ID"))
		return
	}

	branch, err := h.companyService.GetBranch(uint(branchID))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, branch, "branch retrieved successfully")
}
