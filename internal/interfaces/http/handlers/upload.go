// internal/interfaces/http/handlers/upload.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/your-org/mall-marketplace/internal/config"
	"github.com/your-org/mall-marketplace/internal/domain/upload"
	"github.com/your-org/mall-marketplace/internal/interfaces/http/middleware"
	"github.com/your-org/mall-marketplace/internal/pkg/apperrors"
)

// UploadHandler handles image upload endpoints
type UploadHandler struct {
	uploadService *upload.Service
	config        *config.Config
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(db *gorm.DB, cfg *config.Config) *UploadHandler {
	return &UploadHandler{
		uploadService: upload.NewService(db, cfg),
		config:        cfg,
	}
}

// UploadImage handles POST /admin/uploads
func (h *UploadHandler) UploadImage(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, apperrors.Validation("no file provided"))
		return
	}
	defer file.Close()

	req := upload.ImageUploadRequest{
		File:       file,
		Header:     header,
		Category:   c.PostForm("category"),
		AltText:    c.PostForm("alt_text"),
		UploadedBy: userID,
	}

	uploaded, err := h.uploadService.UploadImage(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, uploaded, "image uploaded successfully")
}

// GetImages handles GET /admin/uploads
func (h *UploadHandler) GetImages(c *gin.Context) {
	var req upload.ImageListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	images, err := h.uploadService.GetImages(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, images, "images retrieved successfully")
}

// DeleteImage handles DELETE /admin/uploads/:id
func (h *UploadHandler) DeleteImage(c *gin.Context) {
	imageID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, apperrors.Validation("invalid image ID"))
		return
	}

	if err := h.uploadService.DeleteImage(uint(imageID)); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, nil, "image deleted successfully")
}
