// internal/domain/upload/service.go
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/your-org/mall-marketplace/internal/config"
	"github.com/your-org/mall-marketplace/internal/pkg/apperrors"
)

// Service handles file upload business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new upload service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ImageUploadRequest represents an image upload request
type ImageUploadRequest struct {
	File       multipart.File        `json:"-"`
	Header     *multipart.FileHeader `json:"-"`
	Category   string                `json:"category"`
	AltText    string                `json:"alt_text"`
	UploadedBy uint                  `json:"uploaded_by"`
}

// ImageListRequest represents image list query parameters
type ImageListRequest struct {
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit,default=20"`
	Category string `form:"category"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// ImageListResponse represents image list response
type ImageListResponse struct {
	Images     []UploadedFile `json:"images"`
	Pagination Pagination     `json:"pagination"`
}

// UploadImage stores a single image on disk and records it
func (s *Service) UploadImage(req *ImageUploadRequest) (*UploadedFile, error) {
	if err := s.validateImageFile(req.Header); err != nil {
		return nil, err
	}

	filename := generateUniqueFilename(req.Header.Filename)

	category := req.Category
	if category == "" {
		category = "general"
	}

	relativePath := filepath.Join(category, filename)
	fullPath := filepath.Join(s.config.External.Storage.LocalPath, relativePath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create directory: %w", err))
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create file: %w", err))
	}
	defer dst.Close()

	if _, err := io.Copy(dst, req.File); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to save file: %w", err))
	}

	uploadedFile := UploadedFile{
		OriginalName: req.Header.Filename,
		Filename:     filename,
		Path:         relativePath,
		URL:          s.fileURL(relativePath),
		MimeType:     mimeTypeFor(req.Header.Filename),
		Size:         req.Header.Size,
		Category:     category,
		AltText:      req.AltText,
		UploadedBy:   req.UploadedBy,
		IsPublic:     true,
	}

	if err := s.db.Create(&uploadedFile).Error; err != nil {
		os.Remove(fullPath)
		return nil, apperrors.Internal(fmt.Errorf("failed to save file info: %w", err))
	}

	return &uploadedFile, nil
}

// GetImages lists uploaded images with pagination
func (s *Service) GetImages(req *ImageListRequest) (*ImageListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&UploadedFile{})
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	var images []UploadedFile
	offset := (req.Page - 1) * req.Limit
	err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&images).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &ImageListResponse{
		Images: images,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      int(total),
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// GetImage retrieves an uploaded image by ID
func (s *Service) GetImage(imageID uint) (*UploadedFile, error) {
	var uploadedFile UploadedFile
	if err := s.db.First(&uploadedFile, imageID).Error; err != nil {
		return nil, apperrors.NotFound("image not found")
	}
	return &uploadedFile, nil
}

// DeleteImage deletes an uploaded image from disk and the database
func (s *Service) DeleteImage(imageID uint) error {
	var uploadedFile UploadedFile
	if err := s.db.First(&uploadedFile, imageID).Error; err != nil {
		return apperrors.NotFound("image not found")
	}

	fullPath := filepath.Join(s.config.External.Storage.LocalPath, uploadedFile.Path)
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return apperrors.Internal(fmt.Errorf("failed to delete file: %w", err))
	}

	if err := s.db.Delete(&uploadedFile).Error; err != nil {
		return apperrors.Internal(fmt.Errorf("failed to delete file record: %w", err))
	}

	return nil
}

// RewriteURL rewrites an image URL to the base matching the client
// platform. Mobile clients get the mobile CDN base when one is set,
// everything else keeps the web base. URLs outside the known bases
// pass through untouched.
func RewriteURL(rawURL, platform string, cfg *config.Config) string {
	if rawURL == "" {
		return rawURL
	}

	webBase := cfg.External.Storage.CDNBaseURL
	mobileBase := cfg.External.Storage.MobileBaseURL
	if mobileBase == "" {
		return rawURL
	}

	switch platform {
	case "ios", "android":
		if webBase != "" && strings.HasPrefix(rawURL, webBase) {
			return mobileBase + strings.TrimPrefix(rawURL, webBase)
		}
	default:
		if strings.HasPrefix(rawURL, mobileBase) {
			return webBase + strings.TrimPrefix(rawURL, mobileBase)
		}
	}

	return rawURL
}

func (s *Service) validateImageFile(header *multipart.FileHeader) error {
	if header.Size > s.config.Upload.MaxSize {
		return apperrors.Validation(fmt.Sprintf("file too large: maximum size is %d bytes", s.config.Upload.MaxSize))
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	for _, allowed := range s.config.Upload.AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}

	return apperrors.Validation(fmt.Sprintf("file type .%s is not allowed", ext))
}

func (s *Service) fileURL(relativePath string) string {
	base := s.config.External.Storage.CDNBaseURL
	if base == "" {
		base = "/uploads"
	}
	return base + "/" + filepath.ToSlash(relativePath)
}

func generateUniqueFilename(originalName string) string {
	ext := filepath.Ext(originalName)
	return uuid.New().String() + strings.ToLower(ext)
}

func mimeTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
