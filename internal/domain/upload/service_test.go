// internal/domain/upload/service_test.go
package upload

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/your-org/mall-marketplace/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.External.Storage.CDNBaseURL = "https://cdn.example.com"
	cfg.External.Storage.MobileBaseURL = "https://m-cdn.example.com"
	return cfg
}

func TestRewriteURL(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name     string
		url      string
		platform string
		want     string
	}{
		{
			name:     "web url for mobile client",
			url:      "https://cdn.example.com/products/a.jpg",
			platform: "ios",
			want:     "https://m-cdn.example.com/products/a.jpg",
		},
		{
			name:     "web url for android client",
			url:      "https://cdn.example.com/products/a.jpg",
			platform: "android",
			want:     "https://m-cdn.example.com/products/a.jpg",
		},
		{
			name:     "mobile url for web client",
			url:      "https://m-cdn.example.com/products/a.jpg",
			platform: "web",
			want:     "https://cdn.example.com/products/a.jpg",
		},
		{
			name:     "unknown platform keeps web base",
			url:      "https://cdn.example.com/products/a.jpg",
			platform: "",
			want:     "https://cdn.example.com/products/a.jpg",
		},
		{
			name:     "foreign url passes through",
			url:      "https://other.example.com/x.jpg",
			platform: "ios",
			want:     "https://other.example.com/x.jpg",
		},
		{
			name:     "empty url passes through",
			url:      "",
			platform: "ios",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RewriteURL(tt.url, tt.platform, cfg))
		})
	}
}

func TestRewriteURLNoMobileBase(t *testing.T) {
	cfg := testConfig()
	cfg.External.Storage.MobileBaseURL = ""

	url := "https://cdn.example.com/products/a.jpg"
	assert.Equal(t, url, RewriteURL(url, "ios", cfg))
}

func TestGenerateUniqueFilename(t *testing.T) {
	name := generateUniqueFilename("Photo.JPG")
	assert.True(t, strings.HasSuffix(name, ".jpg"))
	assert.NotEqual(t, generateUniqueFilename("Photo.JPG"), name)
}

func TestMimeTypeFor(t *testing.T) {
	assert.Equal(t, "image/jpeg", mimeTypeFor("a.jpg"))
	assert.Equal(t, "image/jpeg", mimeTypeFor("a.JPEG"))
	assert.Equal(t, "image/png", mimeTypeFor("a.png"))
	assert.Equal(t, "image/webp", mimeTypeFor("a.webp"))
	assert.Equal(t, "application/octet-stream", mimeTypeFor("a.exe"))
}
