package middleware

import (
	"github.com/gin-gonic/gin"
)

// Platform reads the X-Platform header so handlers can tailor responses
// to the client. Unknown values fall back to "web".
func Platform() gin.HandlerFunc {
	return func(c *gin.Context) {
		platform := c.GetHeader("X-Platform")
		switch platform {
		case "ios", "android", "web":
		default:
			platform = "web"
		}

		c.Set("platform", platform)
		c.Next()
	}
}

// GetPlatformFromContext extracts the client platform from gin context
func GetPlatformFromContext(c *gin.Context) string {
	platform, exists := c.Get("platform")
	if !exists {
		return "web"
	}
	return platform.(string)
}
