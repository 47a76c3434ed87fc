package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// CacheControl sets a private Cache-Control header. Zero means no-cache.
func CacheControl(maxAgeSeconds int) gin.HandlerFunc {
	value := "private, no-cache"
	if maxAgeSeconds > 0 {
		value = fmt.Sprintf("private, max-age=%d", maxAgeSeconds)
	}
	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		c.Next()
	}
}
