package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyAuth guards endpoints with an X-API-Key header check. With auth
// disabled every request passes. A missing header is always a client error;
// a present header with no key configured server side fails with 500, so a
// misconfigured server never silently becomes an open one.
func APIKeyAuth(enabled bool, secretKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		key := c.GetHeader("X-API-Key")
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing API key",
			})
			return
		}

		if secretKey == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "API_SECRET_KEY not configured on server",
			})
			return
		}

		if key != secretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid API key",
			})
			return
		}

		c.Next()
	}
}
