package ratelimit

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinMiddleware throttles by client IP and matched route.
func GinMiddleware(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP() + ":" + c.FullPath()
		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil || allowed {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": gin.H{
				"type":    "rate_limited",
				"message": "too many requests, retry later",
			},
		})
	}
}
