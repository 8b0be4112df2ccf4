// Package middleware holds the gin middleware for the admin API.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"subcycle/internal/shared/logger"
)

// RequestLogger logs one line per request.
func RequestLogger(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Infow("request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}
