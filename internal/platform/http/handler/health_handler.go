// Package handler provides HTTP handlers for platform-level endpoints.
package handler

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Health handles the /api/health liveness endpoint.
// It responds appropriately per HTTP method and prevents caching.
func Health(c *gin.Context) {
	// Liveness responses must never be cached
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case "HEAD":
		c.Status(200)
	case "OPTIONS":
		c.Status(204)
	default:
		c.JSON(200, gin.H{
			"success":   true,
			"message":   "Leaderboard API is running!",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
