package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/creativeos/creos/models"
	"github.com/creativeos/creos/nodes"
)

// Health returns a handler for GET /api/v1/health.
func Health(store *nodes.Store, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:    "healthy",
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			NodeCount: store.Count(),
			Version:   "0.1.0",
		})
	}
}
