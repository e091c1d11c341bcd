package v1

import (
	"context"
	"net/http"
	"time"

	"crudapi/database"

	"github.com/gin-gonic/gin"
)

// @Summary Health check
// @Description Reports reachability of the backing stores
// @Tags Support
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{"postgres": "up", "redis": "up"}

	if sqlDB, err := database.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["postgres"] = "down"
		status = http.StatusServiceUnavailable
	}
	if err := database.REDIS.Ping(ctx).Err(); err != nil {
		checks["redis"] = "down"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, checks)
}

func RegisterHealthRoutes(r *gin.RouterGroup) {
	r.GET("/health", health)
}
