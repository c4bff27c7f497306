package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIVersion is reported by the root endpoint.
const APIVersion = "1.0.0"

const healthTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Controller handles general HTTP requests.
type Controller struct {
	store Pinger
}

// New creates a new Controller checking store for health.
func New(store Pinger) *Controller {
	return &Controller{store: store}
}

// Root describes the API.
func (con *Controller) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Inventory Management API",
		"version": APIVersion,
		"status":  "running",
	})
}

// Health handles the HTTP GET request for health check endpoint.
func (con *Controller) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := con.store.Ping(ctx); err != nil {
		slog.Warn("Health check failed", slog.Any("err", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
			"error":    err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
