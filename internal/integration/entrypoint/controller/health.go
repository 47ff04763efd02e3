// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker func() bool

// HealthController handles health check endpoints.
type HealthController struct {
	dbHealthChecker    HealthChecker
	cacheHealthChecker HealthChecker
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Cache     string `json:"cache"`
	Timestamp string `json:"timestamp"`
}

// NewHealthController creates a new health controller instance. cacheHealthChecker may be nil
// when the server runs without Redis.
func NewHealthController(dbHealthChecker, cacheHealthChecker HealthChecker) *HealthController {
	return &HealthController{
		dbHealthChecker:    dbHealthChecker,
		cacheHealthChecker: cacheHealthChecker,
	}
}

// Check handles GET /health requests.
// It answers 503 when the database is unreachable. A missing cache only degrades the status.
func (h *HealthController) Check(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		Database:  "connected",
		Cache:     "connected",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	statusCode := http.StatusOK

	if h.dbHealthChecker == nil || !h.dbHealthChecker() {
		response.Status = "unavailable"
		response.Database = "disconnected"
		statusCode = http.StatusServiceUnavailable
	}

	switch {
	case h.cacheHealthChecker == nil:
		response.Cache = "disabled"
	case !h.cacheHealthChecker():
		response.Cache = "disconnected"
		if statusCode == http.StatusOK {
			response.Status = "degraded"
		}
	}

	c.JSON(statusCode, response)
}
