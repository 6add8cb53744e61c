package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/velocity/models"
)

// ServiceName and Version identify the service in responses.
const (
	ServiceName = "velocity-agent"
	Version     = "1.0.0"
)

// PoolReporter exposes browser pool utilisation. *scraper.Scraper implements it.
type PoolReporter interface {
	Stats() models.PoolStats
}

// HealthInfo is the static part of the health report.
type HealthInfo struct {
	BackendURL string
	Headless   bool
	StartTime  time.Time
}

// Health returns a handler for GET /api/v1/health. pool may be nil when
// no browser is running.
//
// Reports degraded when more than 80% of pages are active.
func Health(pool PoolReporter, info HealthInfo) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := models.HealthResponse{
			Status:     "healthy",
			Service:    ServiceName,
			Browser:    "not initialized",
			Uptime:     time.Since(info.StartTime).Round(time.Second).String(),
			BackendURL: info.BackendURL,
			Headless:   info.Headless,
			Version:    Version,
		}

		if pool != nil {
			stats := pool.Stats()
			resp.Browser = "initialized"
			resp.PoolStats = stats
			if stats.MaxPages > 0 && stats.ActivePages > int(float64(stats.MaxPages)*0.8) {
				resp.Status = "degraded"
			}
		}

		c.JSON(http.StatusOK, resp)
	}
}

// Root returns a handler for GET / describing the service.
func Root() gin.HandlerFunc {
	info := models.ServiceInfo{
		Service: "Velocity Agent",
		Version: Version,
		Status:  "running",
		Endpoints: map[string]string{
			"/api/v1/health": "Health check",
			"/api/v1/scrape": "POST - Trigger autonomous scraping",
		},
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, info)
	}
}
