// Package api wires the HTTP surface of the service.
package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/velocity/api/handler"
	"github.com/use-agent/velocity/api/middleware"
	"github.com/use-agent/velocity/config"
)

// Deps are the collaborators behind the routes.
type Deps struct {
	Runner handler.Runner

	// Pool reports browser utilisation; nil when no browser is running.
	Pool handler.PoolReporter

	StartTime time.Time
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// The health and root endpoints stay outside auth so probes always work.
// Background sweepers stop when ctx is done.
func NewRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/", handler.Root())

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(deps.Pool, handler.HealthInfo{
		BackendURL: cfg.Backend.URL,
		Headless:   cfg.Browser.Headless,
		StartTime:  deps.StartTime,
	}))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(ctx, cfg.RateLimit))

	protected.POST("/scrape", handler.Scrape(deps.Runner))

	return r
}
