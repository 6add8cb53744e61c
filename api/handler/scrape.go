package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/velocity/agent"
	"github.com/use-agent/velocity/models"
)

// Runner executes a scrape run. *agent.Runner implements it.
type Runner interface {
	Run(ctx context.Context, req *models.ScrapeRequest) *models.ScrapeResponse
}

// Scrape returns a handler for POST /api/v1/scrape.
//
// An empty body runs the default target. URL targets must be absolute
// http(s) URLs; anything else is a symbolic demo target.
func Scrape(runner Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respondError(c, models.NewPipelineError(models.ErrCodeInvalidInput, err.Error(), err))
			return
		}

		for i, target := range req.Targets {
			target = strings.TrimSpace(target)
			if target == "" {
				respondError(c, models.NewPipelineError(models.ErrCodeInvalidInput, "targets must not be blank", nil))
				return
			}
			if agent.IsLiveTarget(target) {
				if err := models.ValidateSourceURL(target); err != nil {
					respondError(c, models.NewPipelineError(models.ErrCodeInvalidInput, err.Error(), err))
					return
				}
			}
			req.Targets[i] = target
		}

		c.JSON(http.StatusOK, runner.Run(c.Request.Context(), &req))
	}
}

// respondError writes a structured error with the status matching its code.
func respondError(c *gin.Context, err error) {
	pe := models.AsPipelineError(err)
	c.AbortWithStatusJSON(mapErrorToStatus(pe), models.ScrapeResponse{
		Success: false,
		Message: pe.Message,
		Error:   pe.ToDetail(),
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.PipelineError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput, models.ErrCodeValidation:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeBrowserCrash:
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500
	}
}
