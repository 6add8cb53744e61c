package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/velocity/config"
	"github.com/use-agent/velocity/models"
)

type recordingRunner struct {
	got *models.ScrapeRequest
}

func (r *recordingRunner) Run(_ context.Context, req *models.ScrapeRequest) *models.ScrapeResponse {
	r.got = req
	return &models.ScrapeResponse{
		Success: true,
		Message: "Scraped and validated 1 products",
		RunID:   "run-1",
		Results: []models.GroundingResult{{ProductsCreated: 1, Errors: []string{}}},
		Errors:  []string{},
	}
}

type fixedPool struct{ stats models.PoolStats }

func (p fixedPool) Stats() models.PoolStats { return p.stats }

func testConfig() *config.Config {
	cfg := config.Load()
	cfg.Server.Mode = gin.TestMode
	cfg.Backend.URL = "http://backend.test"
	cfg.RateLimit.RequestsPerSecond = 100
	cfg.RateLimit.Burst = 100
	return cfg
}

func newTestRouter(t *testing.T, cfg *config.Config, deps Deps) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if deps.StartTime.IsZero() {
		deps.StartTime = time.Now()
	}
	return NewRouter(ctx, cfg, deps)
}

func do(h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestScrapeRoute(t *testing.T) {
	runner := &recordingRunner{}
	h := newTestRouter(t, testConfig(), Deps{Runner: runner})

	w := do(h, http.MethodPost, "/api/v1/scrape",
		`{"targets":[" electronics ","https://shop.example.com/p/1"],"dry_run":true,"timeout":20}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ScrapeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "run-1", resp.RunID)

	require.NotNil(t, runner.got)
	assert.Equal(t, []string{"electronics", "https://shop.example.com/p/1"}, runner.got.Targets)
	assert.True(t, runner.got.DryRun)
	assert.Equal(t, 20, runner.got.Timeout)
}

func TestScrapeRouteEmptyBodyUsesDefault(t *testing.T) {
	runner := &recordingRunner{}
	h := newTestRouter(t, testConfig(), Deps{Runner: runner})

	w := do(h, http.MethodPost, "/api/v1/scrape", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, runner.got)
	assert.Equal(t, []string{models.DefaultTarget}, runner.got.TargetsOrDefault())
}

func TestScrapeRouteRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"targets":`},
		{"blank target", `{"targets":["  "]}`},
		{"url without host", `{"targets":["https://"]}`},
		{"timeout too large", `{"timeout":500}`},
		{"bad webhook", `{"webhook_url":"not a url"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &recordingRunner{}
			h := newTestRouter(t, testConfig(), Deps{Runner: runner})

			w := do(h, http.MethodPost, "/api/v1/scrape", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Nil(t, runner.got)

			var resp models.ScrapeResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, models.ErrCodeInvalidInput, resp.Error.Code)
		})
	}
}

func TestHealthRoute(t *testing.T) {
	h := newTestRouter(t, testConfig(), Deps{
		Runner: &recordingRunner{},
		Pool:   fixedPool{stats: models.PoolStats{MaxPages: 5, ActivePages: 1, BrowserPID: 42}},
	})

	w := do(h, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "initialized", resp.Browser)
	assert.Equal(t, "http://backend.test", resp.BackendURL)
	assert.Equal(t, 42, resp.PoolStats.BrowserPID)
}

func TestHealthDegradedAndNoBrowser(t *testing.T) {
	busy := newTestRouter(t, testConfig(), Deps{
		Runner: &recordingRunner{},
		Pool:   fixedPool{stats: models.PoolStats{MaxPages: 5, ActivePages: 5}},
	})
	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(do(busy, http.MethodGet, "/api/v1/health", "").Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)

	none := newTestRouter(t, testConfig(), Deps{Runner: &recordingRunner{}})
	resp = models.HealthResponse{}
	require.NoError(t, json.Unmarshal(do(none, http.MethodGet, "/api/v1/health", "").Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "not initialized", resp.Browser)
}

func TestRootRoute(t *testing.T) {
	h := newTestRouter(t, testConfig(), Deps{Runner: &recordingRunner{}})

	w := do(h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)

	var info models.ServiceInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "Velocity Agent", info.Service)
	assert.Contains(t, info.Endpoints, "/api/v1/scrape")
}

func TestAuthProtectsScrapeOnly(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Enabled = true
	cfg.Auth.APIKeys = []string{"k1"}
	h := newTestRouter(t, cfg, Deps{Runner: &recordingRunner{}})

	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodPost, "/api/v1/scrape", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodPost, "/api/v1/scrape", "", "X-API-Key", "nope").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/v1/scrape", "", "X-API-Key", "k1").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/v1/scrape", "", "Authorization", "Bearer k1").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/v1/health", "").Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.RequestsPerSecond = 0.001
	cfg.RateLimit.Burst = 2
	h := newTestRouter(t, cfg, Deps{Runner: &recordingRunner{}})

	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/v1/scrape", "").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/v1/scrape", "").Code)

	w := do(h, http.MethodPost, "/api/v1/scrape", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}
