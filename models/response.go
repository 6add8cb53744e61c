package models

// ScrapeResponse is the response for POST /api/v1/scrape.
type ScrapeResponse struct {
	// Success is true when the run completed. Item-level problems are
	// reported in Errors and do not clear it.
	Success bool `json:"success"`

	// Message is a human-readable summary of the run.
	Message string `json:"message"`

	// RunID correlates the response with logs and webhook deliveries.
	RunID string `json:"run_id"`

	// Results holds the grounding counters, one entry per batch.
	Results []GroundingResult `json:"results"`

	// Items are the candidate records that were fed to the validator.
	Items []RawScrapedItem `json:"items"`

	// Thoughts is the validator's transparency log, including the summary entry.
	Thoughts []AgentThought `json:"thoughts"`

	// Errors aggregates the grounding errors of all batches.
	Errors []string `json:"errors"`

	// Timing provides duration breakdowns for the run.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when the run could not start.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// CollectMs is the time spent loading pages or generating demo records.
	CollectMs int64 `json:"collect_ms"`

	// GroundingMs is the time spent validating and persisting.
	GroundingMs int64 `json:"grounding_ms"`
}

// ServiceInfo is the response for GET /.
type ServiceInfo struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status     string    `json:"status"` // "healthy" or "degraded"
	Service    string    `json:"service"`
	Browser    string    `json:"browser"` // "initialized" or "not initialized"
	Uptime     string    `json:"uptime"`
	BackendURL string    `json:"backend_url"`
	Headless   bool      `json:"headless"`
	PoolStats  PoolStats `json:"pool_stats"`
	Version    string    `json:"version"`
}

// PoolStats reports the state of the browser page pool.
type PoolStats struct {
	MaxPages    int `json:"max_pages"`
	ActivePages int `json:"active_pages"`
	BrowserPID  int `json:"browser_pid"`
}
