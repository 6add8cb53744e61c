// Package config loads service settings from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Engine    EngineConfig
	Demo      DemoConfig
	Cache     CacheConfig
	Webhook   WebhookConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8000
	Mode string // "debug", "release", "test"; default: "release"

	// CORSOrigins lists allowed origins. default: ["*"]
	CORSOrigins []string
}

// BackendConfig points at the persistence service.
type BackendConfig struct {
	// URL is the backend base URL. Falls back to NODE_BACKEND_URL.
	URL string // default: "http://localhost:3000"

	// WriteTimeout bounds product, price and sentiment writes.
	WriteTimeout time.Duration // default: 30s

	// LogTimeout bounds a single agent log write.
	LogTimeout time.Duration // default: 10s

	// FlushTimeout bounds the whole thought log flush after a batch.
	FlushTimeout time.Duration // default: 10s
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Enabled launches a browser for live targets. When false, live
	// targets use the HTTP engine only.
	Enabled bool // default: true

	// Headless controls whether the browser runs headless. Falls back to HEADLESS.
	Headless bool // default: true

	// MaxPages is the page pool capacity and the live collection fan-out.
	MaxPages int // default: 5

	// Proxy is the proxy URL for all browser traffic.
	Proxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// UserAgents are rotated per page load.
	UserAgents []string
}

// ScraperConfig controls page loading.
type ScraperConfig struct {
	// NavigationTimeout bounds one page load. Falls back to BROWSER_TIMEOUT
	// in milliseconds.
	NavigationTimeout time.Duration // default: 30s

	// MaxTimeout caps the per-request timeout a client may ask for.
	MaxTimeout time.Duration // default: 120s

	// BlockedResourceTypes lists resource types skipped during page loads.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string

	// BlockAds skips requests to known ad and analytics hosts.
	BlockAds bool // default: true
}

// EngineConfig controls the multi-engine racing dispatcher.
type EngineConfig struct {
	// EnableMultiEngine toggles the multi-engine dispatcher.
	EnableMultiEngine bool // default: true

	// EscalationDelays is the staged start delay for each engine tier.
	EscalationDelays []time.Duration // default: [0s, 2s, 5s]

	// HTTPTimeout is the deadline for the pure HTTP engine.
	HTTPTimeout time.Duration // default: 5s

	// DomainMemoryTTL is how long a domain's winning engine is remembered.
	DomainMemoryTTL time.Duration // default: 30m
}

// DemoConfig controls synthetic catalog sampling.
type DemoConfig struct {
	// Seed makes sampling deterministic. Zero seeds from the clock.
	Seed uint64

	// MinItems and MaxItems bound the sample size per target.
	MinItems int // default: 3
	MaxItems int // default: 5

	// BaseURL prefixes synthesized product and review URLs.
	BaseURL string // default: "https://example.com"
}

// CacheConfig controls the extraction cache.
type CacheConfig struct {
	// Enabled toggles caching of live extraction results.
	Enabled bool // default: true

	// TTL is how long an extraction stays fresh.
	TTL time.Duration // default: 10m

	// MaxEntries bounds the in-memory cache.
	MaxEntries int // default: 1000

	// RedisURL selects the Redis-backed cache when set.
	RedisURL string
}

// WebhookConfig controls completion notifications.
type WebhookConfig struct {
	// URL receives a scrape.completed event per run. Empty disables it.
	URL string

	// Secret signs payloads with HMAC-SHA256.
	Secret string

	// Timeout bounds one delivery attempt.
	Timeout time.Duration // default: 10s
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per API key.
	Burst int // default: 5
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// DefaultUserAgents are rotated when VELOCITY_USER_AGENTS is unset.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        envOr("VELOCITY_HOST", "0.0.0.0"),
			Port:        envIntOr("VELOCITY_PORT", 8000),
			Mode:        envOr("VELOCITY_MODE", "release"),
			CORSOrigins: envSliceOr("VELOCITY_CORS_ORIGINS", []string{"*"}),
		},
		Backend: BackendConfig{
			URL:          envOr("VELOCITY_BACKEND_URL", envOr("NODE_BACKEND_URL", "http://localhost:3000")),
			WriteTimeout: envDurationOr("VELOCITY_BACKEND_TIMEOUT", 30*time.Second),
			LogTimeout:   envDurationOr("VELOCITY_LOG_TIMEOUT", 10*time.Second),
			FlushTimeout: envDurationOr("VELOCITY_FLUSH_TIMEOUT", 10*time.Second),
		},
		Browser: BrowserConfig{
			Enabled:    envBoolOr("VELOCITY_BROWSER_ENABLED", true),
			Headless:   envBoolOr("VELOCITY_HEADLESS", envBoolOr("HEADLESS", true)),
			MaxPages:   envIntOr("VELOCITY_MAX_PAGES", 5),
			Proxy:      os.Getenv("VELOCITY_PROXY"),
			NoSandbox:  envBoolOr("VELOCITY_NO_SANDBOX", false),
			BrowserBin: os.Getenv("VELOCITY_BROWSER_BIN"),
			UserAgents: envListOr("VELOCITY_USER_AGENTS", "|", DefaultUserAgents),
		},
		Scraper: ScraperConfig{
			NavigationTimeout: envDurationOr("VELOCITY_NAV_TIMEOUT", envMillisOr("BROWSER_TIMEOUT", 30*time.Second)),
			MaxTimeout:        envDurationOr("VELOCITY_MAX_TIMEOUT", 120*time.Second),
			BlockedResourceTypes: envSliceOr("VELOCITY_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
			BlockAds: envBoolOr("VELOCITY_BLOCK_ADS", true),
		},
		Engine: EngineConfig{
			EnableMultiEngine: envBoolOr("VELOCITY_MULTI_ENGINE", true),
			EscalationDelays:  envDurationSliceOr("VELOCITY_ESCALATION_DELAYS", []time.Duration{0, 2 * time.Second, 5 * time.Second}),
			HTTPTimeout:       envDurationOr("VELOCITY_HTTP_TIMEOUT", 5*time.Second),
			DomainMemoryTTL:   envDurationOr("VELOCITY_DOMAIN_MEMORY_TTL", 30*time.Minute),
		},
		Demo: DemoConfig{
			Seed:     envUint64Or("VELOCITY_DEMO_SEED", 0),
			MinItems: envIntOr("VELOCITY_DEMO_MIN", 3),
			MaxItems: envIntOr("VELOCITY_DEMO_MAX", 5),
			BaseURL:  envOr("VELOCITY_DEMO_BASE_URL", "https://example.com"),
		},
		Cache: CacheConfig{
			Enabled:    envBoolOr("VELOCITY_CACHE_ENABLED", true),
			TTL:        envDurationOr("VELOCITY_CACHE_TTL", 10*time.Minute),
			MaxEntries: envIntOr("VELOCITY_CACHE_MAX_ENTRIES", 1000),
			RedisURL:   os.Getenv("VELOCITY_REDIS_URL"),
		},
		Webhook: WebhookConfig{
			URL:     os.Getenv("VELOCITY_WEBHOOK_URL"),
			Secret:  os.Getenv("VELOCITY_WEBHOOK_SECRET"),
			Timeout: envDurationOr("VELOCITY_WEBHOOK_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("VELOCITY_AUTH_ENABLED", false),
			APIKeys: envSliceOr("VELOCITY_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("VELOCITY_RATE_RPS", 2.0),
			Burst:             envIntOr("VELOCITY_RATE_BURST", 5),
		},
		Log: LogConfig{
			Level:  envOr("VELOCITY_LOG_LEVEL", "info"),
			Format: envOr("VELOCITY_LOG_FORMAT", "json"),
		},
	}
}

// Addr is the listen address of the HTTP server.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envUint64Or(key string, fallback uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseUint(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envMillisOr reads an integer millisecond count.
func envMillisOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	return envListOr(key, ",", fallback)
}

func envListOr(key, sep string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, sep)
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}

func envDurationSliceOr(key string, fallback []time.Duration) []time.Duration {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]time.Duration, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				if d, err := time.ParseDuration(trimmed); err == nil {
					result = append(result, d)
				}
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
