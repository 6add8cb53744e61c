package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	assert.Equal(t, "http://localhost:3000", cfg.Backend.URL)
	assert.Equal(t, 30*time.Second, cfg.Backend.WriteTimeout)
	assert.Equal(t, 10*time.Second, cfg.Backend.LogTimeout)
	assert.Equal(t, 30*time.Second, cfg.Scraper.NavigationTimeout)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, DefaultUserAgents, cfg.Browser.UserAgents)
	assert.Equal(t, 3, cfg.Demo.MinItems)
	assert.Equal(t, 5, cfg.Demo.MaxItems)
	assert.Equal(t, []time.Duration{0, 2 * time.Second, 5 * time.Second}, cfg.Engine.EscalationDelays)
	assert.False(t, cfg.Auth.Enabled)
}

func TestLoadLegacyNames(t *testing.T) {
	t.Setenv("NODE_BACKEND_URL", "http://backend:4000")
	t.Setenv("HEADLESS", "false")
	t.Setenv("BROWSER_TIMEOUT", "45000")

	cfg := Load()

	assert.Equal(t, "http://backend:4000", cfg.Backend.URL)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 45*time.Second, cfg.Scraper.NavigationTimeout)
}

func TestLoadPrefixedNamesWin(t *testing.T) {
	t.Setenv("NODE_BACKEND_URL", "http://legacy:4000")
	t.Setenv("VELOCITY_BACKEND_URL", "http://current:5000")
	t.Setenv("BROWSER_TIMEOUT", "45000")
	t.Setenv("VELOCITY_NAV_TIMEOUT", "12s")

	cfg := Load()

	assert.Equal(t, "http://current:5000", cfg.Backend.URL)
	assert.Equal(t, 12*time.Second, cfg.Scraper.NavigationTimeout)
}

func TestLoadLists(t *testing.T) {
	t.Setenv("VELOCITY_API_KEYS", " k1 , ,k2")
	t.Setenv("VELOCITY_USER_AGENTS", "UA one, with comma|UA two")
	t.Setenv("VELOCITY_ESCALATION_DELAYS", "0s, 1s, bogus")
	t.Setenv("VELOCITY_DEMO_SEED", "42")

	cfg := Load()

	assert.Equal(t, []string{"k1", "k2"}, cfg.Auth.APIKeys)
	assert.Equal(t, []string{"UA one, with comma", "UA two"}, cfg.Browser.UserAgents)
	assert.Equal(t, []time.Duration{0, time.Second}, cfg.Engine.EscalationDelays)
	assert.Equal(t, uint64(42), cfg.Demo.Seed)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("VELOCITY_PORT", "eighty")
	t.Setenv("VELOCITY_HEADLESS", "maybe")
	t.Setenv("BROWSER_TIMEOUT", "-5")

	cfg := Load()

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 30*time.Second, cfg.Scraper.NavigationTimeout)
}
