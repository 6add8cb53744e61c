package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/use-agent/velocity/config"
)

func TestKnownKey(t *testing.T) {
	keys := [][]byte{[]byte("alpha"), []byte("beta")}
	assert.True(t, knownKey(keys, []byte("alpha")))
	assert.True(t, knownKey(keys, []byte("beta")))
	assert.False(t, knownKey(keys, []byte("alph")))
	assert.False(t, knownKey(keys, []byte("")))
}

func TestLimitersSweep(t *testing.T) {
	l := newLimiters(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1})
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	l.get("old", base)
	l.get("fresh", base.Add(2*time.Hour))
	assert.Same(t, l.get("fresh", base.Add(2*time.Hour)), l.get("fresh", base.Add(2*time.Hour)))

	l.sweep(base.Add(time.Hour))
	assert.Equal(t, 1, l.len())
}
