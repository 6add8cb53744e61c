package scraper

import (
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
)

func TestIsTrackerHost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"doubleclick.net", true},
		{"stats.g.doubleclick.net", true},
		{"WWW.GOOGLE-ANALYTICS.COM", true},
		{"googletagmanager.com.", true},
		{"shop.example.com", false},
		{"notdoubleclick.net", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, isTrackerHost(tt.host))
		})
	}
}

func TestBlocker(t *testing.T) {
	b := newBlocker([]string{"Image", "Font", "Bogus"}, true)
	assert.False(t, b.empty())
	assert.Len(t, b.types, 2)

	assert.True(t, b.blocks(proto.NetworkResourceTypeImage, "https://shop.example.com/a.png"))
	assert.True(t, b.blocks(proto.NetworkResourceTypeFont, "https://shop.example.com/a.woff2"))
	assert.True(t, b.blocks(proto.NetworkResourceTypeScript, "https://www.googletagmanager.com/gtm.js"))
	assert.False(t, b.blocks(proto.NetworkResourceTypeDocument, "https://shop.example.com/p/1"))
	assert.False(t, b.blocks(proto.NetworkResourceTypeScript, "://bad url"))
}

func TestBlockerWithoutTrackers(t *testing.T) {
	b := newBlocker(nil, false)
	assert.True(t, b.empty())
	assert.False(t, b.blocks(proto.NetworkResourceTypeScript, "https://doubleclick.net/x.js"))
}

func TestPickUserAgent(t *testing.T) {
	assert.Empty(t, pickUserAgent(nil))

	agents := []string{"a", "b", "c"}
	for range 20 {
		assert.Contains(t, agents, pickUserAgent(agents))
	}
}

func TestNavTimeout(t *testing.T) {
	s := &Scraper{}
	s.scraperCfg.NavigationTimeout = 30 * time.Second
	s.scraperCfg.MaxTimeout = 120 * time.Second

	assert.Equal(t, 30*time.Second, s.navTimeout(0))
	assert.Equal(t, 120*time.Second, s.navTimeout(5*time.Minute))
	assert.Equal(t, 10*time.Second, s.navTimeout(10*time.Second))
}
