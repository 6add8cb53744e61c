package catalog

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/velocity/models"
)

func TestPool(t *testing.T) {
	products := Products()
	assert.Len(t, products, 34)
	assert.Len(t, Categories(), 7)

	names := make(map[string]bool)
	for _, p := range products {
		assert.False(t, names[p.Name], "duplicate product %q", p.Name)
		names[p.Name] = true
		assert.Greater(t, p.Price, 0.0, p.Name)
		assert.GreaterOrEqual(t, p.Sentiment, -1.0, p.Name)
		assert.LessOrEqual(t, p.Sentiment, 1.0, p.Name)
	}
}

func TestProduct_Item(t *testing.T) {
	p := Product{Name: "USB-C Hub 7-in-1", Category: CatOfficeAndProductivity, Competitor: "ConnectTech",
		Price: 44.99, Sentiment: 0.83, Text: "Essential for new MacBooks", Insight: "Mac ecosystem tie-in."}

	it := p.Item(DefaultBaseURL)
	assert.Equal(t, "https://example.com/products/usb-c-hub-7-in-1", it.SourceURL)
	assert.Equal(t, "https://example.com/reviews/usb-c-hub-7-in-1", it.SentimentSourceURL)
	assert.Equal(t, models.ModeDemo, it.Mode)
	assert.Equal(t, "USD", it.Currency)
	require.NotNil(t, it.Price)
	assert.Equal(t, 44.99, *it.Price)
	require.NotNil(t, it.SentimentScore)
	assert.Equal(t, 0.83, *it.SentimentScore)
}

func TestGenerator_SampleSize(t *testing.T) {
	g := NewGenerator(Options{})
	for range 50 {
		items := g.Sample(models.DefaultTarget)
		assert.GreaterOrEqual(t, len(items), 3)
		assert.LessOrEqual(t, len(items), 5)

		seen := make(map[string]bool)
		for _, it := range items {
			assert.False(t, seen[it.Name], "sample must not repeat products")
			seen[it.Name] = true

			u, err := url.Parse(it.SourceURL)
			require.NoError(t, err)
			assert.Equal(t, "example.com", u.Host)
		}
	}
}

func TestGenerator_SeedIsDeterministic(t *testing.T) {
	a := NewGenerator(Options{Seed: 42}).Sample("default")
	b := NewGenerator(Options{Seed: 42}).Sample("default")
	assert.Equal(t, a, b)
}

func TestGenerator_CategoryTargets(t *testing.T) {
	g := NewGenerator(Options{Seed: 7, Min: 3, Max: 3})

	tests := []struct {
		target string
		want   []string
	}{
		{"electronics", []string{CatElectronics}},
		{"home-appliances", []string{CatHomeAppliances}},
		{"Home & Garden", []string{CatHomeAndGarden}},
		{"beauty", []string{CatBeautyAndPersonalCare}},
		{"home", []string{CatHomeAppliances, CatHomeAndGarden}},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			items := g.Sample(tt.target)
			require.Len(t, items, 3)
			for _, it := range items {
				assert.Contains(t, tt.want, it.Category)
			}
		})
	}
}

func TestGenerator_SmallCategoryCapsSample(t *testing.T) {
	g := NewGenerator(Options{Min: 10, Max: 10})
	assert.Len(t, g.Sample("fashion"), 4)
}

func TestFilter_UnknownTarget(t *testing.T) {
	assert.Nil(t, Filter("default"))
	assert.Nil(t, Filter("https://shop.example.com"))
	assert.Nil(t, Filter(""))
}
