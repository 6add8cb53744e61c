package models

// Defaults applied when extraction cannot determine a field.
const (
	UnknownProductName = "Unknown Product"
	UnknownCategory    = "Unknown"
	DefaultCurrency    = "USD"
)

// Length limits on scraped text.
const (
	MaxNameLength          = 100
	MaxSentimentTextLength = 200
	MaxReviewLength        = 500
	MaxReviews             = 3
)

// ItemMode records how a RawScrapedItem was produced.
type ItemMode string

const (
	// ModeLive items were extracted from a page fetched for the item's URL.
	ModeLive ItemMode = "live"

	// ModeDemo items come from the built-in catalog. Their source URLs are
	// synthesized and must not be treated as authoritative.
	ModeDemo ItemMode = "demo"
)

// RawScrapedItem is a candidate product record before grounding.
// Optional numeric facts are pointers: nil means "not extracted".
type RawScrapedItem struct {
	Name       string `json:"name"`
	Category   string `json:"category,omitempty"`
	Competitor string `json:"competitor,omitempty"`

	// Price is only persisted when SourceURL is also present.
	Price    *float64 `json:"price,omitempty"`
	Currency string   `json:"currency"`

	// SentimentScore is only persisted when SentimentSourceURL is also present.
	SentimentScore *float64 `json:"sentiment_score,omitempty"`
	SentimentText  string   `json:"sentiment_text,omitempty"`
	RawReviews     []string `json:"raw_reviews,omitempty"`

	SourceURL          string `json:"source_url,omitempty"`
	SentimentSourceURL string `json:"sentiment_source_url,omitempty"`

	Insight string   `json:"insight,omitempty"`
	Mode    ItemMode `json:"mode"`
}

// DisplayName returns the item name, or UnknownProductName when empty.
func (it *RawScrapedItem) DisplayName() string {
	if it.Name == "" {
		return UnknownProductName
	}
	return it.Name
}

// CurrencyOrDefault returns the item currency, defaulting to USD.
func (it *RawScrapedItem) CurrencyOrDefault() string {
	if it.Currency == "" {
		return DefaultCurrency
	}
	return it.Currency
}

// ProductInput is the body of POST /api/products on the backend.
type ProductInput struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	Competitor string `json:"competitor"`
	Insight    string `json:"insight"`
}

// ProductInputFrom builds the backend product record for an item.
func ProductInputFrom(it RawScrapedItem) ProductInput {
	return ProductInput{
		Name:       it.DisplayName(),
		Category:   it.Category,
		Competitor: it.Competitor,
		Insight:    it.Insight,
	}
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
