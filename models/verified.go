package models

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"
)

// ValidateSourceURL checks that raw is a non-empty absolute http(s) URL
// with a host. Every verified record is gated on it.
func ValidateSourceURL(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return NewValidationError("source_url is required for verified grounding")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return NewValidationError(fmt.Sprintf("source_url %q is not a valid URL: %v", raw, err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return NewValidationError(fmt.Sprintf("source_url %q must use http or https", raw))
	}
	if u.Host == "" {
		return NewValidationError(fmt.Sprintf("source_url %q has no host", raw))
	}
	return nil
}

// VerifiedPrice is a price that passed grounding. The zero value is not
// valid; use NewVerifiedPrice.
type VerifiedPrice struct {
	productID int
	price     float64
	currency  string
	sourceURL string
}

// NewVerifiedPrice constructs a VerifiedPrice, failing with a
// VALIDATION_FAILED error when the price is not positive or the source URL
// is missing or malformed. An empty currency defaults to USD.
func NewVerifiedPrice(productID int, price float64, currency, sourceURL string) (VerifiedPrice, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return VerifiedPrice{}, NewValidationError(fmt.Sprintf("price must be positive, got %v", price))
	}
	if err := ValidateSourceURL(sourceURL); err != nil {
		return VerifiedPrice{}, err
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return VerifiedPrice{
		productID: productID,
		price:     price,
		currency:  currency,
		sourceURL: strings.TrimSpace(sourceURL),
	}, nil
}

func (p VerifiedPrice) ProductID() int    { return p.productID }
func (p VerifiedPrice) Price() float64    { return p.price }
func (p VerifiedPrice) Currency() string  { return p.currency }
func (p VerifiedPrice) SourceURL() string { return p.sourceURL }

// Valid reports whether p was produced by NewVerifiedPrice.
func (p VerifiedPrice) Valid() bool {
	return p.price > 0 && ValidateSourceURL(p.sourceURL) == nil
}

type verifiedPriceJSON struct {
	ProductID int     `json:"product_id"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	SourceURL string  `json:"source_url"`
}

// MarshalJSON renders the backend wire format.
func (p VerifiedPrice) MarshalJSON() ([]byte, error) {
	return json.Marshal(verifiedPriceJSON{
		ProductID: p.productID,
		Price:     p.price,
		Currency:  p.currency,
		SourceURL: p.sourceURL,
	})
}

// UnmarshalJSON decodes the wire format and re-applies the constructor checks.
func (p *VerifiedPrice) UnmarshalJSON(data []byte) error {
	var w verifiedPriceJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	v, err := NewVerifiedPrice(w.ProductID, w.Price, w.Currency, w.SourceURL)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// VerifiedSentiment is a sentiment score that passed grounding. The zero
// value is not valid; use NewVerifiedSentiment.
type VerifiedSentiment struct {
	productID     int
	score         float64
	sentimentText string
	rawReviews    []string
	sourceURL     string
}

// NewVerifiedSentiment constructs a VerifiedSentiment, failing with a
// VALIDATION_FAILED error when the score is outside [-1, 1], more than
// MaxReviews raw reviews are supplied, or the source URL is invalid.
func NewVerifiedSentiment(productID int, score float64, sentimentText string, rawReviews []string, sourceURL string) (VerifiedSentiment, error) {
	if math.IsNaN(score) || score < -1.0 || score > 1.0 {
		return VerifiedSentiment{}, NewValidationError(fmt.Sprintf("sentiment_score must be within [-1.0, 1.0], got %v", score))
	}
	if len(rawReviews) > MaxReviews {
		return VerifiedSentiment{}, NewValidationError(fmt.Sprintf("at most %d raw reviews allowed, got %d", MaxReviews, len(rawReviews)))
	}
	if err := ValidateSourceURL(sourceURL); err != nil {
		return VerifiedSentiment{}, err
	}
	var reviews []string
	if len(rawReviews) > 0 {
		reviews = append([]string(nil), rawReviews...)
	}
	return VerifiedSentiment{
		productID:     productID,
		score:         score,
		sentimentText: sentimentText,
		rawReviews:    reviews,
		sourceURL:     strings.TrimSpace(sourceURL),
	}, nil
}

func (s VerifiedSentiment) ProductID() int        { return s.productID }
func (s VerifiedSentiment) Score() float64        { return s.score }
func (s VerifiedSentiment) SentimentText() string { return s.sentimentText }
func (s VerifiedSentiment) SourceURL() string     { return s.sourceURL }

// RawReviews returns a copy of the attached review texts.
func (s VerifiedSentiment) RawReviews() []string {
	return append([]string(nil), s.rawReviews...)
}

// Valid reports whether s was produced by NewVerifiedSentiment.
func (s VerifiedSentiment) Valid() bool {
	return ValidateSourceURL(s.sourceURL) == nil && s.score >= -1.0 && s.score <= 1.0
}

type verifiedSentimentJSON struct {
	ProductID      int      `json:"product_id"`
	SentimentScore float64  `json:"sentiment_score"`
	SentimentText  *string  `json:"sentiment_text"`
	RawReviews     []string `json:"raw_reviews"`
	SourceURL      string   `json:"source_url"`
}

// MarshalJSON renders the backend wire format. Empty optional fields are
// sent as null.
func (s VerifiedSentiment) MarshalJSON() ([]byte, error) {
	w := verifiedSentimentJSON{
		ProductID:      s.productID,
		SentimentScore: s.score,
		RawReviews:     s.rawReviews,
		SourceURL:      s.sourceURL,
	}
	if s.sentimentText != "" {
		text := s.sentimentText
		w.SentimentText = &text
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire format and re-applies the constructor checks.
func (s *VerifiedSentiment) UnmarshalJSON(data []byte) error {
	var w verifiedSentimentJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	var text string
	if w.SentimentText != nil {
		text = *w.SentimentText
	}
	v, err := NewVerifiedSentiment(w.ProductID, w.SentimentScore, text, w.RawReviews, w.SourceURL)
	if err != nil {
		return err
	}
	*s = v
	return nil
}
