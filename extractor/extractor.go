package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/use-agent/velocity/models"
)

// MinReviewLength is the shortest review text, in characters, that is kept.
const MinReviewLength = 20

// Extractor runs ordered strategy lists against a page. Each field takes
// the first usable result; strategy errors are treated as "no match".
type Extractor struct {
	Name     []Strategy
	Price    []Strategy
	Reviews  []Strategy
	Category []Strategy

	// ReviewLimit caps the number of reviews returned. Zero means MaxReviews.
	ReviewLimit int
}

// New returns an Extractor with the default strategy lists.
func New() *Extractor {
	return &Extractor{
		Name:     NameStrategies(),
		Price:    PriceStrategies(),
		Reviews:  ReviewStrategies(),
		Category: CategoryStrategies(),
	}
}

// Result holds every field extracted from one page.
type Result struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Price    float64  `json:"price"`
	Currency string   `json:"currency"`
	Reviews  []string `json:"reviews"`

	// PriceSource names the strategy that produced the price.
	PriceSource string `json:"price_source"`
}

// Extract runs all field extractions. It fails with EXTRACTION_FAILED when
// no price can be found, and with TIMEOUT when ctx expires.
func (e *Extractor) Extract(ctx context.Context, page Page) (*Result, error) {
	res := &Result{}
	res.Name = e.ExtractName(ctx, page)

	price, currency, source, err := e.ExtractPrice(ctx, page)
	if err != nil {
		return nil, err
	}
	res.Price, res.Currency, res.PriceSource = price, currency, source

	res.Reviews = e.ExtractReviews(ctx, page)
	res.Category = e.ExtractCategory(ctx, page, res.Name)

	if err := ctx.Err(); err != nil {
		return nil, contextError(err)
	}
	return res, nil
}

// ExtractName returns the first non-empty name candidate, trimmed and capped
// at models.MaxNameLength characters. It never fails; with no match it
// returns models.UnknownProductName.
func (e *Extractor) ExtractName(ctx context.Context, page Page) string {
	for _, s := range e.Name {
		first, ok := firstCandidate(ctx, page, s)
		if !ok {
			continue
		}
		if name := strings.TrimSpace(first); name != "" {
			return models.Truncate(name, models.MaxNameLength)
		}
	}
	return models.UnknownProductName
}

// ExtractPrice returns the first positive price produced by a strategy,
// falling back to scanning the page text for a currency-prefixed amount.
// The currency is detected from the matched text and is "" when unknown.
func (e *Extractor) ExtractPrice(ctx context.Context, page Page) (float64, string, string, error) {
	for _, s := range e.Price {
		first, ok := firstCandidate(ctx, page, s)
		if !ok {
			continue
		}
		if v, ok := ParsePrice(first); ok {
			return v, DetectCurrency(first), s.Name(), nil
		}
	}

	if err := ctx.Err(); err != nil {
		return 0, "", "", contextError(err)
	}

	raw, err := page.HTML(ctx)
	if err != nil {
		return 0, "", "", models.NewExtractionError("could not extract price from page", err)
	}
	for _, node := range TextNodes(raw) {
		if v, frag, ok := ScanPrice(node); ok {
			return v, DetectCurrency(frag), "page-text", nil
		}
	}

	return 0, "", "", models.NewExtractionError(
		fmt.Sprintf("could not extract price from %s", page.URL()), nil)
}

// ExtractReviews returns up to ReviewLimit review texts from the first
// strategy that yields any, in document order. Texts shorter than
// MinReviewLength are dropped and the rest are truncated to
// models.MaxReviewLength. Identical reviews are kept. The result is never nil.
func (e *Extractor) ExtractReviews(ctx context.Context, page Page) []string {
	limit := e.ReviewLimit
	if limit <= 0 || limit > models.MaxReviews {
		limit = models.MaxReviews
	}

	for _, s := range e.Reviews {
		candidates, err := s.Candidates(ctx, page)
		if err != nil {
			slog.Debug("extractor: review strategy failed", "strategy", s.Name(), "error", err)
			continue
		}

		reviews := make([]string, 0, limit)
		for _, c := range candidates {
			text := strings.TrimSpace(c)
			if utf8.RuneCountInString(text) < MinReviewLength {
				continue
			}
			text = models.Truncate(text, models.MaxReviewLength)
			reviews = append(reviews, text)
			if len(reviews) >= limit {
				break
			}
		}
		if len(reviews) > 0 {
			return reviews
		}
	}
	return []string{}
}

// ExtractCategory returns the deepest breadcrumb that is not the product
// name itself, or models.UnknownCategory.
func (e *Extractor) ExtractCategory(ctx context.Context, page Page, name string) string {
	for _, s := range e.Category {
		crumbs, err := s.Candidates(ctx, page)
		if err != nil {
			continue
		}
		for i := len(crumbs) - 1; i >= 0; i-- {
			crumb := strings.Trim(crumbs[i], " >/›»|")
			if crumb == "" || strings.EqualFold(crumb, name) {
				continue
			}
			return models.Truncate(crumb, models.MaxNameLength)
		}
	}
	return models.UnknownCategory
}

func firstCandidate(ctx context.Context, page Page, s Strategy) (string, bool) {
	candidates, err := s.Candidates(ctx, page)
	if err != nil {
		slog.Debug("extractor: strategy failed", "strategy", s.Name(), "error", err)
		return "", false
	}
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[0], true
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewPipelineError(models.ErrCodeTimeout, "extraction timed out", err)
	}
	return models.NewPipelineError(models.ErrCodeNavigation, "extraction cancelled", err)
}
