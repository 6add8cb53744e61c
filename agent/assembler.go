// Package agent turns scrape targets into candidate records and runs them
// through grounding.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/use-agent/velocity/cache"
	"github.com/use-agent/velocity/catalog"
	"github.com/use-agent/velocity/extractor"
	"github.com/use-agent/velocity/models"
	"github.com/use-agent/velocity/scraper"
	"github.com/use-agent/velocity/sentiment"
)

// Visitor loads a page and hands it to fn. *scraper.Scraper and
// *scraper.Fetcher implement it.
type Visitor interface {
	Visit(ctx context.Context, rawURL string, opts scraper.VisitOptions, fn func(extractor.Page) error) error
}

// Assembler builds RawScrapedItems for one target at a time: live
// extraction for URLs, catalog samples for symbolic names and as the
// fallback when a live load fails.
type Assembler struct {
	visitor   Visitor
	extractor *extractor.Extractor
	generator *catalog.Generator
	cache     cache.Store
	logger    *slog.Logger
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithVisitor enables live mode.
func WithVisitor(v Visitor) AssemblerOption {
	return func(a *Assembler) { a.visitor = v }
}

// WithCache reuses live extractions across runs.
func WithCache(c cache.Store) AssemblerOption {
	return func(a *Assembler) { a.cache = c }
}

// WithExtractor replaces the default strategy lists.
func WithExtractor(e *extractor.Extractor) AssemblerOption {
	return func(a *Assembler) { a.extractor = e }
}

// WithAssemblerLogger sets the logger.
func WithAssemblerLogger(l *slog.Logger) AssemblerOption {
	return func(a *Assembler) { a.logger = l }
}

// NewAssembler returns an Assembler sampling demo records from gen.
// Without WithVisitor every target is served from the catalog.
func NewAssembler(gen *catalog.Generator, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		extractor: extractor.New(),
		generator: gen,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// IsLiveTarget reports whether target is an http(s) URL rather than a
// symbolic name.
func IsLiveTarget(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

// Collect returns the candidate records for target. Live targets yield
// one record; when the page cannot be loaded or no price is found the
// target falls back to a demo sample.
func (a *Assembler) Collect(ctx context.Context, target string, opts scraper.VisitOptions) []models.RawScrapedItem {
	target = strings.TrimSpace(target)
	if IsLiveTarget(target) {
		item, err := a.Live(ctx, target, opts)
		if err == nil {
			return []models.RawScrapedItem{*item}
		}
		a.logger.Warn("agent: live extraction failed, falling back to demo data",
			"target", target,
			"code", models.ErrorCode(err),
			"error", err,
		)
	}
	items := a.generator.Sample(target)
	a.logger.Debug("agent: demo sample", "target", target, "items", len(items))
	return items
}

// Live loads pageURL and extracts one record from it.
func (a *Assembler) Live(ctx context.Context, pageURL string, opts scraper.VisitOptions) (*models.RawScrapedItem, error) {
	if err := models.ValidateSourceURL(pageURL); err != nil {
		return nil, err
	}

	if a.cache != nil {
		if res, ok := a.cache.Get(ctx, pageURL); ok {
			a.logger.Debug("agent: extraction cache hit", "url", pageURL)
			item := LiveItem(pageURL, res)
			return &item, nil
		}
	}

	if a.visitor == nil {
		return nil, models.NewPipelineError(models.ErrCodeNavigation, "no page loader configured", nil)
	}

	var res *extractor.Result
	err := a.visitor.Visit(ctx, pageURL, opts, func(p extractor.Page) error {
		var extractErr error
		res, extractErr = a.extractor.Extract(ctx, p)
		return extractErr
	})
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		a.cache.Set(ctx, pageURL, res)
	}
	a.logger.Info("agent: live extraction",
		"url", pageURL,
		"name", res.Name,
		"price", res.Price,
		"currency", res.Currency,
		"reviews", len(res.Reviews),
		"price_source", res.PriceSource,
	)

	item := LiveItem(pageURL, res)
	return &item, nil
}

// LiveItem builds the candidate record for an extraction from pageURL.
// Both source URLs are the page itself; the competitor is its host.
func LiveItem(pageURL string, r *extractor.Result) models.RawScrapedItem {
	domain := pageURL
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		domain = u.Host
	}

	var text string
	if len(r.Reviews) > 0 {
		text = models.Truncate(r.Reviews[0], models.MaxSentimentTextLength)
	}
	reviews := r.Reviews
	if len(reviews) > models.MaxReviews {
		reviews = reviews[:models.MaxReviews]
	}

	return models.RawScrapedItem{
		Name:               r.Name,
		Category:           r.Category,
		Competitor:         domain,
		Price:              models.Float(r.Price),
		Currency:           r.Currency,
		SentimentScore:     models.Float(sentiment.Aggregate(reviews)),
		SentimentText:      text,
		RawReviews:         append([]string(nil), reviews...),
		SourceURL:          pageURL,
		SentimentSourceURL: pageURL,
		Insight:            fmt.Sprintf("Live data extracted from %s", domain),
		Mode:               models.ModeLive,
	}
}
