package scraper

import (
	"context"
	"time"

	"github.com/use-agent/velocity/engine"
	"github.com/use-agent/velocity/extractor"
	"github.com/use-agent/velocity/models"
)

// Fetcher visits pages through an engine without owning a browser. It is
// used when the browser is disabled or failed to launch.
type Fetcher struct {
	engine     engine.Engine
	userAgents []string
	timeout    time.Duration
}

// NewFetcher returns a Fetcher over e. timeout applies when a visit does
// not set one.
func NewFetcher(e engine.Engine, userAgents []string, timeout time.Duration) *Fetcher {
	return &Fetcher{engine: e, userAgents: userAgents, timeout: timeout}
}

// Visit fetches rawURL and calls fn with a parsed snapshot of the page.
func (f *Fetcher) Visit(ctx context.Context, rawURL string, opts VisitOptions, fn func(extractor.Page) error) error {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = f.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := f.engine.Fetch(ctx, &engine.FetchRequest{
		URL:            rawURL,
		UserAgent:      pickUserAgent(f.userAgents),
		AcceptLanguage: defaultAcceptLanguage,
		Timeout:        timeout,
		Stealth:        opts.Stealth,
	})
	if err != nil {
		return categorizeError(err, "page fetch failed")
	}

	doc, err := extractor.NewDocument(res.HTML, rawURL)
	if err != nil {
		return models.NewExtractionError("failed to parse page", err)
	}
	return fn(doc)
}
