package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/use-agent/velocity/backend"
	"github.com/use-agent/velocity/grounding"
	"github.com/use-agent/velocity/models"
	"github.com/use-agent/velocity/scraper"
	"github.com/use-agent/velocity/webhook"
)

// Store is the persistence side of a run: grounding writes plus the
// thought log sink. *backend.Client implements it.
type Store interface {
	grounding.Backend
	grounding.LogSink
}

// RunnerConfig tunes a Runner.
type RunnerConfig struct {
	// Concurrency bounds simultaneous target collections. Default 1.
	Concurrency int

	// FlushTimeout bounds the thought log flush after each batch.
	FlushTimeout time.Duration

	// WebhookURL receives scrape.completed unless a request overrides it.
	WebhookURL string
}

// Runner executes scrape requests end to end.
type Runner struct {
	assembler *Assembler
	store     Store
	notifier  *webhook.Notifier
	cfg       RunnerConfig
	logger    *slog.Logger
}

// NewRunner returns a Runner. notifier may be nil to disable webhooks.
func NewRunner(asm *Assembler, store Store, notifier *webhook.Notifier, cfg RunnerConfig) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = grounding.DefaultFlushTimeout
	}
	return &Runner{
		assembler: asm,
		store:     store,
		notifier:  notifier,
		cfg:       cfg,
		logger:    slog.Default(),
	}
}

// CompletedEvent is the data of a scrape.completed webhook.
type CompletedEvent struct {
	Success bool                     `json:"success"`
	Message string                   `json:"message"`
	Targets []string                 `json:"targets"`
	DryRun  bool                     `json:"dry_run"`
	Results []models.GroundingResult `json:"results"`
	Errors  []string                 `json:"errors"`
	Timing  models.TimingInfo        `json:"timing"`
}

// Run collects every target, grounds the records in one sequential batch
// and reports the outcome. Collection runs concurrently and keeps target
// order. Once grounding starts it runs to completion even if ctx is
// cancelled.
func (r *Runner) Run(ctx context.Context, req *models.ScrapeRequest) *models.ScrapeResponse {
	start := time.Now()
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID)
	targets := req.TargetsOrDefault()

	logger.Info("agent: run started", "targets", targets, "dry_run", req.DryRun)

	items, errs := r.collect(ctx, targets, scraper.VisitOptions{
		Timeout: time.Duration(req.Timeout) * time.Second,
		Stealth: req.Stealth,
	})
	collectMs := time.Since(start).Milliseconds()

	var be grounding.Backend = r.store
	var sink grounding.LogSink = r.store
	if req.DryRun {
		be, sink = &backend.Discard{}, nil
	}

	groundStart := time.Now()
	v := grounding.NewValidator(be, sink,
		grounding.WithLogger(logger),
		grounding.WithFlushTimeout(r.cfg.FlushTimeout),
	)
	res := v.Process(ctx, items)

	errs = append(errs, res.Errors...)
	resp := &models.ScrapeResponse{
		Success:  true,
		Message:  fmt.Sprintf("Scraped and validated %d products", res.ProductsCreated),
		RunID:    runID,
		Results:  []models.GroundingResult{*res},
		Items:    items,
		Thoughts: v.Thoughts(),
		Errors:   errs,
		Timing: models.TimingInfo{
			TotalMs:     time.Since(start).Milliseconds(),
			CollectMs:   collectMs,
			GroundingMs: time.Since(groundStart).Milliseconds(),
		},
	}

	logger.Info("agent: run complete",
		"items", len(items),
		"products", res.ProductsCreated,
		"prices", res.PricesAdded,
		"sentiments", res.SentimentsAdded,
		"errors", len(errs),
		"total_ms", resp.Timing.TotalMs,
	)

	r.notify(req, targets, resp)
	return resp
}

// collect gathers records for each target with bounded fan-out. The
// returned items keep target order. A target that panics contributes an
// error and no items.
func (r *Runner) collect(ctx context.Context, targets []string, opts scraper.VisitOptions) ([]models.RawScrapedItem, []string) {
	perTarget := make([][]models.RawScrapedItem, len(targets))
	failures := make([]string, len(targets))

	var g errgroup.Group
	g.SetLimit(r.cfg.Concurrency)
	for i, target := range targets {
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					failures[i] = fmt.Sprintf("Failed to scrape %s: %v", target, p)
					r.logger.Error("agent: target collection panicked", "target", target, "panic", p)
				}
			}()
			perTarget[i] = r.assembler.Collect(ctx, target, opts)
			return nil
		})
	}
	_ = g.Wait()

	items := make([]models.RawScrapedItem, 0, len(targets)*3)
	errs := []string{}
	for i := range targets {
		items = append(items, perTarget[i]...)
		if failures[i] != "" {
			errs = append(errs, failures[i])
		}
	}
	return items, errs
}

func (r *Runner) notify(req *models.ScrapeRequest, targets []string, resp *models.ScrapeResponse) {
	url := req.WebhookURL
	if url == "" {
		url = r.cfg.WebhookURL
	}
	if url == "" || r.notifier == nil {
		return
	}
	r.notifier.DeliverAsync(url, webhook.NewEvent(webhook.EventScrapeCompleted, resp.RunID, CompletedEvent{
		Success: resp.Success,
		Message: resp.Message,
		Targets: targets,
		DryRun:  req.DryRun,
		Results: resp.Results,
		Errors:  resp.Errors,
		Timing:  resp.Timing,
	}))
}
