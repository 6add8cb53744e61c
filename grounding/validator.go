// Package grounding turns candidate records into verified backend writes.
// A fact is persisted only together with the source URL it was read from.
package grounding

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/use-agent/velocity/models"
)

// DefaultFlushTimeout bounds the whole thought log flush.
const DefaultFlushTimeout = 10 * time.Second

// Backend persists products and verified facts.
type Backend interface {
	CreateProduct(ctx context.Context, p models.ProductInput) (int, error)
	SavePrice(ctx context.Context, p models.VerifiedPrice) error
	SaveSentiment(ctx context.Context, s models.VerifiedSentiment) error
}

// Validator grounds one batch of candidates. Items are processed one at a
// time so the thought log reads in causal order. A Validator and its log
// belong to a single batch; create a new one per batch.
type Validator struct {
	backend      Backend
	sink         LogSink
	flushTimeout time.Duration
	logger       *slog.Logger
	log          *ThoughtLog
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) { v.logger = l }
}

// WithFlushTimeout overrides DefaultFlushTimeout.
func WithFlushTimeout(d time.Duration) Option {
	return func(v *Validator) {
		if d > 0 {
			v.flushTimeout = d
		}
	}
}

// NewValidator returns a Validator writing to backend and flushing its log
// to sink. sink may be nil to keep the log local.
func NewValidator(backend Backend, sink LogSink, opts ...Option) *Validator {
	v := &Validator{
		backend:      backend,
		sink:         sink,
		flushTimeout: DefaultFlushTimeout,
		logger:       slog.Default(),
	}
	for _, o := range opts {
		o(v)
	}
	v.log = NewThoughtLog(v.logger)
	return v
}

// Process grounds items in order and returns the batch result. It never
// fails: item-level problems are recorded in the result's Errors and in the
// thought log. Cancelling ctx does not interrupt a started batch.
func (v *Validator) Process(ctx context.Context, items []models.RawScrapedItem) *models.GroundingResult {
	ctx = context.WithoutCancel(ctx)
	res := models.NewGroundingResult()

	for i := range items {
		v.processItem(ctx, &items[i], res)
	}

	status := models.StatusSuccess
	if !res.OK() {
		status = models.StatusError
	}
	v.log.Record(res.Summary(), models.ActionScrapingComplete, status)

	v.logger.Info("grounding: batch complete",
		"items", len(items),
		"products", res.ProductsCreated,
		"prices", res.PricesAdded,
		"sentiments", res.SentimentsAdded,
		"errors", len(res.Errors),
	)

	v.log.Flush(ctx, v.sink, v.flushTimeout)
	return res
}

// Thoughts returns the thought log, including the completion summary once
// Process has returned.
func (v *Validator) Thoughts() []models.AgentThought {
	return v.log.Entries()
}

func (v *Validator) processItem(ctx context.Context, it *models.RawScrapedItem, res *models.GroundingResult) {
	defer func() {
		if r := recover(); r != nil {
			v.fail(res, models.ActionItemProcessing, fmt.Sprintf("Error processing item: %v", r))
			v.logger.Error("grounding: recovered from panic",
				"item", it.Name,
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()

	name := it.DisplayName()
	v.log.Record(fmt.Sprintf("Processing product: %s", name), models.ActionDataValidation, models.StatusRunning)

	id, err := v.backend.CreateProduct(ctx, models.ProductInputFrom(*it))
	if err != nil {
		v.fail(res, models.ActionProductCreation, fmt.Sprintf("Failed to create product: %s", name))
		v.logger.Warn("grounding: product creation failed", "item", name, "error", err)
		return
	}
	res.ProductsCreated++
	v.log.Record(fmt.Sprintf("Created product %s (id %d)", name, id), models.ActionProductCreation, models.StatusSuccess)

	v.groundPrice(ctx, id, it, res)
	v.groundSentiment(ctx, id, it, res)
}

func (v *Validator) groundPrice(ctx context.Context, productID int, it *models.RawScrapedItem, res *models.GroundingResult) {
	name := it.DisplayName()
	if it.Price == nil {
		v.log.Record(fmt.Sprintf("No price extracted for %s, skipping", name),
			models.ActionPriceVerification, models.StatusRunning)
		return
	}
	if strings.TrimSpace(it.SourceURL) == "" {
		v.fail(res, models.ActionPriceValidation,
			fmt.Sprintf("Price validation skipped for %s: price has no source_url", name))
		return
	}

	vp, err := models.NewVerifiedPrice(productID, *it.Price, it.CurrencyOrDefault(), it.SourceURL)
	if err == nil {
		err = v.backend.SavePrice(ctx, vp)
	}
	if err != nil {
		v.fail(res, models.ActionPriceValidation, fmt.Sprintf("Price validation failed: %v", err))
		return
	}

	res.PricesAdded++
	v.log.Record(fmt.Sprintf("[OK] Verified price: %.2f %s from %s", vp.Price(), vp.Currency(), vp.SourceURL()),
		models.ActionPriceVerification, models.StatusSuccess)
}

func (v *Validator) groundSentiment(ctx context.Context, productID int, it *models.RawScrapedItem, res *models.GroundingResult) {
	name := it.DisplayName()
	if it.SentimentScore == nil {
		v.log.Record(fmt.Sprintf("No sentiment extracted for %s, skipping", name),
			models.ActionSentimentVerification, models.StatusRunning)
		return
	}
	if strings.TrimSpace(it.SentimentSourceURL) == "" {
		v.fail(res, models.ActionSentimentValidation,
			fmt.Sprintf("Sentiment validation skipped for %s: score has no sentiment_source_url", name))
		return
	}

	vs, err := models.NewVerifiedSentiment(productID, *it.SentimentScore, it.SentimentText, it.RawReviews, it.SentimentSourceURL)
	if err == nil {
		err = v.backend.SaveSentiment(ctx, vs)
	}
	if err != nil {
		v.fail(res, models.ActionSentimentValidation, fmt.Sprintf("Sentiment validation failed: %v", err))
		return
	}

	res.SentimentsAdded++
	v.log.Record(fmt.Sprintf("[OK] Verified sentiment: %.2f from %s", vs.Score(), vs.SourceURL()),
		models.ActionSentimentVerification, models.StatusSuccess)
}

// fail records msg as both a result error and an error thought.
func (v *Validator) fail(res *models.GroundingResult, action, msg string) {
	res.Errors = append(res.Errors, msg)
	v.log.Record(msg, action, models.StatusError)
}
