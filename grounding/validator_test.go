package grounding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/velocity/models"
)

type fakeBackend struct {
	nextID     int
	products   []models.ProductInput
	prices     []models.VerifiedPrice
	sentiments []models.VerifiedSentiment

	failProduct  map[string]bool
	panicProduct map[string]bool
	failPrices   bool
	ctxErrs      []error
}

func (f *fakeBackend) CreateProduct(ctx context.Context, p models.ProductInput) (int, error) {
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	if f.panicProduct[p.Name] {
		panic("backend exploded")
	}
	if f.failProduct[p.Name] {
		return 0, models.NewPersistenceError("POST /api/products returned 500", nil)
	}
	f.nextID++
	f.products = append(f.products, p)
	return f.nextID, nil
}

func (f *fakeBackend) SavePrice(_ context.Context, p models.VerifiedPrice) error {
	if f.failPrices {
		return models.NewPersistenceError("POST /api/products/1/prices returned 503", nil)
	}
	f.prices = append(f.prices, p)
	return nil
}

func (f *fakeBackend) SaveSentiment(_ context.Context, s models.VerifiedSentiment) error {
	f.sentiments = append(f.sentiments, s)
	return nil
}

type fakeSink struct {
	entries []models.LogEntry
	err     error
}

func (s *fakeSink) SendLog(_ context.Context, e models.LogEntry) error {
	s.entries = append(s.entries, e)
	return s.err
}

func priced(name, sourceURL string, price float64) models.RawScrapedItem {
	return models.RawScrapedItem{Name: name, Price: models.Float(price), SourceURL: sourceURL}
}

func TestProcess_Isolation(t *testing.T) {
	items := []models.RawScrapedItem{
		priced("A", "https://shop.example.com/a", 10),
		priced("B", "", 20),
		priced("C", "https://shop.example.com/c", 30),
		priced("D", "", 40),
		priced("E", "https://shop.example.com/e", 50),
	}
	be := &fakeBackend{}
	v := NewValidator(be, &fakeSink{})

	var res *models.GroundingResult
	require.NotPanics(t, func() { res = v.Process(context.Background(), items) })

	assert.Equal(t, 5, res.ProductsCreated)
	assert.Equal(t, 3, res.PricesAdded)
	assert.Equal(t, 0, res.SentimentsAdded)
	require.Len(t, res.Errors, 2)
	assert.Contains(t, res.Errors[0], "B")
	assert.Contains(t, res.Errors[1], "D")

	for _, p := range be.prices {
		assert.NoError(t, models.ValidateSourceURL(p.SourceURL()))
	}
}

func TestProcess_ThoughtOrder(t *testing.T) {
	item := models.RawScrapedItem{
		Name:               "SmartBand Health",
		Price:              models.Float(79.99),
		SourceURL:          "https://example.com/products/smartband-health",
		SentimentScore:     models.Float(0.88),
		SentimentText:      "Accurate tracking",
		SentimentSourceURL: "https://example.com/reviews/smartband-health",
	}
	sink := &fakeSink{}
	v := NewValidator(&fakeBackend{}, sink)
	res := v.Process(context.Background(), []models.RawScrapedItem{item})

	assert.True(t, res.OK())
	assert.Equal(t, 1, res.PricesAdded)
	assert.Equal(t, 1, res.SentimentsAdded)

	thoughts := v.Thoughts()
	var actions []string
	for _, th := range thoughts {
		actions = append(actions, th.Action)
	}
	assert.Equal(t, []string{
		models.ActionDataValidation,
		models.ActionProductCreation,
		models.ActionPriceVerification,
		models.ActionSentimentVerification,
		models.ActionScrapingComplete,
	}, actions)

	last := thoughts[len(thoughts)-1]
	assert.Equal(t, models.StatusSuccess, last.Status)
	assert.Equal(t, "Created 1 products, 1 prices, 1 sentiments", last.Thought)

	require.Len(t, sink.entries, len(thoughts))
	for i, th := range thoughts {
		assert.Equal(t, th.Entry(), sink.entries[i])
	}
}

func TestProcess_ProductCreationFailureStopsItemOnly(t *testing.T) {
	be := &fakeBackend{failProduct: map[string]bool{"Broken": true}}
	v := NewValidator(be, nil)
	res := v.Process(context.Background(), []models.RawScrapedItem{
		priced("Broken", "https://shop.example.com/broken", 5),
		priced("Fine", "https://shop.example.com/fine", 6),
	})

	assert.Equal(t, 1, res.ProductsCreated)
	assert.Equal(t, 1, res.PricesAdded)
	assert.Equal(t, []string{"Failed to create product: Broken"}, res.Errors)

	summary := v.Thoughts()[len(v.Thoughts())-1]
	assert.Equal(t, models.ActionScrapingComplete, summary.Action)
	assert.Equal(t, models.StatusError, summary.Status)
}

func TestProcess_PriceAndSentimentIndependent(t *testing.T) {
	be := &fakeBackend{failPrices: true}
	v := NewValidator(be, nil)
	res := v.Process(context.Background(), []models.RawScrapedItem{{
		Name:               "X",
		Price:              models.Float(9.5),
		SourceURL:          "https://shop.example.com/x",
		SentimentScore:     models.Float(-0.25),
		SentimentSourceURL: "https://shop.example.com/x",
	}})

	assert.Equal(t, 0, res.PricesAdded)
	assert.Equal(t, 1, res.SentimentsAdded)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Price validation failed")
}

func TestProcess_InvariantViolations(t *testing.T) {
	tests := []struct {
		name string
		item models.RawScrapedItem
		want string
	}{
		{
			name: "non-positive price",
			item: priced("Free", "https://shop.example.com/free", 0),
			want: "Price validation failed",
		},
		{
			name: "relative source url",
			item: priced("Rel", "/products/rel", 3),
			want: "Price validation failed",
		},
		{
			name: "score out of range",
			item: models.RawScrapedItem{Name: "S", SentimentScore: models.Float(1.5), SentimentSourceURL: "https://a.example/r"},
			want: "Sentiment validation failed",
		},
		{
			name: "sentiment without url",
			item: models.RawScrapedItem{Name: "S", SentimentScore: models.Float(0.2)},
			want: "Sentiment validation skipped",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be := &fakeBackend{}
			res := NewValidator(be, nil).Process(context.Background(), []models.RawScrapedItem{tt.item})
			require.Len(t, res.Errors, 1)
			assert.Contains(t, res.Errors[0], tt.want)
			assert.Empty(t, be.prices)
			assert.Empty(t, be.sentiments)
		})
	}
}

func TestProcess_AbsentValuesAreNotErrors(t *testing.T) {
	res := NewValidator(&fakeBackend{}, nil).Process(context.Background(),
		[]models.RawScrapedItem{{Name: "Bare"}})
	assert.Equal(t, 1, res.ProductsCreated)
	assert.Empty(t, res.Errors)
}

func TestProcess_PanicIsRecorded(t *testing.T) {
	be := &fakeBackend{panicProduct: map[string]bool{"Boom": true}}
	v := NewValidator(be, nil)

	var res *models.GroundingResult
	require.NotPanics(t, func() {
		res = v.Process(context.Background(), []models.RawScrapedItem{
			priced("Boom", "https://shop.example.com/boom", 1),
			priced("After", "https://shop.example.com/after", 2),
		})
	})
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "backend exploded")
	assert.Equal(t, 1, res.ProductsCreated)

	var sawItemError bool
	for _, th := range v.Thoughts() {
		if th.Action == models.ActionItemProcessing && th.Status == models.StatusError {
			sawItemError = true
		}
	}
	assert.True(t, sawItemError)
}

func TestProcess_FlushFailureSwallowed(t *testing.T) {
	sink := &fakeSink{err: errors.New("connection refused")}
	v := NewValidator(&fakeBackend{}, sink)
	res := v.Process(context.Background(), []models.RawScrapedItem{priced("A", "https://a.example/p", 1)})

	assert.True(t, res.OK())
	assert.Equal(t, 1, res.PricesAdded)
	assert.Len(t, sink.entries, len(v.Thoughts()), "every entry is attempted despite failures")
}

func TestProcess_RunsToCompletionAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	be := &fakeBackend{}
	res := NewValidator(be, nil).Process(ctx, []models.RawScrapedItem{
		priced("A", "https://a.example/p", 1),
		priced("B", "https://b.example/p", 2),
	})
	assert.Equal(t, 2, res.ProductsCreated)
	for _, err := range be.ctxErrs {
		assert.NoError(t, err)
	}
}
