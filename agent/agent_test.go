package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/use-agent/velocity/extractor"
	"github.com/use-agent/velocity/models"
	"github.com/use-agent/velocity/scraper"
)

func productHTML(name string, price string, reviews ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<html><body><h1>%s</h1>", name)
	if price != "" {
		fmt.Fprintf(&b, `<span class="price">%s</span>`, price)
	}
	for _, r := range reviews {
		fmt.Fprintf(&b, `<p class="review-text">%s</p>`, r)
	}
	b.WriteString("</body></html>")
	return b.String()
}

// fakeVisitor serves pages from memory.
type fakeVisitor struct {
	pages map[string]string
	err   error
	delay func(url string) time.Duration
	calls atomic.Int32
}

func (f *fakeVisitor) Visit(ctx context.Context, rawURL string, _ scraper.VisitOptions, fn func(extractor.Page) error) error {
	f.calls.Add(1)
	if f.delay != nil {
		time.Sleep(f.delay(rawURL))
	}
	if f.err != nil {
		return f.err
	}
	html, ok := f.pages[rawURL]
	if !ok {
		return models.NewPipelineError(models.ErrCodeNavigation, "404", errors.New("not found"))
	}
	doc, err := extractor.NewDocument(html, rawURL)
	if err != nil {
		return err
	}
	return fn(doc)
}

// fakeStore records backend writes.
type fakeStore struct {
	mu         sync.Mutex
	products   []models.ProductInput
	prices     []models.VerifiedPrice
	sentiments []models.VerifiedSentiment
	logs       []models.LogEntry
	failCreate bool
}

func (s *fakeStore) CreateProduct(_ context.Context, p models.ProductInput) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate {
		return 0, models.NewPersistenceError("backend returned 500", nil)
	}
	s.products = append(s.products, p)
	return len(s.products), nil
}

func (s *fakeStore) SavePrice(_ context.Context, p models.VerifiedPrice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices = append(s.prices, p)
	return nil
}

func (s *fakeStore) SaveSentiment(_ context.Context, v models.VerifiedSentiment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sentiments = append(s.sentiments, v)
	return nil
}

func (s *fakeStore) SendLog(_ context.Context, e models.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, e)
	return nil
}
