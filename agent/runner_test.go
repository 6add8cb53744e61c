package agent

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/velocity/models"
	"github.com/use-agent/velocity/webhook"
)

func TestRunDemo(t *testing.T) {
	store := &fakeStore{}
	r := NewRunner(NewAssembler(newGenerator()), store, nil, RunnerConfig{})

	resp := r.Run(context.Background(), &models.ScrapeRequest{})

	require.True(t, resp.Success)
	_, err := uuid.Parse(resp.RunID)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)

	res := resp.Results[0]
	n := len(resp.Items)
	assert.GreaterOrEqual(t, n, 3)
	assert.Equal(t, n, res.ProductsCreated)
	assert.Equal(t, n, res.PricesAdded)
	assert.Equal(t, n, res.SentimentsAdded)
	assert.Empty(t, resp.Errors)
	assert.Equal(t, "Scraped and validated "+strconv.Itoa(n)+" products", resp.Message)

	last := resp.Thoughts[len(resp.Thoughts)-1]
	assert.Equal(t, models.ActionScrapingComplete, last.Action)
	assert.Equal(t, models.StatusSuccess, last.Status)
	assert.Len(t, store.logs, len(resp.Thoughts))
}

func TestRunDryRunSkipsBackend(t *testing.T) {
	store := &fakeStore{}
	r := NewRunner(NewAssembler(newGenerator()), store, nil, RunnerConfig{})

	resp := r.Run(context.Background(), &models.ScrapeRequest{Targets: []string{"fashion"}, DryRun: true})

	assert.Positive(t, resp.Results[0].ProductsCreated)
	assert.Empty(t, store.products)
	assert.Empty(t, store.prices)
	assert.Empty(t, store.logs)
}

func TestRunKeepsTargetOrder(t *testing.T) {
	urls := []string{
		"https://a.example.com/p",
		"https://b.example.com/p",
		"https://c.example.com/p",
		"https://d.example.com/p",
	}
	v := &fakeVisitor{
		pages: map[string]string{},
		delay: func(u string) time.Duration {
			if u == urls[0] {
				return 30 * time.Millisecond
			}
			return 0
		},
	}
	for i, u := range urls {
		v.pages[u] = productHTML("Item "+strconv.Itoa(i), "$1"+strconv.Itoa(i)+".00")
	}
	r := NewRunner(NewAssembler(newGenerator(), WithVisitor(v)), &fakeStore{}, nil, RunnerConfig{Concurrency: 4})

	resp := r.Run(context.Background(), &models.ScrapeRequest{Targets: urls})

	require.Len(t, resp.Items, len(urls))
	for i, it := range resp.Items {
		assert.Equal(t, urls[i], it.SourceURL)
	}
	assert.Equal(t, len(urls), resp.Results[0].PricesAdded)
}

func TestRunRecordsBackendFailures(t *testing.T) {
	store := &fakeStore{failCreate: true}
	r := NewRunner(NewAssembler(newGenerator()), store, nil, RunnerConfig{})

	resp := r.Run(context.Background(), &models.ScrapeRequest{Targets: []string{"default"}})

	assert.True(t, resp.Success)
	assert.Zero(t, resp.Results[0].ProductsCreated)
	assert.Len(t, resp.Errors, len(resp.Items))
	assert.Equal(t, models.StatusError, resp.Thoughts[len(resp.Thoughts)-1].Status)
}

func TestRunDeliversWebhook(t *testing.T) {
	var mu sync.Mutex
	var got webhook.Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		mu.Lock()
		defer mu.Unlock()
		_ = json.Unmarshal(body, &got)
	}))
	defer srv.Close()

	n := webhook.NewNotifier("", time.Second)
	r := NewRunner(NewAssembler(newGenerator()), &fakeStore{}, n, RunnerConfig{WebhookURL: "http://127.0.0.1:1/unused"})

	resp := r.Run(context.Background(), &models.ScrapeRequest{WebhookURL: srv.URL, DryRun: true})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, n.Wait(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, webhook.EventScrapeCompleted, got.Type)
	assert.Equal(t, resp.RunID, got.RunID)
}
