// Package backend is the HTTP client for the persistence service that
// stores products, verified prices, verified sentiments and agent logs.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/use-agent/velocity/models"
)

const (
	DefaultWriteTimeout = 30 * time.Second
	DefaultLogTimeout   = 10 * time.Second

	maxErrorBody = 4 << 10
)

// Client talks to the backend over JSON/HTTP. Every call is bounded by its
// own timeout on top of the caller's context.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	writeTimeout time.Duration
	logTimeout   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeouts sets the per-call timeouts for writes and log entries.
// Non-positive values keep the defaults.
func WithTimeouts(write, log time.Duration) Option {
	return func(c *Client) {
		if write > 0 {
			c.writeTimeout = write
		}
		if log > 0 {
			c.logTimeout = log
		}
	}
}

// NewClient returns a Client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{},
		writeTimeout: DefaultWriteTimeout,
		logTimeout:   DefaultLogTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string { return c.baseURL }

type productResponse struct {
	Data struct {
		ID int `json:"id"`
	} `json:"data"`
}

// CreateProduct posts a product record and returns its backend ID.
// Any status other than 201 is a PERSISTENCE_FAILED error.
func (c *Client) CreateProduct(ctx context.Context, p models.ProductInput) (int, error) {
	body, err := c.post(ctx, c.writeTimeout, "/api/products", p)
	if err != nil {
		return 0, err
	}
	var pr productResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return 0, models.NewPersistenceError("decode product response", err)
	}
	if pr.Data.ID == 0 {
		return 0, models.NewPersistenceError("product response carried no id", nil)
	}
	return pr.Data.ID, nil
}

// SavePrice posts a verified price for its product.
func (c *Client) SavePrice(ctx context.Context, p models.VerifiedPrice) error {
	if !p.Valid() {
		return models.NewValidationError("refusing to persist unverified price")
	}
	_, err := c.post(ctx, c.writeTimeout, fmt.Sprintf("/api/products/%d/prices", p.ProductID()), p)
	return err
}

// SaveSentiment posts a verified sentiment.
func (c *Client) SaveSentiment(ctx context.Context, s models.VerifiedSentiment) error {
	if !s.Valid() {
		return models.NewValidationError("refusing to persist unverified sentiment")
	}
	_, err := c.post(ctx, c.writeTimeout, "/api/sentiment", s)
	return err
}

// SendLog posts one agent log entry. The response status is not checked.
func (c *Client) SendLog(ctx context.Context, entry models.LogEntry) error {
	ctx, cancel := context.WithTimeout(ctx, c.logTimeout)
	defer cancel()

	resp, err := c.do(ctx, "/api/agent/log", entry)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

// Ping checks that the backend answers at all.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.logTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend: ping: %w", err)
	}
	resp.Body.Close()
	return nil
}

// post sends payload and expects 201 Created, returning the response body.
func (c *Client) post(ctx context.Context, timeout time.Duration, path string, payload any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.do(ctx, path, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, models.NewPersistenceError(fmt.Sprintf("read response from %s", path), err)
	}
	if resp.StatusCode != http.StatusCreated {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, models.NewPersistenceError(
			fmt.Sprintf("POST %s returned %d: %s", path, resp.StatusCode, snippet), nil)
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, path string, payload any) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, models.NewPersistenceError(fmt.Sprintf("encode body for %s", path), err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, models.NewPersistenceError(fmt.Sprintf("build request for %s", path), err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Velocity-Agent/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, models.NewPersistenceError(fmt.Sprintf("POST %s", path), err)
	}
	return resp, nil
}
