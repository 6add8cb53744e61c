package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// scrapeRequest mirrors the Velocity API request model.
type scrapeRequest struct {
	Targets []string `json:"targets,omitempty"`
	Stealth bool     `json:"stealth,omitempty"`
	DryRun  bool     `json:"dry_run,omitempty"`
	Timeout int      `json:"timeout,omitempty"`
}

type groundingResult struct {
	ProductsCreated int `json:"products_created"`
	PricesAdded     int `json:"prices_added"`
	SentimentsAdded int `json:"sentiments_added"`
}

type scrapedItem struct {
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Competitor string   `json:"competitor"`
	Price      *float64 `json:"price"`
	Currency   string   `json:"currency"`
	Sentiment  *float64 `json:"sentiment_score"`
	SourceURL  string   `json:"source_url"`
	Mode       string   `json:"mode"`
}

// scrapeResponse mirrors the Velocity API response model.
type scrapeResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	RunID   string            `json:"run_id"`
	Results []groundingResult `json:"results"`
	Items   []scrapedItem     `json:"items"`
	Errors  []string          `json:"errors"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type healthResponse struct {
	Status     string `json:"status"`
	Browser    string `json:"browser"`
	Uptime     string `json:"uptime"`
	BackendURL string `json:"backend_url"`
	Version    string `json:"version"`
}

func main() {
	apiURL := strings.TrimRight(envOr("VELOCITY_API_URL", "http://127.0.0.1:8000"), "/")
	apiKey := os.Getenv("VELOCITY_API_KEY")

	s := server.NewMCPServer(
		"velocity",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	scrapeTool := mcp.NewTool("scrape_products",
		mcp.WithDescription("Collect competitor product data and ground it into the catalog backend. "+
			"Targets are product page URLs (live extraction of name, price and reviews) or category names "+
			"such as 'electronics' or 'wearables' (demo catalog). Every persisted price and sentiment carries its source URL."),
		mcp.WithArray("targets",
			mcp.Description("Product page URLs or category names. Default: [\"default\"]"),
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Extract and validate without writing to the backend"),
		),
		mcp.WithBoolean("stealth",
			mcp.Description("Load live pages with the stealth browser only"),
		),
		mcp.WithNumber("timeout",
			mcp.Description("Per-page load timeout in seconds (1-120)"),
		),
	)
	s.AddTool(scrapeTool, handleScrape(apiURL, apiKey))

	healthTool := mcp.NewTool("service_health",
		mcp.WithDescription("Report whether the Velocity agent is up, its browser state and backend URL."),
	)
	s.AddTool(healthTool, handleHealth(apiURL))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleScrape(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 10 * time.Minute}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		payload := scrapeRequest{
			Targets: request.GetStringSlice("targets", nil),
			DryRun:  request.GetBool("dry_run", false),
			Stealth: request.GetBool("stealth", false),
			Timeout: request.GetInt("timeout", 0),
		}

		body, err := apiPost(ctx, client, apiURL+"/api/v1/scrape", apiKey, payload)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var resp scrapeResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !resp.Success {
			msg := "scrape failed"
			if resp.Error != nil {
				msg = fmt.Sprintf("[%s] %s", resp.Error.Code, resp.Error.Message)
			}
			return mcp.NewToolResultError(msg), nil
		}

		return mcp.NewToolResultText(formatScrape(&resp)), nil
	}
}

func formatScrape(resp *scrapeResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (run %s)\n", resp.Message, resp.RunID)
	for _, r := range resp.Results {
		fmt.Fprintf(&b, "Products: %d, verified prices: %d, verified sentiments: %d\n",
			r.ProductsCreated, r.PricesAdded, r.SentimentsAdded)
	}

	if len(resp.Items) > 0 {
		b.WriteString("\nItems:\n")
		for i, it := range resp.Items {
			price := "n/a"
			if it.Price != nil {
				price = fmt.Sprintf("%.2f %s", *it.Price, it.Currency)
			}
			sentiment := "n/a"
			if it.Sentiment != nil {
				sentiment = fmt.Sprintf("%.2f", *it.Sentiment)
			}
			fmt.Fprintf(&b, "%d. %s [%s] %s | price %s | sentiment %s | %s (%s)\n",
				i+1, it.Name, it.Category, it.Competitor, price, sentiment, it.SourceURL, it.Mode)
		}
	}

	if len(resp.Errors) > 0 {
		b.WriteString("\nErrors:\n")
		for _, e := range resp.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}
	return b.String()
}

func handleHealth(apiURL string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 10 * time.Second}

	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/api/v1/health", nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		resp, err := client.Do(req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		var h healthResponse
		if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Status: %s\nBrowser: %s\nUptime: %s\nBackend: %s\nVersion: %s",
			h.Status, h.Browser, h.Uptime, h.BackendURL, h.Version)), nil
	}
}

// apiPost sends a JSON POST to the Velocity API and returns the body.
func apiPost(ctx context.Context, client *http.Client, url, apiKey string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
