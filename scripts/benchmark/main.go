package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL  = flag.String("api-url", "http://localhost:8000", "Velocity API base URL")
	apiKey  = flag.String("api-key", "", "API key for authenticated requests")
	runs    = flag.Int("runs", 3, "Number of runs per target for averaging")
	targets = flag.String("targets", "", "Comma-separated extra targets (product URLs or categories)")
	output  = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Default targets cover demo sampling for several categories.
var defaultTargets = []string{"default", "electronics", "wearables", "home-appliances"}

// --- Request / Response types (mirrors models package) ---

type scrapeRequest struct {
	Targets []string `json:"targets"`
	DryRun  bool     `json:"dry_run"`
	Timeout int      `json:"timeout"`
}

type scrapeResponse struct {
	Success bool              `json:"success"`
	Results []groundingResult `json:"results"`
	Items   []item            `json:"items"`
	Errors  []string          `json:"errors"`
	Timing  timingInfo        `json:"timing"`
	Error   *errorDetail      `json:"error,omitempty"`
}

type groundingResult struct {
	ProductsCreated int `json:"products_created"`
	PricesAdded     int `json:"prices_added"`
	SentimentsAdded int `json:"sentiments_added"`
}

type item struct {
	Mode string `json:"mode"`
}

type timingInfo struct {
	TotalMs     int64 `json:"total_ms"`
	CollectMs   int64 `json:"collect_ms"`
	GroundingMs int64 `json:"grounding_ms"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- Benchmark result types ---

type runResult struct {
	Run         int    `json:"run"`
	TotalMs     int64  `json:"total_ms"`
	CollectMs   int64  `json:"collect_ms"`
	GroundingMs int64  `json:"grounding_ms"`
	Items       int    `json:"items"`
	LiveItems   int    `json:"live_items"`
	Prices      int    `json:"prices"`
	Errors      int    `json:"errors"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
}

type targetAverages struct {
	TotalMs     float64 `json:"total_ms"`
	CollectMs   float64 `json:"collect_ms"`
	GroundingMs float64 `json:"grounding_ms"`
	LiveRatio   float64 `json:"live_ratio"`
}

type targetResult struct {
	Target   string          `json:"target"`
	Runs     []runResult     `json:"runs"`
	Averages *targetAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp     string         `json:"timestamp"`
	APIURL        string         `json:"api_url"`
	RunsPerTarget int            `json:"runs_per_target"`
	Results       []targetResult `json:"results"`
}

func main() {
	flag.Parse()

	all := append([]string{}, defaultTargets...)
	for _, t := range strings.Split(*targets, ",") {
		if t = strings.TrimSpace(t); t != "" {
			all = append(all, t)
		}
	}

	fmt.Println("=== Velocity Benchmark Suite ===")
	fmt.Printf("API URL:      %s\n", *apiURL)
	fmt.Printf("Runs/target:  %d\n", *runs)
	fmt.Printf("Output:       %s\n", *output)
	fmt.Println()

	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		APIURL:        *apiURL,
		RunsPerTarget: *runs,
	}

	for _, target := range all {
		fmt.Printf("Benchmarking %s ...\n", target)
		tr := targetResult{Target: target}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkTarget(target, i)
			if rr.Success {
				fmt.Printf("OK  %dms  %d items (%d live)\n", rr.TotalMs, rr.Items, rr.LiveItems)
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			tr.Runs = append(tr.Runs, rr)
		}

		tr.Averages = computeAverages(tr.Runs)
		report.Results = append(report.Results, tr)
		fmt.Println()
	}

	printTable(report.Results)

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// benchmarkTarget runs one dry-run scrape so the backend is never written.
func benchmarkTarget(target string, run int) runResult {
	rr := runResult{Run: run}

	bodyBytes, err := json.Marshal(scrapeRequest{Targets: []string{target}, DryRun: true, Timeout: 60})
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}

	req, err := http.NewRequest(http.MethodPost, *apiURL+"/api/v1/scrape", bytes.NewReader(bodyBytes))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}

	client := &http.Client{Timeout: 90 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()

	var sr scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}

	rr.Success = sr.Success
	rr.TotalMs = sr.Timing.TotalMs
	rr.CollectMs = sr.Timing.CollectMs
	rr.GroundingMs = sr.Timing.GroundingMs
	rr.Items = len(sr.Items)
	rr.Errors = len(sr.Errors)
	for _, it := range sr.Items {
		if it.Mode == "live" {
			rr.LiveItems++
		}
	}
	for _, r := range sr.Results {
		rr.Prices += r.PricesAdded
	}
	if sr.Error != nil {
		rr.Error = sr.Error.Message
	}
	return rr
}

func computeAverages(runs []runResult) *targetAverages {
	var successCount, items, live int
	var avg targetAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.TotalMs += float64(r.TotalMs)
		avg.CollectMs += float64(r.CollectMs)
		avg.GroundingMs += float64(r.GroundingMs)
		items += r.Items
		live += r.LiveItems
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.TotalMs /= n
	avg.CollectMs /= n
	avg.GroundingMs /= n
	if items > 0 {
		avg.LiveRatio = float64(live) / float64(items)
	}
	return &avg
}

func printTable(results []targetResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Target\tAvg Latency\tCollect\tGrounding\tLive\n")
	fmt.Fprintf(w, "──────\t───────────\t───────\t─────────\t────\n")

	for _, r := range results {
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\t-\n", truncate(r.Target, 40))
			continue
		}
		fmt.Fprintf(w, "%s\t%dms\t%dms\t%dms\t%.0f%%\n",
			truncate(r.Target, 40),
			int64(r.Averages.TotalMs),
			int64(r.Averages.CollectMs),
			int64(r.Averages.GroundingMs),
			r.Averages.LiveRatio*100,
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
