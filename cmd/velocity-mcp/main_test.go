package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatScrape(t *testing.T) {
	price, score := 149.99, 0.85
	out := formatScrape(&scrapeResponse{
		Success: true,
		Message: "Scraped and validated 1 products",
		RunID:   "run-1",
		Results: []groundingResult{{ProductsCreated: 1, PricesAdded: 1, SentimentsAdded: 1}},
		Items: []scrapedItem{
			{Name: "UltraSound Pro", Category: "Electronics", Competitor: "AudioTech", Price: &price, Currency: "USD", Sentiment: &score, SourceURL: "https://example.com/products/ultrasound-pro", Mode: "demo"},
			{Name: "Mystery", SourceURL: "https://shop.example.com/m", Mode: "live"},
		},
		Errors: []string{"Failed to create product: Mystery"},
	})

	assert.Contains(t, out, "Scraped and validated 1 products (run run-1)")
	assert.Contains(t, out, "verified prices: 1")
	assert.Contains(t, out, "price 149.99 USD | sentiment 0.85")
	assert.Contains(t, out, "2. Mystery [] ")
	assert.Contains(t, out, "price n/a | sentiment n/a")
	assert.Contains(t, out, "- Failed to create product: Mystery")
}
