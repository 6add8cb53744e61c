package models

import "fmt"

// GroundingResult summarizes one grounding batch. Counters only include
// facts that were both verified and accepted by the backend.
type GroundingResult struct {
	ProductsCreated int      `json:"products_created"`
	PricesAdded     int      `json:"prices_added"`
	SentimentsAdded int      `json:"sentiments_added"`
	Errors          []string `json:"errors"`
}

// NewGroundingResult returns a result with a non-nil error list.
func NewGroundingResult() *GroundingResult {
	return &GroundingResult{Errors: []string{}}
}

// Summary renders the counters the way the completion log entry reports them.
func (r *GroundingResult) Summary() string {
	return fmt.Sprintf("Created %d products, %d prices, %d sentiments",
		r.ProductsCreated, r.PricesAdded, r.SentimentsAdded)
}

// OK reports whether the batch finished without recorded errors.
func (r *GroundingResult) OK() bool {
	return len(r.Errors) == 0
}
