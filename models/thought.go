package models

import "time"

// ThoughtStatus is the outcome attached to an AgentThought.
type ThoughtStatus string

const (
	StatusRunning ThoughtStatus = "running"
	StatusSuccess ThoughtStatus = "success"
	StatusError   ThoughtStatus = "error"
)

// Actions recorded by the grounding validator.
const (
	ActionDataValidation        = "Data Validation"
	ActionProductCreation       = "Product Creation"
	ActionPriceVerification     = "Price Verification"
	ActionPriceValidation       = "Price Validation"
	ActionSentimentVerification = "Sentiment Verification"
	ActionSentimentValidation   = "Sentiment Validation"
	ActionItemProcessing        = "Item Processing"
	ActionScrapingComplete      = "Scraping Complete"
)

// AgentThought is one entry in the transparency log.
type AgentThought struct {
	Timestamp time.Time     `json:"timestamp"`
	Thought   string        `json:"thought"`
	Action    string        `json:"action"`
	Status    ThoughtStatus `json:"status"`
}

// LogEntry is the body of POST /api/agent/log on the backend.
type LogEntry struct {
	Action  string        `json:"action"`
	Status  ThoughtStatus `json:"status"`
	Details string        `json:"details"`
}

// Entry converts the thought into its backend log form.
func (t AgentThought) Entry() LogEntry {
	return LogEntry{Action: t.Action, Status: t.Status, Details: t.Thought}
}
