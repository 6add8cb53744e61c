package models

// DefaultTarget is the symbolic target used when a request names none.
const DefaultTarget = "default"

// ScrapeRequest is the payload for POST /api/v1/scrape.
type ScrapeRequest struct {
	// Targets lists absolute http(s) URLs (live mode) or symbolic names
	// (demo mode). Symbolic names that match a catalog category restrict
	// the demo sample to that category. Default: ["default"].
	Targets []string `json:"targets,omitempty" binding:"omitempty,max=20,dive,required"`

	// Timeout is the per-page navigation budget in seconds.
	// Default: server navigation timeout. Max: 120.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`

	// Stealth forces the stealth browser path for live targets.
	Stealth bool `json:"stealth,omitempty"`

	// DryRun runs extraction and validation but skips backend writes.
	DryRun bool `json:"dry_run,omitempty"`

	// WebhookURL overrides the server's default completion webhook.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`
}

// TargetsOrDefault returns Targets, or ["default"] when none were given.
func (r *ScrapeRequest) TargetsOrDefault() []string {
	if len(r.Targets) == 0 {
		return []string{DefaultTarget}
	}
	return r.Targets
}
