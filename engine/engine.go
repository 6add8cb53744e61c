// Package engine fetches product pages through a ladder of engines, from a
// plain HTTP client with a browser TLS fingerprint up to a stealth browser.
package engine

import (
	"context"
	"errors"
	"time"
)

// Engine names.
const (
	NameHTTP       = "http"
	NameRod        = "rod"
	NameRodStealth = "rod-stealth"
)

// ErrNeedsBrowser is returned by engines that fetched a page which only
// renders with JavaScript. The dispatcher escalates immediately on it.
var ErrNeedsBrowser = errors.New("page needs a javascript-capable engine")

// Engine fetches the HTML of one page.
type Engine interface {
	// Name returns the engine identifier (NameHTTP, NameRod, NameRodStealth).
	Name() string

	// Fetch retrieves the page for req.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest describes one page load.
type FetchRequest struct {
	URL            string
	UserAgent      string
	AcceptLanguage string
	Timeout        time.Duration
	Stealth        bool
}

// FetchResult is a loaded page.
type FetchResult struct {
	HTML       string
	Title      string
	StatusCode int
	FinalURL   string
	EngineName string
	Elapsed    time.Duration
}
