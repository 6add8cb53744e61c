package engine

import (
	"context"
	"fmt"
	"time"
)

// BrowserFetchFunc loads a page in the browser. It is supplied by the
// scraper package so engine does not import it.
type BrowserFetchFunc func(ctx context.Context, req *FetchRequest) (*FetchResult, error)

// RodEngine delegates to a browser fetch function. The stealth variant
// always sets Stealth on the request.
type RodEngine struct {
	fetch   BrowserFetchFunc
	stealth bool
}

// NewRodEngine returns a RodEngine named NameRod, or NameRodStealth when
// stealth is set.
func NewRodEngine(fetch BrowserFetchFunc, stealth bool) *RodEngine {
	return &RodEngine{fetch: fetch, stealth: stealth}
}

func (e *RodEngine) Name() string {
	if e.stealth {
		return NameRodStealth
	}
	return NameRod
}

func (e *RodEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if e.fetch == nil {
		return nil, fmt.Errorf("%s: no browser configured", e.Name())
	}
	start := time.Now()

	r := *req
	if e.stealth {
		r.Stealth = true
	}
	result, err := e.fetch(ctx, &r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.Name(), err)
	}
	result.EngineName = e.Name()
	if result.Elapsed == 0 {
		result.Elapsed = time.Since(start)
	}
	return result, nil
}
