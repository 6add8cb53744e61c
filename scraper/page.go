package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/use-agent/velocity/engine"
	"github.com/use-agent/velocity/extractor"
	"github.com/use-agent/velocity/models"
)

const defaultAcceptLanguage = "en-US,en;q=0.9"

// webdriverMask hides navigator.webdriver on non-stealth loads.
const webdriverMask = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`

// VisitOptions tunes a single page load.
type VisitOptions struct {
	// Timeout bounds navigation and extraction. Zero uses the configured
	// navigation timeout.
	Timeout time.Duration

	// Stealth injects the full evasion script instead of the webdriver mask.
	Stealth bool
}

// Visit loads rawURL and calls fn with a handle on the loaded page. The
// handle is valid only until fn returns. Browser tabs go back to the pool
// on every exit path.
//
// With a dispatcher configured the page is fetched through the engine
// ladder and fn sees a parsed snapshot. If every engine fails the direct
// browser path is tried once more.
func (s *Scraper) Visit(ctx context.Context, rawURL string, opts VisitOptions, fn func(extractor.Page) error) error {
	timeout := s.navTimeout(opts.Timeout)

	if s.dispatcher != nil {
		res, err := s.dispatch(ctx, rawURL, opts.Stealth, timeout)
		if err == nil {
			doc, parseErr := extractor.NewDocument(res.HTML, rawURL)
			if parseErr != nil {
				return models.NewExtractionError("failed to parse page", parseErr)
			}
			return fn(doc)
		}
		if ctx.Err() != nil {
			return categorizeError(ctx.Err(), "page load aborted")
		}
		slog.Warn("scraper: dispatcher failed, falling back to direct browser load",
			"url", rawURL, "error", err)
	}

	return s.withPage(ctx, rawURL, pageSetup{stealth: opts.Stealth}, timeout, func(p *rod.Page) error {
		return fn(&rodPage{page: p, url: rawURL})
	})
}

// FetchHTML loads req.URL in the browser and returns the rendered HTML.
// It is the browser callback of the engine package's rod engines.
func (s *Scraper) FetchHTML(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	start := time.Now()
	setup := pageSetup{
		stealth:        req.Stealth,
		userAgent:      req.UserAgent,
		acceptLanguage: req.AcceptLanguage,
	}

	var result *engine.FetchResult
	err := s.withPage(ctx, req.URL, setup, s.navTimeout(req.Timeout), func(p *rod.Page) error {
		html, err := p.HTML()
		if err != nil {
			return categorizeError(err, "failed to read page HTML")
		}
		finalURL := evalStringOrEmpty(p, `() => window.location.href`)
		if finalURL == "" {
			finalURL = req.URL
		}
		result = &engine.FetchResult{
			HTML:       html,
			Title:      evalStringOrEmpty(p, `() => document.title`),
			StatusCode: navigationStatus(p),
			FinalURL:   finalURL,
			Elapsed:    time.Since(start),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Scraper) dispatch(ctx context.Context, rawURL string, stealthOn bool, timeout time.Duration) (*engine.FetchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.dispatcher.Dispatch(ctx, &engine.FetchRequest{
		URL:            rawURL,
		UserAgent:      pickUserAgent(s.browserCfg.UserAgents),
		AcceptLanguage: defaultAcceptLanguage,
		Timeout:        timeout,
		Stealth:        stealthOn,
	})
}

func (s *Scraper) navTimeout(requested time.Duration) time.Duration {
	timeout := requested
	if timeout <= 0 {
		timeout = s.scraperCfg.NavigationTimeout
	}
	if s.scraperCfg.MaxTimeout > 0 && timeout > s.scraperCfg.MaxTimeout {
		timeout = s.scraperCfg.MaxTimeout
	}
	return timeout
}

type pageSetup struct {
	stealth        bool
	userAgent      string
	acceptLanguage string
}

// withPage borrows a tab, prepares it, navigates to rawURL and runs fn
// while the tab is held.
//
// Evasion scripts, the user agent and the request blocker are installed
// before navigation; they only apply to loads that start afterwards.
// Cleanup uses the unbound page so it still runs after ctx expires.
func (s *Scraper) withPage(ctx context.Context, rawURL string, setup pageSetup, timeout time.Duration, fn func(*rod.Page) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.activePages.Add(1)
	defer s.activePages.Add(-1)

	page, err := s.pagePool.Get(func() (*rod.Page, error) {
		return s.browser.Page(proto.TargetCreateTarget{})
	})
	if err != nil {
		return models.NewPipelineError(models.ErrCodeBrowserCrash, "failed to acquire page from pool", err)
	}
	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("scraper: failed to reset page", "error", navErr)
		}
		s.pagePool.Put(page)
	}()

	script := webdriverMask
	if setup.stealth {
		script = stealth.JS
	}
	if remove, evalErr := page.EvalOnNewDocument(script); evalErr != nil {
		slog.Warn("scraper: evasion script injection failed", "error", evalErr)
	} else {
		defer func() { _ = remove() }()
	}

	ua := setup.userAgent
	if ua == "" {
		ua = pickUserAgent(s.browserCfg.UserAgents)
	}
	lang := setup.acceptLanguage
	if lang == "" {
		lang = defaultAcceptLanguage
	}
	if ua != "" {
		if uaErr := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      ua,
			AcceptLanguage: lang,
			Platform:       "Win32",
		}); uaErr != nil {
			slog.Debug("scraper: user agent override failed", "error", uaErr)
		}
	}
	_ = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: 1,
	})

	headers := map[string]string{"Accept-Language": lang}
	if u, parseErr := url.Parse(rawURL); parseErr == nil && u.Hostname() != "" {
		headers["Referer"] = "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())
	}
	_ = proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}.Call(page)

	b := newBlocker(s.scraperCfg.BlockedResourceTypes, s.scraperCfg.BlockAds)
	if router := b.mount(page); router != nil {
		defer func() { _ = router.Stop() }()
	}

	p := page.Context(ctx)
	if err := p.Navigate(rawURL); err != nil {
		return categorizeError(err, "navigation to target URL failed")
	}
	if err := p.WaitLoad(); err != nil {
		return categorizeError(err, "page did not finish loading")
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("scraper: DOM did not settle, proceeding with current DOM", "error", err)
	}

	return fn(p)
}

// rodPage exposes a live browser tab as an extractor.Page. The tab is
// already bound to the visit deadline.
type rodPage struct {
	page *rod.Page
	url  string
}

func (r *rodPage) URL() string { return r.url }

func (r *rodPage) Texts(ctx context.Context, selector string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	els, err := r.page.Elements(selector)
	if err != nil {
		return nil, err
	}
	raw := make([]string, len(els))
	for i, el := range els {
		// Unreadable elements stay as empty entries so indexes match the page.
		raw[i], _ = el.Text()
	}
	return normalizeTexts(raw), nil
}

func (r *rodPage) Attrs(ctx context.Context, selector, attr string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	els, err := r.page.Elements(selector)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, el := range els {
		v, err := el.Attribute(attr)
		if err != nil || v == nil {
			continue
		}
		out = append(out, strings.TrimSpace(*v))
	}
	return out, nil
}

// normalizeTexts collapses whitespace in each element text. Empty texts are
// kept so the first match stays the first candidate, as with a Document.
func normalizeTexts(raw []string) []string {
	out := make([]string, len(raw))
	for i, t := range raw {
		out[i] = extractor.NormalizeSpace(t)
	}
	return out
}

func (r *rodPage) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return r.page.HTML()
}

// navigationStatus reads the HTTP status of the main document from the
// Navigation Timing API. It returns 0 when unavailable.
func navigationStatus(p *rod.Page) int {
	res, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch (e) {}
		return 0;
	}`)
	if err != nil {
		return 0
	}
	return res.Value.Int()
}

// evalStringOrEmpty evaluates js and returns its string result, or "".
func evalStringOrEmpty(p *rod.Page, js string) string {
	res, err := p.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts plain headers to proto.NetworkHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError maps browser errors onto pipeline error codes.
func categorizeError(err error, msg string) *models.PipelineError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewPipelineError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewPipelineError(models.ErrCodeTimeout, "page load canceled", err)
	default:
		return models.NewPipelineError(models.ErrCodeNavigation, msg, err)
	}
}
