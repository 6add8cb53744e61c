package extractor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Document is a Page over already-fetched HTML.
type Document struct {
	url string
	raw string
	doc *goquery.Document
}

// NewDocument parses rawHTML into a Page reporting pageURL as its address.
func NewDocument(rawHTML, pageURL string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{url: pageURL, raw: rawHTML, doc: doc}, nil
}

func (d *Document) URL() string { return d.url }

func (d *Document) HTML(_ context.Context) (string, error) {
	return d.raw, nil
}

func (d *Document) Texts(ctx context.Context, selector string) ([]string, error) {
	sel, err := d.find(ctx, selector)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, NormalizeSpace(s.Text()))
	})
	return out, nil
}

func (d *Document) Attrs(ctx context.Context, selector, attr string) ([]string, error) {
	sel, err := d.find(ctx, selector)
	if err != nil {
		return nil, err
	}
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr(attr); ok {
			out = append(out, strings.TrimSpace(v))
		}
	})
	return out, nil
}

func (d *Document) find(ctx context.Context, selector string) (*goquery.Selection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := compile(selector)
	if err != nil {
		return nil, err
	}
	return d.doc.FindMatcher(m), nil
}

// compiled caches parsed selectors; strategy lists are fixed so the set
// stays small.
var compiled sync.Map

func compile(selector string) (cascadia.Selector, error) {
	if m, ok := compiled.Load(selector); ok {
		return m.(cascadia.Selector), nil
	}
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	compiled.Store(selector, m)
	return m, nil
}
