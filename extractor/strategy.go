package extractor

import (
	"context"
	"fmt"
	nurl "net/url"
	"strings"

	"github.com/andybalholm/cascadia"
	readability "github.com/go-shiori/go-readability"
)

// Strategy produces candidate texts for one field from a page, in
// document order. An empty result means the strategy did not match.
type Strategy interface {
	Name() string
	Candidates(ctx context.Context, page Page) ([]string, error)
}

type selectorStrategy struct {
	selector string
}

// Selector matches elements by CSS selector and yields their text.
func Selector(css string) Strategy {
	return selectorStrategy{selector: css}
}

func (s selectorStrategy) Name() string { return s.selector }

func (s selectorStrategy) Candidates(ctx context.Context, page Page) ([]string, error) {
	return page.Texts(ctx, s.selector)
}

type attrStrategy struct {
	selector string
	attr     string
}

// Attribute matches elements by CSS selector and yields one attribute.
func Attribute(css, attr string) Strategy {
	return attrStrategy{selector: css, attr: attr}
}

func (s attrStrategy) Name() string { return s.selector + "@" + s.attr }

func (s attrStrategy) Candidates(ctx context.Context, page Page) ([]string, error) {
	return page.Attrs(ctx, s.selector, s.attr)
}

type containsStrategy struct {
	selector string
	substr   string
}

// ContainsText matches elements by CSS selector whose text contains substr.
func ContainsText(css, substr string) Strategy {
	return containsStrategy{selector: css, substr: substr}
}

func (s containsStrategy) Name() string {
	return fmt.Sprintf("%s:contains(%q)", s.selector, s.substr)
}

func (s containsStrategy) Candidates(ctx context.Context, page Page) ([]string, error) {
	texts, err := page.Texts(ctx, s.selector)
	if err != nil {
		return nil, err
	}
	out := texts[:0]
	for _, t := range texts {
		if strings.Contains(t, s.substr) {
			out = append(out, t)
		}
	}
	return out, nil
}

type readabilityTitle struct{}

// ReadabilityTitle yields the article title found by the readability algorithm.
func ReadabilityTitle() Strategy { return readabilityTitle{} }

func (readabilityTitle) Name() string { return "readability:title" }

func (readabilityTitle) Candidates(ctx context.Context, page Page) ([]string, error) {
	raw, err := page.HTML(ctx)
	if err != nil {
		return nil, err
	}
	pageURL, err := nurl.Parse(page.URL())
	if err != nil {
		return nil, err
	}
	article, err := readability.FromReader(strings.NewReader(raw), pageURL)
	if err != nil {
		return nil, err
	}
	if title := NormalizeSpace(article.Title); title != "" {
		return []string{title}, nil
	}
	return nil, nil
}

// NameStrategies is the default lookup order for the product name.
func NameStrategies() []Strategy {
	return []Strategy{
		Selector("h1"),
		Selector(`[data-test="product-title"]`),
		Selector(".product-title"),
		Selector(`[itemprop="name"]`),
		Selector("#productTitle"),
		Attribute(`meta[property="og:title"]`, "content"),
		ReadabilityTitle(),
	}
}

// PriceStrategies is the default lookup order for the current price.
func PriceStrategies() []Strategy {
	return []Strategy{
		Selector(`[data-test="product-price"]`),
		Selector(".price"),
		Selector(`[itemprop="price"]`),
		Selector("#priceblock_ourprice"),
		Selector("#priceblock_dealprice"),
		Selector(".product-price"),
		Selector(".price-now"),
		Selector(`[class*="price"]`),
		ContainsText("span", "$"),
		Attribute(`meta[itemprop="price"]`, "content"),
		Attribute(`meta[property="product:price:amount"]`, "content"),
	}
}

// ReviewStrategies is the default lookup order for review texts.
func ReviewStrategies() []Strategy {
	return []Strategy{
		Selector(`[data-test="review-text"]`),
		Selector(".review-text"),
		Selector(`[itemprop="reviewBody"]`),
		Selector(".review-content"),
		Selector(".customer-review"),
		Selector(`[class*="review"]`),
	}
}

// CategoryStrategies is the default lookup order for breadcrumb trails.
func CategoryStrategies() []Strategy {
	return []Strategy{
		Selector(`[itemprop="itemListElement"]`),
		Selector(`nav[aria-label="breadcrumb"] li`),
		Selector(".breadcrumb li"),
	}
}

// ValidateSelectors checks that every selector-backed strategy compiles.
func ValidateSelectors(strategies []Strategy) error {
	for _, s := range strategies {
		var css string
		switch v := s.(type) {
		case selectorStrategy:
			css = v.selector
		case attrStrategy:
			css = v.selector
		case containsStrategy:
			css = v.selector
		default:
			continue
		}
		if _, err := cascadia.Parse(css); err != nil {
			return fmt.Errorf("strategy %s: %w", s.Name(), err)
		}
	}
	return nil
}
