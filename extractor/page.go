// Package extractor locates product facts on a page by trying ordered
// lists of fallback strategies per field.
package extractor

import (
	"context"
	"strings"
)

// Page is a read-only handle on a loaded page. Implementations are backed
// either by a live browser tab or by fetched HTML.
type Page interface {
	// URL is the address the page was loaded from.
	URL() string

	// Texts returns the whitespace-normalized text of every element
	// matching selector, in document order.
	Texts(ctx context.Context, selector string) ([]string, error)

	// Attrs returns the value of attr on every matching element that has it.
	Attrs(ctx context.Context, selector, attr string) ([]string, error)

	// HTML returns the serialized document.
	HTML(ctx context.Context) (string, error)
}

// NormalizeSpace trims s and collapses internal whitespace runs to one space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
