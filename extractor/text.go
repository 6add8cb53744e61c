package extractor

import (
	"strings"

	"golang.org/x/net/html"
)

// TextNodes returns the trimmed, non-empty text nodes of rawHTML in
// document order, skipping <head> and <script>/<style>/<noscript>/<template>
// content.
func TextNodes(rawHTML string) []string {
	tokenizer := html.NewTokenizer(strings.NewReader(rawHTML))
	var nodes []string
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return nodes
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if hiddenTag(string(tn)) {
				skipDepth++
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			if hiddenTag(string(tn)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			if text := NormalizeSpace(string(tokenizer.Text())); text != "" {
				nodes = append(nodes, text)
			}
		}
	}
}

// VisibleText joins TextNodes with single spaces.
func VisibleText(rawHTML string) string {
	return strings.Join(TextNodes(rawHTML), " ")
}

func hiddenTag(tag string) bool {
	switch tag {
	case "head", "script", "style", "noscript", "template":
		return true
	}
	return false
}
