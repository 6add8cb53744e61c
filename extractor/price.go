package extractor

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// First decimal number, optionally preceded by a currency symbol.
	rePriceNumber = regexp.MustCompile(`(?:[$€£¥]\s*)?(\d+(?:\.\d+)?)`)

	// Currency-prefixed amount, used when scanning whole-page text.
	reCurrencyAmount = regexp.MustCompile(`[$€£¥]\s?\d[\d,]*(?:\.\d+)?`)

	reCurrencyCode = regexp.MustCompile(`\b(USD|EUR|GBP|JPY|CAD|AUD|INR|CNY)\b`)
)

var currencySymbols = map[rune]string{
	'$': "USD",
	'€': "EUR",
	'£': "GBP",
	'¥': "JPY",
}

// ParsePrice extracts the first positive decimal number from text after
// removing thousands separators. It reports false when text holds no
// number or the number is not positive.
func ParsePrice(text string) (float64, bool) {
	m := rePriceNumber.FindStringSubmatch(strings.ReplaceAll(text, ",", ""))
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ScanPrice finds the first currency-prefixed amount in text and parses it.
// The matched fragment is returned alongside the value.
func ScanPrice(text string) (float64, string, bool) {
	for _, loc := range reCurrencyAmount.FindAllStringIndex(text, -1) {
		frag := text[loc[0]:loc[1]]
		if v, ok := ParsePrice(frag); ok {
			return v, frag, true
		}
	}
	return 0, "", false
}

// DetectCurrency returns the ISO code for the first currency symbol or code
// in text, or "" when there is none.
func DetectCurrency(text string) string {
	for _, r := range text {
		if code, ok := currencySymbols[r]; ok {
			return code
		}
	}
	if m := reCurrencyCode.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}
