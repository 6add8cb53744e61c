// Package sentiment scores review text by keyword polarity.
//
// A term counts once per text when it occurs anywhere as a substring of the
// lowercased text, so "loved" matches "love" and "badly" matches "bad".
package sentiment

import "strings"

// Positive and Negative are the fixed polarity lexicons.
var (
	Positive = []string{"great", "excellent", "amazing", "love", "perfect", "recommend", "best"}
	Negative = []string{"bad", "terrible", "poor", "worst", "disappointing", "waste", "awful"}
)

// Score returns (pos-neg)/(pos+neg) for text, or 0 when no term matches.
// The result is always within [-1, 1].
func Score(text string) float64 {
	pos, neg := counts(strings.ToLower(text))
	total := pos + neg
	if total == 0 {
		return 0.0
	}
	return float64(pos-neg) / float64(total)
}

// Aggregate returns the arithmetic mean of Score over reviews, or 0 for none.
func Aggregate(reviews []string) float64 {
	if len(reviews) == 0 {
		return 0.0
	}
	var sum float64
	for _, r := range reviews {
		sum += Score(r)
	}
	return sum / float64(len(reviews))
}

// Explanation lists the lexicon terms found in a text.
type Explanation struct {
	Positive []string `json:"positive"`
	Negative []string `json:"negative"`
	Score    float64  `json:"score"`
}

// Explain reports which terms contributed to Score(text).
func Explain(text string) Explanation {
	lower := strings.ToLower(text)
	e := Explanation{Positive: matches(lower, Positive), Negative: matches(lower, Negative)}
	e.Score = Score(text)
	return e
}

func counts(lower string) (pos, neg int) {
	return len(matches(lower, Positive)), len(matches(lower, Negative))
}

func matches(lower string, lexicon []string) []string {
	out := []string{}
	for _, term := range lexicon {
		if strings.Contains(lower, term) {
			out = append(out, term)
		}
	}
	return out
}
