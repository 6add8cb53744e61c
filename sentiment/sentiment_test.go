package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"all positive", "Great product, excellent build", 1.0},
		{"all negative", "Terrible. Bad experience", -1.0},
		{"mixed", "Great sound but poor battery and awful case", -1.0 / 3.0},
		{"no terms", "Arrived on Tuesday", 0.0},
		{"empty", "", 0.0},
		{"case insensitive", "LOVE IT", 1.0},
		{"substring match", "I loved it, would recommend", 1.0},
		{"term counted once", "great great great but bad", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.text), 1e-9)
		})
	}
}

func TestAggregate(t *testing.T) {
	// Mean of +1.0 and -1.0.
	got := Aggregate([]string{"great and excellent", "terrible and bad"})
	assert.InDelta(t, 0.0, got, 1e-9)

	assert.Equal(t, 0.0, Aggregate(nil))
	assert.Equal(t, 0.0, Aggregate([]string{}))
	assert.InDelta(t, 0.5, Aggregate([]string{"best ever", "it is fine"}), 1e-9)
}

func TestScore_Range(t *testing.T) {
	inputs := []string{
		"great excellent amazing love perfect recommend best",
		"bad terrible poor worst disappointing waste awful",
		"best worst", "great", "waste of money but I love the color",
	}
	for _, in := range inputs {
		s := Score(in)
		assert.GreaterOrEqual(t, s, -1.0, in)
		assert.LessOrEqual(t, s, 1.0, in)
		assert.Equal(t, s, Score(in), "score must be deterministic")
	}
}

func TestExplain(t *testing.T) {
	e := Explain("Amazing screen, worst keyboard")
	assert.Equal(t, []string{"amazing"}, e.Positive)
	assert.Equal(t, []string{"worst"}, e.Negative)
	assert.InDelta(t, 0.0, e.Score, 1e-9)

	empty := Explain("ok")
	assert.Empty(t, empty.Positive)
	assert.Empty(t, empty.Negative)
}
