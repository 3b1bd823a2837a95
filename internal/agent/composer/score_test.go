package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBandedScore(t *testing.T) {
	cases := map[string]float64{
		"0.9":                       0.9,
		"Score: 0.8":                0.9,
		"This is EXCELLENT":         0.9,
		"0.7 - decent":              0.7,
		"Good coverage":             0.7,
		"0.5, needs work":           0.6,
		"":                          0.6,
		"quality is poor, rate 0.3": 0.6,
	}
	for reply, want := range cases {
		assert.Equal(t, want, BandedScore(reply), reply)
	}
}

func TestNumericScore(t *testing.T) {
	cases := map[string]float64{
		"0.5":                       0.5,
		"Rate quality (0-1): 0.45":  0.45,
		"score .72 overall":         0.72,
		"1.0":                       1.0,
		"7.5/10, good":              0.7,
		"no number, excellent work": 0.9,
		"nothing useful":            0.6,
	}
	for reply, want := range cases {
		assert.InDelta(t, want, NumericScore(reply), 1e-9, reply)
	}
}

func TestParserFor(t *testing.T) {
	assert.Equal(t, 0.5, ParserFor("numeric")("0.5"))
	assert.Equal(t, 0.6, ParserFor("banded")("0.5"))
	assert.Equal(t, 0.6, ParserFor("")("0.5"))
	assert.Equal(t, 0.5, ParserFor(" NUMERIC ")("0.5"))
}
