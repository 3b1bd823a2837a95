package composer

import (
	"regexp"
	"strconv"
	"strings"
)

// ScoreParser maps a verifier reply to a confidence in [0,1].
type ScoreParser func(reply string) float64

const (
	ScoreModeBanded  = "banded"
	ScoreModeNumeric = "numeric"
)

// BandedScore applies the coarse three-band policy: 0.9, 0.7 or 0.6.
func BandedScore(reply string) float64 {
	c := strings.ToLower(reply)
	switch {
	case strings.Contains(c, "0.9"), strings.Contains(c, "0.8"), strings.Contains(c, "excellent"):
		return 0.9
	case strings.Contains(c, "0.7"), strings.Contains(c, "good"):
		return 0.7
	default:
		return 0.6
	}
}

// decimals only, so an echoed "(0-1)" range is never read as a score
var decimalScore = regexp.MustCompile(`(?:^|[^\d.])([01]?\.\d+)`)

// NumericScore reads the first decimal in [0,1] and falls back to
// BandedScore when there is none.
func NumericScore(reply string) float64 {
	for _, m := range decimalScore.FindAllStringSubmatch(reply, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil && v >= 0 && v <= 1 {
			return v
		}
	}
	return BandedScore(reply)
}

// ParserFor resolves a configured mode; unknown modes get BandedScore.
func ParserFor(mode string) ScoreParser {
	if strings.EqualFold(strings.TrimSpace(mode), ScoreModeNumeric) {
		return NumericScore
	}
	return BandedScore
}
