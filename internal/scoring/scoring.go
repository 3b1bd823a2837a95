// Package scoring turns raw mention and engagement counts into bounded scores.
// Every function here is pure; callers on the ingestion path and the MCP tool
// surface use them directly.
package scoring

import (
	"strings"
)

const (
	relevanceBase       = 0.5
	titleKeywordBoost   = 0.15
	descKeywordBoost    = 0.05
	trustedSourceBoost  = 0.10
	defaultBaseline     = 50
	defaultMentionRate  = 0.3
	githubStarsDivisor  = 1000.0
	linkedinPostDivisor = 500.0
	signalMultiplier    = 10.0
	maxScore            = 100.0
)

var relevanceKeywords = []string{
	"genai", "generative ai", "gpt", "llm", "langchain", "openai", "transformer",
}

var trustedSources = []string{
	"openai", "huggingface", "microsoft", "google", "coursera",
}

// ResourceText is the subset of a learning resource the scorer reads.
type ResourceText struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

// RelevanceScore rates a resource in [0,1] by domain keyword hits and source trust.
func RelevanceScore(r ResourceText) float64 {
	title := strings.ToLower(r.Title)
	desc := strings.ToLower(r.Description)
	source := strings.ToLower(r.Source)

	score := relevanceBase
	for _, kw := range relevanceKeywords {
		if strings.Contains(title, kw) {
			score += titleKeywordBoost
		}
		if strings.Contains(desc, kw) {
			score += descKeywordBoost
		}
	}
	for _, s := range trustedSources {
		if strings.Contains(source, s) {
			score += trustedSourceBoost
			break
		}
	}
	return min(score, 1.0)
}

// TrendSignals are the raw per-skill counts collected for one load batch.
type TrendSignals struct {
	MentionCount   int `json:"mention_count"`
	GithubStars    int `json:"github_stars"`
	LinkedinPosts  int `json:"linkedin_posts"`
	TotalResources int `json:"total_resources"`
}

// Weights of the three normalized signals.
type Weights struct {
	Mention  float64
	Github   float64
	Linkedin float64
}

// DefaultWeights favour corpus mentions over external engagement.
var DefaultWeights = Weights{Mention: 0.5, Github: 0.3, Linkedin: 0.2}

type trendOptions struct {
	weights        Weights
	maxMentionRate float64
	baseline       int
}

// TrendOption customises WeightedTrendScore.
type TrendOption func(*trendOptions)

func WithWeights(w Weights) TrendOption {
	return func(o *trendOptions) { o.weights = w }
}

func WithMaxMentionRate(rate float64) TrendOption {
	return func(o *trendOptions) { o.maxMentionRate = rate }
}

func WithBaseline(baseline int) TrendOption {
	return func(o *trendOptions) { o.baseline = baseline }
}

// WeightedTrendScore blends the normalized signals into an int in [baseline,100].
func WeightedTrendScore(s TrendSignals, opts ...TrendOption) int {
	o := trendOptions{
		weights:        DefaultWeights,
		maxMentionRate: defaultMentionRate,
		baseline:       defaultBaseline,
	}
	for _, opt := range opts {
		opt(&o)
	}

	mention := mentionRate(nonNeg(s.MentionCount), nonNeg(s.TotalResources), o.maxMentionRate)
	github := min(maxScore, float64(nonNeg(s.GithubStars))/githubStarsDivisor*signalMultiplier)
	linkedin := min(maxScore, float64(nonNeg(s.LinkedinPosts))/linkedinPostDivisor*signalMultiplier)

	w := o.weights
	total := w.Mention + w.Github + w.Linkedin
	weighted := 0.0
	if total > 0 {
		weighted = (mention*w.Mention + github*w.Github + linkedin*w.Linkedin) / total
	}
	return clampInt(int(weighted), o.baseline, int(maxScore))
}

// DemandScore rates how often skill is mentioned across corpus, in [50,100].
func DemandScore(skill string, corpus []ResourceText) int {
	needle := strings.ToLower(strings.TrimSpace(skill))
	mentions := 0
	if needle != "" {
		for _, r := range corpus {
			text := strings.ToLower(r.Title + " " + r.Description)
			if strings.Contains(text, needle) {
				mentions++
			}
		}
	}
	score := int(mentionRate(mentions, len(corpus), defaultMentionRate))
	return clampInt(score, defaultBaseline, int(maxScore))
}

func mentionRate(mentions, total int, maxRate float64) float64 {
	denom := float64(total) * maxRate
	if denom <= 0 {
		return 0
	}
	return min(maxScore, float64(mentions)/denom*maxScore)
}

func nonNeg(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// clampInt returns v limited to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
