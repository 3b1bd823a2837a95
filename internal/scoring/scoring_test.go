package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelevanceScore(t *testing.T) {
	tests := []struct {
		name string
		in   ResourceText
		want float64
	}{
		{
			name: "two title hits and trusted source",
			in:   ResourceText{Title: "GenAI LLM tutorial", Source: "openai"},
			want: 0.9,
		},
		{
			name: "no signal",
			in:   ResourceText{Title: "Cooking basics", Description: "pasta", Source: "blog"},
			want: 0.5,
		},
		{
			name: "description hits count less",
			in:   ResourceText{Title: "Intro", Description: "a gpt and langchain walkthrough"},
			want: 0.6,
		},
		{
			name: "clamped to one",
			in: ResourceText{
				Title:       "GenAI generative AI GPT LLM LangChain OpenAI transformer",
				Description: "genai gpt llm",
				Source:      "huggingface",
			},
			want: 1.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RelevanceScore(tt.in), 1e-9)
		})
	}
}

func TestRelevanceScoreExampleBounds(t *testing.T) {
	got := RelevanceScore(ResourceText{Title: "GenAI LLM tutorial", Description: "", Source: "openai"})
	assert.Greater(t, got, 0.75)
	assert.LessOrEqual(t, got, 1.0)
}

func TestWeightedTrendScoreBaseline(t *testing.T) {
	assert.Equal(t, 50, WeightedTrendScore(TrendSignals{TotalResources: 10}))
	assert.Equal(t, 50, WeightedTrendScore(TrendSignals{}))
	assert.Equal(t, 50, WeightedTrendScore(TrendSignals{MentionCount: -4, TotalResources: -1}))
}

func TestWeightedTrendScoreSaturates(t *testing.T) {
	got := WeightedTrendScore(TrendSignals{
		MentionCount:   100,
		GithubStars:    1_000_000,
		LinkedinPosts:  1_000_000,
		TotalResources: 10,
	})
	assert.Equal(t, 100, got)
}

func TestWeightedTrendScoreBlend(t *testing.T) {
	// mentions 3/(10*0.3) -> 100, stars 5000 -> 50, posts 0 -> 0
	got := WeightedTrendScore(TrendSignals{MentionCount: 3, GithubStars: 5000, TotalResources: 10})
	assert.Equal(t, 65, got)

	got = WeightedTrendScore(
		TrendSignals{MentionCount: 3, GithubStars: 5000, TotalResources: 10},
		WithWeights(Weights{Mention: 1}),
		WithBaseline(0),
	)
	assert.Equal(t, 100, got)

	got = WeightedTrendScore(
		TrendSignals{MentionCount: 1, TotalResources: 10},
		WithWeights(Weights{Mention: 1}),
		WithMaxMentionRate(1),
		WithBaseline(0),
	)
	assert.Equal(t, 10, got)
}

func TestWeightedTrendScoreZeroWeights(t *testing.T) {
	got := WeightedTrendScore(TrendSignals{MentionCount: 10, TotalResources: 10}, WithWeights(Weights{}))
	assert.Equal(t, 50, got)
}

func TestWeightedTrendScoreBoundsAndMonotonicity(t *testing.T) {
	for total := 0; total <= 40; total += 5 {
		for stars := 0; stars <= 20000; stars += 2500 {
			for posts := 0; posts <= 10000; posts += 2500 {
				prev := 0
				for mentions := 0; mentions <= 30; mentions++ {
					got := WeightedTrendScore(TrendSignals{
						MentionCount:   mentions,
						GithubStars:    stars,
						LinkedinPosts:  posts,
						TotalResources: total,
					})
					assert.GreaterOrEqual(t, got, 50)
					assert.LessOrEqual(t, got, 100)
					assert.GreaterOrEqual(t, got, prev, "mentions=%d total=%d", mentions, total)
					prev = got
				}
			}
		}
	}
}

func TestDemandScore(t *testing.T) {
	corpus := []ResourceText{
		{Title: "Python for data", Description: "pandas"},
		{Title: "Learn Rust", Description: "systems"},
		{Title: "Intro", Description: "python basics"},
		{Title: "Docker", Description: "containers"},
		{Title: "Kubernetes", Description: "orchestration"},
		{Title: "Go", Description: "concurrency"},
		{Title: "React", Description: "frontend"},
		{Title: "SQL", Description: "queries"},
		{Title: "Git", Description: "version control"},
		{Title: "AWS", Description: "cloud"},
	}
	// 2 mentions over 10*0.3 -> 66
	assert.Equal(t, 66, DemandScore("Python", corpus))
	assert.Equal(t, 50, DemandScore("Haskell", corpus))
	assert.Equal(t, 50, DemandScore("Python", nil))
	assert.Equal(t, 50, DemandScore("", corpus))

	hot := []ResourceText{{Title: "python"}, {Title: "python 2"}}
	assert.Equal(t, 100, DemandScore("python", hot))
}
