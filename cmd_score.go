package main

import (
	"github.com/spf13/cobra"

	"github.com/skillsage/server/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score raw signals without touching the store or a model",
	// Scoring is pure; skip config loading so it works on a bare checkout.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
}

var trendSignals scoring.TrendSignals

var scoreTrendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Blend mention, GitHub and LinkedIn signals into a trend score",
	Example: `  skillsage score trend --mentions 12 --total 40 --stars 25000 --posts 800`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"signals":     trendSignals,
			"trend_score": scoring.WeightedTrendScore(trendSignals),
		})
	},
}

var resource scoring.ResourceText

var scoreRelevanceCmd = &cobra.Command{
	Use:     "relevance",
	Short:   "Rate a learning resource's relevance to generative AI",
	Example: `  skillsage score relevance --title "Intro to LLMs" --source OpenAI`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"relevance_score": scoring.RelevanceScore(resource),
		})
	},
}

func init() {
	f := scoreTrendCmd.Flags()
	f.IntVar(&trendSignals.MentionCount, "mentions", 0, "Resources mentioning the skill")
	f.IntVar(&trendSignals.TotalResources, "total", 0, "Resources in the batch")
	f.IntVar(&trendSignals.GithubStars, "stars", 0, "GitHub stars across matching repositories")
	f.IntVar(&trendSignals.LinkedinPosts, "posts", 0, "Matching LinkedIn posts")

	f = scoreRelevanceCmd.Flags()
	f.StringVar(&resource.Title, "title", "", "Resource title")
	f.StringVar(&resource.Description, "description", "", "Resource description")
	f.StringVar(&resource.Source, "source", "", "Publisher or platform")
	_ = scoreRelevanceCmd.MarkFlagRequired("title")

	scoreCmd.AddCommand(scoreTrendCmd, scoreRelevanceCmd)
	rootCmd.AddCommand(scoreCmd)
}
