package main

import (
	"github.com/spf13/cobra"

	"github.com/skillsage/server/internal/mcpserver"
	logx "github.com/skillsage/server/pkg/logger"
)

var mcpScoringOnly bool

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the advisor and scorers as MCP tools over stdio",
	Long: `Start an MCP server on stdin/stdout exposing ask_skills_advisor,
score_trend and score_relevance. Logs go to stderr.

With --scoring-only no store or model is contacted and only the scoring
tools are registered.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().BoolVar(&mcpScoringOnly, "scoring-only", false, "Expose only the scoring tools")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	if mcpScoringOnly {
		return mcpserver.ServeStdio(mcpserver.New(nil))
	}

	ctx := cmd.Context()
	a, cleanup, err := openApp(ctx)
	defer cleanup()
	if err != nil {
		return err
	}
	runner, err := a.Runner(ctx)
	if err != nil {
		return err
	}

	logx.Info().Msg("serving MCP on stdio")
	return mcpserver.ServeStdio(mcpserver.New(runner))
}
