package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillsage/server/internal/agent/model"
)

var (
	askLevel   string
	askSession string
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one question through the advisor pipeline",
	Long: `Run the full pipeline (intent, plan, retrieve, compose) for one question
and print the answer as JSON.

Examples:
  skillsage ask "What should I learn to get into MLOps?"
  skillsage ask --level Senior --session s-42 "Is Rust worth it for backend work?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askLevel, "level", "Junior", "Student level: Junior, Mid or Senior")
	askCmd.Flags().StringVar(&askSession, "session", "", "Session id for conversation history (needs REDIS_URL)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	ans := runner.Run(ctx, model.QueryInput{
		SessionID:    askSession,
		Query:        strings.Join(args, " "),
		StudentLevel: askLevel,
	})
	return writeJSON(cmd.OutOrStdout(), ans)
}
