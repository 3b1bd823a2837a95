package main

import (
	"github.com/spf13/cobra"

	"github.com/skillsage/server/internal/ingest"
	logx "github.com/skillsage/server/pkg/logger"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <report.json>",
	Short: "Load a collection report into the knowledge store",
	Long: `Load learning resources and trending topics from a collection report,
extract skills, link them to resources, write trend signals and embeddings.

Partial failures are logged and counted; the command fails only when
nothing could be written.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	rep, err := ingest.ReadReportFile(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, cleanup, err := openApp(ctx)
	defer cleanup()
	if err != nil {
		return err
	}

	stats, loadErr := a.Loader().Load(ctx, rep)
	if loadErr != nil {
		logx.Warn().Err(loadErr).Int("failed", stats.Failed).Msg("ingest finished with errors")
	}
	if err := writeJSON(cmd.OutOrStdout(), stats); err != nil {
		return err
	}
	if loadErr != nil && stats.ResourcesLoaded == 0 && stats.TopicsLoaded == 0 {
		return loadErr
	}
	return nil
}
