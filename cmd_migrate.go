package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/skillsage/server/internal/store"
	logx "github.com/skillsage/server/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the knowledge store schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.Postgres.URL == "" {
			return errors.New("POSTGRES_URL is required")
		}
		if err := store.ApplyMigrations(cmd.Context(), cfg.Postgres.URL); err != nil {
			return err
		}
		logx.Info().Msg("schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
