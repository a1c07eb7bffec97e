package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abdulachik/benchview/internal/config"
	"github.com/abdulachik/benchview/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run ledger migrations",
	Long: `Apply pending migrations to the generation ledger at DATABASE_PATH.

The ledger keeps one row per generate run in the generation_runs table:
output path, prompt count, seed and per-class tallies. generate and stats
migrate on their own; this command is for preparing the database ahead
of time.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open ledger %s: %w", cfg.DatabasePath, err)
	}
	defer store.Close()

	applied, err := store.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	versions, err := store.AppliedMigrations(ctx)
	if err != nil {
		return err
	}

	slog.Info("ledger up to date", "path", cfg.DatabasePath, "applied", applied)
	fmt.Fprintf(cmd.OutOrStdout(), "Ledger %s: %d migration(s) applied now, %d total\n",
		cfg.DatabasePath, applied, len(versions))
	for _, v := range versions {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", v)
	}
	return nil
}
