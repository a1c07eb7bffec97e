package main

import (
	"context"
	"fmt"

	"github.com/abdulachik/benchview/internal/config"
	"github.com/abdulachik/benchview/internal/db"
	"github.com/spf13/cobra"
)

var statsLimit int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show generation ledger statistics",
	Long:  `Display totals and the most recent prompt generator runs.`,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().IntVarP(&statsLimit, "limit", "l", 10, "Number of recent runs to show")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
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
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()

	if _, err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	totalRuns, err := store.CountRuns(ctx)
	if err != nil {
		return fmt.Errorf("count runs: %w", err)
	}

	totals, err := store.SumPrompts(ctx)
	if err != nil {
		return fmt.Errorf("sum prompts: %w", err)
	}

	recent, err := store.ListRecentRuns(ctx, int64(max(statsLimit, 1)))
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	fmt.Println("=== benchview Statistics ===")
	fmt.Println()
	fmt.Printf("Database: %s\n", cfg.DatabasePath)
	fmt.Println()
	fmt.Println("Runs:")
	fmt.Printf("  Total: %d\n", totalRuns)
	fmt.Printf("  Prompts generated: %d\n", totals.Prompts)
	fmt.Printf("  By class: short %d, medium %d, long %d, huge %d\n",
		totals.Short, totals.Medium, totals.Long, totals.Huge)
	fmt.Println()

	if len(recent) > 0 {
		fmt.Println("Recent:")
		for _, r := range recent {
			fmt.Printf("  %s  %s  n=%d  seed=%d  (%d/%d/%d/%d)\n",
				r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				r.OutputPath,
				r.PromptCount,
				r.Seed,
				r.ShortCount, r.MediumCount, r.LongCount, r.HugeCount,
			)
		}
		fmt.Println()
	}

	return nil
}
