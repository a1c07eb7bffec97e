package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abdulachik/benchview/internal/config"
	"github.com/abdulachik/benchview/internal/corpus"
	"github.com/abdulachik/benchview/internal/db"
	"github.com/spf13/cobra"
)

var (
	generateCount    int
	generateOutput   string
	generateSeed     uint64
	generateNoRecord bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a historical prompt corpus",
	Long: `Generate a newline-delimited JSON file of synthetic prompts.

Prompts are drawn 40% short, 35% medium, 15% long and 10% huge. Long
prompts carry a unique task identifier; huge prompts are padded with
repeated log noise. Pass --seed to reproduce an earlier run.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntVarP(&generateCount, "count", "n", 0, "Number of prompts (default PROMPT_COUNT)")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output file (default PROMPTS_OUTPUT)")
	generateCmd.Flags().Uint64Var(&generateSeed, "seed", 0, "Random seed; 0 picks a fresh one")
	generateCmd.Flags().BoolVar(&generateNoRecord, "no-record", false, "Do not record the run in the ledger")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("count") {
		cfg.PromptCount = generateCount
	}
	if generateOutput != "" {
		cfg.PromptsOutput = generateOutput
	}
	if err := cfg.ValidateForGenerate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	gen := corpus.New(corpus.Config{
		Count: cfg.PromptCount,
		Seed:  generateSeed,
	})

	slog.Info("generating prompts", "count", gen.Count(), "seed", gen.Seed(), "output", cfg.PromptsOutput)
	prompts := gen.Generate()

	if err := corpus.WriteFile(cfg.PromptsOutput, prompts); err != nil {
		return fmt.Errorf("write prompts: %w", err)
	}

	tally := corpus.Summarize(prompts)
	fmt.Printf("Successfully generated %d prompts in '%s'\n", tally.Total(), cfg.PromptsOutput)
	fmt.Printf("  short: %d  medium: %d  long: %d  huge: %d\n", tally.Short, tally.Medium, tally.Long, tally.Huge)
	fmt.Printf("  seed: %d\n", gen.Seed())

	if generateNoRecord {
		return nil
	}
	if err := recordRun(ctx, cfg, gen.Seed(), tally); err != nil {
		// The corpus is already on disk; a ledger failure should not fail the run.
		slog.Warn("failed to record run in ledger", "error", err)
	}
	return nil
}

func recordRun(ctx context.Context, cfg *config.Config, seed uint64, tally corpus.Tally) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()

	if _, err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	run, err := store.InsertRun(ctx, db.InsertRunParams{
		OutputPath:  cfg.PromptsOutput,
		PromptCount: int64(tally.Total()),
		Seed:        seed,
		ShortCount:  int64(tally.Short),
		MediumCount: int64(tally.Medium),
		LongCount:   int64(tally.Long),
		HugeCount:   int64(tally.Huge),
	})
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	slog.Debug("recorded generation run", "id", run.ID, "db", cfg.DatabasePath)
	return nil
}
