package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdulachik/benchview/internal/results"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify FILE",
	Short: "Classify a local results file",
	Long: `Run the results classifier on a local file and print the envelope
the viewer would receive for it.`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	path := args[0]

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	env, err := results.Classify(filepath.Base(path), content)
	if err != nil {
		return fmt.Errorf("classify %s: %w", path, err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}
