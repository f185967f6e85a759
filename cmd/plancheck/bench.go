package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/plancheck/internal/bench"
	"github.com/dshills/plancheck/internal/schema"
)

func newBenchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bench <runs.json>",
		Short: "Aggregate scored benchmark runs into a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read runs: %w", err)
			}
			var runs []schema.BenchmarkRun
			if err := json.Unmarshal(data, &runs); err != nil {
				return fmt.Errorf("parse runs: %w", err)
			}

			summary := bench.Summarize(runs)
			out, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal summary: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}
}
