package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/plancheck/internal/config"
	"github.com/dshills/plancheck/internal/registry"
	"github.com/dshills/plancheck/internal/render"
	"github.com/dshills/plancheck/internal/schema"
	"github.com/dshills/plancheck/internal/telemetry"
)

func newCheckCmd() *cobra.Command {
	var planFile string
	var experimental bool

	cmd := &cobra.Command{
		Use:   "check [project-dir]",
		Short: "Run all checkers against a plan and print the combined report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir := "."
			if len(args) == 1 {
				projectDir = args[0]
			}
			cfg, err := config.Load(projectDir)
			if err != nil {
				return err
			}
			planText, err := readPlan(planFile)
			if err != nil {
				return err
			}

			list, results, err := runCheckers(planText, projectDir, cfg, experimental || cfg.Experimental)
			if err != nil {
				return err
			}

			fmt.Print(render.CombinedReport(list, results, projectDir))
			printSummary(results)

			entry := telemetry.BuildEntry(projectDir, list, results)
			telemetry.New(config.StateDir(), logger).LogCatch(entry)
			return nil
		},
	}
	cmd.Flags().StringVar(&planFile, "plan", "", "plan file to verify (default: stdin)")
	cmd.Flags().BoolVar(&experimental, "experimental", false, "include experimental checkers")
	return cmd
}

// runCheckers executes every listed checker in registration order against
// the plan, collecting results by checker id.
func runCheckers(planText, projectDir string, cfg config.Config, experimental bool) ([]registry.Checker, map[string]*schema.CheckerResult, error) {
	opts := map[string]string{}
	if len(cfg.Ignore) > 0 {
		opts["ignore"] = strings.Join(cfg.Ignore, ",")
	}

	list := registry.Default().List(experimental)
	results := make(map[string]*schema.CheckerResult, len(list))
	for _, c := range list {
		result, err := c.Run(planText, projectDir, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("checker %s: %w", c.ID(), err)
		}
		results[c.ID()] = result
	}
	return list, results, nil
}

// readPlan loads the plan text from a file, or stdin when no file is given.
func readPlan(planFile string) (string, error) {
	if planFile == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read plan from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(planFile)
	if err != nil {
		return "", fmt.Errorf("read plan %s: %w", planFile, err)
	}
	return string(data), nil
}

func printSummary(results map[string]*schema.CheckerResult) {
	checked, hallucinated := 0, 0
	for _, r := range results {
		checked += r.CheckedRefs
		hallucinated += r.Hallucinated
	}
	if hallucinated > 0 {
		color.New(color.FgRed, color.Bold).Printf("%d of %d reference(s) hallucinated\n", hallucinated, checked)
		return
	}
	color.New(color.FgGreen).Printf("All %d reference(s) verified\n", checked)
}
