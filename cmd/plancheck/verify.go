package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/plancheck/internal/checkers"
	"github.com/dshills/plancheck/internal/config"
	"github.com/dshills/plancheck/internal/groundtruth"
	"github.com/dshills/plancheck/internal/llm"
	"github.com/dshills/plancheck/internal/render"
	"github.com/dshills/plancheck/internal/schema"
	"github.com/dshills/plancheck/internal/session"
	"github.com/dshills/plancheck/internal/telemetry"
)

// maxReferencedFileBytes caps how much of each plan-referenced file is
// included in the reviewer context.
const maxReferencedFileBytes = 8 * 1024

func newVerifyCmd() *cobra.Command {
	var planFile string
	var experimental bool
	var providerFlag, modelFlag string

	cmd := &cobra.Command{
		Use:   "verify [project-dir]",
		Short: "Run checkers, then stream an LLM review of the plan with findings as context",
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
			if providerFlag != "" {
				cfg.Provider = providerFlag
			}
			if modelFlag != "" {
				cfg.Model = modelFlag
			}
			planText, err := readPlan(planFile)
			if err != nil {
				return err
			}

			list, results, err := runCheckers(planText, projectDir, cfg, experimental || cfg.Experimental)
			if err != nil {
				return err
			}

			findings, _ := render.FindingsSection(list, results)
			store := session.NewStore(config.StateDir(), logger)
			input := llm.ContextInput{
				PlanText:        planText,
				Findings:        findings,
				PriorFeedback:   priorFeedback(store.Load(projectDir)),
				Docs:            readDocs(projectDir),
				ReferencedFiles: referencedFiles(projectDir, results),
				TreeSummary:     treeSummary(projectDir, cfg.Ignore),
			}

			feedback, usage, err := llm.Review(cmd.Context(), input, llm.Options{
				Provider:      cfg.Provider,
				Model:         cfg.Model,
				MaxTokens:     cfg.MaxTokens,
				Temperature:   cfg.Temperature,
				ContextTokens: cfg.ContextTokens,
				OnDelta:       func(text string) { fmt.Print(text) },
			})
			if err != nil {
				// A failed completion never writes session or telemetry state.
				color.New(color.FgRed).Fprintln(os.Stderr, llm.UserMessage(err))
				os.Exit(3)
			}
			fmt.Println()
			fmt.Fprintf(os.Stderr, "tokens: %d in / %d out\n", usage.InputTokens, usage.OutputTokens)

			store.Append(projectDir, planText, feedback)
			entry := telemetry.BuildEntry(projectDir, list, results)
			telemetry.New(config.StateDir(), logger).LogCatch(entry)
			return nil
		},
	}
	cmd.Flags().StringVar(&planFile, "plan", "", "plan file to verify (default: stdin)")
	cmd.Flags().BoolVar(&experimental, "experimental", false, "include experimental checkers")
	cmd.Flags().StringVar(&providerFlag, "provider", "", "LLM provider (anthropic, openai, google)")
	cmd.Flags().StringVar(&modelFlag, "model", "", "model name override")
	return cmd
}

// priorFeedback renders the most recent session feedback, newest last.
func priorFeedback(entries []schema.SessionEntry) string {
	if len(entries) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, "[%s] plan: %s\n%s\n\n",
			e.Timestamp.Format("2006-01-02"), e.PlanSnippet, e.Feedback)
	}
	return sb.String()
}

// readDocs returns the project README, if any.
func readDocs(projectDir string) string {
	for _, name := range []string{"README.md", "README.rst", "README.txt", "README"} {
		data, err := os.ReadFile(filepath.Join(projectDir, name))
		if err == nil {
			return string(data)
		}
	}
	return ""
}

// referencedFiles returns the contents of valid plan-referenced paths,
// size-capped per file, for reviewer context.
func referencedFiles(projectDir string, results map[string]*schema.CheckerResult) string {
	pathsResult, ok := results["paths"]
	if !ok || !pathsResult.Applicable {
		return ""
	}
	analysis, ok := pathsResult.Analysis.(*checkers.PathsAnalysis)
	if !ok {
		return ""
	}
	var sb strings.Builder
	for _, rel := range analysis.Valid {
		data, err := os.ReadFile(filepath.Join(projectDir, filepath.FromSlash(rel)))
		if err != nil {
			continue
		}
		if len(data) > maxReferencedFileBytes {
			data = data[:maxReferencedFileBytes]
		}
		fmt.Fprintf(&sb, "--- %s ---\n%s\n", rel, data)
	}
	return sb.String()
}

func treeSummary(projectDir string, ignore []string) string {
	tree, err := groundtruth.BuildTree(projectDir, ignore)
	if err != nil {
		return ""
	}
	return tree.TreeSummary()
}
