// Command plancheck verifies AI-generated coding plans against the ground
// truth of a real codebase.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/plancheck/internal/checkers"
	"github.com/dshills/plancheck/internal/registry"
)

// debugFlag enables development logging across commands.
var debugFlag bool

// logger is built once in the root pre-run.
var logger = zap.NewNop()

func main() {
	// Checker registration happens exactly once at startup. A duplicate id is
	// a programming defect and aborts before any command runs.
	if err := checkers.RegisterAll(registry.Default()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	registry.Default().Freeze()

	root := &cobra.Command{
		Use:   "plancheck",
		Short: "Catch hallucinated references in AI-generated coding plans",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debugFlag {
				if dev, err := zap.NewDevelopment(); err == nil {
					logger = dev
				}
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")

	root.AddCommand(newCheckCmd())
	root.AddCommand(newVerifyCmd())
	root.AddCommand(newBenchCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
