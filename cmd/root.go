package cmd

import (
	"fmt"
	"os"

	"github.com/rivalapexmediation/reconciler/core/logger"
	"github.com/rivalapexmediation/reconciler/core/pipeline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// exitCode carries the outcome of a completed stage run into Execute.
// Stage commands overwrite it; errors bypass it entirely.
var exitCode = pipeline.ExitSuccess

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "reconciler",
	Short: "Revenue Reconciliation Pipeline",
	Long: `Reconciler closes the loop between network revenue statements and the
auction pipeline's own records. Each subcommand runs one reconciliation
stage as an independent batch job over an explicit time window.

Exit codes are uniform across stages: 0 success, 10 valid-but-no-op,
20 validation, guardrail, or store failure.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Debug-level config gets the console encoder with readable
		// timestamps, which is what a CLI user expects for errors
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(pipeline.ExitFailure)
	}
	if exitCode != pipeline.ExitSuccess {
		os.Exit(exitCode)
	}
}
