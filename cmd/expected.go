package cmd

import (
	"context"
	"fmt"

	"github.com/rivalapexmediation/reconciler/core/pipeline"
	"github.com/rivalapexmediation/reconciler/feature/recon/expected"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// expectedCmd builds expected revenue records from confirmed receipts.
var expectedCmd = &cobra.Command{
	Use:   "expected",
	Short: "Build expected revenue records from confirmed receipts",
	Long: `Build one expected revenue record per auction receipt whose impression
was confirmed by a paid event inside the window. Receipts already covered
by a record are skipped, so rerunning the same window is safe.

Examples:
  # Build records for one day
  reconciler expected --from 2026-03-01T00:00:00Z --to 2026-03-02T00:00:00Z

  # Preview without writing
  reconciler expected --from 2026-03-01T00:00:00Z --to 2026-03-02T00:00:00Z --dry-run

  # Cap the run at 500 receipts
  reconciler expected --from 2026-03-01T00:00:00Z --to 2026-03-02T00:00:00Z --limit 500`,
	RunE: runExpected,
}

func init() {
	RootCmd.AddCommand(expectedCmd)
	addWindowFlags(expectedCmd)
	expectedCmd.Flags().IntVar(&flagLimit, "limit", pipeline.MaxLimit, "Maximum receipts to process in this run")
}

func runExpected(cmd *cobra.Command, args []string) error {
	return runStage(cmd, func(ctx context.Context, env *stageEnv, run pipeline.Args) (pipeline.Outcome, error) {
		result, err := expected.Build(ctx, env.db, env.wh, run.From, run.To, expected.Options{
			Limit:  run.Limit,
			DryRun: run.DryRun,
		})
		if err != nil {
			return pipeline.OutcomeFailure, fmt.Errorf("failed to build expected records: %w", err)
		}

		env.log.Info("Expected build finished",
			zap.Int("seen", result.Seen),
			zap.Int("written", result.Written),
			zap.Int("skipped", result.Skipped),
			zap.Bool("dry_run", run.DryRun),
		)

		if err := pipeline.WriteReport(flagReport, result); err != nil {
			return pipeline.OutcomeFailure, err
		}
		return pipeline.Classify(result.Written > 0, nil), nil
	})
}
