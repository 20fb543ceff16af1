package cmd

import (
	"context"
	"fmt"

	"github.com/rivalapexmediation/reconciler/core/pipeline"
	"github.com/rivalapexmediation/reconciler/feature/recon/deltas"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// reconcileCmd classifies revenue deltas over a window.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Classify revenue deltas between expected and paid amounts",
	Long: `Compare expected revenue against matched statement revenue for the
window and record one delta per anomaly found: timing lag, underpayment,
IVT spikes, FX drift, and viewability divergence. A window with no
expected revenue produces no deltas.

Examples:
  # Reconcile one day
  reconciler reconcile --from 2026-03-01T00:00:00Z --to 2026-03-02T00:00:00Z

  # Preview the deltas without recording them
  reconciler reconcile --from 2026-03-01T00:00:00Z --to 2026-03-02T00:00:00Z --dry-run

  # Write the run report for the finance export
  reconciler reconcile --from 2026-03-01T00:00:00Z --to 2026-03-02T00:00:00Z --report run.json`,
	RunE: runReconcile,
}

func init() {
	RootCmd.AddCommand(reconcileCmd)
	addWindowFlags(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	return runStage(cmd, func(ctx context.Context, env *stageEnv, run pipeline.Args) (pipeline.Outcome, error) {
		result, err := deltas.ReconcileWindow(ctx, env.db, env.wh, env.log, run.From, run.To, deltas.Options{
			DryRun: run.DryRun,
		})
		if err != nil {
			return pipeline.OutcomeFailure, fmt.Errorf("failed to reconcile window: %w", err)
		}

		env.log.Info("Reconciliation finished",
			zap.Int("deltas", result.Deltas),
			zap.Int("inserted", result.Inserted),
			zap.String("expected_usd", result.Amounts.ExpectedUSD.String()),
			zap.String("paid_usd", result.Amounts.PaidUSD.String()),
			zap.String("unmatched_usd", result.Amounts.UnmatchedUSD.String()),
			zap.String("underpay_usd", result.Amounts.UnderpayUSD.String()),
			zap.String("timing_lag_usd", result.Amounts.TimingLagUSD.String()),
			zap.Bool("dry_run", run.DryRun),
		)

		if err := pipeline.WriteReport(flagReport, result); err != nil {
			return pipeline.OutcomeFailure, err
		}
		return pipeline.Classify(result.Deltas > 0, nil), nil
	})
}
