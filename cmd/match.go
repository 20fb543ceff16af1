package cmd

import (
	"context"
	"fmt"

	"github.com/rivalapexmediation/reconciler/core/pipeline"
	"github.com/rivalapexmediation/reconciler/feature/recon/match"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// matchCmd links normalized statement rows to expected revenue records.
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match statement rows against expected revenue records",
	Long: `Match normalized statement rows to expected revenue records sharing the
same placement. Each pair is scored on country, format, and day lag;
matches at or above the auto threshold are accepted, the rest are held
for review, and anything below the minimum confidence is discarded.

Examples:
  # Match a three-day window
  reconciler match --from 2026-03-01T00:00:00Z --to 2026-03-04T00:00:00Z

  # Accept only near-certain matches
  reconciler match --from 2026-03-01T00:00:00Z --to 2026-03-04T00:00:00Z --autoThreshold 0.95

  # Keep weaker candidates around for review
  reconciler match --from 2026-03-01T00:00:00Z --to 2026-03-04T00:00:00Z --minConf 0.3`,
	RunE: runMatch,
}

func init() {
	RootCmd.AddCommand(matchCmd)
	addWindowFlags(matchCmd)
	matchCmd.Flags().Float64Var(&flagAutoThreshold, "autoThreshold", pipeline.DefaultAutoThreshold, "Confidence at or above which a match is accepted outright")
	matchCmd.Flags().Float64Var(&flagMinConf, "minConf", pipeline.DefaultMinConf, "Confidence below which a candidate is discarded")
}

func runMatch(cmd *cobra.Command, args []string) error {
	return runStage(cmd, func(ctx context.Context, env *stageEnv, run pipeline.Args) (pipeline.Outcome, error) {
		result, err := match.Run(ctx, env.db, env.wh, env.log, run.From, run.To, match.Options{
			AutoThreshold: run.AutoThreshold,
			MinConf:       run.MinConf,
			DryRun:        run.DryRun,
		})
		if err != nil {
			return pipeline.OutcomeFailure, fmt.Errorf("failed to match statement rows: %w", err)
		}

		env.log.Info("Matching finished",
			zap.Int("rows", result.Rows),
			zap.Int("expected", result.Expected),
			zap.Int("accepted", result.Accepted),
			zap.Int("review", result.Review),
			zap.Int("inserted", result.Inserted),
			zap.Bool("dry_run", run.DryRun),
		)

		if err := pipeline.WriteReport(flagReport, result); err != nil {
			return pipeline.OutcomeFailure, err
		}
		return pipeline.Classify(result.Accepted+result.Review > 0, nil), nil
	})
}
