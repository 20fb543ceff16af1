package recon

import (
	"context"

	"github.com/rivalapexmediation/reconciler/core/pipeline"
	"github.com/rivalapexmediation/reconciler/feature/recon/deltas"
	"github.com/rivalapexmediation/reconciler/feature/recon/expected"
	"github.com/rivalapexmediation/reconciler/feature/recon/match"

	"go.uber.org/zap"
)

// ExpectedStage derives expected-revenue records for the window.
type ExpectedStage struct{}

// Name identifies the stage.
func (ExpectedStage) Name() string { return "expected" }

// Run executes the expected builder.
func (ExpectedStage) Run(ctx context.Context, deps pipeline.Deps, args pipeline.Args) (pipeline.Outcome, error) {
	result, err := expected.Build(ctx, deps.DB, deps.WH, args.From, args.To, expected.Options{
		Limit:  args.Limit,
		DryRun: args.DryRun,
	})
	if err != nil {
		return pipeline.OutcomeFailure, err
	}
	deps.Log.Info("Expected records built",
		zap.Int("seen", result.Seen),
		zap.Int("written", result.Written),
		zap.Int("skipped", result.Skipped),
		zap.Bool("dry_run", args.DryRun))
	if result.Written == 0 {
		return pipeline.OutcomeNoOp, nil
	}
	return pipeline.OutcomeSuccess, nil
}

// MatchStage links statement rows to expected records.
type MatchStage struct{}

// Name identifies the stage.
func (MatchStage) Name() string { return "match" }

// Run executes the matching batch.
func (MatchStage) Run(ctx context.Context, deps pipeline.Deps, args pipeline.Args) (pipeline.Outcome, error) {
	result, err := match.Run(ctx, deps.DB, deps.WH, deps.Log, args.From, args.To, match.Options{
		AutoThreshold: args.AutoThreshold,
		MinConf:       args.MinConf,
		DryRun:        args.DryRun,
	})
	if err != nil {
		return pipeline.OutcomeFailure, err
	}
	deps.Log.Info("Matching batch finished",
		zap.Int("rows", result.Rows),
		zap.Int("accepted", result.Accepted),
		zap.Int("review", result.Review),
		zap.Int("inserted", result.Inserted),
		zap.Bool("dry_run", args.DryRun))
	if result.Accepted+result.Review == 0 {
		return pipeline.OutcomeNoOp, nil
	}
	return pipeline.OutcomeSuccess, nil
}

// ReconcileStage classifies revenue deltas over the window.
type ReconcileStage struct{}

// Name identifies the stage.
func (ReconcileStage) Name() string { return "reconcile" }

// Run executes the delta classifier.
func (ReconcileStage) Run(ctx context.Context, deps pipeline.Deps, args pipeline.Args) (pipeline.Outcome, error) {
	result, err := deltas.ReconcileWindow(ctx, deps.DB, deps.WH, deps.Log, args.From, args.To, deltas.Options{
		DryRun: args.DryRun,
	})
	if err != nil {
		return pipeline.OutcomeFailure, err
	}
	deps.Log.Info("Reconciliation finished",
		zap.Int("deltas", result.Deltas),
		zap.Int("inserted", result.Inserted),
		zap.String("expected_usd", result.Amounts.ExpectedUSD.String()),
		zap.String("paid_usd", result.Amounts.PaidUSD.String()),
		zap.Bool("dry_run", args.DryRun))
	if result.Deltas == 0 {
		return pipeline.OutcomeNoOp, nil
	}
	return pipeline.OutcomeSuccess, nil
}

// Stages returns the pipeline stages in execution order. Ingestion is not
// listed: reports arrive on vendor schedules and are loaded by the ingest
// command as they land, while these stages run per window.
func Stages() []pipeline.Stage {
	return []pipeline.Stage{ExpectedStage{}, MatchStage{}, ReconcileStage{}}
}
