package pipeline

import (
	"context"

	"github.com/rivalapexmediation/reconciler/core/logger"
	"github.com/rivalapexmediation/reconciler/core/warehouse"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps bundles the injected store handles every stage runs against:
// the transactional store, the analytical store, and the run logger.
type Deps struct {
	DB  *gorm.DB
	WH  warehouse.Conn
	Log *zap.Logger
}

// Stage is one step of the reconciliation pipeline.
type Stage interface {
	// Name identifies the stage in logs and the checkpoint file.
	Name() string
	// Run executes the stage against the window in args.
	Run(ctx context.Context, deps Deps, args Args) (Outcome, error)
}

// RunPipeline executes stages sequentially, persisting the checkpoint
// after each one. Success and no-op both advance the loop; the first
// failure stops it. Stages already checkpointed as done under the same
// dry-run value are skipped, which is what makes an interrupted run
// resumable.
func RunPipeline(ctx context.Context, deps Deps, args Args, stages []Stage) (Outcome, error) {
	cp, err := LoadCheckpoint(args.Checkpoint)
	if err != nil {
		return OutcomeFailure, err
	}

	anyWork := false
	for _, stage := range stages {
		log := logger.WithStage(deps.Log, stage.Name())

		if cp.Done(stage.Name(), args.DryRun) {
			log.Info("Stage already completed, skipping")
			continue
		}

		outcome, err := stage.Run(ctx, deps, args)
		if err != nil {
			log.Error("Stage failed", zap.Error(err))
			return OutcomeFailure, err
		}

		cp.MarkDone(stage.Name(), args.DryRun, outcome)
		if err := cp.Save(args.Checkpoint); err != nil {
			return OutcomeFailure, err
		}

		log.Info("Stage finished", zap.String("outcome", outcome.String()))
		if outcome == OutcomeSuccess {
			anyWork = true
		}
	}

	if !anyWork {
		return OutcomeNoOp, nil
	}
	return OutcomeSuccess, nil
}
