package pipeline_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rivalapexmediation/reconciler/core/pipeline"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeStage struct {
	name    string
	outcome pipeline.Outcome
	err     error
	runs    *[]string
}

func (s fakeStage) Name() string { return s.name }

func (s fakeStage) Run(ctx context.Context, deps pipeline.Deps, args pipeline.Args) (pipeline.Outcome, error) {
	*s.runs = append(*s.runs, s.name)
	return s.outcome, s.err
}

func testDeps() pipeline.Deps {
	return pipeline.Deps{Log: zap.NewNop()}
}

func TestRunPipeline_Sequential(t *testing.T) {
	var runs []string
	stages := []pipeline.Stage{
		fakeStage{name: "expected", outcome: pipeline.OutcomeSuccess, runs: &runs},
		fakeStage{name: "match", outcome: pipeline.OutcomeNoOp, runs: &runs},
		fakeStage{name: "reconcile", outcome: pipeline.OutcomeSuccess, runs: &runs},
	}

	outcome, err := pipeline.RunPipeline(context.Background(), testDeps(), baseArgs(t), stages)
	assert.NoError(t, err)
	assert.Equal(t, pipeline.OutcomeSuccess, outcome)
	// no-op stages do not stop the run
	assert.Equal(t, []string{"expected", "match", "reconcile"}, runs)
}

func TestRunPipeline_AllNoOp(t *testing.T) {
	var runs []string
	stages := []pipeline.Stage{
		fakeStage{name: "expected", outcome: pipeline.OutcomeNoOp, runs: &runs},
		fakeStage{name: "reconcile", outcome: pipeline.OutcomeNoOp, runs: &runs},
	}

	outcome, err := pipeline.RunPipeline(context.Background(), testDeps(), baseArgs(t), stages)
	assert.NoError(t, err)
	assert.Equal(t, pipeline.OutcomeNoOp, outcome)
}

func TestRunPipeline_StopsOnFailure(t *testing.T) {
	var runs []string
	stages := []pipeline.Stage{
		fakeStage{name: "expected", outcome: pipeline.OutcomeFailure, err: assert.AnError, runs: &runs},
		fakeStage{name: "match", outcome: pipeline.OutcomeSuccess, runs: &runs},
	}

	outcome, err := pipeline.RunPipeline(context.Background(), testDeps(), baseArgs(t), stages)
	assert.Error(t, err)
	assert.Equal(t, pipeline.OutcomeFailure, outcome)
	assert.Equal(t, []string{"expected"}, runs)
}

func TestRunPipeline_ResumesFromCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	args := baseArgs(t)
	args.Checkpoint = path

	var first []string
	stages := []pipeline.Stage{
		fakeStage{name: "expected", outcome: pipeline.OutcomeSuccess, runs: &first},
		fakeStage{name: "match", outcome: pipeline.OutcomeFailure, err: assert.AnError, runs: &first},
		fakeStage{name: "reconcile", outcome: pipeline.OutcomeSuccess, runs: &first},
	}

	_, err := pipeline.RunPipeline(context.Background(), testDeps(), args, stages)
	assert.Error(t, err)
	assert.Equal(t, []string{"expected", "match"}, first)

	// second run skips the completed stage and picks up at the failure
	var second []string
	stages = []pipeline.Stage{
		fakeStage{name: "expected", outcome: pipeline.OutcomeSuccess, runs: &second},
		fakeStage{name: "match", outcome: pipeline.OutcomeSuccess, runs: &second},
		fakeStage{name: "reconcile", outcome: pipeline.OutcomeSuccess, runs: &second},
	}

	outcome, err := pipeline.RunPipeline(context.Background(), testDeps(), args, stages)
	assert.NoError(t, err)
	assert.Equal(t, pipeline.OutcomeSuccess, outcome)
	assert.Equal(t, []string{"match", "reconcile"}, second)
}

func TestRunPipeline_DryRunCheckpointDoesNotSatisfyWetRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")

	dryArgs := baseArgs(t)
	dryArgs.Checkpoint = path
	dryArgs.DryRun = true

	var dryRuns []string
	stages := []pipeline.Stage{
		fakeStage{name: "expected", outcome: pipeline.OutcomeSuccess, runs: &dryRuns},
	}
	_, err := pipeline.RunPipeline(context.Background(), testDeps(), dryArgs, stages)
	assert.NoError(t, err)
	assert.Equal(t, []string{"expected"}, dryRuns)

	wetArgs := baseArgs(t)
	wetArgs.Checkpoint = path

	var wetRuns []string
	stages = []pipeline.Stage{
		fakeStage{name: "expected", outcome: pipeline.OutcomeSuccess, runs: &wetRuns},
	}
	_, err = pipeline.RunPipeline(context.Background(), testDeps(), wetArgs, stages)
	assert.NoError(t, err)
	assert.Equal(t, []string{"expected"}, wetRuns)
}
