package pipeline_test

import (
	"errors"
	"testing"

	"github.com/rivalapexmediation/reconciler/core/pipeline"

	"github.com/stretchr/testify/assert"
)

func TestOutcome_ExitCode(t *testing.T) {
	assert.Equal(t, 0, pipeline.OutcomeSuccess.ExitCode())
	assert.Equal(t, 10, pipeline.OutcomeNoOp.ExitCode())
	assert.Equal(t, 20, pipeline.OutcomeFailure.ExitCode())
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "success", pipeline.OutcomeSuccess.String())
	assert.Equal(t, "noop", pipeline.OutcomeNoOp.String())
	assert.Equal(t, "failure", pipeline.OutcomeFailure.String())
}

func TestClassify(t *testing.T) {
	assert.Equal(t, pipeline.OutcomeSuccess, pipeline.Classify(true, nil))
	assert.Equal(t, pipeline.OutcomeNoOp, pipeline.Classify(false, nil))
	assert.Equal(t, pipeline.OutcomeFailure, pipeline.Classify(true, errors.New("store down")))
	assert.Equal(t, pipeline.OutcomeFailure, pipeline.Classify(false, errors.New("store down")))
}
