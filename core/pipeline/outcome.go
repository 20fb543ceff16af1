package pipeline

// Outcome is the tri-state result of a stage run. Business logic deals in
// Outcomes; only the CLI boundary turns them into process exit codes.
type Outcome int

const (
	// OutcomeSuccess means the stage performed work.
	OutcomeSuccess Outcome = iota
	// OutcomeNoOp means the run was valid but found nothing to do.
	OutcomeNoOp
	// OutcomeFailure means validation, guardrail, or store failure.
	OutcomeFailure
)

// Exit codes shared by every stage CLI.
const (
	ExitSuccess = 0
	ExitNoOp    = 10
	ExitFailure = 20
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNoOp:
		return "noop"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// ExitCode maps the outcome to the stage CLI exit code.
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeSuccess:
		return ExitSuccess
	case OutcomeNoOp:
		return ExitNoOp
	default:
		return ExitFailure
	}
}

// Classify folds a stage result into an Outcome. Any error is a failure;
// an error-free run that performed no logical work is a no-op.
func Classify(workDone bool, err error) Outcome {
	if err != nil {
		return OutcomeFailure
	}
	if !workDone {
		return OutcomeNoOp
	}
	return OutcomeSuccess
}
