package pipeline

import "time"

const (
	// MaxWindow is the widest window a run may cover without --force --yes.
	MaxWindow = 72 * time.Hour
	// MaxLimit is the receipt cap a run may request without --force --yes.
	MaxLimit = 10000
	// DefaultAutoThreshold is the confidence at which a match is accepted
	// outright.
	DefaultAutoThreshold = 0.9
	// DefaultMinConf is the confidence below which a match is discarded.
	DefaultMinConf = 0.5
)

// Args carries the operator-supplied run parameters shared by the stage
// CLIs. Stages that do not expose a flag still receive its default.
type Args struct {
	From          time.Time
	To            time.Time
	DryRun        bool
	Force         bool
	Yes           bool
	Limit         int
	AutoThreshold float64
	MinConf       float64
	Checkpoint    string
}

// ParseWindow parses the --from/--to flag values. Timestamps must be
// RFC 3339 and from must lie strictly before to.
func ParseWindow(fromStr, toStr string) (time.Time, time.Time, error) {
	from, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, Validationf("invalid --from timestamp %q: expected ISO-8601", fromStr)
	}
	to, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		return time.Time{}, time.Time{}, Validationf("invalid --to timestamp %q: expected ISO-8601", toStr)
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, Validationf("window is inverted: --from %s is not strictly before --to %s",
			from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	return from, to, nil
}

// Validate checks all operator input before any store access. Validation
// failures are checked first; guardrails only apply to otherwise
// well-formed input. A window of exactly three days or a limit of exactly
// the cap passes without force.
func (a Args) Validate() error {
	if a.From.IsZero() || a.To.IsZero() {
		return Validationf("window bounds --from and --to are required")
	}
	if !a.From.Before(a.To) {
		return Validationf("window is inverted: --from %s is not strictly before --to %s",
			a.From.Format(time.RFC3339), a.To.Format(time.RFC3339))
	}
	if a.AutoThreshold < 0 || a.AutoThreshold > 1 {
		return Validationf("--autoThreshold %g is out of range [0,1]", a.AutoThreshold)
	}
	if a.MinConf < 0 || a.MinConf > 1 {
		return Validationf("--minConf %g is out of range [0,1]", a.MinConf)
	}
	if a.Limit <= 0 {
		return Validationf("--limit must be a positive integer, got %d", a.Limit)
	}

	forced := a.Force && a.Yes
	if a.To.Sub(a.From) > MaxWindow && !forced {
		return Guardrailf("window of %s exceeds 3 days; rerun with --force --yes to proceed", a.To.Sub(a.From))
	}
	if a.Limit > MaxLimit && !forced {
		return Guardrailf("--limit %d exceeds the cap of %d; rerun with --force --yes to proceed", a.Limit, MaxLimit)
	}
	return nil
}
