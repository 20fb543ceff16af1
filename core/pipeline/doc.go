// Package pipeline provides the shared run machinery for the stage CLIs.
//
// # Args and Guardrails
//
// Every stage runs against a [from, to) window with a shared flag set.
// Args.Validate enforces the input contract before any store access:
// timestamps must be RFC 3339 with from strictly before to, thresholds in
// [0,1], and a positive limit. Windows wider than three days and limits
// above 10,000 receipts are refused unless the run carries both --force
// and --yes.
//
// # Outcomes
//
// Stage results are modeled as a tri-state Outcome (success, no-op,
// failure) and mapped to the uniform exit codes 0/10/20 only at the CLI
// boundary. A duplicate statement load and an empty window are both
// no-ops, not errors.
//
// # Pipeline and Checkpoint
//
// RunPipeline executes the stages of a full reconciliation run in order,
// writing a JSON checkpoint after each stage. Re-running with the same
// checkpoint file resumes at the first stage not yet completed under the
// same dry-run value.
package pipeline
