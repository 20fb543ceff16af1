// Package deltas classifies revenue discrepancies over a time window.
//
// ReconcileWindow decomposes the gap between expected and confirmed
// revenue, then runs statistical checks against trailing baselines:
//
//   - timing_lag: unmatched revenue explains part of the gap, payment is
//     presumed late rather than lost.
//   - underpay: the residual gap exceeds tolerance after accounting for
//     timing.
//   - ivt_outlier: the window's invalid-traffic rate sits above the
//     trailing p95.
//   - fx_mismatch: a currency's average rate drifted from its trailing
//     median.
//   - viewability_gap: OM-SDK measurement and statement claims diverge.
//
// Every delta carries redacted JSON evidence and a reason code. A window
// with zero expected revenue returns immediately without touching the
// warehouse, which keeps scheduled runs over quiet windows nearly free.
package deltas
