// Package expected derives per-request expected-revenue records.
//
// A Receipt says an auction should produce revenue; a PaidEvent says the
// network confirmed it. Build joins the two over a time window and writes
// one ExpectedRecord per confirmed request into the transactional store,
// where the matching and reconciliation stages read them back.
//
// Idempotence comes from the unique request_id key: existing records are
// skipped up front and the batch insert conflicts away the remainder, so
// overlapping windows and concurrent runs stay safe.
package expected
