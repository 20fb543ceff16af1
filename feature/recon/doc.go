// Package recon implements revenue reconciliation for mediated ad
// networks.
//
// The money a network reports in its monthly statements rarely lines up
// row for row with the revenue the auction pipeline recorded. This
// feature closes that loop in four steps, each an independent batch job
// over an explicit time window:
//
//  1. statement: ingest vendor report CSVs into normalized warehouse rows.
//  2. expected: derive per-request expected revenue from receipts and
//     confirmed paid events.
//  3. match: link statement rows to expected records with scored
//     confidence.
//  4. deltas: classify what remains unexplained into typed, evidenced
//     delta records.
//
// # Stages
//
// ExpectedStage, MatchStage and ReconcileStage adapt the window-driven
// steps to the core/pipeline runner so the orchestrator can execute them
// in order with checkpoint resume. Ingestion runs separately on report
// arrival.
//
// # Idempotence
//
// Every write is keyed: statement loads by (network, load_id), expected
// records by request_id. Re-running any stage over the same window is
// safe, which is the property the whole pipeline's crash recovery leans
// on.
package recon
