// Package statement ingests network revenue reports into the
// reconciliation pipeline.
//
// A report arrives as a CSV export from a mediated network (AdMob, Unity,
// ironSource, AppLovin, ...). Ingestion runs in three steps:
//  1. Registry: rewrite the vendor's header line into the canonical set.
//  2. Parse: normalize rows, collecting per-row errors without aborting.
//  3. Persist: a RawStatementLoad marker in MySQL, the normalized rows in
//     the ClickHouse stmt_rows table.
//
// # Idempotence
//
// The (network, load_id) marker is checked before any work and inserted
// with ON CONFLICT DO NOTHING before the row batch, so re-running an
// ingest skips cleanly with reason "already_loaded" and concurrent runs
// cannot double the row count.
//
// # Archive
//
// Reports live in an object-store archive maintained by the upstream
// collectors. FetchReportCSV pulls a single object; ScanReports walks a
// prefix and returns the keys not yet loaded.
package statement
