// Package warehouse provides the analytical store connection.
//
// It wraps the ClickHouse native client behind a narrow Conn interface so the
// reconciliation jobs can be unit tested against mocks (core/warehouse/mocks)
// without a running cluster. The warehouse carries the high-volume side of
// the pipeline: normalized statement rows, paid events, match records, and
// the delta records the reconciliation emits.
//
// # Conn Interface
//
//   - Select: scan a result set into a slice of structs.
//   - QueryRow: single-row aggregates (sums, quantiles).
//   - Exec: DDL and mutations.
//   - PrepareBatch: buffered columnar inserts, one Send per batch.
//
// # Schema
//
// InitSchema creates the MergeTree tables if missing. Event tables are
// partitioned by month and expire via TTL; match and delta records are kept
// as the durable audit trail of each run.
//
// # Usage
//
//	conn, err := warehouse.NewConn(cfg.Warehouse)
//	if err != nil {
//	    return err
//	}
//	defer conn.Close()
//
//	if err := warehouse.InitSchema(ctx, conn); err != nil {
//	    log.Warn("Schema initialization skipped", zap.Error(err))
//	}
package warehouse
