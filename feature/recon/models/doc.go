// Package models defines the persisted record types of the reconciliation
// core.
//
// GORM structs (Receipt, StatementLoad, ExpectedRecord) map the
// transactional MySQL tables; plain row structs with ch tags map the
// warehouse tables (statement rows, paid events, matches, deltas, FX
// rates, viewability). Receipts and paid events are produced externally
// and never mutated here; everything this core writes is keyed for
// idempotence or written append-only under an explicit non-dry-run mode.
package models
