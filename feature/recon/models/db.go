package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt represents the 'recon_receipts' table. Rows are produced by the
// auction system for every bid request and are read-only here; they are the
// source of truth for what revenue should occur.
type Receipt struct {
	ID          uint            `gorm:"column:id;primaryKey;autoIncrement"`
	RequestID   string          `gorm:"column:request_id;uniqueIndex"`
	PlacementID string          `gorm:"column:placement_id"` // app_id:ad_unit_id
	TS          time.Time       `gorm:"column:ts;index"`
	FloorCPM    decimal.Decimal `gorm:"column:floor_cpm;type:decimal(12,6)"`
	Currency    string          `gorm:"column:currency"`
	Country     string          `gorm:"column:country"` // from the bid request geo
	Format      string          `gorm:"column:format"`  // banner, interstitial, rewarded
	ReceiptHash string          `gorm:"column:receipt_hash"`
}

// TableName overrides the table name for receipts.
func (Receipt) TableName() string {
	return "recon_receipts"
}

// StatementLoad represents the 'raw_statement_loads' table: the idempotency
// marker for statement ingestion. Existence of a (network, load_id) row
// means the report was already normalized.
type StatementLoad struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Network   string    `gorm:"column:network;uniqueIndex:idx_network_load"`
	LoadID    string    `gorm:"column:load_id;uniqueIndex:idx_network_load"`
	ReportID  string    `gorm:"column:report_id"`
	SchemaVer string    `gorm:"column:schema_ver"`
	RowCount  int       `gorm:"column:row_count"`
	LoadedAt  time.Time `gorm:"column:loaded_at"`
}

// TableName overrides the table name for load markers.
func (StatementLoad) TableName() string {
	return "raw_statement_loads"
}

// ExpectedRecord represents the 'recon_expected' table: what we believe we
// earned per request, derived from a receipt and its matching paid event.
// At most one row exists per request_id.
type ExpectedRecord struct {
	ID            uint            `gorm:"column:id;primaryKey;autoIncrement"`
	RequestID     string          `gorm:"column:request_id;uniqueIndex"`
	PlacementID   string          `gorm:"column:placement_id"`
	ExpectedValue decimal.Decimal `gorm:"column:expected_value;type:decimal(18,6)"` // original currency, 6 decimals
	ExpectedUSD   decimal.Decimal `gorm:"column:expected_usd;type:decimal(18,6)"`
	Currency      string          `gorm:"column:currency"`
	ReceiptTS     time.Time       `gorm:"column:receipt_ts;index"`
	WindowFrom    time.Time       `gorm:"column:window_from"`
	WindowTo      time.Time       `gorm:"column:window_to"`
	BuiltAt       time.Time       `gorm:"column:built_at"`
}

// TableName overrides the table name for expected records.
func (ExpectedRecord) TableName() string {
	return "recon_expected"
}

// RequiredTables lists the transactional tables and the columns each stage
// depends on, for the schema preflight.
func RequiredTables() map[string][]string {
	return map[string][]string{
		"recon_receipts":      {"request_id", "placement_id", "ts", "floor_cpm", "currency", "country", "format", "receipt_hash"},
		"raw_statement_loads": {"network", "load_id", "report_id", "schema_ver", "row_count", "loaded_at"},
		"recon_expected":      {"request_id", "placement_id", "expected_value", "expected_usd", "currency", "receipt_ts", "window_from", "window_to", "built_at"},
	}
}

// PlacementKey builds the placement encoding receipts carry, joining the
// statement dimensions to the auction side.
func PlacementKey(appID, adUnitID string) string {
	return appID + ":" + adUnitID
}
