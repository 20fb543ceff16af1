package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Delta kinds a reconciliation run can classify.
const (
	DeltaUnderpay       = "underpay"
	DeltaMissing        = "missing"
	DeltaViewabilityGap = "viewability_gap"
	DeltaIvtOutlier     = "ivt_outlier"
	DeltaFxMismatch     = "fx_mismatch"
	DeltaTimingLag      = "timing_lag"
)

// Match statuses.
const (
	MatchStatusAccepted = "accepted"
	MatchStatusReview   = "review"
)

// NormalizedStatementRow is one canonical statement line in the warehouse
// 'stmt_rows' table: a network's reported revenue per app/ad-unit/country/
// format/day. Append-only, produced once per (network, load_id).
type NormalizedStatementRow struct {
	EventDate      time.Time       `ch:"event_date"`
	AppID          string          `ch:"app_id"`
	AdUnitID       string          `ch:"ad_unit_id"`
	Country        string          `ch:"country"`
	Format         string          `ch:"format"`
	Currency       string          `ch:"currency"`
	Impressions    int64           `ch:"impressions"`
	Clicks         int64           `ch:"clicks"`
	Paid           decimal.Decimal `ch:"paid"`
	IvtAdjustments int64           `ch:"ivt_adjustments"`
	ReportID       string          `ch:"report_id"`
	Network        string          `ch:"network"`
	SchemaVer      string          `ch:"schema_ver"`
	LoadedAt       time.Time       `ch:"loaded_at"`
}

// PaidEventRow is an observed revenue confirmation in the warehouse
// 'paid_events' table, tied to a request by the network callback pipeline.
// Read-only here; multiple events may reference one request.
type PaidEventRow struct {
	RequestID       string          `ch:"request_id"`
	TS              time.Time       `ch:"ts"`
	RevenueUSD      decimal.Decimal `ch:"revenue_usd"`
	RevenueOriginal decimal.Decimal `ch:"revenue_original"`
	RevenueCurrency string          `ch:"revenue_currency"`
}

// MatchRecord links a statement row to an expected record with a scored
// confidence. Written to the warehouse 'match_records' table, never under
// dry-run.
type MatchRecord struct {
	MatchID    string          `ch:"match_id"`
	RequestID  string          `ch:"request_id"`
	ReportID   string          `ch:"report_id"`
	EventDate  time.Time       `ch:"event_date"`
	AppID      string          `ch:"app_id"`
	AdUnitID   string          `ch:"ad_unit_id"`
	Country    string          `ch:"country"`
	Format     string          `ch:"format"`
	Confidence float64         `ch:"confidence"`
	Status     string          `ch:"status"`
	PaidUSD    decimal.Decimal `ch:"paid_usd"`
	WindowFrom time.Time       `ch:"window_from"`
	WindowTo   time.Time       `ch:"window_to"`
	CreatedAt  time.Time       `ch:"created_at"`
}

// DeltaRecord is one classified discrepancy in the warehouse
// 'delta_records' table, tagged with a root-cause kind and redacted
// evidence. Written only under non-dry-run.
type DeltaRecord struct {
	DeltaID     string          `ch:"delta_id"`
	Kind        string          `ch:"kind"`
	Amount      decimal.Decimal `ch:"amount"`
	Currency    string          `ch:"currency"`
	WindowStart time.Time       `ch:"window_start"`
	WindowEnd   time.Time       `ch:"window_end"`
	EvidenceID  string          `ch:"evidence_id"`
	Evidence    string          `ch:"evidence"`
	Confidence  float64         `ch:"confidence"`
	ReasonCode  string          `ch:"reason_code"`
	CreatedAt   time.Time       `ch:"created_at"`
}

// FxRateRow is one day's conversion rate for a currency in the warehouse
// 'fx_rates' table, maintained by the settlement pipeline.
type FxRateRow struct {
	Day      time.Time `ch:"day"`
	Currency string    `ch:"currency"`
	Rate     float64   `ch:"rate"`
}
