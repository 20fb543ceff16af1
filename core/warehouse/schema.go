package warehouse

import "context"

// Table DDL for the analytical side of the reconciliation pipeline.
// Statements, paid events, and derived match/delta records are append-only
// MergeTree tables partitioned by month.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS stmt_rows (
		event_date Date,
		app_id String,
		ad_unit_id String,
		country LowCardinality(String),
		format LowCardinality(String),
		currency LowCardinality(String),
		impressions Int64,
		clicks Int64,
		paid Decimal(18, 6),
		ivt_adjustments Int64,
		report_id String,
		network LowCardinality(String),
		schema_ver LowCardinality(String),
		loaded_at DateTime
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMM(event_date)
	ORDER BY (network, event_date, app_id, ad_unit_id)
	TTL event_date + INTERVAL 365 DAY`,

	`CREATE TABLE IF NOT EXISTS paid_events (
		request_id String,
		ts DateTime,
		revenue_usd Decimal(18, 6),
		revenue_original Decimal(18, 6),
		revenue_currency LowCardinality(String),
		date Date MATERIALIZED toDate(ts)
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMM(date)
	ORDER BY (date, request_id)
	TTL date + INTERVAL 90 DAY`,

	`CREATE TABLE IF NOT EXISTS match_records (
		match_id String,
		request_id String,
		report_id String,
		event_date Date,
		app_id String,
		ad_unit_id String,
		country LowCardinality(String),
		format LowCardinality(String),
		confidence Float64,
		status LowCardinality(String),
		paid_usd Decimal(18, 6),
		window_from DateTime,
		window_to DateTime,
		created_at DateTime
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMM(event_date)
	ORDER BY (event_date, request_id)`,

	`CREATE TABLE IF NOT EXISTS delta_records (
		delta_id String,
		kind LowCardinality(String),
		amount Decimal(18, 6),
		currency LowCardinality(String),
		window_start DateTime,
		window_end DateTime,
		evidence_id String,
		evidence String,
		confidence Float64,
		reason_code LowCardinality(String),
		created_at DateTime
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMM(window_start)
	ORDER BY (window_start, kind)`,

	`CREATE TABLE IF NOT EXISTS fx_rates (
		day Date,
		currency LowCardinality(String),
		rate Float64
	) ENGINE = ReplacingMergeTree()
	ORDER BY (day, currency)`,

	`CREATE TABLE IF NOT EXISTS viewability_stats (
		event_date Date,
		network LowCardinality(String),
		om_viewable_rate Float64,
		stmt_viewable_rate Float64
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMM(event_date)
	ORDER BY (event_date, network)`,
}

// InitSchema creates the analytical tables if they do not exist. Stage
// runners call it best-effort at startup; a failure is reported to the
// caller, who decides whether it is fatal.
func InitSchema(ctx context.Context, conn Conn) error {
	for _, ddl := range schemaStatements {
		if err := conn.Exec(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}
