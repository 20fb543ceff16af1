package match

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rivalapexmediation/reconciler/core/warehouse"
	"github.com/rivalapexmediation/reconciler/feature/recon/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxLagDays bounds how far a receipt may sit from a statement row's
// event date and still be a candidate.
const maxLagDays = 2

const insertMatchRecords = "INSERT INTO match_records"

const selectStatementRows = `SELECT event_date, app_id, ad_unit_id, country, format, currency,
	impressions, clicks, paid, ivt_adjustments, report_id, network, schema_ver, loaded_at
FROM stmt_rows
WHERE event_date >= toDate(?) AND event_date < toDate(?)
ORDER BY event_date, app_id, ad_unit_id, country, format, report_id`

const selectFxRates = `SELECT day, currency, rate
FROM fx_rates FINAL
WHERE day >= toDate(?) AND day < toDate(?)`

// Candidate is one expected record eligible to explain a statement row,
// carrying the receipt dimensions the record itself does not store.
type Candidate struct {
	Record  models.ExpectedRecord
	Country string
	Format  string
}

// Scorer scores how well a candidate explains a statement row. Results
// must be deterministic and stay within [0, 1].
type Scorer func(row models.NormalizedStatementRow, cand Candidate, lagDays int) float64

// DimensionScorer weighs dimensional agreement and day lag: matching
// country and format are worth 0.2 each, recency the remaining 0.6.
func DimensionScorer(row models.NormalizedStatementRow, cand Candidate, lagDays int) float64 {
	score := 0.0
	if row.Country == cand.Country {
		score += 0.2
	}
	if row.Format == cand.Format {
		score += 0.2
	}
	recency := 1.0 - float64(lagDays)/3.0
	if recency < 0 {
		recency = 0
	}
	return score + 0.6*recency
}

// Options tunes one matching run. Thresholds arrive validated from the
// command boundary; Scorer falls back to DimensionScorer when nil.
type Options struct {
	AutoThreshold float64
	MinConf       float64
	DryRun        bool
	Scorer        Scorer
}

// Result reports the outcome of one matching run.
type Result struct {
	Rows     int `json:"rows"`
	Expected int `json:"expected"`
	Accepted int `json:"accepted"`
	Review   int `json:"review"`
	Inserted int `json:"inserted"`
}

// Run matches statement rows in [from, to) against expected records.
//
// Candidates share the row's placement and sit within maxLagDays of its
// event date. Every candidate at or above MinConf survives; at or above
// AutoThreshold it is accepted outright, below that it is flagged for
// review. Each expected record is claimed by at most one row, and a row's
// paid revenue converts to USD and splits equally across its surviving
// matches. Nothing is persisted under dry-run.
func Run(ctx context.Context, db *gorm.DB, wh warehouse.Conn, logger *zap.Logger, from, to time.Time, opts Options) (*Result, error) {
	scorer := opts.Scorer
	if scorer == nil {
		scorer = DimensionScorer
	}

	var rows []models.NormalizedStatementRow
	if err := wh.Select(ctx, &rows, selectStatementRows, from, to); err != nil {
		return nil, fmt.Errorf("failed to fetch statement rows: %w", err)
	}

	var records []models.ExpectedRecord
	err := db.WithContext(ctx).
		Where("receipt_ts >= ? AND receipt_ts < ?", from, to).
		Order("receipt_ts, request_id").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expected records: %w", err)
	}

	result := &Result{Rows: len(rows), Expected: len(records)}
	if len(rows) == 0 || len(records) == 0 {
		return result, nil
	}

	dims, err := receiptDimensions(ctx, db, records)
	if err != nil {
		return nil, err
	}

	rates, err := fxRates(ctx, wh, logger, from, to)
	if err != nil {
		return nil, err
	}

	// Index candidates by placement, preserving the deterministic record
	// order.
	index := make(map[string][]*Candidate, len(records))
	for _, rec := range records {
		d := dims[rec.RequestID]
		index[rec.PlacementID] = append(index[rec.PlacementID], &Candidate{
			Record:  rec,
			Country: d.country,
			Format:  d.format,
		})
	}

	claimed := make(map[string]bool, len(records))
	createdAt := time.Now().UTC()
	var matches []models.MatchRecord

	for _, row := range rows {
		key := models.PlacementKey(row.AppID, row.AdUnitID)

		type scored struct {
			cand       *Candidate
			confidence float64
		}
		var survivors []scored
		for _, cand := range index[key] {
			if claimed[cand.Record.RequestID] {
				continue
			}
			lag := lagDays(row.EventDate, cand.Record.ReceiptTS)
			if lag > maxLagDays {
				continue
			}
			confidence := scorer(row, *cand, lag)
			if confidence < opts.MinConf {
				continue
			}
			survivors = append(survivors, scored{cand: cand, confidence: confidence})
		}
		if len(survivors) == 0 {
			continue
		}
		sort.SliceStable(survivors, func(i, j int) bool {
			if survivors[i].confidence != survivors[j].confidence {
				return survivors[i].confidence > survivors[j].confidence
			}
			return survivors[i].cand.Record.RequestID < survivors[j].cand.Record.RequestID
		})

		paidUSD := rates.toUSD(row.Paid, row.Currency, row.EventDate)
		share := paidUSD.Div(decimal.NewFromInt(int64(len(survivors)))).Round(6)

		for _, s := range survivors {
			claimed[s.cand.Record.RequestID] = true
			status := models.MatchStatusReview
			if s.confidence >= opts.AutoThreshold {
				status = models.MatchStatusAccepted
				result.Accepted++
			} else {
				result.Review++
			}
			matches = append(matches, models.MatchRecord{
				MatchID:    uuid.NewString(),
				RequestID:  s.cand.Record.RequestID,
				ReportID:   row.ReportID,
				EventDate:  row.EventDate,
				AppID:      row.AppID,
				AdUnitID:   row.AdUnitID,
				Country:    row.Country,
				Format:     row.Format,
				Confidence: s.confidence,
				Status:     status,
				PaidUSD:    share,
				WindowFrom: from,
				WindowTo:   to,
				CreatedAt:  createdAt,
			})
		}
	}

	if opts.DryRun || len(matches) == 0 {
		return result, nil
	}

	batch, err := wh.PrepareBatch(ctx, insertMatchRecords)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare match batch: %w", err)
	}
	for _, m := range matches {
		err := batch.Append(
			m.MatchID, m.RequestID, m.ReportID, m.EventDate, m.AppID,
			m.AdUnitID, m.Country, m.Format, m.Confidence, m.Status,
			m.PaidUSD, m.WindowFrom, m.WindowTo, m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to append match record: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return nil, fmt.Errorf("failed to send match batch: %w", err)
	}
	result.Inserted = len(matches)
	return result, nil
}

type receiptDims struct {
	country string
	format  string
}

// receiptDimensions loads country and format for the records' receipts.
func receiptDimensions(ctx context.Context, db *gorm.DB, records []models.ExpectedRecord) (map[string]receiptDims, error) {
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.RequestID
	}

	var receipts []models.Receipt
	err := db.WithContext(ctx).
		Select("request_id", "country", "format").
		Where("request_id IN ?", ids).
		Find(&receipts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch receipt dimensions: %w", err)
	}

	dims := make(map[string]receiptDims, len(receipts))
	for _, r := range receipts {
		dims[r.RequestID] = receiptDims{country: r.Country, format: r.Format}
	}
	return dims, nil
}

// rateTable holds day-grain FX rates keyed by "YYYY-MM-DD|CUR".
type rateTable struct {
	rates  map[string]float64
	logger *zap.Logger
}

// fxRates loads the window's day rates once per run.
func fxRates(ctx context.Context, wh warehouse.Conn, logger *zap.Logger, from, to time.Time) (*rateTable, error) {
	var rows []models.FxRateRow
	if err := wh.Select(ctx, &rows, selectFxRates, from, to); err != nil {
		return nil, fmt.Errorf("failed to fetch fx rates: %w", err)
	}

	table := &rateTable{rates: make(map[string]float64, len(rows)), logger: logger}
	for _, row := range rows {
		table.rates[rateKey(row.Day, row.Currency)] = row.Rate
	}
	return table, nil
}

// toUSD converts an amount on a given day, falling back to 1:1 when no
// rate is on file so a gap in fx_rates degrades instead of aborting.
func (t *rateTable) toUSD(amount decimal.Decimal, currency string, day time.Time) decimal.Decimal {
	if currency == "" || currency == "USD" {
		return amount
	}
	rate, ok := t.rates[rateKey(day, currency)]
	if !ok {
		t.logger.Warn("no fx rate on file, assuming 1:1",
			zap.String("currency", currency),
			zap.String("day", day.Format("2006-01-02")))
		return amount
	}
	return amount.Mul(decimal.NewFromFloat(rate))
}

func rateKey(day time.Time, currency string) string {
	return day.Format("2006-01-02") + "|" + currency
}

// lagDays measures whole days between a statement event date and a
// receipt timestamp, ignoring the intraday part.
func lagDays(eventDate, receiptTS time.Time) int {
	e := time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), 0, 0, 0, 0, time.UTC)
	r := time.Date(receiptTS.Year(), receiptTS.Month(), receiptTS.Day(), 0, 0, 0, 0, time.UTC)
	diff := e.Sub(r)
	if diff < 0 {
		diff = -diff
	}
	return int(diff / (24 * time.Hour))
}
