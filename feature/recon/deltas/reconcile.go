package deltas

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/rivalapexmediation/reconciler/core/redact"
	"github.com/rivalapexmediation/reconciler/core/warehouse"
	"github.com/rivalapexmediation/reconciler/feature/recon/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Tolerances. The underpay tolerance is the larger of a fixed floor and a
// fraction of expected revenue; the statistical checks compare against a
// band around their baseline. Equality at any edge never emits.
var (
	absTolUSD = decimal.NewFromInt(2)
	pctTol    = decimal.NewFromFloat(0.02)
)

const (
	ivtBand          = 0.02
	fxBand           = 0.005
	viewabilityBand  = 0.15
	baselineLookback = 30 * 24 * time.Hour
)

// Confidence levels: the underpay and timing-lag checks are exact
// arithmetic, the remaining checks are statistical.
const (
	arithmeticConfidence  = 1.0
	statisticalConfidence = 0.8
)

const insertDeltaRecords = "INSERT INTO delta_records"

const (
	selectPaidSum = `SELECT SUM(paid_usd) FROM match_records
WHERE status = ? AND event_date >= toDate(?) AND event_date < toDate(?)`

	selectAcceptedIDs = `SELECT DISTINCT request_id FROM match_records
WHERE status = ? AND event_date >= toDate(?) AND event_date < toDate(?)`

	selectIvtBaseline = `SELECT quantile(0.95)(daily_rate) FROM (
	SELECT SUM(ivt_adjustments) / SUM(impressions) AS daily_rate
	FROM stmt_rows
	WHERE event_date >= toDate(?) AND event_date < toDate(?)
	GROUP BY event_date
	HAVING SUM(impressions) > 0
)`

	selectIvtCurrent = `SELECT SUM(ivt_adjustments), SUM(impressions) FROM stmt_rows
WHERE event_date >= toDate(?) AND event_date < toDate(?)`

	selectFxBaseline = `SELECT currency, median(rate) AS rate FROM fx_rates FINAL
WHERE day >= toDate(?) AND day < toDate(?)
GROUP BY currency
ORDER BY currency`

	selectFxCurrent = `SELECT currency, avg(rate) AS rate FROM fx_rates FINAL
WHERE day >= toDate(?) AND day < toDate(?)
GROUP BY currency
ORDER BY currency`

	selectViewability = `SELECT avg(om_viewable_rate), avg(stmt_viewable_rate), count() FROM viewability_stats
WHERE event_date >= toDate(?) AND event_date < toDate(?)`
)

// Options tunes one reconciliation run.
type Options struct {
	DryRun bool
}

// Amounts carries the run's aggregate dollar figures. UnderpayUSD and
// TimingLagUSD are zero when their delta did not emit.
type Amounts struct {
	ExpectedUSD  decimal.Decimal `json:"expectedUsd"`
	PaidUSD      decimal.Decimal `json:"paidUsd"`
	UnmatchedUSD decimal.Decimal `json:"unmatchedUsd"`
	UnderpayUSD  decimal.Decimal `json:"underpayUsd"`
	TimingLagUSD decimal.Decimal `json:"timingLagUsd"`
}

// Result reports one reconciliation run. Deltas counts the checks that
// emitted a record; Inserted is what actually reached the warehouse.
type Result struct {
	Inserted int     `json:"inserted"`
	Deltas   int     `json:"deltas"`
	Amounts  Amounts `json:"amounts"`
}

type currencyRate struct {
	Currency string  `ch:"currency"`
	Rate     float64 `ch:"rate"`
}

type requestID struct {
	RequestID string `ch:"request_id"`
}

// ReconcileWindow classifies revenue discrepancies in [from, to) into
// delta records, running five checks in order: timing lag, underpay, IVT
// outlier, FX mismatch, viewability gap. Each check contributes at most
// one record. A window with zero expected revenue short-circuits before
// any warehouse query. Under dry-run every statement issued is a SELECT
// and nothing is persisted.
func ReconcileWindow(ctx context.Context, db *gorm.DB, wh warehouse.Conn, logger *zap.Logger, from, to time.Time, opts Options) (*Result, error) {
	r := &runner{
		db:        db,
		wh:        wh,
		logger:    logger,
		from:      from,
		to:        to,
		createdAt: time.Now().UTC(),
	}

	expectedUSD, err := r.expectedSum(ctx)
	if err != nil {
		return nil, err
	}
	result := &Result{Amounts: Amounts{
		ExpectedUSD:  expectedUSD,
		PaidUSD:      decimal.Zero,
		UnmatchedUSD: decimal.Zero,
		UnderpayUSD:  decimal.Zero,
		TimingLagUSD: decimal.Zero,
	}}
	if expectedUSD.IsZero() {
		return result, nil
	}

	paidUSD, err := r.paidSum(ctx)
	if err != nil {
		return nil, err
	}
	unmatchedUSD, err := r.unmatchedSum(ctx, expectedUSD)
	if err != nil {
		return nil, err
	}
	result.Amounts.PaidUSD = paidUSD
	result.Amounts.UnmatchedUSD = unmatchedUSD

	// Timing lag and underpay share one gap decomposition: revenue still
	// unmatched is presumed late, anything beyond that and the tolerance
	// is genuinely underpaid.
	gap := decimal.Max(expectedUSD.Sub(paidUSD), decimal.Zero)
	timingLag := decimal.Min(unmatchedUSD, gap)
	if timingLag.GreaterThan(decimal.Zero) {
		result.Amounts.TimingLagUSD = timingLag
		r.emit(models.DeltaTimingLag, timingLag, "USD", arithmeticConfidence, "unmatched_revenue_within_gap", map[string]any{
			"expectedUsd":  expectedUSD.String(),
			"paidUsd":      paidUSD.String(),
			"unmatchedUsd": unmatchedUSD.String(),
			"gapUsd":       gap.String(),
		})
	}

	residual := gap.Sub(timingLag)
	tolerance := decimal.Max(absTolUSD, pctTol.Mul(expectedUSD))
	if residual.GreaterThan(tolerance) {
		result.Amounts.UnderpayUSD = residual
		r.emit(models.DeltaUnderpay, residual, "USD", arithmeticConfidence, "residual_gap_exceeds_tolerance", map[string]any{
			"expectedUsd":  expectedUSD.String(),
			"paidUsd":      paidUSD.String(),
			"residualUsd":  residual.String(),
			"toleranceUsd": tolerance.String(),
		})
	}

	if err := r.checkIvt(ctx); err != nil {
		return nil, err
	}
	if err := r.checkFx(ctx); err != nil {
		return nil, err
	}
	if err := r.checkViewability(ctx); err != nil {
		return nil, err
	}

	result.Deltas = len(r.deltas)
	if opts.DryRun || len(r.deltas) == 0 {
		return result, nil
	}
	if err := r.persist(ctx); err != nil {
		return nil, err
	}
	result.Inserted = len(r.deltas)
	return result, nil
}

type runner struct {
	db        *gorm.DB
	wh        warehouse.Conn
	logger    *zap.Logger
	from, to  time.Time
	createdAt time.Time
	deltas    []models.DeltaRecord
}

func (r *runner) expectedSum(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.db.WithContext(ctx).Model(&models.ExpectedRecord{}).
		Select("COALESCE(SUM(expected_usd), 0)").
		Where("receipt_ts >= ? AND receipt_ts < ?", r.from, r.to).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum expected revenue: %w", err)
	}
	return total, nil
}

func (r *runner) paidSum(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.wh.QueryRow(ctx, selectPaidSum, models.MatchStatusAccepted, r.from, r.to)
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum matched revenue: %w", err)
	}
	return total, nil
}

// unmatchedSum computes the expected revenue carrying no accepted match
// by subtracting the matched records' expected sum from the window total.
func (r *runner) unmatchedSum(ctx context.Context, expectedUSD decimal.Decimal) (decimal.Decimal, error) {
	var ids []requestID
	if err := r.wh.Select(ctx, &ids, selectAcceptedIDs, models.MatchStatusAccepted, r.from, r.to); err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch accepted match ids: %w", err)
	}
	if len(ids) == 0 {
		return expectedUSD, nil
	}

	matched := make([]string, len(ids))
	for i, id := range ids {
		matched[i] = id.RequestID
	}

	var matchedUSD decimal.Decimal
	row := r.db.WithContext(ctx).Model(&models.ExpectedRecord{}).
		Select("COALESCE(SUM(expected_usd), 0)").
		Where("receipt_ts >= ? AND receipt_ts < ? AND request_id IN ?", r.from, r.to, matched).
		Row()
	if err := row.Scan(&matchedUSD); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum matched expected revenue: %w", err)
	}
	return expectedUSD.Sub(matchedUSD), nil
}

// checkIvt compares the window's invalid-traffic rate to the trailing
// 30 day p95. No baseline or no impressions means no verdict.
func (r *runner) checkIvt(ctx context.Context) error {
	var baseline float64
	baselineFrom := r.from.Add(-baselineLookback)
	if err := r.wh.QueryRow(ctx, selectIvtBaseline, baselineFrom, r.from).Scan(&baseline); err != nil {
		return fmt.Errorf("failed to compute ivt baseline: %w", err)
	}
	if math.IsNaN(baseline) {
		return nil
	}

	var ivt, impressions int64
	if err := r.wh.QueryRow(ctx, selectIvtCurrent, r.from, r.to).Scan(&ivt, &impressions); err != nil {
		return fmt.Errorf("failed to compute ivt rate: %w", err)
	}
	if impressions == 0 {
		return nil
	}

	current := float64(ivt) / float64(impressions)
	if current > baseline+ivtBand {
		r.emit(models.DeltaIvtOutlier, decimal.Zero, "", statisticalConfidence, "ivt_rate_above_baseline", map[string]any{
			"currentRate":  current,
			"baselineP95":  baseline,
			"band":         ivtBand,
			"ivt":          ivt,
			"impressions":  impressions,
			"lookbackDays": 30,
		})
	}
	return nil
}

// checkFx compares per-currency window averages to trailing 30 day
// medians. The worst deviation decides; evidence lists every currency
// over the band. An empty baseline skips the check without querying
// current rates.
func (r *runner) checkFx(ctx context.Context) error {
	var baseline []currencyRate
	baselineFrom := r.from.Add(-baselineLookback)
	if err := r.wh.Select(ctx, &baseline, selectFxBaseline, baselineFrom, r.from); err != nil {
		return fmt.Errorf("failed to fetch fx baseline: %w", err)
	}
	if len(baseline) == 0 {
		return nil
	}

	var current []currencyRate
	if err := r.wh.Select(ctx, &current, selectFxCurrent, r.from, r.to); err != nil {
		return fmt.Errorf("failed to fetch current fx rates: %w", err)
	}

	medians := make(map[string]float64, len(baseline))
	for _, b := range baseline {
		medians[b.Currency] = b.Rate
	}

	worstCurrency := ""
	worstDeviation := 0.0
	deviations := map[string]any{}
	for _, c := range current {
		median, ok := medians[c.Currency]
		if !ok {
			continue
		}
		deviation := math.Abs(c.Rate - median)
		if deviation > fxBand {
			deviations[c.Currency] = map[string]any{
				"currentAvg": c.Rate,
				"median30d":  median,
				"deviation":  deviation,
			}
			if deviation > worstDeviation {
				worstDeviation = deviation
				worstCurrency = c.Currency
			}
		}
	}
	if worstCurrency == "" {
		return nil
	}

	r.emit(models.DeltaFxMismatch, decimal.Zero, worstCurrency, statisticalConfidence, "fx_rate_deviates_from_median", map[string]any{
		"band":       fxBand,
		"deviations": deviations,
	})
	return nil
}

// checkViewability compares OM-SDK measured viewability to what the
// statements claim. Windows without viewability rows skip silently.
func (r *runner) checkViewability(ctx context.Context) error {
	var om, stmt float64
	var count uint64
	if err := r.wh.QueryRow(ctx, selectViewability, r.from, r.to).Scan(&om, &stmt, &count); err != nil {
		return fmt.Errorf("failed to compute viewability rates: %w", err)
	}
	if count == 0 {
		return nil
	}

	if math.Abs(om-stmt) > viewabilityBand {
		r.emit(models.DeltaViewabilityGap, decimal.Zero, "", statisticalConfidence, "om_and_statement_viewability_diverge", map[string]any{
			"omRate":    om,
			"stmtRate":  stmt,
			"gap":       math.Abs(om - stmt),
			"threshold": viewabilityBand,
		})
	}
	return nil
}

// emit records one delta with redacted JSON evidence.
func (r *runner) emit(kind string, amount decimal.Decimal, currency string, confidence float64, reasonCode string, evidence map[string]any) {
	payload, err := json.Marshal(evidence)
	if err != nil {
		r.logger.Warn("failed to encode delta evidence", zap.String("kind", kind), zap.Error(err))
		payload = []byte("{}")
	}
	r.deltas = append(r.deltas, models.DeltaRecord{
		DeltaID:     uuid.NewString(),
		Kind:        kind,
		Amount:      amount.Round(6),
		Currency:    currency,
		WindowStart: r.from,
		WindowEnd:   r.to,
		EvidenceID:  uuid.NewString(),
		Evidence:    redact.String(string(payload)),
		Confidence:  confidence,
		ReasonCode:  reasonCode,
		CreatedAt:   r.createdAt,
	})
}

// persist writes all emitted deltas in one batch.
func (r *runner) persist(ctx context.Context) error {
	batch, err := r.wh.PrepareBatch(ctx, insertDeltaRecords)
	if err != nil {
		return fmt.Errorf("failed to prepare delta batch: %w", err)
	}
	for _, d := range r.deltas {
		err := batch.Append(
			d.DeltaID, d.Kind, d.Amount, d.Currency, d.WindowStart,
			d.WindowEnd, d.EvidenceID, d.Evidence, d.Confidence,
			d.ReasonCode, d.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to append delta record: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send delta batch: %w", err)
	}
	return nil
}
