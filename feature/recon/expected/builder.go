package expected

import (
	"context"
	"fmt"
	"time"

	"github.com/rivalapexmediation/reconciler/core/warehouse"
	"github.com/rivalapexmediation/reconciler/feature/recon/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const insertBatchSize = 1000

const selectPaidEvents = `SELECT request_id, ts, revenue_usd, revenue_original, revenue_currency
FROM paid_events
WHERE ts >= ? AND ts < ? AND request_id IN (?)
ORDER BY ts`

// Options tunes one builder run.
type Options struct {
	Limit  int
	DryRun bool
}

// Result reports the outcome of one builder run. Written counts the
// records computed, whether or not the insert actually ran.
type Result struct {
	Seen    int `json:"seen"`
	Written int `json:"written"`
	Skipped int `json:"skipped"`
}

// Build derives expected-revenue records for receipts in [from, to).
//
// A receipt becomes an ExpectedRecord when a paid event confirms it inside
// the window; receipts with an existing record or no confirming event are
// skipped. The insert goes through ON CONFLICT DO NOTHING so two builders
// racing over an overlapping window cannot double-insert. Under dry-run
// every statement issued is a SELECT.
func Build(ctx context.Context, db *gorm.DB, wh warehouse.Conn, from, to time.Time, opts Options) (*Result, error) {
	var receipts []models.Receipt
	q := db.WithContext(ctx).
		Where("ts >= ? AND ts < ?", from, to).
		Order("ts, request_id")
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if err := q.Find(&receipts).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch receipts: %w", err)
	}
	if len(receipts) == 0 {
		return &Result{}, nil
	}

	result := &Result{Seen: len(receipts)}

	ids := make([]string, len(receipts))
	for i, r := range receipts {
		ids[i] = r.RequestID
	}

	var existingIDs []string
	err := db.WithContext(ctx).Model(&models.ExpectedRecord{}).
		Where("request_id IN ?", ids).
		Pluck("request_id", &existingIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing expected records: %w", err)
	}
	existing := make(map[string]bool, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = true
	}

	var pending []models.Receipt
	var pendingIDs []string
	for _, r := range receipts {
		if existing[r.RequestID] {
			result.Skipped++
			continue
		}
		pending = append(pending, r)
		pendingIDs = append(pendingIDs, r.RequestID)
	}
	if len(pending) == 0 {
		return result, nil
	}

	var events []models.PaidEventRow
	if err := wh.Select(ctx, &events, selectPaidEvents, from, to, pendingIDs); err != nil {
		return nil, fmt.Errorf("failed to fetch paid events: %w", err)
	}
	// Events arrive ordered by ts; the first one per request wins.
	confirmed := make(map[string]models.PaidEventRow, len(events))
	for _, ev := range events {
		if _, ok := confirmed[ev.RequestID]; !ok {
			confirmed[ev.RequestID] = ev
		}
	}

	builtAt := time.Now().UTC()
	var records []models.ExpectedRecord
	for _, r := range pending {
		ev, ok := confirmed[r.RequestID]
		if !ok {
			result.Skipped++
			continue
		}
		records = append(records, models.ExpectedRecord{
			RequestID:     r.RequestID,
			PlacementID:   r.PlacementID,
			ExpectedValue: ev.RevenueOriginal.Round(6),
			ExpectedUSD:   ev.RevenueUSD.Round(6),
			Currency:      ev.RevenueCurrency,
			ReceiptTS:     r.TS,
			WindowFrom:    from,
			WindowTo:      to,
			BuiltAt:       builtAt,
		})
	}
	result.Written = len(records)

	if opts.DryRun || len(records) == 0 {
		return result, nil
	}

	err = db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&records, insertBatchSize).Error
	if err != nil {
		return nil, fmt.Errorf("failed to insert expected records: %w", err)
	}
	return result, nil
}
