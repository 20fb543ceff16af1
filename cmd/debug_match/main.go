package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/rivalapexmediation/reconciler/core/config"
	"github.com/rivalapexmediation/reconciler/core/database"
	"github.com/rivalapexmediation/reconciler/core/pipeline"
	"github.com/rivalapexmediation/reconciler/core/warehouse"
	"github.com/rivalapexmediation/reconciler/feature/recon/match"
	"github.com/rivalapexmediation/reconciler/feature/recon/models"
)

// Scores every statement row near a request's placement against its
// expected record, to answer "why did this request (not) match".
func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: debug_match <request_id>")
		os.Exit(2)
	}
	requestID := os.Args[1]

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal(err)
	}

	wh, err := warehouse.NewConn(cfg.Warehouse)
	if err != nil {
		log.Fatal(err)
	}
	defer wh.Close()

	ctx := context.Background()

	fmt.Println("=== Expected record ===")
	var record models.ExpectedRecord
	if err := db.Where("request_id = ?", requestID).First(&record).Error; err != nil {
		log.Fatalf("no expected record for %s (has the expected stage covered its window?): %v", requestID, err)
	}
	fmt.Printf("placement=%s expected=%s %s (%s USD) receipt_ts=%s\n",
		record.PlacementID, record.ExpectedValue, record.Currency, record.ExpectedUSD,
		record.ReceiptTS.UTC().Format(time.RFC3339))

	var receipt models.Receipt
	if err := db.Where("request_id = ?", requestID).First(&receipt).Error; err != nil {
		log.Fatal(err)
	}
	cand := match.Candidate{Record: record, Country: receipt.Country, Format: receipt.Format}
	fmt.Printf("receipt dims: country=%s format=%s\n", receipt.Country, receipt.Format)

	appID, adUnitID, ok := strings.Cut(record.PlacementID, ":")
	if !ok {
		log.Fatalf("malformed placement id %q", record.PlacementID)
	}

	// Pull statement rows for the placement across a generous day range so
	// near-misses outside the lag bound still show up in the listing.
	day := record.ReceiptTS.UTC().Truncate(24 * time.Hour)
	var rows []models.NormalizedStatementRow
	err = wh.Select(ctx, &rows,
		`SELECT event_date, app_id, ad_unit_id, country, format, currency,
		        impressions, clicks, paid, ivt_adjustments, report_id, network, schema_ver, loaded_at
		 FROM stmt_rows
		 WHERE app_id = ? AND ad_unit_id = ? AND event_date >= toDate(?) AND event_date <= toDate(?)
		 ORDER BY event_date, report_id`,
		appID, adUnitID, day.AddDate(0, 0, -5), day.AddDate(0, 0, 5))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("\n=== Candidate statement rows (%d) ===\n", len(rows))
	for _, row := range rows {
		lag := int(row.EventDate.UTC().Truncate(24*time.Hour).Sub(day).Hours() / 24)
		if lag < 0 {
			lag = -lag
		}
		score := match.DimensionScorer(row, cand, lag)

		verdict := "discard"
		switch {
		case lag > 2:
			verdict = "out of lag window"
		case score >= pipeline.DefaultAutoThreshold:
			verdict = "accept"
		case score >= pipeline.DefaultMinConf:
			verdict = "review"
		}
		fmt.Printf("report=%s date=%s country=%s format=%s paid=%s %s lag=%dd score=%.2f -> %s\n",
			row.ReportID, row.EventDate.Format("2006-01-02"), row.Country, row.Format,
			row.Paid, row.Currency, lag, score, verdict)
	}

	fmt.Println("\n=== Recorded matches ===")
	var matches []models.MatchRecord
	err = wh.Select(ctx, &matches,
		`SELECT match_id, request_id, report_id, event_date, app_id, ad_unit_id, country, format,
		        confidence, status, paid_usd, window_from, window_to, created_at
		 FROM match_records
		 WHERE request_id = ?
		 ORDER BY created_at`,
		requestID)
	if err != nil {
		log.Fatal(err)
	}
	if len(matches) == 0 {
		fmt.Println("none")
	}
	for _, m := range matches {
		fmt.Printf("match=%s report=%s status=%s confidence=%.2f paid_usd=%s window=[%s, %s)\n",
			m.MatchID, m.ReportID, m.Status, m.Confidence, m.PaidUSD,
			m.WindowFrom.UTC().Format(time.RFC3339), m.WindowTo.UTC().Format(time.RFC3339))
	}
}
