package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rivalapexmediation/reconciler/feature/recon/models"

	"github.com/shopspring/decimal"
)

// requiredHeaders is the canonical header set every statement CSV must
// carry. clicks and ivt_adjustments are optional.
var requiredHeaders = []string{
	"event_date", "app_id", "ad_unit_id", "country",
	"format", "currency", "impressions", "paid",
}

const eventDateLayout = "2006-01-02"

// ParseCanonicalCSV parses a canonical statement CSV into normalized rows.
// A missing required header aborts the parse: zero rows and a single error
// naming every absent header. Row-level problems collect one error per
// data row (1-based) and do not stop the remaining rows. impressions,
// clicks and ivt_adjustments default to 0 on empty cells; paid is required
// per row.
func ParseCanonicalCSV(network, schemaVer, reportID, csvText string) ([]models.NormalizedStatementRow, []error) {
	r := csv.NewReader(strings.NewReader(csvText))
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read CSV header: %w", err)}
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, name := range requiredHeaders {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, []error{fmt.Errorf("Missing required headers: %s", strings.Join(missing, ", "))}
	}

	cell := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []models.NormalizedStatementRow
	var rowErrs []error

	for rowNum := 1; ; rowNum++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: %w", rowNum, err))
			continue
		}

		eventDate, err := time.Parse(eventDateLayout, cell(record, "event_date"))
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: invalid event_date %q", rowNum, cell(record, "event_date")))
			continue
		}

		impressions, err := parseCount(cell(record, "impressions"))
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: invalid impressions %q", rowNum, cell(record, "impressions")))
			continue
		}
		clicks, err := parseCount(cell(record, "clicks"))
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: invalid clicks %q", rowNum, cell(record, "clicks")))
			continue
		}
		ivt, err := parseCount(cell(record, "ivt_adjustments"))
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: invalid ivt_adjustments %q", rowNum, cell(record, "ivt_adjustments")))
			continue
		}

		paidCell := cell(record, "paid")
		if paidCell == "" {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: paid is required", rowNum))
			continue
		}
		paid, err := decimal.NewFromString(paidCell)
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: invalid paid %q", rowNum, paidCell))
			continue
		}

		rows = append(rows, models.NormalizedStatementRow{
			EventDate:      eventDate,
			AppID:          cell(record, "app_id"),
			AdUnitID:       cell(record, "ad_unit_id"),
			Country:        cell(record, "country"),
			Format:         cell(record, "format"),
			Currency:       cell(record, "currency"),
			Impressions:    impressions,
			Clicks:         clicks,
			IvtAdjustments: ivt,
			Paid:           paid,
			ReportID:       reportID,
			Network:        network,
			SchemaVer:      schemaVer,
		})
	}

	return rows, rowErrs
}

// parseCount parses an integer cell, defaulting to 0 when empty.
func parseCount(cell string) (int64, error) {
	if cell == "" {
		return 0, nil
	}
	return strconv.ParseInt(cell, 10, 64)
}
