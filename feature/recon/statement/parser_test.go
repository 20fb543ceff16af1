package statement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const canonicalHeader = "event_date,app_id,ad_unit_id,country,format,currency,impressions,clicks,ivt_adjustments,paid"

func TestParseCanonicalCSV(t *testing.T) {
	csvText := canonicalHeader + "\n" +
		"2026-03-01,app-1,unit-9,US,banner,USD,1000,12,3,12.500000\n" +
		"2026-03-02,app-1,unit-9,DE,rewarded,EUR,500,,,4.20\n"

	rows, errs := ParseCanonicalCSV("admob", "v3", "rep-1", csvText)
	require.Empty(t, errs)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), first.EventDate)
	assert.Equal(t, "app-1", first.AppID)
	assert.Equal(t, "unit-9", first.AdUnitID)
	assert.Equal(t, "US", first.Country)
	assert.Equal(t, "banner", first.Format)
	assert.Equal(t, "USD", first.Currency)
	assert.Equal(t, int64(1000), first.Impressions)
	assert.Equal(t, int64(12), first.Clicks)
	assert.Equal(t, int64(3), first.IvtAdjustments)
	assert.Equal(t, "12.5", first.Paid.String())
	assert.Equal(t, "rep-1", first.ReportID)
	assert.Equal(t, "admob", first.Network)
	assert.Equal(t, "v3", first.SchemaVer)

	// Empty optional cells default to zero.
	second := rows[1]
	assert.Equal(t, int64(0), second.Clicks)
	assert.Equal(t, int64(0), second.IvtAdjustments)
	assert.Equal(t, "4.2", second.Paid.String())
}

func TestParseCanonicalCSV_MissingHeaders(t *testing.T) {
	csvText := "event_date,app_id,ad_unit_id,country,currency,impressions\n" +
		"2026-03-01,app-1,unit-9,US,USD,1000\n"

	rows, errs := ParseCanonicalCSV("admob", "v3", "rep-1", csvText)
	assert.Empty(t, rows)
	require.Len(t, errs, 1)
	assert.Equal(t, "Missing required headers: format, paid", errs[0].Error())
}

func TestParseCanonicalCSV_RowErrors(t *testing.T) {
	tests := []struct {
		name    string
		row     string
		wantErr string
	}{
		{
			name:    "Bad Event Date",
			row:     "03/01/2026,app-1,unit-9,US,banner,USD,1000,1,0,1.0",
			wantErr: `row 1: invalid event_date "03/01/2026"`,
		},
		{
			name:    "Bad Impressions",
			row:     "2026-03-01,app-1,unit-9,US,banner,USD,many,1,0,1.0",
			wantErr: `row 1: invalid impressions "many"`,
		},
		{
			name:    "Missing Paid",
			row:     "2026-03-01,app-1,unit-9,US,banner,USD,1000,1,0,",
			wantErr: "row 1: paid is required",
		},
		{
			name:    "Bad Paid",
			row:     "2026-03-01,app-1,unit-9,US,banner,USD,1000,1,0,twelve",
			wantErr: `row 1: invalid paid "twelve"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			csvText := canonicalHeader + "\n" + tt.row + "\n"
			rows, errs := ParseCanonicalCSV("admob", "v3", "rep-1", csvText)
			assert.Empty(t, rows)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantErr, errs[0].Error())
		})
	}
}

func TestParseCanonicalCSV_BadRowsDoNotStopGoodRows(t *testing.T) {
	csvText := canonicalHeader + "\n" +
		"2026-03-01,app-1,unit-9,US,banner,USD,1000,1,0,1.0\n" +
		"not-a-date,app-1,unit-9,US,banner,USD,1000,1,0,1.0\n" +
		"2026-03-03,app-2,unit-4,GB,interstitial,GBP,200,0,0,0.75\n"

	rows, errs := ParseCanonicalCSV("unity", "v1", "rep-2", csvText)
	assert.Len(t, rows, 2)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "row 2:")
}

func TestParseCanonicalCSV_HeaderOrderAndCaseIgnored(t *testing.T) {
	csvText := "PAID,currency,Event_Date,app_id,ad_unit_id,country,format,impressions,extra_col\n" +
		"9.99,USD,2026-03-01,app-1,unit-9,US,banner,100,ignored\n"

	rows, errs := ParseCanonicalCSV("admob", "v3", "rep-3", csvText)
	assert.Empty(t, errs)
	require.Len(t, rows, 1)
	assert.Equal(t, "9.99", rows[0].Paid.String())
	assert.Equal(t, int64(100), rows[0].Impressions)
	assert.Equal(t, int64(0), rows[0].Clicks)
}

func TestParseCanonicalCSV_Deterministic(t *testing.T) {
	csvText := canonicalHeader + "\n" +
		"2026-03-01,app-1,unit-9,US,banner,USD,1000,12,3,12.50\n" +
		"bad-row,app-1,unit-9,US,banner,USD,1000,12,3,12.50\n"

	rowsA, errsA := ParseCanonicalCSV("admob", "v3", "rep-1", csvText)
	rowsB, errsB := ParseCanonicalCSV("admob", "v3", "rep-1", csvText)
	assert.Equal(t, rowsA, rowsB)
	require.Len(t, errsA, 1)
	require.Len(t, errsB, 1)
	assert.Equal(t, errsA[0].Error(), errsB[0].Error())
}
