package expected

import (
	"context"
	"testing"
	"time"

	"github.com/rivalapexmediation/reconciler/core/warehouse/mocks"
	"github.com/rivalapexmediation/reconciler/feature/recon/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

var (
	windowFrom = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	windowTo   = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
)

var receiptColumns = []string{"id", "request_id", "placement_id", "ts", "floor_cpm", "currency", "country", "format", "receipt_hash"}

func expectReceipts(dbMock sqlmock.Sqlmock, requestIDs ...string) {
	rows := sqlmock.NewRows(receiptColumns)
	for i, id := range requestIDs {
		rows.AddRow(i+1, id, "app-1:unit-9", windowFrom.Add(time.Duration(i)*time.Minute), "0.5", "USD", "US", "banner", "h"+id)
	}
	dbMock.ExpectQuery("SELECT \\* FROM `recon_receipts`").WillReturnRows(rows)
}

func expectExisting(dbMock sqlmock.Sqlmock, requestIDs ...string) {
	rows := sqlmock.NewRows([]string{"request_id"})
	for _, id := range requestIDs {
		rows.AddRow(id)
	}
	dbMock.ExpectQuery("SELECT `request_id` FROM `recon_expected`").WillReturnRows(rows)
}

func paidEvent(requestID string, ts time.Time, usd, original, currency string) models.PaidEventRow {
	return models.PaidEventRow{
		RequestID:       requestID,
		TS:              ts,
		RevenueUSD:      decimal.RequireFromString(usd),
		RevenueOriginal: decimal.RequireFromString(original),
		RevenueCurrency: currency,
	}
}

func stubPaidEvents(wh *mocks.Conn, events ...models.PaidEventRow) {
	wh.On("Select", mock.Anything, mock.Anything, selectPaidEvents, mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(1).(*[]models.PaidEventRow)
			*dest = append(*dest, events...)
		}).Return(nil)
}

func TestBuild(t *testing.T) {
	db, dbMock := setupMockDB(t)
	wh := new(mocks.Conn)

	// Two fresh receipts; only r1 has a confirming paid event.
	expectReceipts(dbMock, "r1", "r2")
	expectExisting(dbMock)
	stubPaidEvents(wh, paidEvent("r1", windowFrom.Add(time.Hour), "0.0049999951", "0.0045000049", "EUR"))

	dbMock.ExpectBegin()
	dbMock.ExpectExec("INSERT INTO `recon_expected`.*ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(1, 1))
	dbMock.ExpectCommit()

	result, err := Build(context.Background(), db, wh, windowFrom, windowTo, Options{})
	require.NoError(t, err)
	assert.Equal(t, &Result{Seen: 2, Written: 1, Skipped: 1}, result)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestBuild_EmptyWindowShortCircuits(t *testing.T) {
	db, dbMock := setupMockDB(t)
	wh := new(mocks.Conn)

	expectReceipts(dbMock)

	result, err := Build(context.Background(), db, wh, windowFrom, windowTo, Options{})
	require.NoError(t, err)
	assert.Equal(t, &Result{}, result)

	// No receipts means no existing-id lookup and no warehouse query.
	wh.AssertNotCalled(t, "Select", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestBuild_ExistingRecordsSkippedBeforeWarehouse(t *testing.T) {
	db, dbMock := setupMockDB(t)
	wh := new(mocks.Conn)

	expectReceipts(dbMock, "r1", "r2", "r3")
	expectExisting(dbMock, "r2")

	var queried []string
	wh.On("Select", mock.Anything, mock.Anything, selectPaidEvents, mock.Anything).
		Run(func(args mock.Arguments) {
			queried = args.Get(3).([]any)[2].([]string)
			dest := args.Get(1).(*[]models.PaidEventRow)
			*dest = append(*dest,
				paidEvent("r1", windowFrom.Add(time.Hour), "1.25", "1.25", "USD"),
				paidEvent("r3", windowFrom.Add(2*time.Hour), "0.40", "0.40", "USD"))
		}).Return(nil)

	dbMock.ExpectBegin()
	dbMock.ExpectExec("INSERT INTO `recon_expected`").WillReturnResult(sqlmock.NewResult(1, 2))
	dbMock.ExpectCommit()

	result, err := Build(context.Background(), db, wh, windowFrom, windowTo, Options{})
	require.NoError(t, err)
	assert.Equal(t, &Result{Seen: 3, Written: 2, Skipped: 1}, result)
	assert.Equal(t, []string{"r1", "r3"}, queried)
}

func TestBuild_DryRunIssuesNoWrites(t *testing.T) {
	db, dbMock := setupMockDB(t)
	wh := new(mocks.Conn)

	expectReceipts(dbMock, "r1", "r2")
	expectExisting(dbMock)
	stubPaidEvents(wh, paidEvent("r1", windowFrom.Add(time.Hour), "1.00", "0.92", "EUR"))

	result, err := Build(context.Background(), db, wh, windowFrom, windowTo, Options{DryRun: true})
	require.NoError(t, err)

	// Written still reflects the logical work; only the insert is suppressed.
	assert.Equal(t, &Result{Seen: 2, Written: 1, Skipped: 1}, result)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestBuild_NoConfirmingEventCountsAsSkipped(t *testing.T) {
	db, dbMock := setupMockDB(t)
	wh := new(mocks.Conn)

	expectReceipts(dbMock, "rx")
	expectExisting(dbMock)
	stubPaidEvents(wh)

	result, err := Build(context.Background(), db, wh, windowFrom, windowTo, Options{})
	require.NoError(t, err)
	assert.Equal(t, &Result{Seen: 1, Written: 0, Skipped: 1}, result)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestBuild_EarliestPaidEventWins(t *testing.T) {
	db, dbMock := setupMockDB(t)
	wh := new(mocks.Conn)

	expectReceipts(dbMock, "r1")
	expectExisting(dbMock)
	stubPaidEvents(wh,
		paidEvent("r1", windowFrom.Add(time.Hour), "0.30", "0.30", "USD"),
		paidEvent("r1", windowFrom.Add(2*time.Hour), "0.70", "0.70", "USD"))

	result, err := Build(context.Background(), db, wh, windowFrom, windowTo, Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, &Result{Seen: 1, Written: 1, Skipped: 0}, result)
}

func TestBuild_LimitCapsReceiptQuery(t *testing.T) {
	db, dbMock := setupMockDB(t)
	wh := new(mocks.Conn)

	rows := sqlmock.NewRows(receiptColumns).
		AddRow(1, "r1", "app-1:unit-9", windowFrom, "0.5", "USD", "US", "banner", "h1")
	dbMock.ExpectQuery("SELECT \\* FROM `recon_receipts`.*LIMIT \\?").WillReturnRows(rows)
	expectExisting(dbMock, "r1")

	result, err := Build(context.Background(), db, wh, windowFrom, windowTo, Options{Limit: 1, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, &Result{Seen: 1, Written: 0, Skipped: 1}, result)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
