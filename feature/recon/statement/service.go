package statement

import (
	"context"
	"fmt"
	"time"

	"github.com/rivalapexmediation/reconciler/core/redact"
	"github.com/rivalapexmediation/reconciler/core/warehouse"
	"github.com/rivalapexmediation/reconciler/feature/recon/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReasonAlreadyLoaded marks an ingestion skipped because the
// (network, load_id) marker already exists.
const ReasonAlreadyLoaded = "already_loaded"

const insertStmtRows = "INSERT INTO stmt_rows"

// Service ingests network statement reports: an idempotency marker in the
// transactional store, normalized rows in the warehouse.
type Service struct {
	db       *gorm.DB
	wh       warehouse.Conn
	registry *Registry
	logger   *zap.Logger
}

// NewService creates a new statement ingestion service.
func NewService(db *gorm.DB, wh warehouse.Conn, registry *Registry, logger *zap.Logger) *Service {
	return &Service{
		db:       db,
		wh:       wh,
		registry: registry,
		logger:   logger,
	}
}

// IngestRequest identifies one report ingestion.
type IngestRequest struct {
	Network   string
	SchemaVer string
	LoadID    string
	ReportID  string
	CSV       string
	DryRun    bool
}

// IngestResult reports what a single ingestion did. A skipped result is a
// success: the report was loaded by an earlier run.
type IngestResult struct {
	Skipped        bool   `json:"skipped"`
	Reason         string `json:"reason,omitempty"`
	NormalizedRows int    `json:"normalizedRows"`
	RowErrors      int    `json:"rowErrors"`
}

// IngestReport loads one statement report. The (network, load_id) marker
// makes the operation idempotent: a marker already present short-circuits
// before any parse or write, and the marker insert itself closes the race
// between concurrent runs, so only the winner appends rows. Under dry-run
// the report is parsed and counted but nothing is persisted.
func (s *Service) IngestReport(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	if req.Network == "" || req.LoadID == "" {
		return nil, fmt.Errorf("network and load_id are required")
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&models.StatementLoad{}).
		Where("network = ? AND load_id = ?", req.Network, req.LoadID).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check load marker: %w", err)
	}
	if count > 0 {
		return &IngestResult{Skipped: true, Reason: ReasonAlreadyLoaded}, nil
	}

	canonical := s.registry.Canonicalize(req.Network, req.CSV)
	rows, rowErrs := ParseCanonicalCSV(req.Network, req.SchemaVer, req.ReportID, canonical)
	if len(rows) == 0 && len(rowErrs) > 0 {
		return nil, fmt.Errorf("report %s/%s is unusable: %s", req.Network, req.LoadID, redact.Error(rowErrs[0]))
	}
	for _, rowErr := range rowErrs {
		s.logger.Warn("dropped statement row",
			zap.String("network", req.Network),
			zap.String("load_id", req.LoadID),
			zap.String("error", redact.Error(rowErr)))
	}

	result := &IngestResult{NormalizedRows: len(rows), RowErrors: len(rowErrs)}
	if req.DryRun {
		return result, nil
	}

	marker := models.StatementLoad{
		Network:   req.Network,
		LoadID:    req.LoadID,
		ReportID:  req.ReportID,
		SchemaVer: req.SchemaVer,
		RowCount:  len(rows),
		LoadedAt:  time.Now().UTC(),
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&marker)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to record load marker: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &IngestResult{Skipped: true, Reason: ReasonAlreadyLoaded}, nil
	}

	if err := s.appendRows(ctx, rows); err != nil {
		return nil, err
	}
	return result, nil
}

// appendRows writes the normalized batch to the warehouse.
func (s *Service) appendRows(ctx context.Context, rows []models.NormalizedStatementRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch, err := s.wh.PrepareBatch(ctx, insertStmtRows)
	if err != nil {
		return fmt.Errorf("failed to prepare statement batch: %w", err)
	}
	loadedAt := time.Now().UTC()
	for _, row := range rows {
		err := batch.Append(
			row.EventDate, row.AppID, row.AdUnitID, row.Country, row.Format,
			row.Currency, row.Impressions, row.Clicks, row.Paid,
			row.IvtAdjustments, row.ReportID, row.Network, row.SchemaVer,
			loadedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to append statement row: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send statement batch: %w", err)
	}
	return nil
}
