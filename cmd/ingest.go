package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rivalapexmediation/reconciler/core/config"
	"github.com/rivalapexmediation/reconciler/core/pipeline"
	"github.com/rivalapexmediation/reconciler/core/storage"
	"github.com/rivalapexmediation/reconciler/feature/recon/statement"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the ingest command
	ingestNetwork   string
	ingestSchemaVer string
	ingestLoadID    string
	ingestReportID  string
	ingestFile      string
	ingestObject    string
	ingestScan      bool
	ingestPrefix    string
	ingestRegistry  string
)

// ingestCmd loads network revenue statements into the warehouse.
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest network revenue statement CSVs",
	Long: `Normalize a network revenue statement and append its rows to the
warehouse. Reports are keyed by (network, load id); a report that was
already loaded is skipped, so reruns and overlapping schedules are safe.

The statement comes from exactly one source: a local file (--file), a
single archive object (--object), or an archive scan (--scan) that loads
every report under --prefix not yet on record.

Examples:
  # Load a local statement export
  reconciler ingest --network admob --file march_week1.csv

  # Load one archived report
  reconciler ingest --network unity --object unity/2026-03/rep-100.csv

  # Catch up on everything the network delivered this month
  reconciler ingest --network admob --scan --prefix admob/2026-03/

  # Vendor headers outside the built-in profiles
  reconciler ingest --network pangle --file pangle.csv --registry schemas.yaml`,
	RunE: runIngest,
}

func init() {
	RootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestNetwork, "network", "", "Network the statement came from (e.g. admob, unity)")
	ingestCmd.Flags().StringVar(&ingestSchemaVer, "schema-ver", "v1", "Statement schema version recorded on each row")
	ingestCmd.Flags().StringVar(&ingestLoadID, "load-id", "", "Idempotency key for this report (default: file or object name)")
	ingestCmd.Flags().StringVar(&ingestReportID, "report-id", "", "Report identifier stamped on normalized rows (default: load id)")
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "Path to a local statement CSV")
	ingestCmd.Flags().StringVar(&ingestObject, "object", "", "Key of a single statement CSV in the archive")
	ingestCmd.Flags().BoolVar(&ingestScan, "scan", false, "Scan the archive and load every report not yet ingested")
	ingestCmd.Flags().StringVar(&ingestPrefix, "prefix", "", "Key prefix to scan (with --scan)")
	ingestCmd.Flags().StringVar(&ingestRegistry, "registry", "", "Path to a YAML schema registry overriding the built-in profiles")
	ingestCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Parse and report without writing to any store")
	ingestCmd.Flags().StringVar(&flagReport, "report", "", "Write the run result as JSON to this path")
	_ = ingestCmd.MarkFlagRequired("network")
}

// ingestSummary is the run report for an archive scan.
type ingestSummary struct {
	Pending   int `json:"pending"`
	Loaded    int `json:"loaded"`
	Skipped   int `json:"skipped"`
	Rows      int `json:"rows"`
	RowErrors int `json:"rowErrors"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sources := 0
	for _, set := range []bool{ingestFile != "", ingestObject != "", ingestScan} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return pipeline.Validationf("exactly one of --file, --object, or --scan is required")
	}
	if ingestScan && (ingestLoadID != "" || ingestReportID != "") {
		return pipeline.Validationf("--load-id and --report-id only apply to single-report sources, not --scan")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	env, err := bootStage(ctx, cfg, flagDryRun)
	if err != nil {
		return err
	}
	defer env.Close()

	registry, err := statement.LoadRegistry(ingestRegistry)
	if err != nil {
		return err
	}
	svc := statement.NewService(env.db, env.wh, registry, env.log)

	// Only the archive-backed sources need a storage client; --file works
	// without the archive being reachable.
	var archive storage.Client
	if ingestObject != "" || ingestScan {
		archive, err = storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
	}

	if ingestScan {
		return runIngestScan(ctx, env, svc, archive)
	}

	var loadID, csvText string
	switch {
	case ingestFile != "":
		data, err := os.ReadFile(ingestFile)
		if err != nil {
			return fmt.Errorf("failed to read statement file %s: %w", ingestFile, err)
		}
		loadID, csvText = filepath.Base(ingestFile), string(data)
	case ingestObject != "":
		csvText, err = statement.FetchReportCSV(ctx, archive, cfg.Storage.Bucket, ingestObject)
		if err != nil {
			return err
		}
		loadID = ingestObject
	}
	if ingestLoadID != "" {
		loadID = ingestLoadID
	}

	result, err := ingestOne(ctx, env, svc, loadID, csvText)
	if err != nil {
		return err
	}

	if err := pipeline.WriteReport(flagReport, result); err != nil {
		return err
	}

	// An already-loaded report leaves the stores exactly as requested, so
	// it exits 0 like a fresh load; only an empty report is a no-op.
	if !result.Skipped && result.NormalizedRows == 0 {
		exitCode = pipeline.ExitNoOp
	}
	return nil
}

// runIngestScan loads every report under the prefix that has no
// idempotency marker yet.
func runIngestScan(ctx context.Context, env *stageEnv, svc *statement.Service, archive storage.Client) error {
	pending, err := svc.ScanReports(ctx, archive, env.cfg.Storage.Bucket, ingestNetwork, ingestPrefix)
	if err != nil {
		return err
	}

	summary := ingestSummary{Pending: len(pending)}
	for _, key := range pending {
		csvText, err := statement.FetchReportCSV(ctx, archive, env.cfg.Storage.Bucket, key)
		if err != nil {
			return err
		}
		result, err := ingestOne(ctx, env, svc, key, csvText)
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", key, err)
		}
		if result.Skipped {
			summary.Skipped++
			continue
		}
		summary.Loaded++
		summary.Rows += result.NormalizedRows
		summary.RowErrors += result.RowErrors
	}

	env.log.Info("Archive scan finished",
		zap.Int("pending", summary.Pending),
		zap.Int("loaded", summary.Loaded),
		zap.Int("skipped", summary.Skipped),
		zap.Int("rows", summary.Rows),
		zap.Bool("dry_run", flagDryRun),
	)

	if err := pipeline.WriteReport(flagReport, summary); err != nil {
		return err
	}
	if summary.Loaded == 0 {
		exitCode = pipeline.ExitNoOp
	}
	return nil
}

func ingestOne(ctx context.Context, env *stageEnv, svc *statement.Service, loadID, csvText string) (*statement.IngestResult, error) {
	reportID := ingestReportID
	if reportID == "" {
		reportID = loadID
	}

	result, err := svc.IngestReport(ctx, statement.IngestRequest{
		Network:   ingestNetwork,
		SchemaVer: ingestSchemaVer,
		LoadID:    loadID,
		ReportID:  reportID,
		CSV:       csvText,
		DryRun:    flagDryRun,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ingest report %s: %w", loadID, err)
	}

	env.log.Info("Report ingested",
		zap.String("network", ingestNetwork),
		zap.String("load_id", loadID),
		zap.Bool("skipped", result.Skipped),
		zap.Int("rows", result.NormalizedRows),
		zap.Int("row_errors", result.RowErrors),
		zap.Bool("dry_run", flagDryRun),
	)
	return result, nil
}
