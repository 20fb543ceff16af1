package cmd

import (
	"context"
	"fmt"

	"github.com/rivalapexmediation/reconciler/core/config"
	"github.com/rivalapexmediation/reconciler/core/database"
	"github.com/rivalapexmediation/reconciler/core/logger"
	"github.com/rivalapexmediation/reconciler/core/storage"
	"github.com/rivalapexmediation/reconciler/core/warehouse"
	"github.com/rivalapexmediation/reconciler/feature/recon/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// preflightCmd verifies every store a reconciliation run depends on.
var preflightCmd = &cobra.Command{
	Use:   "preflight",
	Short: "Verify the stores a reconciliation run depends on",
	Long: `Check the transactional schema, the warehouse connection, and the
statement archive bucket, reporting every problem found instead of
stopping at the first. Stage commands run the schema check themselves at
startup; preflight exists so a deploy can be verified without touching
any data.

Examples:
  reconciler preflight`,
	RunE: runPreflight,
}

func init() {
	RootCmd.AddCommand(preflightCmd)
}

func runPreflight(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	var problems []string

	if db, err := database.Connect(cfg.Database); err != nil {
		problems = append(problems, fmt.Sprintf("database: %v", err))
	} else {
		problems = append(problems, database.InspectTables(db, models.RequiredTables())...)
	}

	if wh, err := warehouse.NewConn(cfg.Warehouse); err != nil {
		problems = append(problems, fmt.Sprintf("warehouse: %v", err))
	} else {
		if err := wh.Ping(ctx); err != nil {
			problems = append(problems, fmt.Sprintf("warehouse ping: %v", err))
		}
		_ = wh.Close()
	}

	if archive, err := storage.NewClient(cfg.Storage); err != nil {
		problems = append(problems, fmt.Sprintf("storage: %v", err))
	} else if ok, err := archive.BucketExists(ctx, cfg.Storage.Bucket); err != nil {
		problems = append(problems, fmt.Sprintf("storage bucket %s: %v", cfg.Storage.Bucket, err))
	} else if !ok {
		problems = append(problems, fmt.Sprintf("storage bucket %s does not exist", cfg.Storage.Bucket))
	}

	for _, p := range problems {
		l.Error("Preflight problem", zap.String("problem", p))
	}
	if len(problems) > 0 {
		return fmt.Errorf("preflight found %d problem(s)", len(problems))
	}

	l.Info("All stores ready",
		zap.String("database", fmt.Sprintf("%s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)),
		zap.String("warehouse", cfg.Warehouse.Addr),
		zap.String("bucket", cfg.Storage.Bucket),
	)
	return nil
}
