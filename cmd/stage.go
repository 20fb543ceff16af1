package cmd

import (
	"context"
	"fmt"

	"github.com/rivalapexmediation/reconciler/core/config"
	"github.com/rivalapexmediation/reconciler/core/database"
	"github.com/rivalapexmediation/reconciler/core/logger"
	"github.com/rivalapexmediation/reconciler/core/pipeline"
	"github.com/rivalapexmediation/reconciler/core/warehouse"
	"github.com/rivalapexmediation/reconciler/feature/recon/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Flags shared by the window-scoped stage commands. Commands that do not
// register a flag still read its default here through resolveArgs, so the
// initial values must match the pipeline defaults.
var (
	flagFrom          string
	flagTo            string
	flagDryRun        bool
	flagForce         bool
	flagYes           bool
	flagLimit         = pipeline.MaxLimit
	flagAutoThreshold = pipeline.DefaultAutoThreshold
	flagMinConf       = pipeline.DefaultMinConf
	flagCheckpoint    string
	flagReport        string
)

// addWindowFlags registers the flags every window-scoped stage shares.
func addWindowFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagFrom, "from", "", "Window start, inclusive (RFC 3339, e.g. 2026-03-01T00:00:00Z)")
	cmd.Flags().StringVar(&flagTo, "to", "", "Window end, exclusive (RFC 3339)")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Compute and report without writing to any store")
	cmd.Flags().BoolVar(&flagForce, "force", false, "Override run guardrails (requires --yes)")
	cmd.Flags().BoolVar(&flagYes, "yes", false, "Confirm guardrail overrides (non-interactive)")
	cmd.Flags().StringVar(&flagReport, "report", "", "Write the run result as JSON to this path")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
}

// resolveArgs merges flag values with the environment-tunable defaults in
// cfg.Recon and validates the result. Explicitly set flags win; env
// defaults fill only flags the operator left untouched.
func resolveArgs(cmd *cobra.Command, cfg *config.Config) (pipeline.Args, error) {
	from, to, err := pipeline.ParseWindow(flagFrom, flagTo)
	if err != nil {
		return pipeline.Args{}, err
	}

	args := pipeline.Args{
		From:          from,
		To:            to,
		DryRun:        flagDryRun,
		Force:         flagForce,
		Yes:           flagYes,
		Limit:         flagLimit,
		AutoThreshold: flagAutoThreshold,
		MinConf:       flagMinConf,
		Checkpoint:    flagCheckpoint,
	}

	flags := cmd.Flags()
	if !flags.Changed("autoThreshold") {
		args.AutoThreshold = cfg.Recon.AutoThreshold
	}
	if !flags.Changed("minConf") {
		args.MinConf = cfg.Recon.MinConf
	}
	if !flags.Changed("checkpoint") && cfg.Recon.Checkpoint != "" {
		args.Checkpoint = cfg.Recon.Checkpoint
	}

	return args, args.Validate()
}

// stageEnv bundles the handles a booted stage command runs with.
type stageEnv struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
	wh  warehouse.Conn
}

func (e *stageEnv) deps() pipeline.Deps {
	return pipeline.Deps{DB: e.db, WH: e.wh, Log: e.log}
}

func (e *stageEnv) Close() {
	if e.wh != nil {
		_ = e.wh.Close()
	}
	if e.log != nil {
		_ = e.log.Sync()
	}
}

// bootStage connects the stores a validated run needs. Missing tables or
// columns in the transactional store fail the run before any stage logic
// executes. Warehouse DDL is skipped entirely under dry-run.
func bootStage(ctx context.Context, cfg *config.Config, dryRun bool) (*stageEnv, error) {
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if problems := database.InspectTables(db, models.RequiredTables()); len(problems) > 0 {
		for _, p := range problems {
			l.Error("Schema preflight problem", zap.String("problem", p))
		}
		return nil, fmt.Errorf("schema preflight found %d problem(s)", len(problems))
	}

	wh, err := warehouse.NewConn(cfg.Warehouse)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to warehouse: %w", err)
	}

	if !dryRun {
		if err := warehouse.InitSchema(ctx, wh); err != nil {
			l.Warn("Warehouse schema init failed, continuing with existing tables", zap.Error(err))
		}
	}

	return &stageEnv{cfg: cfg, log: l, db: db, wh: wh}, nil
}

// runStage is the shared RunE body for the window-scoped stage commands.
// Operator input is validated to completion before any store is touched,
// so a bad window never opens a connection.
func runStage(cmd *cobra.Command, stage func(ctx context.Context, env *stageEnv, args pipeline.Args) (pipeline.Outcome, error)) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	args, err := resolveArgs(cmd, cfg)
	if err != nil {
		return err
	}

	env, err := bootStage(ctx, cfg, args.DryRun)
	if err != nil {
		return err
	}
	defer env.Close()
	env.log = logger.WithWindow(env.log, args.From, args.To)

	outcome, err := stage(ctx, env, args)
	if err != nil {
		return err
	}

	exitCode = outcome.ExitCode()
	return nil
}
