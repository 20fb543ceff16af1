package cmd

import (
	"context"

	"github.com/rivalapexmediation/reconciler/core/pipeline"
	"github.com/rivalapexmediation/reconciler/feature/recon"

	"github.com/spf13/cobra"
)

// pipelineCmd runs every reconciliation stage over one window.
var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run all reconciliation stages over one window",
	Long: `Run the expected, match, and reconcile stages in order against a single
window. With a checkpoint file the run is resumable: stages recorded as
done are skipped, so an interrupted pipeline picks up where it stopped.

Statement ingestion is not part of the pipeline; load reports with the
ingest command as they arrive from the networks.

Examples:
  # Full pipeline for one day
  reconciler pipeline --from 2026-03-01T00:00:00Z --to 2026-03-02T00:00:00Z

  # Resumable run
  reconciler pipeline --from 2026-03-01T00:00:00Z --to 2026-03-02T00:00:00Z --checkpoint run.cp

  # Rehearse the whole pipeline without writing
  reconciler pipeline --from 2026-03-01T00:00:00Z --to 2026-03-02T00:00:00Z --dry-run`,
	RunE: runReconPipeline,
}

func init() {
	RootCmd.AddCommand(pipelineCmd)
	addWindowFlags(pipelineCmd)
	pipelineCmd.Flags().IntVar(&flagLimit, "limit", pipeline.MaxLimit, "Maximum receipts the expected stage may process")
	pipelineCmd.Flags().Float64Var(&flagAutoThreshold, "autoThreshold", pipeline.DefaultAutoThreshold, "Confidence at or above which a match is accepted outright")
	pipelineCmd.Flags().Float64Var(&flagMinConf, "minConf", pipeline.DefaultMinConf, "Confidence below which a candidate is discarded")
	pipelineCmd.Flags().StringVar(&flagCheckpoint, "checkpoint", "", "Checkpoint file for resumable runs")
}

func runReconPipeline(cmd *cobra.Command, args []string) error {
	return runStage(cmd, func(ctx context.Context, env *stageEnv, run pipeline.Args) (pipeline.Outcome, error) {
		return pipeline.RunPipeline(ctx, env.deps(), run, recon.Stages())
	})
}
