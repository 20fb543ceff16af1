package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// StageState records one stage's completion in the checkpoint file.
type StageState struct {
	Done       bool      `json:"done"`
	DryRun     bool      `json:"dry_run"`
	Outcome    string    `json:"outcome"`
	FinishedAt time.Time `json:"finished_at"`
}

// Checkpoint maps stage names to completion state so an interrupted
// pipeline run can resume from its first incomplete stage.
type Checkpoint struct {
	Stages map[string]StageState `json:"stages"`
}

// LoadCheckpoint reads the checkpoint file. An empty path or a missing
// file yields an empty checkpoint.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	cp := &Checkpoint{Stages: map[string]StageState{}}
	if path == "" {
		return cp, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cp, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cp); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoint %s: %w", path, err)
	}
	if cp.Stages == nil {
		cp.Stages = map[string]StageState{}
	}
	return cp, nil
}

// Done reports whether the stage already completed under the same dry-run
// value. A dry-run completion never satisfies a wet run, and vice versa.
func (c *Checkpoint) Done(stage string, dryRun bool) bool {
	st, ok := c.Stages[stage]
	return ok && st.Done && st.DryRun == dryRun
}

// MarkDone records a completed stage.
func (c *Checkpoint) MarkDone(stage string, dryRun bool, outcome Outcome) {
	c.Stages[stage] = StageState{
		Done:       true,
		DryRun:     dryRun,
		Outcome:    outcome.String(),
		FinishedAt: time.Now().UTC(),
	}
}

// Save writes the checkpoint file. An empty path disables persistence.
func (c *Checkpoint) Save(path string) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint %s: %w", path, err)
	}
	return nil
}
