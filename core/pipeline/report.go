package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteReport serializes a stage result to a JSON file for downstream
// tooling. An empty path means no report was requested.
func WriteReport(path string, v any) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
