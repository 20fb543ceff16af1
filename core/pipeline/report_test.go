package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	payload := map[string]any{"seen": 3, "written": 2}

	require.NoError(t, WriteReport(path, payload))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, float64(3), decoded["seen"])
	assert.Equal(t, float64(2), decoded["written"])
}

func TestWriteReport_EmptyPathIsNoOp(t *testing.T) {
	assert.NoError(t, WriteReport("", map[string]any{"ignored": true}))
}

func TestWriteReport_UnwritablePath(t *testing.T) {
	err := WriteReport(filepath.Join(t.TempDir(), "missing", "report.json"), struct{}{})
	assert.ErrorContains(t, err, "failed to write report")
}
