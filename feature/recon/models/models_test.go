package models_test

import (
	"testing"

	"github.com/rivalapexmediation/reconciler/feature/recon/models"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	assert.Equal(t, "recon_receipts", models.Receipt{}.TableName())
	assert.Equal(t, "raw_statement_loads", models.StatementLoad{}.TableName())
	assert.Equal(t, "recon_expected", models.ExpectedRecord{}.TableName())
}

func TestPlacementKey(t *testing.T) {
	assert.Equal(t, "app-1:unit-9", models.PlacementKey("app-1", "unit-9"))
	assert.Equal(t, ":", models.PlacementKey("", ""))
}

func TestRequiredTables(t *testing.T) {
	required := models.RequiredTables()

	assert.Len(t, required, 3)
	assert.Contains(t, required["recon_expected"], "expected_usd")
	assert.Contains(t, required["raw_statement_loads"], "load_id")
	assert.Contains(t, required["recon_receipts"], "request_id")
}
