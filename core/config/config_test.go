package config_test

import (
	"testing"

	"github.com/rivalapexmediation/reconciler/core/config"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	assert.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, "mediation", cfg.Database.Name)
	assert.Equal(t, "localhost:9000", cfg.Warehouse.Addr)
	assert.Equal(t, "mediation", cfg.Warehouse.Database)
	assert.Equal(t, "statements", cfg.Storage.Bucket)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.InDelta(t, 0.9, cfg.Recon.AutoThreshold, 1e-9)
	assert.InDelta(t, 0.5, cfg.Recon.MinConf, 1e-9)
	assert.Equal(t, "", cfg.Recon.Checkpoint)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("DATABASE_PORT", "3310")
	t.Setenv("WAREHOUSE_ADDR", "ch-prod:9000")
	t.Setenv("RECON_AUTO_THRESHOLD", "0.85")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := config.LoadConfig(t.TempDir())
	assert.NoError(t, err)

	assert.Equal(t, 3310, cfg.Database.Port)
	assert.Equal(t, "ch-prod:9000", cfg.Warehouse.Addr)
	assert.InDelta(t, 0.85, cfg.Recon.AutoThreshold, 1e-9)
	assert.Equal(t, "json", cfg.Log.Format)
}
