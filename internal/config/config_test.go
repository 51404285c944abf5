package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/raw", cfg.Data.RawDir)
	assert.Equal(t, "data/processed", cfg.Data.ProcessedDir)
	assert.Equal(t, "data/analytics", cfg.Data.AnalyticsDir)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "trazamatic.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 90, cfg.KPI.ActiveWindowDays)
	assert.Equal(t, 30, cfg.KPI.RevenueWindowDays)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	b, err := yaml.Marshal(map[string]any{
		"data": map[string]any{
			"raw_dir":       "/srv/trazamatic/raw",
			"processed_dir": "/srv/trazamatic/processed",
			"analytics_dir": "/srv/trazamatic/analytics",
		},
		"store": map[string]any{"driver": "none"},
		"kpi":   map[string]any{"active_window_days": 180},
		"log":   map[string]any{"level": "debug", "format": "console"},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), b, 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/trazamatic/raw", cfg.Data.RawDir)
	assert.Equal(t, "none", cfg.Store.Driver)
	assert.Equal(t, 180, cfg.KPI.ActiveWindowDays)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Keys absent from the file keep their defaults.
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30, cfg.KPI.RevenueWindowDays)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRAZAMATIC_STORE_DRIVER", "postgres")
	t.Setenv("TRAZAMATIC_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "json"}))
	require.Error(t, InitLogger(LogConfig{Level: "nonsense", Format: "json"}))
}
