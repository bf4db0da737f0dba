package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "dealdesk.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "https://api.compcast.dev/v1", cfg.Comps.BaseURL)
	assert.InDelta(t, 5, cfg.Comps.RatePerSec, 0.001)
	assert.Equal(t, 15, cfg.Comps.TimeoutSecs)
	assert.InDelta(t, 75.0, cfg.Analysis.DefaultLTV, 0.001)
	assert.Zero(t, cfg.Analysis.TargetCashLeft)
	assert.Empty(t, cfg.KPI.CategoriesFile)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/dealdesk
server:
  port: 9090
analysis:
  default_ltv: 70
  target_cash_left: 5000
kpi:
  categories_file: /etc/dealdesk/categories.yaml
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/dealdesk", cfg.Store.DatabaseURL)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.InDelta(t, 70.0, cfg.Analysis.DefaultLTV, 0.001)
	assert.InDelta(t, 5000.0, cfg.Analysis.TargetCashLeft, 0.001)
	assert.Equal(t, "/etc/dealdesk/categories.yaml", cfg.KPI.CategoriesFile)
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("DEALDESK_STORE_DRIVER", "postgres")
	t.Setenv("DEALDESK_SERVER_PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}
