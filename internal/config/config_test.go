package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 15*time.Minute, cfg.Auth.CodeTTL)
	assert.Equal(t, int64(5<<20), cfg.Limits.UploadBytes)
	assert.Equal(t, 5, cfg.Limits.LoginBurst)
	assert.Equal(t, 32, cfg.Report.RangeDays)
	assert.Empty(t, cfg.Auth.JWTSecret)

	assert.Equal(t, filepath.Join("data", "inventario.json"), cfg.Data.InventoryPath())
	assert.Equal(t, filepath.Join("data", "historial.json"), cfg.Data.LedgerPath())
	assert.Equal(t, filepath.Join("data", "usuarios.sqlite3"), cfg.Data.AccountsPath())
	assert.Equal(t, filepath.Join("data", "uploads"), cfg.Data.UploadsPath())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zaloga.yaml")
	content := `
server:
  addr: ":9000"
  read_timeout: 5s
data:
  dir: /srv/zaloga
  ledger_file: /var/lib/history.json
report:
  range_days: 7
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 7, cfg.Report.RangeDays)
	assert.Equal(t, filepath.Join("/srv/zaloga", "inventario.json"), cfg.Data.InventoryPath())
	assert.Equal(t, "/var/lib/history.json", cfg.Data.LedgerPath())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ZALOGA_SERVER_ADDR", ":7070")
	t.Setenv("ZALOGA_AUTH_JWT_SECRET", "from-env")
	t.Setenv("ZALOGA_AUTH_TOKEN_TTL", "1h")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("ZALOGA_REPORT_RANGE_DAYS", "0")
	_, err = Load("")
	assert.Error(t, err)
}
