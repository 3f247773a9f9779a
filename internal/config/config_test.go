package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/PhucDaizz/parkledger/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "parkledger.db", cfg.DB.Path)
	require.Equal(t, 5*time.Second, cfg.DB.OpTimeout)
	require.Equal(t, "http://127.0.0.1:5000", cfg.Recognizer.URL)
	require.Equal(t, 10*time.Second, cfg.Recognizer.Timeout)
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9090
db:
  path: /var/lib/parkledger/data.db
  op_timeout: 2s
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	t.Setenv("PARKLEDGER_CONFIG_PATH", path)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "/var/lib/parkledger/data.db", cfg.DB.Path)
	require.Equal(t, 2*time.Second, cfg.DB.OpTimeout)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644))
	t.Setenv("PARKLEDGER_CONFIG_PATH", path)
	t.Setenv("PARKLEDGER_SERVER_PORT", "7070")
	t.Setenv("PARKLEDGER_RECOGNIZER_TIMEOUT", "3s")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, 3*time.Second, cfg.Recognizer.Timeout)
}

func TestInvalidPortRejected(t *testing.T) {
	t.Setenv("PARKLEDGER_SERVER_PORT", "not-a-port")

	_, err := config.Load()
	require.Error(t, err)
}
