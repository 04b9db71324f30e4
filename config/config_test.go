package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(path, []byte(`
server:
  port: 8081
  cache_ttl_seconds: 10
database:
  driver: postgres
  dsn: "host=localhost user=home dbname=home"
push:
  vapid_public_key: pub
  vapid_private_key: priv
`), 0o600)
	require.NoError(t, err)

	cfg, err := Load(path, false)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.CacheTTL)
	assert.Equal(t, "./public", cfg.Server.StaticDir)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Push.Enabled())
	assert.Equal(t, 3600, cfg.Push.TTL)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
}

func TestLoad_Defaults(t *testing.T) {
	testCases := []struct {
		name         string
		path         string
		allowMissing bool
		expectErr    bool
	}{
		{name: "missing file allowed", path: "does-not-exist.yaml", allowMissing: true},
		{name: "missing file rejected", path: "does-not-exist.yaml", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), tc.path), tc.allowMissing)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 3000, cfg.Server.Port)
			assert.Equal(t, "sqlite", cfg.Database.Driver)
			assert.Equal(t, "./database.db", cfg.Database.DSN)
			assert.Equal(t, 1, cfg.Database.MaxOpenConns)
			assert.False(t, cfg.Push.Enabled())
			assert.Equal(t, "info", cfg.Log.Level)
		})
	}
}
