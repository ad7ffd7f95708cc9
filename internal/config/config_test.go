package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/tally/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8372", cfg.Listen)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, config.BackendMemory, cfg.Store.Backend)
	assert.Equal(t, uint64(20), cfg.Engine.RentPerByte)
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.BackendMemory, cfg.Store.Backend)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tally.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":9000"
log_level: debug
store:
  backend: redis
  redis:
    addr: redis.internal:6379
    prefix: "prod:"
engine:
  rent_per_byte: 5
  lock_ttl: 30s
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, config.BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis.internal:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, "prod:", cfg.Store.Redis.Prefix)
	assert.Equal(t, uint64(5), cfg.Engine.RentPerByte)
	assert.Equal(t, 30*time.Second, cfg.Engine.LockTTL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tally.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: \":9000\"\n"), 0o600))

	t.Setenv("TALLY_LISTEN", ":7000")
	t.Setenv("TALLY_STORE_BACKEND", "redis")
	t.Setenv("TALLY_STORE_REDIS_ADDR", "10.0.0.1:6379")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Listen)
	assert.Equal(t, config.BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "10.0.0.1:6379", cfg.Store.Redis.Addr)
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("TALLY_STORE_BACKEND", "cassandra")

	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store backend")
}
