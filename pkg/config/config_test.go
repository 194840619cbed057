package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mindburn-Labs/goalkeeper/pkg/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GOALKEEPER_NAMESPACE", "GOALKEEPER_EXPIRATION", "GOALKEEPER_BACKEND",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "DATABASE_URL",
		"LOG_LEVEL", "LOG_FORMAT", "GOALKEEPER_TELEMETRY",
		"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_INSECURE",
		"GOALKEEPER_ENV", "OTEL_TRACES_SAMPLER_ARG", "GOALKEEPER_TELEMETRY_BATCH_TIMEOUT",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

// TestLoad_Defaults verifies that Load() returns the library defaults
// when no environment variables are set.
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "Goalkeeper", cfg.Namespace)
	assert.Equal(t, 24*time.Hour, cfg.Expiration)
	assert.Equal(t, config.BackendRedis, cfg.Backend)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "development", cfg.Telemetry.Environment)
	assert.Equal(t, 1.0, cfg.Telemetry.SampleRate)
	assert.Equal(t, 5*time.Second, cfg.Telemetry.BatchTimeout)
}

// TestLoad_Overrides verifies that environment variables override defaults.
func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOALKEEPER_NAMESPACE", "billing")
	t.Setenv("GOALKEEPER_EXPIRATION", "90m")
	t.Setenv("GOALKEEPER_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://gk@db:5432/gk")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("GOALKEEPER_TELEMETRY", "true")
	t.Setenv("GOALKEEPER_ENV", "production")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.25")
	t.Setenv("GOALKEEPER_TELEMETRY_BATCH_TIMEOUT", "2s")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "billing", cfg.Namespace)
	assert.Equal(t, 90*time.Minute, cfg.Expiration)
	assert.Equal(t, config.BackendPostgres, cfg.Backend)
	assert.Equal(t, "postgres://gk@db:5432/gk", cfg.DatabaseURL)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "production", cfg.Telemetry.Environment)
	assert.Equal(t, 0.25, cfg.Telemetry.SampleRate)
	assert.Equal(t, 2*time.Second, cfg.Telemetry.BatchTimeout)
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOALKEEPER_EXPIRATION", "soon")
	_, err := config.Load()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("GOALKEEPER_BACKEND", "etcd")
	_, err = config.Load()
	assert.ErrorContains(t, err, "unknown backend")

	clearEnv(t)
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "1.5")
	_, err = config.Load()
	assert.ErrorContains(t, err, "sample rate")
}

func TestLoadFile_EnvWins(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "goalkeeper.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
namespace: reports
expiration: 2h
backend: sqlite
database_url: /var/lib/goalkeeper/goals.db
redis:
  addr: cache:6379
telemetry:
  enabled: true
  endpoint: collector:4317
`), 0o600))
	t.Setenv("GOALKEEPER_NAMESPACE", "from-env")

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Namespace)
	assert.Equal(t, 2*time.Hour, cfg.Expiration)
	assert.Equal(t, config.BackendSQLite, cfg.Backend)
	assert.Equal(t, "/var/lib/goalkeeper/goals.db", cfg.DatabaseURL)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, "collector:4317", cfg.Telemetry.Endpoint)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "INFO", cfg.LogLevel, "unset keys keep defaults")
}

func TestLoadFile_Errors(t *testing.T) {
	clearEnv(t)
	_, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("namespace: [unterminated"), 0o600))
	_, err = config.LoadFile(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	cfg := config.Defaults()
	cfg.Backend = config.BackendSQLite
	cfg.DatabaseURL = ""
	assert.Error(t, cfg.Validate())

	cfg.Backend = config.BackendMemory
	assert.NoError(t, cfg.Validate())

	cfg.Backend = config.BackendSQLite
	cfg.DatabaseURL = "postgres://u@localhost/goals"
	assert.Error(t, cfg.Validate())

	cfg.Backend = config.BackendPostgres
	assert.NoError(t, cfg.Validate())
	cfg.DatabaseURL = "host=localhost dbname=goals sslmode=disable"
	assert.NoError(t, cfg.Validate())
	cfg.DatabaseURL = config.DefaultDatabaseURL
	assert.Error(t, cfg.Validate())
	cfg.DatabaseURL = "sqlite://goals.db"
	assert.Error(t, cfg.Validate())
}
