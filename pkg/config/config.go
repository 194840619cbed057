// Package config loads goalkeeper process configuration from the
// environment and an optional YAML file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Backend names accepted in Config.Backend.
const (
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	// BackendMemory keeps records in process memory. Nothing survives the
	// process, so from the CLI it is only useful in tests.
	BackendMemory = "memory"
)

// DefaultDatabaseURL is the SQLite file used when DATABASE_URL is unset.
const DefaultDatabaseURL = "goalkeeper.db"

// Config holds process configuration.
type Config struct {
	Namespace   string          `yaml:"namespace" env:"GOALKEEPER_NAMESPACE"`
	Expiration  time.Duration   `yaml:"expiration" env:"GOALKEEPER_EXPIRATION"`
	Backend     string          `yaml:"backend" env:"GOALKEEPER_BACKEND"`
	Redis       RedisConfig     `yaml:"redis"`
	DatabaseURL string          `yaml:"database_url" env:"DATABASE_URL"`
	LogLevel    string          `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat   string          `yaml:"log_format" env:"LOG_FORMAT"` // "text" | "json"
	Telemetry   TelemetryConfig `yaml:"telemetry"`
}

// RedisConfig locates the Redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	Enabled      bool          `yaml:"enabled" env:"GOALKEEPER_TELEMETRY"`
	Endpoint     string        `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure     bool          `yaml:"insecure" env:"OTEL_EXPORTER_OTLP_INSECURE"`
	Environment  string        `yaml:"environment" env:"GOALKEEPER_ENV"`
	SampleRate   float64       `yaml:"sample_rate" env:"OTEL_TRACES_SAMPLER_ARG"` // 0.0 to 1.0
	BatchTimeout time.Duration `yaml:"batch_timeout" env:"GOALKEEPER_TELEMETRY_BATCH_TIMEOUT"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Namespace:  "Goalkeeper",
		Expiration: 24 * time.Hour,
		Backend:    BackendRedis,
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		DatabaseURL: DefaultDatabaseURL,
		LogLevel:    "INFO",
		LogFormat:   "text",
		Telemetry: TelemetryConfig{
			Endpoint:     "localhost:4317",
			Insecure:     true,
			Environment:  "development",
			SampleRate:   1.0,
			BatchTimeout: 5 * time.Second,
		},
	}
}

// Load applies environment variables over the defaults.
func Load() (*Config, error) {
	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadFile applies a YAML file, then environment variables, over the
// defaults. Environment variables win.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", path, err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the backend selection and telemetry sampling. Namespace
// and expiration are passed through unchecked.
func (c *Config) Validate() error {
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("telemetry sample rate %v outside [0, 1]", c.Telemetry.SampleRate)
	}
	switch c.Backend {
	case BackendRedis, BackendMemory:
		return nil
	case BackendSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("backend %q requires DATABASE_URL", c.Backend)
		}
		if isPostgresURL(c.DatabaseURL) {
			return fmt.Errorf("backend %q given a postgres DATABASE_URL", c.Backend)
		}
		return nil
	case BackendPostgres:
		if c.DatabaseURL == "" || c.DatabaseURL == DefaultDatabaseURL || strings.HasPrefix(c.DatabaseURL, "sqlite://") {
			return fmt.Errorf("backend %q requires a postgres DATABASE_URL", c.Backend)
		}
		return nil
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
}

func isPostgresURL(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
