package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Mindburn-Labs/goalkeeper/pkg/config"
	"github.com/Mindburn-Labs/goalkeeper/pkg/goalkeeper"
	"github.com/Mindburn-Labs/goalkeeper/pkg/kv"
	"github.com/Mindburn-Labs/goalkeeper/pkg/observability"
	"github.com/Mindburn-Labs/goalkeeper/pkg/store/memstore"
	"github.com/Mindburn-Labs/goalkeeper/pkg/store/redisstore"
	"github.com/Mindburn-Labs/goalkeeper/pkg/store/sqlstore"
)

// openStore is a variable to allow swapping the backend in tests
var openStore = openConfiguredStore

func openConfiguredStore(ctx context.Context, cfg *config.Config) (kv.Store, func() error, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		s := redisstore.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		return s, s.Close, nil
	case config.BackendSQLite, config.BackendPostgres:
		s, err := sqlstore.OpenDialect(ctx, sqlstore.Dialect(cfg.Backend), cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.BackendMemory:
		return memstore.New(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func telemetryConfig(cfg *config.Config) *observability.Config {
	tel := observability.DefaultConfig()
	tel.ServiceVersion = version
	tel.Enabled = cfg.Telemetry.Enabled
	tel.OTLPEndpoint = cfg.Telemetry.Endpoint
	tel.Insecure = cfg.Telemetry.Insecure
	tel.Environment = cfg.Telemetry.Environment
	tel.SampleRate = cfg.Telemetry.SampleRate
	tel.BatchTimeout = cfg.Telemetry.BatchTimeout
	return tel
}

// openSettings wires the store, telemetry and namespace into a goalkeeper
// Config. cleanup releases everything opened here.
func openSettings(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*goalkeeper.Config, func(), error) {
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	provider, err := observability.New(ctx, telemetryConfig(cfg))
	if err != nil {
		_ = closeStore()
		return nil, nil, err
	}

	gk := goalkeeper.NewConfig()
	gk.SetNamespace(cfg.Namespace)
	gk.SetExpiration(cfg.Expiration)
	gk.SetStore(observability.Instrument(store, provider, logger))

	cleanup := func() {
		if err := provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.WarnContext(ctx, "telemetry shutdown failed", "error", err)
		}
		if err := closeStore(); err != nil {
			logger.WarnContext(ctx, "close backend failed", "error", err)
		}
	}
	return gk, cleanup, nil
}
