package observability

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Mindburn-Labs/goalkeeper/pkg/kv"
)

// ErrFlushUnsupported is returned by FlushAll when the wrapped store cannot flush.
var ErrFlushUnsupported = errors.New("observability: wrapped store does not support flush")

// Store decorates a kv.Store with tracing, metrics and debug logging.
// Results and errors pass through unchanged.
type Store struct {
	next     kv.Store
	provider *Provider
	logger   *slog.Logger
}

var (
	_ kv.Store   = (*Store)(nil)
	_ kv.Flusher = (*Store)(nil)
)

// Instrument wraps next. A nil logger uses slog.Default().
func Instrument(next kv.Store, p *Provider, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		next:     next,
		provider: p,
		logger:   logger.With("component", "kv"),
	}
}

// Unwrap returns the decorated store.
func (s *Store) Unwrap() kv.Store { return s.next }

// Set forwards to the wrapped store inside a "set" span.
func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, done := s.track(ctx, "set", key)
	err := s.next.Set(ctx, key, value, ttl)
	done(err, "ttl", ttl)
	return err
}

// Get forwards to the wrapped store inside a "get" span.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, done := s.track(ctx, "get", key)
	v, ok, err := s.next.Get(ctx, key)
	done(err, "found", ok)
	return v, ok, err
}

// Del forwards to the wrapped store inside a "del" span.
func (s *Store) Del(ctx context.Context, key string) error {
	ctx, done := s.track(ctx, "del", key)
	err := s.next.Del(ctx, key)
	done(err)
	return err
}

// TTL forwards to the wrapped store inside a "ttl" span.
func (s *Store) TTL(ctx context.Context, key string) (time.Duration, error) {
	ctx, done := s.track(ctx, "ttl", key)
	d, err := s.next.TTL(ctx, key)
	done(err, "ttl", d)
	return d, err
}

// FlushAll flushes the wrapped store, or returns ErrFlushUnsupported
// when it is not a kv.Flusher.
func (s *Store) FlushAll(ctx context.Context) error {
	f, ok := s.next.(kv.Flusher)
	if !ok {
		return ErrFlushUnsupported
	}
	ctx, done := s.track(ctx, "flush", "")
	err := f.FlushAll(ctx)
	done(err)
	return err
}

func (s *Store) track(ctx context.Context, op, key string) (context.Context, func(error, ...any)) {
	start := time.Now()
	ctx, finish := s.provider.TrackOperation(ctx, "goalkeeper.kv."+op, attribute.String("op", op))
	return ctx, func(err error, args ...any) {
		finish(err)
		attrs := append([]any{"op", op, "key", key, "duration", time.Since(start)}, args...)
		if err != nil {
			s.logger.DebugContext(ctx, "kv call failed", append(attrs, "error", err)...)
			return
		}
		s.logger.DebugContext(ctx, "kv call", attrs...)
	}
}
