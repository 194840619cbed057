// Package redisstore implements kv.Store on Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Mindburn-Labs/goalkeeper/pkg/kv"
)

// DefaultAddr is the local Redis used when nothing else is configured.
const DefaultAddr = "localhost:6379"

// Store implements kv.Store using Redis.
type Store struct {
	client redis.UniversalClient
}

var (
	_ kv.Store   = (*Store)(nil)
	_ kv.Flusher = (*Store)(nil)
)

// New creates a store backed by a single Redis node.
func New(addr string, password string, db int) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Store{client: rdb}
}

// NewFromClient wraps an existing client. The caller keeps ownership of it.
func NewFromClient(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

// Client exposes the underlying client.
func (s *Store) Client() redis.UniversalClient {
	return s.client
}

// Set issues SET followed by EXPIRE in one MULTI block. EXPIRE with a
// non-positive TTL deletes the key.
func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, value, 0)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return unavailable("set", key, err)
	}
	return nil
}

// Get reads key. redis.Nil is reported as absent.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("get", key, err)
	}
	return v, true, nil
}

// Del removes key. Removing a missing key is not an error.
func (s *Store) Del(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return unavailable("del", key, err)
	}
	return nil
}

// TTL returns the remaining lifetime of key, or one of the kv sentinels.
func (s *Store) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, unavailable("ttl", key, err)
	}
	switch d {
	case -2:
		return kv.TTLMissing, nil
	case -1:
		return kv.TTLPersistent, nil
	}
	return d, nil
}

// FlushAll drops every key of the selected database (FLUSHDB).
func (s *Store) FlushAll(ctx context.Context) error {
	if err := s.client.FlushDB(ctx).Err(); err != nil {
		return unavailable("flushdb", "", err)
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable("ping", "", err)
	}
	return nil
}

// Close releases the client's connections.
func (s *Store) Close() error {
	return s.client.Close()
}

func unavailable(op, key string, err error) error {
	if key == "" {
		return fmt.Errorf("%w: redis %s: %w", kv.ErrUnavailable, op, err)
	}
	return fmt.Errorf("%w: redis %s %q: %w", kv.ErrUnavailable, op, key, err)
}
