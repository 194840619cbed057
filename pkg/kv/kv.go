// Package kv defines the key-value contract goal tracking is built on.
//
// A Store needs four primitives: write with expiration, read, delete and a
// TTL query. Implementations live under pkg/store.
package kv

import (
	"context"
	"errors"
	"time"
)

// TTL sentinels follow Redis TTL replies.
const (
	// TTLMissing is returned by Store.TTL when the key does not exist.
	TTLMissing time.Duration = -2
	// TTLPersistent is returned by Store.TTL when the key exists without an expiration.
	TTLPersistent time.Duration = -1
)

// ErrUnavailable marks errors caused by the backend being unreachable or
// failing a request. Backends wrap their transport errors with it.
var ErrUnavailable = errors.New("kv: backend unavailable")

// Store is the backend consumed by goals.
type Store interface {
	// Set writes value at key and expires it after ttl. A non-positive ttl
	// removes the key, matching Redis EXPIRE.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the value at key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Del removes key. Deleting an absent key is not an error.
	Del(ctx context.Context, key string) error
	// TTL returns the remaining time to live of key, or one of the TTL sentinels.
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Flusher is implemented by stores that can drop every key. Only test
// fixtures and operator tooling call it.
type Flusher interface {
	FlushAll(ctx context.Context) error
}

// RoundTTL rounds a positive remaining lifetime to whole seconds the way
// Redis reports TTL, never rounding a live key down to zero.
func RoundTTL(remaining time.Duration) time.Duration {
	if remaining <= 0 {
		return TTLMissing
	}
	if r := remaining.Round(time.Second); r > 0 {
		return r
	}
	return remaining
}
