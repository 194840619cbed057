package goalkeeper

import (
	"testing"
	"time"

	"github.com/Mindburn-Labs/goalkeeper/pkg/store/memstore"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// newTestConfig returns a Config on a fresh in-memory store sharing one fake
// clock with it.
func newTestConfig(t *testing.T) (*Config, *memstore.Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)}
	store := memstore.New(memstore.WithClock(clock.Now))
	cfg := NewConfig()
	cfg.SetStore(store)
	cfg.SetClock(clock.Now)
	return cfg, store, clock
}
