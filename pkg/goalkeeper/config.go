package goalkeeper

import (
	"sync"
	"time"

	"github.com/Mindburn-Labs/goalkeeper/pkg/kv"
	"github.com/Mindburn-Labs/goalkeeper/pkg/store/redisstore"
)

const (
	DefaultNamespace  = "Goalkeeper"
	DefaultExpiration = 24 * time.Hour
)

// Settings is what a Goal reads from its environment.
type Settings interface {
	Namespace() string
	Expiration() time.Duration
	Store() kv.Store
	Now() time.Time
}

// Config is a mutable Settings safe for concurrent use. Values are not
// validated; an empty namespace or non-positive expiration is passed through
// to the store as is.
type Config struct {
	mu         sync.RWMutex
	namespace  string
	expiration time.Duration
	store      kv.Store
	clock      func() time.Time
}

var _ Settings = (*Config)(nil)

// NewConfig returns a Config holding the defaults. The store is created on
// first read unless SetStore is called before.
func NewConfig() *Config {
	return &Config{
		namespace:  DefaultNamespace,
		expiration: DefaultExpiration,
		clock:      time.Now,
	}
}

var (
	defaultOnce   sync.Once
	defaultConfig *Config
)

// Default returns the process-wide Config.
func Default() *Config {
	defaultOnce.Do(func() { defaultConfig = NewConfig() })
	return defaultConfig
}

// Namespace returns the key prefix.
func (c *Config) Namespace() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.namespace
}

// SetNamespace changes the key prefix. Existing goals pick it up on
// their next call.
func (c *Config) SetNamespace(ns string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.namespace = ns
}

// Expiration returns the lifetime given to goals created without
// WithExpiration.
func (c *Config) Expiration() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expiration
}

// SetExpiration changes the default lifetime for goals created afterwards.
func (c *Config) SetExpiration(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expiration = d
}

// Store returns the configured store, connecting to Redis at
// redisstore.DefaultAddr if none was set.
func (c *Config) Store() kv.Store {
	c.mu.RLock()
	s := c.store
	c.mu.RUnlock()
	if s != nil {
		return s
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = redisstore.New(redisstore.DefaultAddr, "", 0)
	}
	return c.store
}

// SetStore replaces the backend.
func (c *Config) SetStore(s kv.Store) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = s
}

// Now returns the current time from the configured clock.
func (c *Config) Now() time.Time {
	c.mu.RLock()
	clock := c.clock
	c.mu.RUnlock()
	return clock()
}

// SetClock replaces time.Now. A nil clock restores it.
func (c *Config) SetClock(clock func() time.Time) {
	if clock == nil {
		clock = time.Now
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock = clock
}

// SetNamespace sets the namespace of the default Config.
func SetNamespace(ns string) { Default().SetNamespace(ns) }

// SetExpiration sets the expiration of the default Config.
func SetExpiration(d time.Duration) { Default().SetExpiration(d) }

// SetStore sets the store of the default Config.
func SetStore(s kv.Store) { Default().SetStore(s) }
