package goalkeeper

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TimeFormat is the layout of stored completion times.
const TimeFormat = time.RFC3339Nano

// Goal is a label that has either been met or not.
type Goal struct {
	label      string
	expiration time.Duration
	ref        any
	settings   Settings
}

type goalOptions struct {
	expiration    time.Duration
	hasExpiration bool
	ref           any
	settings      Settings
}

// Option configures a Goal.
type Option func(*goalOptions)

// WithExpiration overrides the default expiration of the settings.
func WithExpiration(d time.Duration) Option {
	return func(o *goalOptions) {
		o.expiration = d
		o.hasExpiration = true
	}
}

// WithRef attaches an arbitrary value for the caller's own use.
func WithRef(ref any) Option {
	return func(o *goalOptions) { o.ref = ref }
}

// WithSettings binds the goal to s instead of Default().
func WithSettings(s Settings) Option {
	return func(o *goalOptions) { o.settings = s }
}

// Label joins parts with ":" into a compound label.
func Label(parts ...any) string {
	ss := make([]string, len(parts))
	for i, p := range parts {
		ss[i] = fmt.Sprint(p)
	}
	return strings.Join(ss, ":")
}

// NewGoal creates a goal. Uniqueness of label is not checked. Unless
// WithExpiration is given, the settings' expiration at this moment is kept
// for the life of the goal.
func NewGoal(label string, opts ...Option) *Goal {
	var o goalOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.settings == nil {
		o.settings = Default()
	}
	if !o.hasExpiration {
		o.expiration = o.settings.Expiration()
	}
	return &Goal{
		label:      label,
		expiration: o.expiration,
		ref:        o.ref,
		settings:   o.settings,
	}
}

// Label returns the goal identity.
func (g *Goal) Label() string { return g.label }

// Expiration returns the record lifetime captured at construction.
func (g *Goal) Expiration() time.Duration { return g.expiration }

// Ref returns the caller payload attached with WithRef, or nil.
func (g *Goal) Ref() any { return g.ref }

// String returns the label.
func (g *Goal) String() string { return g.label }

// Key is the namespaced store key, derived from the current namespace.
func (g *Goal) Key() string {
	return g.settings.Namespace() + ":" + g.label
}

// Equal reports whether both goals carry the same label.
func (g *Goal) Equal(other *Goal) bool {
	if g == nil || other == nil {
		return false
	}
	return g.label == other.label
}

// MarkMet records the current time as the completion of g unless g is
// already met, in which case the existing record and its TTL are kept.
//
// The check and the write are separate store calls, so concurrent callers
// may both write.
func (g *Goal) MarkMet(ctx context.Context) (*Goal, error) {
	met, err := g.IsMet(ctx)
	if err != nil {
		return nil, err
	}
	if met {
		return g, nil
	}

	key := g.Key()
	value := g.settings.Now().UTC().Format(TimeFormat)
	if err := g.settings.Store().Set(ctx, key, value, g.expiration); err != nil {
		return nil, fmt.Errorf("goalkeeper: mark met %s: %w", key, err)
	}
	return g, nil
}

// IsMet reports whether a record exists for g.
func (g *Goal) IsMet(ctx context.Context) (bool, error) {
	_, ok, err := g.read(ctx)
	return ok, err
}

// MetAt returns when g was met. ok is false if g is not met.
func (g *Goal) MetAt(ctx context.Context) (at time.Time, ok bool, err error) {
	value, ok, err := g.read(ctx)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	at, err = time.Parse(TimeFormat, value)
	if err != nil {
		return time.Time{}, false, &CorruptRecordError{Key: g.Key(), Value: value, Err: err}
	}
	return at, true, nil
}

// Clear removes the record of g whether or not it exists.
func (g *Goal) Clear(ctx context.Context) error {
	key := g.Key()
	if err := g.settings.Store().Del(ctx, key); err != nil {
		return fmt.Errorf("goalkeeper: clear %s: %w", key, err)
	}
	return nil
}

// TTL returns the remaining lifetime of the record, kv.TTLMissing when g is
// not met, or kv.TTLPersistent when the record has no expiration.
func (g *Goal) TTL(ctx context.Context) (time.Duration, error) {
	key := g.Key()
	d, err := g.settings.Store().TTL(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("goalkeeper: ttl %s: %w", key, err)
	}
	return d, nil
}

func (g *Goal) read(ctx context.Context) (string, bool, error) {
	key := g.Key()
	v, ok, err := g.settings.Store().Get(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("goalkeeper: read %s: %w", key, err)
	}
	return v, ok, nil
}

// MarkMet marks the goal with label met, on the default Config unless
// WithSettings is given.
func MarkMet(ctx context.Context, label string, opts ...Option) (*Goal, error) {
	return NewGoal(label, opts...).MarkMet(ctx)
}
