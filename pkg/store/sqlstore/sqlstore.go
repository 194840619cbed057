// Package sqlstore implements kv.Store on a SQL database.
//
// It supports both Postgres and SQLite via standard drivers. Expiration is
// stored as a unix-millisecond deadline; rows past their deadline read as
// absent and are removed by Purge or the next write to the same key.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq" // Postgres Driver
	_ "modernc.org/sqlite"

	"github.com/Mindburn-Labs/goalkeeper/pkg/kv"
)

// Dialect selects placeholder syntax and driver.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS goalkeeper_kv (
	kv_key TEXT PRIMARY KEY,
	kv_value TEXT NOT NULL,
	expires_at BIGINT
);
`

// Store implements kv.Store using database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

var (
	_ kv.Store   = (*Store)(nil)
	_ kv.Flusher = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for deadline computation.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New wraps an open database. Call Init before first use.
func New(db *sql.DB, dialect Dialect, opts ...Option) *Store {
	s := &Store{db: db, dialect: dialect, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open connects to dsn and creates the table, guessing the dialect from the
// DSN. postgres:// and postgresql:// URLs use lib/pq; anything else is a
// SQLite path, optionally prefixed with sqlite://. Use OpenDialect when the
// dialect is known.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	dialect, _ := parseDSN(dsn)
	return OpenDialect(ctx, dialect, dsn, opts...)
}

// OpenDialect connects to dsn with the given dialect and creates the table.
// Postgres accepts URLs and libpq key/value strings. A DSN that names the
// other dialect's scheme is rejected.
func OpenDialect(ctx context.Context, dialect Dialect, dsn string, opts ...Option) (*Store, error) {
	source, err := sourceFor(dialect, dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(string(dialect), source)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// in-memory SQLite databases are per connection
		db.SetMaxOpenConns(1)
	}
	s := New(db, dialect, opts...)
	if err := s.Init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func sourceFor(dialect Dialect, dsn string) (string, error) {
	guessed, source := parseDSN(dsn)
	switch dialect {
	case DialectSQLite:
		if guessed != DialectSQLite {
			return "", fmt.Errorf("sqlite dialect given %s DSN", guessed)
		}
		return source, nil
	case DialectPostgres:
		if strings.HasPrefix(dsn, "sqlite://") {
			return "", errors.New("postgres dialect given sqlite DSN")
		}
		return dsn, nil
	default:
		return "", fmt.Errorf("unknown dialect %q", dialect)
	}
}

// Init creates the backing table if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return unavailable("init", "", err)
	}
	return nil
}

// Set upserts key with a deadline ttl from now. A non-positive ttl
// removes the key.
func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return s.Del(ctx, key)
	}
	deadline := s.now().Add(ttl).UnixMilli()
	query := s.rebind(`
		INSERT INTO goalkeeper_kv (kv_key, kv_value, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT (kv_key) DO UPDATE SET kv_value = excluded.kv_value, expires_at = excluded.expires_at
	`)
	if _, err := s.db.ExecContext(ctx, query, key, value, deadline); err != nil {
		return unavailable("set", key, err)
	}
	return nil
}

// Get reads key. Rows past their deadline read as absent.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	query := s.rebind(`SELECT kv_value FROM goalkeeper_kv WHERE kv_key = ? AND (expires_at IS NULL OR expires_at > ?)`)
	var value string
	err := s.db.QueryRowContext(ctx, query, key, s.now().UnixMilli()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("get", key, err)
	}
	return value, true, nil
}

// Del removes key.
func (s *Store) Del(ctx context.Context, key string) error {
	query := s.rebind(`DELETE FROM goalkeeper_kv WHERE kv_key = ?`)
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return unavailable("del", key, err)
	}
	return nil
}

// TTL returns the whole seconds left on key, or one of the kv sentinels.
func (s *Store) TTL(ctx context.Context, key string) (time.Duration, error) {
	now := s.now()
	query := s.rebind(`SELECT expires_at FROM goalkeeper_kv WHERE kv_key = ? AND (expires_at IS NULL OR expires_at > ?)`)
	var deadline sql.NullInt64
	err := s.db.QueryRowContext(ctx, query, key, now.UnixMilli()).Scan(&deadline)
	if errors.Is(err, sql.ErrNoRows) {
		return kv.TTLMissing, nil
	}
	if err != nil {
		return 0, unavailable("ttl", key, err)
	}
	if !deadline.Valid {
		return kv.TTLPersistent, nil
	}
	return kv.RoundTTL(time.UnixMilli(deadline.Int64).Sub(now)), nil
}

// FlushAll deletes every row.
func (s *Store) FlushAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM goalkeeper_kv`); err != nil {
		return unavailable("flush", "", err)
	}
	return nil
}

// Purge deletes rows whose deadline has passed and reports how many went.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	query := s.rebind(`DELETE FROM goalkeeper_kv WHERE expires_at IS NOT NULL AND expires_at <= ?`)
	res, err := s.db.ExecContext(ctx, query, s.now().UnixMilli())
	if err != nil {
		return 0, unavailable("purge", "", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, unavailable("purge", "", err)
	}
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func unavailable(op, key string, err error) error {
	if key == "" {
		return fmt.Errorf("%w: sql %s: %w", kv.ErrUnavailable, op, err)
	}
	return fmt.Errorf("%w: sql %s %q: %w", kv.ErrUnavailable, op, key, err)
}
