package sqlstore

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mindburn-Labs/goalkeeper/pkg/kv"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newSQLite(t *testing.T, clock *fakeClock) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:", WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_RoundTrip(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := newSQLite(t, clock)

	_, ok, err := s.Get(ctx, "ns:a")
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := s.TTL(ctx, "ns:a")
	require.NoError(t, err)
	assert.Equal(t, kv.TTLMissing, ttl)

	require.NoError(t, s.Set(ctx, "ns:a", "v1", time.Hour))
	v, ok, err := s.Get(ctx, "ns:a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1", v)

	ttl, err = s.TTL(ctx, "ns:a")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, ttl)

	require.NoError(t, s.Set(ctx, "ns:a", "v2", time.Minute), "upsert overwrites")
	v, _, _ = s.Get(ctx, "ns:a")
	assert.Equal(t, "v2", v)
	ttl, _ = s.TTL(ctx, "ns:a")
	assert.Equal(t, time.Minute, ttl)

	require.NoError(t, s.Del(ctx, "ns:a"))
	require.NoError(t, s.Del(ctx, "ns:a"))
	_, ok, _ = s.Get(ctx, "ns:a")
	assert.False(t, ok)
}

func TestSQLite_ExpirationAndPurge(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := newSQLite(t, clock)

	require.NoError(t, s.Set(ctx, "a", "1", 10*time.Second))
	require.NoError(t, s.Set(ctx, "b", "1", time.Hour))

	clock.Advance(10 * time.Second)
	_, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	ttl, _ := s.TTL(ctx, "a")
	assert.Equal(t, kv.TTLMissing, ttl)

	n, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, _ = s.Get(ctx, "b")
	assert.True(t, ok)

	require.NoError(t, s.FlushAll(ctx))
	_, ok, _ = s.Get(ctx, "b")
	assert.False(t, ok)
}

func TestSQLite_NonPositiveTTLRemovesKey(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t, &fakeClock{t: time.Now()})

	require.NoError(t, s.Set(ctx, "a", "1", time.Hour))
	require.NoError(t, s.Set(ctx, "a", "1", 0))
	_, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostgres_Placeholders(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer func() { _ = db.Close() }()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := New(db, DialectPostgres, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("VALUES ($1, $2, $3)")).
		WithArgs("ns:a", "v", now.Add(time.Minute).UnixMilli()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT kv_value FROM goalkeeper_kv WHERE kv_key = $1 AND (expires_at IS NULL OR expires_at > $2)")).
		WithArgs("ns:a", now.UnixMilli()).
		WillReturnRows(sqlmock.NewRows([]string{"kv_value"}).AddRow("v"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT expires_at FROM goalkeeper_kv")).
		WithArgs("ns:a", now.UnixMilli()).
		WillReturnRows(sqlmock.NewRows([]string{"expires_at"}).AddRow(nil))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM goalkeeper_kv WHERE kv_key = $1")).
		WithArgs("ns:a").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Set(ctx, "ns:a", "v", time.Minute))
	v, ok, err := s.Get(ctx, "ns:a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
	ttl, err := s.TTL(ctx, "ns:a")
	require.NoError(t, err)
	assert.Equal(t, kv.TTLPersistent, ttl)
	require.NoError(t, s.Del(ctx, "ns:a"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_DatabaseErrorsAreUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	s := New(db, DialectSQLite)
	ctx := context.Background()
	boom := errors.New("connection reset")

	mock.ExpectQuery("SELECT kv_value").WillReturnError(boom)
	mock.ExpectExec("INSERT INTO goalkeeper_kv").WillReturnError(boom)
	mock.ExpectExec("DELETE FROM goalkeeper_kv").WillReturnError(boom)

	_, _, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, kv.ErrUnavailable)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, s.Set(ctx, "a", "b", time.Minute), kv.ErrUnavailable)
	assert.ErrorIs(t, s.Del(ctx, "a"), kv.ErrUnavailable)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseDSN(t *testing.T) {
	cases := []struct {
		dsn     string
		dialect Dialect
		source  string
	}{
		{"postgres://u@localhost/db", DialectPostgres, "postgres://u@localhost/db"},
		{"postgresql://u@localhost/db", DialectPostgres, "postgresql://u@localhost/db"},
		{"sqlite:///tmp/goals.db", DialectSQLite, "/tmp/goals.db"},
		{"goals.db", DialectSQLite, "goals.db"},
	}
	for _, tc := range cases {
		d, src := parseDSN(tc.dsn)
		assert.Equal(t, tc.dialect, d, tc.dsn)
		assert.Equal(t, tc.source, src, tc.dsn)
	}
}

func TestSourceFor(t *testing.T) {
	src, err := sourceFor(DialectSQLite, "sqlite:///tmp/goals.db")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/goals.db", src)

	src, err = sourceFor(DialectPostgres, "host=localhost dbname=goals sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "host=localhost dbname=goals sslmode=disable", src)

	_, err = sourceFor(DialectSQLite, "postgres://u@localhost/db")
	assert.Error(t, err)
	_, err = sourceFor(DialectPostgres, "sqlite://goals.db")
	assert.Error(t, err)
	_, err = sourceFor(Dialect("mysql"), "goals.db")
	assert.Error(t, err)
}

func TestOpenDialect_RejectsMismatchedDSN(t *testing.T) {
	_, err := OpenDialect(context.Background(), DialectSQLite, "postgres://u@127.0.0.1:1/db")
	assert.Error(t, err)
}
