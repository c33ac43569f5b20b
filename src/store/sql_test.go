package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"snpscope/src/contracts"
)

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := NewSQLStore(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLStore_SQLiteRoundTrip(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSearch(ctx, event("ev-1", contracts.SearchBatch, "2026-03-01T10:00:00Z")))
	require.NoError(t, s.SaveSearch(ctx, event("ev-2", contracts.SearchSingle, "2026-03-01T10:00:05Z")))

	recent, err := s.RecentSearches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	require.Equal(t, "ev-2", recent[0].ID)
	require.Equal(t, contracts.SearchSingle, recent[0].Kind)
	require.Equal(t, "2026-03-01T10:00:05Z", recent[0].Timestamp)

	got := recent[1]
	require.Equal(t, "ev-1", got.ID)
	require.Equal(t, "session-1", got.SessionID)
	require.Equal(t, "rs123,rs456", got.Query)
	require.Equal(t, 1, got.Found)
	require.Equal(t, 2, got.Requested)
	require.Equal(t, []string{"rs456"}, got.NotFound)
	require.Equal(t, int64(12), got.ElapsedMS)
}

func TestSQLStore_DuplicateIDIgnored(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	ev := event("dup", contracts.SearchSingle, "2026-03-01T10:00:00Z")
	require.NoError(t, s.SaveSearch(ctx, ev))
	require.NoError(t, s.SaveSearch(ctx, ev))

	recent, err := s.RecentSearches(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
}

func TestSQLStore_Limit(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.SaveSearch(ctx, event(id, contracts.SearchSingle, "2026-03-01T10:00:00Z")))
	}

	recent, err := s.RecentSearches(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "c", recent[0].ID)
	require.Equal(t, "b", recent[1].ID)
}

func TestSQLStore_EmptyNotFound(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	ev := event("found-all", contracts.SearchBatch, "2026-03-01T10:00:00Z")
	ev.NotFound = nil
	require.NoError(t, s.SaveSearch(ctx, ev))

	recent, err := s.RecentSearches(ctx, 1)
	require.NoError(t, err)
	require.Nil(t, recent[0].NotFound)
}

func TestOpen_SQLitePath(t *testing.T) {
	s, err := Open(context.Background(), Options{SQLitePath: filepath.Join(t.TempDir(), "h.db")})
	require.NoError(t, err)
	defer s.Close()

	sqlStore, ok := s.(*SQLStore)
	require.True(t, ok)
	require.Equal(t, DriverSQLite, sqlStore.Driver())
}

// Requires a running Postgres; set SNPSCOPE_TEST_POSTGRES_DSN to enable.
func TestSQLStore_Postgres(t *testing.T) {
	dsn := os.Getenv("SNPSCOPE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SNPSCOPE_TEST_POSTGRES_DSN not set")
	}

	s, err := NewSQLStore(context.Background(), DriverPostgres, dsn)
	require.NoError(t, err)
	defer s.Close()

	ev := event("pg-"+t.Name(), contracts.SearchSingle, "2026-03-01T10:00:00Z")
	require.NoError(t, s.SaveSearch(context.Background(), ev))

	recent, err := s.RecentSearches(context.Background(), 50)
	require.NoError(t, err)
	require.NotEmpty(t, recent)
}
