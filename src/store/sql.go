package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Postgres driver
	_ "modernc.org/sqlite"

	"snpscope/src/contracts"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know by default.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

const schema = `
CREATE TABLE IF NOT EXISTS searches (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	kind       TEXT NOT NULL,
	query      TEXT NOT NULL DEFAULT '',
	found      INTEGER NOT NULL DEFAULT 0,
	requested  INTEGER NOT NULL DEFAULT 0,
	not_found  TEXT NOT NULL DEFAULT '',
	error      TEXT NOT NULL DEFAULT '',
	elapsed_ms BIGINT NOT NULL DEFAULT 0,
	created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS searches_created_at_idx ON searches (created_at);
`

// searchRow is the persisted form of a SearchEvent.
type searchRow struct {
	ID        string `db:"id"`
	SessionID string `db:"session_id"`
	Kind      string `db:"kind"`
	Query     string `db:"query"`
	Found     int    `db:"found"`
	Requested int    `db:"requested"`
	NotFound  string `db:"not_found"` // comma-joined identifiers
	Error     string `db:"error"`
	ElapsedMS int64  `db:"elapsed_ms"`
	CreatedAt int64  `db:"created_at"` // unix millis
}

func toRow(ev contracts.SearchEvent) searchRow {
	return searchRow{
		ID:        ev.ID,
		SessionID: ev.SessionID,
		Kind:      string(ev.Kind),
		Query:     ev.Query,
		Found:     ev.Found,
		Requested: ev.Requested,
		NotFound:  joinIDs(ev.NotFound),
		Error:     ev.Error,
		ElapsedMS: ev.ElapsedMS,
		CreatedAt: eventTime(ev).UnixMilli(),
	}
}

func (r searchRow) event() contracts.SearchEvent {
	return contracts.SearchEvent{
		ID:        r.ID,
		SessionID: r.SessionID,
		Kind:      contracts.SearchKind(r.Kind),
		Query:     r.Query,
		Found:     r.Found,
		Requested: r.Requested,
		NotFound:  splitIDs(r.NotFound),
		Error:     r.Error,
		ElapsedMS: r.ElapsedMS,
		Timestamp: time.UnixMilli(r.CreatedAt).UTC().Format(time.RFC3339Nano),
	}
}

// SQLStore keeps search history in Postgres or SQLite through sqlx.
type SQLStore struct {
	db     *sqlx.DB
	driver string
}

// NewSQLStore opens the database, checks the connection and creates the
// schema if needed. For SQLite, dsn is a file path.
func NewSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if driver == DriverSQLite {
		dsn += "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLStore{db: db, driver: driver}, nil
}

// Driver returns the database driver name.
func (s *SQLStore) Driver() string { return s.driver }

// SaveSearch records a completed search.
func (s *SQLStore) SaveSearch(ctx context.Context, ev contracts.SearchEvent) error {
	if err := validate(ev); err != nil {
		return err
	}

	query := `
		INSERT INTO searches (id, session_id, kind, query, found, requested, not_found, error, elapsed_ms, created_at)
		VALUES (:id, :session_id, :kind, :query, :found, :requested, :not_found, :error, :elapsed_ms, :created_at)
		ON CONFLICT (id) DO NOTHING
	`

	if _, err := s.db.NamedExecContext(ctx, query, toRow(ev)); err != nil {
		return fmt.Errorf("failed to save search: %w", err)
	}
	return nil
}

// RecentSearches returns up to limit searches, newest first.
func (s *SQLStore) RecentSearches(ctx context.Context, limit int) ([]contracts.SearchEvent, error) {
	query := s.db.Rebind(`
		SELECT id, session_id, kind, query, found, requested, not_found, error, elapsed_ms, created_at
		FROM searches
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`)

	var rows []searchRow
	if err := s.db.SelectContext(ctx, &rows, query, normalizeLimit(limit)); err != nil {
		return nil, fmt.Errorf("failed to get recent searches: %w", err)
	}

	result := make([]contracts.SearchEvent, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.event())
	}
	return result, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
