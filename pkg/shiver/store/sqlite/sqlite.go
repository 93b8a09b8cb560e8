package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/shiver/pkg/shiver/internalerr"
	"github.com/cognicore/shiver/pkg/shiver/records"
	"github.com/cognicore/shiver/pkg/shiver/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens a SQLite database with WAL mode enabled. The pragmas
// travel in the DSN so every pooled connection gets them, and write
// transactions take the lock up front so concurrent Adds wait instead of
// failing with SQLITE_BUSY.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db, now: time.Now}, nil
}

func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	name TEXT,
	route TEXT,
	created_at TEXT NOT NULL,
	body TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_kind ON records(kind, id);
CREATE INDEX IF NOT EXISTS idx_records_route ON records(kind, route);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Add inserts the record and stamps it with the row id, so identifiers are
// unique across every collection.
func (s *sqliteStore) Add(ctx context.Context, rec records.Record) (records.Record, error) {
	if rec == nil || !rec.Kind().Valid() {
		return nil, fmt.Errorf("%w: record of unknown kind", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	c := rec.Clone()
	now := s.now().UTC()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO records(kind, name, created_at, body) VALUES(?, ?, ?, '{}')",
		string(c.Kind()), c.Title(), now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", c.Kind(), err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	records.Stamp(c, id, now)
	body, err := records.MarshalRecord(c)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE records SET route = ?, created_at = ?, body = ? WHERE id = ?",
		c.Meta().Route, c.Meta().CreatedAt.Format(time.RFC3339Nano), string(body), id); err != nil {
		return nil, fmt.Errorf("store %s %d: %w", c.Kind(), id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return c, nil
}

// Get loads one record.
func (s *sqliteStore) Get(ctx context.Context, kind records.Kind, id int64) (records.Record, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		"SELECT body FROM records WHERE kind = ? AND id = ?", string(kind), id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %d", internalerr.ErrNotFound, kind, id)
	}
	if err != nil {
		return nil, err
	}
	return decode(kind, id, body)
}

// GetAll loads a whole collection.
func (s *sqliteStore) GetAll(ctx context.Context, kind records.Kind) ([]records.Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: kind %q", internalerr.ErrInvalidInput, kind)
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, body FROM records WHERE kind = ? ORDER BY id", string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []records.Record
	for rows.Next() {
		var (
			id   int64
			body string
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		rec, err := decode(kind, id, body)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count reports the size of a collection.
func (s *sqliteStore) Count(ctx context.Context, kind records.Kind) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM records WHERE kind = ?", string(kind)).Scan(&n)
	return n, err
}

func decode(kind records.Kind, id int64, body string) (records.Record, error) {
	rec, err := records.UnmarshalRecord(kind, []byte(body))
	if err != nil {
		return nil, fmt.Errorf("decode %s %d: %w", kind, id, err)
	}
	rec.Meta().ID = id
	return rec, nil
}
