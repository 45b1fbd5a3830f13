package ratelimit

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const createTableStmt = `CREATE TABLE IF NOT EXISTS rate_limits (
	identity TEXT PRIMARY KEY,
	count INTEGER NOT NULL,
	reset_at INTEGER NOT NULL
)`

// SQLiteStore persists rate-limit records so quotas survive restarts. It is
// an optional backing store behind the same Store interface as MemoryStore;
// reset times are stored at second granularity.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the SQLite database at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite is single-writer

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(createTableStmt); err != nil {
		return nil, fmt.Errorf("create rate_limits table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(identity string) (Record, bool, error) {
	var count int
	var resetAt int64
	err := s.db.QueryRow(
		`SELECT count, reset_at FROM rate_limits WHERE identity = ?`, identity,
	).Scan(&count, &resetAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("get rate limit record: %w", err)
	}
	return Record{Count: count, ResetAt: time.Unix(resetAt, 0)}, true, nil
}

func (s *SQLiteStore) Set(identity string, rec Record) error {
	_, err := s.db.Exec(
		`INSERT INTO rate_limits (identity, count, reset_at) VALUES (?, ?, ?)
		 ON CONFLICT(identity) DO UPDATE SET count = excluded.count, reset_at = excluded.reset_at`,
		identity, rec.Count, rec.ResetAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("set rate limit record: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
