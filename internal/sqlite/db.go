package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection.
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Writers from concurrent triggers wait for the lock instead of
	// failing immediately with SQLITE_BUSY.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	return &DB{db}, nil
}

// EnsureSchema creates the session table and its indexes if absent. It is
// idempotent and safe to call repeatedly and concurrently; it never drops
// data. The partial unique index on open sessions is the storage-level
// guard behind the single-open-session invariant: a racing duplicate entry
// fails the insert instead of creating a second open row.
func (db *DB) EnsureSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS parking_sessions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    plate_key TEXT NOT NULL,
    entry_time TIMESTAMP NOT NULL,
    exit_time TIMESTAMP,
    image_path TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_sessions_plate_key ON parking_sessions(plate_key);
CREATE INDEX IF NOT EXISTS idx_sessions_entry_time ON parking_sessions(entry_time);
CREATE INDEX IF NOT EXISTS idx_sessions_exit_time ON parking_sessions(exit_time);
CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_open_plate
    ON parking_sessions(plate_key) WHERE exit_time IS NULL;
`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
