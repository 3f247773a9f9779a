package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/PhucDaizz/parkledger/internal/domain/ledger"
	"github.com/PhucDaizz/parkledger/internal/repository"
)

// SessionRepository implements repository.SessionRepository for SQLite.
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Insert creates an open session and returns its id. The partial unique
// index on open sessions rejects a duplicate open entry for the same plate.
func (r *SessionRepository) Insert(ctx context.Context, plateKey string, entryTime time.Time, imagePath *string) (int64, error) {
	query := `
		INSERT INTO parking_sessions (plate_key, entry_time, image_path)
		VALUES (?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, plateKey, entryTime, imagePath)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrOpenSessionExists
		}
		return 0, wrapErr("failed to insert session", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted id: %w", err)
	}
	return id, nil
}

// CloseLatestOpen sets exit_time on the newest open session for the plate
// and returns its id. Selection and update are one statement so two racing
// exits cannot both close the same row.
func (r *SessionRepository) CloseLatestOpen(ctx context.Context, plateKey string, exitTime time.Time) (int64, error) {
	query := `
		UPDATE parking_sessions
		SET exit_time = ?
		WHERE id = (
			SELECT id FROM parking_sessions
			WHERE plate_key = ? AND exit_time IS NULL
			ORDER BY entry_time DESC, id DESC
			LIMIT 1
		)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, exitTime, plateKey).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, repository.ErrNotFound
	}
	if err != nil {
		return 0, wrapErr("failed to close session", err)
	}
	return id, nil
}

// HasOpen reports whether an open session exists for the plate.
func (r *SessionRepository) HasOpen(ctx context.Context, plateKey string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM parking_sessions
			WHERE plate_key = ? AND exit_time IS NULL
		)
	`

	var occupied bool
	if err := r.db.QueryRowContext(ctx, query, plateKey).Scan(&occupied); err != nil {
		return false, wrapErr("failed to check occupancy", err)
	}
	return occupied, nil
}

// AttachImage sets image_path on a session.
func (r *SessionRepository) AttachImage(ctx context.Context, id int64, imagePath string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE parking_sessions SET image_path = ? WHERE id = ?`, imagePath, id)
	if err != nil {
		return wrapErr("failed to attach image", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Get returns one session by id.
func (r *SessionRepository) Get(ctx context.Context, id int64) (*ledger.Session, error) {
	query := `
		SELECT id, plate_key, entry_time, exit_time, image_path, created_at
		FROM parking_sessions
		WHERE id = ?
	`

	sess, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("failed to get session", err)
	}
	return sess, nil
}

// Delete removes one session row.
func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM parking_sessions WHERE id = ?`, id)
	if err != nil {
		return wrapErr("failed to delete session", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListOpen returns all open sessions, newest entry first.
func (r *SessionRepository) ListOpen(ctx context.Context) ([]ledger.Session, error) {
	query := `
		SELECT id, plate_key, entry_time, exit_time, image_path, created_at
		FROM parking_sessions
		WHERE exit_time IS NULL
		ORDER BY entry_time DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapErr("failed to list open sessions", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

// List returns sessions matching opts, newest entry first.
func (r *SessionRepository) List(ctx context.Context, opts repository.ListOptions) ([]ledger.Session, error) {
	baseQuery := `
		SELECT id, plate_key, entry_time, exit_time, image_path, created_at
		FROM parking_sessions
	`

	var conditions []string
	var args []interface{}

	if opts.PlateContains != "" {
		conditions = append(conditions, "instr(lower(plate_key), lower(?)) > 0")
		args = append(args, opts.PlateContains)
	}
	if opts.EntryFrom != nil {
		conditions = append(conditions, "entry_time >= ?")
		args = append(args, *opts.EntryFrom)
	}
	if opts.EntryUntil != nil {
		conditions = append(conditions, "entry_time < ?")
		args = append(args, *opts.EntryUntil)
	}

	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY entry_time DESC, id DESC"

	if opts.Limit > 0 {
		baseQuery += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, wrapErr("failed to list sessions", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

// CountOpen returns the number of open sessions.
func (r *SessionRepository) CountOpen(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM parking_sessions WHERE exit_time IS NULL`).Scan(&count)
	if err != nil {
		return 0, wrapErr("failed to count open sessions", err)
	}
	return count, nil
}

// CountEnteredBetween returns the number of sessions with entry_time in
// [from, to).
func (r *SessionRepository) CountEnteredBetween(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM parking_sessions WHERE entry_time >= ? AND entry_time < ?`,
		from, to).Scan(&count)
	if err != nil {
		return 0, wrapErr("failed to count entries", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*ledger.Session, error) {
	var sess ledger.Session
	var exitTime sql.NullTime
	var imagePath sql.NullString

	err := row.Scan(
		&sess.ID,
		&sess.PlateKey,
		&sess.EntryTime,
		&exitTime,
		&imagePath,
		&sess.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if exitTime.Valid {
		sess.ExitTime = &exitTime.Time
	}
	if imagePath.Valid {
		sess.ImagePath = &imagePath.String
	}
	return &sess, nil
}

func collectSessions(rows *sql.Rows) ([]ledger.Session, error) {
	var sessions []ledger.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return sessions, nil
}

func wrapErr(msg string, err error) error {
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w", msg, repository.ErrUnavailable)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
