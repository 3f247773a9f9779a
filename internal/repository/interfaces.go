package repository

import (
	"context"
	"time"

	"github.com/PhucDaizz/parkledger/internal/domain/ledger"
)

// SessionRepository manages parking-session persistence. It is the union of
// the narrow store interfaces declared by the ledger and query packages.
type SessionRepository interface {
	// Insert creates an open session and returns its store-assigned id.
	// Returns ErrOpenSessionExists if the plate already has an open session.
	Insert(ctx context.Context, plateKey string, entryTime time.Time, imagePath *string) (int64, error)

	// CloseLatestOpen sets exitTime on the newest open session for the
	// plate (largest entry_time, ties broken by largest id) and returns its
	// id. Returns ErrNotFound when no open session exists. Selection and
	// update are a single atomic statement.
	CloseLatestOpen(ctx context.Context, plateKey string, exitTime time.Time) (int64, error)

	// HasOpen reports whether an open session exists for the plate.
	HasOpen(ctx context.Context, plateKey string) (bool, error)

	// AttachImage sets image_path on a session.
	AttachImage(ctx context.Context, id int64, imagePath string) error

	// Get returns one session by id.
	Get(ctx context.Context, id int64) (*ledger.Session, error)

	// Delete removes one session row.
	Delete(ctx context.Context, id int64) error

	// ListOpen returns all open sessions, newest entry first.
	ListOpen(ctx context.Context) ([]ledger.Session, error)

	// List returns sessions matching opts, newest entry first.
	List(ctx context.Context, opts ListOptions) ([]ledger.Session, error)

	// CountOpen returns the number of open sessions.
	CountOpen(ctx context.Context) (int, error)

	// CountEnteredBetween returns the number of sessions with entry_time in
	// [from, to).
	CountEnteredBetween(ctx context.Context, from, to time.Time) (int, error)
}

// ListOptions filters session listings. Zero values disable a filter.
type ListOptions struct {
	// PlateContains matches as a case-insensitive substring of plate_key.
	PlateContains string
	// EntryFrom bounds entry_time from below, inclusive.
	EntryFrom *time.Time
	// EntryUntil bounds entry_time from above, exclusive.
	EntryUntil *time.Time
	// Limit caps the result count when positive.
	Limit int
}
