package ledger

import (
	"context"
	"time"
)

// SessionStore provides the persistence the ledger needs. Implementations
// must enforce at the storage level that at most one open session exists per
// plate key, so a racing duplicate insert fails instead of corrupting state.
type SessionStore interface {
	Insert(ctx context.Context, plateKey string, entryTime time.Time, imagePath *string) (int64, error)
	CloseLatestOpen(ctx context.Context, plateKey string, exitTime time.Time) (int64, error)
	HasOpen(ctx context.Context, plateKey string) (bool, error)
	AttachImage(ctx context.Context, id int64, imagePath string) error
	Get(ctx context.Context, id int64) (*Session, error)
	Delete(ctx context.Context, id int64) error
}

// ImageRemover deletes a captured-image file during administrative session
// removal. Failures are advisory.
type ImageRemover interface {
	Remove(path string) error
}
