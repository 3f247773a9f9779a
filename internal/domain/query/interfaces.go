package query

import (
	"context"
	"time"

	"github.com/PhucDaizz/parkledger/internal/domain/ledger"
	"github.com/PhucDaizz/parkledger/internal/repository"
)

// SessionReader is the read-only store access the query service needs. It
// deliberately excludes every mutating operation; queries never change state.
type SessionReader interface {
	ListOpen(ctx context.Context) ([]ledger.Session, error)
	List(ctx context.Context, opts repository.ListOptions) ([]ledger.Session, error)
	Get(ctx context.Context, id int64) (*ledger.Session, error)
	CountOpen(ctx context.Context) (int, error)
	CountEnteredBetween(ctx context.Context, from, to time.Time) (int, error)
}
