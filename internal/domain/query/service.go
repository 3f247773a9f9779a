// Package query serves read-only occupancy and history views over the same
// store the ledger writes to. It holds no cached copies, so a read issued
// after a committed write always reflects it.
package query

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/PhucDaizz/parkledger/internal/domain/ledger"
	"github.com/PhucDaizz/parkledger/internal/repository"
)

// Filter narrows a history search. Each field is independently optional.
type Filter struct {
	// Plate matches as a case-insensitive substring of the plate key.
	Plate string
	// From bounds entry time to the start of that calendar day, inclusive.
	From *time.Time
	// To bounds entry time to the end of that calendar day, inclusive.
	To *time.Time
}

// Service answers occupancy and history queries.
type Service struct {
	sessions SessionReader
	logger   *slog.Logger
	timeout  time.Duration
}

// NewService creates a query service.
func NewService(sessions SessionReader, logger *slog.Logger, timeout time.Duration) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if timeout <= 0 {
		timeout = ledger.DefaultOperationTimeout
	}
	return &Service{
		sessions: sessions,
		logger:   logger,
		timeout:  timeout,
	}
}

// CurrentOccupants returns all open sessions, newest entry first.
func (s *Service) CurrentOccupants(ctx context.Context) ([]ledger.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sessions, err := s.sessions.ListOpen(ctx)
	if err != nil {
		return nil, s.storeError("listing occupants", err)
	}
	return sessions, nil
}

// History returns all sessions newest entry first, capped at limit when
// limit is positive.
func (s *Service) History(ctx context.Context, limit int) ([]ledger.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sessions, err := s.sessions.List(ctx, repository.ListOptions{Limit: limit})
	if err != nil {
		return nil, s.storeError("listing history", err)
	}
	return sessions, nil
}

// Search returns sessions matching the filter, newest entry first. Date
// bounds are widened to whole calendar days: From to 00:00:00 of its day,
// To through the last instant of its day. With no filters set this is the
// full uncapped history.
func (s *Service) Search(ctx context.Context, filter Filter) ([]ledger.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := repository.ListOptions{PlateContains: filter.Plate}
	if filter.From != nil {
		from := startOfDay(*filter.From)
		opts.EntryFrom = &from
	}
	if filter.To != nil {
		until := startOfDay(*filter.To).AddDate(0, 0, 1)
		opts.EntryUntil = &until
	}

	sessions, err := s.sessions.List(ctx, opts)
	if err != nil {
		return nil, s.storeError("searching history", err)
	}

	s.logger.Debug("history search",
		"plate", filter.Plate,
		"results", len(sessions),
	)
	return sessions, nil
}

// Occupancy returns the number of vehicles currently inside.
func (s *Service) Occupancy(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	count, err := s.sessions.CountOpen(ctx)
	if err != nil {
		return 0, s.storeError("counting occupants", err)
	}
	return count, nil
}

// TodayCount returns the number of sessions entered during the calendar day
// containing now.
func (s *Service) TodayCount(ctx context.Context, now time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	from := startOfDay(now)
	count, err := s.sessions.CountEnteredBetween(ctx, from, from.AddDate(0, 0, 1))
	if err != nil {
		return 0, s.storeError("counting today's entries", err)
	}
	return count, nil
}

// Session returns one session by id.
func (s *Service) Session(ctx context.Context, id int64) (*ledger.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ledger.ErrSessionNotFound
		}
		return nil, s.storeError("loading session", err)
	}
	return sess, nil
}

func (s *Service) storeError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, repository.ErrUnavailable) {
		s.logger.Error("store unreachable", "op", op, "error", err)
		return fmt.Errorf("%s: %w", op, ledger.ErrStorageUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
