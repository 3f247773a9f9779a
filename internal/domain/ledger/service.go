package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/PhucDaizz/parkledger/internal/storeerr"
)

// DefaultOperationTimeout bounds each store round-trip when the caller's
// context carries no earlier deadline.
const DefaultOperationTimeout = 5 * time.Second

// Service owns session creation and closure and the single-open-session
// invariant. It holds no occupancy state of its own; every operation reads
// and writes through to the store.
type Service struct {
	sessions SessionStore
	images   ImageRemover
	logger   *slog.Logger
	timeout  time.Duration
}

// NewService creates a ledger service. images may be nil when administrative
// deletes need no file cleanup.
func NewService(sessions SessionStore, images ImageRemover, logger *slog.Logger, timeout time.Duration) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if timeout <= 0 {
		timeout = DefaultOperationTimeout
	}
	return &Service{
		sessions: sessions,
		images:   images,
		logger:   logger,
		timeout:  timeout,
	}
}

// IsOccupied reports whether an open session exists for the plate key.
func (s *Service) IsOccupied(ctx context.Context, plateKey string) (bool, error) {
	if plateKey == "" {
		return false, ErrValidation
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	occupied, err := s.sessions.HasOpen(ctx, plateKey)
	if err != nil {
		return false, s.storeError("checking occupancy", err)
	}
	return occupied, nil
}

// RecordEntry creates a new open session for the plate key and returns its
// id. The store's uniqueness guard makes a concurrent duplicate entry fail
// with ErrAlreadyOccupied rather than creating a second open session.
func (s *Service) RecordEntry(ctx context.Context, plateKey, imagePath string) (int64, error) {
	if plateKey == "" {
		return 0, ErrValidation
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	id, err := s.sessions.Insert(ctx, plateKey, time.Now(), stringPtr(imagePath))
	if err != nil {
		if errors.Is(err, storeerr.ErrOpenSessionExists) {
			return 0, fmt.Errorf("recording entry for %s: %w", plateKey, ErrAlreadyOccupied)
		}
		return 0, s.storeError("recording entry", err)
	}

	s.logger.Info("vehicle entered", "plate", plateKey, "session", id)
	return id, nil
}

// RecordExit closes the most recent open session for the plate key and
// returns its id. The selection and close happen in a single store
// statement, so two racing exits cannot close the same session twice.
func (s *Service) RecordExit(ctx context.Context, plateKey string) (int64, error) {
	if plateKey == "" {
		return 0, ErrValidation
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	id, err := s.sessions.CloseLatestOpen(ctx, plateKey, time.Now())
	if err != nil {
		if errors.Is(err, storeerr.ErrNotFound) {
			return 0, fmt.Errorf("recording exit for %s: %w", plateKey, ErrNoOpenSession)
		}
		return 0, s.storeError("recording exit", err)
	}

	s.logger.Info("vehicle exited", "plate", plateKey, "session", id)
	return id, nil
}

// AttachImage associates a captured-image path with a session. The
// association is advisory: callers must not fail the entry or exit this
// accompanies when it errors.
func (s *Service) AttachImage(ctx context.Context, sessionID int64, imagePath string) error {
	if imagePath == "" {
		return nil
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	if err := s.sessions.AttachImage(ctx, sessionID, imagePath); err != nil {
		s.logger.Warn("image attach failed", "session", sessionID, "error", err)
		return fmt.Errorf("session %d: %w", sessionID, ErrImageAttach)
	}
	return nil
}

// Session returns one session by id.
func (s *Service) Session(ctx context.Context, sessionID int64) (*Session, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storeerr.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, s.storeError("loading session", err)
	}
	return sess, nil
}

// DeleteSession removes one session row. This is an administrative
// operation outside the normal entry/exit flow. The associated image file,
// if any, is removed best-effort after the row is gone.
func (s *Service) DeleteSession(ctx context.Context, sessionID int64) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storeerr.ErrNotFound) {
			return ErrSessionNotFound
		}
		return s.storeError("loading session", err)
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, storeerr.ErrNotFound) {
			return ErrSessionNotFound
		}
		return s.storeError("deleting session", err)
	}

	if s.images != nil && sess.ImagePath != nil {
		if err := s.images.Remove(*sess.ImagePath); err != nil {
			s.logger.Warn("image cleanup failed", "session", sessionID, "path", *sess.ImagePath, "error", err)
		}
	}

	s.logger.Info("session deleted", "session", sessionID, "plate", sess.PlateKey)
	return nil
}

func (s *Service) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// storeError maps connectivity and deadline failures to
// ErrStorageUnavailable; anything else passes through wrapped.
func (s *Service) storeError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, storeerr.ErrUnavailable) {
		s.logger.Error("store unreachable", "op", op, "error", err)
		return fmt.Errorf("%s: %w", op, ErrStorageUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func stringPtr(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
