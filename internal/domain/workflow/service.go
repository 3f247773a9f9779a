// Package workflow decides whether a confirmed plate is an entry or an
// exit. A single confirm action does the right thing regardless of which
// trigger fired; the branch is decided solely by current occupancy.
package workflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/PhucDaizz/parkledger/internal/domain/ledger"
	"github.com/PhucDaizz/parkledger/internal/domain/plate"
	"github.com/PhucDaizz/parkledger/internal/event"
)

// Action is the terminal outcome of a confirm.
type Action string

const (
	ActionEntered Action = "entered"
	ActionExited  Action = "exited"
)

// Ledger is the occupancy ledger surface the workflow drives.
type Ledger interface {
	IsOccupied(ctx context.Context, plateKey string) (bool, error)
	RecordEntry(ctx context.Context, plateKey, imagePath string) (int64, error)
	RecordExit(ctx context.Context, plateKey string) (int64, error)
	AttachImage(ctx context.Context, sessionID int64, imagePath string) error
}

// ImageSaver persists a captured plate image and returns its path.
type ImageSaver interface {
	Save(plateKey string, jpeg []byte) (string, error)
}

// Result describes a completed confirm.
type Result struct {
	Action    Action `json:"action"`
	SessionID int64  `json:"session_id"`
	PlateKey  string `json:"plate_key"`
}

// Service orchestrates confirms over the ledger. It keeps no state between
// calls and performs no retries; ledger errors surface to the caller
// unchanged.
type Service struct {
	ledger Ledger
	images ImageSaver
	events event.Sink
	logger *slog.Logger
}

// NewService creates a workflow service. images and events may be nil.
func NewService(ledger Ledger, images ImageSaver, events event.Sink, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		ledger: ledger,
		images: images,
		events: events,
		logger: logger,
	}
}

// Confirm normalizes rawPlate, then records an exit if the plate has an open
// session and an entry otherwise. image, when present, is persisted
// best-effort and attached to the affected session; an image failure never
// fails the confirm.
func (s *Service) Confirm(ctx context.Context, rawPlate string, image []byte) (*Result, error) {
	key := plate.Normalize(rawPlate)
	if key == "" {
		event.Warnf(s.events, fmt.Sprintf("rejected unreadable plate %q", rawPlate))
		return nil, ledger.ErrValidation
	}

	occupied, err := s.ledger.IsOccupied(ctx, key)
	if err != nil {
		event.Errorf(s.events, fmt.Sprintf("occupancy check failed for %s: %v", key, err))
		return nil, err
	}

	if occupied {
		return s.confirmExit(ctx, key, image)
	}
	return s.confirmEntry(ctx, key, image)
}

func (s *Service) confirmEntry(ctx context.Context, key string, image []byte) (*Result, error) {
	imagePath := s.saveImage(key, image)

	id, err := s.ledger.RecordEntry(ctx, key, imagePath)
	if err != nil {
		event.Errorf(s.events, fmt.Sprintf("entry failed for %s: %v", key, err))
		return nil, err
	}

	event.Infof(s.events, fmt.Sprintf("vehicle entered: %s (session %d)", key, id))
	return &Result{Action: ActionEntered, SessionID: id, PlateKey: key}, nil
}

func (s *Service) confirmExit(ctx context.Context, key string, image []byte) (*Result, error) {
	id, err := s.ledger.RecordExit(ctx, key)
	if err != nil {
		event.Errorf(s.events, fmt.Sprintf("exit failed for %s: %v", key, err))
		return nil, err
	}

	if imagePath := s.saveImage(key, image); imagePath != "" {
		if err := s.ledger.AttachImage(ctx, id, imagePath); err != nil {
			event.Warnf(s.events, fmt.Sprintf("exit image not attached for %s: %v", key, err))
		}
	}

	event.Infof(s.events, fmt.Sprintf("vehicle exited: %s (session %d)", key, id))
	return &Result{Action: ActionExited, SessionID: id, PlateKey: key}, nil
}

// saveImage stores the captured image if one was supplied. Failures are
// reported and swallowed; the confirm proceeds without a path.
func (s *Service) saveImage(key string, image []byte) string {
	if s.images == nil || len(image) == 0 {
		return ""
	}
	path, err := s.images.Save(key, image)
	if err != nil {
		s.logger.Warn("image save failed", "plate", key, "error", err)
		event.Warnf(s.events, fmt.Sprintf("could not save plate image for %s: %v", key, err))
		return ""
	}
	return path
}
