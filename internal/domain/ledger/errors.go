package ledger

import "errors"

var (
	// ErrValidation indicates an empty or invalid plate key.
	ErrValidation = errors.New("invalid plate key")
	// ErrAlreadyOccupied indicates an entry for a plate that already has an
	// open session.
	ErrAlreadyOccupied = errors.New("vehicle already inside")
	// ErrNoOpenSession indicates an exit for a plate with no open session.
	ErrNoOpenSession = errors.New("no open session for plate")
	// ErrSessionNotFound indicates the requested session doesn't exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrStorageUnavailable indicates the store could not be reached or the
	// operation timed out; nothing was written.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrImageAttach classifies an advisory image-attachment failure. It is
	// never escalated to fail the entry or exit it accompanies.
	ErrImageAttach = errors.New("image attach failed")
)
