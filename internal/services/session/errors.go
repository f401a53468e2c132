package session

import (
	"errors"
	"fmt"
)

// ErrDeviceUnavailable reports that the audio capture collaborator denied
// access. The voice state machine stays in Idle.
var ErrDeviceUnavailable = errors.New("audio capture device unavailable")

// ValidationError is a user-visible, non-fatal rejection raised at the
// boundary before any mutation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}
