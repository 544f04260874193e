// Package service implements the capacity ledger, the session directory and
// the reminder dispatch loop.  Services depend on narrow store interfaces so
// handlers, the scheduler and the CLI share one implementation and tests can
// substitute in-memory fakes.
package service

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a registration or admin operation
// names a session that does not exist.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionInactive is returned when the target session exists but no
// longer accepts registrations.
var ErrSessionInactive = errors.New("session is not accepting registrations")

// ErrAudienceMismatch is returned when a registration kind targets a session
// not offered to that audience.
var ErrAudienceMismatch = errors.New("session is not offered to this audience")

// ErrDuplicateSessionName is returned when creating or renaming a session
// would collide with an existing name, active or not.
var ErrDuplicateSessionName = errors.New("a session with that name already exists")

// ValidationError marks a malformed submission rejected before any store
// access.  Its message is safe to show to the submitter.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// CapacityError rejects an admission attempt that would exceed a session's
// child limit.  SpotsRemaining carries the exact number of spots still open
// so callers can surface it verbatim.
type CapacityError struct {
	SpotsRemaining int
}

func (e *CapacityError) Error() string {
	if e.SpotsRemaining == 1 {
		return "only 1 spot remaining for this session"
	}
	return fmt.Sprintf("only %d spots remaining for this session", e.SpotsRemaining)
}
