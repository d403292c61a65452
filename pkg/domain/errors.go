package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports a malformed or missing field. The offending
// mutation is rejected before any state changes.
type ValidationError struct {
	Entity EntityType
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Entity, e.Field, e.Reason)
}

// NotFoundError reports an operation referencing a nonexistent id.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ErrCorruptSnapshot indicates a persisted local blob could not be decoded.
// Callers treat it as an absent snapshot, not a fatal condition.
var ErrCorruptSnapshot = errors.New("persisted snapshot is corrupt")

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// SyncResult is the structured outcome of a remote push or pull. Remote
// failures are captured here rather than thrown so callers can branch without
// exception handling; Step names the table that failed on push.
type SyncResult struct {
	Success bool   `json:"success"`
	Step    string `json:"step,omitempty"`
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"`
}

// OK returns a successful sync result with an optional message.
func OK(message string) SyncResult {
	return SyncResult{Success: true, Message: message}
}

// Failed returns a failure result for the named step wrapping err.
func Failed(step string, err error) SyncResult {
	return SyncResult{
		Success: false,
		Step:    step,
		Message: fmt.Sprintf("%s: %v", step, err),
		Err:     err,
	}
}
