// Package workflow runs the two-phase invitation workflow over an ordered list
// of profiles: a read-only pre-scan that classifies connection status, and a
// connect phase that sends invitations. Every outcome is written to the resume
// store as soon as it is known.
package workflow

import (
	"errors"
	"fmt"
)

// ErrStopped is returned when the context is cancelled between profiles.
// The accompanying tally covers the profiles processed before the stop.
var ErrStopped = errors.New("workflow stopped")

// ErrProfileTimeout is returned when one profile outlives Options.ProfileTimeout.
var ErrProfileTimeout = errors.New("profile timed out")

// LookupError represents a driver failure while locating a page control.
// The profile is left unrecorded so a later run visits it again.
type LookupError struct {
	Control string
	Cause   error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("failed to look up %s: %v", e.Control, e.Cause)
}

func (e *LookupError) Unwrap() error {
	return e.Cause
}

// InputError represents a failure to read the profile list
type InputError struct {
	Path  string
	Cause error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input error: cannot read profile list %s: %v", e.Path, e.Cause)
}

func (e *InputError) Unwrap() error {
	return e.Cause
}

// PanicError wraps a panic recovered while processing one profile
type PanicError struct {
	Value interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic while processing profile: %v", e.Value)
}
