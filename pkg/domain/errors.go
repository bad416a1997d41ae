package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when a session ID cannot be found in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrFlowNotFound is returned when no definition is registered under a name.
	ErrFlowNotFound = errors.New("flow not found")

	// ErrInvalidDefinition is returned by NewDefinition for malformed step lists.
	ErrInvalidDefinition = errors.New("invalid wizard definition")

	// ErrResultDiscarded is returned when an async result arrives for an
	// attempt that was cancelled or superseded.
	ErrResultDiscarded = errors.New("async result discarded")

	// ErrInvalidState is returned when a state does not belong to the
	// definition it is driven with (unknown flow, index out of range).
	ErrInvalidState = errors.New("invalid wizard state")

	ErrValidation = errors.New("validation failed")
	ErrBusy       = errors.New("transition already in flight")
	ErrAsyncStep  = errors.New("async step failed")
	ErrBoundary   = errors.New("wizard boundary reached")
	ErrNavigation = errors.New("jump beyond visited steps")
)

// ValidationError is returned when the active step's guard rejects the payload.
type ValidationError struct {
	StepID string
	Cause  error
}

func (e *ValidationError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("step %q: %v", e.StepID, ErrValidation)
	}
	return fmt.Sprintf("step %q: %v: %v", e.StepID, ErrValidation, e.Cause)
}

func (e *ValidationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Cause}
}

// BusyError is returned when advance is called while an async step is submitting.
type BusyError struct {
	StepID string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("step %q: %v", e.StepID, ErrBusy)
}

func (e *BusyError) Unwrap() error { return ErrBusy }

// AsyncStepError wraps the failure reported by an async step's action.
type AsyncStepError struct {
	StepID string
	Cause  error
}

func (e *AsyncStepError) Error() string {
	return fmt.Sprintf("step %q: %v: %v", e.StepID, ErrAsyncStep, e.Cause)
}

func (e *AsyncStepError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrAsyncStep}
	}
	return []error{ErrAsyncStep, e.Cause}
}

// BoundaryError is returned when navigating past either end of the wizard.
type BoundaryError struct {
	Op    string
	Index int
}

func (e *BoundaryError) Error() string {
	return fmt.Sprintf("%s at index %d: %v", e.Op, e.Index, ErrBoundary)
}

func (e *BoundaryError) Unwrap() error { return ErrBoundary }

// NavigationError is returned when jumping to a step that was never reached.
type NavigationError struct {
	Target int
	Max    int
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("jump to %d (max visited %d): %v", e.Target, e.Max, ErrNavigation)
}

func (e *NavigationError) Unwrap() error { return ErrNavigation }

// IsRetryable reports whether the caller may simply retry after fixing input
// or waiting: validation, busy and async failures are; boundary and
// navigation errors are programmer errors.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrBusy) || errors.Is(err, ErrAsyncStep)
}
