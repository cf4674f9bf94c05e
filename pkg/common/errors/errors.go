package errors

import (
	"errors"
	"fmt"
)

// Common error types used across the forkjoin library

var (
	// ErrPoolClosed indicates that a submission was attempted after shutdown
	ErrPoolClosed = errors.New("pool is closed")

	// ErrTaskCancelled indicates that a task was cancelled before it ran
	ErrTaskCancelled = errors.New("task cancelled")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrInvalidConfiguration indicates invalid configuration parameters
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrCacheMiss indicates that a memoized result was not found
	ErrCacheMiss = errors.New("cache miss")
)

// IsRetryable returns true if the error indicates a condition that might
// be resolved by retrying the operation
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrCacheMiss)
}

// IsTerminal returns true if the error indicates a condition that will not
// be resolved by retrying
func IsTerminal(err error) bool {
	return errors.Is(err, ErrPoolClosed) || errors.Is(err, ErrTaskCancelled)
}

// ValidationError describes a rejected configuration value.
type ValidationError struct {
	Module string      // component that rejected the value
	Field  string      // configuration field name
	Value  interface{} // the rejected value
	Reason string      // why the value was rejected
	Hint   string      // optional suggestion for a valid value
}

// NewValidationError creates a ValidationError for the given module and field.
func NewValidationError(module, field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{
		Module: module,
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// WithHint attaches a suggestion to the error and returns it.
func (e *ValidationError) WithHint(hint string) *ValidationError {
	e.Hint = hint
	return e
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s=%v (%s)", e.Module, e.Field, e.Value, e.Reason)
	if e.Hint != "" {
		msg += " - " + e.Hint
	}
	return msg
}

// Unwrap allows errors.Is(err, ErrInvalidConfiguration) to match.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfiguration
}
