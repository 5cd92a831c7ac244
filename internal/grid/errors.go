package grid

import (
	"errors"
	"fmt"
)

// LifecycleError reports misuse of a compute context: operating on a
// handle that was never started or one that has already been stopped.
//
// Lifecycle misuse is a programming defect in the calling test, not a
// recoverable runtime condition. Callers must obtain a fresh context
// for each test case instead of attempting recovery.
type LifecycleError struct {
	// Code identifies the misuse category.
	Code LifecycleErrorCode

	// Op is the operation that was attempted.
	Op string

	// Context is the name of the affected compute context.
	Context string
}

// LifecycleErrorCode categorizes lifecycle misuse.
type LifecycleErrorCode string

const (
	// ErrCodeUninitialized indicates an operation on a context that was
	// never started.
	ErrCodeUninitialized LifecycleErrorCode = "CONTEXT_UNINITIALIZED"

	// ErrCodeStopped indicates an operation on a context after Stop.
	// Stopped is terminal: the handle must never be reused.
	ErrCodeStopped LifecycleErrorCode = "CONTEXT_STOPPED"

	// ErrCodeActive indicates a start on a lifecycle that already owns
	// a live context. One start pairs with exactly one stop.
	ErrCodeActive LifecycleErrorCode = "CONTEXT_ACTIVE"
)

// Error implements the error interface.
func (e *LifecycleError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (context=%s)", e.Code, e.Op, e.Context)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Op)
}

// IsLifecycleMisuse reports whether err is a LifecycleError.
// Uses errors.As to handle wrapped errors.
func IsLifecycleMisuse(err error) bool {
	var le *LifecycleError
	return errors.As(err, &le)
}
