package errors

import (
	"errors"
	"fmt"
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (unknown tweak, bad option, etc.).
	ExitUser = 1

	// ExitSystem indicates a system-related error (I/O, OS call, permissions, etc.).
	ExitSystem = 2

	// ExitPartial indicates the operation partially succeeded and left a
	// retryable state behind (e.g. a restore with a non-empty failure list).
	ExitPartial = 3
)

// Sentinel errors for the failure taxonomy shared across packages.
var (
	// ErrNotFound indicates a resource, tweak, or snapshot is absent.
	// Absence is frequently a valid outcome, not a failure.
	ErrNotFound = errors.New("not found")

	// ErrAccessDenied indicates the operation was rejected for lack of
	// privilege. Callers may retry through the elevation subsystem.
	ErrAccessDenied = errors.New("access denied")

	// ErrOperationFailed indicates an OS call returned an error code.
	// The wrapped message carries the resource identity.
	ErrOperationFailed = errors.New("operation failed")

	// ErrCorruptSnapshot indicates a snapshot record exists but could not
	// be read or parsed. Never silently discarded.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")

	// ErrNoSnapshot indicates no snapshot exists for the tweak, so there
	// is nothing to revert.
	ErrNoSnapshot = errors.New("no snapshot for tweak")

	// ErrUnknownTweak indicates the tweak identifier is not in the catalog.
	ErrUnknownTweak = errors.New("unknown tweak")

	// ErrUnknownOption indicates the option label or index does not belong
	// to the tweak.
	ErrUnknownOption = errors.New("unknown option")
)

// ExitError wraps an error with an exit code and optional suggestion for CLI use.
// It implements the error interface and supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitSystem,
		Suggestion: suggestion,
	}
}

// NewPartialError creates an ExitError with ExitPartial code. Used when a
// restore left some resources unrestored; the snapshot stays in place so the
// suggestion is always "retry".
func NewPartialError(err error) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitPartial,
		Suggestion: "The snapshot was kept; run the command again to retry the failed entries.",
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As
// to examine the error chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}
