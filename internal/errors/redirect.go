package errors

import (
	cockroacherrors "github.com/cockroachdb/errors"
)

// Re-exports so callers need a single errors import for construction,
// wrapping, and inspection.

// New creates an error with a stack trace.
func New(msg string) error {
	return cockroacherrors.New(msg)
}

// Newf creates a formatted error with a stack trace.
func Newf(format string, args ...any) error {
	return cockroacherrors.Newf(format, args...)
}

// Wrap annotates err with a message, preserving the chain.
func Wrap(err error, msg string) error {
	return cockroacherrors.Wrap(err, msg)
}

// Wrapf annotates err with a formatted message, preserving the chain.
func Wrapf(err error, format string, args ...any) error {
	return cockroacherrors.Wrapf(err, format, args...)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return cockroacherrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return cockroacherrors.As(err, target)
}
