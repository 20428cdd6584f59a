// Package errors provides error handling conventions for the tweakctl CLI.
//
// This package defines sentinel errors for the shared failure taxonomy,
// an ExitError type for CLI exit code handling, and exit code constants.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific error conditions
// using [errors.Is]:
//
//	if errors.Is(err, tweakerrors.ErrNotFound) {
//	    // absence is a valid outcome here
//	}
//
// The taxonomy distinguishes four conditions: not-found (often valid),
// access-denied (may prompt elevation), operation-failed (OS call failed,
// resource identity attached by the wrapper), and corrupt-snapshot (a
// persisted record is unreadable and must be surfaced, never dropped).
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (unknown tweak, invalid option, etc.)
//   - ExitSystem (2): System-related error (I/O, OS calls, permissions)
//   - ExitPartial (3): Partial success; snapshot kept for retry
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion. It supports error unwrapping via [errors.Unwrap] and [errors.As]:
//
//	var exitErr *tweakerrors.ExitError
//	if errors.As(err, &exitErr) {
//	    if exitErr.Suggestion != "" {
//	        fmt.Println("Suggestion:", exitErr.Suggestion)
//	    }
//	    os.Exit(exitErr.Code)
//	}
package errors
