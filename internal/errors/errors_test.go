package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ExitError
		want string
	}{
		{
			name: "with underlying error",
			err:  NewExitError(errors.New("boom"), ExitSystem),
			want: "boom",
		},
		{
			name: "nil underlying error",
			err:  NewExitError(nil, ExitUser),
			want: "exit code 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	wrapped := fmt.Errorf("loading snapshot: %w", ErrCorruptSnapshot)
	exitErr := NewSystemError(wrapped, "delete the snapshot file manually")

	if !errors.Is(exitErr, ErrCorruptSnapshot) {
		t.Error("errors.Is should find ErrCorruptSnapshot through ExitError")
	}

	var target *ExitError
	if !errors.As(exitErr, &target) {
		t.Fatal("errors.As should find ExitError")
	}
	if target.Code != ExitSystem {
		t.Errorf("Code = %d, want %d", target.Code, ExitSystem)
	}
	if target.Suggestion == "" {
		t.Error("Suggestion should be preserved")
	}
}

func TestNewPartialError(t *testing.T) {
	err := NewPartialError(errors.New("2 of 5 entries failed"))
	if err.Code != ExitPartial {
		t.Errorf("Code = %d, want %d", err.Code, ExitPartial)
	}
	if err.Suggestion == "" {
		t.Error("partial errors should carry a retry suggestion")
	}
}

func TestSentinels_Distinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrAccessDenied,
		ErrOperationFailed,
		ErrCorruptSnapshot,
		ErrNoSnapshot,
		ErrUnknownTweak,
		ErrUnknownOption,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %v should not match %v", a, b)
			}
		}
	}
}
