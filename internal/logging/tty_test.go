package logging

import (
	"bytes"
	"testing"
)

func TestIsTTY_PlainWriter(t *testing.T) {
	if IsTTY(&bytes.Buffer{}) {
		t.Error("bytes.Buffer should not be a TTY")
	}
}

func TestSupportsColor_NoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if supportsColor(true) {
		t.Error("NO_COLOR should disable color even on a TTY")
	}
}

func TestSupportsColor_DumbTerm(t *testing.T) {
	t.Setenv("TERM", "dumb")
	if supportsColor(true) {
		t.Error("TERM=dumb should disable color")
	}
}

func TestSupportsColor_NotATTY(t *testing.T) {
	if supportsColor(false) {
		t.Error("non-TTY writers should not get color")
	}
}
