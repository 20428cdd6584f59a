package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  slog.LevelInfo,
		Format: FormatText,
		Output: &buf,
	})

	logger.Info("applying", "tweak", "disable-telemetry")

	output := buf.String()
	if !strings.Contains(output, "applying") {
		t.Errorf("output missing message: %s", output)
	}
	if !strings.Contains(output, "tweak=disable-telemetry") {
		t.Errorf("output missing attribute: %s", output)
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  slog.LevelInfo,
		Format: FormatJSON,
		Output: &buf,
	})

	logger.Info("restored", "entries", 3)

	output := buf.String()
	if !strings.Contains(output, `"msg":"restored"`) {
		t.Errorf("expected JSON output, got: %s", output)
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  slog.LevelWarn,
		Format: FormatText,
		Output: &buf,
	})

	logger.Info("should not appear")
	logger.Warn("should appear")

	output := buf.String()
	if strings.Contains(output, "should not appear") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(output, "should appear") {
		t.Error("warn message should pass at warn level")
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		verbosity int
		want      slog.Level
	}{
		{-1, slog.LevelWarn},
		{0, slog.LevelWarn},
		{1, slog.LevelInfo},
		{2, slog.LevelDebug},
		{3, LevelTrace},
		{7, LevelTrace},
	}

	for _, tt := range tests {
		got := LevelFromVerbosity(tt.verbosity)
		if got != tt.want {
			t.Errorf("LevelFromVerbosity(%d) = %v, want %v", tt.verbosity, got, tt.want)
		}
	}
}

func TestLevelTrace(t *testing.T) {
	if LevelTrace >= slog.LevelDebug {
		t.Error("LevelTrace should be lower than LevelDebug")
	}
}

func TestHandler_TraceLabel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelTrace,
		Format: FormatText,
		Output: &buf,
	})

	logger.Log(context.Background(), LevelTrace, "reading value", "key", `HKLM\SOFTWARE\Test`)

	if !strings.Contains(buf.String(), "TRACE") {
		t.Errorf("trace records should be labeled TRACE: %s", buf.String())
	}
}

func TestMultiHandler(t *testing.T) {
	var a, b bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	)
	logger := slog.New(h)

	logger.Info("both outputs")

	if !strings.Contains(a.String(), "both outputs") {
		t.Error("first handler should receive the record")
	}
	if !strings.Contains(b.String(), "both outputs") {
		t.Error("second handler should receive the record")
	}
}

func TestNewDiscard(t *testing.T) {
	logger := NewDiscard()
	// Must not panic, output goes nowhere.
	logger.Error("discarded")
}
