package elevate

import (
	"context"
	"os/exec"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
)

// Runner executes a command line under an elevated identity and reports
// its exit code. The elevation vehicle (helper binary, service, scheduled
// task trampoline) is an implementation detail behind this interface; the
// engine only assumes that a zero exit code means the command's effect is
// visible system-wide.
type Runner interface {
	RunElevated(ctx context.Context, commandLine string) (int, error)
}

// Shell runs command lines through the platform shell. When Wrapper is
// set, the command line is passed to that program (e.g. an elevation
// helper that relaunches its argument with a privileged token); otherwise
// the command runs as the current identity, which is correct when the
// process itself was started elevated.
type Shell struct {
	Wrapper string
}

// NewShell creates a Shell runner with no wrapper.
func NewShell() *Shell {
	return &Shell{}
}

// RunElevated implements Runner.
func (s *Shell) RunElevated(ctx context.Context, commandLine string) (int, error) {
	line := commandLine
	if s.Wrapper != "" {
		line = s.Wrapper + " " + commandLine
	}

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", line)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", line)
	}

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, errors.Wrap(err, "spawning elevated command")
}

// quoteArg quotes an argument for inclusion in a command line if needed.
func quoteArg(s string) string {
	if s == "" || strings.ContainsAny(s, " \t") {
		return `"` + s + `"`
	}
	return s
}

// joinArgs renders an argv slice as a single command line.
func joinArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = quoteArg(a)
	}
	return strings.Join(quoted, " ")
}
