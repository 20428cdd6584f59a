package engine

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/tweakctl/tweakctl/internal/catalog"
	"github.com/tweakctl/tweakctl/internal/elevate"
)

// hookRunnerFor picks the runner hooks execute through. Elevated tweaks
// use the elevated runner so hook commands see the same identity as the
// tweak's resource writes.
func (e *Engine) hookRunnerFor(t *catalog.Tweak) elevate.Runner {
	if t.Elevated {
		return e.elevHook
	}
	return e.hooks
}

// runHooks executes pre-hook command lines in order, stopping at the first
// failure. A non-zero exit code is a failure.
func (e *Engine) runHooks(ctx context.Context, t *catalog.Tweak, cmds []string) error {
	runner := e.hookRunnerFor(t)
	for _, cmd := range cmds {
		e.log.Debug("running pre-hook", "tweak", t.ID, "cmd", cmd)
		code, err := runner.RunElevated(ctx, cmd)
		if err != nil {
			return errors.Wrapf(err, "hook %q", cmd)
		}
		if code != 0 {
			return errors.Newf("hook %q exited with code %d", cmd, code)
		}
	}
	return nil
}

// runPostHooks executes post-hook command lines. Post-hooks run after the
// option is committed, so failures are logged and never unwind the apply.
func (e *Engine) runPostHooks(ctx context.Context, t *catalog.Tweak, cmds []string) {
	runner := e.hookRunnerFor(t)
	for _, cmd := range cmds {
		e.log.Debug("running post-hook", "tweak", t.ID, "cmd", cmd)
		code, err := runner.RunElevated(ctx, cmd)
		if err != nil {
			e.log.Warn("post-hook failed", "tweak", t.ID, "cmd", cmd, "error", err)
			continue
		}
		if code != 0 {
			e.log.Warn("post-hook exited non-zero", "tweak", t.ID, "cmd", cmd, "code", code)
		}
	}
}
