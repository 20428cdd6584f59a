package engine

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/tweakctl/tweakctl/internal/catalog"
	tweakerrors "github.com/tweakctl/tweakctl/internal/errors"
	"github.com/tweakctl/tweakctl/internal/snapshot"
)

// opState names a phase of an apply operation, for logging.
type opState string

const (
	stateIdle        opState = "idle"
	stateCapturing   opState = "capturing"
	statePreHooks    opState = "pre-hooks"
	stateApplying    opState = "applying"
	stateCommitted   opState = "committed"
	stateRollingBack opState = "rolling-back"
)

func (e *Engine) transition(tweakID string, s opState) {
	e.log.Debug("apply state", "tweak", tweakID, "state", s)
}

// ApplyResult reports what an Apply actually did.
type ApplyResult struct {
	TweakID     string
	OptionIndex int
	OptionLabel string

	// NoOp is set when the live state already matched the requested option
	// and nothing was touched.
	NoOp bool

	// Switched is set when a snapshot already existed, so the apply was an
	// option switch preserving the original baseline.
	Switched bool
}

// Apply moves a tweak to the given option.
//
// The first apply captures a baseline snapshot before touching anything;
// later applies of a different option keep that baseline and only update
// its option pointer. If the live state already matches the requested
// option, nothing runs. Any resource failure mid-apply rolls the tweak
// back to its pre-apply state before the error is returned.
func (e *Engine) Apply(ctx context.Context, t *catalog.Tweak, optionIndex int) (*ApplyResult, error) {
	opt, err := t.Option(optionIndex)
	if err != nil {
		return nil, err
	}

	lock := e.lockFor(t.ID)
	lock.Lock()
	defer lock.Unlock()

	res := &ApplyResult{TweakID: t.ID, OptionIndex: optionIndex, OptionLabel: opt.Label}

	// Idempotence guard: applying the option the system is already in must
	// not touch resources, capture, or run hooks.
	st, err := e.DetectTweakState(t)
	if err != nil {
		return nil, err
	}
	if st.OptionIndex == optionIndex {
		e.log.Info("already in requested option", "tweak", t.ID, "option", opt.Label)
		res.NoOp = true
		return res, nil
	}

	firstApply := !e.store.Exists(t.ID)

	// The rollback target for this attempt. On a first apply it doubles as
	// the persisted baseline; on an option switch it is a union capture of
	// the pre-switch state, held in memory only, so the original baseline
	// stays the long-term revert target.
	var attempt *snapshot.Snapshot

	e.transition(t.ID, stateCapturing)
	if firstApply {
		attempt, err = e.CaptureForOption(t, optionIndex)
		if err != nil {
			return nil, errors.Wrapf(err, "capturing baseline for %s", t.ID)
		}
		if err := e.store.Save(attempt); err != nil {
			return nil, err
		}
	} else {
		res.Switched = true
		attempt, err = e.CaptureCurrentState(t)
		if err != nil {
			return nil, errors.Wrapf(err, "capturing pre-switch state for %s", t.ID)
		}
	}

	e.transition(t.ID, statePreHooks)
	if err := e.runHooks(ctx, t, opt.Pre); err != nil {
		// No resource has been touched yet. On a first apply the freshly
		// captured baseline describes an unchanged system, so drop it.
		if firstApply {
			if derr := e.store.Delete(t.ID); derr != nil {
				e.log.Error("baseline cleanup after pre-hook failure", "tweak", t.ID, "error", derr)
			}
		}
		e.transition(t.ID, stateIdle)
		return nil, errors.Wrapf(err, "pre-hook for %s", t.ID)
	}

	e.transition(t.ID, stateApplying)
	if err := e.applyOption(t, opt); err != nil {
		e.transition(t.ID, stateRollingBack)
		e.rollback(t, attempt, firstApply)
		e.transition(t.ID, stateIdle)
		return nil, err
	}

	e.transition(t.ID, stateCommitted)
	if res.Switched {
		if err := e.store.UpdateMetadata(t.ID, optionIndex, opt.Label); err != nil {
			return nil, errors.Wrapf(err, "recording option switch for %s", t.ID)
		}
	}

	e.runPostHooks(ctx, t, opt.Post)

	e.transition(t.ID, stateIdle)
	e.log.Info("applied", "tweak", t.ID, "option", opt.Label, "switched", res.Switched)
	return res, nil
}

// applyOption writes the option's applicable changes: registry first, then
// services, then tasks. The first failure aborts; the caller rolls back.
func (e *Engine) applyOption(t *catalog.Tweak, opt *catalog.Option) error {
	w := e.writerFor(t.Elevated)

	for _, rc := range opt.Registry {
		if !rc.AppliesTo(e.osVer) {
			continue
		}
		ref := rc.Ref()
		var err error
		if rc.Absent {
			err = w.Registry.DeleteValue(ref)
		} else {
			err = w.Registry.WriteValue(ref, rc.Value)
		}
		if err != nil {
			return errors.Wrapf(err, "applying %s", ref)
		}
	}

	for _, sc := range opt.Services {
		if !sc.AppliesTo(e.osVer) {
			continue
		}
		if err := w.Services.SetStartup(sc.Name, sc.Startup); err != nil {
			return errors.Wrapf(err, "applying service %s", sc.Name)
		}
		if sc.Running != nil {
			var err error
			if *sc.Running {
				err = w.Services.Start(sc.Name)
			} else {
				err = w.Services.Stop(sc.Name)
			}
			if err != nil {
				return errors.Wrapf(err, "applying service %s", sc.Name)
			}
		}
	}

	for _, tc := range opt.Tasks {
		if !tc.AppliesTo(e.osVer) {
			continue
		}
		ref := tc.Ref()
		var err error
		if tc.Enabled {
			err = w.Tasks.Enable(ref)
		} else {
			err = w.Tasks.Disable(ref)
		}
		if err != nil {
			return errors.Wrapf(err, "applying task %s", ref.Path())
		}
	}

	return nil
}

// rollback restores the attempt snapshot after a failed apply. On a first
// apply the persisted baseline then describes the untouched system again,
// so it is removed; on an option switch the baseline stays, because the
// tweak is back in its pre-switch state.
func (e *Engine) rollback(t *catalog.Tweak, attempt *snapshot.Snapshot, firstApply bool) {
	res, err := e.Restore(attempt)
	if err != nil {
		e.log.Error("rollback restore failed", "tweak", t.ID, "error", err)
		return
	}
	for _, f := range res.Failures {
		e.log.Error("rollback failure", "tweak", t.ID, "resource", f)
	}
	if firstApply && res.Success() {
		if err := e.store.Delete(t.ID); err != nil {
			e.log.Error("rollback baseline cleanup failed", "tweak", t.ID, "error", err)
		}
	}
}

// Revert restores a tweak to its captured baseline and, on full success,
// removes the snapshot. Partial success keeps the snapshot so the
// remaining resources can be retried.
func (e *Engine) Revert(ctx context.Context, tweakID string) (Result, error) {
	lock := e.lockFor(tweakID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := e.store.Load(tweakID)
	if err != nil {
		if errors.Is(err, tweakerrors.ErrNoSnapshot) {
			return Result{}, errors.Wrapf(tweakerrors.ErrNoSnapshot,
				"%s has no recorded change to revert", tweakID)
		}
		return Result{}, err
	}

	res, err := e.Restore(snap)
	if err != nil {
		return res, err
	}
	if !res.Success() {
		e.log.Warn("revert incomplete, snapshot kept for retry",
			"tweak", tweakID, "failures", len(res.Failures))
		return res, nil
	}

	if err := e.store.Delete(tweakID); err != nil {
		return res, errors.Wrapf(err, "removing snapshot for %s", tweakID)
	}
	e.log.Info("reverted", "tweak", tweakID)
	return res, nil
}
