package engine

import (
	"fmt"

	"github.com/cockroachdb/errors"

	tweakerrors "github.com/tweakctl/tweakctl/internal/errors"
	"github.com/tweakctl/tweakctl/internal/snapshot"
	"github.com/tweakctl/tweakctl/internal/winres"
)

// Result reports the outcome of a restore. Registry failures never appear
// here; they abort the restore with an error after the in-process undo.
// Service and task failures are collected per resource and the remaining
// restores continue.
type Result struct {
	Failures []string
}

// Success reports whether every resource was restored.
func (r Result) Success() bool {
	return len(r.Failures) == 0
}

func (r *Result) failf(format string, args ...any) {
	r.Failures = append(r.Failures, fmt.Sprintf(format, args...))
}

// regUndo remembers the live state of a registry value just before it was
// overwritten, so a mid-restore failure can be unwound. An entry whose
// live value could not be read is marked not undoable; unwinding it would
// have to guess at the value or delete one that exists.
type regUndo struct {
	ref      winres.ValueRef
	existed  bool
	value    winres.Value
	undoable bool
}

// Restore returns the system to the snapshot's captured state.
//
// Phase 1 (registry) is all-or-nothing: any write failure undoes the
// registry writes already made, in reverse order, and aborts with an
// error. Phases 2 (services) and 3 (tasks) are best-effort: failures are
// collected in the Result and the remaining entries still run. A task
// captured as not-found is left alone.
func (e *Engine) Restore(snap *snapshot.Snapshot) (Result, error) {
	var res Result

	// A malformed record must surface as an error before anything is
	// touched, never as a crash mid-restore.
	if err := snap.Validate(); err != nil {
		return res, errors.Wrapf(tweakerrors.ErrCorruptSnapshot, "restoring %s: %v", snap.TweakID, err)
	}

	writer := e.writerFor(snap.Elevated)

	if err := e.restoreRegistry(snap, writer.Registry); err != nil {
		return res, err
	}
	e.restoreServices(snap, writer.Services, &res)
	e.restoreTasks(snap, writer.Tasks, &res)

	if !res.Success() {
		e.log.Warn("restore finished with failures",
			"tweak", snap.TweakID, "failures", len(res.Failures))
	}
	return res, nil
}

func (e *Engine) restoreRegistry(snap *snapshot.Snapshot, reg winres.Registry) error {
	undo := make([]regUndo, 0, len(snap.Registry))

	for _, entry := range snap.Registry {
		ref := entry.Ref()

		u := regUndo{ref: ref, undoable: true}
		if live, err := e.direct.Registry.ReadValue(ref); err == nil {
			u.existed = true
			u.value = live
		} else if errors.Is(err, winres.ErrAccessDenied) {
			// The value may exist but is unreadable. An unwind must not
			// delete it on the strength of a failed read.
			u.undoable = false
		} else if !errors.Is(err, winres.ErrNotFound) {
			e.undoRegistry(reg, undo)
			return errors.Wrapf(err, "reading %s before restore", ref)
		}

		var err error
		if entry.ValueExisted {
			err = reg.WriteValue(ref, *entry.Value)
		} else {
			err = reg.DeleteValue(ref)
		}
		if err != nil {
			e.undoRegistry(reg, undo)
			return errors.Wrapf(err, "restoring %s", ref)
		}
		undo = append(undo, u)

		e.log.Debug("registry value restored", "ref", ref.String(), "existed", entry.ValueExisted)
	}
	return nil
}

// undoRegistry unwinds completed registry writes in reverse order,
// rewriting the pre-restore live values. Undo failures are logged; there
// is nothing further to fall back to.
func (e *Engine) undoRegistry(reg winres.Registry, undo []regUndo) {
	for i := len(undo) - 1; i >= 0; i-- {
		u := undo[i]
		if !u.undoable {
			e.log.Warn("registry undo skipped, pre-restore value was unreadable", "ref", u.ref.String())
			continue
		}
		var err error
		if u.existed {
			err = reg.WriteValue(u.ref, u.value)
		} else {
			err = reg.DeleteValue(u.ref)
		}
		if err != nil {
			e.log.Error("registry undo failed", "ref", u.ref.String(), "error", err)
		}
	}
}

func (e *Engine) restoreServices(snap *snapshot.Snapshot, svc winres.Services, res *Result) {
	for _, entry := range snap.Services {
		if err := svc.SetStartup(entry.Name, entry.StartMode); err != nil {
			res.failf("service %s: set startup %s: %v", entry.Name, entry.StartMode, err)
		}

		var err error
		if entry.Running {
			err = svc.Start(entry.Name)
		} else {
			err = svc.Stop(entry.Name)
		}
		if err != nil {
			verb := "stop"
			if entry.Running {
				verb = "start"
			}
			res.failf("service %s: %s: %v", entry.Name, verb, err)
		}
	}
}

func (e *Engine) restoreTasks(snap *snapshot.Snapshot, tasks winres.Tasks, res *Result) {
	for _, entry := range snap.Tasks {
		ref := entry.Ref()
		switch entry.State {
		case winres.TaskNotFound:
			// The task did not exist at capture time; nothing to put back.
			continue
		case winres.TaskUnknown:
			e.log.Debug("task state unknown at capture, leaving alone", "task", ref.Path())
			continue
		}

		var err error
		if entry.State.Enabled() {
			err = tasks.Enable(ref)
		} else {
			err = tasks.Disable(ref)
		}
		if err != nil {
			res.failf("task %s: restore %s: %v", ref.Path(), entry.State, err)
		}
	}
}
