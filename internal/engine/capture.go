package engine

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/tweakctl/tweakctl/internal/catalog"
	"github.com/tweakctl/tweakctl/internal/snapshot"
	"github.com/tweakctl/tweakctl/internal/winres"
)

// CaptureForOption records the live state of every resource a single
// option would touch, before anything is modified. Reads that fail with
// access-denied are logged and recorded as "did not exist"; a snapshot is
// always produced unless a read fails in an unexpected way.
func (e *Engine) CaptureForOption(t *catalog.Tweak, optionIndex int) (*snapshot.Snapshot, error) {
	opt, err := t.Option(optionIndex)
	if err != nil {
		return nil, err
	}
	snap := e.newSnapshot(t, optionIndex, opt.Label)
	if err := e.captureOption(snap, opt, make(map[string]bool)); err != nil {
		return nil, err
	}
	return snap, nil
}

// CaptureCurrentState records the live state of the union of resources
// across all of a tweak's options, deduplicated by canonical reference.
// Used when switching options so the widened snapshot still covers
// resources only the outgoing option touched.
func (e *Engine) CaptureCurrentState(t *catalog.Tweak) (*snapshot.Snapshot, error) {
	snap := e.newSnapshot(t, snapshot.OptionIndexCurrent, snapshot.OptionLabelCurrent)
	seen := make(map[string]bool)
	for i := range t.Options {
		if err := e.captureOption(snap, &t.Options[i], seen); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

func (e *Engine) newSnapshot(t *catalog.Tweak, optionIndex int, optionLabel string) *snapshot.Snapshot {
	return &snapshot.Snapshot{
		SchemaVersion: snapshot.SchemaVersion,
		TweakID:       t.ID,
		TweakName:     t.Name,
		OptionIndex:   optionIndex,
		OptionLabel:   optionLabel,
		CreatedAt:     time.Now().UTC(),
		OSVersion:     e.osVer,
		Elevated:      t.Elevated,
	}
}

// captureOption appends entries for every resource the option touches on
// this OS version, skipping references already captured.
func (e *Engine) captureOption(snap *snapshot.Snapshot, opt *catalog.Option, seen map[string]bool) error {
	for _, rc := range opt.Registry {
		if !rc.AppliesTo(e.osVer) {
			continue
		}
		ref := rc.Ref()
		key := "reg:" + ref.Canonical()
		if seen[key] {
			continue
		}
		seen[key] = true
		entry, err := e.captureRegistry(ref)
		if err != nil {
			return err
		}
		snap.Registry = append(snap.Registry, entry)
	}

	for _, sc := range opt.Services {
		if !sc.AppliesTo(e.osVer) {
			continue
		}
		key := "svc:" + strings.ToLower(sc.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		entry, ok, err := e.captureService(sc.Name)
		if err != nil {
			return err
		}
		if ok {
			snap.Services = append(snap.Services, entry)
		}
	}

	for _, tc := range opt.Tasks {
		if !tc.AppliesTo(e.osVer) {
			continue
		}
		ref := tc.Ref()
		key := "task:" + ref.Canonical()
		if seen[key] {
			continue
		}
		seen[key] = true
		entry, err := e.captureTask(ref)
		if err != nil {
			return err
		}
		snap.Tasks = append(snap.Tasks, entry)
	}
	return nil
}

// captureRegistry records whether the key and the value existed and, when
// present, the typed prior data. Access-denied reads are recorded as
// absent so a later restore simply leaves the resource alone.
func (e *Engine) captureRegistry(ref winres.ValueRef) (snapshot.RegistryEntry, error) {
	entry := snapshot.RegistryEntry{Hive: ref.Hive, Key: ref.Key, Name: ref.Name}

	keyExists, err := e.direct.Registry.KeyExists(ref.Hive, ref.Key)
	switch {
	case err == nil:
		entry.KeyExisted = keyExists
	case errors.Is(err, winres.ErrAccessDenied):
		e.log.Warn("registry key unreadable, capturing as absent", "ref", ref.String(), "error", err)
		return entry, nil
	default:
		return entry, errors.Wrapf(err, "capturing %s", ref)
	}
	if !keyExists {
		return entry, nil
	}

	v, err := e.direct.Registry.ReadValue(ref)
	switch {
	case err == nil:
		entry.ValueExisted = true
		entry.Value = &v
	case errors.Is(err, winres.ErrNotFound):
		// Key present, value absent. Both facts are recorded.
	case errors.Is(err, winres.ErrAccessDenied):
		e.log.Warn("registry value unreadable, capturing as absent", "ref", ref.String(), "error", err)
	default:
		return entry, errors.Wrapf(err, "capturing %s", ref)
	}
	return entry, nil
}

// captureService records a service's startup mode and running flag. A
// service that is not installed or not readable produces no entry.
func (e *Engine) captureService(name string) (snapshot.ServiceEntry, bool, error) {
	st, err := e.direct.Services.Status(name)
	switch {
	case err == nil:
		return snapshot.ServiceEntry{Name: name, StartMode: st.StartMode, Running: st.Running}, true, nil
	case errors.Is(err, winres.ErrNotFound):
		e.log.Debug("service not installed, skipping capture", "service", name)
		return snapshot.ServiceEntry{}, false, nil
	case errors.Is(err, winres.ErrAccessDenied):
		e.log.Warn("service unreadable, skipping capture", "service", name, "error", err)
		return snapshot.ServiceEntry{}, false, nil
	default:
		return snapshot.ServiceEntry{}, false, errors.Wrapf(err, "capturing service %s", name)
	}
}

// captureTask records a scheduled task's state. A missing task is stored
// as not-found so restore knows to leave it alone.
func (e *Engine) captureTask(ref winres.TaskRef) (snapshot.TaskEntry, error) {
	entry := snapshot.TaskEntry{Folder: ref.Folder, Name: ref.Name}
	state, err := e.direct.Tasks.State(ref)
	switch {
	case err == nil:
		entry.State = state
	case errors.Is(err, winres.ErrAccessDenied):
		e.log.Warn("task unreadable, capturing as unknown", "task", ref.Path(), "error", err)
		entry.State = winres.TaskUnknown
	default:
		return entry, errors.Wrapf(err, "capturing task %s", ref.Path())
	}
	return entry, nil
}
