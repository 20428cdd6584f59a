package engine

import (
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/tweakctl/tweakctl/internal/catalog"
	"github.com/tweakctl/tweakctl/internal/winres"
)

// NoMatch is the option index reported when the live state matches none of
// a tweak's options.
const NoMatch = -1

// State is the detected live state of one tweak.
type State struct {
	// OptionIndex is the first option whose applicable changes all match
	// the live system, or NoMatch.
	OptionIndex int
	OptionLabel string

	// HasSnapshot reports whether an unreverted change is recorded for the
	// tweak.
	HasSnapshot bool
}

// Matched reports whether the live state matched one of the options.
func (s State) Matched() bool {
	return s.OptionIndex != NoMatch
}

// DetectTweakState reads the live system and reports which option, if any,
// the tweak is currently in. Options are checked in declaration order and
// the first full match wins; matching is read-only.
func (e *Engine) DetectTweakState(t *catalog.Tweak) (State, error) {
	st := State{OptionIndex: NoMatch, HasSnapshot: e.store.Exists(t.ID)}

	for i := range t.Options {
		opt := &t.Options[i]
		match, err := e.optionMatches(opt)
		if err != nil {
			return st, errors.Wrapf(err, "detecting state of %s", t.ID)
		}
		if match {
			st.OptionIndex = i
			st.OptionLabel = opt.Label
			break
		}
	}
	return st, nil
}

// optionMatches reports whether every applicable change of the option is
// already satisfied by the live system. An option with no applicable
// changes on this OS version never matches.
func (e *Engine) optionMatches(opt *catalog.Option) (bool, error) {
	applicable := 0

	for _, rc := range opt.Registry {
		if !rc.AppliesTo(e.osVer) {
			continue
		}
		applicable++
		match, err := e.registryMatches(rc)
		if err != nil || !match {
			return false, err
		}
	}

	for _, sc := range opt.Services {
		if !sc.AppliesTo(e.osVer) {
			continue
		}
		applicable++
		match, err := e.serviceMatches(sc)
		if err != nil || !match {
			return false, err
		}
	}

	for _, tc := range opt.Tasks {
		if !tc.AppliesTo(e.osVer) {
			continue
		}
		applicable++
		match, err := e.taskMatches(tc)
		if err != nil || !match {
			return false, err
		}
	}

	return applicable > 0, nil
}

func (e *Engine) registryMatches(rc catalog.RegistryChange) (bool, error) {
	ref := rc.Ref()
	live, err := e.direct.Registry.ReadValue(ref)
	switch {
	case err == nil:
		if rc.Absent {
			return false, nil
		}
		return live.Equal(rc.Value), nil
	case errors.Is(err, winres.ErrNotFound):
		return rc.Absent, nil
	case errors.Is(err, winres.ErrAccessDenied):
		e.log.Debug("registry value unreadable during detection", "ref", ref.String(), "error", err)
		return false, nil
	default:
		return false, errors.Wrapf(err, "reading %s", ref)
	}
}

func (e *Engine) serviceMatches(sc catalog.ServiceChange) (bool, error) {
	st, err := e.direct.Services.Status(sc.Name)
	switch {
	case err == nil:
		if st.StartMode != sc.Startup {
			return false, nil
		}
		if sc.Running != nil && st.Running != *sc.Running {
			return false, nil
		}
		return true, nil
	case errors.Is(err, winres.ErrNotFound), errors.Is(err, winres.ErrAccessDenied):
		return false, nil
	default:
		return false, errors.Wrapf(err, "reading service %s", sc.Name)
	}
}

// taskMatches treats Ready and Running as equivalent "enabled" states; a
// missing task matches nothing.
func (e *Engine) taskMatches(tc catalog.TaskChange) (bool, error) {
	ref := tc.Ref()
	state, err := e.direct.Tasks.State(ref)
	switch {
	case err == nil:
		switch state {
		case winres.TaskNotFound, winres.TaskUnknown:
			return false, nil
		}
		if tc.Enabled {
			return state.Enabled(), nil
		}
		return state == winres.TaskDisabled, nil
	case errors.Is(err, winres.ErrAccessDenied):
		return false, nil
	default:
		return false, errors.Wrapf(err, "reading task %s", ref.Path())
	}
}

// DetectAll detects the state of every given tweak concurrently. Tweaks
// are independent resources, so cross-tweak detection is safe to fan out;
// per-tweak failures are logged and reported as unmatched.
func (e *Engine) DetectAll(tweaks []*catalog.Tweak) map[string]State {
	results := make(map[string]State, len(tweaks))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, t := range tweaks {
		wg.Add(1)
		go func(t *catalog.Tweak) {
			defer wg.Done()
			st, err := e.DetectTweakState(t)
			if err != nil {
				e.log.Warn("state detection failed", "tweak", t.ID, "error", err)
			}
			mu.Lock()
			results[t.ID] = st
			mu.Unlock()
		}(t)
	}
	wg.Wait()

	return results
}

// ValidateSnapshots reconciles persisted snapshots with reality: a
// snapshot whose tweak no longer matches any known option was changed
// outside this tool, so the baseline no longer describes a state the user
// can be returned to and the snapshot is removed. Returns the number of
// snapshots removed.
func (e *Engine) ValidateSnapshots(cat *catalog.Catalog) (int, error) {
	ids, err := e.store.List()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, id := range ids {
		t, err := cat.Get(id)
		if err != nil {
			e.log.Warn("snapshot for unknown tweak left in place", "tweak", id)
			continue
		}
		st, err := e.DetectTweakState(t)
		if err != nil {
			e.log.Warn("snapshot validation detection failed", "tweak", id, "error", err)
			continue
		}
		if st.Matched() {
			continue
		}
		if err := e.store.Delete(id); err != nil {
			e.log.Warn("stale snapshot removal failed", "tweak", id, "error", err)
			continue
		}
		e.log.Info("removed stale snapshot", "tweak", id)
		removed++
	}
	return removed, nil
}
