package engine

import (
	"fmt"

	"github.com/tweakctl/tweakctl/internal/catalog"
	"github.com/tweakctl/tweakctl/internal/winres"
)

// PlannedChange describes one resource transition an apply would perform.
type PlannedChange struct {
	Resource string
	From     string
	To       string
}

func (c PlannedChange) String() string {
	return fmt.Sprintf("%s: %s -> %s", c.Resource, c.From, c.To)
}

// Plan reads the live system and describes what applying the given option
// would change, without touching anything. Changes already satisfied are
// omitted.
func (e *Engine) Plan(t *catalog.Tweak, optionIndex int) ([]PlannedChange, error) {
	opt, err := t.Option(optionIndex)
	if err != nil {
		return nil, err
	}

	var plan []PlannedChange

	for _, rc := range opt.Registry {
		if !rc.AppliesTo(e.osVer) {
			continue
		}
		match, err := e.registryMatches(rc)
		if err != nil {
			return nil, err
		}
		if match {
			continue
		}
		ref := rc.Ref()
		from := "(absent)"
		if live, err := e.direct.Registry.ReadValue(ref); err == nil {
			from = live.String()
		}
		to := "(absent)"
		if !rc.Absent {
			to = rc.Value.String()
		}
		plan = append(plan, PlannedChange{Resource: ref.String(), From: from, To: to})
	}

	for _, sc := range opt.Services {
		if !sc.AppliesTo(e.osVer) {
			continue
		}
		match, err := e.serviceMatches(sc)
		if err != nil {
			return nil, err
		}
		if match {
			continue
		}
		from := "(not installed)"
		if st, err := e.direct.Services.Status(sc.Name); err == nil {
			from = string(st.StartMode)
			if sc.Running != nil {
				from += runFlag(st.Running)
			}
		}
		to := string(sc.Startup)
		if sc.Running != nil {
			to += runFlag(*sc.Running)
		}
		plan = append(plan, PlannedChange{Resource: "service " + sc.Name, From: from, To: to})
	}

	for _, tc := range opt.Tasks {
		if !tc.AppliesTo(e.osVer) {
			continue
		}
		match, err := e.taskMatches(tc)
		if err != nil {
			return nil, err
		}
		if match {
			continue
		}
		ref := tc.Ref()
		from := "(unknown)"
		if state, err := e.direct.Tasks.State(ref); err == nil {
			from = string(state)
		}
		to := string(winres.TaskDisabled)
		if tc.Enabled {
			to = string(winres.TaskReady)
		}
		plan = append(plan, PlannedChange{Resource: "task " + ref.Path(), From: from, To: to})
	}

	return plan, nil
}

func runFlag(running bool) string {
	if running {
		return " (running)"
	}
	return " (stopped)"
}
