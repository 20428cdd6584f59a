package catalog

import (
	"strings"

	"github.com/cockroachdb/errors"

	tweakerrors "github.com/tweakctl/tweakctl/internal/errors"
	"github.com/tweakctl/tweakctl/internal/winres"
)

// Tweak is a named, user-toggleable configuration concern with an ordered
// list of mutually exclusive options. Options are the only valid target
// states; "matches no option" is a first-class outcome, not an error.
type Tweak struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Elevated    bool     `yaml:"elevated"`
	Options     []Option `yaml:"options"`
}

// Option is one concrete target configuration for a tweak.
type Option struct {
	Label    string           `yaml:"label"`
	Registry []RegistryChange `yaml:"registry"`
	Services []ServiceChange  `yaml:"services"`
	Tasks    []TaskChange     `yaml:"tasks"`

	// Pre and Post are command lines run before and after the option's
	// resource changes are applied. A pre-hook failure aborts the apply
	// before any resource is touched; post-hook failures are logged only.
	Pre  []string `yaml:"pre"`
	Post []string `yaml:"post"`
}

// RegistryChange declares one registry value an option sets (or removes,
// when Absent is true).
type RegistryChange struct {
	Hive   winres.Hive
	Key    string
	Name   string
	Value  winres.Value
	Absent bool

	// OS restricts applicability to the listed version tags; empty means
	// all versions.
	OS []string
}

// Ref returns the registry value identity for this change.
func (c RegistryChange) Ref() winres.ValueRef {
	return winres.ValueRef{Hive: c.Hive, Key: c.Key, Name: c.Name}
}

// AppliesTo reports whether the change targets the given OS version.
func (c RegistryChange) AppliesTo(osVersion string) bool {
	return osApplies(c.OS, osVersion)
}

// ServiceChange declares a service startup mode (and optionally a running
// state) an option sets.
type ServiceChange struct {
	Name    string           `yaml:"name"`
	Startup winres.StartMode `yaml:"startup"`

	// Running, when set, means the option also starts or stops the service.
	Running *bool `yaml:"running"`

	OS []string `yaml:"os"`
}

// AppliesTo reports whether the change targets the given OS version.
func (c ServiceChange) AppliesTo(osVersion string) bool {
	return osApplies(c.OS, osVersion)
}

// TaskChange declares a scheduled task enablement state an option sets.
type TaskChange struct {
	Folder  string `yaml:"folder"`
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`

	OS []string `yaml:"os"`
}

// Ref returns the scheduler identity for this change.
func (c TaskChange) Ref() winres.TaskRef {
	return winres.TaskRef{Folder: c.Folder, Name: c.Name}
}

// AppliesTo reports whether the change targets the given OS version.
func (c TaskChange) AppliesTo(osVersion string) bool {
	return osApplies(c.OS, osVersion)
}

func osApplies(tags []string, osVersion string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if strings.EqualFold(t, osVersion) {
			return true
		}
	}
	return false
}

// Option returns the option at index i.
func (t *Tweak) Option(i int) (*Option, error) {
	if i < 0 || i >= len(t.Options) {
		return nil, errors.Wrapf(tweakerrors.ErrUnknownOption, "%s has no option %d", t.ID, i)
	}
	return &t.Options[i], nil
}

// OptionIndex resolves an option label to its index, case-insensitively.
func (t *Tweak) OptionIndex(label string) (int, error) {
	for i, o := range t.Options {
		if strings.EqualFold(o.Label, label) {
			return i, nil
		}
	}
	return 0, errors.Wrapf(tweakerrors.ErrUnknownOption, "%s has no option %q", t.ID, label)
}
