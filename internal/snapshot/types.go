package snapshot

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/tweakctl/tweakctl/internal/winres"
)

// SchemaVersion is the snapshot record format version for forward compatibility.
const SchemaVersion = 1

// OptionIndexCurrent is the sentinel option index recording that the
// snapshot captured whatever state was live at capture time, rather than
// one of the tweak's defined options.
const OptionIndexCurrent = -1

// OptionLabelCurrent is the display label paired with OptionIndexCurrent.
const OptionLabelCurrent = "current"

// RegistryEntry is the captured prior state of one registry value.
// KeyExisted and ValueExisted keep "value absent" and "key absent"
// distinct from a zero or empty value; Value is nil unless ValueExisted.
type RegistryEntry struct {
	Hive winres.Hive `json:"hive"`
	Key  string      `json:"key"`
	Name string      `json:"name"`

	KeyExisted   bool          `json:"key_existed"`
	ValueExisted bool          `json:"value_existed"`
	Value        *winres.Value `json:"value,omitempty"`
}

// Ref returns the registry value identity for this entry.
func (e RegistryEntry) Ref() winres.ValueRef {
	return winres.ValueRef{Hive: e.Hive, Key: e.Key, Name: e.Name}
}

// ServiceEntry is the captured prior state of one service.
type ServiceEntry struct {
	Name      string           `json:"name"`
	StartMode winres.StartMode `json:"start_mode"`
	Running   bool             `json:"running"`
}

// TaskEntry is the captured prior state of one scheduled task.
type TaskEntry struct {
	Folder string           `json:"folder"`
	Name   string           `json:"name"`
	State  winres.TaskState `json:"state"`
}

// Ref returns the scheduler identity for this entry.
func (e TaskEntry) Ref() winres.TaskRef {
	return winres.TaskRef{Folder: e.Folder, Name: e.Name}
}

// Snapshot is the persisted pre-change state for one tweak. At most one
// snapshot per tweak identifier exists at any time; its presence means the
// tweak has an unreverted change and full rollback is possible.
//
// The resource entries are captured once, on the first apply, and never
// replaced on later option switches; only OptionIndex and OptionLabel are
// updated so the original baseline remains the long-term rollback target.
type Snapshot struct {
	SchemaVersion int `json:"schema_version"`

	TweakID   string `json:"tweak_id"`
	TweakName string `json:"tweak_name"`

	// OptionIndex is the option active when the snapshot was captured, or
	// OptionIndexCurrent for a capture of live (non-option) state.
	OptionIndex int    `json:"option_index"`
	OptionLabel string `json:"option_label"`

	CreatedAt time.Time `json:"created_at"`
	OSVersion string    `json:"os_version"`

	// Elevated records whether restore must route writes through the
	// elevation subsystem.
	Elevated bool `json:"elevated"`

	Registry []RegistryEntry `json:"registry,omitempty"`
	Services []ServiceEntry  `json:"services,omitempty"`
	Tasks    []TaskEntry     `json:"tasks,omitempty"`
}

// Empty reports whether the snapshot captured no resources at all.
func (s *Snapshot) Empty() bool {
	return len(s.Registry) == 0 && len(s.Services) == 0 && len(s.Tasks) == 0
}

// Validate checks the record's internal consistency. A registry entry
// claiming its value existed must carry the value; a restore would have
// nothing to write back otherwise.
func (s *Snapshot) Validate() error {
	for _, e := range s.Registry {
		if e.ValueExisted && e.Value == nil {
			return errors.Newf("registry entry %s: value recorded as existing but missing", e.Ref())
		}
	}
	return nil
}
