package winres

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
)

// Hive identifies a registry root key.
type Hive string

// Registry hives addressable by tweaks.
const (
	HiveLocalMachine  Hive = "HKLM"
	HiveCurrentUser   Hive = "HKCU"
	HiveUsers         Hive = "HKU"
	HiveClassesRoot   Hive = "HKCR"
	HiveCurrentConfig Hive = "HKCC"
)

// KnownHives lists every addressable hive, in display order.
var KnownHives = []Hive{
	HiveLocalMachine,
	HiveCurrentUser,
	HiveUsers,
	HiveClassesRoot,
	HiveCurrentConfig,
}

// ValidHive reports whether h names a known registry hive.
func ValidHive(h Hive) bool {
	return slices.Contains(KnownHives, h)
}

// ValueKind identifies a registry value type.
type ValueKind string

// Registry value kinds supported by tweaks and snapshots.
const (
	KindString       ValueKind = "sz"
	KindExpandString ValueKind = "expand_sz"
	KindMultiString  ValueKind = "multi_sz"
	KindDword        ValueKind = "dword"
	KindQword        ValueKind = "qword"
	KindBinary       ValueKind = "binary"
)

// ValidKind reports whether k names a supported registry value kind.
func ValidKind(k ValueKind) bool {
	switch k {
	case KindString, KindExpandString, KindMultiString, KindDword, KindQword, KindBinary:
		return true
	}
	return false
}

// Value is a typed registry value. Exactly one of the data fields is
// meaningful, selected by Kind. The split representation keeps JSON
// round-trips lossless, which an `any`-typed field would not.
type Value struct {
	Kind   ValueKind `json:"kind"`
	Str    string    `json:"str,omitempty"`
	Strs   []string  `json:"strs,omitempty"`
	Dword  uint32    `json:"dword,omitempty"`
	Qword  uint64    `json:"qword,omitempty"`
	Binary []byte    `json:"binary,omitempty"`
}

// DwordValue builds a REG_DWORD value.
func DwordValue(v uint32) Value {
	return Value{Kind: KindDword, Dword: v}
}

// QwordValue builds a REG_QWORD value.
func QwordValue(v uint64) Value {
	return Value{Kind: KindQword, Qword: v}
}

// StringValue builds a REG_SZ value.
func StringValue(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// ExpandStringValue builds a REG_EXPAND_SZ value.
func ExpandStringValue(s string) Value {
	return Value{Kind: KindExpandString, Str: s}
}

// MultiStringValue builds a REG_MULTI_SZ value.
func MultiStringValue(s ...string) Value {
	return Value{Kind: KindMultiString, Strs: s}
}

// BinaryValue builds a REG_BINARY value.
func BinaryValue(b []byte) Value {
	return Value{Kind: KindBinary, Binary: b}
}

// Equal reports whether two values have the same kind and data.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindString, KindExpandString:
		return v.Str == o.Str
	case KindMultiString:
		return slices.Equal(v.Strs, o.Strs)
	case KindDword:
		return v.Dword == o.Dword
	case KindQword:
		return v.Qword == o.Qword
	case KindBinary:
		return bytes.Equal(v.Binary, o.Binary)
	}
	return false
}

// String renders the value for logs and failure reports.
func (v Value) String() string {
	switch v.Kind {
	case KindString, KindExpandString:
		return fmt.Sprintf("%s(%q)", v.Kind, v.Str)
	case KindMultiString:
		return fmt.Sprintf("%s(%q)", v.Kind, strings.Join(v.Strs, ","))
	case KindDword:
		return fmt.Sprintf("%s(%d)", v.Kind, v.Dword)
	case KindQword:
		return fmt.Sprintf("%s(%d)", v.Kind, v.Qword)
	case KindBinary:
		return fmt.Sprintf("%s(%s)", v.Kind, hex.EncodeToString(v.Binary))
	}
	return string(v.Kind)
}

// ValueRef identifies a registry value: hive, key path, value name.
// An empty Name addresses the key's default value.
type ValueRef struct {
	Hive Hive   `json:"hive"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// String renders the reference in the familiar regedit form.
func (r ValueRef) String() string {
	if r.Name == "" {
		return fmt.Sprintf(`%s\%s\(Default)`, r.Hive, r.Key)
	}
	return fmt.Sprintf(`%s\%s\%s`, r.Hive, r.Key, r.Name)
}

// Canonical returns a case-insensitive identity string for deduplication.
// Registry paths and value names are case-insensitive on Windows.
func (r ValueRef) Canonical() string {
	return strings.ToLower(string(r.Hive) + `\` + r.Key + `\` + r.Name)
}

// StartMode is a service startup configuration.
type StartMode string

// Service startup modes.
const (
	StartBoot      StartMode = "boot"
	StartSystem    StartMode = "system"
	StartAutomatic StartMode = "automatic"
	StartManual    StartMode = "manual"
	StartDisabled  StartMode = "disabled"
)

// ValidStartMode reports whether m names a known startup mode.
func ValidStartMode(m StartMode) bool {
	switch m {
	case StartBoot, StartSystem, StartAutomatic, StartManual, StartDisabled:
		return true
	}
	return false
}

// ServiceStatus is a service's startup configuration and running state.
type ServiceStatus struct {
	StartMode StartMode `json:"start_mode"`
	Running   bool      `json:"running"`
}

// TaskState is a scheduled task's state as reported by the scheduler.
type TaskState string

// Scheduled task states. Ready and Running are equivalent for matching
// purposes; both mean "the task is enabled".
const (
	TaskReady    TaskState = "Ready"
	TaskRunning  TaskState = "Running"
	TaskDisabled TaskState = "Disabled"
	TaskNotFound TaskState = "NotFound"
	TaskUnknown  TaskState = "Unknown"
)

// Enabled reports whether the state counts as "enabled" (Ready or Running).
func (s TaskState) Enabled() bool {
	return s == TaskReady || s == TaskRunning
}

// TaskRef identifies a scheduled task by folder path and name.
type TaskRef struct {
	Folder string `json:"folder"`
	Name   string `json:"name"`
}

// Path returns the full scheduler path (folder + name) for the task.
func (r TaskRef) Path() string {
	folder := strings.TrimSuffix(r.Folder, `\`)
	if folder == "" {
		folder = `\`
	}
	if strings.HasSuffix(folder, `\`) {
		return folder + r.Name
	}
	return folder + `\` + r.Name
}

// Canonical returns a case-insensitive identity string for deduplication.
func (r TaskRef) Canonical() string {
	return strings.ToLower(r.Path())
}
