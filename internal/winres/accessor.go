package winres

import (
	"github.com/cockroachdb/errors"

	tweakerrors "github.com/tweakctl/tweakctl/internal/errors"
)

// Sentinel re-exports so accessor callers can test outcomes without
// importing the errors package separately.
var (
	// ErrNotFound indicates the addressed key, value, service, or task
	// does not exist. Not-found is a valid outcome for most callers.
	ErrNotFound = tweakerrors.ErrNotFound

	// ErrAccessDenied indicates the OS rejected the operation for lack of
	// privilege.
	ErrAccessDenied = tweakerrors.ErrAccessDenied
)

// NotFoundError wraps ErrNotFound with the identity of the missing resource.
func NotFoundError(resource string) error {
	return errors.Wrapf(ErrNotFound, "%s", resource)
}

// AccessDeniedError wraps ErrAccessDenied with the identity of the resource.
func AccessDeniedError(resource string) error {
	return errors.Wrapf(ErrAccessDenied, "%s", resource)
}

// Registry provides typed access to registry values.
//
// ReadValue returns ErrNotFound when either the key or the value is absent;
// use KeyExists to distinguish the two. Implementations must not create
// keys on read.
type Registry interface {
	ReadValue(ref ValueRef) (Value, error)
	WriteValue(ref ValueRef, v Value) error
	DeleteValue(ref ValueRef) error
	KeyExists(hive Hive, key string) (bool, error)
}

// Services provides access to service startup configuration and run state.
//
// Status returns ErrNotFound for services that are not installed.
type Services interface {
	Status(name string) (ServiceStatus, error)
	SetStartup(name string, mode StartMode) error
	Start(name string) error
	Stop(name string) error
}

// Tasks provides access to scheduled task enablement.
//
// State reports TaskNotFound (with a nil error) for tasks that do not
// exist; errors are reserved for scheduler query failures.
type Tasks interface {
	State(ref TaskRef) (TaskState, error)
	Enable(ref TaskRef) error
	Disable(ref TaskRef) error
	Delete(ref TaskRef) error
}

// Accessors bundles the three resource classes a tweak can touch.
type Accessors struct {
	Registry Registry
	Services Services
	Tasks    Tasks
}
