package elevate

import (
	"context"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	tweakerrors "github.com/tweakctl/tweakctl/internal/errors"
	"github.com/tweakctl/tweakctl/internal/winres"
)

// Accessors builds a winres accessor bundle whose writes run through the
// elevation runner while reads delegate to the direct accessors. Only
// mutation needs the privileged identity; reads under the same identity
// would detect the same state either way, which keeps the two paths
// observably identical.
func Accessors(direct winres.Accessors, run Runner) winres.Accessors {
	return winres.Accessors{
		Registry: &Registry{Reader: direct.Registry, Run: run},
		Services: &Services{Reader: direct.Services, Run: run},
		Tasks:    &Tasks{Reader: direct.Tasks, Run: run},
	}
}

// run executes a command line and maps non-zero exit codes onto the
// shared failure taxonomy.
func run(r Runner, commandLine, resource string) error {
	code, err := r.RunElevated(context.Background(), commandLine)
	if err != nil {
		return errors.Wrapf(err, "%s", resource)
	}
	switch code {
	case 0:
		return nil
	case 5:
		return errors.Wrapf(tweakerrors.ErrAccessDenied, "%s (exit code 5)", resource)
	default:
		return errors.Wrapf(tweakerrors.ErrOperationFailed, "%s (exit code %d)", resource, code)
	}
}

// Registry satisfies winres.Registry by emitting reg.exe command lines
// for writes.
type Registry struct {
	Reader winres.Registry
	Run    Runner
}

// ReadValue delegates to the direct accessor.
func (r *Registry) ReadValue(ref winres.ValueRef) (winres.Value, error) {
	return r.Reader.ReadValue(ref)
}

// KeyExists delegates to the direct accessor.
func (r *Registry) KeyExists(hive winres.Hive, key string) (bool, error) {
	return r.Reader.KeyExists(hive, key)
}

// WriteValue implements winres.Registry via `reg add`.
func (r *Registry) WriteValue(ref winres.ValueRef, v winres.Value) error {
	regType, data, err := regData(v)
	if err != nil {
		return errors.Wrapf(err, "%s", ref)
	}
	args := []string{"reg", "add", string(ref.Hive) + `\` + ref.Key}
	if ref.Name == "" {
		args = append(args, "/ve")
	} else {
		args = append(args, "/v", ref.Name)
	}
	args = append(args, "/t", regType, "/d", data, "/f")
	return run(r.Run, joinArgs(args), ref.String())
}

// DeleteValue implements winres.Registry via `reg delete`.
func (r *Registry) DeleteValue(ref winres.ValueRef) error {
	// A value that is already gone satisfies the delete.
	if _, err := r.Reader.ReadValue(ref); errors.Is(err, winres.ErrNotFound) {
		return nil
	}
	args := []string{"reg", "delete", string(ref.Hive) + `\` + ref.Key}
	if ref.Name == "" {
		args = append(args, "/ve")
	} else {
		args = append(args, "/v", ref.Name)
	}
	args = append(args, "/f")
	return run(r.Run, joinArgs(args), ref.String())
}

// regData renders a typed value as reg.exe type and data arguments.
func regData(v winres.Value) (regType, data string, err error) {
	switch v.Kind {
	case winres.KindString:
		return "REG_SZ", v.Str, nil
	case winres.KindExpandString:
		return "REG_EXPAND_SZ", v.Str, nil
	case winres.KindMultiString:
		// reg add separates multi_sz elements with \0 in the data string.
		return "REG_MULTI_SZ", strings.Join(v.Strs, `\0`), nil
	case winres.KindDword:
		return "REG_DWORD", strconv.FormatUint(uint64(v.Dword), 10), nil
	case winres.KindQword:
		return "REG_QWORD", strconv.FormatUint(v.Qword, 10), nil
	case winres.KindBinary:
		return "REG_BINARY", hex.EncodeToString(v.Binary), nil
	}
	return "", "", errors.Newf("unknown value kind %q", v.Kind)
}

// Services satisfies winres.Services by emitting sc.exe command lines
// for writes.
type Services struct {
	Reader winres.Services
	Run    Runner
}

// Status delegates to the direct accessor.
func (s *Services) Status(name string) (winres.ServiceStatus, error) {
	return s.Reader.Status(name)
}

// scStartFor maps a StartMode to sc config's start= argument.
func scStartFor(mode winres.StartMode) string {
	switch mode {
	case winres.StartBoot:
		return "boot"
	case winres.StartSystem:
		return "system"
	case winres.StartAutomatic:
		return "auto"
	case winres.StartManual:
		return "demand"
	default:
		return "disabled"
	}
}

// SetStartup implements winres.Services via `sc config`.
func (s *Services) SetStartup(name string, mode winres.StartMode) error {
	// sc requires "start= value" with the space after the equals sign.
	line := "sc config " + quoteArg(name) + " start= " + scStartFor(mode)
	return run(s.Run, line, "service "+name)
}

// Start implements winres.Services via `sc start`.
func (s *Services) Start(name string) error {
	err := run(s.Run, "sc start "+quoteArg(name), "service "+name)
	// 1056: an instance is already running.
	if err != nil && strings.Contains(err.Error(), "exit code 1056") {
		return nil
	}
	return err
}

// Stop implements winres.Services via `sc stop`.
func (s *Services) Stop(name string) error {
	err := run(s.Run, "sc stop "+quoteArg(name), "service "+name)
	// 1062: the service has not been started.
	if err != nil && strings.Contains(err.Error(), "exit code 1062") {
		return nil
	}
	return err
}

// Tasks satisfies winres.Tasks by emitting schtasks.exe command lines
// for writes.
type Tasks struct {
	Reader winres.Tasks
	Run    Runner
}

// State delegates to the direct accessor.
func (t *Tasks) State(ref winres.TaskRef) (winres.TaskState, error) {
	return t.Reader.State(ref)
}

// Enable implements winres.Tasks via `schtasks /Change /ENABLE`.
func (t *Tasks) Enable(ref winres.TaskRef) error {
	line := joinArgs([]string{"schtasks", "/Change", "/TN", ref.Path(), "/ENABLE"})
	return run(t.Run, line, "task "+ref.Path())
}

// Disable implements winres.Tasks via `schtasks /Change /DISABLE`.
func (t *Tasks) Disable(ref winres.TaskRef) error {
	line := joinArgs([]string{"schtasks", "/Change", "/TN", ref.Path(), "/DISABLE"})
	return run(t.Run, line, "task "+ref.Path())
}

// Delete implements winres.Tasks via `schtasks /Delete`.
func (t *Tasks) Delete(ref winres.TaskRef) error {
	line := joinArgs([]string{"schtasks", "/Delete", "/TN", ref.Path(), "/F"})
	return run(t.Run, line, "task "+ref.Path())
}
