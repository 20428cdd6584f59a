//go:build windows

package winres

import (
	"os/exec"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"
)

// NewSystem returns live accessors for the running Windows system.
func NewSystem() (Accessors, error) {
	return Accessors{
		Registry: &winRegistry{},
		Services: &winServices{},
		Tasks:    &winTasks{},
	}, nil
}

// hiveKey maps a Hive to its registry root.
func hiveKey(h Hive) (registry.Key, error) {
	switch h {
	case HiveLocalMachine:
		return registry.LOCAL_MACHINE, nil
	case HiveCurrentUser:
		return registry.CURRENT_USER, nil
	case HiveUsers:
		return registry.USERS, nil
	case HiveClassesRoot:
		return registry.CLASSES_ROOT, nil
	case HiveCurrentConfig:
		return registry.CURRENT_CONFIG, nil
	}
	return 0, errors.Newf("unknown hive %q", h)
}

// mapRegErr converts registry API errors to the shared taxonomy.
func mapRegErr(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, registry.ErrNotExist) || errors.Is(err, syscall.ERROR_FILE_NOT_FOUND) {
		return NotFoundError(resource)
	}
	if errors.Is(err, syscall.ERROR_ACCESS_DENIED) {
		return AccessDeniedError(resource)
	}
	return errors.Wrapf(err, "%s", resource)
}

type winRegistry struct{}

func (r *winRegistry) ReadValue(ref ValueRef) (Value, error) {
	root, err := hiveKey(ref.Hive)
	if err != nil {
		return Value{}, err
	}
	k, err := registry.OpenKey(root, ref.Key, registry.QUERY_VALUE)
	if err != nil {
		return Value{}, mapRegErr(err, ref.String())
	}
	defer k.Close()

	_, valType, err := k.GetValue(ref.Name, nil)
	if err != nil {
		return Value{}, mapRegErr(err, ref.String())
	}

	switch valType {
	case registry.SZ:
		s, _, err := k.GetStringValue(ref.Name)
		if err != nil {
			return Value{}, mapRegErr(err, ref.String())
		}
		return StringValue(s), nil
	case registry.EXPAND_SZ:
		s, _, err := k.GetStringValue(ref.Name)
		if err != nil {
			return Value{}, mapRegErr(err, ref.String())
		}
		return ExpandStringValue(s), nil
	case registry.MULTI_SZ:
		ss, _, err := k.GetStringsValue(ref.Name)
		if err != nil {
			return Value{}, mapRegErr(err, ref.String())
		}
		return MultiStringValue(ss...), nil
	case registry.DWORD:
		n, _, err := k.GetIntegerValue(ref.Name)
		if err != nil {
			return Value{}, mapRegErr(err, ref.String())
		}
		return DwordValue(uint32(n)), nil
	case registry.QWORD:
		n, _, err := k.GetIntegerValue(ref.Name)
		if err != nil {
			return Value{}, mapRegErr(err, ref.String())
		}
		return QwordValue(n), nil
	default:
		b, _, err := k.GetBinaryValue(ref.Name)
		if err != nil {
			return Value{}, mapRegErr(err, ref.String())
		}
		return BinaryValue(b), nil
	}
}

func (r *winRegistry) WriteValue(ref ValueRef, v Value) error {
	root, err := hiveKey(ref.Hive)
	if err != nil {
		return err
	}
	k, _, err := registry.CreateKey(root, ref.Key, registry.SET_VALUE)
	if err != nil {
		return mapRegErr(err, ref.String())
	}
	defer k.Close()

	switch v.Kind {
	case KindString:
		err = k.SetStringValue(ref.Name, v.Str)
	case KindExpandString:
		err = k.SetExpandStringValue(ref.Name, v.Str)
	case KindMultiString:
		err = k.SetStringsValue(ref.Name, v.Strs)
	case KindDword:
		err = k.SetDWordValue(ref.Name, v.Dword)
	case KindQword:
		err = k.SetQWordValue(ref.Name, v.Qword)
	case KindBinary:
		err = k.SetBinaryValue(ref.Name, v.Binary)
	default:
		return errors.Newf("unknown value kind %q", v.Kind)
	}
	return mapRegErr(err, ref.String())
}

func (r *winRegistry) DeleteValue(ref ValueRef) error {
	root, err := hiveKey(ref.Hive)
	if err != nil {
		return err
	}
	k, err := registry.OpenKey(root, ref.Key, registry.SET_VALUE)
	if err != nil {
		if errors.Is(mapRegErr(err, ""), ErrNotFound) {
			// Key absent means the value is already gone.
			return nil
		}
		return mapRegErr(err, ref.String())
	}
	defer k.Close()

	err = k.DeleteValue(ref.Name)
	if err != nil && errors.Is(mapRegErr(err, ""), ErrNotFound) {
		return nil
	}
	return mapRegErr(err, ref.String())
}

func (r *winRegistry) KeyExists(hive Hive, key string) (bool, error) {
	root, err := hiveKey(hive)
	if err != nil {
		return false, err
	}
	k, err := registry.OpenKey(root, key, registry.QUERY_VALUE)
	if err != nil {
		mapped := mapRegErr(err, string(hive)+`\`+key)
		if errors.Is(mapped, ErrNotFound) {
			return false, nil
		}
		return false, mapped
	}
	k.Close()
	return true, nil
}

// startTypeOf maps service manager start types to StartMode.
func startTypeOf(t uint32) StartMode {
	switch t {
	case windows.SERVICE_BOOT_START:
		return StartBoot
	case windows.SERVICE_SYSTEM_START:
		return StartSystem
	case windows.SERVICE_AUTO_START:
		return StartAutomatic
	case windows.SERVICE_DEMAND_START:
		return StartManual
	default:
		return StartDisabled
	}
}

// startTypeFor maps StartMode to a service manager start type.
func startTypeFor(m StartMode) uint32 {
	switch m {
	case StartBoot:
		return windows.SERVICE_BOOT_START
	case StartSystem:
		return windows.SERVICE_SYSTEM_START
	case StartAutomatic:
		return windows.SERVICE_AUTO_START
	case StartManual:
		return windows.SERVICE_DEMAND_START
	default:
		return windows.SERVICE_DISABLED
	}
}

func mapSvcErr(err error, name string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, windows.ERROR_SERVICE_DOES_NOT_EXIST) {
		return NotFoundError("service " + name)
	}
	if errors.Is(err, windows.ERROR_ACCESS_DENIED) {
		return AccessDeniedError("service " + name)
	}
	return errors.Wrapf(err, "service %s", name)
}

type winServices struct{}

func (s *winServices) withService(name string, fn func(*mgr.Service) error) error {
	m, err := mgr.Connect()
	if err != nil {
		return mapSvcErr(err, name)
	}
	defer m.Disconnect()

	svcHandle, err := m.OpenService(name)
	if err != nil {
		return mapSvcErr(err, name)
	}
	defer svcHandle.Close()

	return fn(svcHandle)
}

func (s *winServices) Status(name string) (ServiceStatus, error) {
	var out ServiceStatus
	err := s.withService(name, func(h *mgr.Service) error {
		cfg, err := h.Config()
		if err != nil {
			return mapSvcErr(err, name)
		}
		st, err := h.Query()
		if err != nil {
			return mapSvcErr(err, name)
		}
		out = ServiceStatus{
			StartMode: startTypeOf(cfg.StartType),
			Running:   st.State == svc.Running,
		}
		return nil
	})
	return out, err
}

func (s *winServices) SetStartup(name string, mode StartMode) error {
	return s.withService(name, func(h *mgr.Service) error {
		cfg, err := h.Config()
		if err != nil {
			return mapSvcErr(err, name)
		}
		cfg.StartType = startTypeFor(mode)
		return mapSvcErr(h.UpdateConfig(cfg), name)
	})
}

func (s *winServices) Start(name string) error {
	return s.withService(name, func(h *mgr.Service) error {
		err := h.Start()
		if errors.Is(err, windows.ERROR_SERVICE_ALREADY_RUNNING) {
			return nil
		}
		return mapSvcErr(err, name)
	})
}

func (s *winServices) Stop(name string) error {
	return s.withService(name, func(h *mgr.Service) error {
		_, err := h.Control(svc.Stop)
		if errors.Is(err, windows.ERROR_SERVICE_NOT_ACTIVE) {
			return nil
		}
		return mapSvcErr(err, name)
	})
}

// winTasks shells out to schtasks.exe; the task scheduler has no
// golang.org/x/sys binding.
type winTasks struct{}

func (t *winTasks) State(ref TaskRef) (TaskState, error) {
	out, err := exec.Command("schtasks", "/Query", "/TN", ref.Path(), "/FO", "LIST").CombinedOutput()
	if err != nil {
		if strings.Contains(string(out), "cannot find") {
			return TaskNotFound, nil
		}
		return TaskUnknown, errors.Wrapf(err, "querying task %s", ref.Path())
	}

	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "Status:") {
			continue
		}
		switch strings.TrimSpace(strings.TrimPrefix(line, "Status:")) {
		case "Ready":
			return TaskReady, nil
		case "Running":
			return TaskRunning, nil
		case "Disabled":
			return TaskDisabled, nil
		}
	}
	return TaskUnknown, nil
}

func (t *winTasks) change(ref TaskRef, flag string) error {
	out, err := exec.Command("schtasks", "/Change", "/TN", ref.Path(), flag).CombinedOutput()
	if err != nil {
		if strings.Contains(string(out), "cannot find") {
			return NotFoundError("task " + ref.Path())
		}
		if strings.Contains(string(out), "Access is denied") {
			return AccessDeniedError("task " + ref.Path())
		}
		return errors.Wrapf(err, "changing task %s", ref.Path())
	}
	return nil
}

func (t *winTasks) Enable(ref TaskRef) error {
	return t.change(ref, "/ENABLE")
}

func (t *winTasks) Disable(ref TaskRef) error {
	return t.change(ref, "/DISABLE")
}

func (t *winTasks) Delete(ref TaskRef) error {
	out, err := exec.Command("schtasks", "/Delete", "/TN", ref.Path(), "/F").CombinedOutput()
	if err != nil {
		if strings.Contains(string(out), "cannot find") {
			return NotFoundError("task " + ref.Path())
		}
		return errors.Wrapf(err, "deleting task %s", ref.Path())
	}
	return nil
}
