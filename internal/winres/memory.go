package winres

import (
	"strings"
	"sync"
)

// Memory is an in-memory implementation of all three accessor interfaces.
// It backs tests and dry-run planning. Failure hooks let tests inject
// errors for specific resources without a mocking framework, since the
// interesting scenarios are stateful (partial writes, rollback ordering).
type Memory struct {
	mu sync.Mutex

	values map[string]Value // canonical ref -> value
	keys   map[string]bool  // canonical "hive\key" -> exists
	svcs   map[string]ServiceStatus
	tasks  map[string]TaskState

	// WriteLog records every mutating registry call in order, for tests
	// asserting rollback ordering. Read-only operations are not logged.
	WriteLog []string

	// Failure hooks. When non-nil and returning a non-nil error, the
	// corresponding operation fails without mutating state.
	FailRegistryWrite  func(ref ValueRef) error
	FailRegistryDelete func(ref ValueRef) error
	FailRegistryRead   func(ref ValueRef) error
	FailServiceSet     func(name string) error
	FailServiceStart   func(name string) error
	FailServiceStop    func(name string) error
	FailTaskChange     func(ref TaskRef) error
}

// NewMemory creates an empty in-memory system.
func NewMemory() *Memory {
	return &Memory{
		values: make(map[string]Value),
		keys:   make(map[string]bool),
		svcs:   make(map[string]ServiceStatus),
		tasks:  make(map[string]TaskState),
	}
}

// Accessors returns the Memory wrapped as an accessor bundle.
func (m *Memory) Accessors() Accessors {
	return Accessors{Registry: m, Services: m, Tasks: m}
}

func keyCanonical(hive Hive, key string) string {
	return strings.ToLower(string(hive) + `\` + key)
}

// SetKey creates a registry key without any values.
func (m *Memory) SetKey(hive Hive, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[keyCanonical(hive, key)] = true
}

// SetValue seeds a registry value, creating its key.
func (m *Memory) SetValue(ref ValueRef, v Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[keyCanonical(ref.Hive, ref.Key)] = true
	m.values[ref.Canonical()] = v
}

// SetService seeds a service.
func (m *Memory) SetService(name string, status ServiceStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.svcs[strings.ToLower(name)] = status
}

// SetTask seeds a scheduled task.
func (m *Memory) SetTask(ref TaskRef, state TaskState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[ref.Canonical()] = state
}

// ReadValue implements Registry.
func (m *Memory) ReadValue(ref ValueRef) (Value, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailRegistryRead != nil {
		if err := m.FailRegistryRead(ref); err != nil {
			return Value{}, err
		}
	}
	v, ok := m.values[ref.Canonical()]
	if !ok {
		return Value{}, NotFoundError(ref.String())
	}
	return v, nil
}

// WriteValue implements Registry. Writing creates the key, as the real
// registry APIs do when asked to.
func (m *Memory) WriteValue(ref ValueRef, v Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailRegistryWrite != nil {
		if err := m.FailRegistryWrite(ref); err != nil {
			return err
		}
	}
	m.keys[keyCanonical(ref.Hive, ref.Key)] = true
	m.values[ref.Canonical()] = v
	m.WriteLog = append(m.WriteLog, "write "+ref.String())
	return nil
}

// DeleteValue implements Registry. Deleting a missing value is not an error.
func (m *Memory) DeleteValue(ref ValueRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailRegistryDelete != nil {
		if err := m.FailRegistryDelete(ref); err != nil {
			return err
		}
	}
	delete(m.values, ref.Canonical())
	m.WriteLog = append(m.WriteLog, "delete "+ref.String())
	return nil
}

// KeyExists implements Registry.
func (m *Memory) KeyExists(hive Hive, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keys[keyCanonical(hive, key)], nil
}

// Status implements Services.
func (m *Memory) Status(name string) (ServiceStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.svcs[strings.ToLower(name)]
	if !ok {
		return ServiceStatus{}, NotFoundError("service " + name)
	}
	return s, nil
}

// SetStartup implements Services.
func (m *Memory) SetStartup(name string, mode StartMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailServiceSet != nil {
		if err := m.FailServiceSet(name); err != nil {
			return err
		}
	}
	s, ok := m.svcs[strings.ToLower(name)]
	if !ok {
		return NotFoundError("service " + name)
	}
	s.StartMode = mode
	m.svcs[strings.ToLower(name)] = s
	return nil
}

// Start implements Services.
func (m *Memory) Start(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailServiceStart != nil {
		if err := m.FailServiceStart(name); err != nil {
			return err
		}
	}
	s, ok := m.svcs[strings.ToLower(name)]
	if !ok {
		return NotFoundError("service " + name)
	}
	s.Running = true
	m.svcs[strings.ToLower(name)] = s
	return nil
}

// Stop implements Services.
func (m *Memory) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailServiceStop != nil {
		if err := m.FailServiceStop(name); err != nil {
			return err
		}
	}
	s, ok := m.svcs[strings.ToLower(name)]
	if !ok {
		return NotFoundError("service " + name)
	}
	s.Running = false
	m.svcs[strings.ToLower(name)] = s
	return nil
}

// State implements Tasks. Missing tasks report TaskNotFound, not an error.
func (m *Memory) State(ref TaskRef) (TaskState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.tasks[ref.Canonical()]
	if !ok {
		return TaskNotFound, nil
	}
	return s, nil
}

// Enable implements Tasks.
func (m *Memory) Enable(ref TaskRef) error {
	return m.setTask(ref, TaskReady)
}

// Disable implements Tasks.
func (m *Memory) Disable(ref TaskRef) error {
	return m.setTask(ref, TaskDisabled)
}

func (m *Memory) setTask(ref TaskRef, state TaskState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailTaskChange != nil {
		if err := m.FailTaskChange(ref); err != nil {
			return err
		}
	}
	if _, ok := m.tasks[ref.Canonical()]; !ok {
		return NotFoundError("task " + ref.Path())
	}
	m.tasks[ref.Canonical()] = state
	return nil
}

// Delete implements Tasks.
func (m *Memory) Delete(ref TaskRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailTaskChange != nil {
		if err := m.FailTaskChange(ref); err != nil {
			return err
		}
	}
	if _, ok := m.tasks[ref.Canonical()]; !ok {
		return NotFoundError("task " + ref.Path())
	}
	delete(m.tasks, ref.Canonical())
	return nil
}
