package engine

import (
	"log/slog"
	"sync"

	"github.com/tweakctl/tweakctl/internal/elevate"
	"github.com/tweakctl/tweakctl/internal/logging"
	"github.com/tweakctl/tweakctl/internal/snapshot"
	"github.com/tweakctl/tweakctl/internal/winres"
)

// Engine is the snapshot and rollback core. It captures pre-change state,
// detects which option a tweak is currently in, applies option changes
// with rollback on failure, and restores persisted snapshots.
//
// Apply and Revert serialize per tweak identifier; state detection across
// different tweaks is read-only and may run concurrently.
type Engine struct {
	direct   winres.Accessors
	elevated *winres.Accessors
	store    *snapshot.Store
	log      *slog.Logger
	osVer    string
	hooks    elevate.Runner
	elevHook elevate.Runner

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithOSVersion sets the OS version tag used to filter change applicability.
func WithOSVersion(v string) Option {
	return func(e *Engine) {
		if v != "" {
			e.osVer = v
		}
	}
}

// WithElevated provides the accessor bundle used for writes when a
// snapshot or tweak requires elevation. Without it, elevated tweaks fall
// back to the direct accessors.
func WithElevated(acc winres.Accessors) Option {
	return func(e *Engine) {
		e.elevated = &acc
	}
}

// WithHookRunner sets the runner used for pre/post command hooks.
func WithHookRunner(r elevate.Runner) Option {
	return func(e *Engine) {
		if r != nil {
			e.hooks = r
		}
	}
}

// WithElevatedHookRunner sets the runner used for hooks of tweaks flagged
// as requiring elevation. Defaults to the plain hook runner.
func WithElevatedHookRunner(r elevate.Runner) Option {
	return func(e *Engine) {
		if r != nil {
			e.elevHook = r
		}
	}
}

// New creates an Engine over the given snapshot store and direct accessors.
func New(store *snapshot.Store, direct winres.Accessors, opts ...Option) *Engine {
	e := &Engine{
		direct: direct,
		store:  store,
		log:    logging.NewDiscard(),
		osVer:  "w11",
		hooks:  elevate.NewShell(),
		locks:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.elevHook == nil {
		e.elevHook = e.hooks
	}
	return e
}

// Store exposes the snapshot store for read-only callers (listing).
func (e *Engine) Store() *snapshot.Store {
	return e.store
}

// OSVersion returns the configured OS version tag.
func (e *Engine) OSVersion() string {
	return e.osVer
}

// writerFor selects the accessor bundle used for mutation: the elevated
// bundle for elevated snapshots/tweaks when one is configured, the direct
// bundle otherwise. Reads always use the direct bundle.
func (e *Engine) writerFor(elevated bool) winres.Accessors {
	if elevated && e.elevated != nil {
		return *e.elevated
	}
	return e.direct
}

// lockFor returns the per-tweak mutex enforcing the single-writer
// discipline for apply and revert.
func (e *Engine) lockFor(tweakID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[tweakID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[tweakID] = l
	}
	return l
}
