package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// ReadOnlyRegistry is the surface exporters consume: iteration over every
// registry plus notification of new ones. Exporters drain it on their own
// schedule; nothing here blocks on their behalf.
type ReadOnlyRegistry interface {
	// Walk calls fn for every registry currently present.
	Walk(fn func(*Registry))

	// AddCreationObserver registers fn to be called for every registry
	// created after this point.
	AddCreationObserver(fn func(*Registry))
}

// Manager is the process-wide collection of metric registries. Groups are
// created on first use; every creation observer runs exactly once per group,
// before the creating Registry call returns. Removal deliberately does not
// notify observers: they learn about creation only.
//
// Construct one Manager per process and pass it explicitly to the subsystems
// that publish or export metrics.
type Manager struct {
	logger log.Logger

	mtx        sync.RWMutex
	registries map[string]*registryEntry

	omtx      sync.Mutex
	observers []func(*Registry)
}

// registryEntry delays registry construction into a sync.Once so that racing
// callers block until the single creation and observer round has finished.
// The pointer is atomic because iteration reads it without going through the
// Once.
type registryEntry struct {
	once sync.Once
	reg  atomic.Pointer[Registry]
}

var _ ReadOnlyRegistry = (*Manager)(nil)

// NewManager returns an empty Manager. Observer failures are reported
// through logger.
func NewManager(logger log.Logger) *Manager {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Manager{
		logger:     logger,
		registries: make(map[string]*registryEntry),
	}
}

// Registry returns the registry for the given group name, creating it when
// absent. On creation every observer is invoked with the new registry, in
// registration order, before Registry returns. Concurrent callers racing on
// a new name all receive the same registry, and creation plus notification
// happen exactly once.
//
// Observers must not call Registry for the same group name; doing so
// deadlocks on the in-flight creation.
func (m *Manager) Registry(group string) *Registry {
	m.mtx.RLock()
	e := m.registries[group]
	m.mtx.RUnlock()

	if e == nil {
		m.mtx.Lock()
		e = m.registries[group]
		if e == nil {
			e = &registryEntry{}
			m.registries[group] = e
		}
		m.mtx.Unlock()
	}

	e.once.Do(func() {
		reg := newRegistry(group)
		e.reg.Store(reg)
		m.notifyCreated(reg)
	})
	return e.reg.Load()
}

// Remove deletes the registry for the given group along with all its
// metrics. Held references to the registry or its metrics stay usable.
// Observers are not notified.
func (m *Manager) Remove(group string) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	delete(m.registries, group)
}

// AddCreationObserver implements ReadOnlyRegistry. Safe to call concurrently
// with Registry; in-flight notification rounds iterate a snapshot and do not
// see the new observer.
func (m *Manager) AddCreationObserver(fn func(*Registry)) {
	m.omtx.Lock()
	defer m.omtx.Unlock()
	m.observers = append(m.observers, fn)
}

// Walk implements ReadOnlyRegistry. It iterates a snapshot, so it is safe
// against concurrent creation and removal.
func (m *Manager) Walk(fn func(*Registry)) {
	for _, r := range m.Registries() {
		fn(r)
	}
}

// Registries returns a snapshot of the current registries.
func (m *Manager) Registries() []*Registry {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	rs := make([]*Registry, 0, len(m.registries))
	for _, e := range m.registries {
		if reg := e.reg.Load(); reg != nil {
			rs = append(rs, reg)
		}
	}
	return rs
}

func (m *Manager) notifyCreated(reg *Registry) {
	m.omtx.Lock()
	observers := append(([]func(*Registry))(nil), m.observers...)
	m.omtx.Unlock()

	for _, fn := range observers {
		m.notify(fn, reg)
	}
}

// notify runs a single observer, isolating its failure so that one broken
// observer affects neither the remaining observers nor the creation itself.
func (m *Manager) notify(fn func(*Registry), reg *Registry) {
	defer func() {
		if r := recover(); r != nil {
			level.Warn(m.logger).Log(
				"msg", "metric registry creation observer failed",
				"group", reg.Name(),
				"err", r,
			)
		}
	}()
	fn(reg)
}
