package manager

import (
	"fmt"
	"sync"
)

// Registry holds the constructed managers in a fixed, deterministic order.
// Ordering matters: a later manager's self-update may depend on earlier
// package state, and report rendering should be stable for diffing between
// runs.
type Registry struct {
	managers map[string]Manager
	order    []string
	enabled  map[string]bool
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		managers: make(map[string]Manager),
		enabled:  make(map[string]bool),
	}
}

// Register adds a manager to the registry in declaration order. An id may
// register at most once.
func (r *Registry) Register(mgr Manager, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := mgr.Name()
	if _, ok := r.managers[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}

	r.managers[name] = mgr
	r.order = append(r.order, name)
	r.enabled[name] = enabled
	return nil
}

// Get returns a manager by id. Referencing an unknown id is surfaced to the
// caller, never silently ignored.
func (r *Registry) Get(name string) (Manager, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mgr, ok := r.managers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return mgr, nil
}

// Enabled reports whether the named manager is enabled. Unknown ids report
// false.
func (r *Registry) Enabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled[name]
}

// Order returns the registration order of all manager ids.
func (r *Registry) Order() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// EnabledManagers returns the enabled managers in registration order.
func (r *Registry) EnabledManagers() []Manager {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Manager
	for _, name := range r.order {
		if r.enabled[name] {
			out = append(out, r.managers[name])
		}
	}
	return out
}

// Select resolves a set of manager ids in registration order. An empty filter
// selects every enabled manager; naming a disabled manager selects it
// explicitly; naming an unknown manager returns ErrNotFound.
func (r *Registry) Select(names []string) ([]Manager, error) {
	if len(names) == 0 {
		return r.EnabledManagers(), nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	requested := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := r.managers[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		requested[name] = true
	}

	var out []Manager
	for _, name := range r.order {
		if requested[name] {
			out = append(out, r.managers[name])
		}
	}
	return out, nil
}

// List returns the ListManagers projection for every registered manager, in
// registration order.
func (r *Registry) List() []ManagerStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ManagerStatus, 0, len(r.order))
	for _, name := range r.order {
		mgr := r.managers[name]
		out = append(out, ManagerStatus{
			Name:        name,
			DisplayName: mgr.DisplayName(),
			Available:   mgr.IsAvailable(),
			Enabled:     r.enabled[name],
		})
	}
	return out
}
