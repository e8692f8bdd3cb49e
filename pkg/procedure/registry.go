package procedure

import (
	"fmt"
	"sort"
	"sync"
)

// Factory constructs a fresh procedure instance with default parameter
// values.
type Factory func() Procedure

// Registry maps stable procedure identifiers ("module.Class") to factories.
// It replaces dynamic class loading: reconstruction of a stored file is a
// pure lookup with a defined not-found branch. Registries are safe for
// concurrent use; registration normally happens at process startup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds an identifier to a factory. Re-registering an identifier
// is an error so two procedures cannot silently shadow each other.
func (r *Registry) Register(id string, factory Factory) error {
	if id == "" {
		return fmt.Errorf("procedure: registry identifier required")
	}
	if factory == nil {
		return fmt.Errorf("procedure: factory for %s required", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[id]; exists {
		return fmt.Errorf("procedure: %s already registered", id)
	}
	r.factories[id] = factory
	return nil
}

// MustRegister is Register for init-time declaration sites.
func (r *Registry) MustRegister(id string, factory Factory) {
	if err := r.Register(id, factory); err != nil {
		panic(err)
	}
}

// Resolve returns the factory bound to the identifier.
func (r *Registry) Resolve(id string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[id]
	return f, ok
}

// Identifiers returns the registered identifiers in sorted order.
func (r *Registry) Identifiers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for id := range r.factories {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
