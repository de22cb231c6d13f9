package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry holds named adapters and resolves lookups by provider name.
// Lookup is case-insensitive. Registering a name twice replaces the previous
// adapter (last write wins), which is how tests install doubles.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates a registry pre-populated with the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds or replaces the adapter under its own name.
func (r *Registry) Register(adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.adapters[strings.ToLower(adapter.Name())] = adapter
}

// Get returns the adapter registered under name, or ErrProviderUnsupported.
func (r *Registry) Get(name string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderUnsupported, name)
	}
	return a, nil
}

// List returns the registered provider names in lexical order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
