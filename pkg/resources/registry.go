package resources

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps resource names and aliases to kinds
type Registry struct {
	kinds map[string]Kind
	mutex sync.RWMutex
}

// NewRegistry creates a registry holding the given kinds
func NewRegistry(kinds ...Kind) *Registry {
	r := &Registry{kinds: make(map[string]Kind)}
	for _, k := range kinds {
		r.Register(k)
	}
	return r
}

// Register makes a kind resolvable by its plural resource, kind name and aliases
func (r *Registry) Register(k Kind) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, key := range append([]string{k.Resource, k.Name, k.Short}, k.Aliases...) {
		r.kinds[strings.ToLower(key)] = k
	}
}

// Lookup resolves a user supplied name, case-insensitively
func (r *Registry) Lookup(name string) (Kind, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	k, exists := r.kinds[strings.ToLower(strings.TrimSpace(name))]
	if !exists {
		return Kind{}, fmt.Errorf("unknown resource kind %q", name)
	}
	return k, nil
}

// Names returns the plural resource names of all registered kinds, sorted
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	seen := make(map[string]bool)
	var names []string
	for _, k := range r.kinds {
		if seen[k.Resource] {
			continue
		}
		seen[k.Resource] = true
		names = append(names, k.Resource)
	}
	sort.Strings(names)
	return names
}

// Default registry with every kind the simulator serves
var defaultRegistry = NewRegistry(append(SimulatorKinds(), Namespace)...)

// Lookup resolves a name in the default registry
func Lookup(name string) (Kind, error) {
	return defaultRegistry.Lookup(name)
}

// Names returns the resource names known to the default registry
func Names() []string {
	return defaultRegistry.Names()
}
