package grabber

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Registry maps grabber identifiers to factories. Built-in grabbers register
// at startup; discovery adds manifest-backed grabbers found on disk.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty grabber registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under the given identifier.
func (r *Registry) Register(id string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[id]; exists {
		return fmt.Errorf("grabber %s already registered", id)
	}
	if len(factory.Capabilities) == 0 {
		return fmt.Errorf("grabber %s reports no capabilities", id)
	}
	if factory.New == nil {
		return fmt.Errorf("grabber %s has no constructor", id)
	}

	r.factories[id] = factory
	return nil
}

// Lookup returns the factory registered under id.
func (r *Registry) Lookup(id string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[id]
	return factory, exists
}

// Identifiers returns all registered identifiers in lexicographic order.
func (r *Registry) Identifiers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Capabilities returns the static capability report for id. An identifier
// with no loadable grabber behind it is an error, but callers treat that as
// a per-grabber failure, never a fatal one.
func (r *Registry) Capabilities(id string) (CapabilitySet, error) {
	factory, exists := r.Lookup(id)
	if !exists {
		return nil, Unavailable(id, "grabber %s is not registered", id)
	}
	return factory.Capabilities, nil
}

// FilterByCapability keeps, in their given order, the identifiers whose
// grabbers report the capability. Identifiers that cannot be loaded are
// logged and dropped; the query as a whole never fails.
func (r *Registry) FilterByCapability(log hclog.Logger, ids []string, c Capability) []string {
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		caps, err := r.Capabilities(id)
		if err != nil {
			log.Warn("skipping unloadable grabber", "grabber", id, "error", err)
			continue
		}
		if caps.Has(c) {
			kept = append(kept, id)
		}
	}
	return kept
}
