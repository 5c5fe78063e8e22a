package provider

import (
	"errors"
	"fmt"
	"sync"

	"quillstream/internal/config"
)

// ErrUnknownProvider indicates no adapter is registered under the requested id.
var ErrUnknownProvider = errors.New("provider not configured")

// Registry maps provider ids to adapters. It is populated once at startup.
type Registry struct {
	mu       sync.RWMutex
	adapters map[config.ProviderID]Adapter
}

// NewRegistry constructs an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[config.ProviderID]Adapter),
	}
}

// Register adds an adapter. Registering the same id twice is an error.
func (r *Registry) Register(a Adapter) error {
	if a == nil {
		return errors.New("adapter must not be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[a.ID()]; exists {
		return fmt.Errorf("provider %q already registered", a.ID())
	}
	r.adapters[a.ID()] = a
	return nil
}

// Lookup returns the adapter for id.
func (r *Registry) Lookup(id config.ProviderID) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, id)
	}
	return a, nil
}

// IDs lists registered providers in declaration order.
func (r *Registry) IDs() []config.ProviderID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]config.ProviderID, 0, len(r.adapters))
	for _, id := range config.ProviderIDs {
		if _, ok := r.adapters[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
