package health

import "sync"

// Registry is the single source of truth for the latest per-service health.
// Records are stored by value; Get and Snapshot return deep copies so
// callers never hold a reference into live state.
type Registry struct {
	mu       sync.RWMutex
	services map[string]ServiceHealth
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{services: make(map[string]ServiceHealth)}
}

// Update overwrites the record for a service.
func (r *Registry) Update(h ServiceHealth) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[h.Name] = h.clone()
}

// Get returns a copy of the record for a service. Unknown services report
// Status: unknown and found=false.
func (r *Registry) Get(name string) (ServiceHealth, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.services[name]
	if !ok {
		return ServiceHealth{Name: name, Status: StatusUnknown}, false
	}
	return h.clone(), true
}

// Snapshot returns a deep copy of all records.
func (r *Registry) Snapshot() map[string]ServiceHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]ServiceHealth, len(r.services))
	for name, h := range r.services {
		out[name] = h.clone()
	}
	return out
}

// Len returns the number of tracked services.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.services)
}
