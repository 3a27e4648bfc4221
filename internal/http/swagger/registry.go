package swagger

import "sync"

// HandleName is the well-known registry name of the running viewer.
const HandleName = "ui"

// Registry holds named viewer handles so that other code can reach the
// running viewer. It is written once at startup and read by request
// handlers.
type Registry struct {
	mu      sync.RWMutex
	viewers map[string]*Viewer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{viewers: make(map[string]*Viewer)}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Store registers v under name and returns the viewer it replaced, if any.
func (r *Registry) Store(name string, v *Viewer) *Viewer {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.viewers[name]
	r.viewers[name] = v
	return prev
}

// Lookup returns the viewer registered under name.
func (r *Registry) Lookup(name string) (*Viewer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.viewers[name]
	return v, ok
}
