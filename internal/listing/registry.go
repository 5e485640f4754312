package listing

import (
	"sync"

	"froid-storefront/internal/model"
)

// Registry tracks the open listing view of each session. A session has at
// most one active view; attaching a new one closes the previous view so
// its late responses are dropped.
type Registry struct {
	mu    sync.Mutex
	views map[string]*View
}

func NewRegistry() *Registry {
	return &Registry{views: make(map[string]*View)}
}

// Attach makes v the active view for key.
func (r *Registry) Attach(key string, v *View) {
	r.mu.Lock()
	prev := r.views[key]
	r.views[key] = v
	r.mu.Unlock()

	if prev != nil && prev != v {
		prev.Close()
	}
}

// Get returns the active view for key.
func (r *Registry) Get(key string) (*View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.views[key]
	if !ok || v.Closed() {
		return nil, model.ErrListingNotActive
	}
	return v, nil
}

// Release closes v and forgets it if it is still the active view for
// key. A newer view attached meanwhile is left alone.
func (r *Registry) Release(key string, v *View) {
	r.mu.Lock()
	if r.views[key] == v {
		delete(r.views, key)
	}
	r.mu.Unlock()

	v.Close()
}

// CloseAll closes every view. Used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	views := r.views
	r.views = make(map[string]*View)
	r.mu.Unlock()

	for _, v := range views {
		v.Close()
	}
}

// Len returns the number of tracked views.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}
