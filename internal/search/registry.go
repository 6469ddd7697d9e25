package search

import (
	"github.com/okian/folio/internal/domain/provider"
)

// Registry is the provider collection the orchestrator dispatches to. It
// is assembled once at construction time; there is no runtime plugin
// lookup. Providers keep their registration order.
type Registry struct {
	providers []provider.Provider
	byID      map[string]provider.Provider
}

// NewRegistry builds a registry from the given providers. A provider whose
// id was already registered is ignored.
func NewRegistry(providers ...provider.Provider) *Registry {
	r := &Registry{
		byID: make(map[string]provider.Provider, len(providers)),
	}
	for _, p := range providers {
		id := p.Info().ID
		if _, dup := r.byID[id]; dup || id == "" {
			continue
		}
		r.byID[id] = p
		r.providers = append(r.providers, p)
	}
	return r
}

// IDs returns the registered provider ids in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		ids = append(ids, p.Info().ID)
	}
	return ids
}

// Get returns the provider registered under id.
func (r *Registry) Get(id string) (provider.Provider, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// Resolve selects providers for one search. A non-nil explicit list wins
// and is resolved id by id; otherwise all registered providers are used,
// optionally filtered by the enabled list. Unknown ids in either list are
// silently ignored, as are duplicates.
func (r *Registry) Resolve(explicit, enabled []string) []provider.Provider {
	if explicit != nil {
		out := make([]provider.Provider, 0, len(explicit))
		seen := make(map[string]struct{}, len(explicit))
		for _, id := range explicit {
			p, ok := r.byID[id]
			if !ok {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, p)
		}
		return out
	}

	if enabled == nil {
		return append([]provider.Provider(nil), r.providers...)
	}

	allow := make(map[string]struct{}, len(enabled))
	for _, id := range enabled {
		allow[id] = struct{}{}
	}
	out := make([]provider.Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if _, ok := allow[p.Info().ID]; ok {
			out = append(out, p)
		}
	}
	return out
}
