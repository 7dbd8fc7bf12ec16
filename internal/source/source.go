// Package source defines the provider adapter contract and the shared
// plumbing every adapter uses: a rate-limited retrying HTTP client, text
// normalization helpers and the static catalog fallback.
package source

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
)

// Hints narrow what a provider is asked for. Adapters ignore hints their
// provider cannot express.
type Hints struct {
	Keyword  string
	Location string
	Category opportunity.Category
	Page     int
	PageSize int
}

// PageOrDefault returns the 1-based page to request.
func (h Hints) PageOrDefault() int {
	if h.Page <= 0 {
		return 1
	}
	return h.Page
}

// PageSizeOrDefault returns the page size to request, falling back to def.
func (h Hints) PageSizeOrDefault(def int) int {
	if h.PageSize <= 0 {
		return def
	}
	return h.PageSize
}

// Adapter turns one external provider into canonical opportunities.
//
// Fetch returns a non-nil error wrapping opportunity.ErrProviderUnavailable
// or opportunity.ErrParseFailure when the provider cannot be used; callers
// treat that as an empty contribution. Records carry Source set to Name().
type Adapter interface {
	Name() string
	Categories() []opportunity.Category
	Fetch(ctx context.Context, hints Hints) ([]opportunity.Opportunity, error)
}

type entry struct {
	adapter Adapter
	always  bool
}

// RegisterOption configures a registry entry.
type RegisterOption func(*entry)

// Always marks an adapter that is part of every category-scoped selection.
func Always() RegisterOption {
	return func(e *entry) { e.always = true }
}

// Registry maps categories to the adapters that serve them.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
	byName  map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Register adds an adapter. Names must be unique.
func (r *Registry) Register(a Adapter, opts ...RegisterOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[a.Name()]; ok {
		return fmt.Errorf("adapter %q already registered", a.Name())
	}
	e := entry{adapter: a}
	for _, opt := range opts {
		opt(&e)
	}
	r.byName[a.Name()] = len(r.entries)
	r.entries = append(r.entries, e)
	return nil
}

// Adapters returns every registered adapter in registration order.
func (r *Registry) Adapters() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Adapter, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.adapter)
	}
	return out
}

// Select returns the adapters for category plus the always-included ones.
// An empty category selects every adapter.
func (r *Registry) Select(category opportunity.Category) []Adapter {
	if category == "" {
		return r.Adapters()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Adapter
	for _, e := range r.entries {
		if e.always || slices.Contains(e.adapter.Categories(), category) {
			out = append(out, e.adapter)
		}
	}
	return out
}

// Lookup finds an adapter by name.
func (r *Registry) Lookup(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.entries[idx].adapter, true
}
