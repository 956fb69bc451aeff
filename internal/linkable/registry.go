// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package linkable provides a registry of entity types that may serve as
// menu item link targets. Providers register a display label, an option
// lister, and a resolver; the menu tree consults the registry without
// knowing about concrete entity types.
package linkable

import (
	"context"
	"log/slog"
	"sync"
)

// Option is one pickable link target: an entity id with its display title.
type Option struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Target is a resolved link destination.
type Target struct {
	Title string
	URL   string
}

// Provider supplies link targets for one registered entity type.
type Provider interface {
	// Label returns the human-readable name for the type picker.
	Label() string

	// Options lists pickable instances of the type, with any active-only
	// filter already applied.
	Options(ctx context.Context) ([]Option, error)

	// Resolve dereferences one instance. A dangling id returns (nil, nil):
	// absence is not an error.
	Resolve(ctx context.Context, id int64) (*Target, error)
}

// Registry manages linkable type registration and lookup.
// Option lists are memoized until ClearCache is called; the admin layer
// clears the cache per request.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	order     []string // registration order, for stable pickers
	options   map[string][]Option
	logger    *slog.Logger
}

// NewRegistry creates an empty linkable registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		options:   make(map[string][]Option),
		logger:    logger,
	}
}

// Register adds a provider for an entity type tag. Registering the same
// tag again overwrites the previous provider and drops its cached options.
func (r *Registry) Register(typeTag string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[typeTag]; !exists {
		r.order = append(r.order, typeTag)
	}
	r.providers[typeTag] = p
	delete(r.options, typeTag)
	r.logger.Info("linkable registered", "type", typeTag, "label", p.Label())
}

// IsRegistered checks if a type tag has a provider.
func (r *Registry) IsRegistered(typeTag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[typeTag]
	return ok
}

// Registered returns typeTag -> label for all providers in registration
// order, for populating "link type" pickers.
func (r *Registry) Registered() []struct{ Tag, Label string } {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]struct{ Tag, Label string }, 0, len(r.order))
	for _, tag := range r.order {
		if p, ok := r.providers[tag]; ok {
			out = append(out, struct{ Tag, Label string }{tag, p.Label()})
		}
	}
	return out
}

// Options lists pickable targets for a type tag. Unknown types and
// provider failures yield an empty list, never an error: a picker with no
// choices beats a broken form.
func (r *Registry) Options(ctx context.Context, typeTag string) []Option {
	r.mu.RLock()
	if cached, ok := r.options[typeTag]; ok {
		r.mu.RUnlock()
		return cached
	}
	p, ok := r.providers[typeTag]
	r.mu.RUnlock()

	if !ok {
		return nil
	}

	opts, err := p.Options(ctx)
	if err != nil {
		r.logger.Warn("linkable options failed", "type", typeTag, "error", err)
		return nil
	}

	r.mu.Lock()
	r.options[typeTag] = opts
	r.mu.Unlock()
	return opts
}

// Resolve dereferences a (typeTag, id) pair. Unknown types and dangling
// ids return (nil, nil).
func (r *Registry) Resolve(ctx context.Context, typeTag string, id int64) (*Target, error) {
	r.mu.RLock()
	p, ok := r.providers[typeTag]
	r.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	return p.Resolve(ctx, id)
}

// ClearCache drops all memoized option lists.
func (r *Registry) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.options = make(map[string][]Option)
}

// Count returns the number of registered providers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
