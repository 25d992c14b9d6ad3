// Package scene resolves render, quality, and reflection settings for the
// presentation collaborators. Resolution is layered: an explicit override
// beats the stored scene defaults, the canonical key beats its legacy
// aliases, and a hardcoded fallback catches everything else. The resolver is
// a read-only consumer of the category store.
package scene

import (
	"github.com/stabrig/rigview/internal/coerce"
	"github.com/stabrig/rigview/internal/keys"
	"github.com/stabrig/rigview/internal/state"
)

// Resolver layers explicit overrides over stored scene defaults.
type Resolver struct {
	store     *state.Store
	overrides map[string]any
}

// NewResolver creates a resolver over the given store with no overrides.
func NewResolver(store *state.Store) *Resolver {
	return &Resolver{
		store:     store,
		overrides: make(map[string]any),
	}
}

// SetOverride pins a setting above anything the scene tree supplies.
// Scheduler thread only.
func (r *Resolver) SetOverride(logical string, value any) {
	r.overrides[keys.ToCamel(logical)] = value
}

// ClearOverride removes a pinned setting.
func (r *Resolver) ClearOverride(logical string) {
	delete(r.overrides, keys.ToCamel(logical))
}

// Lookup resolves a setting through the layers: override, scene tree under
// the canonical name, scene tree under each legacy alias in order.
func (r *Resolver) Lookup(logical string, legacy ...string) (any, bool) {
	if v, ok := keys.Resolve(r.overrides, logical); ok {
		return v, true
	}

	tree, err := r.store.Snapshot(state.CategoryScene)
	if err != nil {
		return nil, false
	}
	if v, ok := keys.Resolve(tree, logical); ok {
		return v, true
	}
	for _, alias := range legacy {
		if v, ok := keys.Resolve(tree, alias); ok {
			return v, true
		}
	}
	return nil, false
}

// Number resolves a numeric setting, degrading to fallback.
func (r *Resolver) Number(logical string, fallback float64, legacy ...string) float64 {
	if v, ok := r.Lookup(logical, legacy...); ok {
		return coerce.Number(v, fallback)
	}
	return fallback
}

// Bool resolves a boolean setting, degrading to fallback.
func (r *Resolver) Bool(logical string, fallback bool, legacy ...string) bool {
	if v, ok := r.Lookup(logical, legacy...); ok {
		return coerce.Bool(v, fallback)
	}
	return fallback
}

// Color resolves a color setting, degrading to fallback.
func (r *Resolver) Color(logical string, fallback string, legacy ...string) string {
	if v, ok := r.Lookup(logical, legacy...); ok {
		return coerce.Color(v, fallback)
	}
	return fallback
}

// String resolves a string setting, degrading to fallback.
func (r *Resolver) String(logical string, fallback string, legacy ...string) string {
	if v, ok := r.Lookup(logical, legacy...); ok {
		return coerce.String(v, fallback)
	}
	return fallback
}
