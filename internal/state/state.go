// Package state holds the long-lived per-category state trees that incoming
// partial payloads are merged into. Merging is copy-on-write: callers always
// receive a fresh tree and stored trees are never mutated in place, which
// keeps change detection and tests straightforward.
package state

import (
	"errors"
	"fmt"

	"github.com/stabrig/rigview/internal/keys"
)

// Category identifies one subtree of synchronized rendering state.
type Category string

const (
	CategoryGeometry    Category = "geometry"
	CategoryAnimation   Category = "animation"
	CategoryLighting    Category = "lighting"
	CategoryMaterials   Category = "materials"
	CategoryEnvironment Category = "environment"
	CategoryScene       Category = "scene"
	CategoryQuality     Category = "quality"
	CategoryCamera      Category = "camera"
	CategoryEffects     Category = "effects"
	CategoryRender      Category = "render"
	CategorySimulation  Category = "simulation"
	CategoryThreeD      Category = "threeD"
)

// Categories lists every known category in registration order.
var Categories = []Category{
	CategoryGeometry,
	CategoryAnimation,
	CategoryLighting,
	CategoryMaterials,
	CategoryEnvironment,
	CategoryScene,
	CategoryQuality,
	CategoryCamera,
	CategoryEffects,
	CategoryRender,
	CategorySimulation,
	CategoryThreeD,
}

// ErrUnknownCategory is returned when a merge targets a category the store
// does not track. Not fatal; the dispatcher records it and moves on.
var ErrUnknownCategory = errors.New("unknown category")

// StateTree is one category's persistent key/value state. Values are scalars,
// color strings, or nested StateTrees. Keys are canonicalized (camelCase)
// before storage.
type StateTree map[string]any

// Clone returns a deep copy of the tree.
func (t StateTree) Clone() StateTree {
	if t == nil {
		return nil
	}
	out := make(StateTree, len(t))
	for k, v := range t {
		if nested, ok := asTree(v); ok {
			out[k] = map[string]any(nested.Clone())
		} else {
			out[k] = v
		}
	}
	return out
}

// Store keeps one StateTree per category plus the last raw payload applied to
// each, for diagnostics.
type Store struct {
	trees       map[Category]StateTree
	lastApplied map[Category]map[string]any
}

// NewStore creates a store with an empty tree for every known category.
func NewStore() *Store {
	s := &Store{
		trees:       make(map[Category]StateTree, len(Categories)),
		lastApplied: make(map[Category]map[string]any, len(Categories)),
	}
	for _, c := range Categories {
		s.trees[c] = StateTree{}
	}
	return s
}

// Merge deep-merges partial into the stored tree for category and returns the
// new tree. Keys absent from partial are preserved; map-shaped values merge
// recursively, everything else overwrites. Incoming keys are canonicalized to
// camelCase before storage.
func (s *Store) Merge(category Category, partial map[string]any) (StateTree, error) {
	existing, ok := s.trees[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	merged := mergeTrees(existing, partial)
	s.trees[category] = merged
	s.lastApplied[category] = partial
	return merged, nil
}

// Snapshot returns the current tree for category. The returned tree must be
// treated as read-only; Merge never mutates it.
func (s *Store) Snapshot(category Category) (StateTree, error) {
	t, ok := s.trees[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return t, nil
}

// LastApplied returns the most recent raw payload merged into category, for
// diagnostics. Nil if nothing has been applied yet.
func (s *Store) LastApplied(category Category) (map[string]any, error) {
	if _, ok := s.trees[category]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return s.lastApplied[category], nil
}

// mergeTrees builds a new tree from existing plus incoming. Never mutates
// either argument.
func mergeTrees(existing StateTree, incoming map[string]any) StateTree {
	out := make(StateTree, len(existing)+len(incoming))
	for k, v := range existing {
		out[k] = v
	}

	for rawKey, in := range incoming {
		k := keys.ToCamel(rawKey)

		prev, had := out[k]
		inTree, inIsTree := asTree(in)
		prevTree, prevIsTree := asTree(prev)

		if had && inIsTree && prevIsTree {
			out[k] = map[string]any(mergeTrees(prevTree, inTree))
			continue
		}
		if inIsTree {
			// Copy so later external mutation of the payload can't leak in.
			out[k] = map[string]any(inTree.Clone())
			continue
		}
		out[k] = in
	}
	return out
}

func asTree(v any) (StateTree, bool) {
	switch t := v.(type) {
	case map[string]any:
		return StateTree(t), true
	case StateTree:
		return t, true
	default:
		return nil, false
	}
}
