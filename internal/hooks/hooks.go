// Package hooks provides named filter points that collaborators can register
// against to override values used by the indexing pipeline.
//
// A filter receives the current value and returns the replacement. Filters
// registered under the same name run in registration order, each one seeing
// the output of the previous.
package hooks

import (
	"log/slog"
	"sync"
)

// Well-known filter names.
const (
	// IgnoredWords filters the stop-word list ([]string) after it is loaded.
	IgnoredWords = "ignored_words"
	// WeightTitle filters the title weight (int).
	WeightTitle = "weight_title"
	// WeightTag filters the tag weight (int).
	WeightTag = "weight_tag"
	// WeightCategory filters the category weight (int).
	WeightCategory = "weight_category"
)

// Registry holds registered filters keyed by name.
// The zero value is not usable; create one with NewRegistry.
type Registry struct {
	mu      sync.RWMutex
	filters map[string][]func(any) any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{filters: make(map[string][]func(any) any)}
}

// Add registers fn under name. The value type seen by fn must match the type
// the pipeline passes for that name; mismatching filters are skipped.
// Adding to a nil registry does nothing.
func Add[T any](r *Registry, name string, fn func(T) T) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.filters[name] = append(r.filters[name], func(v any) any {
		typed, ok := v.(T)
		if !ok {
			slog.Warn("hook_type_mismatch", slog.String("hook", name))
			return v
		}
		return fn(typed)
	})
}

// Apply runs every filter registered under name over value and returns the
// result. A nil registry returns value unchanged.
func Apply[T any](r *Registry, name string, value T) T {
	if r == nil {
		return value
	}

	r.mu.RLock()
	chain := r.filters[name]
	r.mu.RUnlock()

	var current any = value
	for _, fn := range chain {
		current = fn(current)
	}

	out, ok := current.(T)
	if !ok {
		return value
	}
	return out
}

// Has reports whether any filter is registered under name.
func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.filters[name]) > 0
}
