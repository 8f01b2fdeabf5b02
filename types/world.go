package types

import (
	"fmt"
	"sort"
	"strings"
)

// World is the per-scenario mutable state bag passed to step handlers.
// A World is created when its scenario starts, discarded when it finishes,
// and is owned exclusively by that scenario's goroutine, so access needs no
// locking. Never share a World across scenarios.
type World struct {
	values map[string]any
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{values: make(map[string]any)}
}

// Set stores a value under key, replacing any previous value.
func (w *World) Set(key string, value any) {
	w.values[key] = value
}

// Get returns the value stored under key.
func (w *World) Get(key string) (any, bool) {
	v, ok := w.values[key]
	return v, ok
}

// Delete removes key from the world.
func (w *World) Delete(key string) {
	delete(w.values, key)
}

// Len returns the number of stored keys.
func (w *World) Len() int {
	return len(w.values)
}

// Snapshot renders the world's state for failure diagnostics, sorted by key.
// Rendering is best-effort: a value whose formatting panics is replaced with
// a placeholder rather than aborting the run.
func (w *World) Snapshot() string {
	if len(w.values) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(w.values))
	for k := range w.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(formatValue(w.values[k]))
	}
	b.WriteString("}")
	return b.String()
}

func formatValue(v any) (s string) {
	defer func() {
		if recover() != nil {
			s = "<unprintable>"
		}
	}()
	return fmt.Sprintf("%v", v)
}
