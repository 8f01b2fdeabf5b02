// Package registry holds step definitions and resolves step text against
// them. Registries are built before a run starts and are read-only while the
// runner executes, so matching needs no locking.
package registry

import (
	"context"
	"fmt"
	"regexp"

	"github.com/specstream/specstream/types"
)

// Handler executes one step against the scenario's world. Captures holds the
// capture groups extracted from the step text by the winning pattern, in
// order; it is empty when the pattern has no groups.
type Handler func(ctx context.Context, world *types.World, captures []string) error

// StepDefinition binds a step kind and pattern to a handler. Definitions are
// immutable once registered.
type StepDefinition struct {
	Kind    types.StepKind
	Source  string // the pattern as registered, identity for duplicate detection
	Pattern *regexp.Regexp
	Handler Handler
	Tag     string // optional human-readable owner tag, used in diagnostics
}

// DuplicateStepError reports two definitions sharing the same (kind, pattern).
type DuplicateStepError struct {
	Kind    types.StepKind
	Pattern string
}

func (e *DuplicateStepError) Error() string {
	return fmt.Sprintf("duplicate step definition: %s /%s/ registered twice", e.Kind.Keyword(), e.Pattern)
}

type stepKey struct {
	kind    types.StepKind
	pattern string
}

// Registry is an ordered collection of step definitions keyed by
// (kind, pattern source). No two definitions in one registry may share a key.
type Registry struct {
	defs  []StepDefinition
	index map[stepKey]struct{}
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{index: make(map[stepKey]struct{})}
}

// Register adds a definition for the given kind and pattern. The pattern is
// compiled for whole-line matching: it must match the entire step text, not a
// substring. Registering an already-present (kind, pattern) pair fails with a
// DuplicateStepError.
func (r *Registry) Register(kind types.StepKind, pattern string, handler Handler) error {
	return r.RegisterTagged(kind, pattern, handler, "")
}

// RegisterTagged is Register with an owner tag attached to the definition.
// Tags show up in ambiguity diagnostics, so domain-owned registries should
// set them.
func (r *Registry) RegisterTagged(kind types.StepKind, pattern string, handler Handler, tag string) error {
	if !kind.Valid() {
		return fmt.Errorf("invalid step kind %q", string(kind))
	}
	if handler == nil {
		return fmt.Errorf("step /%s/ has no handler", pattern)
	}
	re, err := compileWholeLine(pattern)
	if err != nil {
		return fmt.Errorf("invalid step pattern /%s/: %w", pattern, err)
	}
	key := stepKey{kind: kind, pattern: pattern}
	if _, exists := r.index[key]; exists {
		return &DuplicateStepError{Kind: kind, Pattern: pattern}
	}
	r.index[key] = struct{}{}
	r.defs = append(r.defs, StepDefinition{
		Kind:    kind,
		Source:  pattern,
		Pattern: re,
		Handler: handler,
		Tag:     tag,
	})
	return nil
}

// Given registers a Given step.
func (r *Registry) Given(pattern string, handler Handler) error {
	return r.Register(types.StepKindGiven, pattern, handler)
}

// When registers a When step.
func (r *Registry) When(pattern string, handler Handler) error {
	return r.Register(types.StepKindWhen, pattern, handler)
}

// Then registers a Then step.
func (r *Registry) Then(pattern string, handler Handler) error {
	return r.Register(types.StepKindThen, pattern, handler)
}

// Merge returns a new registry containing the union of a and b. If the two
// share any (kind, pattern) the merge fails with a DuplicateStepError naming
// the colliding pattern; collisions are never resolved silently.
func Merge(a, b *Registry) (*Registry, error) {
	merged := New()
	for _, src := range []*Registry{a, b} {
		if src == nil {
			continue
		}
		for _, def := range src.defs {
			key := stepKey{kind: def.Kind, pattern: def.Source}
			if _, exists := merged.index[key]; exists {
				return nil, &DuplicateStepError{Kind: def.Kind, Pattern: def.Source}
			}
			merged.index[key] = struct{}{}
			merged.defs = append(merged.defs, def)
		}
	}
	return merged, nil
}

// Compose reduces the registries left to right with Merge, so independent
// modules can each contribute their own step set. The first collision
// encountered stops the reduction and is returned; there is no partial merge.
func Compose(registries ...*Registry) (*Registry, error) {
	combined := New()
	for _, reg := range registries {
		merged, err := Merge(combined, reg)
		if err != nil {
			return nil, err
		}
		combined = merged
	}
	return combined, nil
}

// KindLen returns the number of definitions registered for one kind.
func (r *Registry) KindLen(kind types.StepKind) int {
	n := 0
	for _, def := range r.defs {
		if def.Kind == kind {
			n++
		}
	}
	return n
}

// GivenLen returns the number of Given definitions.
func (r *Registry) GivenLen() int { return r.KindLen(types.StepKindGiven) }

// WhenLen returns the number of When definitions.
func (r *Registry) WhenLen() int { return r.KindLen(types.StepKindWhen) }

// ThenLen returns the number of Then definitions.
func (r *Registry) ThenLen() int { return r.KindLen(types.StepKindThen) }

// TotalLen returns the total number of definitions.
func (r *Registry) TotalLen() int { return len(r.defs) }

// compileWholeLine anchors the pattern so it must match the whole step text.
// The non-capturing group keeps alternations intact and leaves capture group
// indices unchanged.
func compileWholeLine(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("^(?:" + pattern + ")$")
}
