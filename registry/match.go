package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/specstream/specstream/types"
)

// Match is a successful resolution of step text to a single definition.
type Match struct {
	Definition *StepDefinition
	Captures   []string
}

// UndefinedStepError reports step text that matched no registered pattern.
type UndefinedStepError struct {
	Kind types.StepKind
	Text string
}

func (e *UndefinedStepError) Error() string {
	return fmt.Sprintf("no step definition matches %s %q", e.Kind.Keyword(), e.Text)
}

// AmbiguousMatchError reports step text that matched more than one pattern of
// the same kind. Candidates holds the colliding definitions' tags (or pattern
// sources when untagged), sorted for deterministic output.
type AmbiguousMatchError struct {
	Kind       types.StepKind
	Text       string
	Candidates []string
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("%d step definitions match %s %q: %s",
		len(e.Candidates), e.Kind.Keyword(), e.Text, strings.Join(e.Candidates, ", "))
}

// Find resolves step text against the definitions of the given kind.
//
// Exactly one matching definition yields a Match with its capture groups.
// Zero matches yield an UndefinedStepError, several an AmbiguousMatchError;
// registration order never breaks ties, because silent precedence hides
// author intent as registries grow. Find is pure: identical inputs always
// produce identical results.
func (r *Registry) Find(kind types.StepKind, text string) (*Match, error) {
	var matches []*Match
	for i := range r.defs {
		def := &r.defs[i]
		if def.Kind != kind {
			continue
		}
		groups := def.Pattern.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		matches = append(matches, &Match{
			Definition: def,
			Captures:   groups[1:],
		})
	}

	switch len(matches) {
	case 0:
		return nil, &UndefinedStepError{Kind: kind, Text: text}
	case 1:
		return matches[0], nil
	default:
		candidates := make([]string, len(matches))
		for i, m := range matches {
			candidates[i] = m.Definition.DisplayTag()
		}
		sort.Strings(candidates)
		return nil, &AmbiguousMatchError{Kind: kind, Text: text, Candidates: candidates}
	}
}

// DisplayTag returns the definition's tag, falling back to its pattern source.
func (d *StepDefinition) DisplayTag() string {
	if d.Tag != "" {
		return d.Tag
	}
	return "/" + d.Source + "/"
}
