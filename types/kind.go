package types

import "fmt"

// StepKind classifies a step line as Given, When or Then.
type StepKind string

const (
	StepKindGiven StepKind = "given"
	StepKindWhen  StepKind = "when"
	StepKindThen  StepKind = "then"
)

// Valid reports whether the kind is one of the three known step kinds.
func (k StepKind) Valid() bool {
	switch k {
	case StepKindGiven, StepKindWhen, StepKindThen:
		return true
	}
	return false
}

// Keyword returns the display keyword for the kind (e.g. "Given").
func (k StepKind) Keyword() string {
	switch k {
	case StepKindGiven:
		return "Given"
	case StepKindWhen:
		return "When"
	case StepKindThen:
		return "Then"
	default:
		return string(k)
	}
}

// ParseStepKind parses a step kind from its lowercase or keyword form.
func ParseStepKind(s string) (StepKind, error) {
	switch s {
	case "given", "Given":
		return StepKindGiven, nil
	case "when", "When":
		return StepKindWhen, nil
	case "then", "Then":
		return StepKindThen, nil
	}
	return "", fmt.Errorf("unknown step kind %q (expected given, when or then)", s)
}
