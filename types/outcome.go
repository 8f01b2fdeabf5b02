package types

import "time"

// Status represents the possible results of a step, scenario or feature.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
)

// FailureKind distinguishes why a step failed, so that "no step defined"
// and "two steps matched" are visibly different from "step defined but
// its handler failed".
type FailureKind string

const (
	FailureHandler   FailureKind = "handler"
	FailureUndefined FailureKind = "undefined"
	FailureAmbiguous FailureKind = "ambiguous"
)

// StepOutcome captures the result of executing (or skipping) a single step.
//
// Status selects the variant: StatusPass carries Captures and Location;
// StatusFail additionally carries Err, FailureKind and a best-effort World
// snapshot (handler failures only); StatusSkip carries neither error nor
// snapshot because the handler was never invoked.
type StepOutcome struct {
	Status      Status
	Captures    []string
	Location    *Location
	Table       *DataTable
	Err         error
	FailureKind FailureKind
	World       string // best-effort world snapshot, handler failures only
	Duration    time.Duration
}

// ScenarioResult is the terminal outcome of one scenario with the full
// ordered list of its step outcomes.
type ScenarioResult struct {
	Name     string
	Feature  string
	Status   Status
	Steps    []StepOutcome
	Duration time.Duration
}

// FeatureResult aggregates the scenario results of one feature run.
type FeatureResult struct {
	Name      string
	RunID     string
	Status    Status
	Scenarios []ScenarioResult
	Stats     Stats
	Duration  time.Duration
}

// Stats tracks step counts across a feature run.
type Stats struct {
	Total     int
	Passed    int
	Failed    int
	Skipped   int
	StartTime time.Time
	EndTime   time.Time
}

// Add folds one step outcome into the stats.
func (s *Stats) Add(o StepOutcome) {
	s.Total++
	switch o.Status {
	case StatusPass:
		s.Passed++
	case StatusFail:
		s.Failed++
	case StatusSkip:
		s.Skipped++
	}
}
