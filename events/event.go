// Package events defines the canonical event vocabulary produced by the
// runner and the emitter that delivers it, in order, to output consumers.
package events

import (
	"time"

	"github.com/specstream/specstream/types"
)

// Kind identifies the lifecycle point an event describes.
type Kind string

const (
	KindFeatureStarted   Kind = "feature_started"
	KindFeatureFinished  Kind = "feature_finished"
	KindScenarioStarted  Kind = "scenario_started"
	KindScenarioFinished Kind = "scenario_finished"
	KindStepStarted      Kind = "step_started"
	KindStepFinished     Kind = "step_finished"
)

// Ref identifies the feature, scenario and step an event concerns.
// StepIndex is -1 for non-step events.
type Ref struct {
	RunID     string
	Feature   string
	Scenario  string
	StepIndex int
	StepKind  types.StepKind
	StepText  string
}

// Event is one canonical record in the run's event stream. Once emitted it is
// immutable. Seq and Timestamp are assigned by the Emitter; producers fill in
// everything else. Payload fields are set per kind: Outcome on StepFinished,
// Scenario on ScenarioFinished, Feature on FeatureFinished.
type Event struct {
	Seq       uint64
	Timestamp time.Time
	Kind      Kind
	Location  *types.Location
	Ref       Ref

	Outcome  *types.StepOutcome
	Scenario *types.ScenarioResult
	Feature  *types.FeatureResult
}
