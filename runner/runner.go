// Package runner executes scenarios against a step registry and reports
// everything that happens through the event emitter.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/specstream/specstream/events"
	"github.com/specstream/specstream/metrics"
	"github.com/specstream/specstream/registry"
	"github.com/specstream/specstream/types"
)

// ScenarioRunner runs features and scenarios.
type ScenarioRunner interface {
	RunFeature(ctx context.Context, feature types.Feature) (*types.FeatureResult, error)
	RunScenario(ctx context.Context, featureName string, scenario types.Scenario) *types.ScenarioResult
}

// Config holds configuration for creating a new runner.
type Config struct {
	Registry    *registry.Registry
	Emitter     *events.Emitter
	Log         log.Logger
	Concurrency int // max scenarios in flight; 0 or less means serial
}

type runner struct {
	registry    *registry.Registry
	emitter     *events.Emitter
	log         log.Logger
	concurrency int
	runID       string
	tracer      trace.Tracer
}

// NewRunner creates a new scenario runner instance.
func NewRunner(cfg Config) (ScenarioRunner, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg.Emitter == nil {
		return nil, fmt.Errorf("emitter is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}

	cfg.Log.Debug("NewRunner()", "steps", cfg.Registry.TotalLen(), "concurrency", cfg.Concurrency)

	return &runner{
		registry:    cfg.Registry,
		emitter:     cfg.Emitter,
		log:         cfg.Log,
		concurrency: cfg.Concurrency,
		tracer:      otel.Tracer("scenario runner"),
	}, nil
}

// RunFeature executes all scenarios of the feature, at most Concurrency of
// them in flight at once. Steps inside one scenario are strictly sequential;
// scenarios interleave freely and their relative event order is whatever the
// sequence numbers say it was.
//
// Cancellation stops dispatching scenarios that have not started. In-flight
// scenarios run to completion and emit their full event stream; scenarios
// never started are absent from the result. In that case RunFeature returns
// the partial result together with the context's error.
func (r *runner) RunFeature(ctx context.Context, feature types.Feature) (*types.FeatureResult, error) {
	r.runID = uuid.New().String()
	defer func() { r.runID = "" }()

	start := time.Now()
	r.log.Info("Running feature", "feature", feature.Name, "scenarios", len(feature.Scenarios), "run_id", r.runID)

	result := &types.FeatureResult{
		Name:  feature.Name,
		RunID: r.runID,
		Stats: types.Stats{StartTime: start},
	}

	r.emitter.Emit(events.Event{
		Kind:     events.KindFeatureStarted,
		Location: feature.Location,
		Ref:      events.Ref{RunID: r.runID, Feature: feature.Name, StepIndex: -1},
	})

	scenarioResults, runErr := r.executeScenarios(ctx, feature)

	for _, sr := range scenarioResults {
		if sr == nil {
			continue
		}
		result.Scenarios = append(result.Scenarios, *sr)
		for _, step := range sr.Steps {
			result.Stats.Add(step)
		}
	}
	result.Duration = time.Since(start)
	result.Stats.EndTime = time.Now()
	result.Status = featureStatus(result)

	r.emitter.Emit(events.Event{
		Kind:     events.KindFeatureFinished,
		Location: feature.Location,
		Ref:      events.Ref{RunID: r.runID, Feature: feature.Name, StepIndex: -1},
		Feature:  result,
	})

	metrics.RecordFeature(feature.Name, string(result.Status), result.Stats.Total,
		result.Stats.Passed, result.Stats.Failed, result.Stats.Skipped, result.Duration)

	r.log.Info("Feature run completed", "feature", feature.Name, "status", result.Status, "run_id", r.runID)
	return result, runErr
}

// scenarioWork is one scenario queued for a worker.
type scenarioWork struct {
	index    int
	scenario types.Scenario
}

// scenarioDone pairs a finished scenario with its declaration index.
type scenarioDone struct {
	index  int
	result *types.ScenarioResult
}

// executeScenarios fans scenarios out to a bounded worker pool and gathers
// results back in declaration order. On cancellation the dispatcher stops
// handing out work, the workers drain whatever they already picked up, and
// the context error is returned with the partial results.
func (r *runner) executeScenarios(ctx context.Context, feature types.Feature) ([]*types.ScenarioResult, error) {
	results := make([]*types.ScenarioResult, len(feature.Scenarios))
	if len(feature.Scenarios) == 0 {
		return results, nil
	}

	workChan := make(chan scenarioWork)
	resultChan := make(chan scenarioDone)

	var wg sync.WaitGroup
	workers := min(r.concurrency, len(feature.Scenarios))
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for work := range workChan {
				// Once picked up, a scenario runs to completion even if the
				// run is cancelled mid-flight, so its event stream is never
				// truncated halfway through a step.
				sr := r.RunScenario(context.WithoutCancel(ctx), feature.Name, work.scenario)
				resultChan <- scenarioDone{index: work.index, result: sr}
			}
		}()
	}

	go func() {
		defer close(workChan)
		for i, sc := range feature.Scenarios {
			select {
			case workChan <- scenarioWork{index: i, scenario: sc}:
			case <-ctx.Done():
				r.log.Debug("Context cancelled, not dispatching remaining scenarios",
					"feature", feature.Name, "remaining", len(feature.Scenarios)-i)
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	for done := range resultChan {
		results[done.index] = done.result
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// RunScenario executes one scenario's steps strictly in declaration order
// against a fresh world, enforcing skip-after-failure: once any step fails,
// every subsequent step is marked skipped and its handler is never invoked.
func (r *runner) RunScenario(ctx context.Context, featureName string, scenario types.Scenario) *types.ScenarioResult {
	ctx, span := r.tracer.Start(ctx, fmt.Sprintf("scenario %s", scenario.Name))
	defer span.End()

	start := time.Now()
	world := types.NewWorld()
	ref := events.Ref{RunID: r.runID, Feature: featureName, Scenario: scenario.Name, StepIndex: -1}

	r.emitter.Emit(events.Event{
		Kind:     events.KindScenarioStarted,
		Location: scenario.Location,
		Ref:      ref,
	})

	result := &types.ScenarioResult{
		Name:    scenario.Name,
		Feature: featureName,
		Status:  types.StatusPass,
		Steps:   make([]types.StepOutcome, 0, len(scenario.Steps)),
	}

	failed := false
	for i, step := range scenario.Steps {
		stepRef := ref
		stepRef.StepIndex = i
		stepRef.StepKind = step.Kind
		stepRef.StepText = step.Text

		r.emitter.Emit(events.Event{
			Kind:     events.KindStepStarted,
			Location: step.Location,
			Ref:      stepRef,
		})

		var outcome types.StepOutcome
		if failed {
			outcome = types.StepOutcome{
				Status:   types.StatusSkip,
				Location: step.Location,
				Table:    step.Table.Clone(),
			}
		} else {
			outcome = r.runStep(ctx, world, step)
			if outcome.Status == types.StatusFail {
				failed = true
			}
		}
		result.Steps = append(result.Steps, outcome)
		metrics.RecordStep(featureName, string(step.Kind), string(outcome.Status), string(outcome.FailureKind))

		r.emitter.Emit(events.Event{
			Kind:     events.KindStepFinished,
			Location: step.Location,
			Ref:      stepRef,
			Outcome:  &result.Steps[len(result.Steps)-1],
		})
	}

	if failed {
		result.Status = types.StatusFail
	}
	result.Duration = time.Since(start)

	r.emitter.Emit(events.Event{
		Kind:     events.KindScenarioFinished,
		Location: scenario.Location,
		Ref:      ref,
		Scenario: result,
	})

	metrics.RecordScenario(featureName, string(result.Status), result.Duration)
	r.log.Debug("Scenario finished", "scenario", scenario.Name, "status", result.Status, "steps", len(result.Steps))
	return result
}

// runStep resolves and executes a single step. Match errors become step
// failures with their own failure kinds; they never crash the run.
func (r *runner) runStep(ctx context.Context, world *types.World, step types.Step) types.StepOutcome {
	stepStart := time.Now()
	outcome := types.StepOutcome{
		Status:   types.StatusPass,
		Location: step.Location,
		Table:    step.Table.Clone(),
	}

	match, err := r.registry.Find(step.Kind, step.Text)
	if err != nil {
		outcome.Status = types.StatusFail
		outcome.Err = err
		outcome.FailureKind = failureKindFor(err)
		outcome.Duration = time.Since(stepStart)
		return outcome
	}

	outcome.Captures = match.Captures
	if err := invokeHandler(ctx, match.Definition.Handler, world, match.Captures); err != nil {
		outcome.Status = types.StatusFail
		outcome.Err = err
		outcome.FailureKind = types.FailureHandler
		outcome.World = world.Snapshot()
	}
	outcome.Duration = time.Since(stepStart)
	return outcome
}

// invokeHandler runs the handler with panic recovery so a panicking step is
// recorded as a failure instead of taking the whole run down.
func invokeHandler(ctx context.Context, handler registry.Handler, world *types.World, captures []string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in step handler: %v", p)
		}
	}()
	return handler(ctx, world, captures)
}

func failureKindFor(err error) types.FailureKind {
	switch err.(type) {
	case *registry.AmbiguousMatchError:
		return types.FailureAmbiguous
	case *registry.UndefinedStepError:
		return types.FailureUndefined
	default:
		return types.FailureHandler
	}
}

func featureStatus(result *types.FeatureResult) types.Status {
	for _, sc := range result.Scenarios {
		if sc.Status == types.StatusFail {
			return types.StatusFail
		}
	}
	return types.StatusPass
}
