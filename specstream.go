// Package specstream wires the scenario execution core into a runnable
// harness: it loads a run plan, executes its features against a composed step
// registry, and streams canonical events to the text sink.
package specstream

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/specstream/specstream/events"
	"github.com/specstream/specstream/exitcodes"
	"github.com/specstream/specstream/plan"
	"github.com/specstream/specstream/registry"
	"github.com/specstream/specstream/reporting"
	"github.com/specstream/specstream/runner"
	"github.com/specstream/specstream/types"
)

// Harness runs plans against a step registry, once or periodically.
type Harness struct {
	ctx      context.Context
	config   *Config
	version  string
	registry *registry.Registry
	features []types.Feature
	status   types.Status

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup

	shutdownCallback func(error) // Callback to signal application shutdown
}

// New creates a harness from a config and a fully composed step registry.
// The plan is loaded and validated here so a broken plan fails before any
// scenario starts.
func New(ctx context.Context, config *Config, reg *registry.Registry, version string, shutdownCallback func(error)) (*Harness, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if reg == nil {
		return nil, errors.New("step registry is required")
	}

	config.Log.Debug("Creating harness with config",
		"plan", config.PlanPath,
		"targetFeature", config.TargetFeature,
		"concurrency", config.Concurrency,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce)

	features, err := plan.Load(config.PlanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if config.TargetFeature != "" {
		features = filterFeatures(features, config.TargetFeature)
		if len(features) == 0 {
			return nil, fmt.Errorf("no feature named %q in plan", config.TargetFeature)
		}
	}
	config.Log.Info("Loaded plan", "features", len(features), "steps", reg.TotalLen())

	return &Harness{
		ctx:              ctx,
		config:           config,
		version:          version,
		registry:         reg,
		features:         features,
		done:             make(chan struct{}),
		shutdownCallback: shutdownCallback,
	}, nil
}

// Start runs the plan, once or periodically at the configured interval.
func (h *Harness) Start(ctx context.Context) error {
	defer func() {
		if r := recover(); r != nil {
			h.config.Log.Error("Runtime error occurred", "error", r)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	h.ctx = ctx
	h.done = make(chan struct{})
	h.running.Store(true)

	if h.config.RunOnce {
		h.config.Log.Info("Starting specstream in run-once mode")
	} else {
		h.config.Log.Info("Starting specstream in continuous mode", "interval", h.config.RunInterval)
	}

	// Run the plan immediately on startup
	if err := h.runPlan(); err != nil {
		h.config.Log.Error("Runtime error running plan", "error", err)
		return NewRuntimeError(err)
	}

	if h.config.RunOnce {
		h.config.Log.Info("Run completed, exiting (run-once mode)")
		if h.status == types.StatusFail {
			h.config.Log.Warn("Run-once plan completed with failures, returning exit code 1")
			return NewRunFailureError("one or more scenarios failed")
		}
		go func() {
			h.shutdownCallback(nil)
		}()
		return nil
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.config.Log.Debug("Starting periodic plan runner goroutine", "interval", h.config.RunInterval)

		for {
			select {
			case <-time.After(h.config.RunInterval):
				if !h.running.Load() {
					h.config.Log.Debug("Harness stopped, exiting periodic plan runner")
					return
				}

				h.config.Log.Info("Running periodic plan")
				if err := h.runPlan(); err != nil {
					h.config.Log.Error("Error running periodic plan", "error", err)
				}

			case <-h.done:
				h.config.Log.Debug("Done signal received, stopping periodic plan runner")
				return

			case <-ctx.Done():
				h.config.Log.Debug("Context canceled, stopping periodic plan runner")
				h.running.Store(false)
				return
			}
		}
	}()
	h.config.Log.Debug("specstream started successfully")
	return nil
}

// runPlan executes every feature of the plan through one emitter, so
// sequence numbers are totally ordered across the whole run.
func (h *Harness) runPlan() error {
	emitter := events.NewEmitter(h.config.Log)
	sink := reporting.NewTextSink(os.Stdout, h.config.Log, h.config.Verbose)

	sinkDone := make(chan struct{})
	go func() {
		defer close(sinkDone)
		sink.Run(emitter.Events())
	}()

	scenarioRunner, err := runner.NewRunner(runner.Config{
		Registry:    h.registry,
		Emitter:     emitter,
		Log:         h.config.Log,
		Concurrency: h.config.Concurrency,
	})
	if err != nil {
		emitter.Close()
		<-sinkDone
		return fmt.Errorf("failed to create runner: %w", err)
	}

	status := types.StatusPass
	results := make([]*types.FeatureResult, 0, len(h.features))
	for _, feature := range h.features {
		result, err := scenarioRunner.RunFeature(h.ctx, feature)
		if result != nil {
			results = append(results, result)
			if result.Status == types.StatusFail {
				status = types.StatusFail
			}
		}
		if err != nil {
			// Cancellation: the partial result above is still reported.
			h.config.Log.Warn("Feature run interrupted", "feature", feature.Name, "error", err)
			break
		}
	}

	emitter.Close()
	emitter.Wait()
	<-sinkDone

	for _, result := range results {
		reporting.RenderSummary(os.Stdout, result)
	}

	h.status = status
	h.config.Log.Info("Plan run completed", "status", status)
	return nil
}

// Stop stops the harness.
func (h *Harness) Stop(ctx context.Context) error {
	h.config.Log.Info("Stopping specstream")

	if !h.running.Load() {
		h.config.Log.Debug("Harness already stopped, nothing to do")
		return nil
	}

	h.running.Store(false)
	h.config.Log.Debug("Sending done signal to goroutines")
	close(h.done)

	h.config.Log.Info("specstream stopped successfully")
	return nil
}

// Stopped returns true if the harness is stopped.
func (h *Harness) Stopped() bool {
	return !h.running.Load()
}

// WaitForShutdown blocks until all goroutines have terminated.
func (h *Harness) WaitForShutdown(ctx context.Context) error {
	h.config.Log.Debug("Waiting for all goroutines to terminate")

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.config.Log.Debug("All goroutines terminated successfully")
		return nil
	case <-ctx.Done():
		h.config.Log.Warn("Timed out waiting for goroutines to terminate", "error", ctx.Err())
		return ctx.Err()
	}
}

// Status returns the outcome of the most recent plan run.
func (h *Harness) Status() types.Status {
	return h.status
}

func filterFeatures(features []types.Feature, name string) []types.Feature {
	var filtered []types.Feature
	for _, f := range features {
		if f.Name == name {
			filtered = append(filtered, f)
		}
	}
	return filtered
}
