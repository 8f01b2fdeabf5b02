package specstream

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/specstream/specstream/flags"
)

// Config holds the harness configuration
type Config struct {
	PlanPath      string        // Path to the run plan file
	TargetFeature string        // Run only this feature; empty means all
	Concurrency   int           // Max scenarios in flight per feature
	RunInterval   time.Duration // Interval between runs
	RunOnce       bool          // Indicates if the harness should exit after one run
	Verbose       bool          // Write passing steps as well as failures
	Log           log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, logger log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	planPath := ctx.String(flags.Plan.Name)
	if planPath == "" {
		return nil, errors.New("plan file is required")
	}
	absPlanPath, err := filepath.Abs(planPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for plan '%s': %w", planPath, err)
	}

	concurrency := ctx.Int(flags.Concurrency.Name)
	if concurrency < 1 {
		return nil, fmt.Errorf("concurrency must be at least 1, got %d", concurrency)
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)
	runOnce := runInterval == 0

	return &Config{
		PlanPath:      absPlanPath,
		TargetFeature: ctx.String(flags.Feature.Name),
		Concurrency:   concurrency,
		RunInterval:   runInterval,
		RunOnce:       runOnce,
		Verbose:       ctx.Bool(flags.Verbose.Name),
		Log:           logger,
	}, nil
}
