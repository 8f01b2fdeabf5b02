package specstream

import (
	"flag"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/specstream/specstream/flags"
)

// newCliContext builds a cli context with the harness flags, applying the
// given overrides on top of the defaults.
func newCliContext(t *testing.T, overrides map[string]string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String(flags.Plan.Name, flags.Plan.Value, "")
	set.String(flags.Feature.Name, flags.Feature.Value, "")
	set.Int(flags.Concurrency.Name, flags.Concurrency.Value, "")
	set.Duration(flags.RunInterval.Name, flags.RunInterval.Value, "")
	set.Bool(flags.Verbose.Name, flags.Verbose.Value, "")
	for name, value := range overrides {
		require.NoError(t, set.Set(name, value))
	}
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestNewConfig(t *testing.T) {
	ctx := newCliContext(t, map[string]string{
		flags.Plan.Name:        "plan.yaml",
		flags.Feature.Name:     "auth",
		flags.Concurrency.Name: "8",
		flags.RunInterval.Name: "30m",
		flags.Verbose.Name:     "true",
	})

	cfg, err := NewConfig(ctx, log.New())
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(cfg.PlanPath))
	assert.Equal(t, "plan.yaml", filepath.Base(cfg.PlanPath))
	assert.Equal(t, "auth", cfg.TargetFeature)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, 30*time.Minute, cfg.RunInterval)
	assert.False(t, cfg.RunOnce)
	assert.True(t, cfg.Verbose)
}

func TestNewConfigRunOnceByDefault(t *testing.T) {
	ctx := newCliContext(t, map[string]string{flags.Plan.Name: "plan.yaml"})

	cfg, err := NewConfig(ctx, log.New())
	require.NoError(t, err)
	assert.True(t, cfg.RunOnce)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Empty(t, cfg.TargetFeature)
}

func TestNewConfigMissingPlan(t *testing.T) {
	ctx := newCliContext(t, nil)

	_, err := NewConfig(ctx, log.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestNewConfigInvalidConcurrency(t *testing.T) {
	ctx := newCliContext(t, map[string]string{
		flags.Plan.Name:        "plan.yaml",
		flags.Concurrency.Name: "0",
	})

	_, err := NewConfig(ctx, log.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concurrency")
}
