package specstream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/urfave/cli/v2"

	"github.com/specstream/specstream/exitcodes"
	"github.com/specstream/specstream/flags"
	"github.com/specstream/specstream/registry"
	"github.com/specstream/specstream/service"
)

// RegistryBuilder composes the step registry the harness runs against.
// Programs embedding specstream supply one; it typically calls
// registry.Compose over the step sets owned by each domain module.
type RegistryBuilder func() (*registry.Registry, error)

// Main is the embeddable CLI entrypoint: programs with their own step
// registries call it from their main function.
func Main(version string, buildRegistry RegistryBuilder) {
	app := cli.NewApp()
	app.Version = version
	app.Name = "specstream"
	app.Usage = "BDD scenario execution harness"
	app.Description = "specstream runs plans of pre-parsed scenarios against registered step definitions"
	app.Flags = flags.Flags
	app.Action = func(cliCtx *cli.Context) error {
		return run(cliCtx, version, buildRegistry)
	}
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			if IsRuntimeError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
			} else if IsRunFailureError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.ScenarioFailure))
			} else {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.ScenarioFailure))
			}
		}
	}

	// Start telemetry
	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(app.Name),
		otelconfig.WithServiceVersion(app.Version),
	)
	if err != nil {
		log.Crit("Failed to setup open telemetry", "message", err)
	}
	defer otelShutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start healthz and metrics servers
	svc := service.New()
	svc.Start(ctx)
	defer svc.Shutdown()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func run(cliCtx *cli.Context, version string, buildRegistry RegistryBuilder) error {
	logger, err := newLogger(cliCtx.String(flags.LogLevel.Name))
	if err != nil {
		return NewRuntimeError(err)
	}
	log.SetDefault(logger)

	cfg, err := NewConfig(cliCtx, logger)
	if err != nil {
		return NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}
	cfg.Log.Debug("Config", "plan", cfg.PlanPath, "concurrency", cfg.Concurrency, "runOnce", cfg.RunOnce)

	reg, err := buildRegistry()
	if err != nil {
		// Registry collisions are construction errors: the run must not start.
		return NewRuntimeError(fmt.Errorf("failed to build step registry: %w", err))
	}

	runCtx, cancelRun := context.WithCancelCause(cliCtx.Context)
	defer cancelRun(nil)

	harness, err := New(runCtx, cfg, reg, version, cancelRun)
	if err != nil {
		return NewRuntimeError(fmt.Errorf("failed to create harness: %w", err))
	}

	if err := harness.Start(runCtx); err != nil {
		return err
	}
	if cfg.RunOnce {
		return nil
	}

	<-runCtx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := harness.Stop(shutdownCtx); err != nil {
		return NewRuntimeError(err)
	}
	return harness.WaitForShutdown(shutdownCtx)
}

// newLogger builds the terminal logger at the requested level.
func newLogger(level string) (log.Logger, error) {
	lvl, err := levelFromString(level)
	if err != nil {
		return nil, err
	}
	return log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, lvl, false)), nil
}

func levelFromString(level string) (slog.Level, error) {
	switch level {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "info", "":
		return log.LevelInfo, nil
	case "warn":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", level)
	}
}
