// Package bootstrap builds the fault handling stack from the configuration.
// It initializes logs, metrics and traces, the logger registry, and the fault dispatcher.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/italypaleale/faultkit/config"
	"github.com/italypaleale/faultkit/faults"
	"github.com/italypaleale/faultkit/fsnotify"
	"github.com/italypaleale/faultkit/observability"
	"github.com/italypaleale/faultkit/registry"
	"github.com/italypaleale/faultkit/suppress"
)

// Options contains options for Init.
type Options struct {
	AppName    string
	AppVersion string
	// Destination for logs; defaults to os.Stdout
	Writer io.Writer
	// Optional metric reader, used when metrics are enabled
	MetricReader metric.Reader
	// Handlers installed before the dispatcher
	Previous faults.Handlers
}

// Stack contains the objects built by Init.
type Stack struct {
	Log        *slog.Logger
	Loggers    *registry.Registry
	Runtime    *faults.ProcessRuntime
	Dispatcher *faults.Dispatcher

	cfg         *config.Config
	watchDone   <-chan struct{}
	cancel      context.CancelFunc
	shutdownFns []func(ctx context.Context) error
}

// Init builds the fault handling stack.
// The returned Stack must be shut down with Shutdown.
func Init(ctx context.Context, cfg *config.Config, opts Options) (stack *Stack, err error) {
	if cfg == nil {
		return nil, errors.New("configuration is nil")
	}
	if opts.AppName == "" {
		opts.AppName = "faultkit"
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	stack = &Stack{cfg: cfg}

	// On failure, release what was initialized so far
	defer func() {
		if err != nil {
			_ = stack.Shutdown(context.WithoutCancel(ctx))
			stack = nil
		}
	}()

	log, logShutdownFn, err := observability.InitLogs(ctx, observability.InitLogsOpts{
		Level:      cfg.LogLevel,
		JSON:       cfg.LogAsJSON,
		Writer:     opts.Writer,
		Config:     cfg,
		AppName:    opts.AppName,
		AppVersion: opts.AppVersion,
	})
	if err != nil {
		return stack, fmt.Errorf("failed to init logs: %w", err)
	}
	stack.Log = log
	stack.shutdownFns = append(stack.shutdownFns, logShutdownFn)

	levels, err := cfg.LoggerLevels()
	if err != nil {
		return stack, err
	}
	stack.Loggers = registry.New(registry.NewSlogFactory(log, levels))

	mask, err := cfg.ReportingMask()
	if err != nil {
		return stack, err
	}
	stack.Runtime = faults.NewProcessRuntime(mask)

	dispatcherOpts := faults.Options{
		Loggers:    stack.Loggers,
		LoggerName: cfg.GetLoggerName(),
		Runtime:    stack.Runtime,
		Previous:   opts.Previous,
	}

	if cfg.SuppressWindow > 0 {
		window := suppress.New(suppress.Options{
			Period: cfg.SuppressWindow,
		})
		stack.shutdownFns = append(stack.shutdownFns, func(context.Context) error {
			window.Stop()
			return nil
		})
		dispatcherOpts.Suppressor = window
	}

	if cfg.EnableMetrics {
		meter, metricsShutdownFn, mErr := observability.InitMetrics(ctx, observability.InitMetricsOpts{
			Config:  cfg,
			AppName: opts.AppName,
			Reader:  opts.MetricReader,
		})
		if mErr != nil {
			return stack, fmt.Errorf("failed to init metrics: %w", mErr)
		}
		stack.shutdownFns = append(stack.shutdownFns, metricsShutdownFn)
		dispatcherOpts.Meter = meter
	}

	if cfg.EnableTraces {
		ratio := cfg.GetTraceSampleRatio()
		_, tracesShutdownFn, tErr := observability.InitTraces(ctx, observability.InitTracesOpts{
			Config:      cfg,
			AppName:     opts.AppName,
			SampleRatio: &ratio,
		})
		if tErr != nil {
			return stack, fmt.Errorf("failed to init traces: %w", tErr)
		}
		stack.shutdownFns = append(stack.shutdownFns, tracesShutdownFn)
	}

	stack.Dispatcher, err = faults.NewDispatcher(dispatcherOpts)
	if err != nil {
		return stack, fmt.Errorf("failed to create dispatcher: %w", err)
	}

	if cfg.WatchConfig && cfg.GetLoadedConfigPath() != "" {
		err = stack.watchConfig(ctx)
		if err != nil {
			return stack, err
		}
	}

	return stack, nil
}

// Shutdown stops the config watcher and flushes the telemetry providers.
func (s *Stack) Shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
		<-s.watchDone
	}

	// Shut down in reverse order of initialization
	errs := make([]error, 0, len(s.shutdownFns))
	for _, fn := range slices.Backward(s.shutdownFns) {
		errs = append(errs, fn(ctx))
	}
	s.shutdownFns = nil

	return errors.Join(errs...)
}

func (s *Stack) watchConfig(parentCtx context.Context) error {
	path := s.cfg.GetLoadedConfigPath()

	ctx, cancel := context.WithCancel(context.WithoutCancel(parentCtx))
	watchCh, err := fsnotify.WatchFile(ctx, path, fsnotify.WatchFileOpts{Logger: s.Log})
	if err != nil {
		cancel()
		return fmt.Errorf("failed to watch config file: %w", err)
	}

	done := make(chan struct{})
	s.cancel = cancel
	s.watchDone = done

	go func() {
		defer close(done)
		for range watchCh {
			s.reloadReportingMask(ctx, path)
		}
	}()

	return nil
}

// Only the reporting mask is applied from a reloaded file; other settings require a restart.
func (s *Stack) reloadReportingMask(ctx context.Context, path string) {
	cfg := &config.Config{}
	err := config.ReloadConfig(cfg, path)
	if err != nil {
		s.Log.WarnContext(ctx, "Failed to reload configuration; keeping the current error reporting mask",
			slog.String("path", path),
			slog.Any("error", err),
		)
		return
	}

	// Config was validated when loading, so this can't fail
	mask, _ := cfg.ReportingMask()
	prev := s.Runtime.SetReportingMask(mask)
	if prev != mask {
		s.Log.InfoContext(ctx, "Updated error reporting mask",
			slog.String("path", path),
			slog.String("mask", mask.String()),
			slog.String("previous", prev.String()),
		)
	}
}
