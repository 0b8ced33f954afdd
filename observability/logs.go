package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/exporters/autoexport"
	logGlobal "go.opentelemetry.io/otel/log/global"
	logSdk "go.opentelemetry.io/otel/sdk/log"

	kitconfig "github.com/italypaleale/faultkit/config"
	slogkit "github.com/italypaleale/faultkit/slog"
)

// InitLogsOpts contains options for the InitLogs method
type InitLogsOpts struct {
	// Log level: "debug", "info", "notice", "warning", "error", "critical", "alert", "emergency", or an empty string (defaults to "info")
	Level string
	// If true, logs as JSON by default
	JSON bool
	// Destination for logs; defaults to os.Stdout
	Writer io.Writer

	Config     kitconfig.Base
	AppName    string
	AppVersion string
}

// InitLogs initializes a new slog logger and configures it using OpenTelemetry if needed.
func InitLogs(ctx context.Context, opts InitLogsOpts) (log *slog.Logger, shutdownFn func(ctx context.Context) error, err error) {
	// Get the level
	level, err := slogkit.ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, kitconfig.NewConfigError(err, "Invalid value for 'logLevel'")
	}

	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	// Create the handler
	var handler slog.Handler
	switch {
	case opts.JSON:
		// Log as JSON if configured
		handler = slog.NewJSONHandler(opts.Writer, &slog.HandlerOptions{
			Level:       level.Slog(),
			ReplaceAttr: slogkit.ReplaceLevelAttr,
		})
	case isTerminal(opts.Writer):
		// Enable colors if we have a TTY
		handler = tint.NewHandler(opts.Writer, &tint.Options{
			Level:       level.Slog(),
			TimeFormat:  time.StampMilli,
			ReplaceAttr: slogkit.ReplaceLevelAttr,
		})
	default:
		handler = slog.NewTextHandler(opts.Writer, &slog.HandlerOptions{
			Level:       level.Slog(),
			ReplaceAttr: slogkit.ReplaceLevelAttr,
		})
	}

	// Create a handler that sends logs to OTel too
	// We wrap the handler in a "fanout" handler that sends logs to both
	resource, err := opts.Config.GetOtelResource(opts.AppName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get OpenTelemetry resource: %w", err)
	}

	// If the env var OTEL_LOGS_EXPORTER is empty, we set it to "none"
	if os.Getenv("OTEL_LOGS_EXPORTER") == "" {
		_ = os.Setenv("OTEL_LOGS_EXPORTER", "none") //nolint:errcheck
	}
	exp, err := autoexport.NewLogExporter(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize OpenTelemetry log exporter: %w", err)
	}

	// Create the logger provider
	provider := logSdk.NewLoggerProvider(
		logSdk.WithProcessor(
			logSdk.NewBatchProcessor(exp),
		),
		logSdk.WithResource(resource),
	)

	// Set the logger provider globally
	logGlobal.SetLoggerProvider(provider)

	// Wrap the handler in a MultiHandler for fanout
	handler = slog.NewMultiHandler(
		handler,
		otelslog.NewHandler(opts.AppName, otelslog.WithLoggerProvider(provider)),
	)

	// Return a function to invoke during shutdown
	shutdownFn = provider.Shutdown

	log = slog.New(handler).
		With(slog.String("app", opts.AppName)).
		With(slog.String("version", opts.AppVersion))

	return log, shutdownFn, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
