package observability

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/contrib/exporters/autoexport"
	api "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	kitconfig "github.com/italypaleale/faultkit/config"
)

// InitMetricsOpts contains options for the InitMetrics method
type InitMetricsOpts struct {
	Config  kitconfig.Base
	AppName string
	// Name of the meter; defaults to "faultkit"
	Prefix string
	// Optional reader, used instead of the one configured with the OTEL_METRICS_EXPORTER env var
	Reader metric.Reader
}

// InitMetrics initializes metrics using OpenTelemetry.
// The returned meter is used by the fault dispatcher, and can be used to add additional metrics tracked by the application.
func InitMetrics(ctx context.Context, opts InitMetricsOpts) (meter api.Meter, shutdownFn func(ctx context.Context) error, err error) {
	resource, err := opts.Config.GetOtelResource(opts.AppName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get OpenTelemetry resource: %w", err)
	}

	mr := opts.Reader
	if mr == nil {
		// Get the metric reader
		// If the env var OTEL_METRICS_EXPORTER is empty, we set it to "none"
		if os.Getenv("OTEL_METRICS_EXPORTER") == "" {
			_ = os.Setenv("OTEL_METRICS_EXPORTER", "none") //nolint:errcheck
		}
		mr, err = autoexport.NewMetricReader(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize OpenTelemetry metric reader: %w", err)
		}
	}

	if opts.Prefix == "" {
		opts.Prefix = "faultkit"
	}

	mp := metric.NewMeterProvider(
		metric.WithResource(resource),
		metric.WithReader(mr),
	)
	meter = mp.Meter(opts.Prefix)

	return meter, mp.Shutdown, nil
}
