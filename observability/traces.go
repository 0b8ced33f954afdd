package observability

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/contrib/exporters/autoexport"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdkTrace "go.opentelemetry.io/otel/sdk/trace"

	kitconfig "github.com/italypaleale/faultkit/config"
)

// InitTracesOpts contains options for the InitTraces method
type InitTracesOpts struct {
	Config  kitconfig.Base
	AppName string
	// Ratio of sampled traces, between 0 and 1
	// If nil, the default sampler is used
	SampleRatio *float64
}

// InitTraces initializes the tracing provider using OpenTelemetry.
// Exceptions handled by the fault dispatcher are recorded on the spans created with this provider.
func InitTraces(ctx context.Context, opts InitTracesOpts) (traceProvider *sdkTrace.TracerProvider, shutdownFn func(ctx context.Context) error, err error) {
	resource, err := opts.Config.GetOtelResource(opts.AppName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get OpenTelemetry resource: %w", err)
	}

	// Get the trace exporter
	// If the env var OTEL_TRACES_EXPORTER is empty, we set it to "none"
	if os.Getenv("OTEL_TRACES_EXPORTER") == "" {
		_ = os.Setenv("OTEL_TRACES_EXPORTER", "none") //nolint:errcheck
	}
	exporter, err := autoexport.NewSpanExporter(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize OpenTelemetry span exporter: %w", err)
	}

	// Init the trace provider
	tracerOpts := []sdkTrace.TracerProviderOption{
		sdkTrace.WithResource(resource),
		sdkTrace.WithBatcher(exporter),
	}
	if opts.SampleRatio != nil {
		tracerOpts = append(tracerOpts, sdkTrace.WithSampler(
			sdkTrace.ParentBased(sdkTrace.TraceIDRatioBased(*opts.SampleRatio)),
		))
	}

	traceProvider = sdkTrace.NewTracerProvider(tracerOpts...)
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}),
	)

	// Shutting down the provider flushes and shuts down the exporter too
	return traceProvider, traceProvider.Shutdown, nil
}
