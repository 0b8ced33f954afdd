package faults

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	api "go.opentelemetry.io/otel/metric"

	slogkit "github.com/italypaleale/faultkit/slog"
)

const (
	kindError     = "error"
	kindException = "exception"
)

type faultMetrics struct {
	faults     api.Int64Counter
	suppressed api.Int64Counter
}

func newFaultMetrics(meter api.Meter) (*faultMetrics, error) {
	if meter == nil {
		return nil, nil
	}

	var (
		m   faultMetrics
		err error
	)
	m.faults, err = meter.Int64Counter(
		"faultkit.faults",
		api.WithDescription("The number of faults that were logged"),
		api.WithUnit("{fault}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create faultkit.faults counter: %w", err)
	}

	m.suppressed, err = meter.Int64Counter(
		"faultkit.faults.suppressed",
		api.WithDescription("The number of faults that were not logged because they repeated within the suppression window"),
		api.WithUnit("{fault}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create faultkit.faults.suppressed counter: %w", err)
	}

	return &m, nil
}

func (m *faultMetrics) recordFault(ctx context.Context, kind string, level slogkit.Level) {
	if m == nil {
		return
	}
	m.faults.Add(ctx, 1,
		api.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("level", level.String()),
		),
	)
}

func (m *faultMetrics) recordSuppressed(ctx context.Context, level slogkit.Level) {
	if m == nil {
		return
	}
	m.suppressed.Add(ctx, 1,
		api.WithAttributes(attribute.String("level", level.String())),
	)
}
