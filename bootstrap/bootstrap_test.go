package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/italypaleale/faultkit/config"
	"github.com/italypaleale/faultkit/faults"
	"github.com/italypaleale/faultkit/severity"
)

// syncBuffer is a bytes.Buffer safe for concurrent use, since the watcher logs from a background goroutine
type syncBuffer struct {
	lock sync.Mutex
	buf  bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Lines(t *testing.T) []map[string]any {
	t.Helper()

	b.lock.Lock()
	defer b.lock.Unlock()

	var res []map[string]any
	for line := range strings.Lines(b.buf.String()) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		res = append(res, entry)
	}
	return res
}

func faultAt(msg string) faults.RuntimeError {
	return faults.RuntimeError{
		Code:    severity.E_WARNING,
		Message: msg,
		File:    "/app/worker.go",
		Line:    42,
	}
}

func setOtelEnv(t *testing.T) {
	t.Setenv("OTEL_LOGS_EXPORTER", "none")
	t.Setenv("OTEL_METRICS_EXPORTER", "none")
	t.Setenv("OTEL_TRACES_EXPORTER", "none")
}

func TestInit(t *testing.T) {
	setOtelEnv(t)

	t.Run("nil config", func(t *testing.T) {
		_, err := Init(t.Context(), nil, Options{})
		require.Error(t, err)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := Init(t.Context(), &config.Config{ErrorReporting: []string{"E_NOPE"}}, Options{})
		require.Error(t, err)
		var ce *config.ConfigError
		require.ErrorAs(t, err, &ce)
	})

	t.Run("reports errors through the configured logger", func(t *testing.T) {
		out := &syncBuffer{}
		cfg := &config.Config{
			LogAsJSON:      true,
			LoggerName:     "faults",
			ErrorReporting: []string{"E_ALL", "~E_DEPRECATED"},
		}
		stack, err := Init(t.Context(), cfg, Options{Writer: out, AppName: "test"})
		require.NoError(t, err)
		t.Cleanup(func() { _ = stack.Shutdown(context.Background()) })

		stack.Dispatcher.Report(t.Context(), severity.E_DEPRECATED, "old api", nil)
		stack.Dispatcher.Report(t.Context(), severity.E_USER_WARNING, "disk almost full", nil)

		lines := out.Lines(t)
		require.Len(t, lines, 1)
		assert.Equal(t, "WARNING", lines[0]["level"])
		assert.Equal(t, "faults", lines[0]["logger"])
		assert.Equal(t, "test", lines[0]["app"])
		assert.Contains(t, lines[0]["msg"], "disk almost full")
	})

	t.Run("logger levels", func(t *testing.T) {
		out := &syncBuffer{}
		cfg := &config.Config{
			LogAsJSON: true,
			Loggers: map[string]config.LoggerConfig{
				"root": {Level: "error"},
			},
		}
		stack, err := Init(t.Context(), cfg, Options{Writer: out})
		require.NoError(t, err)
		t.Cleanup(func() { _ = stack.Shutdown(context.Background()) })

		stack.Dispatcher.Report(t.Context(), severity.E_NOTICE, "dropped by level", nil)
		stack.Dispatcher.Report(t.Context(), severity.E_USER_ERROR, "kept", nil)

		lines := out.Lines(t)
		require.Len(t, lines, 1)
		assert.Equal(t, "ERROR", lines[0]["level"])
	})

	t.Run("suppression window", func(t *testing.T) {
		out := &syncBuffer{}
		cfg := &config.Config{
			LogAsJSON:      true,
			SuppressWindow: time.Minute,
		}
		stack, err := Init(t.Context(), cfg, Options{Writer: out})
		require.NoError(t, err)
		t.Cleanup(func() { _ = stack.Shutdown(context.Background()) })

		for range 3 {
			stack.Dispatcher.HandleError(t.Context(), faultAt("repeated"))
		}

		assert.Len(t, out.Lines(t), 1)
	})

	t.Run("metrics", func(t *testing.T) {
		out := &syncBuffer{}
		reader := metric.NewManualReader()
		cfg := &config.Config{
			LogAsJSON:     true,
			EnableMetrics: true,
		}
		stack, err := Init(t.Context(), cfg, Options{Writer: out, MetricReader: reader})
		require.NoError(t, err)
		t.Cleanup(func() { _ = stack.Shutdown(context.Background()) })

		stack.Dispatcher.Report(t.Context(), severity.E_USER_ERROR, "counted", nil)

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(t.Context(), &rm))

		var names []string
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				names = append(names, m.Name)
			}
		}
		assert.Contains(t, names, "faultkit.faults")
	})

	t.Run("traces", func(t *testing.T) {
		ratio := 0.5
		cfg := &config.Config{
			EnableTraces:     true,
			TraceSampleRatio: &ratio,
		}
		stack, err := Init(t.Context(), cfg, Options{Writer: &syncBuffer{}})
		require.NoError(t, err)
		require.NoError(t, stack.Shutdown(t.Context()))
	})
}

func TestWatchConfig(t *testing.T) {
	setOtelEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig := func(reporting string) {
		t.Helper()
		data := "logAsJson: true\nwatchConfig: true\nerrorReporting:\n  - " + reporting + "\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	}

	writeConfig("E_ALL")
	cfg := &config.Config{}
	require.NoError(t, config.ReloadConfig(cfg, path))

	out := &syncBuffer{}
	stack, err := Init(t.Context(), cfg, Options{Writer: out})
	require.NoError(t, err)
	t.Cleanup(func() { _ = stack.Shutdown(context.Background()) })

	assert.Equal(t, severity.E_ALL, stack.Runtime.ReportingMask())

	writeConfig("E_USER_ERROR")
	assert.Eventually(t, func() bool {
		return stack.Runtime.ReportingMask() == severity.E_USER_ERROR
	}, 5*time.Second, 50*time.Millisecond)

	// An invalid file keeps the current mask
	writeConfig("E_NOPE")
	assert.Eventually(t, func() bool {
		for _, line := range out.Lines(t) {
			if line["msg"] == "Failed to reload configuration; keeping the current error reporting mask" {
				return true
			}
		}
		return false
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, severity.E_USER_ERROR, stack.Runtime.ReportingMask())

	require.NoError(t, stack.Shutdown(t.Context()))
}
