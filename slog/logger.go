package slog

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/italypaleale/faultkit/backtrace"
)

// Logger is implemented by objects that can emit leveled log entries.
// Implementations must never fail: errors while writing logs are the logger's own concern.
type Logger interface {
	Log(ctx context.Context, level Level, msg string, fields map[string]any)
}

// SlogLogger is a Logger that writes to a *slog.Logger.
type SlogLogger struct {
	log *slog.Logger
	min Level
}

// NewSlogLogger returns a new SlogLogger.
// If log is nil, slog.Default() is used.
func NewSlogLogger(log *slog.Logger) *SlogLogger {
	if log == nil {
		log = slog.Default()
	}
	return &SlogLogger{
		log: log,
		min: LevelDebug,
	}
}

// WithMinLevel returns a copy of the logger that drops entries below the given level.
// This is applied on top of the level configured in the slog handler.
func (l *SlogLogger) WithMinLevel(level Level) *SlogLogger {
	return &SlogLogger{
		log: l.log,
		min: level,
	}
}

// With returns a copy of the logger with the given attributes added to every entry.
func (l *SlogLogger) With(args ...any) *SlogLogger {
	return &SlogLogger{
		log: l.log.With(args...),
		min: l.min,
	}
}

// Slog returns the underlying *slog.Logger.
func (l *SlogLogger) Slog() *slog.Logger {
	return l.log
}

// Log implements the Logger interface.
// Fields are added as attributes, sorted by key.
func (l *SlogLogger) Log(ctx context.Context, level Level, msg string, fields map[string]any) {
	if level < l.min {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var attrs []slog.Attr
	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		attrs = make([]slog.Attr, len(keys))
		for i, k := range keys {
			attrs[i] = slog.Any(k, fields[k])
		}
	}

	l.log.LogAttrs(ctx, level.Slog(), msg, attrs...)
}

func (l *SlogLogger) Emergency(ctx context.Context, msg string, fields map[string]any) {
	l.Log(ctx, LevelEmergency, msg, fields)
}

func (l *SlogLogger) Alert(ctx context.Context, msg string, fields map[string]any) {
	l.Log(ctx, LevelAlert, msg, fields)
}

func (l *SlogLogger) Critical(ctx context.Context, msg string, fields map[string]any) {
	l.Log(ctx, LevelCritical, msg, fields)
}

func (l *SlogLogger) Error(ctx context.Context, msg string, fields map[string]any) {
	l.Log(ctx, LevelError, msg, fields)
}

func (l *SlogLogger) Warning(ctx context.Context, msg string, fields map[string]any) {
	l.Log(ctx, LevelWarning, msg, fields)
}

func (l *SlogLogger) Notice(ctx context.Context, msg string, fields map[string]any) {
	l.Log(ctx, LevelNotice, msg, fields)
}

func (l *SlogLogger) Info(ctx context.Context, msg string, fields map[string]any) {
	l.Log(ctx, LevelInfo, msg, fields)
}

func (l *SlogLogger) Debug(ctx context.Context, msg string, fields map[string]any) {
	l.Log(ctx, LevelDebug, msg, fields)
}

// Crit logs at the critical level, adding the caller's stack to the fields.
func (l *SlogLogger) Crit(ctx context.Context, msg string, fields map[string]any) {
	l.Log(ctx, LevelCritical, msg, withBacktrace(fields))
}

// Emerg logs at the emergency level, adding the caller's stack to the fields.
func (l *SlogLogger) Emerg(ctx context.Context, msg string, fields map[string]any) {
	l.Log(ctx, LevelEmergency, msg, withBacktrace(fields))
}

// Err logs at the error level, adding the caller's stack to the fields.
func (l *SlogLogger) Err(ctx context.Context, msg string, fields map[string]any) {
	l.Log(ctx, LevelError, msg, withBacktrace(fields))
}

// Warn logs at the warning level, adding the caller's stack to the fields.
func (l *SlogLogger) Warn(ctx context.Context, msg string, fields map[string]any) {
	l.Log(ctx, LevelWarning, msg, withBacktrace(fields))
}

// withBacktrace returns a copy of fields with the stack of the alias method's caller under backtrace.ContextKey.
// The stack in fields is replaced if present.
func withBacktrace(fields map[string]any) map[string]any {
	res := make(map[string]any, len(fields)+1)
	maps.Copy(res, fields)
	// Skip withBacktrace and the alias method
	res[backtrace.ContextKey] = backtrace.Capture(2)
	return res
}
