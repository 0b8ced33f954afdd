package faults

import (
	"context"
	"sync"

	"github.com/italypaleale/faultkit/severity"
	slogkit "github.com/italypaleale/faultkit/slog"
)

type logEntry struct {
	Level   slogkit.Level
	Message string
	Fields  map[string]any
}

// recordingLogger is a Logger that stores all entries in memory.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) Log(_ context.Context, level slogkit.Level, msg string, fields map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{Level: level, Message: msg, Fields: fields})
}

func (l *recordingLogger) Entries() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	res := make([]logEntry, len(l.entries))
	copy(res, l.entries)
	return res
}

// panickingLogger is a Logger that always panics.
type panickingLogger struct{}

func (panickingLogger) Log(context.Context, slogkit.Level, string, map[string]any) {
	panic("logger is broken")
}

// staticSource returns the same logger for every name.
type staticSource struct {
	log slogkit.Logger
}

func (s staticSource) GetLogger(string) slogkit.Logger {
	return s.log
}

// nilPointerError is an error type whose Error method dereferences its receiver.
type nilPointerError struct {
	reason string
}

func (e *nilPointerError) Error() string {
	return e.reason
}

// brokenRuntime is a Runtime whose methods always panic.
type brokenRuntime struct{}

func (brokenRuntime) ReportingMask() severity.Mask {
	panic("mask unavailable")
}

func (brokenRuntime) LastFatal() (ShutdownFault, bool) {
	panic("fatal state unavailable")
}
