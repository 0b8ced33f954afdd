// Package faults intercepts runtime faults and turns them into structured, leveled log entries.
//
// Three kinds of faults are handled:
//
//   - Runtime errors (RuntimeError), reported with Report or HandleError. They are filtered by the reporting mask, classified into a log level from their code, and logged with the call stack.
//   - Uncaught exceptions (UncaughtException), such as panics recovered with Recover or by the HTTP middleware. They are always logged at the error level.
//   - Fatal faults recorded before the process exits, which are logged by HandleShutdown.
//
// Each kind has a handler chain: handlers that were installed before the Dispatcher keep running, before the Dispatcher's own logic, and their failures are isolated.
// Chains are built once in NewDispatcher and are read-only afterwards, so a Dispatcher can be used from multiple goroutines.
package faults

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	api "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/italypaleale/faultkit/backtrace"
	"github.com/italypaleale/faultkit/chain"
	"github.com/italypaleale/faultkit/registry"
	"github.com/italypaleale/faultkit/severity"
	slogkit "github.com/italypaleale/faultkit/slog"
	"github.com/italypaleale/faultkit/suppress"
)

// ExceptionMarker is the message logged before each uncaught exception.
const ExceptionMarker = "Error catcher has catch:"

var errNoLogger = errors.New("logger not found")

// LoggerSource returns loggers by name.
type LoggerSource interface {
	GetLogger(name string) slogkit.Logger
}

// Suppressor decides whether a fault with the given fingerprint is logged.
// It is implemented by *suppress.Window.
type Suppressor interface {
	Allow(key string) bool
}

// Handlers contains a handler chain for each kind of fault.
// Any of the fields may be nil.
type Handlers struct {
	Error     chain.Handler[RuntimeError]
	Exception chain.Handler[UncaughtException]
	Shutdown  chain.Handler[ExitSignal]
}

// Options contains options for NewDispatcher.
type Options struct {
	// Source of the loggers; required.
	Loggers LoggerSource
	// Name of the logger faults are written to.
	// This is optional, and defaults to "root".
	LoggerName string
	// Runtime state.
	// This is optional, and defaults to a ProcessRuntime reporting E_ALL.
	Runtime Runtime
	// Handlers installed before this dispatcher, which are invoked before the dispatcher's own logic.
	Previous Handlers
	// Optional suppressor for repeated runtime errors.
	Suppressor Suppressor
	// Optional meter used to count faults.
	Meter api.Meter
}

// Dispatcher receives faults, classifies them and logs them.
type Dispatcher struct {
	loggers    LoggerSource
	loggerName string
	runtime    Runtime
	suppressor Suppressor
	metrics    *faultMetrics
	handlers   Handlers
}

// NewDispatcher returns a new Dispatcher.
func NewDispatcher(opts Options) (*Dispatcher, error) {
	if opts.Loggers == nil {
		return nil, errors.New("option Loggers is required")
	}
	if opts.LoggerName == "" {
		opts.LoggerName = registry.RootLogger
	}
	if opts.Runtime == nil {
		opts.Runtime = NewProcessRuntime(severity.E_ALL)
	}

	metrics, err := newFaultMetrics(opts.Meter)
	if err != nil {
		return nil, err
	}

	d := &Dispatcher{
		loggers:    opts.Loggers,
		loggerName: opts.LoggerName,
		runtime:    opts.Runtime,
		suppressor: opts.Suppressor,
		metrics:    metrics,
	}

	d.handlers = Handlers{
		Error:     d.filterError(chain.Link(d.logError, opts.Previous.Error)),
		Exception: chain.Link(d.logException, opts.Previous.Exception),
		Shutdown:  chain.Link(d.replayFatal, opts.Previous.Shutdown),
	}

	return d, nil
}

// Handlers returns the dispatcher's handler chains.
// They can be passed as Options.Previous to another Dispatcher, to add a further layer on top of this one.
func (d *Dispatcher) Handlers() Handlers {
	return d.handlers
}

// Runtime returns the Runtime used by the dispatcher.
func (d *Dispatcher) Runtime() Runtime {
	return d.runtime
}

// HandleError handles a runtime error.
// If the code is not enabled in the reporting mask, it returns right away.
// Otherwise, the call stack of the caller is added to the context (unless it already contains one), the previous error handlers are invoked, and the error is logged at the level matching its code.
func (d *Dispatcher) HandleError(ctx context.Context, f RuntimeError) {
	d.handleError(ctx, f, 2)
}

// skip is the number of frames hidden from the captured stack, starting with handleError itself.
func (d *Dispatcher) handleError(ctx context.Context, f RuntimeError, skip int) {
	defer containPanic()

	if !d.runtime.ReportingMask().Allows(f.Code) {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	f.Context = Enrich(f.Context, skip)

	// The dispatcher must never fail into the code that raised the fault
	_ = chain.Call(ctx, d.handlers.Error, f)
}

// HandleException handles an uncaught exception.
// The previous exception handlers are invoked, then the exception is logged at the error level.
// It never panics.
func (d *Dispatcher) HandleException(ctx context.Context, e UncaughtException) {
	defer containPanic()

	if ctx == nil {
		ctx = context.Background()
	}
	_ = chain.Call(ctx, d.handlers.Exception, e)
}

// HandleShutdown must be invoked when the process is terminating.
// If the runtime has recorded a fatal fault, it is logged through the error path; otherwise, nothing happens.
func (d *Dispatcher) HandleShutdown(ctx context.Context) {
	defer containPanic()

	if ctx == nil {
		ctx = context.Background()
	}
	_ = chain.Call(ctx, d.handlers.Shutdown, ExitSignal{})
}

// Enrich returns a copy of fields with the call stack added under BacktraceKey.
// If fields already contains a backtrace, it is preserved.
// The captured stack starts at the caller of Enrich, after discarding skip frames.
func Enrich(fields map[string]any, skip int) map[string]any {
	res := make(map[string]any, len(fields)+2)
	maps.Copy(res, fields)
	_, ok := res[BacktraceKey]
	if !ok {
		res[BacktraceKey] = backtrace.Capture(skip + 1)
	}
	return res
}

// FormatError returns the log message for a runtime error.
func FormatError(f RuntimeError) string {
	return "[" + strings.Join(severity.Describe(f.Code), "|") + "(" + strconv.FormatUint(uint64(f.Code), 10) + ")] in " +
		f.File + " at line " + strconv.Itoa(f.Line) +
		" message: " + f.Message + ", context: {}"
}

func (d *Dispatcher) filterError(next chain.Handler[RuntimeError]) chain.Handler[RuntimeError] {
	return func(ctx context.Context, f RuntimeError) error {
		if !d.runtime.ReportingMask().Allows(f.Code) {
			return nil
		}
		return next(ctx, f)
	}
}

func (d *Dispatcher) logError(ctx context.Context, f RuntimeError) error {
	fields := Enrich(f.Context, 1)
	level := severity.Classify(f.Code)
	msg := FormatError(f)

	if d.suppressor != nil {
		key := suppress.Key(strconv.FormatUint(uint64(f.Code), 10), f.File, strconv.Itoa(f.Line), f.Message)
		if !d.suppressor.Allow(key) {
			d.metrics.recordSuppressed(ctx, level)
			return nil
		}
	}

	log := d.logger()
	if log == nil {
		return errNoLogger
	}

	fields[FaultIDKey] = uuid.NewString()
	log.Log(ctx, level, msg, fields)
	d.metrics.recordFault(ctx, kindError, level)

	return nil
}

func (d *Dispatcher) logException(ctx context.Context, e UncaughtException) error {
	log := d.logger()
	if log == nil {
		return errNoLogger
	}

	log.Log(ctx, slogkit.LevelError, ExceptionMarker, nil)

	msg, described := describePayload(e.Payload)
	fields := map[string]any{
		"exception":      e.Payload,
		"exception_type": fmt.Sprintf("%T", e.Payload),
		FaultIDKey:       uuid.NewString(),
	}
	if e.Code != 0 {
		fields["code"] = e.Code
	}
	if len(e.Backtrace) > 0 {
		fields[BacktraceKey] = e.Backtrace
	}

	log.Log(ctx, slogkit.LevelError, msg, fields)
	d.metrics.recordFault(ctx, kindException, slogkit.LevelError)

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		// A payload whose Error method panics is recorded by its description
		err, ok := e.Payload.(error)
		if !ok || !described {
			err = errors.New(msg)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)
	}

	return nil
}

func (d *Dispatcher) replayFatal(ctx context.Context, _ ExitSignal) error {
	fatal, ok := d.runtime.LastFatal()
	if !ok {
		return nil
	}

	return d.handlers.Error(ctx, RuntimeError{
		Code:    fatal.Code,
		Message: fatal.Message,
		File:    fatal.File,
		Line:    fatal.Line,
		Context: map[string]any{
			BacktraceKey: backtrace.FromLocation(fatal.File, fatal.Line),
		},
	})
}

// Loggers are resolved on each fault so replacements in the source are picked up right away.
func (d *Dispatcher) logger() slogkit.Logger {
	return d.loggers.GetLogger(d.loggerName)
}

// describePayload returns the log message for an exception payload.
// If the payload's Error or String method panics, as with typed nil pointers, the message is the payload's type and ok is false.
func describePayload(payload any) (msg string, ok bool) {
	defer func() {
		if recover() != nil {
			msg = fmt.Sprintf("%T", payload)
			ok = false
		}
	}()

	switch x := payload.(type) {
	case nil:
		return "<nil>", true
	case error:
		return x.Error(), true
	case string:
		return x, true
	case fmt.Stringer:
		return x.String(), true
	default:
		return fmt.Sprintf("%v", x), true
	}
}

// containPanic stops a panic raised inside the dispatcher from reaching the code that reported the fault.
// It must be invoked directly with defer.
func containPanic() {
	_ = recover()
}
