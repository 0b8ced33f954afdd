package faults

import (
	"context"

	"github.com/italypaleale/faultkit/backtrace"
	"github.com/italypaleale/faultkit/severity"
)

// Report reports a runtime error raised at the caller's location.
func (d *Dispatcher) Report(ctx context.Context, code severity.Code, message string, fields map[string]any) {
	file, line := backtrace.Caller(0)
	d.handleError(ctx, RuntimeError{
		Code:    code,
		Message: message,
		File:    file,
		Line:    line,
		Context: fields,
	}, 2)
}

// Recover handles a panic as an uncaught exception.
// It must be invoked directly with defer:
//
//	defer dispatcher.Recover(ctx)
//
// The panic is not propagated further.
func (d *Dispatcher) Recover(ctx context.Context) {
	r := recover()
	if r == nil {
		return
	}

	d.HandleException(ctx, UncaughtException{
		Payload:   r,
		Backtrace: backtrace.Capture(1),
	})
}

// Go runs fn in a new goroutine, handling panics with Recover.
// The returned channel is closed when fn returns or panics.
func (d *Dispatcher) Go(ctx context.Context, fn func(ctx context.Context)) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer d.Recover(ctx)
		fn(ctx)
	}()
	return done
}
