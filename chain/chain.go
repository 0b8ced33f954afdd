// Package chain composes fault handlers so that a newly installed handler keeps the previously installed one running.
//
// A chain is append-only: Link wraps a previous handler, which is invoked first, inside an isolation boundary.
// Whatever the previous handler does (returning an error or panicking), the new handler always runs.
package chain

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Handler handles a fault signal of type T.
type Handler[T any] func(ctx context.Context, signal T) error

// PanicError is returned by Call when the handler panicked.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panicked: %v", e.Value)
}

// Unwrap returns the panic value if it's an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Call invokes h within an isolation boundary: a panic in h is recovered and returned as a *PanicError.
// Calling a nil handler is a no-op.
func Call[T any](ctx context.Context, h Handler[T], signal T) (err error) {
	if h == nil {
		return nil
	}

	defer func() {
		r := recover()
		if r != nil {
			err = &PanicError{
				Value: r,
				Stack: debug.Stack(),
			}
		}
	}()

	return h(ctx, signal)
}

// Link returns a handler that invokes previous (if not nil) and then handler.
// The outcome of previous is discarded: it can neither stop handler from running nor surface to the caller.
func Link[T any](handler Handler[T], previous Handler[T]) Handler[T] {
	if previous == nil {
		return handler
	}

	return func(ctx context.Context, signal T) error {
		// Failures of previously-installed handlers are dropped on purpose
		_ = Call(ctx, previous, signal)

		return Call(ctx, handler, signal)
	}
}

// Compose links handlers in order, so they are invoked from the first to the last.
// Nil handlers are skipped.
func Compose[T any](handlers ...Handler[T]) Handler[T] {
	var res Handler[T]
	for _, h := range handlers {
		if h == nil {
			continue
		}
		res = Link(h, res)
	}
	return res
}
