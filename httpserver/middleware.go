package httpserver

import (
	"context"
	"net/http"

	"github.com/italypaleale/faultkit/backtrace"
	"github.com/italypaleale/faultkit/faults"
)

// Middleware type is a function that takes an http.Handler and returns another http.Handler
type Middleware func(next http.Handler) http.Handler

// Use applies middlewares to the handler
// The last middleware is the outermost one.
func Use(h http.Handler, middlewares ...Middleware) http.Handler {
	for _, middleware := range middlewares {
		h = middleware(h)
	}
	return h
}

// ExceptionHandler receives uncaught exceptions.
// It is implemented by *faults.Dispatcher.
type ExceptionHandler interface {
	HandleException(ctx context.Context, e faults.UncaughtException)
}

// MiddlewareRecover is a middleware that recovers panics in the handler.
// The panic value is passed to h as an uncaught exception with code 500, and the client receives ErrInternal.
// http.ErrAbortHandler is re-raised so net/http can abort the response.
func MiddlewareRecover(h ExceptionHandler) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler { //nolint:errorlint
					panic(rec)
				}

				h.HandleException(r.Context(), faults.UncaughtException{
					Payload:   rec,
					Code:      http.StatusInternalServerError,
					Backtrace: backtrace.Capture(1),
				})

				ErrInternal.WriteResponse(w, r)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
