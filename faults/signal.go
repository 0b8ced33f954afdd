package faults

import (
	"github.com/italypaleale/faultkit/backtrace"
	"github.com/italypaleale/faultkit/severity"
)

// BacktraceKey is the key in the context map that contains the call stack ([]backtrace.Frame) of a fault.
const BacktraceKey = backtrace.ContextKey

// FaultIDKey is the key in the context map that contains the unique ID assigned to each logged fault.
const FaultIDKey = "fault_id"

// RuntimeError is a non-fatal error reported while the process is running.
type RuntimeError struct {
	Code    severity.Code
	Message string
	File    string
	Line    int
	Context map[string]any
}

// UncaughtException is a failure that reached the top of a call stack without being handled, such as a recovered panic.
type UncaughtException struct {
	// Payload is the value that was raised: an error, or any value passed to panic.
	Payload any
	// Code is an optional status code associated with the failure (for example, an HTTP status); 0 means absent.
	Code int
	// Backtrace, if set, is the call stack where the failure was intercepted.
	Backtrace []backtrace.Frame
}

// ShutdownFault is the last fatal fault recorded before the process exits.
type ShutdownFault struct {
	Code    severity.Code
	Message string
	File    string
	Line    int
}

// ExitSignal is passed to shutdown handlers.
type ExitSignal struct{}
