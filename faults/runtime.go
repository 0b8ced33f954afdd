package faults

import (
	"sync/atomic"

	"github.com/italypaleale/faultkit/backtrace"
	"github.com/italypaleale/faultkit/severity"
)

// Runtime provides the state of the process that the dispatcher depends on.
type Runtime interface {
	// ReportingMask returns the error codes that are currently reported.
	ReportingMask() severity.Mask
	// LastFatal returns the last fatal fault recorded, if any.
	LastFatal() (ShutdownFault, bool)
}

// ProcessRuntime is a Runtime whose state can be changed at any time, safely from multiple goroutines.
type ProcessRuntime struct {
	mask      atomic.Uint32
	lastFatal atomic.Pointer[ShutdownFault]
}

// NewProcessRuntime returns a new ProcessRuntime with the given reporting mask.
func NewProcessRuntime(mask severity.Mask) *ProcessRuntime {
	r := &ProcessRuntime{}
	r.mask.Store(uint32(mask))
	return r
}

// ReportingMask implements Runtime.
func (r *ProcessRuntime) ReportingMask() severity.Mask {
	return severity.Mask(r.mask.Load())
}

// SetReportingMask changes the reporting mask and returns the previous one.
func (r *ProcessRuntime) SetReportingMask(mask severity.Mask) severity.Mask {
	return severity.Mask(r.mask.Swap(uint32(mask)))
}

// LastFatal implements Runtime.
func (r *ProcessRuntime) LastFatal() (ShutdownFault, bool) {
	f := r.lastFatal.Load()
	if f == nil {
		return ShutdownFault{}, false
	}
	return *f, true
}

// RecordFatal stores f as the last fatal fault.
// Fatal faults are not logged when they are recorded: they are reported by the shutdown handler.
func (r *ProcessRuntime) RecordFatal(f ShutdownFault) {
	r.lastFatal.Store(&f)
}

// ReportFatal records a fatal fault located at the caller of ReportFatal.
func (r *ProcessRuntime) ReportFatal(code severity.Code, message string) {
	file, line := backtrace.Caller(0)
	r.RecordFatal(ShutdownFault{
		Code:    code,
		Message: message,
		File:    file,
		Line:    line,
	})
}

// ClearFatal removes the last fatal fault.
func (r *ProcessRuntime) ClearFatal() {
	r.lastFatal.Store(nil)
}
