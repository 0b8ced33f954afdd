// Package backtrace captures call stacks to attach to fault records.
package backtrace

import (
	"runtime"
	"strconv"
)

// Maximum number of frames captured
const maxDepth = 64

// ContextKey is the key under which a call stack is stored in a log entry's fields.
const ContextKey = "debug_backtrace"

// Frame is a single call site.
type Frame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function,omitempty"`
}

// String returns the frame as "function file:line".
func (f Frame) String() string {
	loc := f.File + ":" + strconv.Itoa(f.Line)
	if f.Function == "" {
		return loc
	}
	return f.Function + " " + loc
}

// Capture returns the call stack of the calling goroutine, starting from the caller of Capture.
// The innermost call comes first and the oldest call site last.
// skip is the number of additional frames to discard from the top, to hide helper functions.
// The result is never nil.
func Capture(skip int) []Frame {
	if skip < 0 {
		skip = 0
	}

	pcs := make([]uintptr, maxDepth)
	// Skip runtime.Callers and Capture
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return []Frame{}
	}

	res := make([]Frame, 0, n)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.PC != 0 || frame.File != "" {
			res = append(res, Frame{
				File:     frame.File,
				Line:     frame.Line,
				Function: frame.Function,
			})
		}
		if !more {
			break
		}
	}

	return res
}

// FromLocation returns a single-frame stack pointing to file and line.
// It is used for faults reconstructed after the fact, when the real stack is gone.
func FromLocation(file string, line int) []Frame {
	return []Frame{{File: file, Line: line}}
}

// Caller returns the file and line of the caller of the function that invokes Caller, skipping the given number of additional frames.
func Caller(skip int) (file string, line int) {
	_, file, line, ok := runtime.Caller(skip + 2)
	if !ok {
		return "unknown", 0
	}
	return file, line
}
