package runner

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/thought-machine/testpackage/src/core"
)

// A Frame is one element of the call stack captured at the point of failure.
type Frame struct {
	Function string // fully qualified function name
	File     string
	Line     int
}

// String implements the fmt.Stringer interface.
func (f Frame) String() string {
	return fmt.Sprintf("%s (%s:%d)", f.Function, f.File, f.Line)
}

// A Failure describes one failed (or assumption-failed) test.
type Failure struct {
	Desc  core.Description
	Err   error
	Stack []Frame
}

// TopFrame returns the innermost captured frame, if any.
func (f *Failure) TopFrame() (Frame, bool) {
	if len(f.Stack) == 0 {
		return Frame{}, false
	}
	return f.Stack[0], true
}

// RootCause returns the innermost wrapped error, or nil if the failure's
// error doesn't wrap anything.
func (f *Failure) RootCause() error {
	cause := f.Err
	for {
		inner := errors.Unwrap(cause)
		if inner == nil {
			break
		}
		cause = inner
	}
	if cause == f.Err {
		return nil
	}
	return cause
}

// SuspectFrame returns the innermost stack frame whose function lives under
// one of the given package prefixes; that is normally the point in the user's
// own test code nearest the failure.
func (f *Failure) SuspectFrame(prefixes []string) (Frame, bool) {
	for _, frame := range f.Stack {
		for _, prefix := range prefixes {
			if strings.HasPrefix(frame.Function, prefix) {
				return frame, true
			}
		}
	}
	return Frame{}, false
}

// callers captures the current call stack, skipping runtime.Callers and then
// the given number of frames, counting this function itself as the first.
func callers(skip int) []Frame {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(skip+1, pcs)
	if n == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pcs[:n])
	stack := make([]Frame, 0, n)
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") {
			stack = append(stack, Frame{Function: frame.Function, File: frame.File, Line: frame.Line})
		}
		if !more {
			break
		}
	}
	return stack
}
