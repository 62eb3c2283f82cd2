package runner

import (
	"fmt"

	"github.com/thought-machine/testpackage/src/core"
)

// A T is the handle passed to each test method, through which it reports
// failures, violated assumptions and log output.
type T struct {
	desc core.Description
}

// Desc returns the description of the currently executing test.
func (t *T) Desc() core.Description {
	return t.desc
}

// Fatalf fails the test immediately with a formatted message.
func (t *T) Fatalf(format string, args ...interface{}) {
	panic(&testAbort{err: &AssertionError{Msg: fmt.Sprintf(format, args...)}, stack: callers(2)})
}

// Fatal fails the test immediately with the given error. The error's chain is
// preserved so failure reports can identify a root cause.
func (t *T) Fatal(err error) {
	panic(&testAbort{err: err, stack: callers(2)})
}

// Assert fails the test if the condition doesn't hold.
func (t *T) Assert(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(&testAbort{err: &AssertionError{Msg: fmt.Sprintf(format, args...)}, stack: callers(2)})
	}
}

// Assume abandons the test without failing it if the condition doesn't hold.
// This corresponds to an assumption failure; the test counts as run but not
// as passed or failed.
func (t *T) Assume(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(&testAbort{err: &AssumptionError{Msg: fmt.Sprintf(format, args...)}, stack: callers(2), assumption: true})
	}
}

// An AssertionError is the error raised by a failing assertion.
type AssertionError struct {
	Msg string
}

func (e *AssertionError) Error() string { return e.Msg }

// An AssumptionError indicates a test's assumptions didn't hold; it's treated
// as a skip rather than a failure.
type AssumptionError struct {
	Msg string
}

func (e *AssumptionError) Error() string { return e.Msg }

// testAbort is the panic payload used to unwind out of a test method.
type testAbort struct {
	err        error
	stack      []Frame
	assumption bool
}
