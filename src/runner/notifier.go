package runner

import (
	"time"

	"github.com/thought-machine/testpackage/src/core"
)

// A Listener is notified of test lifecycle events. Events are fired serially
// on a single goroutine; implementations need no internal locking.
// TestStarted is always observed strictly before TestFailure / TestFinished
// for the same description.
type Listener interface {
	RunStarted(testCount int)
	TestStarted(desc core.Description)
	TestFailure(failure *Failure)
	TestAssumptionFailure(failure *Failure)
	TestIgnored(desc core.Description)
	TestFinished(desc core.Description)
	RunFinished(result *Result)
}

// A Result aggregates the outcome of a whole run.
type Result struct {
	RunCount               int // tests that completed without failing
	FailureCount           int
	IgnoredCount           int
	AssumptionFailureCount int
	Duration               time.Duration
	Failures               []*Failure
	// Durations holds the observed wall-clock cost of each executed test, keyed by test id.
	Durations map[string]time.Duration
}

// WasSuccessful returns true if no test failed.
func (r *Result) WasSuccessful() bool {
	return r.FailureCount == 0
}

// FailedIDs returns the set of test ids that failed during the run.
func (r *Result) FailedIDs() map[string]bool {
	failed := make(map[string]bool, len(r.Failures))
	for _, f := range r.Failures {
		failed[f.Desc.ID()] = true
	}
	return failed
}

// A Notifier dispatches lifecycle events to a set of listeners and carries
// the stop latch used to abort a run early.
type Notifier struct {
	listeners []Listener
	stopped   bool
}

// NewNotifier returns a notifier with the given listeners attached.
func NewNotifier(listeners ...Listener) *Notifier {
	return &Notifier{listeners: listeners}
}

// AddListener attaches another listener.
func (n *Notifier) AddListener(l Listener) {
	n.listeners = append(n.listeners, l)
}

// PleaseStop requests that the run stops before the next test begins.
// It is a one-way latch.
func (n *Notifier) PleaseStop() {
	n.stopped = true
}

// StopRequested returns true once PleaseStop has been called.
func (n *Notifier) StopRequested() bool {
	return n.stopped
}

func (n *Notifier) fireRunStarted(count int) {
	for _, l := range n.listeners {
		l.RunStarted(count)
	}
}

func (n *Notifier) fireTestStarted(desc core.Description) {
	for _, l := range n.listeners {
		l.TestStarted(desc)
	}
}

func (n *Notifier) fireTestFailure(f *Failure) {
	for _, l := range n.listeners {
		l.TestFailure(f)
	}
}

func (n *Notifier) fireTestAssumptionFailure(f *Failure) {
	for _, l := range n.listeners {
		l.TestAssumptionFailure(f)
	}
}

func (n *Notifier) fireTestIgnored(desc core.Description) {
	for _, l := range n.listeners {
		l.TestIgnored(desc)
	}
}

func (n *Notifier) fireTestFinished(desc core.Description) {
	for _, l := range n.listeners {
		l.TestFinished(desc)
	}
}

func (n *Notifier) fireRunFinished(result *Result) {
	for _, l := range n.listeners {
		l.RunFinished(result)
	}
}
