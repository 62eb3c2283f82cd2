package runner

import (
	"fmt"
	"time"

	"github.com/thought-machine/testpackage/src/core"
)

// A Case is a single executable entry in a request.
type Case struct {
	Desc    core.Description
	Run     TestFunc
	Ignored bool
}

// A Request is an ordered set of test cases to execute.
type Request struct {
	Cases []Case
}

// Size returns the number of cases in the request, including ignored ones.
func (r *Request) Size() int {
	return len(r.Cases)
}

// Filter returns a new request containing only the cases the given predicate
// keeps, preserving order.
func (r *Request) Filter(keep func(core.Description) bool) *Request {
	filtered := &Request{Cases: make([]Case, 0, len(r.Cases))}
	for _, c := range r.Cases {
		if keep(c.Desc) {
			filtered.Cases = append(filtered.Cases, c)
		}
	}
	return filtered
}

// Classes returns the distinct class names in the request, in request order.
func (r *Request) Classes() []string {
	seen := map[string]bool{}
	classes := []string{}
	for _, c := range r.Cases {
		if !seen[c.Desc.Class] {
			seen[c.Desc.Class] = true
			classes = append(classes, c.Desc.Class)
		}
	}
	return classes
}

// Run executes the request serially, firing lifecycle events at the
// notifier's listeners, and returns the aggregated result.
// The run stops early, without scoring the remaining tests, once the
// notifier's stop latch is set.
func Run(req *Request, notifier *Notifier) *Result {
	result := &Result{Durations: map[string]time.Duration{}}
	start := time.Now()
	notifier.fireRunStarted(req.Size())
	for _, c := range req.Cases {
		if notifier.StopRequested() {
			break
		}
		runCase(c, notifier, result)
	}
	result.Duration = time.Since(start)
	notifier.fireRunFinished(result)
	return result
}

func runCase(c Case, notifier *Notifier, result *Result) {
	if c.Ignored {
		notifier.fireTestIgnored(c.Desc)
		result.IgnoredCount++
		return
	}
	notifier.fireTestStarted(c.Desc)
	start := time.Now()
	failure, assumption := invoke(c)
	result.Durations[c.Desc.ID()] = time.Since(start)
	if failure == nil {
		result.RunCount++
	} else if assumption {
		result.AssumptionFailureCount++
		result.RunCount++
		notifier.fireTestAssumptionFailure(failure)
	} else {
		result.FailureCount++
		result.Failures = append(result.Failures, failure)
		notifier.fireTestFailure(failure)
	}
	notifier.fireTestFinished(c.Desc)
}

// invoke runs a single test method, converting panics into failures.
func invoke(c Case) (failure *Failure, assumption bool) {
	defer func() {
		if r := recover(); r != nil {
			if abort, ok := r.(*testAbort); ok {
				failure = &Failure{Desc: c.Desc, Err: abort.err, Stack: abort.stack}
				assumption = abort.assumption
			} else {
				err, ok := r.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", r)
				}
				failure = &Failure{Desc: c.Desc, Err: err, Stack: callers(3)}
			}
		}
	}()
	c.Run(&T{desc: c.Desc})
	return nil, false
}
