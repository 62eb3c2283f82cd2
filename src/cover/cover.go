// Package cover implements the persisted coverage repository: per-test
// coverage bitmaps plus cost and failure history, accumulated across runs.
//
// The on-disk layout is a directory of three files:
//
//	probes    binary; the global probe-point count followed by one record
//	          per test of {id, bitmap}.
//	costs     lines of testId=milliseconds.
//	failures  lines of testId=runsSinceLastFailure.
//
// The bitmaps themselves are produced by the instrumentation agent; this
// package only round-trips and accumulates them.
package cover

import (
	"time"

	"github.com/thought-machine/testpackage/src/cli/logging"
	"github.com/thought-machine/testpackage/src/core"
)

var log = logging.Log

// A TestWithCoverage pairs a test with its last known coverage bitmap and
// wall-clock cost. It is immutable once loaded; consumers clone the bitmap
// before mutating it.
type TestWithCoverage struct {
	ID       string
	Coverage *core.Bitset
	Cost     time.Duration
}

// CoverageFraction returns the fraction of all probe points this test covers.
func (t *TestWithCoverage) CoverageFraction() float64 {
	if t.Coverage.Len() == 0 {
		return 0
	}
	return float64(t.Coverage.Cardinality()) / float64(t.Coverage.Len())
}

// A Repository is the full persisted state. Probes is the global probe-point
// count; every bitmap in Tests has exactly that width. Failures maps test ids
// to the number of runs since that test last failed (zero meaning it failed
// on the most recent run that observed it); tests that have never failed are
// absent. Costs remembers the last observed duration of every test, whether
// or not a bitmap exists for it yet.
type Repository struct {
	Probes   int
	Tests    map[string]*TestWithCoverage
	Costs    map[string]time.Duration
	Failures map[string]int
}

// NewRepository returns an empty repository with the given probe count.
func NewRepository(probes int) *Repository {
	return &Repository{
		Probes:   probes,
		Tests:    map[string]*TestWithCoverage{},
		Costs:    map[string]time.Duration{},
		Failures: map[string]int{},
	}
}

// Empty returns true if the repository contains no coverage data at all.
func (r *Repository) Empty() bool {
	return len(r.Tests) == 0
}

// Add records a test's coverage bitmap, replacing any previous one.
func (r *Repository) Add(id string, coverage *core.Bitset, cost time.Duration) {
	r.Tests[id] = &TestWithCoverage{ID: id, Coverage: coverage, Cost: cost}
	r.Costs[id] = cost
}

// RecordRun folds the outcome of a completed run into the repository:
// every test's failure recency ages by one run, tests that just failed reset
// to zero, and costs are updated to the latest observations.
func (r *Repository) RecordRun(durations map[string]time.Duration, failed map[string]bool) {
	for id := range r.Failures {
		r.Failures[id]++
	}
	for id := range failed {
		r.Failures[id] = 0
	}
	for id, d := range durations {
		r.Costs[id] = d
		if t, present := r.Tests[id]; present {
			t.Cost = d
		}
	}
}
