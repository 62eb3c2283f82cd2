// Package optimize selects a subset of tests via greedy weighted set-cover
// over the coverage repository's bitmaps.
package optimize

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/exp/maps"

	"github.com/thought-machine/testpackage/src/cli/logging"
	"github.com/thought-machine/testpackage/src/core"
	"github.com/thought-machine/testpackage/src/cover"
)

var log = logging.Log

// A Config selects exactly one optimisation target. The zero value disables
// the optimizer entirely.
type Config struct {
	// TestCount picks exactly this many tests, maximising union coverage.
	TestCount int
	// Coverage picks the smallest cost-prefix reaching this fractional coverage.
	Coverage float64
	// Budget picks the coverage-maximising subset whose total cost fits within it.
	Budget time.Duration
}

// Enabled returns true if any target is set.
func (c Config) Enabled() bool {
	return c.TestCount > 0 || c.Coverage > 0 || c.Budget > 0
}

// Validate checks that at most one target is set and that values are sane.
func (c Config) Validate() error {
	set := 0
	if c.TestCount > 0 {
		set++
	}
	if c.Coverage > 0 {
		if c.Coverage > 1 {
			return fmt.Errorf("Coverage target must be in (0, 1], got %g", c.Coverage)
		}
		set++
	}
	if c.Budget > 0 {
		set++
	}
	if set > 1 {
		return fmt.Errorf("Only one optimisation target may be given")
	}
	return nil
}

// A Selection records one greedily chosen test along with the score it won on.
type Selection struct {
	Test  *cover.TestWithCoverage
	Score float64 // newly covered probes per millisecond at selection time
	Cost  time.Duration
}

// A Result is the outcome of an optimisation: the ordered selections and the
// filter predicate derived from them. When the repository can't support the
// requested optimisation the result is unfiltered and callers should run the
// full request.
type Result struct {
	Selections []Selection
	Covered    *core.Bitset
	Unfiltered bool
	probes     int
	candidates int
	selected   map[string]bool
}

// Contains returns true if the given test id survived the optimisation.
func (r *Result) Contains(id string) bool {
	return r.Unfiltered || r.selected[id]
}

// Describe returns a human-readable summary of the selection plan.
func (r *Result) Describe() string {
	if r.Unfiltered {
		return "No optimisation applied; running all tests"
	}
	var total time.Duration
	for _, s := range r.Selections {
		total += s.Cost
	}
	covered := 0.0
	if r.probes > 0 {
		covered = 100.0 * float64(r.Covered.Cardinality()) / float64(r.probes)
	}
	return fmt.Sprintf("Selected %d of %d tests covering %.1f%% of %s probes, estimated runtime %s",
		len(r.Selections), r.candidates, covered, humanize.Comma(int64(r.probes)),
		total.Round(time.Millisecond))
}

// Plan returns the ordered selections as a printable multi-line description.
func (r *Result) Plan() string {
	var b strings.Builder
	for i, s := range r.Selections {
		fmt.Fprintf(&b, "%2d. %s (%.2f probes/ms, %s)\n", i+1, s.Test.ID, s.Score, s.Cost.Round(time.Millisecond))
	}
	return b.String()
}

// Optimize greedily selects tests from the repository per the configured
// target. Ties on score break by cost ascending then id lexicographic, so
// the output is deterministic for any input.
func Optimize(repo *cover.Repository, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	} else if !config.Enabled() {
		return nil, fmt.Errorf("No optimisation target given")
	}
	result := &Result{probes: repo.Probes, selected: map[string]bool{}}
	if repo.Empty() || repo.Probes == 0 {
		log.Warning("Coverage store has no usable data; optimisation skipped")
		result.Unfiltered = true
		return result, nil
	}
	pool := maps.Values(repo.Tests)
	zeroCoverage := true
	for _, t := range pool {
		if t.Coverage.Cardinality() > 0 {
			zeroCoverage = false
		}
	}
	if zeroCoverage {
		log.Warning("No test in the coverage store covers anything; optimisation skipped")
		result.Unfiltered = true
		return result, nil
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	result.candidates = len(pool)
	result.Covered = core.NewBitset(repo.Probes)

	var totalCost time.Duration
	for len(pool) > 0 {
		if config.TestCount > 0 && len(result.Selections) >= config.TestCount {
			break
		}
		if config.Coverage > 0 && float64(result.Covered.Cardinality())/float64(repo.Probes) >= config.Coverage {
			break
		}
		best := pickBest(result.Covered, pool)
		candidate := pool[best]
		pool = append(pool[:best], pool[best+1:]...)
		cost := effectiveCost(candidate)
		if config.Budget > 0 && totalCost+cost > config.Budget {
			// Too expensive; discard it and keep going, a cheaper test may still fit.
			log.Debug("Skipping %s: would exceed the runtime budget", candidate.ID)
			continue
		}
		gain := result.Covered.UnionCardinality(candidate.Coverage) - result.Covered.Cardinality()
		result.Covered.Union(candidate.Coverage)
		result.Selections = append(result.Selections, Selection{
			Test:  candidate,
			Score: float64(gain) / float64(cost.Milliseconds()),
			Cost:  cost,
		})
		result.selected[candidate.ID] = true
		totalCost += cost
	}
	return result, nil
}

// pickBest returns the index of the candidate with the best marginal gain
// per millisecond, breaking ties by cost ascending then id.
func pickBest(covered *core.Bitset, pool []*cover.TestWithCoverage) int {
	base := covered.Cardinality()
	best := 0
	bestScore := -1.0
	for i, t := range pool {
		cost := effectiveCost(t)
		score := float64(covered.UnionCardinality(t.Coverage)-base) / float64(cost.Milliseconds())
		if score > bestScore {
			best, bestScore = i, score
		} else if score == bestScore {
			if c := effectiveCost(pool[best]); cost < c || (cost == c && t.ID < pool[best].ID) {
				best = i
			}
		}
	}
	return best
}

// effectiveCost returns a test's cost, treating unknown or zero costs as one
// millisecond to avoid dividing by zero.
func effectiveCost(t *cover.TestWithCoverage) time.Duration {
	if t.Cost < time.Millisecond {
		return time.Millisecond
	}
	return t.Cost
}
