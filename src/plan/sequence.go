// Package plan converts a package selector into a deterministic, sharded,
// prioritised execution request.
package plan

import (
	"math"
	"sort"

	"github.com/thought-machine/testpackage/src/cli/logging"
	"github.com/thought-machine/testpackage/src/core"
	"github.com/thought-machine/testpackage/src/query"
	"github.com/thought-machine/testpackage/src/runner"
)

var log = logging.Log

// Sequence builds the ordered execution request for a selector.
// The result is a pure function of (selector, shard, history): classes are
// ordered lexicographically with methods lexicographic within each class,
// sharding retains whole classes by stable hash, and if a failure history is
// given both classes and methods are stably reordered so the most recently
// failed come first.
//
// The history maps test ids to the number of runs since that test last
// failed; tests absent from it sort last. A shard that no matching class
// hashes to simply yields an empty request.
func Sequence(registry *runner.Registry, selector *query.Selector, shard core.Shard, history map[string]int) *runner.Request {
	type class struct {
		name  string
		descs []core.Description
	}
	classes := []class{}
	for _, desc := range query.Discover(registry, selector) {
		if n := len(classes); n > 0 && classes[n-1].name == desc.Class {
			classes[n-1].descs = append(classes[n-1].descs, desc)
		} else {
			classes = append(classes, class{name: desc.Class, descs: []core.Description{desc}})
		}
	}
	if shard.Enabled() {
		retained := classes[:0]
		for _, c := range classes {
			if shard.Contains(c.name) {
				retained = append(retained, c)
			}
		}
		log.Debug("Shard %s retains %d of %d classes", shard, len(retained), len(classes))
		classes = retained
	}
	if history != nil {
		score := func(desc core.Description) int {
			if runs, present := history[desc.ID()]; present {
				return runs
			}
			return math.MaxInt
		}
		classScore := func(c class) int {
			best := math.MaxInt
			for _, desc := range c.descs {
				if s := score(desc); s < best {
					best = s
				}
			}
			return best
		}
		sort.SliceStable(classes, func(i, j int) bool { return classScore(classes[i]) < classScore(classes[j]) })
		for _, c := range classes {
			descs := c.descs
			sort.SliceStable(descs, func(i, j int) bool { return score(descs[i]) < score(descs[j]) })
		}
	}
	req := &runner.Request{}
	for _, c := range classes {
		cls := registry.Class(c.name)
		for _, desc := range c.descs {
			method := cls.Method(desc.Method)
			req.Cases = append(req.Cases, runner.Case{Desc: desc, Run: method.Run, Ignored: method.Ignored})
		}
	}
	return req
}
