package query

import (
	"github.com/thought-machine/testpackage/src/cli/logging"
	"github.com/thought-machine/testpackage/src/core"
	"github.com/thought-machine/testpackage/src/runner"
)

var log = logging.Log

// Discover enumerates every test method of every runnable registered class
// whose package matches the selector. The result is ordered
// lexicographically by (class, method) and free of duplicates.
// Non-runnable classes (abstract or without methods) are skipped silently.
func Discover(registry *runner.Registry, selector *Selector) []core.Description {
	descs := []core.Description{}
	for _, name := range registry.ClassNames() {
		class := registry.Class(name)
		if !class.Runnable() {
			log.Debug("Skipping non-runnable class %s", name)
			continue
		}
		if !selector.Matches(core.Description{Class: name}.Package()) {
			continue
		}
		descs = append(descs, registry.Descriptions(name)...)
	}
	if len(descs) == 0 {
		log.Warning("Pattern %s matched no test classes", selector)
	}
	return descs
}
