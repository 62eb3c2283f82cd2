// Package orchestrate glues the pipeline together: selector to sequencer to
// optimizer to the runner with the terminal listener attached, bracketed by
// loading and saving the coverage store.
package orchestrate

import (
	"fmt"
	"io"
	"os"

	"github.com/thought-machine/testpackage/src/cli/logging"
	"github.com/thought-machine/testpackage/src/core"
	"github.com/thought-machine/testpackage/src/cover"
	"github.com/thought-machine/testpackage/src/optimize"
	"github.com/thought-machine/testpackage/src/output"
	"github.com/thought-machine/testpackage/src/plan"
	"github.com/thought-machine/testpackage/src/query"
	"github.com/thought-machine/testpackage/src/runner"
)

var log = logging.Log

// Process exit codes.
const (
	ExitSuccess     = 0 // all selected tests passed, or none were selected
	ExitTestsFailed = 1 // at least one test failed
	ExitConfigError = 2 // invalid flags, selector or store
)

// Options configures a single orchestrated run.
type Options struct {
	Pattern         string
	Quiet           bool
	Verbose         bool
	FailFast        bool
	Shard           core.Shard
	Optimize        optimize.Config
	StoreDir        string
	SuspectPrefixes []string
	// Stdout defaults to the process stdout; tests substitute a buffer.
	Stdout io.Writer
}

// Run drives a full test run and returns the process exit code.
func Run(registry *runner.Registry, opts Options) int {
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}
	if opts.Quiet && opts.Verbose {
		fmt.Fprintln(out, "Quiet and Verbose flags cannot be used simultaneously")
		return ExitConfigError
	}
	if opts.Pattern == "" {
		fmt.Fprintln(out, "No test package specified; pass one on the command line or set it in "+core.ConfigFileName)
		return ExitConfigError
	}
	selector, err := query.Parse(opts.Pattern)
	if err != nil {
		fmt.Fprintln(out, err)
		return ExitConfigError
	}
	storeDir := opts.StoreDir
	if storeDir == "" {
		storeDir = core.DefaultStoreDirName
	}
	repo, err := cover.Load(storeDir)
	if err != nil {
		fmt.Fprintln(out, err)
		return ExitConfigError
	}
	request := plan.Sequence(registry, selector, opts.Shard, repo.Failures)
	if opts.Optimize.Enabled() {
		result, err := optimize.Optimize(repo, opts.Optimize)
		if err != nil {
			fmt.Fprintln(out, err)
			return ExitConfigError
		}
		if !result.Unfiltered {
			log.Notice("%s", result.Describe())
			log.Debug("Selection plan:\n%s", result.Plan())
			request = request.Filter(func(desc core.Description) bool { return result.Contains(desc.ID()) })
		}
	}
	notifier := runner.NewNotifier()
	listener := output.NewListener(out, notifier)
	listener.Quiet = opts.Quiet
	listener.Verbose = opts.Verbose
	listener.FailFast = opts.FailFast
	listener.SuspectPrefixes = opts.SuspectPrefixes
	notifier.AddListener(listener)
	result := runner.Run(request, notifier)
	repo.RecordRun(result.Durations, result.FailedIDs())
	if err := repo.Save(storeDir); err != nil {
		log.Error("Failed to save coverage store: %s", err)
	}
	if !result.WasSuccessful() {
		return ExitTestsFailed
	}
	return ExitSuccess
}
