package main

import (
	"fmt"
	"os"
	"time"

	"github.com/thought-machine/testpackage/src/cli"
	"github.com/thought-machine/testpackage/src/cli/logging"
	"github.com/thought-machine/testpackage/src/core"
	"github.com/thought-machine/testpackage/src/optimize"
	"github.com/thought-machine/testpackage/src/orchestrate"
	"github.com/thought-machine/testpackage/src/runner"
)

var log = logging.Log

const version = "1.2.0"

var opts struct {
	Usage string `usage:"testpackage is a standalone test runner that discovers, orders and optimises test suites.\n\nIt keeps a per-repo coverage store which it uses to run recently-failed tests first and to select minimal covering subsets of a suite."`

	Verbosity cli.Verbosity `short:"v" long:"verbosity" default:"warning" description:"Verbosity of output (error, warning, notice, info, debug)"`
	LogFile   string        `long:"log_file" description:"File to echo full logging output to"`

	Package  string     `long:"package" env:"PACKAGE" description:"Package pattern to discover tests in; * wildcards allowed in any segment"`
	Quiet    bool       `short:"q" long:"quiet" description:"Don't print progress lines or captured test output"`
	Verbose  bool       `long:"verbose" description:"Stream captured test output live as tests run"`
	FailFast bool       `long:"fail-fast" description:"Abort the run on the first failing test"`
	Shard    core.Shard `long:"shard" description:"Shard assignment of the form i/n; only test classes hashing to shard i are run"`

	OptimizeCoverage float64 `long:"optimize-coverage" description:"Run the cheapest subset of tests reaching this coverage fraction (0..1]"`
	OptimizeRuntime  int64   `long:"optimize-runtime" description:"Run the best-covering subset of tests fitting this budget in milliseconds"`
	OptimizeCount    int     `long:"optimize-count" description:"Run the n tests that together maximise coverage"`

	Store    string `long:"store" description:"Directory the coverage store lives under"`
	Colour   bool   `long:"colour" description:"Forces coloured output"`
	NoColour bool   `long:"nocolour" description:"Forces colourless output"`
	Version  bool   `long:"version" description:"Prints the version and exits"`

	Args struct {
		Package string `positional-arg-name:"package" description:"Package pattern to discover tests in"`
	} `positional-args:"true"`
}

func main() {
	os.Exit(run())
}

func run() int {
	cli.ParseFlagsOrDie("testpackage", &opts)
	if opts.Version {
		fmt.Printf("testpackage version %s\n", version)
		return orchestrate.ExitSuccess
	}
	cli.InitLogging(opts.Verbosity)
	if opts.LogFile != "" {
		cli.InitFileLogging(opts.LogFile, cli.MaxVerbosity)
	}
	config, err := core.ReadDefaultConfigFile()
	if err != nil {
		log.Error("Error reading config file: %s", err)
		return orchestrate.ExitConfigError
	}
	if config.Display.Colour {
		cli.ShowColour = true
	}
	if config.Display.NoColour {
		cli.ShowColour = false
	}
	if opts.Colour {
		cli.ShowColour = true
	}
	if opts.NoColour {
		cli.ShowColour = false
	}
	optimizeConfig := optimize.Config{
		TestCount: opts.OptimizeCount,
		Coverage:  opts.OptimizeCoverage,
		Budget:    time.Duration(opts.OptimizeRuntime) * time.Millisecond,
	}
	if err := optimizeConfig.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return orchestrate.ExitConfigError
	}
	pattern := opts.Args.Package
	if pattern == "" {
		pattern = opts.Package
	}
	if pattern == "" {
		pattern = config.Test.Package
	}
	storeDir := opts.Store
	if storeDir == "" {
		storeDir = config.Store.Directory
	}
	return orchestrate.Run(runner.Default, orchestrate.Options{
		Pattern:         pattern,
		Quiet:           opts.Quiet,
		Verbose:         opts.Verbose,
		FailFast:        opts.FailFast,
		Shard:           opts.Shard,
		Optimize:        optimizeConfig,
		StoreDir:        storeDir,
		SuspectPrefixes: config.Test.SuspectPrefix,
	})
}
