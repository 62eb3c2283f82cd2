// Package cli contains helper functions related to flag parsing and logging.
package cli

import (
	"os"
	"path"

	cliflags "github.com/peterebden/go-cli-init/v5/flags"
	clilogging "github.com/peterebden/go-cli-init/v5/logging"
	gologging "gopkg.in/op/go-logging.v1"

	"github.com/thought-machine/testpackage/src/cli/logging"
)

var log = logging.Log

// A Verbosity is used as a flag to define logging verbosity.
type Verbosity = clilogging.Verbosity

// MinVerbosity is the minimum verbosity we support.
var MinVerbosity = clilogging.MinVerbosity

// MaxVerbosity is the maximum verbosity we support.
var MaxVerbosity = clilogging.MaxVerbosity

// ParseFlagsOrDie parses the app's flags and dies if unsuccessful.
// Also dies if any unexpected arguments are passed.
func ParseFlagsOrDie(appname string, data interface{}) string {
	return cliflags.ParseFlagsOrDie(appname, data, nil)
}

// InitLogging initialises the logging backend on stderr.
func InitLogging(verbosity Verbosity) {
	clilogging.InitLogging(verbosity)
}

// InitFileLogging initialises an additional logging backend to a file.
// The stderr backend remains active at its existing level.
func InitFileLogging(logFile string, logFileLevel Verbosity) {
	if err := os.MkdirAll(path.Dir(logFile), os.ModeDir|0775); err != nil {
		log.Fatalf("Error creating log file directory: %s", err)
	}
	file, err := os.Create(logFile)
	if err != nil {
		log.Fatalf("Error opening log file: %s", err)
	}
	backend := gologging.NewBackendFormatter(gologging.NewLogBackend(file, "", 0),
		gologging.MustStringFormatter("%{time:15:04:05.000} %{level:7s}: %{message}"))
	leveled := gologging.AddModuleLevel(backend)
	leveled.SetLevel(gologging.Level(logFileLevel), "")
	stderrBackend := gologging.NewBackendFormatter(gologging.NewLogBackend(os.Stderr, "", 0), logFormatter())
	gologging.SetBackend(stderrBackend, leveled)
}

func logFormatter() gologging.Formatter {
	formatStr := "%{time:15:04:05.000} %{level:7s}: %{message}"
	if StdErrIsATerminal {
		formatStr = "%{color}" + formatStr + "%{color:reset}"
	}
	return gologging.MustStringFormatter(formatStr)
}
