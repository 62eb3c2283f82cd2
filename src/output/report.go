package output

import (
	"reflect"
	"strings"

	"github.com/thought-machine/testpackage/src/cli"
	"github.com/thought-machine/testpackage/src/runner"
)

// reportFailure prints a single failure: the test, the error with any root
// cause, and where in the user's own code the blame most likely lies.
func (l *Listener) reportFailure(failure *runner.Failure) {
	cli.Fprintf(l.out, "@|red %s|@\n", failure.Desc.ID())
	cli.Fprintf(l.out, "  @|yellow %s: %s|@\n", simpleName(failure.Err), reindent(failure.Err.Error()))
	if frame, present := failure.TopFrame(); present {
		cli.Fprintf(l.out, "  At %s\n", frame)
	}
	if cause := failure.RootCause(); cause != nil {
		cli.Fprintf(l.out, "  Root cause: @|yellow %s: %s|@\n", simpleName(cause), reindent(cause.Error()))
	}
	if frame, present := failure.SuspectFrame(l.SuspectPrefixes); present {
		cli.Fprintf(l.out, "  Suspect %s\n", frame)
	}
}

// simpleName returns an error's type name without package or pointer markers,
// the analogue of an exception's simple name.
func simpleName(err error) string {
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}

// reindent makes multi-line messages hang under the six-space indent of the
// report body.
func reindent(msg string) string {
	return strings.ReplaceAll(msg, "\n", "\n      ")
}
