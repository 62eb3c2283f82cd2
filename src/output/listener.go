package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/thought-machine/testpackage/src/cli"
	"github.com/thought-machine/testpackage/src/core"
	"github.com/thought-machine/testpackage/src/runner"
)

// A Listener consumes test lifecycle events, maintains the run counters,
// captures per-test output streams and prints progress and the final summary.
// Events arrive serially on one goroutine; no locking happens here.
type Listener struct {
	Quiet    bool
	Verbose  bool
	FailFast bool
	// SuspectPrefixes are the package prefixes considered "ours" when
	// identifying the suspect frame of a failure.
	SuspectPrefixes []string

	out      io.Writer
	notifier *runner.Notifier

	total                  int
	runCount               int
	failedCount            int
	ignoredCount           int
	assumptionFailedCount  int
	currentDidFail         bool
	currentStart           time.Time
	placeholderActive      bool
	capture                *Capture
	failures               []*runner.Failure
	stdouts                map[string][]byte
	stderrs                map[string][]byte
}

// NewListener returns a listener writing to the given stream, which should be
// the process' real stdout; while a test runs the process streams are
// redirected but this writer is not.
func NewListener(out io.Writer, notifier *runner.Notifier) *Listener {
	return &Listener{
		out:      out,
		notifier: notifier,
		stdouts:  map[string][]byte{},
		stderrs:  map[string][]byte{},
	}
}

// ReadOut returns the bytes the most recent test of the given class wrote to
// stdout, or an empty slice if the class hasn't run.
func (l *Listener) ReadOut(testClass string) []byte {
	if b, present := l.stdouts[testClass]; present {
		return b
	}
	return []byte{}
}

// ReadErr returns the bytes the most recent test of the given class wrote to
// stderr, or an empty slice if the class hasn't run.
func (l *Listener) ReadErr(testClass string) []byte {
	if b, present := l.stderrs[testClass]; present {
		return b
	}
	return []byte{}
}

// RunStarted implements the runner.Listener interface.
func (l *Listener) RunStarted(testCount int) {
	l.total = testCount
	l.currentDidFail = false
}

// TestStarted implements the runner.Listener interface.
func (l *Listener) TestStarted(desc core.Description) {
	l.currentDidFail = false
	l.currentStart = time.Now()
	if !l.Quiet {
		l.printPlaceholder(desc)
	}
	capture, err := Grab(l.Verbose && !l.Quiet, desc.ID())
	if err != nil {
		log.Fatalf("%s", err) // indicates a bug in event sequencing, not user error
	}
	l.capture = capture
}

// TestFailure implements the runner.Listener interface.
func (l *Listener) TestFailure(failure *runner.Failure) {
	l.currentDidFail = true
	l.failedCount++
	l.failures = append(l.failures, failure)
	if l.FailFast {
		l.flushCapture(failure.Desc)
		l.clearPlaceholder()
		cli.Fprintf(l.out, "@|bg_red,white *** TESTS ABORTED|@\n")
		l.reportFailure(failure)
		l.notifier.PleaseStop()
	}
}

// TestAssumptionFailure implements the runner.Listener interface.
// An assumption failure is a skip, not a failure.
func (l *Listener) TestAssumptionFailure(failure *runner.Failure) {
	l.assumptionFailedCount++
	l.currentDidFail = false
}

// TestIgnored implements the runner.Listener interface.
func (l *Listener) TestIgnored(desc core.Description) {
	l.ignoredCount++
}

// TestFinished implements the runner.Listener interface.
func (l *Listener) TestFinished(desc core.Description) {
	l.flushCapture(desc)
	elapsed := time.Since(l.currentStart).Round(time.Millisecond)
	if !l.currentDidFail {
		l.runCount++
	}
	if l.Quiet {
		return
	}
	l.clearPlaceholder()
	if l.currentDidFail {
		cli.Fprintf(l.out, "@|red ✘|@  %s  (%s)\n", desc.DisplayName(), elapsed)
	} else {
		cli.Fprintf(l.out, "@|green ✔|@  %s  (%s)\n", desc.DisplayName(), elapsed)
	}
	if !l.Verbose {
		l.printCaptured(desc.Class)
	}
}

// RunFinished implements the runner.Listener interface.
func (l *Listener) RunFinished(result *runner.Result) {
	cli.Fprintf(l.out, "@|bold *** TESTS COMPLETE|@\n")
	cli.Fprintf(l.out, "*** %s\n", l.summaryLine())
	if l.Quiet || len(l.failures) == 0 {
		return
	}
	cli.Fprintf(l.out, "\nFailures:\n")
	for _, failure := range l.failures {
		l.reportFailure(failure)
	}
}

// summaryLine builds the composite counts line with its tint rules.
func (l *Listener) summaryLine() string {
	passed := l.runCount - l.assumptionFailedCount
	if passed < 0 {
		passed = 0
	}
	passedSeg := fmt.Sprintf("%d passed", passed)
	if passed > 0 && l.failedCount == 0 {
		passedSeg = fmt.Sprintf("@|bg_green,black %d passed|@", passed)
	}
	failedSeg := fmt.Sprintf("%d failed", l.failedCount)
	if l.failedCount > 0 {
		failedSeg = fmt.Sprintf("@|bg_red,white %d FAILED|@", l.failedCount)
	}
	ignoredSeg := fmt.Sprintf("%d ignored", l.ignoredCount)
	if l.ignoredCount > 0 && l.ignoredCount > passed {
		ignoredSeg = fmt.Sprintf("@|red %d ignored|@", l.ignoredCount)
	} else if l.ignoredCount > 0 {
		ignoredSeg = fmt.Sprintf("@|yellow %d ignored|@", l.ignoredCount)
	}
	line := fmt.Sprintf("%s, %s, %s", passedSeg, failedSeg, ignoredSeg)
	if l.assumptionFailedCount > 0 {
		line += fmt.Sprintf(", @|blue %d assumption(s) failed|@", l.assumptionFailedCount)
	}
	return line
}

// flushCapture restores the streams and stores the captured bytes for the
// test's class so downstream consumers can read them.
func (l *Listener) flushCapture(desc core.Description) {
	if l.capture == nil {
		return
	}
	capture := l.capture
	l.capture = nil
	capture.Restore()
	l.stdouts[desc.Class] = capture.Stdout()
	l.stderrs[desc.Class] = capture.Stderr()
}

// printCaptured prints any stored streams for a class under their labels.
func (l *Listener) printCaptured(testClass string) {
	if out := l.stdouts[testClass]; len(out) > 0 {
		cli.Fprintf(l.out, "STDOUT:\n%s", out)
		if out[len(out)-1] != '\n' {
			fmt.Fprintln(l.out)
		}
	}
	if errOut := l.stderrs[testClass]; len(errOut) > 0 {
		cli.Fprintf(l.out, "STDERR:\n%s", errOut)
		if errOut[len(errOut)-1] != '\n' {
			fmt.Fprintln(l.out)
		}
	}
}

// printPlaceholder emits the in-progress line for a test, right-aligning the
// counters to the terminal width. On a non-terminal (width zero) there is no
// way to rewrite the line later so nothing is printed.
func (l *Listener) printPlaceholder(desc core.Description) {
	width := cli.WindowWidth()
	if width <= 0 {
		return
	}
	left := fmt.Sprintf(">>  %s", desc.DisplayName())
	right := fmt.Sprintf("[ %d/%d tests run, %d ignored, %d failed ]", l.runCount, l.total, l.ignoredCount, l.failedCount)
	pad := width - cli.DisplayWidth(left) - cli.DisplayWidth(right)
	if pad < 1 {
		pad = 1
	}
	fmt.Fprint(l.out, "\x1b[s") // save cursor so the final line can replace us
	cli.Fprintf(l.out, "%s%s%s", left, strings.Repeat(" ", pad), right)
	l.placeholderActive = true
}

func (l *Listener) clearPlaceholder() {
	if l.placeholderActive {
		fmt.Fprint(l.out, "\x1b[u\x1b[K") // restore cursor, clear to end of line
		l.placeholderActive = false
	}
}
