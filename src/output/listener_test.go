package output

import (
	"bytes"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thought-machine/testpackage/src/core"
	"github.com/thought-machine/testpackage/src/runner"
)

func run(t *testing.T, listener *Listener, notifier *runner.Notifier, cases ...runner.Case) *runner.Result {
	t.Helper()
	notifier.AddListener(listener)
	return runner.Run(&runner.Request{Cases: cases}, notifier)
}

func passing(class, method string) runner.Case {
	return runner.Case{Desc: core.Description{Class: class, Method: method}, Run: func(t *runner.T) {}}
}

func failing(class, method string) runner.Case {
	return runner.Case{Desc: core.Description{Class: class, Method: method}, Run: func(t *runner.T) {
		t.Fatalf("boom")
	}}
}

func TestCountersAndSummary(t *testing.T) {
	var buf bytes.Buffer
	notifier := runner.NewNotifier()
	listener := NewListener(&buf, notifier)
	result := run(t, listener, notifier,
		passing("org.example.SimpleTest", "testTrue1"),
		passing("org.example.SimpleTest", "testTrue2"),
		failing("org.example.FailingTest", "testFalse"),
	)
	assert.Equal(t, 2, result.RunCount)
	out := buf.String()
	assert.Contains(t, out, "*** TESTS COMPLETE")
	assert.Contains(t, out, "2 passed")
	assert.Contains(t, out, "1 FAILED")
	assert.Contains(t, out, "Failures:")
	assert.Contains(t, out, "testFalse(org.example.FailingTest)")
	assert.Contains(t, out, "AssertionError: boom")
	assert.Contains(t, out, "At ")
	assert.Contains(t, out, "✔  SimpleTest.testTrue1")
	assert.Contains(t, out, "✘  FailingTest.testFalse")
}

func TestCounterLaw(t *testing.T) {
	var buf bytes.Buffer
	notifier := runner.NewNotifier()
	listener := NewListener(&buf, notifier)
	assuming := runner.Case{Desc: core.Description{Class: "org.example.T", Method: "testAssumes"}, Run: func(t *runner.T) {
		t.Assume(false, "skip me")
	}}
	run(t, listener, notifier,
		passing("org.example.T", "testA"),
		failing("org.example.T", "testB"),
		assuming,
	)
	// 3 started, 1 failed: the listener's run counter excludes failures, and
	// passed excludes assumption failures on top of that.
	assert.Equal(t, 2, listener.runCount)
	assert.Equal(t, 1, listener.failedCount)
	assert.Equal(t, 1, listener.assumptionFailedCount)
	assert.Contains(t, buf.String(), "1 passed")
	assert.Contains(t, buf.String(), "1 assumption(s) failed")
}

func TestQuietSuppressesDetail(t *testing.T) {
	var buf bytes.Buffer
	notifier := runner.NewNotifier()
	listener := NewListener(&buf, notifier)
	listener.Quiet = true
	noisy := runner.Case{Desc: core.Description{Class: "org.example.NoisyTest", Method: "testFalse"}, Run: func(t *runner.T) {
		fmt.Println("Stdout for failing test")
		t.Fatalf("boom")
	}}
	run(t, listener, notifier, passing("org.example.SimpleTest", "testTrue"), noisy)
	out := buf.String()
	assert.Contains(t, out, "*** TESTS COMPLETE")
	assert.Contains(t, out, "*** 1 passed")
	assert.Contains(t, out, "FAILED")
	assert.NotContains(t, out, "testTrue")
	assert.NotContains(t, out, "Stdout for failing test")
	assert.NotContains(t, out, "Failures:")
}

func TestNonVerbosePrintsCapturedStreamsAfterTheTest(t *testing.T) {
	var buf bytes.Buffer
	notifier := runner.NewNotifier()
	listener := NewListener(&buf, notifier)
	noisy := runner.Case{Desc: core.Description{Class: "org.example.NoisyTest", Method: "testNoise"}, Run: func(t *runner.T) {
		fmt.Println("interesting output")
		fmt.Fprintln(os.Stderr, "interesting errors")
	}}
	run(t, listener, notifier, noisy)
	out := buf.String()
	assert.Contains(t, out, "STDOUT:\ninteresting output")
	assert.Contains(t, out, "STDERR:\ninteresting errors")
}

func TestStoredStreamsAreReadable(t *testing.T) {
	var buf bytes.Buffer
	notifier := runner.NewNotifier()
	listener := NewListener(&buf, notifier)
	noisy := runner.Case{Desc: core.Description{Class: "org.example.NoisyTest", Method: "testNoise"}, Run: func(t *runner.T) {
		fmt.Print("captured out")
		fmt.Fprint(os.Stderr, "captured err")
	}}
	run(t, listener, notifier, noisy)
	assert.Equal(t, "captured out", string(listener.ReadOut("org.example.NoisyTest")))
	assert.Equal(t, "captured err", string(listener.ReadErr("org.example.NoisyTest")))
	assert.Empty(t, listener.ReadOut("org.example.NeverRanTest"))
	assert.Empty(t, listener.ReadErr("org.example.NeverRanTest"))
}

func TestFailFastAbortsAndReports(t *testing.T) {
	var buf bytes.Buffer
	notifier := runner.NewNotifier()
	listener := NewListener(&buf, notifier)
	listener.FailFast = true
	result := run(t, listener, notifier,
		failing("org.example.aaa_FailingTest", "testFalse"),
		passing("org.example.zzz_PassingTest", "testTrue"),
	)
	out := buf.String()
	assert.Contains(t, out, "*** TESTS ABORTED")
	assert.Contains(t, out, "testFalse(org.example.aaa_FailingTest)")
	assert.NotContains(t, out, "zzz_PassingTest")
	assert.Zero(t, result.RunCount)
	assert.Equal(t, 1, result.FailureCount)
}

func TestSuspectFrameIsReported(t *testing.T) {
	var buf bytes.Buffer
	notifier := runner.NewNotifier()
	listener := NewListener(&buf, notifier)
	listener.SuspectPrefixes = []string{"github.com/thought-machine/testpackage"}
	run(t, listener, notifier, failing("org.example.FailingTest", "testFalse"))
	assert.Contains(t, buf.String(), "Suspect ")
}

func TestRootCauseIsReported(t *testing.T) {
	var buf bytes.Buffer
	notifier := runner.NewNotifier()
	listener := NewListener(&buf, notifier)
	wrapped := runner.Case{Desc: core.Description{Class: "org.example.FailingTest", Method: "testFalse"}, Run: func(t *runner.T) {
		t.Fatal(fmt.Errorf("fetching config: %w", os.ErrNotExist))
	}}
	run(t, listener, notifier, wrapped)
	assert.Contains(t, buf.String(), "Root cause: ")
}

func TestMultiLineMessagesAreReindented(t *testing.T) {
	var buf bytes.Buffer
	notifier := runner.NewNotifier()
	listener := NewListener(&buf, notifier)
	multi := runner.Case{Desc: core.Description{Class: "org.example.FailingTest", Method: "testFalse"}, Run: func(t *runner.T) {
		t.Fatalf("first line\nsecond line")
	}}
	run(t, listener, notifier, multi)
	assert.Contains(t, buf.String(), "first line\n      second line")
}
