// Package output consumes test lifecycle events, captures per-test output
// streams and renders terminal-aware progress and summaries.
package output

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/thought-machine/testpackage/src/cli/logging"
)

var log = logging.Log

// activeCapture guards against overlapping captures. Lifecycle events are
// serialised on one goroutine so a plain variable suffices.
var activeCapture *Capture

// A Capture redirects the process stdout and stderr into in-memory buffers
// for the duration of one test. With tee enabled the bytes are also forwarded
// to the original streams. Exactly one capture may be active at a time;
// nesting indicates a bug in the caller.
type Capture struct {
	label            string
	origOut, origErr *os.File
	outW, errW       *os.File
	outBuf, errBuf   bytes.Buffer
	wg               sync.WaitGroup
	restored         bool
}

// Grab starts capturing the process stdout and stderr.
// It returns an error if another capture is still active.
func Grab(tee bool, label string) (*Capture, error) {
	if activeCapture != nil {
		return nil, fmt.Errorf("Capture for %s is still active; captures cannot be nested", activeCapture.label)
	}
	c := &Capture{label: label, origOut: os.Stdout, origErr: os.Stderr}
	outR, outW, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		outR.Close()
		outW.Close()
		return nil, err
	}
	c.outW, c.errW = outW, errW
	c.wg.Add(2)
	go c.drain(outR, &c.outBuf, teeTarget(tee, c.origOut))
	go c.drain(errR, &c.errBuf, teeTarget(tee, c.origErr))
	os.Stdout = outW
	os.Stderr = errW
	activeCapture = c
	return c, nil
}

// Restore puts the original streams back and waits for all buffered bytes to
// land. It is idempotent so it can be called on every exit path.
func (c *Capture) Restore() {
	if c.restored {
		return
	}
	c.restored = true
	os.Stdout = c.origOut
	os.Stderr = c.origErr
	c.outW.Close()
	c.errW.Close()
	c.wg.Wait()
	activeCapture = nil
}

// Stdout returns the captured standard output. Only valid after Restore.
func (c *Capture) Stdout() []byte {
	return c.outBuf.Bytes()
}

// Stderr returns the captured standard error. Only valid after Restore.
func (c *Capture) Stderr() []byte {
	return c.errBuf.Bytes()
}

func (c *Capture) drain(r *os.File, buf *bytes.Buffer, tee io.Writer) {
	defer c.wg.Done()
	defer r.Close()
	var w io.Writer = buf
	if tee != nil {
		w = io.MultiWriter(buf, tee)
	}
	if _, err := io.Copy(w, r); err != nil {
		log.Error("Error draining captured stream for %s: %s", c.label, err)
	}
}

func teeTarget(tee bool, f *os.File) io.Writer {
	if tee {
		return f
	}
	return nil
}
