package output

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureBuffersBothStreams(t *testing.T) {
	capture, err := Grab(false, "testTrue(org.example.SimpleTest)")
	require.NoError(t, err)
	fmt.Fprint(os.Stdout, "to stdout")
	fmt.Fprint(os.Stderr, "to stderr")
	capture.Restore()
	assert.Equal(t, "to stdout", string(capture.Stdout()))
	assert.Equal(t, "to stderr", string(capture.Stderr()))
}

func TestCaptureRestoresOriginalStreams(t *testing.T) {
	origOut, origErr := os.Stdout, os.Stderr
	capture, err := Grab(false, "testTrue(org.example.SimpleTest)")
	require.NoError(t, err)
	assert.NotEqual(t, origOut, os.Stdout)
	capture.Restore()
	assert.Equal(t, origOut, os.Stdout)
	assert.Equal(t, origErr, os.Stderr)
}

func TestNestedGrabIsAnError(t *testing.T) {
	capture, err := Grab(false, "outer(org.example.SimpleTest)")
	require.NoError(t, err)
	defer capture.Restore()
	_, err = Grab(false, "inner(org.example.SimpleTest)")
	assert.Error(t, err)
}

func TestRestoreIsIdempotent(t *testing.T) {
	capture, err := Grab(false, "testTrue(org.example.SimpleTest)")
	require.NoError(t, err)
	capture.Restore()
	capture.Restore()
	// And a new capture can start afterwards.
	next, err := Grab(false, "testTrue2(org.example.SimpleTest)")
	require.NoError(t, err)
	next.Restore()
}

func TestTeeForwardsToOriginal(t *testing.T) {
	// Wrap the real stdout in a pipe of our own so we can observe the tee.
	origOut := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = origOut }()

	capture, err := Grab(true, "testTrue(org.example.SimpleTest)")
	require.NoError(t, err)
	fmt.Fprint(os.Stdout, "seen twice")
	capture.Restore()
	w.Close()

	forwarded := make([]byte, 64)
	n, _ := r.Read(forwarded)
	assert.Equal(t, "seen twice", string(forwarded[:n]))
	assert.Equal(t, "seen twice", string(capture.Stdout()))
}
