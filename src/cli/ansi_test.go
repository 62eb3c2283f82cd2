package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpand(t *testing.T) {
	assert.Equal(t, "\x1b[31mred text\x1b[0m", Expand("@|red red text|@"))
	assert.Equal(t, "\x1b[31;1mloud\x1b[0m", Expand("@|red,bold loud|@"))
	assert.Equal(t, "plain", Expand("plain"))
	// Unknown styles drop to plain text rather than emitting garbage.
	assert.Equal(t, "hello", Expand("@|sparkly hello|@"))
}

func TestStrip(t *testing.T) {
	assert.Equal(t, "red text", Strip("@|red red text|@"))
	assert.Equal(t, "ab", Strip("a\x1b[31mb"))
	assert.Equal(t, "1 passed, 1 FAILED", Strip("@|bg_green,black 1 passed|@, @|bg_red,white 1 FAILED|@"))
}

func TestDisplayWidth(t *testing.T) {
	assert.Equal(t, 8, DisplayWidth("@|red red text|@"))
	assert.Equal(t, 1, DisplayWidth("@|green ✔|@"))
}

func TestFprintf(t *testing.T) {
	oldColour := ShowColour
	defer func() { ShowColour = oldColour }()

	var buf bytes.Buffer
	ShowColour = false
	Fprintf(&buf, "@|red %d failed|@\n", 3)
	assert.Equal(t, "3 failed\n", buf.String())

	buf.Reset()
	ShowColour = true
	Fprintf(&buf, "@|red %d failed|@\n", 3)
	assert.Equal(t, "\x1b[31m3 failed\x1b[0m\n", buf.String())
}
