package cli

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// StdErrIsATerminal is true if the process' stderr is an interactive TTY.
var StdErrIsATerminal = term.IsTerminal(int(os.Stderr.Fd()))

// StdOutIsATerminal is true if the process' stdout is an interactive TTY.
var StdOutIsATerminal = term.IsTerminal(int(os.Stdout.Fd()))

// ShowColour is true if we should emit colour codes on stdout. It can be
// forced either way by command-line flags.
var ShowColour = StdOutIsATerminal

// StripAnsi is a regex to find & replace ANSI console escape sequences.
var StripAnsi = regexp.MustCompile("\x1b[^m]+m")

// markup matches the @|style text|@ markup form. The style part is one or
// more comma-separated style names.
var markup = regexp.MustCompile(`@\|([a-z_,]+) ([^|]*)\|@`)

var ansiCodes = map[string]string{
	"black":     "30",
	"red":       "31",
	"green":     "32",
	"yellow":    "33",
	"blue":      "34",
	"magenta":   "35",
	"cyan":      "36",
	"white":     "37",
	"bg_black":  "40",
	"bg_red":    "41",
	"bg_green":  "42",
	"bg_yellow": "43",
	"bg_blue":   "44",
	"bold":      "1",
	"faint":     "2",
	"underline": "4",
}

// Expand converts @|style text|@ markup into ANSI escape sequences.
// Unknown style names are dropped silently.
func Expand(s string) string {
	return markup.ReplaceAllStringFunc(s, func(m string) string {
		groups := markup.FindStringSubmatch(m)
		codes := make([]string, 0, 2)
		for _, style := range strings.Split(groups[1], ",") {
			if code, present := ansiCodes[style]; present {
				codes = append(codes, code)
			}
		}
		if len(codes) == 0 {
			return groups[2]
		}
		return "\x1b[" + strings.Join(codes, ";") + "m" + groups[2] + "\x1b[0m"
	})
}

// Strip removes any markup and raw ANSI escape sequences, keeping the text.
func Strip(s string) string {
	return StripAnsi.ReplaceAllString(markup.ReplaceAllString(s, "$2"), "")
}

// DisplayWidth returns the printed width of a string once markup and escape
// sequences are removed.
func DisplayWidth(s string) int {
	return utf8.RuneCountInString(Strip(s))
}

// Fprintf writes a format string to w, expanding markup into escape sequences
// when coloured output is on and stripping it when it isn't.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if ShowColour {
		msg = Expand(msg)
	} else {
		msg = Strip(msg)
	}
	fmt.Fprint(w, msg)
}

// WindowWidth returns the width in columns of the current terminal window.
// A width of zero means output is not going to a terminal, which disables
// any width-sensitive padding.
func WindowWidth() int {
	if !StdOutIsATerminal {
		return 0
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80 // reasonable default if the terminal won't tell us
	}
	return width
}
