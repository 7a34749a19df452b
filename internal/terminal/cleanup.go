// Package terminal restores the host terminal after an abnormal exit.
package terminal

import (
	"io"
	"strings"
)

// restoreSequence undoes every mode the desktop turns on.
var restoreSequence = strings.Join([]string{
	"\x1b[?1000l", // normal mouse tracking
	"\x1b[?1002l", // button event tracking
	"\x1b[?1003l", // any event tracking
	"\x1b[?1004l", // focus events
	"\x1b[?1006l", // SGR mouse encoding
	"\x1b[?2004l", // bracketed paste
	"\x1b[?1049l", // alternate screen
	"\x1b[?25h",   // cursor
	"\x1b[0m",
	"\r\n",
}, "")

// Restore writes the escape sequences that return w to a usable state.
// Bubble Tea restores the terminal on a clean exit; call this when the
// program died with an error.
func Restore(w io.Writer) error {
	_, err := io.WriteString(w, restoreSequence)
	if s, ok := w.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
	return err
}
