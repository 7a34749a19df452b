package terminal

import (
	"bytes"
	"strings"
	"testing"
)

func TestRestore(t *testing.T) {
	var buf bytes.Buffer
	if err := Restore(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"\x1b[?1003l", "\x1b[?1049l", "\x1b[?25h"} {
		if !strings.Contains(out, want) {
			t.Errorf("restore output misses %q", want)
		}
	}
	if !strings.HasSuffix(out, "\r\n") {
		t.Error("restore output does not end the line")
	}
}
