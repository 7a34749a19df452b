package markup_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/ocn-sys/ocn/internal/markup"
)

type failingConverter struct{}

func (failingConverter) Convert(string) (string, error) {
	return "", errors.New("boom")
}

func TestPrepare(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"flush", "a\nb", "a\nb"},
		{"indented template", "\n    # Title\n    body text\n      more\n  ", "# Title\nbody text\nmore"},
		{"tabs", "\t\tline", "line"},
		{"empty", "   \n\t\n", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := markup.Prepare(tc.input); got != tc.want {
				t.Errorf("Prepare(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestToMarkupFallback(t *testing.T) {
	tests := []struct {
		name string
		conv markup.Converter
	}{
		{"absent converter", nil},
		{"failing converter", failingConverter{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := markup.ToMarkup(tc.conv, "a < b & c\nnext")
			want := "a &lt; b &amp; c<br>next"
			if got != want {
				t.Errorf("ToMarkup = %q, want %q", got, want)
			}
		})
	}
}

func TestGoldmarkConvert(t *testing.T) {
	conv := markup.NewGoldmark(markup.GoldmarkOptions{})

	got, err := conv.Convert("# Title\n\nHello **world**\n\n- one\n- two")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	for _, want := range []string{"<h1", "Title</h1>", "<strong>world</strong>", "<li>one</li>", "<ul>"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestGoldmarkLineBreakPolicy(t *testing.T) {
	src := "first line\nsecond line"

	soft, err := markup.NewGoldmark(markup.GoldmarkOptions{HardWraps: false}).Convert(src)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(soft, "<br") {
		t.Errorf("soft wraps produced a break: %q", soft)
	}

	hard, err := markup.NewGoldmark(markup.GoldmarkOptions{HardWraps: true}).Convert(src)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(hard, "<br>") {
		t.Errorf("hard wraps missing break: %q", hard)
	}
}

func TestGoldmarkGFMTable(t *testing.T) {
	conv := markup.NewGoldmark(markup.GoldmarkOptions{})
	got, err := conv.Convert("| a | b |\n|---|---|\n| 1 | 2 |")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "<table>") || !strings.Contains(got, "<td>1</td>") {
		t.Errorf("GFM table not rendered:\n%s", got)
	}
}
