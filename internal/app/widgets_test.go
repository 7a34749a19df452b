package app

import (
	"slices"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/ocn-sys/ocn/internal/config"
)

func TestFieldStaysInBounds(t *testing.T) {
	f := NewField(30, 12, 42)
	f.Resize(40, 12)
	if f.Len() != 30 {
		t.Fatalf("Len() = %d, want 30", f.Len())
	}
	for range 2000 {
		f.Step()
	}
	for i, p := range f.Positions() {
		// A particle may overshoot by one step before it bounces.
		if p[0] < -1 || p[0] > 41 || p[1] < -1 || p[1] > 13 {
			t.Errorf("particle %d escaped to %v", i, p)
		}
	}
}

func TestFieldIsDeterministicForSeed(t *testing.T) {
	a, b := NewField(10, 12, 9), NewField(10, 12, 9)
	a.Resize(30, 10)
	b.Resize(30, 10)
	for range 50 {
		a.Step()
		b.Step()
	}
	if !slices.Equal(a.Positions(), b.Positions()) {
		t.Error("fields with the same seed diverged")
	}
}

func TestFieldRender(t *testing.T) {
	f := NewField(8, 100, 3)
	f.Resize(20, 6)
	lines := f.Render(true)
	if len(lines) != 6 {
		t.Fatalf("rendered %d lines, want 6", len(lines))
	}
	text := ansi.Strip(strings.Join(lines, ""))
	if !strings.Contains(text, "*") {
		t.Error("no particle drawn")
	}
	if !strings.Contains(text, ".") {
		t.Error("no link drawn with a link distance covering the field")
	}
	for i, l := range lines {
		if w := ansi.StringWidth(l); w != 20 {
			t.Errorf("line %d width = %d, want 20", i, w)
		}
	}
}

func TestEmptyFieldNeverRuns(t *testing.T) {
	d := newTestDesktop(t, nil)
	if cmd := d.desktopReady(); cmd != nil || d.Particles.Running {
		t.Error("a field without particles started animating")
	}
}

func TestBootSequence(t *testing.T) {
	d := newTestDesktop(t, func(c *config.UserConfig) {
		c.Appearance.SkipBoot = false
		c.Appearance.Particles = 5
	})
	if d.Boot.Stage != BootShowing {
		t.Fatalf("stage = %v, want showing", d.Boot.Stage)
	}

	fade := d.bootCmd()()
	if _, ok := fade.(BootFadeMsg); !ok {
		t.Fatalf("first boot message = %T", fade)
	}
	_, cmd := d.Update(fade)
	if d.Boot.Stage != BootFading {
		t.Fatalf("stage = %v, want fading", d.Boot.Stage)
	}
	d.Update(cmd())
	if !d.Boot.Done() {
		t.Fatalf("stage = %v, want done", d.Boot.Stage)
	}
	if !d.Particles.Running {
		t.Error("particles did not start after boot")
	}

	// A late fade message must not rewind the boot.
	d.Update(BootFadeMsg{})
	if !d.Boot.Done() {
		t.Error("late fade message rewound the boot")
	}
}

func TestSkipBoot(t *testing.T) {
	d := newTestDesktop(t, func(c *config.UserConfig) { c.Appearance.SkipBoot = false })
	d.SkipBoot()
	if !d.Boot.Done() {
		t.Fatal("SkipBoot did not finish the boot")
	}
	d.Update(BootDoneMsg{})
	var ready int
	for _, m := range d.LogMessages {
		if m.Message == "boot complete" {
			ready++
		}
	}
	if ready != 1 {
		t.Errorf("boot completed %d times, want once", ready)
	}
}

func TestFrameRateCapped(t *testing.T) {
	d := newTestDesktop(t, func(c *config.UserConfig) { c.Timing.FPS = 120 })
	if got := d.frameRate(); got != config.ParticleFPS {
		t.Errorf("frameRate() = %d, want %d", got, config.ParticleFPS)
	}
}

func TestPaletteFilter(t *testing.T) {
	d := newTestDesktop(t, nil)
	p := d.Palette

	tests := []struct {
		query string
		first string
		n     int
	}{
		{"", "about", 6},
		{"upl", "uplink", 1},
		{"thr", "three", 1},
		{"zzz", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p.Input.SetValue(tt.query)
			p.Filter()
			if len(p.Matches) != tt.n {
				t.Fatalf("matches = %d, want %d", len(p.Matches), tt.n)
			}
			if tt.n > 0 && p.Matches[0].ID != tt.first {
				t.Errorf("first match = %q, want %q", p.Matches[0].ID, tt.first)
			}
		})
	}
}

func TestPaletteCursorWraps(t *testing.T) {
	d := newTestDesktop(t, nil)
	d.OpenPalette()
	p := d.Palette
	p.Move(-1)
	if p.Cursor != len(p.Matches)-1 {
		t.Errorf("cursor = %d, want last %d", p.Cursor, len(p.Matches)-1)
	}
	p.Move(1)
	if p.Cursor != 0 {
		t.Errorf("cursor = %d, want 0", p.Cursor)
	}
}

func TestPaletteLaunchSource(t *testing.T) {
	d := newTestDesktop(t, nil)
	d.OpenPalette()
	d.Palette.Input.SetValue("three")
	d.Palette.Filter()

	cmd := d.LaunchSelected()
	if d.Palette.Open {
		t.Error("palette still open")
	}
	if !d.Windows.State("notes").IsOpen() {
		t.Fatal("launching a source did not open its window")
	}
	drain(t, d, cmd)
	if got := d.Panels.Get("notes").SelectedTrigger; got != "three" {
		t.Errorf("selected trigger = %q, want three", got)
	}
}

func TestClockMsg(t *testing.T) {
	d := newTestDesktop(t, nil)
	at := time.Date(2024, 1, 2, 23, 59, 58, 0, time.UTC)
	_, cmd := d.Update(ClockMsg(at))
	if cmd == nil {
		t.Error("clock did not reschedule")
	}
	if got := d.ClockText(); got != "23:59:58" {
		t.Errorf("ClockText() = %q", got)
	}
}

func TestUnhandledMessageIsIgnored(t *testing.T) {
	d := newTestDesktop(t, nil)
	type other struct{}
	model, cmd := d.Update(other{})
	if model != tea.Model(d) || cmd != nil {
		t.Errorf("Update(other) = %v, %v", model, cmd)
	}
}
