package app

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/ocn-sys/ocn/internal/config"
	"github.com/ocn-sys/ocn/internal/content"
	"github.com/ocn-sys/ocn/internal/reveal"
	"github.com/ocn-sys/ocn/internal/wm"
)

const testPack = `
[[windows]]
id = "about"
title = "ABOUT"
kind = "console"
x = 2
y = 1
width = 50
height = 14
open = true
sources = ["one", "two"]

[[windows]]
id = "notes"
title = "NOTES"
kind = "static"
x = 20
y = 4
width = 40
height = 12
sources = ["three"]

[[windows]]
id = "uplink"
title = "UPLINK"
kind = "uplink"
x = 30
y = 6
width = 44
height = 14

[[sources]]
id = "one"
label = "ONE"
body = "alpha beta alpha"

[[sources]]
id = "two"
label = "TWO"
body = "gamma delta"

[[sources]]
id = "three"
label = "THREE"
markup = true
body = "<p>static body</p>"
`

func immediate(_ time.Duration, msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

type fixedClock struct{ t time.Time }

func (c fixedClock) now() time.Time { return c.t }

func newTestDesktop(t *testing.T, mutate func(*config.UserConfig)) *Desktop {
	t.Helper()
	cat, err := content.Parse([]byte(testPack))
	if err != nil {
		t.Fatalf("parse pack: %v", err)
	}
	cfg := config.DefaultConfig()
	cfg.Appearance.SkipBoot = true
	cfg.Appearance.Particles = 0
	if mutate != nil {
		mutate(cfg)
	}
	clock := fixedClock{time.Date(2024, 5, 1, 13, 4, 5, 0, time.UTC)}
	d, err := New(Options{
		Config:   cfg,
		Catalog:  cat,
		Schedule: immediate,
		Now:      clock.now,
		Seed:     7,
	})
	if err != nil {
		t.Fatalf("new desktop: %v", err)
	}
	d.Resize(120, 40)
	return d
}

// drain runs reveal and uplink commands to completion, feeding each
// message back through Update.
func drain(t *testing.T, d *Desktop, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100000 {
			t.Fatal("commands did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case reveal.StartMsg, reveal.TickMsg, reveal.DoneMsg, UplinkDoneMsg:
			_, next := d.Update(msg)
			queue = append(queue, next)
		}
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cat, err := content.Parse([]byte(testPack))
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.DefaultConfig()
	cfg.Timing.TickMS = 0
	if _, err := New(Options{Config: cfg, Catalog: cat}); err == nil {
		t.Error("New accepted tick_ms = 0")
	}
}

func TestNewBuildsWindowContents(t *testing.T) {
	d := newTestDesktop(t, nil)
	if d.Consoles["about"] == nil || d.Consoles["notes"] == nil {
		t.Fatal("panel windows have no console")
	}
	if !d.Consoles["notes"].Static {
		t.Error("notes console is not static")
	}
	if d.Uplinks["uplink"] == nil {
		t.Error("uplink window has no form")
	}
	if d.Panels.Get("uplink") != nil {
		t.Error("uplink window owns a panel")
	}
	if st := d.Windows.State("about"); st != wm.Active {
		t.Errorf("about state = %v, want active", st)
	}
}

func TestWorkspaceExcludesBars(t *testing.T) {
	d := newTestDesktop(t, nil)
	if got := d.Workspace(); got != (wm.Size{W: 120, H: 38}) {
		t.Errorf("workspace = %+v, want {120 38}", got)
	}
	if got := d.Windows.Viewport(); got != (wm.Size{W: 120, H: 38}) {
		t.Errorf("registry viewport = %+v, want {120 38}", got)
	}
}

func TestInitialRevealFillsOpenPanel(t *testing.T) {
	d := newTestDesktop(t, nil)
	drain(t, d, d.revealOpen())

	p := d.Panels.Get("about")
	if p.Revealing {
		t.Fatal("panel still revealing")
	}
	if !strings.Contains(p.Markup, "alpha beta alpha") {
		t.Errorf("markup = %q, want the first source", p.Markup)
	}
	if p.SelectedTrigger != "one" {
		t.Errorf("selected trigger = %q, want one", p.SelectedTrigger)
	}
	if d.Panels.Get("notes").Markup != "" {
		t.Error("closed panel was revealed")
	}
}

func TestToggleRevealsOnlyEmptyPanels(t *testing.T) {
	d := newTestDesktop(t, nil)

	cmd := d.ToggleWindow("notes")
	if cmd == nil {
		t.Fatal("opening an empty panel returned no reveal")
	}
	drain(t, d, cmd)
	if got := d.Panels.Get("notes").Markup; !strings.Contains(got, "static body") {
		t.Errorf("notes markup = %q", got)
	}

	d.ToggleWindow("notes")
	if st := d.Windows.State("notes"); st != wm.Hidden {
		t.Fatalf("second toggle left notes %v", st)
	}
	if cmd := d.ToggleWindow("notes"); cmd != nil {
		t.Error("re-opening a filled panel started another reveal")
	}
}

func TestToggleUnknownWindow(t *testing.T) {
	d := newTestDesktop(t, nil)
	if cmd := d.ToggleWindow("missing"); cmd != nil {
		t.Error("unknown window returned a command")
	}
	if st := d.Windows.State("about"); st != wm.Active {
		t.Errorf("about state = %v, want active", st)
	}
}

func TestRevealSourceSupersedes(t *testing.T) {
	d := newTestDesktop(t, nil)
	first := d.RevealSource("about", "one")
	second := d.RevealSource("about", "two")

	// The first job's start message is stale and must be dropped.
	drain(t, d, first)
	drain(t, d, second)

	p := d.Panels.Get("about")
	if !strings.Contains(p.Markup, "gamma delta") || strings.Contains(p.Markup, "alpha") {
		t.Errorf("markup = %q, want only the second source", p.Markup)
	}
	if c := d.Consoles["about"]; c.Cursor != 1 {
		t.Errorf("cursor = %d, want 1", c.Cursor)
	}
	if d.Reveal.Timers().Len() != 0 {
		t.Errorf("%d timers left after completion", d.Reveal.Timers().Len())
	}
}

func TestSearchHighlightsAndClears(t *testing.T) {
	d := newTestDesktop(t, nil)
	drain(t, d, d.RevealSource("about", "one"))
	c := d.Consoles["about"]
	clean := d.Panels.Get("about").Markup

	c.Input.SetValue("alpha")
	d.SetSearchQuery("about")
	if got := d.Search.Counter("about"); got != "1/2" {
		t.Errorf("counter = %q, want 1/2", got)
	}
	d.NavigateSearch("about", 1)
	if got := d.Search.Counter("about"); got != "2/2" {
		t.Errorf("counter after next = %q, want 2/2", got)
	}
	d.NavigateSearch("about", 1)
	if got := d.Search.Counter("about"); got != "1/2" {
		t.Errorf("counter after wrap = %q, want 1/2", got)
	}

	d.ClearSearch("about")
	if got := d.Panels.Get("about").Markup; got != clean {
		t.Errorf("markup after clear = %q, want %q", got, clean)
	}
	if got := d.Search.Counter("about"); got != "" {
		t.Errorf("counter after clear = %q, want empty", got)
	}
}

func TestSearchSettlesRunningReveal(t *testing.T) {
	d := newTestDesktop(t, nil)
	d.RevealSource("about", "one")
	c := d.Consoles["about"]
	c.Input.SetValue("beta")
	d.SetSearchQuery("about")

	if d.Reveal.Running("about") {
		t.Error("search left the reveal running")
	}
	if got := d.Search.Counter("about"); got != "1/1" {
		t.Errorf("counter = %q, want 1/1", got)
	}
}

func TestCloseWindowCancelsGesture(t *testing.T) {
	d := newTestDesktop(t, nil)
	baseline := d.Pointer.Handlers()
	d.Drag.BeginDrag("about", wm.PointerEvent{Kind: wm.PointerDown, X: 5, Y: 1})
	d.CloseWindow("about")
	if d.Drag.Active() != nil {
		t.Error("gesture survived closing its window")
	}
	if got := d.Pointer.Handlers(); got != baseline {
		t.Errorf("handlers = %d, want %d", got, baseline)
	}
}

func TestBlurCancelsGesture(t *testing.T) {
	d := newTestDesktop(t, nil)
	d.Drag.BeginDrag("about", wm.PointerEvent{Kind: wm.PointerDown, X: 5, Y: 1})
	d.Update(tea.BlurMsg{})
	if d.Drag.Active() != nil {
		t.Error("gesture survived a focus loss")
	}
}

func TestFocusBlursPreviousInputs(t *testing.T) {
	d := newTestDesktop(t, nil)
	c := d.Consoles["about"]
	c.EnterSearch()
	d.ToggleWindow("uplink")
	if c.Searching || c.Input.Focused() {
		t.Error("search bar kept focus after another window opened")
	}

	d.FocusWindow("about")
	c.EnterSearch()
	d.FocusWindow("uplink")
	if c.Searching {
		t.Error("search bar kept focus after another window was focused")
	}
}

func TestWindowAt(t *testing.T) {
	d := newTestDesktop(t, nil)
	tests := []struct {
		n      int
		want   string
		wantOK bool
	}{
		{1, "about", true},
		{3, "uplink", true},
		{0, "", false},
		{4, "", false},
	}
	for _, tt := range tests {
		got, ok := d.WindowAt(tt.n)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("WindowAt(%d) = %q, %v; want %q, %v", tt.n, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestApplyCatalog(t *testing.T) {
	d := newTestDesktop(t, nil)
	d.Consoles["about"].Cursor = 1 // "two"

	reloaded := strings.Replace(testPack, `title = "ABOUT"`, `title = "IDENT"`, 1)
	reloaded = strings.Replace(reloaded, `sources = ["one", "two"]`, `sources = ["two", "one"]`, 1)
	reloaded += `
[[windows]]
id = "extra"
title = "EXTRA"
`
	cat, err := content.Parse([]byte(reloaded))
	if err != nil {
		t.Fatal(err)
	}
	d.ApplyCatalog(cat)

	if got := d.Windows.Get("about").Title; got != "IDENT" {
		t.Errorf("title = %q, want IDENT", got)
	}
	c := d.Consoles["about"]
	if src, _ := c.Selected(); src != "two" || c.Cursor != 0 {
		t.Errorf("selected = %q at %d, want two at 0", src, c.Cursor)
	}
	if d.Windows.Get("extra") != nil {
		t.Error("reload created a window")
	}
	var warned bool
	for _, m := range d.LogMessages {
		if m.Level == "WARN" && strings.Contains(m.Message, "extra") {
			warned = true
		}
	}
	if !warned {
		t.Error("no warning for the new window")
	}
}

func TestLogRingAndStickyScroll(t *testing.T) {
	d := newTestDesktop(t, nil)
	for i := range config.MaxLogMessages + 25 {
		d.LogInfo("message %d", i)
	}
	if got := len(d.LogMessages); got != config.MaxLogMessages {
		t.Fatalf("kept %d messages, want %d", got, config.MaxLogMessages)
	}
	if d.LogMessages[0].Message != "message 25" {
		t.Errorf("oldest = %q, want message 25", d.LogMessages[0].Message)
	}
	if d.LogScrollOffset != d.maxLogScroll() {
		t.Errorf("offset = %d, want bottom %d", d.LogScrollOffset, d.maxLogScroll())
	}

	d.ScrollLogs(-10)
	held := d.LogScrollOffset
	d.LogWarn("late")
	if d.LogScrollOffset != held {
		t.Errorf("offset moved to %d while scrolled up, want %d", d.LogScrollOffset, held)
	}

	d.ScrollLogs(-10000)
	if d.LogScrollOffset != 0 {
		t.Errorf("offset = %d, want clamped to 0", d.LogScrollOffset)
	}
}

func TestUplinkTransmission(t *testing.T) {
	d := newTestDesktop(t, nil)
	d.ToggleWindow("uplink")
	u := d.Uplinks["uplink"]
	u.Callsign.SetValue("op")

	cmd := d.ActivateUplink("uplink")
	if u.State != UplinkSending {
		t.Fatalf("state = %v, want sending", u.State)
	}
	if again := d.ActivateUplink("uplink"); again != nil {
		t.Error("button pressed while sending returned a command")
	}
	drain(t, d, cmd)
	if u.State != UplinkDone {
		t.Fatalf("state = %v, want done", u.State)
	}
	if len(u.PacketID) != 9 || strings.ToUpper(u.PacketID) != u.PacketID {
		t.Errorf("packet id = %q, want nine upper-case characters", u.PacketID)
	}

	d.ActivateUplink("uplink")
	if u.State != UplinkForm || u.PacketID != "" || u.Callsign.Value() != "" {
		t.Errorf("reset left state=%v packet=%q callsign=%q", u.State, u.PacketID, u.Callsign.Value())
	}
}

func TestStaleUplinkCompletionIgnored(t *testing.T) {
	d := newTestDesktop(t, nil)
	cmd := d.Transmit("uplink")
	msg := cmd().(UplinkDoneMsg)
	d.ResetUplink("uplink")
	d.Update(msg)
	if u := d.Uplinks["uplink"]; u.State != UplinkForm {
		t.Errorf("stale completion moved the form to %v", u.State)
	}
}
