package input

import (
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/ocn-sys/ocn/internal/app"
	"github.com/ocn-sys/ocn/internal/config"
	"github.com/ocn-sys/ocn/internal/content"
	"github.com/ocn-sys/ocn/internal/wm"
)

const testPack = `
[[windows]]
id = "alpha"
title = "ALPHA"
kind = "console"
x = 2
y = 1
width = 40
height = 12
open = true
sources = ["one", "two"]

[[windows]]
id = "bravo"
title = "BRAVO"
kind = "uplink"
x = 50
y = 10
width = 40
height = 14

[[sources]]
id = "one"
label = "ONE"
body = "first source"

[[sources]]
id = "two"
label = "TWO"
body = "second source"
`

func immediate(_ time.Duration, msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func newTestDesktop(t *testing.T, skipBoot bool) *app.Desktop {
	t.Helper()
	cat, err := content.Parse([]byte(testPack))
	if err != nil {
		t.Fatalf("parse pack: %v", err)
	}
	cfg := config.DefaultConfig()
	cfg.Appearance.SkipBoot = skipBoot
	cfg.Appearance.Particles = 0
	d, err := app.New(app.Options{Config: cfg, Catalog: cat, Schedule: immediate})
	if err != nil {
		t.Fatalf("new desktop: %v", err)
	}
	d.Resize(100, 40)
	return d
}

func click(x, y int) tea.MouseClickMsg {
	return tea.MouseClickMsg{X: x, Y: y, Button: tea.MouseLeft}
}

func motion(x, y int) tea.MouseMotionMsg {
	return tea.MouseMotionMsg{X: x, Y: y, Button: tea.MouseLeft}
}

func release(x, y int) tea.MouseReleaseMsg {
	return tea.MouseReleaseMsg{X: x, Y: y, Button: tea.MouseLeft}
}

func TestToWorkspace(t *testing.T) {
	tests := []struct {
		name string
		in   wm.PointerEvent
		want wm.PointerEvent
	}{
		{"top bar", wm.PointerEvent{X: 3, Y: 0}, wm.PointerEvent{X: 3, Y: -1}},
		{"first workspace row", wm.PointerEvent{X: 0, Y: 1}, wm.PointerEvent{X: 0, Y: 0}},
		{"keeps kind", wm.PointerEvent{Kind: wm.PointerUp, X: 7, Y: 9}, wm.PointerEvent{Kind: wm.PointerUp, X: 7, Y: 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toWorkspace(tt.in); got != tt.want {
				t.Errorf("toWorkspace(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTitleDragMovesWindow(t *testing.T) {
	d := newTestDesktop(t, true)
	baseline := d.Pointer.Handlers()

	// The title row of alpha is screen row 2.
	HandleMouse(click(10, 2), d)
	if d.Drag.Active() == nil {
		t.Fatal("press on the title did not start a drag")
	}
	HandleMouse(motion(20, 7), d)
	HandleMouse(release(20, 7), d)

	if got := d.Windows.Get("alpha").Pos; got != (wm.Point{X: 12, Y: 6}) {
		t.Errorf("position = %+v, want {12 6}", got)
	}
	if got := d.Pointer.Handlers(); got != baseline {
		t.Errorf("handlers after release = %d, want %d", got, baseline)
	}
}

func TestResizeGrip(t *testing.T) {
	d := newTestDesktop(t, true)
	w := d.Windows.Get("alpha")
	// Bottom right corner in screen cells.
	x, y := w.Pos.X+w.Size.W-1, w.Pos.Y+w.Size.H-1+app.TopMargin

	HandleMouse(click(x, y), d)
	HandleMouse(motion(x+5, y+3), d)
	HandleMouse(release(x+5, y+3), d)

	if got := d.Windows.Get("alpha").Size; got != (wm.Size{W: 45, H: 15}) {
		t.Errorf("size = %+v, want {45 15}", got)
	}
}

func TestCloseAndMinimizeButtons(t *testing.T) {
	tests := []struct {
		name string
		x    func(*wm.Window) int
	}{
		{"close", wm.CloseButtonX},
		{"minimize", wm.MinimizeButtonX},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDesktop(t, true)
			w := d.Windows.Get("alpha")
			HandleMouse(click(tt.x(w)+1, w.Pos.Y+app.TopMargin), d)
			if st := d.Windows.State("alpha"); st != wm.Hidden {
				t.Errorf("state = %v, want hidden", st)
			}
		})
	}
}

func TestDockClickTogglesWindow(t *testing.T) {
	d := newTestDesktop(t, true)
	var bravoX int
	for x := range d.Width {
		if id, ok := d.DockAt(x); ok && id == "bravo" {
			bravoX = x
			break
		}
	}
	if bravoX == 0 {
		t.Fatal("bravo has no dock entry")
	}

	HandleMouse(click(bravoX, d.DockRow()), d)
	if st := d.Windows.State("bravo"); st != wm.Active {
		t.Fatalf("after first click state = %v, want active", st)
	}
	HandleMouse(click(bravoX, d.DockRow()), d)
	if st := d.Windows.State("bravo"); st != wm.Hidden {
		t.Errorf("after second click state = %v, want hidden", st)
	}
}

func TestPressOnEmptyWorkspace(t *testing.T) {
	d := newTestDesktop(t, true)
	_, cmd := HandleMouse(click(95, 35), d)
	if cmd != nil {
		t.Error("press on empty workspace returned a command")
	}
	if d.Drag.Active() != nil {
		t.Error("press on empty workspace started a gesture")
	}
	if st := d.Windows.State("alpha"); st != wm.Active {
		t.Errorf("alpha state = %v, want active", st)
	}
}

func TestClickDismissesOverlay(t *testing.T) {
	d := newTestDesktop(t, true)
	d.ShowHelp = true
	HandleMouse(click(10, 2), d)
	if d.ShowHelp {
		t.Error("help still shown after click")
	}
	if d.Drag.Active() != nil {
		t.Error("click that dismissed an overlay started a drag")
	}
}

func TestClickSkipsBoot(t *testing.T) {
	d := newTestDesktop(t, false)
	if d.Boot.Done() {
		t.Fatal("boot already done")
	}
	HandleMouse(click(1, 1), d)
	if !d.Boot.Done() {
		t.Error("click did not skip boot")
	}
}

func TestWheelScrollsLogs(t *testing.T) {
	d := newTestDesktop(t, true)
	for i := range 60 {
		d.LogInfo("line %d", i)
	}
	d.ShowLogs = true
	start := d.LogScrollOffset
	HandleMouseWheel(tea.MouseWheelMsg{X: 10, Y: 10, Button: tea.MouseWheelUp}, d)
	if got := d.LogScrollOffset; got != start-wheelStep {
		t.Errorf("offset = %d, want %d", got, start-wheelStep)
	}
}
