package input

import (
	tea "charm.land/bubbletea/v2"

	"github.com/ocn-sys/ocn/internal/app"
	"github.com/ocn-sys/ocn/internal/wm"
)

// Lines moved by one wheel notch.
const wheelStep = 3

// toWorkspace converts a screen event into workspace cells.
func toWorkspace(ev wm.PointerEvent) wm.PointerEvent {
	ev.Y -= app.TopMargin
	return ev
}

// HandleMouse handles press, motion and release. A press is routed to the
// dock or the window chrome under it; every event then goes through the
// pointer bus so a running drag or resize can follow it.
func HandleMouse(msg tea.Msg, d *app.Desktop) (*app.Desktop, tea.Cmd) {
	ev, ok := wm.FromMouse(msg)
	if !ok {
		return d, nil
	}
	var cmd tea.Cmd
	if ev.Kind == wm.PointerDown {
		cmd = handlePress(ev, d)
	}
	d.Pointer.Dispatch(toWorkspace(ev))
	return d, cmd
}

// handlePress takes a press in screen cells.
func handlePress(ev wm.PointerEvent, d *app.Desktop) tea.Cmd {
	if !d.Boot.Done() {
		return d.SkipBoot()
	}
	// Any click dismisses an overlay.
	if d.Palette.Open || d.ShowHelp || d.ShowLogs {
		d.ClosePalette()
		d.ShowHelp, d.ShowLogs = false, false
		return nil
	}
	if ev.Button != tea.MouseLeft {
		return nil
	}

	if ev.Y == d.DockRow() {
		if id, ok := d.DockAt(ev.X); ok {
			return d.ToggleWindow(id)
		}
		return nil
	}
	if ev.Y < app.TopMargin {
		return nil
	}

	ws := toWorkspace(ev)
	w := d.Windows.TopAt(ws.X, ws.Y)
	if w == nil {
		return nil
	}
	d.FocusWindow(w.ID)
	switch wm.RegionAt(w, ws.X, ws.Y) {
	case wm.RegionClose, wm.RegionMinimize:
		d.CloseWindow(w.ID)
	case wm.RegionTitle:
		d.Drag.BeginDrag(w.ID, ws)
	case wm.RegionResize:
		d.Drag.BeginResize(w.ID, ws)
	case wm.RegionBody:
		return d.ClickBody(w.ID, ev.X, ev.Y)
	}
	return nil
}

// HandleMouseWheel scrolls the log viewer or the panel under the pointer.
func HandleMouseWheel(msg tea.MouseWheelMsg, d *app.Desktop) (*app.Desktop, tea.Cmd) {
	m := msg.Mouse()
	delta := 0
	switch m.Button {
	case tea.MouseWheelUp:
		delta = -wheelStep
	case tea.MouseWheelDown:
		delta = wheelStep
	default:
		return d, nil
	}
	if d.ShowLogs {
		d.ScrollLogs(delta)
		return d, nil
	}
	if d.Palette.Open {
		d.Palette.Move(delta / wheelStep)
		return d, nil
	}
	w := d.Windows.TopAt(m.X, m.Y-app.TopMargin)
	if w == nil {
		return d, nil
	}
	if c := d.Consoles[w.ID]; c != nil {
		c.Scroll(delta)
	}
	return d, nil
}
