package input

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/ocn-sys/ocn/internal/app"
	"github.com/ocn-sys/ocn/internal/wm"
)

func char(r rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: r, Text: string(r)} }

func key(code rune, mod tea.KeyMod) tea.KeyPressMsg { return tea.KeyPressMsg{Code: code, Mod: mod} }

func press(d *app.Desktop, msgs ...tea.KeyPressMsg) {
	for _, m := range msgs {
		HandleKeyPress(m, d)
	}
}

func TestDigitTogglesWindow(t *testing.T) {
	d := newTestDesktop(t, true)

	press(d, char('2'))
	if st := d.Windows.State("bravo"); st != wm.Active {
		t.Fatalf("bravo state = %v, want active", st)
	}
	if st := d.Windows.State("alpha"); st != wm.Faded {
		t.Errorf("alpha state = %v, want faded", st)
	}

	press(d, char('2'))
	if st := d.Windows.State("bravo"); st != wm.Hidden {
		t.Errorf("bravo state = %v, want hidden", st)
	}
	if st := d.Windows.State("alpha"); st != wm.Active {
		t.Errorf("alpha state = %v, want active again", st)
	}
}

func TestAltDigitTogglesWindow(t *testing.T) {
	d := newTestDesktop(t, true)
	press(d, key('1', tea.ModAlt))
	if st := d.Windows.State("alpha"); st != wm.Hidden {
		t.Errorf("alpha state = %v, want hidden", st)
	}
}

func TestSearchCapturesPrintableKeys(t *testing.T) {
	d := newTestDesktop(t, true)
	c := d.Consoles["alpha"]

	press(d, char('/'))
	if !c.Searching {
		t.Fatal("slash did not focus the search bar")
	}
	press(d, char('2'), char('?'))
	if got := c.Input.Value(); got != "2?" {
		t.Errorf("query = %q, want %q", got, "2?")
	}
	if st := d.Windows.State("bravo"); st != wm.Hidden {
		t.Errorf("typing a digit toggled bravo to %v", st)
	}
	if d.ShowHelp {
		t.Error("typing ? opened help")
	}

	press(d, key(tea.KeyEscape, 0))
	if c.Searching {
		t.Error("esc did not leave the search bar")
	}
	if got := c.Input.Value(); got != "2?" {
		t.Errorf("leaving search changed the query to %q", got)
	}
}

func TestSearchClearKeepsFocus(t *testing.T) {
	d := newTestDesktop(t, true)
	c := d.Consoles["alpha"]
	press(d, char('/'), char('x'), key('u', tea.ModCtrl))
	if got := c.Input.Value(); got != "" {
		t.Errorf("query after ctrl+u = %q, want empty", got)
	}
	if !c.Searching {
		t.Error("ctrl+u left the search bar")
	}
}

func TestSourceCursorWraps(t *testing.T) {
	d := newTestDesktop(t, true)
	c := d.Consoles["alpha"]

	tests := []struct {
		key  tea.KeyPressMsg
		want int
	}{
		{char('j'), 1},
		{char('j'), 0},
		{char('k'), 1},
		{key(tea.KeyUp, 0), 0},
	}
	for i, tt := range tests {
		press(d, tt.key)
		if c.Cursor != tt.want {
			t.Errorf("step %d: cursor = %d, want %d", i, c.Cursor, tt.want)
		}
	}
}

func TestBootKeySkips(t *testing.T) {
	d := newTestDesktop(t, false)
	press(d, char('2'))
	if !d.Boot.Done() {
		t.Fatal("key did not skip boot")
	}
	if st := d.Windows.State("bravo"); st != wm.Hidden {
		t.Errorf("skipping key also toggled bravo to %v", st)
	}
}

func TestQuitDuringBoot(t *testing.T) {
	d := newTestDesktop(t, false)
	_, cmd := HandleKeyPress(key('c', tea.ModCtrl), d)
	if cmd == nil {
		t.Fatal("ctrl+c returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c did not quit")
	}
}

func TestPaletteKeys(t *testing.T) {
	d := newTestDesktop(t, true)

	press(d, key('p', tea.ModCtrl))
	if !d.Palette.Open {
		t.Fatal("ctrl+p did not open the palette")
	}
	press(d, char('b'), char('r'), char('a'))
	it, ok := d.Palette.Selected()
	if !ok || it.ID != "bravo" {
		t.Fatalf("selected = %+v, want bravo", it)
	}
	press(d, key(tea.KeyEnter, 0))
	if d.Palette.Open {
		t.Error("palette still open after launch")
	}
	if st := d.Windows.State("bravo"); st != wm.Active {
		t.Errorf("bravo state = %v, want active", st)
	}
}

func TestPaletteEscape(t *testing.T) {
	d := newTestDesktop(t, true)
	press(d, key('p', tea.ModCtrl), char('1'), key(tea.KeyEscape, 0))
	if d.Palette.Open {
		t.Error("esc did not close the palette")
	}
	if st := d.Windows.State("alpha"); st != wm.Active {
		t.Errorf("typing in the palette changed alpha to %v", st)
	}
}

func TestOverlaysAreExclusive(t *testing.T) {
	d := newTestDesktop(t, true)
	press(d, key(tea.KeyF1, 0))
	if !d.ShowHelp {
		t.Fatal("f1 did not open help")
	}
	press(d, key('l', tea.ModCtrl))
	if d.ShowHelp || !d.ShowLogs {
		t.Errorf("help=%v logs=%v, want only logs", d.ShowHelp, d.ShowLogs)
	}
	press(d, key(tea.KeyEscape, 0))
	if d.ShowLogs {
		t.Error("esc did not close logs")
	}
}

func TestUplinkForm(t *testing.T) {
	d := newTestDesktop(t, true)
	press(d, char('2'))
	u := d.Uplinks["bravo"]

	// Enter focuses the callsign, typing fills it, tab moves on.
	press(d, key(tea.KeyEnter, 0), char('o'), char('1'))
	if got := u.Callsign.Value(); got != "o1" {
		t.Fatalf("callsign = %q, want %q", got, "o1")
	}
	if st := d.Windows.State("alpha"); st != wm.Faded {
		t.Errorf("typing a digit in the form changed alpha to %v", st)
	}
	press(d, key(tea.KeyTab, 0), char('h'), char('i'))
	if got := u.Message.Value(); got != "hi" {
		t.Errorf("message = %q, want %q", got, "hi")
	}

	press(d, key(tea.KeyTab, 0))
	if u.Focus != app.FieldButton {
		t.Fatalf("focus = %d, want button", u.Focus)
	}
	_, cmd := HandleKeyPress(key(tea.KeyEnter, 0), d)
	if u.State != app.UplinkSending {
		t.Fatalf("state = %v, want sending", u.State)
	}
	if cmd == nil {
		t.Fatal("transmit returned no command")
	}
	d.Update(cmd())
	if u.State != app.UplinkDone || len(u.PacketID) != 9 {
		t.Errorf("state = %v packet = %q, want done with a nine character id", u.State, u.PacketID)
	}
}

func TestDispatcherKnowsEveryBinding(t *testing.T) {
	d := newTestDesktop(t, true)
	disp := GetDispatcher()
	for _, section := range []string{"desktop", "console", "search"} {
		for _, action := range d.Keys.Actions(section) {
			if !disp.HasAction(action) {
				t.Errorf("%s action %q has no handler", section, action)
			}
		}
	}
}
