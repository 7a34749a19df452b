package app

import (
	"slices"
	"strings"

	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/ocn-sys/ocn/internal/content"
	"github.com/ocn-sys/ocn/internal/markup"
	"github.com/ocn-sys/ocn/internal/panel"
	"github.com/ocn-sys/ocn/internal/wm"
)

// Console is the interior of a panel window: a list of triggers, a search
// bar and the panel viewport. Static windows only show the viewport.
type Console struct {
	ID      string
	Static  bool
	Sources []string
	Cursor  int

	Input     textinput.Model
	Searching bool
	View      viewport.Model

	rendered markup.Rendered
	version  uint64
	width    int
	synced   bool
}

func newConsole(w content.Window) *Console {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = "search"
	in.CharLimit = 64
	return &Console{
		ID:      w.ID,
		Static:  w.Kind == content.KindStatic,
		Sources: slices.Clone(w.Sources),
		Input:   in,
		View:    viewport.New(),
	}
}

// Selected returns the source under the cursor.
func (c *Console) Selected() (string, bool) {
	if c.Cursor < 0 || c.Cursor >= len(c.Sources) {
		return "", false
	}
	return c.Sources[c.Cursor], true
}

// MoveCursor moves the trigger cursor with wraparound.
func (c *Console) MoveCursor(dir int) {
	n := len(c.Sources)
	if n == 0 {
		return
	}
	c.Cursor = ((c.Cursor+dir)%n + n) % n
}

func (c *Console) setSources(ids []string) {
	sel, ok := c.Selected()
	c.Sources = slices.Clone(ids)
	c.Cursor = 0
	if ok {
		if i := slices.Index(c.Sources, sel); i >= 0 {
			c.Cursor = i
		}
	}
}

// EnterSearch gives the search bar keyboard focus.
func (c *Console) EnterSearch() tea.Cmd {
	if c.Static {
		return nil
	}
	c.Searching = true
	return c.Input.Focus()
}

// LeaveSearch returns keyboard focus to the trigger list. The query and
// its highlights stay.
func (c *Console) LeaveSearch() {
	c.Searching = false
	c.Input.Blur()
}

func (c *Console) clearSearch() {
	c.Input.SetValue("")
}

// Scroll moves the panel viewport by delta lines.
func (c *Console) Scroll(delta int) {
	if delta < 0 {
		c.View.ScrollUp(-delta)
	} else if delta > 0 {
		c.View.ScrollDown(delta)
	}
}

// consoleLayout holds the screen rectangles of a console window.
type consoleLayout struct {
	Inner  wm.Rect
	Search wm.Rect
	List   wm.Rect
	Body   wm.Rect
	Prev   wm.Point
	Next   wm.Point
}

const counterWidth = 7

func (d *Desktop) layoutConsole(w *wm.Window, c *Console) consoleLayout {
	inner := wm.Rect{
		Pos:  wm.Point{X: w.Pos.X + 1, Y: w.Pos.Y + TopMargin + 1},
		Size: wm.Size{W: max(w.Size.W-2, 0), H: max(w.Size.H-2, 0)},
	}
	l := consoleLayout{Inner: inner, Prev: wm.Point{X: -1, Y: -1}, Next: wm.Point{X: -1, Y: -1}}
	if c.Static {
		l.Body = inner
		return l
	}

	l.Search = wm.Rect{Pos: inner.Pos, Size: wm.Size{W: inner.Size.W, H: min(1, inner.Size.H)}}
	right := inner.Pos.X + inner.Size.W - 1
	l.Next = wm.Point{X: right, Y: inner.Pos.Y}
	l.Prev = wm.Point{X: right - 2, Y: inner.Pos.Y}

	listW := 0
	for _, id := range c.Sources {
		listW = max(listW, ansi.StringWidth(d.sourceLabel(id))+3)
	}
	listW = min(listW, inner.Size.W/3)
	bodyY := inner.Pos.Y + 1
	bodyH := max(inner.Size.H-1, 0)
	l.List = wm.Rect{Pos: wm.Point{X: inner.Pos.X, Y: bodyY}, Size: wm.Size{W: listW, H: bodyH}}
	bodyX := inner.Pos.X
	if listW > 0 {
		bodyX += listW + 1
	}
	l.Body = wm.Rect{
		Pos:  wm.Point{X: bodyX, Y: bodyY},
		Size: wm.Size{W: max(inner.Pos.X+inner.Size.W-bodyX, 0), H: bodyH},
	}
	return l
}

func (d *Desktop) sourceLabel(id string) string {
	if s, ok := d.Catalog.Source(id); ok {
		return s.Label
	}
	return id
}

// sync re-renders the panel into the viewport when its markup or the body
// width changed, then applies the pending scroll request.
func (c *Console) sync(p *panel.Panel, body wm.Rect, st markup.Styles) {
	w, h := max(body.Size.W, 1), max(body.Size.H, 1)
	if !c.synced || p.Version != c.version || w != c.width {
		c.rendered = markup.Render(p.Markup, w, st)
		c.version, c.width, c.synced = p.Version, w, true
		c.View.SetWidth(w)
		c.View.SetHeight(h)
		c.View.SetContent(strings.Join(c.rendered.Lines, "\n"))
	}
	if c.View.Height() != h {
		c.View.SetHeight(h)
	}
	switch p.TakeScroll() {
	case panel.ScrollTop:
		c.View.GotoTop()
	case panel.ScrollBottom:
		c.View.GotoBottom()
	case panel.ScrollActive:
		if c.rendered.ActiveLine >= 0 {
			c.View.SetYOffset(max(c.rendered.ActiveLine-h/2, 0))
		}
	}
}

// syncPanels brings every open console up to date with its panel.
func (d *Desktop) syncPanels() {
	for _, w := range d.Windows.Open() {
		c := d.Consoles[w.ID]
		p := d.Panels.Get(w.ID)
		if c == nil || p == nil {
			continue
		}
		c.sync(p, d.layoutConsole(w, c).Body, d.Styles)
	}
}

// SetSearchQuery runs the console's current query against its panel.
func (d *Desktop) SetSearchQuery(windowID string) {
	c := d.Consoles[windowID]
	if c == nil || c.Static {
		return
	}
	d.Search.SetQuery(windowID, windowID, c.Input.Value())
}

// NavigateSearch moves the active match of windowID.
func (d *Desktop) NavigateSearch(windowID string, dir int) {
	d.Search.Navigate(windowID, dir)
}

// UpdateSearchInput feeds msg to the search bar of the focused console and
// re-runs the query when the text changed.
func (d *Desktop) UpdateSearchInput(msg tea.Msg) tea.Cmd {
	c := d.ActiveConsole()
	if c == nil || !c.Searching {
		return nil
	}
	before := c.Input.Value()
	var cmd tea.Cmd
	c.Input, cmd = c.Input.Update(msg)
	if c.Input.Value() != before {
		d.SetSearchQuery(c.ID)
	}
	return cmd
}

// ClearSearch empties the query of windowID and restores its panel.
func (d *Desktop) ClearSearch(windowID string) {
	c := d.Consoles[windowID]
	if c == nil {
		return
	}
	c.clearSearch()
	d.SetSearchQuery(windowID)
}

// clickConsole handles a pointer press inside the body of a console.
func (d *Desktop) clickConsole(w *wm.Window, c *Console, x, y int) tea.Cmd {
	l := d.layoutConsole(w, c)
	switch {
	case x == l.Prev.X && y == l.Prev.Y:
		d.NavigateSearch(c.ID, -1)
	case x == l.Next.X && y == l.Next.Y:
		d.NavigateSearch(c.ID, 1)
	case l.Search.Contains(x, y):
		return c.EnterSearch()
	case l.List.Contains(x, y):
		c.LeaveSearch()
		row := y - l.List.Pos.Y
		if row < len(c.Sources) {
			return d.RevealSource(c.ID, c.Sources[row])
		}
	case l.Body.Contains(x, y):
		c.LeaveSearch()
	}
	return nil
}

// consoleLines draws the interior of a console window, one string per
// inner row.
func (d *Desktop) consoleLines(w *wm.Window, c *Console, focused bool) []string {
	l := d.layoutConsole(w, c)
	innerW, innerH := l.Inner.Size.W, l.Inner.Size.H
	rows := make([]string, 0, innerH)
	if innerW <= 0 || innerH <= 0 {
		return rows
	}

	bodyLines := strings.Split(c.View.View(), "\n")
	if c.Static {
		for i := range innerH {
			line := ""
			if i < len(bodyLines) {
				line = bodyLines[i]
			}
			rows = append(rows, fit(line, innerW))
		}
		return rows
	}

	rows = append(rows, d.searchBar(c, innerW, focused))
	sep := dividerGlyph(d.Config.Appearance.ASCIIOnly)
	for i := range innerH - 1 {
		var sb strings.Builder
		if l.List.Size.W > 0 {
			sb.WriteString(d.listRow(c, i, l.List.Size.W, focused))
			sb.WriteString(dimStyle().Render(sep))
		}
		line := ""
		if i < len(bodyLines) {
			line = bodyLines[i]
		}
		sb.WriteString(fit(line, l.Body.Size.W))
		rows = append(rows, fit(sb.String(), innerW))
	}
	return rows
}

func (d *Desktop) listRow(c *Console, i, width int, focused bool) string {
	if i >= len(c.Sources) {
		return strings.Repeat(" ", width)
	}
	id := c.Sources[i]
	label := d.sourceLabel(id)
	p := d.Panels.Get(c.ID)
	selected := p != nil && p.SelectedTrigger == id
	marker := "  "
	if i == c.Cursor && focused && !c.Searching {
		marker = "> "
	}
	text := fit(marker+label, width)
	switch {
	case selected:
		return selectedStyle().Render(text)
	case i == c.Cursor && focused:
		return accentStyle().Render(text)
	default:
		return dimStyle().Render(text)
	}
}

func (d *Desktop) searchBar(c *Console, width int, focused bool) string {
	prev, next := "▲", "▼"
	icon := "⌕ "
	if d.Config.Appearance.ASCIIOnly {
		prev, next, icon = "^", "v", "/ "
	}
	counter := fit(d.Search.Counter(c.ID), counterWidth)
	controls := " " + counter + " " + prev + " " + next
	inputW := max(width-ansi.StringWidth(icon)-ansi.StringWidth(controls), 1)
	c.Input.SetWidth(inputW)

	var field string
	if c.Searching && focused {
		field = c.Input.View()
	} else if v := c.Input.Value(); v != "" {
		field = v
	} else {
		field = dimStyle().Render(c.Input.Placeholder)
	}
	return accentStyle().Render(icon) + fit(field, inputW) + dimStyle().Render(" "+counter+" ") +
		accentStyle().Render(prev+" "+next)
}
