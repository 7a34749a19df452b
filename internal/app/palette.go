package app

import (
	"sort"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/ocn-sys/ocn/internal/content"
)

// Palette item kinds.
const (
	ItemWindow = "window"
	ItemSource = "source"
)

// PaletteItem is one launcher entry.
type PaletteItem struct {
	Kind   string
	ID     string
	Label  string
	Window string
}

func (i PaletteItem) key() string { return i.Label + " " + i.ID }

// Palette is the fuzzy launcher over windows and sources.
type Palette struct {
	Open    bool
	Input   textinput.Model
	Items   []PaletteItem
	Matches []PaletteItem
	Cursor  int
}

const paletteRows = 8

func newPalette() *Palette {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "window or entry"
	in.CharLimit = 64
	return &Palette{Input: in}
}

func paletteItems(c *content.Catalog) []PaletteItem {
	var items []PaletteItem
	for _, w := range c.Windows {
		items = append(items, PaletteItem{Kind: ItemWindow, ID: w.ID, Label: w.Title, Window: w.ID})
	}
	for _, s := range c.Sources {
		w, ok := c.Owner(s.ID)
		if !ok {
			continue
		}
		items = append(items, PaletteItem{Kind: ItemSource, ID: s.ID, Label: s.Label, Window: w.ID})
	}
	return items
}

// SetItems replaces the entries and re-filters.
func (p *Palette) SetItems(items []PaletteItem) {
	p.Items = items
	p.Filter()
}

// Filter ranks the entries against the query. An empty query lists
// everything in declaration order.
func (p *Palette) Filter() {
	q := p.Input.Value()
	if q == "" {
		p.Matches = append(p.Matches[:0], p.Items...)
	} else {
		targets := make([]string, len(p.Items))
		for i, it := range p.Items {
			targets[i] = it.key()
		}
		ranks := fuzzy.RankFindFold(q, targets)
		sort.Stable(ranks)
		p.Matches = p.Matches[:0]
		for _, r := range ranks {
			p.Matches = append(p.Matches, p.Items[r.OriginalIndex])
		}
	}
	p.Cursor = min(p.Cursor, max(len(p.Matches)-1, 0))
}

// Move shifts the selection with wraparound.
func (p *Palette) Move(dir int) {
	n := len(p.Matches)
	if n == 0 {
		return
	}
	p.Cursor = ((p.Cursor+dir)%n + n) % n
}

// Selected returns the highlighted entry.
func (p *Palette) Selected() (PaletteItem, bool) {
	if p.Cursor < 0 || p.Cursor >= len(p.Matches) {
		return PaletteItem{}, false
	}
	return p.Matches[p.Cursor], true
}

// OpenPalette shows the launcher with an empty query.
func (d *Desktop) OpenPalette() tea.Cmd {
	p := d.Palette
	p.Open = true
	p.Cursor = 0
	p.Input.SetValue("")
	p.Filter()
	return p.Input.Focus()
}

// ClosePalette hides the launcher.
func (d *Desktop) ClosePalette() {
	d.Palette.Open = false
	d.Palette.Input.Blur()
}

// UpdatePalette feeds msg to the launcher query.
func (d *Desktop) UpdatePalette(msg tea.Msg) tea.Cmd {
	p := d.Palette
	before := p.Input.Value()
	var cmd tea.Cmd
	p.Input, cmd = p.Input.Update(msg)
	if p.Input.Value() != before {
		p.Cursor = 0
		p.Filter()
	}
	return cmd
}

// LaunchSelected runs the highlighted entry: a window is toggled, a source
// is revealed into the window that lists it.
func (d *Desktop) LaunchSelected() tea.Cmd {
	it, ok := d.Palette.Selected()
	d.ClosePalette()
	if !ok {
		return nil
	}
	d.logger.Debug("launch", "kind", it.Kind, "id", it.ID)
	switch it.Kind {
	case ItemWindow:
		return d.ToggleWindow(it.ID)
	case ItemSource:
		if d.Windows.State(it.Window).IsOpen() {
			d.Windows.Focus(it.Window)
		} else {
			d.Windows.Toggle(it.Window)
		}
		return d.RevealSource(it.Window, it.ID)
	}
	return nil
}

// visible returns the window of matches to draw around the cursor.
func (p *Palette) visible() (start int, items []PaletteItem) {
	if len(p.Matches) <= paletteRows {
		return 0, p.Matches
	}
	start = max(0, min(p.Cursor-paletteRows/2, len(p.Matches)-paletteRows))
	return start, p.Matches[start : start+paletteRows]
}
