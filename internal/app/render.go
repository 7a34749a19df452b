package app

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/ocn-sys/ocn/internal/theme"
	"github.com/ocn-sys/ocn/internal/wm"
)

func accentStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(theme.Accent()) }
func dimStyle() lipgloss.Style    { return lipgloss.NewStyle().Foreground(theme.Dim()) }

func selectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Background(theme.AccentDim()).Foreground(theme.Background()).Bold(true)
}

func particleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Particle())
}

func particleLinkStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.ParticleLink()).Faint(true)
}

func dividerGlyph(ascii bool) string {
	if ascii {
		return "|"
	}
	return "│"
}

// frameGlyphs is the window border set.
type frameGlyphs struct {
	tl, tr, bl, br, h, v, grip string
}

func glyphs(ascii bool) frameGlyphs {
	if ascii {
		return frameGlyphs{"+", "+", "+", "+", "-", "|", "/"}
	}
	return frameGlyphs{"╭", "╮", "╰", "╯", "─", "│", "◢"}
}

// renderWindow draws w with its chrome. The result is exactly
// w.Size.H lines of w.Size.W cells.
func (d *Desktop) renderWindow(w *wm.Window) []string {
	W, H := w.Size.W, w.Size.H
	if W < 2 || H < 2 {
		return nil
	}
	g := glyphs(d.Config.Appearance.ASCIIOnly)
	focused := w.State == wm.Active
	border := lipgloss.NewStyle().Foreground(theme.BorderFaded())
	title := lipgloss.NewStyle().Foreground(theme.Dim())
	if focused {
		border = lipgloss.NewStyle().Foreground(theme.BorderActive())
		title = lipgloss.NewStyle().Foreground(theme.Accent()).Bold(true)
	}

	lines := make([]string, 0, H)

	// Top border: corner, title, fill, then "[_][x]" right before the corner.
	btnW, buttons := 0, ""
	if W > wm.ButtonWidth*2+3 {
		btnW = wm.ButtonWidth * 2
		buttons = lipgloss.NewStyle().Foreground(theme.ButtonMinimize()).Render("[_]") +
			lipgloss.NewStyle().Foreground(theme.ButtonClose()).Render("[x]")
	}
	span := W - 2 - btnW
	label := ansi.Truncate(" "+w.Title+" ", max(span-1, 0), "…")
	head := border.Render(g.h) + title.Render(label)
	if fill := span - 1 - ansi.StringWidth(label); fill > 0 {
		head += border.Render(strings.Repeat(g.h, fill))
	}
	lines = append(lines, border.Render(g.tl)+fit(head, span)+buttons+border.Render(g.tr))

	var body []string
	switch {
	case d.Consoles[w.ID] != nil:
		body = d.consoleLines(w, d.Consoles[w.ID], focused)
	case d.Uplinks[w.ID] != nil:
		body = d.uplinkLines(w, d.Uplinks[w.ID], focused)
	}
	side := border.Render(g.v)
	for i := range H - 2 {
		row := ""
		if i < len(body) {
			row = body[i]
		}
		lines = append(lines, side+fit(row, W-2)+side)
	}

	// The grip and the corner form the resize handle.
	lines = append(lines, border.Render(g.bl+strings.Repeat(g.h, max(W-3, 0))+g.grip+g.br))
	return lines
}

// dockItem is one dock entry and the cells it occupies.
type dockItem struct {
	ID    string
	X, W  int
	Label string
}

const dockPrefix = " OCN ▸ "

// dockLayout places one entry per declared window. Render and hit testing
// share it.
func (d *Desktop) dockLayout() []dockItem {
	x := ansi.StringWidth(dockPrefix)
	var items []dockItem
	for i, w := range d.Windows.Windows() {
		label := fmt.Sprintf(" %d:%s ", i+1, w.Title)
		lw := ansi.StringWidth(label)
		items = append(items, dockItem{ID: w.ID, X: x, W: lw, Label: label})
		x += lw + 1
	}
	return items
}

// DockAt returns the window whose dock entry covers column x.
func (d *Desktop) DockAt(x int) (string, bool) {
	for _, it := range d.dockLayout() {
		if x >= it.X && x < it.X+it.W {
			return it.ID, true
		}
	}
	return "", false
}

// DockRow is the screen row of the dock.
func (d *Desktop) DockRow() int { return d.Height - DockHeight }

func (d *Desktop) renderDock() string {
	bg := lipgloss.NewStyle().Background(theme.DockBg())
	var sb strings.Builder
	sb.WriteString(bg.Foreground(theme.Accent()).Bold(true).Render(dockPrefix))
	for _, it := range d.dockLayout() {
		st := bg.Foreground(theme.DockFg())
		switch d.Windows.State(it.ID) {
		case wm.Active:
			if d.Boot.Done() {
				st = lipgloss.NewStyle().Background(theme.DockHighlight()).Foreground(theme.Background()).Bold(true)
			}
		case wm.Faded:
			st = bg.Foreground(theme.Text())
		}
		sb.WriteString(st.Render(it.Label))
		sb.WriteString(bg.Render(" "))
	}
	return bg.Render(fit(sb.String(), d.Width))
}

func (d *Desktop) renderTopBar() string {
	bg := lipgloss.NewStyle().Background(theme.TitleBarBg())
	left := " OCN // ORBITAL CONTROL NODE"
	if d.IsSSHMode {
		left += " [SSH]"
	}
	var right []string
	if d.Config.Appearance.ShowTelemetry {
		right = append(right, d.GetCPUGraph(), d.GetMemGauge())
	}
	if d.Config.Appearance.ShowClock {
		right = append(right, d.ClockText())
	}
	r := strings.Join(right, "  ") + " "
	gap := max(d.Width-ansi.StringWidth(left)-ansi.StringWidth(r), 1)
	line := bg.Foreground(theme.Accent()).Bold(true).Render(left) +
		bg.Render(strings.Repeat(" ", gap)) +
		bg.Foreground(theme.Text()).Render(r)
	return fit(line, d.Width)
}

func (d *Desktop) renderBoot(c *canvas) {
	banner := bootBanner
	if d.Config.Appearance.ASCIIOnly {
		banner = bootBannerASCII
	}
	lines := append(append(append([]string{}, banner...), ""), bootLog...)
	st := accentStyle()
	if d.Boot.Stage == BootFading {
		st = st.Faint(true)
	}
	top := max((d.Height-len(lines))/2, 0)
	for i, l := range lines {
		x := max((d.Width-ansi.StringWidth(l))/2, 0)
		if i >= len(banner) {
			x = max((d.Width-ansi.StringWidth(bootLog[0])-10)/2, 0)
		}
		c.put(x, top+i, st.Render(l))
	}
}

// overlayBox frames content and centres it on the canvas.
func (d *Desktop) overlayBox(c *canvas, content string) {
	border := lipgloss.RoundedBorder()
	if d.Config.Appearance.ASCIIOnly {
		border = lipgloss.ASCIIBorder()
	}
	box := lipgloss.NewStyle().
		Border(border).
		BorderForeground(theme.HelpBorder()).
		Background(theme.Background()).
		Padding(0, 1).
		Render(content)
	lines := strings.Split(box, "\n")
	w := lipgloss.Width(box)
	x := max((d.Width-w)/2, 0)
	y := max((d.Height-len(lines))/2, 0)
	c.block(x, y, lines)
}

func (d *Desktop) renderLogs() string {
	var sb strings.Builder
	sb.WriteString(accentStyle().Bold(true).Render("SYSTEM LOG"))
	sb.WriteString("\n\n")
	per := d.logsPerPage()
	start := min(d.LogScrollOffset, max(len(d.LogMessages)-per, 0))
	end := min(start+per, len(d.LogMessages))
	width := max(min(d.Width-10, 90), 20)
	for _, m := range d.LogMessages[start:end] {
		lvl := dimStyle()
		switch m.Level {
		case "WARN":
			lvl = lipgloss.NewStyle().Foreground(theme.Warn())
		case "ERROR":
			lvl = lipgloss.NewStyle().Foreground(theme.Error())
		}
		line := dimStyle().Render(m.Time.Format("15:04:05")) + " " + lvl.Render(fmt.Sprintf("%-5s", m.Level)) + " " + m.Message
		sb.WriteString(fit(line, width))
		sb.WriteString("\n")
	}
	if len(d.LogMessages) == 0 {
		sb.WriteString(dimStyle().Render(fit("no messages", width)))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle().Render(fmt.Sprintf("%d-%d of %d  up/down to scroll, esc to close", start+min(1, end), end, len(d.LogMessages))))
	return sb.String()
}

func (d *Desktop) renderPalette() string {
	p := d.Palette
	width := max(min(d.Width-12, 56), 24)
	p.Input.SetWidth(width - 2)

	var sb strings.Builder
	sb.WriteString(accentStyle().Bold(true).Render("LAUNCH"))
	sb.WriteString("\n")
	sb.WriteString(fit(p.Input.View(), width))
	sb.WriteString("\n\n")
	start, items := p.visible()
	for i, it := range items {
		kind := "WIN"
		if it.Kind == ItemSource {
			kind = "DAT"
		}
		line := fmt.Sprintf(" %s  %s", kind, it.Label)
		if it.Kind == ItemSource {
			line += dimStyle().Render("  " + d.windowTitle(it.Window))
		}
		line = fit(line, width)
		if start+i == p.Cursor {
			line = selectedStyle().Render(ansi.Strip(line))
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	if len(p.Matches) == 0 {
		sb.WriteString(dimStyle().Render(fit(" no match", width)))
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func (d *Desktop) windowTitle(id string) string {
	if w := d.Windows.Get(id); w != nil {
		return w.Title
	}
	return id
}

// Render composes the full screen.
func (d *Desktop) Render() string {
	if d.Width <= 0 || d.Height <= 0 {
		return ""
	}
	c := newCanvas(d.Width, d.Height)
	if !d.Boot.Done() {
		d.renderBoot(c)
		return c.String()
	}

	if d.Particles.Running {
		c.block(0, TopMargin, d.Particles.Render(d.Config.Appearance.ASCIIOnly))
	}
	for _, w := range d.Windows.Open() {
		c.block(w.Pos.X, w.Pos.Y+TopMargin, d.renderWindow(w))
	}
	c.put(0, 0, d.renderTopBar())
	c.put(0, d.DockRow(), d.renderDock())

	switch {
	case d.Palette.Open:
		d.overlayBox(c, d.renderPalette())
	case d.ShowHelp:
		d.overlayBox(c, d.RenderHelp(d.Height-10))
	case d.ShowLogs:
		d.overlayBox(c, d.renderLogs())
	}
	return c.String()
}

// View implements tea.Model.
func (d *Desktop) View() tea.View {
	var view tea.View
	view.SetContent(d.Render())
	view.AltScreen = true
	view.MouseMode = tea.MouseModeAllMotion
	view.ReportFocus = true
	return view
}
