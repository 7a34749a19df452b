// Package app implements the OCN desktop: the Bubble Tea model that owns
// the window registry, the panels and their reveal engine, the search
// overlay and the decorative collaborators around them.
package app

import (
	"fmt"
	"io"
	"slices"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/log/v2"

	"github.com/ocn-sys/ocn/internal/config"
	"github.com/ocn-sys/ocn/internal/content"
	"github.com/ocn-sys/ocn/internal/markup"
	"github.com/ocn-sys/ocn/internal/panel"
	"github.com/ocn-sys/ocn/internal/reveal"
	"github.com/ocn-sys/ocn/internal/search"
	"github.com/ocn-sys/ocn/internal/theme"
	"github.com/ocn-sys/ocn/internal/wm"
)

// Screen rows reserved outside the workspace.
const (
	TopMargin  = 1
	DockHeight = 1
)

// LogMessage is one entry of the in-app log viewer.
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
}

// Options configures a Desktop. Zero values take defaults.
type Options struct {
	Config  *config.UserConfig
	Catalog *content.Catalog
	// Watcher, when set, hot reloads the catalog.
	Watcher *content.Watcher
	Logger  *log.Logger
	Sampler Sampler
	SSH     bool
	Seed    uint64
	Now     func() time.Time
	// Schedule delivers msg after d. Defaults to a tea.Tick; tests replace
	// it to run timers immediately.
	Schedule func(d time.Duration, msg tea.Msg) tea.Cmd
}

// Desktop is the root Bubble Tea model.
type Desktop struct {
	Config  *config.UserConfig
	Keys    *config.KeybindRegistry
	Catalog *content.Catalog

	Windows *wm.Registry
	Pointer *wm.PointerBus
	Drag    *wm.Controller
	Panels  *panel.Store
	Reveal  *reveal.Engine
	Search  *search.Overlay

	Consoles  map[string]*Console
	Uplinks   map[string]*Uplink
	Palette   *Palette
	Particles *Field
	Boot      Boot

	Clock      time.Time
	CPUHistory []float64
	MemUsage   float64

	LogMessages     []LogMessage
	LogScrollOffset int
	ShowLogs        bool
	ShowHelp        bool

	Width, Height int
	IsSSHMode     bool

	Styles markup.Styles

	logger   *log.Logger
	watcher  *content.Watcher
	sampler  Sampler
	now      func() time.Time
	schedule func(time.Duration, tea.Msg) tea.Cmd
}

// New builds a desktop from opts.
func New(opts Options) (*Desktop, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cat := opts.Catalog
	if cat == nil {
		var err error
		if cat, err = content.Load(cfg.Content.Path); err != nil {
			return nil, err
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	schedule := opts.Schedule
	if schedule == nil {
		schedule = after
	}
	sampler := opts.Sampler
	if sampler == nil {
		sampler = SystemSampler{}
	}

	d := &Desktop{
		Config:    cfg,
		Keys:      config.NewKeybindRegistry(cfg),
		Catalog:   cat,
		Consoles:  make(map[string]*Console),
		Uplinks:   make(map[string]*Uplink),
		IsSSHMode: opts.SSH,
		Styles:    theme.MarkupStyles(cfg.Reveal.CodeStyle, cfg.Appearance.ASCIIOnly),
		logger:    logger,
		watcher:   opts.Watcher,
		sampler:   sampler,
		now:       now,
		schedule:  schedule,
		Clock:     now(),
	}

	d.Windows = wm.NewRegistry(wm.Options{
		Nudge:       wm.Point{X: cfg.Layout.NudgeX, Y: cfg.Layout.NudgeY},
		NarrowWidth: cfg.Layout.NarrowWidth,
		MinSize:     wm.Size{W: cfg.Layout.MinWidth, H: cfg.Layout.MinHeight},
		Grip:        cfg.Layout.Grip,
	}, cat.Decls()...)
	d.Pointer = wm.NewPointerBus()
	d.Drag = wm.NewController(d.Windows, d.Pointer)
	d.Drag.OnEnd = func(s wm.Session) {
		w := d.Windows.Get(s.WindowID)
		if w == nil {
			return
		}
		d.logger.Debug("gesture end", "window", s.WindowID, "kind", s.Kind,
			"x", w.Pos.X, "y", w.Pos.Y, "w", w.Size.W, "h", w.Size.H)
	}

	d.Panels = panel.NewStore(cat.PanelIDs()...)
	ropts := reveal.OptionsFrom(cfg)
	ropts.Logger = logger.WithPrefix("reveal")
	ropts.Schedule = schedule
	conv := markup.NewGoldmark(markup.GoldmarkOptions{HardWraps: cfg.Reveal.HardWraps})
	d.Reveal = reveal.NewEngine(conv, d.lookup, d.Panels, ropts)
	d.Search = search.New(d.Panels, func(panelID string) { d.Reveal.Finish(panelID) })
	d.Reveal.SetSearch(d.Search)

	for _, w := range cat.Windows {
		switch {
		case w.HasPanel():
			d.Consoles[w.ID] = newConsole(w)
		case w.Kind == content.KindUplink:
			d.Uplinks[w.ID] = newUplink(w.ID)
		}
	}
	d.Palette = newPalette()
	d.Palette.SetItems(paletteItems(cat))
	d.Particles = NewField(cfg.Appearance.Particles, cfg.Appearance.LinkDistance, opts.Seed)
	d.Boot = newBoot(cfg)

	return d, nil
}

// lookup resolves sources through the current catalog so a reload takes
// effect for the next reveal.
func (d *Desktop) lookup(id string) (reveal.Source, bool) {
	return d.Catalog.Lookup(id)
}

// Logger returns the file logger of the desktop.
func (d *Desktop) Logger() *log.Logger { return d.logger }

// Log adds a message to the log viewer and the file log.
func (d *Desktop) Log(level, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	wasAtBottom := d.LogScrollOffset >= d.maxLogScroll()-1

	d.LogMessages = append(d.LogMessages, LogMessage{Time: d.now(), Level: level, Message: message})
	if len(d.LogMessages) > config.MaxLogMessages {
		d.LogMessages = d.LogMessages[len(d.LogMessages)-config.MaxLogMessages:]
	}
	if wasAtBottom {
		d.LogScrollOffset = d.maxLogScroll()
	}

	switch level {
	case "ERROR":
		d.logger.Error(message)
	case "WARN":
		d.logger.Warn(message)
	default:
		d.logger.Info(message)
	}
}

// LogInfo logs an informational message.
func (d *Desktop) LogInfo(format string, args ...any) { d.Log("INFO", format, args...) }

// LogWarn logs a warning.
func (d *Desktop) LogWarn(format string, args ...any) { d.Log("WARN", format, args...) }

// LogError logs an error.
func (d *Desktop) LogError(format string, args ...any) { d.Log("ERROR", format, args...) }

func (d *Desktop) logsPerPage() int {
	return max(d.Height-10, 3)
}

func (d *Desktop) maxLogScroll() int {
	return max(len(d.LogMessages)-d.logsPerPage(), 0)
}

// ScrollLogs moves the log viewer by delta entries.
func (d *Desktop) ScrollLogs(delta int) {
	d.LogScrollOffset = max(0, min(d.LogScrollOffset+delta, d.maxLogScroll()))
}

// Resize records the terminal size and re-fits the workspace.
func (d *Desktop) Resize(width, height int) {
	d.Width, d.Height = width, height
	ws := d.Workspace()
	d.Windows.SetViewport(ws.W, ws.H)
	d.Particles.Resize(ws.W, ws.H)
}

// Workspace is the area between the top bar and the dock.
func (d *Desktop) Workspace() wm.Size {
	return wm.Size{W: max(d.Width, 0), H: max(d.Height-TopMargin-DockHeight, 0)}
}

// ToggleWindow opens and focuses id, or closes it when it is focused.
// Opening a panel window that shows nothing reveals its selected source.
func (d *Desktop) ToggleWindow(id string) tea.Cmd {
	if d.Windows.Get(id) == nil {
		d.logger.Debug("toggle: unknown window", "window", id)
		return nil
	}
	prev := d.Windows.Active()
	st := d.Windows.Toggle(id)
	d.logger.Debug("toggle", "window", id, "state", st)
	if st != wm.Active {
		d.blurInputs(id)
		return nil
	}
	if prev != nil && prev.ID != id {
		d.blurInputs(prev.ID)
	}
	return d.autoReveal(id)
}

// CloseWindow hides id.
func (d *Desktop) CloseWindow(id string) {
	if d.Drag.Active() != nil && d.Drag.Active().WindowID == id {
		d.Drag.Cancel()
	}
	d.Windows.Close(id)
	d.blurInputs(id)
}

// CloseActive hides the focused window.
func (d *Desktop) CloseActive() {
	if w := d.Windows.Active(); w != nil {
		d.CloseWindow(w.ID)
	}
}

// FocusWindow raises an open window. Text inputs of the window losing
// focus give up the keyboard.
func (d *Desktop) FocusWindow(id string) {
	if prev := d.Windows.Active(); prev != nil && prev.ID != id && d.Windows.State(id).IsOpen() {
		d.blurInputs(prev.ID)
	}
	d.Windows.Focus(id)
}

// ClickBody routes a press at screen cell (x, y) to the interior of
// windowID.
func (d *Desktop) ClickBody(windowID string, x, y int) tea.Cmd {
	w := d.Windows.Get(windowID)
	if w == nil {
		return nil
	}
	if c := d.Consoles[windowID]; c != nil {
		return d.clickConsole(w, c, x, y)
	}
	if u := d.Uplinks[windowID]; u != nil {
		return d.clickUplink(w, u, x, y)
	}
	return nil
}

// CycleWindows focuses the next or previous open window.
func (d *Desktop) CycleWindows(dir int) {
	if w := d.Windows.Cycle(dir); w != nil {
		d.logger.Debug("cycle", "window", w.ID)
	}
}

// WindowAt returns the id of the n-th declared window, counting from 1.
func (d *Desktop) WindowAt(n int) (string, bool) {
	ws := d.Windows.Windows()
	if n < 1 || n > len(ws) {
		return "", false
	}
	return ws[n-1].ID, true
}

// RevealSource plays sourceID into the panel of windowID and marks it
// selected in that window's trigger list.
func (d *Desktop) RevealSource(windowID, sourceID string) tea.Cmd {
	c := d.Consoles[windowID]
	if c == nil {
		d.logger.Debug("reveal: window has no panel", "window", windowID)
		return nil
	}
	if i := slices.Index(c.Sources, sourceID); i >= 0 {
		c.Cursor = i
	}
	c.clearSearch()
	return d.Reveal.Reveal(windowID, sourceID, sourceID)
}

func (d *Desktop) autoReveal(windowID string) tea.Cmd {
	c := d.Consoles[windowID]
	p := d.Panels.Get(windowID)
	if c == nil || p == nil || p.Markup != "" || d.Reveal.Running(windowID) {
		return nil
	}
	src, ok := c.Selected()
	if !ok {
		return nil
	}
	return d.RevealSource(windowID, src)
}

// revealOpen starts the initial reveal of every panel window that is open
// at startup.
func (d *Desktop) revealOpen() tea.Cmd {
	var cmds []tea.Cmd
	for _, w := range d.Windows.Open() {
		cmds = append(cmds, d.autoReveal(w.ID))
	}
	return tea.Batch(cmds...)
}

// ApplyCatalog swaps in a reloaded content pack. Titles and sources
// update in place; windows added to the pack need a restart.
func (d *Desktop) ApplyCatalog(c *content.Catalog) {
	d.Catalog = c
	for _, cw := range c.Windows {
		w := d.Windows.Get(cw.ID)
		if w == nil {
			d.LogWarn("content reload: window %q needs a restart", cw.ID)
			continue
		}
		w.Title = cw.Title
		if con := d.Consoles[cw.ID]; con != nil {
			con.setSources(cw.Sources)
		}
	}
	d.Palette.SetItems(paletteItems(c))
	d.LogInfo("content reloaded: %d windows, %d sources", len(c.Windows), len(c.Sources))
}

// Close releases resources held by the desktop.
func (d *Desktop) Close() error {
	d.Drag.Cancel()
	if d.watcher != nil {
		return d.watcher.Close()
	}
	return nil
}

// ActiveConsole returns the console of the focused window, if any.
func (d *Desktop) ActiveConsole() *Console {
	if w := d.Windows.Active(); w != nil {
		return d.Consoles[w.ID]
	}
	return nil
}

// ActiveUplink returns the uplink form of the focused window, if any.
func (d *Desktop) ActiveUplink() *Uplink {
	if w := d.Windows.Active(); w != nil {
		return d.Uplinks[w.ID]
	}
	return nil
}

// Typing reports whether a text input has keyboard focus.
func (d *Desktop) Typing() bool {
	if d.Palette.Open {
		return true
	}
	if c := d.ActiveConsole(); c != nil && c.Searching {
		return true
	}
	if u := d.ActiveUplink(); u != nil && u.editing() {
		return true
	}
	return false
}

func (d *Desktop) blurInputs(windowID string) {
	if c := d.Consoles[windowID]; c != nil {
		c.LeaveSearch()
	}
	if u := d.Uplinks[windowID]; u != nil {
		u.blur()
	}
}
