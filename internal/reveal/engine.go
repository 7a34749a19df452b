package reveal

import (
	"io"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/log/v2"

	"github.com/ocn-sys/ocn/internal/config"
	"github.com/ocn-sys/ocn/internal/markup"
	"github.com/ocn-sys/ocn/internal/panel"
)

// Placeholder is shown while a reveal spins up.
const Placeholder = `<span class="` + markup.ClassPlaceholder + `">[INITIATING_DECRYPTION]...</span>`

// Source is raw panel content.
type Source struct {
	Body string
	// Markup marks pre-formatted content that is shown verbatim and whole.
	Markup bool
}

// Lookup resolves a source id.
type Lookup func(id string) (Source, bool)

// SearchResetter drops the search state of a panel.
type SearchResetter interface {
	Reset(panelID string)
}

// StartMsg fires when the spin-up delay of a reveal has elapsed.
type StartMsg struct {
	Panel string
	Tag   uint64
}

// TickMsg advances a running typewriter reveal.
type TickMsg struct {
	Panel string
	Tag   uint64
}

// DoneMsg reports that a reveal played to the end.
type DoneMsg struct {
	Panel  string
	Source string
}

// Options tune the engine. Zero values take the defaults of config.
type Options struct {
	SpinUp       time.Duration
	Tick         time.Duration
	UnitsPerTick int
	Strategy     string
	Logger       *log.Logger
	// Schedule delivers msg after d. Defaults to a tea.Tick.
	Schedule func(d time.Duration, msg tea.Msg) tea.Cmd
}

// OptionsFrom reads engine options from the user config.
func OptionsFrom(cfg *config.UserConfig) Options {
	return Options{
		SpinUp:       cfg.Timing.SpinUp(),
		Tick:         cfg.Timing.Tick(),
		UnitsPerTick: cfg.Timing.UnitsPerTick,
		Strategy:     cfg.Reveal.Strategy,
	}
}

type job struct {
	source string
	full   string
	whole  bool
	cursor int
	text   *markup.TextReveal
}

func (j *job) done() bool {
	if j.text != nil {
		return j.text.Done()
	}
	return j.cursor >= len(j.full)
}

// step advances n units and returns the frame to display.
func (j *job) step(n int) string {
	if j.text != nil {
		return j.text.Step(n)
	}
	j.cursor = markup.Advance(j.full, j.cursor, n)
	return j.full[:j.cursor]
}

// Engine reveals sources into panels. A panel runs at most one job; a new
// reveal always supersedes the running one.
type Engine struct {
	conv   markup.Converter
	lookup Lookup
	panels *panel.Store
	timers *Timers
	jobs   map[string]*job
	search SearchResetter
	opts   Options
	log    *log.Logger
}

// NewEngine creates an engine writing into panels. conv may be nil.
func NewEngine(conv markup.Converter, lookup Lookup, panels *panel.Store, opts Options) *Engine {
	def := config.DefaultConfig()
	if opts.SpinUp <= 0 {
		opts.SpinUp = def.Timing.SpinUp()
	}
	if opts.Tick <= 0 {
		opts.Tick = def.Timing.Tick()
	}
	if opts.UnitsPerTick <= 0 {
		opts.UnitsPerTick = def.Timing.UnitsPerTick
	}
	if opts.Strategy == "" {
		opts.Strategy = config.StrategySplice
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Schedule == nil {
		opts.Schedule = after
	}
	return &Engine{
		conv:   conv,
		lookup: lookup,
		panels: panels,
		timers: NewTimers(),
		jobs:   make(map[string]*job),
		opts:   opts,
		log:    logger,
	}
}

// SetSearch registers the overlay whose state is reset on every reveal.
func (e *Engine) SetSearch(r SearchResetter) { e.search = r }

// Timers exposes the timer registry.
func (e *Engine) Timers() *Timers { return e.timers }

// Running reports whether panelID has an outstanding job.
func (e *Engine) Running(panelID string) bool {
	_, ok := e.jobs[panelID]
	return ok
}

// Jobs reports the number of outstanding jobs.
func (e *Engine) Jobs() int { return len(e.jobs) }

// Render turns a source into the markup it reveals to.
func (e *Engine) Render(src Source) string {
	if src.Markup {
		return src.Body
	}
	return markup.ToMarkup(e.conv, markup.Prepare(src.Body))
}

// Reveal plays sourceID into panelID and marks triggerID selected. Unknown
// sources and panels are ignored.
func (e *Engine) Reveal(panelID, sourceID, triggerID string) tea.Cmd {
	src, ok := e.lookup(sourceID)
	if !ok {
		e.log.Debug("reveal: unknown source", "panel", panelID, "source", sourceID)
		return nil
	}
	p := e.panels.Get(panelID)
	if p == nil {
		e.log.Debug("reveal: unknown panel", "panel", panelID, "source", sourceID)
		return nil
	}
	full := e.Render(src)

	if e.cancel(panelID) {
		e.log.Debug("reveal superseded", "panel", panelID)
	}

	p.SelectedTrigger = triggerID
	p.Snapshot = ""
	if e.search != nil {
		e.search.Reset(panelID)
	}
	p.SetMarkup(Placeholder)
	p.Scroll = panel.ScrollTop
	p.Revealing = true

	j := &job{source: sourceID, full: full, whole: src.Markup}
	if !j.whole && e.opts.Strategy == config.StrategyTextNodes {
		j.text = markup.NewTextReveal(full)
	}
	e.jobs[panelID] = j

	tag := e.timers.ArmStart(panelID)
	e.log.Info("reveal", "panel", panelID, "source", sourceID, "bytes", len(full), "job", tag)
	return e.opts.Schedule(e.opts.SpinUp, StartMsg{Panel: panelID, Tag: tag})
}

// Update consumes the engine's timer messages. Messages from cleared
// timers are dropped.
func (e *Engine) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case StartMsg:
		if !e.timers.Live(msg.Panel, msg.Tag) {
			return nil
		}
		return e.start(msg.Panel)
	case TickMsg:
		if !e.timers.Live(msg.Panel, msg.Tag) {
			return nil
		}
		return e.tick(msg.Panel, msg.Tag)
	}
	return nil
}

// Finish completes the outstanding job of panelID at once. It reports
// whether a job was running.
func (e *Engine) Finish(panelID string) bool {
	j, ok := e.jobs[panelID]
	if !ok {
		return false
	}
	e.complete(panelID, j)
	return true
}

func (e *Engine) start(panelID string) tea.Cmd {
	j, ok := e.jobs[panelID]
	p := e.panels.Get(panelID)
	if !ok || p == nil {
		e.timers.Clear(panelID)
		return nil
	}
	if j.whole {
		e.complete(panelID, j)
		return done(panelID, j.source)
	}

	if j.text != nil {
		p.SetMarkup(j.text.Frame())
	} else {
		p.SetMarkup("")
	}
	tag := e.timers.ArmTick(panelID)
	return e.opts.Schedule(e.opts.Tick, TickMsg{Panel: panelID, Tag: tag})
}

func (e *Engine) tick(panelID string, tag uint64) tea.Cmd {
	j, ok := e.jobs[panelID]
	p := e.panels.Get(panelID)
	if !ok || p == nil {
		e.timers.Clear(panelID)
		return nil
	}
	p.SetMarkup(j.step(e.opts.UnitsPerTick))
	p.Scroll = panel.ScrollBottom
	if j.done() {
		e.complete(panelID, j)
		return done(panelID, j.source)
	}
	return e.opts.Schedule(e.opts.Tick, TickMsg{Panel: panelID, Tag: tag})
}

func (e *Engine) complete(panelID string, j *job) {
	e.timers.Clear(panelID)
	delete(e.jobs, panelID)
	p := e.panels.Get(panelID)
	if p == nil {
		return
	}
	if p.Markup != j.full {
		p.SetMarkup(j.full)
	}
	p.Snapshot = j.full
	p.Revealing = false
	e.log.Debug("reveal complete", "panel", panelID, "source", j.source)
}

// after is the default scheduler.
func after(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

func done(panelID, source string) tea.Cmd {
	return func() tea.Msg { return DoneMsg{Panel: panelID, Source: source} }
}

// cancel drops the job and timers of panelID.
func (e *Engine) cancel(panelID string) bool {
	_, running := e.jobs[panelID]
	delete(e.jobs, panelID)
	return e.timers.Clear(panelID) || running
}
