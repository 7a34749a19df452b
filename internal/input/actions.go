package input

import (
	"strconv"

	tea "charm.land/bubbletea/v2"

	"github.com/ocn-sys/ocn/internal/app"
)

// ActionHandler is a function that handles a specific action
type ActionHandler func(msg tea.KeyPressMsg, d *app.Desktop) (*app.Desktop, tea.Cmd)

// ActionDispatcher maps action names to handler functions
type ActionDispatcher struct {
	handlers map[string]ActionHandler
}

// NewActionDispatcher creates a new action dispatcher with all handlers registered
func NewActionDispatcher() *ActionDispatcher {
	d := &ActionDispatcher{
		handlers: make(map[string]ActionHandler),
	}
	d.registerHandlers()
	return d
}

func (d *ActionDispatcher) registerHandlers() {
	// Desktop
	d.Register("quit", handleQuit)
	d.Register("open_palette", handleOpenPalette)
	d.Register("next_window", handleNextWindow)
	d.Register("prev_window", handlePrevWindow)
	d.Register("close_window", handleCloseWindow)
	d.Register("toggle_help", handleToggleHelp)
	d.Register("toggle_logs", handleToggleLogs)
	for i := 1; i <= 9; i++ {
		d.Register("toggle_window_"+strconv.Itoa(i), makeToggleWindowHandler(i))
	}

	// Console
	d.Register("next_source", makeMoveSourceHandler(1))
	d.Register("prev_source", makeMoveSourceHandler(-1))
	d.Register("reveal_source", handleRevealSource)
	d.Register("focus_search", handleFocusSearch)
	d.Register("scroll_up", makeScrollHandler(-scrollPage))
	d.Register("scroll_down", makeScrollHandler(scrollPage))
	d.Register("scroll_top", handleScrollTop)
	d.Register("scroll_bottom", handleScrollBottom)

	// Search
	d.Register("next_match", makeNavigateHandler(1))
	d.Register("prev_match", makeNavigateHandler(-1))
	d.Register("clear_search", handleClearSearch)
	d.Register("leave_search", handleLeaveSearch)
}

// Register adds a handler for an action
func (d *ActionDispatcher) Register(action string, handler ActionHandler) {
	d.handlers[action] = handler
}

// Dispatch executes the handler for the given action
func (d *ActionDispatcher) Dispatch(action string, msg tea.KeyPressMsg, desk *app.Desktop) (*app.Desktop, tea.Cmd, bool) {
	handler, ok := d.handlers[action]
	if !ok {
		return desk, nil, false
	}
	result, cmd := handler(msg, desk)
	return result, cmd, true
}

// HasAction checks if an action is registered
func (d *ActionDispatcher) HasAction(action string) bool {
	_, ok := d.handlers[action]
	return ok
}

var globalDispatcher *ActionDispatcher

// GetDispatcher returns the global action dispatcher
func GetDispatcher() *ActionDispatcher {
	if globalDispatcher == nil {
		globalDispatcher = NewActionDispatcher()
	}
	return globalDispatcher
}

// Lines moved by one page scroll in a panel.
const scrollPage = 5

func handleQuit(_ tea.KeyPressMsg, d *app.Desktop) (*app.Desktop, tea.Cmd) {
	d.LogInfo("shutting down")
	return d, tea.Quit
}

func handleOpenPalette(_ tea.KeyPressMsg, d *app.Desktop) (*app.Desktop, tea.Cmd) {
	d.ShowHelp, d.ShowLogs = false, false
	return d, d.OpenPalette()
}

func handleNextWindow(_ tea.KeyPressMsg, d *app.Desktop) (*app.Desktop, tea.Cmd) {
	d.CycleWindows(1)
	return d, nil
}

func handlePrevWindow(_ tea.KeyPressMsg, d *app.Desktop) (*app.Desktop, tea.Cmd) {
	d.CycleWindows(-1)
	return d, nil
}

func handleCloseWindow(_ tea.KeyPressMsg, d *app.Desktop) (*app.Desktop, tea.Cmd) {
	d.CloseActive()
	return d, nil
}

func handleToggleHelp(_ tea.KeyPressMsg, d *app.Desktop) (*app.Desktop, tea.Cmd) {
	d.ShowHelp = !d.ShowHelp
	if d.ShowHelp {
		d.ShowLogs = false
	}
	return d, nil
}

func handleToggleLogs(_ tea.KeyPressMsg, d *app.Desktop) (*app.Desktop, tea.Cmd) {
	d.ShowLogs = !d.ShowLogs
	if d.ShowLogs {
		d.ShowHelp = false
		d.ScrollLogs(len(d.LogMessages))
	}
	return d, nil
}

func makeToggleWindowHandler(n int) ActionHandler {
	return func(_ tea.KeyPressMsg, d *app.Desktop) (*app.Desktop, tea.Cmd) {
		id, ok := d.WindowAt(n)
		if !ok {
			return d, nil
		}
		return d, d.ToggleWindow(id)
	}
}

func makeMoveSourceHandler(dir int) ActionHandler {
	return func(_ tea.KeyPressMsg, d *app.Desktop) (*app.Desktop, tea.Cmd) {
		if c := d.ActiveConsole(); c != nil {
			c.MoveCursor(dir)
		}
		return d, nil
	}
}

func handleRevealSource(_ tea.KeyPressMsg, d *app.Desktop) (*app.Desktop, tea.Cmd) {
	c := d.ActiveConsole()
	if c == nil {
		return d, nil
	}
	src, ok := c.Selected()
	if !ok {
		return d, nil
	}
	return d, d.RevealSource(c.ID, src)
}

func handleFocusSearch(_ tea.KeyPressMsg, d *app.Desktop) (*app.Desktop, tea.Cmd) {
	if c := d.ActiveConsole(); c != nil {
		return d, c.EnterSearch()
	}
	return d, nil
}

func makeScrollHandler(delta int) ActionHandler {
	return func(_ tea.KeyPressMsg, d *app.Desktop) (*app.Desktop, tea.Cmd) {
		if c := d.ActiveConsole(); c != nil {
			c.Scroll(delta)
		}
		return d, nil
	}
}

func handleScrollTop(_ tea.KeyPressMsg, d *app.Desktop) (*app.Desktop, tea.Cmd) {
	if c := d.ActiveConsole(); c != nil {
		c.View.GotoTop()
	}
	return d, nil
}

func handleScrollBottom(_ tea.KeyPressMsg, d *app.Desktop) (*app.Desktop, tea.Cmd) {
	if c := d.ActiveConsole(); c != nil {
		c.View.GotoBottom()
	}
	return d, nil
}

func makeNavigateHandler(dir int) ActionHandler {
	return func(_ tea.KeyPressMsg, d *app.Desktop) (*app.Desktop, tea.Cmd) {
		if c := d.ActiveConsole(); c != nil {
			d.NavigateSearch(c.ID, dir)
		}
		return d, nil
	}
}

func handleClearSearch(_ tea.KeyPressMsg, d *app.Desktop) (*app.Desktop, tea.Cmd) {
	if c := d.ActiveConsole(); c != nil {
		d.ClearSearch(c.ID)
	}
	return d, nil
}

func handleLeaveSearch(_ tea.KeyPressMsg, d *app.Desktop) (*app.Desktop, tea.Cmd) {
	if c := d.ActiveConsole(); c != nil {
		c.LeaveSearch()
	}
	return d, nil
}
