// Package input routes keyboard and mouse events to the desktop.
package input

import (
	tea "charm.land/bubbletea/v2"

	"github.com/ocn-sys/ocn/internal/app"
	"github.com/ocn-sys/ocn/internal/config"
)

// HandleInput is the entry point registered with app.SetInputHandler.
func HandleInput(msg tea.Msg, d *app.Desktop) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return HandleKeyPress(msg, d)
	case tea.PasteMsg:
		return HandlePaste(msg, d)
	case tea.MouseWheelMsg:
		return HandleMouseWheel(msg, d)
	case tea.MouseClickMsg, tea.MouseMotionMsg, tea.MouseReleaseMsg:
		return HandleMouse(msg, d)
	}
	return d, nil
}

// HandleKeyPress routes a key through the layers of the desktop, topmost
// first: the boot screen, the palette, the help and log overlays, the
// focused text input, then the console and desktop bindings.
func HandleKeyPress(msg tea.KeyPressMsg, d *app.Desktop) (*app.Desktop, tea.Cmd) {
	key := msg.String()
	desktopAction := d.Keys.Lookup(config.SectionDesktop, key)

	if !d.Boot.Done() {
		if desktopAction == "quit" {
			return dispatch(desktopAction, msg, d)
		}
		return d, d.SkipBoot()
	}

	switch {
	case d.Palette.Open:
		return handlePaletteKey(msg, d, desktopAction)
	case d.ShowHelp:
		return handleHelpKey(msg, d, desktopAction)
	case d.ShowLogs:
		return handleLogsKey(msg, d, desktopAction)
	}

	if c := d.ActiveConsole(); c != nil && c.Searching {
		if action := d.Keys.Lookup(config.SectionSearch, key); action != "" {
			return dispatch(action, msg, d)
		}
		// Digits and "?" type into the query rather than toggling windows.
		if desktopAction != "" && !config.IsPrintable(key) {
			return dispatch(desktopAction, msg, d)
		}
		return d, d.UpdateSearchInput(msg)
	}

	if u := d.ActiveUplink(); u != nil {
		if cmd, handled := handleUplinkKey(msg, d, u, desktopAction); handled {
			return d, cmd
		}
	}

	if d.ActiveConsole() != nil {
		if action := d.Keys.Lookup(config.SectionConsole, key); action != "" {
			return dispatch(action, msg, d)
		}
	}
	if desktopAction != "" {
		return dispatch(desktopAction, msg, d)
	}
	return d, nil
}

func dispatch(action string, msg tea.KeyPressMsg, d *app.Desktop) (*app.Desktop, tea.Cmd) {
	result, cmd, ok := GetDispatcher().Dispatch(action, msg, d)
	if !ok {
		d.Logger().Debug("unhandled action", "action", action)
	}
	return result, cmd
}

func handlePaletteKey(msg tea.KeyPressMsg, d *app.Desktop, desktopAction string) (*app.Desktop, tea.Cmd) {
	switch msg.String() {
	case "esc":
		d.ClosePalette()
		return d, nil
	case "enter":
		return d, d.LaunchSelected()
	case "up", "ctrl+k":
		d.Palette.Move(-1)
		return d, nil
	case "down", "ctrl+j", "tab":
		d.Palette.Move(1)
		return d, nil
	}
	switch desktopAction {
	case "quit":
		return dispatch(desktopAction, msg, d)
	case "open_palette":
		d.ClosePalette()
		return d, nil
	}
	return d, d.UpdatePalette(msg)
}

func handleHelpKey(msg tea.KeyPressMsg, d *app.Desktop, desktopAction string) (*app.Desktop, tea.Cmd) {
	if msg.String() == "esc" {
		d.ShowHelp = false
		return d, nil
	}
	switch desktopAction {
	case "quit", "toggle_help", "toggle_logs", "open_palette":
		return dispatch(desktopAction, msg, d)
	}
	return d, nil
}

func handleLogsKey(msg tea.KeyPressMsg, d *app.Desktop, desktopAction string) (*app.Desktop, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		d.ShowLogs = false
		return d, nil
	case "up", "k":
		d.ScrollLogs(-1)
		return d, nil
	case "down", "j":
		d.ScrollLogs(1)
		return d, nil
	case "pgup":
		d.ScrollLogs(-scrollPage)
		return d, nil
	case "pgdown":
		d.ScrollLogs(scrollPage)
		return d, nil
	}
	switch desktopAction {
	case "quit", "toggle_help", "toggle_logs", "open_palette":
		return dispatch(desktopAction, msg, d)
	}
	return d, nil
}

// handleUplinkKey drives the message form. It reports false when the key
// should fall through to the desktop bindings.
func handleUplinkKey(msg tea.KeyPressMsg, d *app.Desktop, u *app.Uplink, desktopAction string) (tea.Cmd, bool) {
	key := msg.String()
	switch key {
	case "tab", "down":
		if u.State == app.UplinkForm {
			return u.NextField(1), true
		}
	case "shift+tab", "up":
		if u.State == app.UplinkForm {
			return u.NextField(-1), true
		}
	case "enter":
		if u.State == app.UplinkForm && u.Focus != app.FieldButton {
			if !d.Typing() {
				return u.FocusField(u.Focus), true
			}
			return u.NextField(1), true
		}
		return d.ActivateUplink(u.ID), true
	case "space":
		if u.State != app.UplinkForm || u.Focus == app.FieldButton {
			return d.ActivateUplink(u.ID), true
		}
	}
	if !d.Typing() {
		return nil, false
	}
	if desktopAction != "" && !config.IsPrintable(key) {
		return nil, false
	}
	return u.Update(msg), true
}

// HandlePaste inserts pasted text into whichever input has focus.
func HandlePaste(msg tea.PasteMsg, d *app.Desktop) (*app.Desktop, tea.Cmd) {
	if d.Palette.Open {
		return d, d.UpdatePalette(msg)
	}
	if c := d.ActiveConsole(); c != nil && c.Searching {
		return d, d.UpdateSearchInput(msg)
	}
	if u := d.ActiveUplink(); u != nil && d.Typing() {
		return d, u.Update(msg)
	}
	return d, nil
}
