package app

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/ocn-sys/ocn/internal/config"
	"github.com/ocn-sys/ocn/internal/content"
	"github.com/ocn-sys/ocn/internal/reveal"
	"github.com/ocn-sys/ocn/internal/wm"
)

// InputHandler handles keyboard and mouse messages.
// This allows Update to delegate to the input package without an import cycle.
type InputHandler func(msg tea.Msg, d *Desktop) (tea.Model, tea.Cmd)

var inputHandler InputHandler

// SetInputHandler registers the input handler.
// It must be called before the program starts.
func SetInputHandler(handler InputHandler) {
	inputHandler = handler
}

// Init starts the boot sequence, the clock, telemetry and the content
// watcher, and reveals the panels that are open from the start.
func (d *Desktop) Init() tea.Cmd {
	cmds := []tea.Cmd{
		ClockCmd(),
		d.bootCmd(),
		d.revealOpen(),
	}
	if d.Config.Appearance.ShowTelemetry {
		cmds = append(cmds, SampleCmd(d.sampler, 0))
	}
	if d.watcher != nil {
		cmds = append(cmds, d.watcher.Wait())
	}
	return tea.Batch(cmds...)
}

// Update handles every message and keeps the panel viewports in sync.
func (d *Desktop) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := d.update(msg)
	d.syncPanels()
	return model, cmd
}

func (d *Desktop) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reveal.StartMsg, reveal.TickMsg:
		return d, d.Reveal.Update(msg)

	case reveal.DoneMsg:
		d.LogInfo("decrypted %s into %s", msg.Source, msg.Panel)
		return d, nil

	case BootFadeMsg, BootDoneMsg:
		return d, d.updateBoot(msg)

	case FrameMsg:
		if !d.Particles.Running {
			return d, nil
		}
		d.Particles.Step()
		return d, FrameCmd(d.frameRate())

	case ClockMsg:
		d.Clock = time.Time(msg)
		return d, ClockCmd()

	case TelemetryMsg:
		if msg.Err != nil {
			d.logger.Debug("telemetry", "err", msg.Err)
		} else {
			d.RecordSample(msg.Sample)
		}
		return d, SampleCmd(d.sampler, config.TelemetryInterval)

	case UplinkDoneMsg:
		d.completeUplink(msg)
		return d, nil

	case content.ReloadMsg:
		if msg.Err != nil {
			d.LogError("content reload: %v", msg.Err)
		} else {
			d.ApplyCatalog(msg.Catalog)
		}
		if d.watcher == nil {
			return d, nil
		}
		return d, d.watcher.Wait()

	case tea.KeyPressMsg, tea.MouseClickMsg, tea.MouseMotionMsg,
		tea.MouseReleaseMsg, tea.MouseWheelMsg, tea.PasteMsg:
		if inputHandler != nil {
			return inputHandler(msg, d)
		}
		return d, nil

	case tea.WindowSizeMsg:
		d.Resize(msg.Width, msg.Height)
		return d, nil

	case tea.BlurMsg:
		// A release that happens outside the terminal is never reported.
		d.Pointer.Dispatch(wm.PointerEvent{Kind: wm.PointerCancel})
		return d, nil

	case tea.FocusMsg:
		return d, nil
	}

	// Cursor blink and similar messages belong to the focused text input.
	return d, d.updateFocusedInput(msg)
}

func (d *Desktop) updateFocusedInput(msg tea.Msg) tea.Cmd {
	if d.Palette.Open {
		return d.UpdatePalette(msg)
	}
	if c := d.ActiveConsole(); c != nil && c.Searching {
		return d.UpdateSearchInput(msg)
	}
	if u := d.ActiveUplink(); u != nil && u.editing() {
		return u.Update(msg)
	}
	return nil
}
