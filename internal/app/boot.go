package app

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/ocn-sys/ocn/internal/config"
)

// BootStage is the progress of the boot screen.
type BootStage int

const (
	BootShowing BootStage = iota
	BootFading
	BootDone
)

// BootFadeMsg starts fading the boot screen out.
type BootFadeMsg struct{}

// BootDoneMsg removes the boot screen.
type BootDoneMsg struct{}

// Boot tracks the boot screen.
type Boot struct {
	Stage BootStage
	enter time.Duration
	fade  time.Duration
}

func newBoot(cfg *config.UserConfig) Boot {
	b := Boot{enter: cfg.Timing.BootEnter(), fade: cfg.Timing.BootFade()}
	if cfg.Appearance.SkipBoot {
		b.Stage = BootDone
	}
	return b
}

// Done reports whether the desktop is showing.
func (b Boot) Done() bool { return b.Stage == BootDone }

// bootCmd schedules the first boot transition. A skipped boot goes
// straight to the desktop.
func (d *Desktop) bootCmd() tea.Cmd {
	if d.Boot.Done() {
		return d.desktopReady()
	}
	return d.schedule(d.Boot.enter, BootFadeMsg{})
}

func (d *Desktop) updateBoot(msg tea.Msg) tea.Cmd {
	switch msg.(type) {
	case BootFadeMsg:
		if d.Boot.Stage != BootShowing {
			return nil
		}
		d.Boot.Stage = BootFading
		return d.schedule(d.Boot.fade, BootDoneMsg{})
	case BootDoneMsg:
		if d.Boot.Done() {
			return nil
		}
		d.Boot.Stage = BootDone
		return d.desktopReady()
	}
	return nil
}

// SkipBoot jumps past the boot screen.
func (d *Desktop) SkipBoot() tea.Cmd {
	if d.Boot.Done() {
		return nil
	}
	d.Boot.Stage = BootDone
	return d.desktopReady()
}

// desktopReady starts the particle field once the boot screen is gone.
func (d *Desktop) desktopReady() tea.Cmd {
	d.LogInfo("boot complete")
	if d.Particles.n == 0 || d.Particles.Running {
		return nil
	}
	d.Particles.Running = true
	return FrameCmd(d.frameRate())
}

var bootBanner = []string{
	" ██████   ██████ ███    ██",
	"██    ██ ██      ████   ██",
	"██    ██ ██      ██ ██  ██",
	"██    ██ ██      ██  ██ ██",
	" ██████   ██████ ██   ████",
}

var bootBannerASCII = []string{
	"  ___   ____ _   _ ",
	" / _ \\ / ___| \\ | |",
	"| | | | |   |  \\| |",
	"| |_| | |___| |\\  |",
	" \\___/ \\____|_| \\_|",
}

var bootLog = []string{
	"> ORBITAL CONTROL NODE",
	"> MOUNTING /dev/portfolio ........ OK",
	"> LOADING DECRYPTION ENGINE ...... OK",
	"> CALIBRATING PARTICLE FIELD ..... OK",
	"> ESTABLISHING UPLINK ............ OK",
}
