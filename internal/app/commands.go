package app

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/ocn-sys/ocn/internal/config"
)

// FrameMsg advances the particle field.
type FrameMsg time.Time

// ClockMsg refreshes the status bar clock.
type ClockMsg time.Time

// FrameCmd creates a command that delivers a FrameMsg at fps.
func FrameCmd(fps int) tea.Cmd {
	fps = max(fps, 1)
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

// ClockCmd ticks once per second, aligned to the wall clock.
func ClockCmd() tea.Cmd {
	return tea.Every(config.ClockInterval, func(t time.Time) tea.Msg {
		return ClockMsg(t)
	})
}

// frameRate caps the animation rate at the particle rate.
func (d *Desktop) frameRate() int {
	return min(max(d.Config.Timing.FPS, 1), config.ParticleFPS)
}

// after is the default scheduler for one-shot timers.
func after(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}
