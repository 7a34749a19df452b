package main

import (
	"os"
	"syscall"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/ocn-sys/ocn/internal/app"
	"github.com/ocn-sys/ocn/internal/config"
	"github.com/ocn-sys/ocn/internal/wm"
)

func TestFindCustomizations(t *testing.T) {
	def := config.DefaultConfig()
	user := config.DefaultConfig()
	user.Keybindings.Desktop["quit"] = []string{"ctrl+x"}
	user.Keybindings.Search["clear_search"] = []string{"ctrl+u", "ctrl+l"}
	delete(user.Keybindings.Console, "next_source")

	got := findCustomizations(user, def)
	if len(got) != 2 {
		t.Fatalf("found %d customizations, want 2: %+v", len(got), got)
	}
	if got[0].Section != config.SectionDesktop || got[0].CustomKeys != "ctrl+x" {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Section != config.SectionSearch || got[1].DefaultKeys != "ctrl+u" {
		t.Errorf("second = %+v", got[1])
	}
}

func TestFormatActionName(t *testing.T) {
	if got := formatActionName("no_such_action"); got != "no such action" {
		t.Errorf("formatActionName() = %q", got)
	}
	if got := formatActionName("quit"); got != config.ActionDescriptions["quit"] {
		t.Errorf("formatActionName(quit) = %q", got)
	}
}

func TestOverrides(t *testing.T) {
	defer func() { asciiOnly, noBoot, particles, debugMode = false, false, -1, false }()

	o := overrides()
	if o.ASCIIOnly != nil || o.SkipBoot != nil || o.Particles != nil || o.LogLevel != "" {
		t.Errorf("unset flags produced overrides: %+v", o)
	}

	asciiOnly, noBoot, particles, debugMode = true, true, 0, true
	cfg := config.DefaultConfig()
	config.ApplyOverrides(overrides(), cfg)
	if !cfg.Appearance.ASCIIOnly || !cfg.Appearance.SkipBoot || cfg.Appearance.Particles != 0 || cfg.Logging.Level != "debug" {
		t.Errorf("config after overrides = %+v %+v", cfg.Appearance, cfg.Logging)
	}
}

func TestFilterMouseMotion(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Appearance.SkipBoot = true
	d, err := app.New(app.Options{Config: cfg})
	if err != nil {
		t.Fatal(err)
	}
	d.Resize(100, 40)

	motion := tea.MouseMotionMsg{X: 10, Y: 10}
	if got := filterMouseMotion(d, motion); got != nil {
		t.Errorf("idle motion passed the filter: %v", got)
	}
	click := tea.MouseClickMsg{X: 10, Y: 10}
	if got := filterMouseMotion(d, click); got == nil {
		t.Error("click was filtered")
	}

	open := d.Windows.Open()
	if len(open) == 0 {
		t.Fatal("no window open")
	}
	w := open[len(open)-1]
	if !d.Drag.BeginDrag(w.ID, wm.PointerEvent{Kind: wm.PointerDown, X: w.Pos.X + 1, Y: w.Pos.Y}) {
		t.Fatal("drag did not start on the title bar")
	}
	if got := filterMouseMotion(d, motion); got == nil {
		t.Error("motion during a drag was filtered")
	}
}

func TestForwardSignals(t *testing.T) {
	t.Run("signal quits", func(t *testing.T) {
		sig := make(chan os.Signal, 1)
		done := make(chan struct{})
		quit := make(chan struct{})
		go forwardSignals(sig, done, func() { close(quit) })

		sig <- syscall.SIGTERM
		select {
		case <-quit:
		case <-time.After(time.Second):
			t.Fatal("quit not called after signal")
		}
	})

	t.Run("done releases the goroutine", func(t *testing.T) {
		sig := make(chan os.Signal, 1)
		done := make(chan struct{})
		returned := make(chan struct{})
		called := false
		go func() {
			forwardSignals(sig, done, func() { called = true })
			close(returned)
		}()

		close(done)
		select {
		case <-returned:
		case <-time.After(time.Second):
			t.Fatal("forwardSignals still blocked after done closed")
		}
		if called {
			t.Error("quit called without a signal")
		}
	})
}
