package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/ocn-sys/ocn/internal/app"
	"github.com/ocn-sys/ocn/internal/config"
	"github.com/ocn-sys/ocn/internal/content"
	"github.com/ocn-sys/ocn/internal/input"
	"github.com/ocn-sys/ocn/internal/logging"
	"github.com/ocn-sys/ocn/internal/server"
	"github.com/ocn-sys/ocn/internal/terminal"
	"github.com/ocn-sys/ocn/internal/theme"
)

// filterMouseMotion filters out mouse motion events unless a drag or
// resize is in progress.
func filterMouseMotion(model tea.Model, msg tea.Msg) tea.Msg {
	if _, ok := msg.(tea.MouseMotionMsg); !ok {
		return msg
	}
	d, ok := model.(*app.Desktop)
	if !ok {
		return msg
	}
	if d.Drag.Active() != nil {
		return msg
	}
	return nil
}

// setupLogging points the file logger at the configured path.
func setupLogging(cfg *config.UserConfig) error {
	path := cfg.Logging.Path
	if path == "" {
		var err error
		if path, err = config.GetLogPath(); err != nil {
			return err
		}
	}
	if err := logging.Configure(path, cfg.Logging.Level); err != nil {
		return err
	}
	if debugMode {
		fmt.Fprintf(os.Stderr, "Debug logging to %s\n", path)
	}
	return nil
}

func startProfile() (stop func(), err error) {
	if cpuProfile == "" {
		return func() {}, nil
	}
	f, err := os.Create(cpuProfile)
	if err != nil {
		return nil, fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("could not start CPU profile: %w", err)
	}
	return func() {
		pprof.StopCPUProfile()
		_ = f.Close()
	}, nil
}

// forwardSignals calls quit on the first signal. It returns once done is
// closed, so it never outlives the program.
func forwardSignals(sig <-chan os.Signal, done <-chan struct{}, quit func()) {
	select {
	case <-sig:
		quit()
	case <-done:
	}
}

func runLocal(ctx context.Context) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("ocn needs an interactive terminal; try `ocn ssh` to serve it instead")
	}

	cfg := loadConfig()
	if err := setupLogging(cfg); err != nil {
		return err
	}
	defer logging.Close()
	logger := logging.For("main")

	if err := theme.Initialize(cfg.Appearance.Theme); err != nil {
		return err
	}

	stop, err := startProfile()
	if err != nil {
		return err
	}
	defer stop()

	// Set up the input handler to break circular dependency
	app.SetInputHandler(input.HandleInput)

	cat, err := content.Load(cfg.Content.Path)
	if err != nil {
		return err
	}

	var watcher *content.Watcher
	if cfg.Content.Watch && cfg.Content.Path != "" {
		if watcher, err = content.NewWatcher(cfg.Content.Path); err != nil {
			logger.Warn("content hot reload disabled", "err", err)
			watcher = nil
		}
	}

	desktop, err := app.New(app.Options{
		Config:  cfg,
		Catalog: cat,
		Watcher: watcher,
		Logger:  logging.For("desktop"),
	})
	if err != nil {
		if watcher != nil {
			_ = watcher.Close()
		}
		return err
	}
	defer desktop.Close()

	p := tea.NewProgram(
		desktop,
		tea.WithContext(ctx),
		tea.WithFPS(cfg.Timing.FPS),
		tea.WithoutSignalHandler(),
		tea.WithFilter(filterMouseMotion),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	done := make(chan struct{})
	defer close(done)
	go forwardSignals(sigChan, done, func() { p.Send(tea.QuitMsg{}) })

	logger.Info("starting", "version", version, "windows", len(cat.Windows), "sources", len(cat.Sources))
	if _, err := p.Run(); err != nil {
		_ = terminal.Restore(os.Stdout)
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

func runSSHServer(ctx context.Context, sshHost, sshPort, sshKeyPath string) error {
	cfg := loadConfig()
	if err := setupLogging(cfg); err != nil {
		return err
	}
	defer logging.Close()
	logger := logging.For("ssh")

	if err := theme.Initialize(cfg.Appearance.Theme); err != nil {
		return err
	}

	srv, err := server.NewSSHServer(server.SSHServerConfig{
		Host:    sshHost,
		Port:    sshPort,
		KeyPath: sshKeyPath,
		Desktop: cfg,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("Serving OCN over SSH on %s\n", srv.Addr())
	return srv.ListenAndServe(ctx)
}
