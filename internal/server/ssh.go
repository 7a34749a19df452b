// Package server serves the OCN desktop over SSH. Every session gets its
// own Desktop; visitors share nothing but the content catalog.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync/atomic"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/log/v2"
	"charm.land/wish/v2"
	"charm.land/wish/v2/bubbletea"
	"charm.land/wish/v2/logging"
	"github.com/charmbracelet/ssh"
	"github.com/google/uuid"

	"github.com/ocn-sys/ocn/internal/app"
	"github.com/ocn-sys/ocn/internal/config"
	"github.com/ocn-sys/ocn/internal/content"
	"github.com/ocn-sys/ocn/internal/input"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	Host    string
	Port    string
	KeyPath string // defaults to the XDG data dir
	// Desktop is the configuration every session starts from.
	Desktop *config.UserConfig
	// Catalog is shared read-only by all sessions. Nil loads the configured pack.
	Catalog *content.Catalog
	Logger  *log.Logger
}

// Server is a running SSH endpoint.
type Server struct {
	cfg      SSHServerConfig
	srv      *ssh.Server
	log      *log.Logger
	sessions atomic.Int64
}

// NewSSHServer prepares a server. It does not listen yet.
func NewSSHServer(cfg SSHServerConfig) (*Server, error) {
	if cfg.Desktop == nil {
		cfg.Desktop = config.DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.KeyPath == "" {
		path, err := config.GetHostKeyPath()
		if err != nil {
			return nil, err
		}
		cfg.KeyPath = path
	}
	if cfg.Catalog == nil {
		cat, err := content.Load(cfg.Desktop.Content.Path)
		if err != nil {
			return nil, fmt.Errorf("load content: %w", err)
		}
		cfg.Catalog = cat
	}

	// Handlers are process wide; registering twice is harmless.
	app.SetInputHandler(input.HandleInput)

	s := &Server{cfg: cfg, log: cfg.Logger}
	srv, err := wish.NewServer(
		wish.WithAddress(net.JoinHostPort(cfg.Host, cfg.Port)),
		wish.WithHostKeyPath(cfg.KeyPath),
		wish.WithMiddleware(
			// Bubble Tea middleware for interactive sessions
			bubbletea.Middleware(s.teaHandler),
			// Logging middleware for connection tracking
			logging.MiddlewareWithLogger(cfg.Logger),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH server: %w", err)
	}
	s.srv = srv
	return s, nil
}

// Addr is the listen address.
func (s *Server) Addr() string { return s.srv.Addr }

// Sessions returns the number of connected visitors.
func (s *Server) Sessions() int64 { return s.sessions.Load() }

// ListenAndServe runs until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info("starting SSH server", "addr", s.srv.Addr)
		errc <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, ssh.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("SSH server error: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down SSH server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// teaHandler creates a desktop for each SSH session
func (s *Server) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, active := sess.Pty()
	if !active {
		wish.Fatalln(sess, "ocn needs an interactive terminal, try ssh -t")
		return nil, nil
	}

	id := uuid.NewString()
	logger := s.log.With("session", truncateID(id), "user", sess.User())

	cfg := *s.cfg.Desktop
	applySessionCommand(sess.Command(), &cfg)

	d, err := app.New(app.Options{
		Config:  &cfg,
		Catalog: s.cfg.Catalog,
		Logger:  logger,
		SSH:     true,
	})
	if err != nil {
		logger.Error("create desktop", "err", err)
		wish.Fatalln(sess, "ocn: "+err.Error())
		return nil, nil
	}
	d.Resize(pty.Window.Width, pty.Window.Height)

	n := s.sessions.Add(1)
	logger.Info("session start", "term", pty.Term, "width", pty.Window.Width, "height", pty.Window.Height, "active", n)
	go func() {
		<-sess.Context().Done()
		left := s.sessions.Add(-1)
		logger.Info("session end", "active", left)
	}()

	return d, []tea.ProgramOption{
		tea.WithFPS(cfg.Timing.FPS),
	}
}

// applySessionCommand reads per-session switches from the SSH command,
// e.g. `ssh -t host ascii skip`. The colour theme is process wide and is
// not a session switch.
func applySessionCommand(cmd []string, cfg *config.UserConfig) {
	for _, arg := range cmd {
		switch action := parseSSHCommand(arg); action {
		case "ascii":
			cfg.Appearance.ASCIIOnly = true
		case "skip", "noboot":
			cfg.Appearance.SkipBoot = true
		case config.StrategySplice, config.StrategyTextNodes:
			cfg.Reveal.Strategy = action
		}
	}
}

// parseSSHCommand normalizes one argument of the SSH command.
func parseSSHCommand(arg string) string {
	return strings.ToLower(strings.TrimSpace(arg))
}

// Helper function to truncate strings for logging
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
