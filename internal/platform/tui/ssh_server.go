package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/snake-autopilot/internal/autopilot"
	"github.com/vovakirdan/snake-autopilot/internal/core"
)

// eventBuffer is how many pilot events may queue ahead of a session's viewer.
const eventBuffer = 64

// PilotFactory builds a fresh pilot for one watch session. session numbers
// sessions from 1 in the order they connect.
type PilotFactory func(session int64, observer autopilot.Observer) (*autopilot.Pilot, error)

// SSHServerConfig holds configuration for the SSH watch server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.snakepilot/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Bounds is the field size shown by the viewer.
	Bounds core.Bounds
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
		Bounds:      core.NewBounds(21, 15),
	}
}

// SSHServer lets SSH clients watch an autopilot. Every session gets its own
// pilot, which stops when the session ends.
type SSHServer struct {
	config   SSHServerConfig
	server   *ssh.Server
	newPilot PilotFactory
	logger   *log.Logger
	sessions atomic.Int64
}

// NewSSHServer creates a watch server. A nil logger discards output.
func NewSSHServer(cfg SSHServerConfig, newPilot PilotFactory, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	srv := &SSHServer{
		config:   cfg,
		newPilot: newPilot,
		logger:   logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("tui: cannot get home directory: %w", err)
		}
		hostKeyPath = filepath.Join(home, ".snakepilot", "host_key")
	}

	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("tui: cannot create host key directory: %w", err)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tui: cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler starts a pilot for the session and returns its viewer.
func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	if _, _, ok := sess.Pty(); !ok {
		s.logger.Warn("no PTY requested", "user", sess.User())
		return nil, nil
	}

	m, err := s.startSession(sess.Context())
	if err != nil {
		s.logger.Error("cannot start autopilot", "user", sess.User(), "error", err)
		return nil, nil
	}
	return m, []tea.ProgramOption{tea.WithAltScreen()}
}

// startSession runs a new pilot until ctx ends and returns a viewer fed by it.
func (s *SSHServer) startSession(ctx context.Context) (Model, error) {
	id := s.sessions.Add(1)
	events := make(chan tea.Msg, eventBuffer)

	pilot, err := s.newPilot(id, ChannelObserver(events, ctx.Done()))
	if err != nil {
		return Model{}, err
	}

	go func() {
		err := pilot.Run(ctx)
		select {
		case events <- DoneMsg{Err: err}:
		case <-ctx.Done():
		}
	}()

	return NewModel(s.config.Bounds).WithEvents(events), nil
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		s.logger.Info("session started",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
		next(sess)
		s.logger.Info("session ended",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until ctx is cancelled.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("tui: SSH server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down SSH server...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
