package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/snake-autopilot/internal/autopilot"
	"github.com/vovakirdan/snake-autopilot/internal/config"
	"github.com/vovakirdan/snake-autopilot/internal/games/snake"
	"github.com/vovakirdan/snake-autopilot/internal/platform/tui"
	"github.com/vovakirdan/snake-autopilot/internal/registry"
	"github.com/vovakirdan/snake-autopilot/internal/remote"
)

var (
	flagAddr        string
	flagIdleTimeout time.Duration
	flagSSHAddr     string
	flagHostKey     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host snake games for remote drivers",
	Long: `Start an HTTP server that hosts snake games.

Each WebSocket connection on /ws plays its own game (driver "ws").
The HTML endpoints /board, /key, /start and /restart share one game
(driver "page"). The field comes from the agent config.

With --ssh, an SSH server also lets clients watch the autopilot play the
simulator. Every SSH session runs its own pilot in the viewer.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.snakepilot/host_key

Examples:
  autopilot serve                    # Listen on :8080
  autopilot serve --addr :9000       # Listen on port 9000
  autopilot serve --seed 42          # Reproducible food placement
  autopilot serve --ssh :23234       # Also accept SSH watch sessions

Then, from another terminal:
  autopilot play ws --url http://localhost:8080
  ssh localhost -p 23234`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", remote.DefaultServerConfig().Address, "HTTP listen address (host:port)")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", remote.DefaultServerConfig().IdleTimeout, "Close silent WebSocket connections after this long")
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH watch server address (host:port, empty = disabled)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to SSH host key file (auto-generated if not specified)")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger("serve")
	if err != nil {
		return err
	}

	server := remote.NewServer(remote.ServerConfig{
		Address: flagAddr,
		Game: snake.Config{
			Bounds:        cfg.Bounds(),
			Start:         cfg.StartPos(),
			Direction:     cfg.Start.Direction,
			InitialLength: cfg.Sim.InitialLength,
		},
		Seed:        cfg.Sim.Seed,
		IdleTimeout: flagIdleTimeout,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sshErr := make(chan error, 1)
	if flagSSHAddr != "" {
		sshServer, err := tui.NewSSHServer(tui.SSHServerConfig{
			Address:     flagSSHAddr,
			HostKeyPath: flagHostKey,
			IdleTimeout: tui.DefaultSSHServerConfig().IdleTimeout,
			Bounds:      cfg.Bounds(),
		}, sessionPilots(cfg, logger.WithPrefix("session")), logger.WithPrefix("ssh"))
		if err != nil {
			return err
		}
		fmt.Printf("Watch over SSH on %s\n", sshServer.Addr())
		go func() {
			err := sshServer.ListenAndServe(ctx)
			if err != nil {
				// Take the HTTP server down with it
				stop()
			}
			sshErr <- err
		}()
	} else {
		close(sshErr)
	}

	fmt.Printf("Serving snake on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(ctx); err != nil {
		stop()
		<-sshErr
		return fmt.Errorf("server error: %w", err)
	}
	if err := <-sshErr; err != nil {
		return err
	}
	return nil
}

// sessionPilots builds one simulator pilot per SSH session. Sessions get
// distinct seeds so concurrent viewers see different games.
func sessionPilots(cfg config.AgentConfig, logger *log.Logger) tui.PilotFactory {
	return func(session int64, observer autopilot.Observer) (*autopilot.Pilot, error) {
		opts := cfg.DriverOptions(logger)
		opts.Seed += session * 1000

		driver, err := registry.Create(defaultDriver, opts)
		if err != nil {
			return nil, err
		}

		pilotOpts := cfg.PilotOptions(logger)
		pilotOpts.Observer = observer
		return autopilot.New(driver, pilotOpts), nil
	}
}
