package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/snake-autopilot/internal/autopilot"
	"github.com/vovakirdan/snake-autopilot/internal/platform/tui"
	"github.com/vovakirdan/snake-autopilot/internal/registry"
	"github.com/vovakirdan/snake-autopilot/internal/storage"
)

const defaultDriver = "sim"

var (
	flagGames int
	flagWatch bool
	flagURL   string
)

var playCmd = &cobra.Command{
	Use:   "play [driver]",
	Short: "Run the autopilot",
	Long: `Run the autopilot against a driver until interrupted.

Drivers:
  sim    - In-process simulator (default)
  ws     - Game server over WebSocket (see 'autopilot serve')
  page   - Game server HTML page, read by scraping

Pace options:
  relaxed - 150ms between ticks
  normal  - 50ms between ticks
  fast    - 20ms between ticks
  fixed   - Keep the config's tick interval

A summary of the run is printed when the autopilot stops.

Examples:
  autopilot play
  autopilot play sim --games 10 --pace fast
  autopilot play sim --watch
  autopilot play ws --url http://localhost:8080
  autopilot play page --config ./my-agent.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().IntVar(&flagGames, "games", 0, "Stop after this many games (0 = use config)")
	playCmd.Flags().BoolVar(&flagWatch, "watch", false, "Follow the game in a full-screen viewer")
	playCmd.Flags().StringVar(&flagURL, "url", "", "Game server URL for the ws and page drivers")
}

func runPlay(_ *cobra.Command, args []string) error {
	driverID := defaultDriver
	if len(args) > 0 {
		driverID = args[0]
	}

	if !registry.Exists(driverID) {
		return fmt.Errorf("unknown driver %q (run 'autopilot list' to see available drivers)", driverID)
	}
	return play(driverID, flagWatch)
}

// play runs the autopilot against one driver until it stops, then prints
// the run summary.
func play(driverID string, watch bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagURL != "" {
		cfg.Remote.URL = flagURL
	}
	if flagGames > 0 {
		cfg.Loop.MaxGames = flagGames
	}

	logger, err := newLogger("autopilot")
	if err != nil {
		return err
	}

	if watch && !term.IsTerminal(int(os.Stdout.Fd())) {
		logger.Warn("stdout is not a terminal, running without the viewer")
		watch = false
	}
	if watch {
		// The viewer owns the screen
		logger.SetOutput(io.Discard)
	}

	driver, err := registry.Create(driverID, cfg.DriverOptions(logger))
	if err != nil {
		return err
	}

	store, err := storage.Open()
	if err != nil {
		driver.Close()
		return err
	}
	defer store.Close()

	runID, err := store.NewRun(driverID)
	if err != nil {
		driver.Close()
		return err
	}
	recorder := storage.NewRecorder(store, runID, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := cfg.PilotOptions(logger)

	var runErr error
	if watch {
		runErr = tui.Watch(ctx, cfg.Bounds(), func(viewer autopilot.Observer) *autopilot.Pilot {
			opts.Observer = autopilot.Observers(recorder, viewer)
			return autopilot.New(driver, opts)
		})
	} else {
		opts.Observer = recorder
		runErr = autopilot.New(driver, opts).Run(ctx)
	}

	if err := printSummary(store, runID); err != nil {
		logger.Warn("could not summarize run", "error", err)
	}
	return runErr
}

// printSummary writes the run statistics and the best games to stdout.
func printSummary(store *storage.Store, runID string) error {
	sum, err := store.Summary(runID)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Run %s (%s)\n", sum.RunID, sum.Driver)
	fmt.Println()

	if sum.Games == 0 {
		fmt.Println("No games finished.")
		return nil
	}

	fmt.Printf("  Games:  %d\n", sum.Games)
	fmt.Printf("  Best:   %d\n", sum.Best)
	fmt.Printf("  Mean:   %.2f\n", sum.Mean)
	fmt.Printf("  Ticks:  %d\n", sum.TotalTicks)

	reasons := make([]string, 0, len(sum.Reasons))
	for r := range sum.Reasons {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		fmt.Printf("  %-12s %d\n", r+":", sum.Reasons[r])
	}

	top, err := store.TopGames(runID, 5)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  %-4s  %-6s  %-6s  %-7s  %s\n", "Rank", "Game", "Score", "Ticks", "Duration")
	fmt.Printf("  %-4s  %-6s  %-6s  %-7s  %s\n", "----", "----", "-----", "-----", "--------")
	for i, g := range top {
		fmt.Printf("  %-4d  %-6d  %-6d  %-7d  %s\n", i+1, g.Game, g.Score, g.Ticks, g.Duration().Round(time.Millisecond))
	}
	return nil
}
