// autopilot steers a snake toward food without human input.
//
// Usage:
//
//	autopilot list               - List available drivers
//	autopilot play [driver]      - Run the autopilot (default driver: sim)
//	autopilot serve              - Host games for the ws and page drivers
//
// Global flags:
//
//	--config <path>     - Custom agent config YAML
//	--pace <preset>     - Tick interval preset: relaxed, normal, fast, fixed
//	--seed <value>      - Override the simulator seed (0 = keep config)
//	--log-level <lvl>   - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/snake-autopilot/internal/config"

	// Import drivers to register them
	_ "github.com/vovakirdan/snake-autopilot/internal/games/snake"
	_ "github.com/vovakirdan/snake-autopilot/internal/remote"
	_ "github.com/vovakirdan/snake-autopilot/internal/scrape"
)

var (
	// Global flags
	flagConfig   string
	flagPace     string
	flagSeed     int64
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "autopilot",
	Short: "Snake autopilot - shortest-path snake player",
	Long: `autopilot plays snake on its own. Every tick it reads the game state,
searches the shortest safe path to the food and sends one direction.

Available commands:
  list     - Show all available drivers
  play     - Run the autopilot against a driver
  serve    - Host games for remote drivers

Examples:
  autopilot list
  autopilot play
  autopilot play sim --games 20 --pace fast
  autopilot serve --addr :8080
  autopilot play ws --url http://localhost:8080 --watch`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom agent config YAML")
	rootCmd.PersistentFlags().StringVar(&flagPace, "pace", "", "Pace preset: relaxed, normal, fast, fixed")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Simulator seed (0 = use config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
}

// newLogger builds a stderr logger at the level chosen on the command line.
func newLogger(prefix string) (*log.Logger, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	})
	return logger, nil
}

// loadConfig resolves the layered agent config and applies global flag overrides.
func loadConfig() (config.AgentConfig, error) {
	pace, err := config.ParsePace(flagPace)
	if err != nil {
		return config.AgentConfig{}, err
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.AgentConfig{}, err
	}

	config.ApplyPace(&cfg, pace)
	if flagSeed != 0 {
		cfg.Sim.Seed = flagSeed
	}
	return cfg, nil
}
