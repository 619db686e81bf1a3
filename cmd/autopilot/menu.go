package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snake-autopilot/internal/autopilot"
	"github.com/vovakirdan/snake-autopilot/internal/platform/tui"
	"github.com/vovakirdan/snake-autopilot/internal/registry"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick a driver and watch the autopilot",
	Long: `Start in interactive menu mode.

Pick a driver and the autopilot plays it in the full-screen viewer.
Quitting the viewer stops the autopilot and returns to the menu.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select driver
  Q            - Quit

Examples:
  autopilot menu
  autopilot menu --pace relaxed`,
	RunE: runMenu,
}

func init() {
	// Uses global flags from main.go (--config, --pace, --seed, --log-level)
	rootCmd.AddCommand(menuCmd)
}

func runMenu(_ *cobra.Command, _ []string) error {
	for {
		driverID, err := tui.RunMenu(registry.List())
		if err != nil {
			return err
		}
		if driverID == "" {
			return nil
		}

		// A failed driver is reported by the viewer; keep the menu open.
		if err := play(driverID, true); err != nil && !errors.Is(err, autopilot.ErrActuationFailed) {
			return err
		}
	}
}
