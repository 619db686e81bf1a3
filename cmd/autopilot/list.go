package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snake-autopilot/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available drivers",
	Long:  `Shows every driver the autopilot can play through.`,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	drivers := registry.List()

	if len(drivers) == 0 {
		fmt.Println("No drivers available.")
		return
	}

	fmt.Println("Available drivers:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, d := range drivers {
		maxIDLen = max(maxIDLen, len(d.ID))
	}

	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Title")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "-----")

	for _, d := range drivers {
		fmt.Printf("  %-*s  %s\n", maxIDLen, d.ID, d.Title)
	}

	fmt.Println()
	fmt.Println("Run 'autopilot play <id>' to start the autopilot.")
}
