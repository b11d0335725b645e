package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "eqlog",
	Short: "Parse EverQuest combat logs into encounters",
	Long: `eqlog parses EverQuest combat logs into discrete encounters with
per-entity melee, spell, damage-shield and healing statistics and a
second-bucketed damage/heal timeline.

Use "eqlog parse" for a finished log file, "eqlog tail" to follow a live
log, or "eqlog serve" to stream parse results over a websocket.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
