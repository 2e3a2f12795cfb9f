package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tickbot",
	Short: "A streaming tick-trading bot for binary options",
	Long: `Tickbot streams price ticks from the broker over a websocket, scores each
tick window with a bank of technical and digit-distribution heuristics, and
places short-duration contracts when a signal clears the confidence bar.

It provides tools for:
  - Running a live trading session from a config file
  - Sizing recovery stakes with confidence-capped martingale
  - Session take-profit and stop-loss halts
  - Journaling trades and session snapshots to SQLite or CSV
  - Querying the trade journal

Complete documentation is available at https://github.com/rustyeddy/tickbot`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
