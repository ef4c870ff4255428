package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fosim",
	Short: "A futures & options paper-trading simulator",
	Long: `Fosim is an in-memory futures & options paper-trading simulator.

It provides tools for:
  - Simulating spot prices with random walks or replayed historical data
  - Recording paper trades in futures, calls, puts and plain stock
  - Mark-to-market P&L valuation against the moving spot
  - Journaling trades and equity marks to memory, CSV or SQLite`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
