package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "backsim",
	Short: "A deterministic signal-driven backtest simulator",
	Long: `Backsim replays historical candles against recorded signal
predictions and produces an exact, reproducible account of every
simulated trade.

It provides tools for:
  - Running backtests from candle and signal files
  - Journaling trades and equity curves to SQLite or CSV
  - Rebuilding run reports from the journal
  - Decimal-exact P/L accounting with slippage and commission`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
