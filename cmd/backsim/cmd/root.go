package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "backsim",
	Short: "A bar-by-bar strategy backtester for XAUUSD and FX data",
	Long: `Backsim replays historical H1 bars through trading strategies with a
realistic execution model.

It provides tools for:
  - Backtesting strategies over CSV bar datasets
  - Spread, slippage, and commission cost modeling
  - Fixed-fractional sizing with drawdown-adaptive risk
  - Daily loss limits and a per-day kill switch
  - Journaling runs, trades, and equity curves to SQLite or CSV
  - Downloading tick history from the Dukascopy datafeed`,
	SilenceUsage: true,
}

// Execute runs the root command tree.
func Execute() error {
	return rootCmd.Execute()
}
