package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"backsim/market/data"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download tick history from the Dukascopy datafeed",
	Long: `Fetch downloads hourly .bi5 tick files for a symbol and decompresses
them into raw .bin files under the output directory. Hours the feed has no
data for (weekends, holidays) are reported as missing, not errors.

Example:
  backsim fetch --symbol XAUUSD --start 2024-03-01T00 --end 2024-03-02T00 --out ./dukas`,
	RunE: runFetch,
}

var (
	fetchSymbol  string
	fetchStart   string
	fetchEnd     string
	fetchOut     string
	fetchBase    string
	fetchWorkers int
	fetchBarsCSV string
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchSymbol, "symbol", "s", "XAUUSD", "symbol like XAUUSD, EURUSD")
	fetchCmd.Flags().StringVar(&fetchStart, "start", "", "start hour (UTC) like 2024-03-01T00 (required)")
	fetchCmd.Flags().StringVar(&fetchEnd, "end", "", "end hour (UTC, exclusive) like 2024-03-02T00 (required)")
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "./dukas", "output directory")
	fetchCmd.Flags().StringVar(&fetchBase, "base", data.DefaultBase, "datafeed base URL")
	fetchCmd.Flags().IntVar(&fetchWorkers, "workers", 4, "parallel downloads")
	fetchCmd.Flags().StringVar(&fetchBarsCSV, "bars", "", "also aggregate ticks into an H1 bar CSV at this path")

	fetchCmd.MarkFlagRequired("start")
	fetchCmd.MarkFlagRequired("end")
}

func runFetch(cmd *cobra.Command, args []string) error {
	const layout = "2006-01-02T15"

	start, err := time.ParseInLocation(layout, fetchStart, time.UTC)
	if err != nil {
		return fmt.Errorf("bad --start: %w", err)
	}
	end, err := time.ParseInLocation(layout, fetchEnd, time.UTC)
	if err != nil {
		return fmt.Errorf("bad --end: %w", err)
	}

	f := data.NewFetcher(fetchBase)
	f.Workers = fetchWorkers

	fmt.Printf("Fetching %s %s -> %s into %s\n",
		fetchSymbol, start.Format(time.RFC3339), end.Format(time.RFC3339), fetchOut)

	stats, err := f.FetchHours(cmd.Context(), fetchSymbol, start, end, fetchOut)
	if err != nil {
		return err
	}

	fmt.Printf("Done. ok=%d missing=%d failed=%d\n", stats.OK, stats.Missing, stats.Failed)
	if stats.Failed > 0 {
		return fmt.Errorf("%d hours failed to download", stats.Failed)
	}

	if fetchBarsCSV != "" {
		bars, err := data.BuildBars(fetchOut, fetchSymbol, start, end, time.Hour)
		if err != nil {
			return fmt.Errorf("build bars: %w", err)
		}
		if err := data.WriteBarsCSV(fetchBarsCSV, bars); err != nil {
			return fmt.Errorf("write bars: %w", err)
		}
		fmt.Printf("Wrote %d bars to %s\n", len(bars), fetchBarsCSV)
	}
	return nil
}
