package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"backsim/journal"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show journaled backtest runs",
	Long: `Report reads the SQLite journal and shows past runs. Without --run it
lists recent runs; with --run it shows that run's trades.

Example:
  backsim report --db backsim.db
  backsim report --db backsim.db --run 01HV...`,
	RunE: runReport,
}

var (
	reportDBPath string
	reportRunID  string
	reportLimit  int
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportDBPath, "db", "d", "./backsim.db", "path to SQLite journal")
	reportCmd.Flags().StringVarP(&reportRunID, "run", "r", "", "run ID to detail")
	reportCmd.Flags().IntVarP(&reportLimit, "limit", "n", 20, "max runs to list")
}

func runReport(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(reportDBPath)
	if err != nil {
		return err
	}
	defer j.Close()

	if reportRunID != "" {
		return reportRun(j, reportRunID)
	}
	return reportList(j)
}

func reportList(j *journal.SQLite) error {
	runs, err := j.ListRuns(reportLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs journaled")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tCREATED\tSTRATEGY\tINSTRUMENT\tTRADES\tWIN%\tPF\tNET")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.1f\t%.2f\t%.2f\n",
			r.RunID,
			r.Created.Format("2006-01-02 15:04"),
			r.Strategy,
			r.Instrument,
			r.Trades,
			r.WinRate*100,
			r.ProfitFactor,
			r.EndBalance-r.StartBalance,
		)
	}
	return w.Flush()
}

func reportRun(j *journal.SQLite, runID string) error {
	run, err := j.GetRun(runID)
	if err != nil {
		return err
	}

	fmt.Printf("Run:        %s\n", run.RunID)
	fmt.Printf("Strategy:   %s on %s\n", run.Strategy, run.Instrument)
	fmt.Printf("Dataset:    %s\n", run.Dataset)
	fmt.Printf("Period:     %s -> %s\n", run.Start.Format(time.RFC3339), run.End.Format(time.RFC3339))
	fmt.Printf("Balance:    %.2f -> %.2f\n", run.StartBalance, run.EndBalance)
	fmt.Printf("Trades:     %d  win rate %.1f%%  PF %.2f\n", run.Trades, run.WinRate*100, run.ProfitFactor)
	fmt.Printf("Drawdown:   %.2f%%  Sharpe %.2f  Calmar %.2f\n\n",
		run.MaxDrawdown*100, run.Sharpe, run.Calmar)

	trades, err := j.ListTradesByRun(runID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TRADE\tDIR\tLOTS\tENTRY\tEXIT\tPNL\tREASON\tBARS")
	for _, t := range trades {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%s\t%d\n",
			t.TradeID, t.Direction, t.Lots, t.EntryPrice, t.ExitPrice,
			t.RealizedPnL, t.Reason, t.BarsHeld)
	}
	return w.Flush()
}
