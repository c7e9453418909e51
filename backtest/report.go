package backtest

import (
	"fmt"
	"io"
	"sort"
	"time"

	"backsim/sim"
)

// PrintResult writes a human-readable run report.
func PrintResult(w io.Writer, res *Result) {
	s := res.Summary

	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Run ID:        %s\n", res.RunID)
	fmt.Fprintf(w, "Strategy:      %s\n", res.Strategy)
	fmt.Fprintf(w, "Instrument:    %s\n", res.Symbol)
	fmt.Fprintf(w, "Start:         %s\n", res.Start.Format(time.RFC3339))
	fmt.Fprintf(w, "End:           %s\n", res.End.Format(time.RFC3339))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:        %d\n", s.TotalTrades)
	fmt.Fprintf(w, "Wins:          %d\n", s.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", s.Losses)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", s.WinRate*100)
	fmt.Fprintf(w, "Profit Factor: %.2f\n", s.ProfitFactor)

	if len(s.ExitBreakdown) > 0 {
		reasons := make([]string, 0, len(s.ExitBreakdown))
		for r := range s.ExitBreakdown {
			reasons = append(reasons, string(r))
		}
		sort.Strings(reasons)

		fmt.Fprintln(w)
		fmt.Fprintln(w, "Exit Breakdown")
		fmt.Fprintln(w, "--------------------------------------------------")
		for _, r := range reasons {
			fmt.Fprintf(w, "%-13s %d\n", r+":", s.ExitBreakdown[sim.ExitReason(r)])
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start Balance: %.2f\n", res.InitialBalance)
	fmt.Fprintf(w, "End Balance:   %.2f\n", res.FinalBalance)
	fmt.Fprintf(w, "Net P/L:       %.2f\n", s.NetPnL)
	fmt.Fprintf(w, "Return:        %.2f%%\n", s.ReturnPct*100)
	fmt.Fprintf(w, "Max Drawdown:  %.2f%%\n", s.MaxDrawdown*100)
	fmt.Fprintf(w, "Sharpe:        %.2f\n", s.Sharpe)
	fmt.Fprintf(w, "Calmar:        %.2f\n", s.Calmar)

	if s.UnderSampled {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "WARNING: only %d trades; statistics are under-sampled\n", s.TotalTrades)
	}

	fmt.Fprintln(w)
}
