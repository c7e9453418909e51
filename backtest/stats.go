package backtest

import (
	"math"

	"backsim/sim"
)

// noLossProfitFactor stands in for +Inf when a run has no losing trades,
// keeping reports and journal rows finite.
const noLossProfitFactor = 999.0

// Runs with fewer trades than this carry an under-sampled warning: the
// statistics are too noisy to act on.
const minSampleTrades = 200

// Summary is the statistical digest of one run.
type Summary struct {
	TotalTrades int
	Wins        int
	Losses      int
	WinRate     float64 // fraction, 0..1

	GrossProfit  float64
	GrossLoss    float64 // positive magnitude
	NetPnL       float64
	ReturnPct    float64 // fraction of initial balance
	ProfitFactor float64

	MaxDrawdown float64 // deepest peak-to-trough equity drop, fraction of peak
	Sharpe      float64 // per-trade PnL mean over stddev
	Calmar      float64 // return over max drawdown

	ExitBreakdown map[sim.ExitReason]int

	UnderSampled bool
}

// Summarize computes the summary from a run's trades and equity curve.
func Summarize(res *Result) Summary {
	s := Summary{
		ExitBreakdown: make(map[sim.ExitReason]int),
		UnderSampled:  len(res.Trades) < minSampleTrades,
	}

	for _, t := range res.Trades {
		s.TotalTrades++
		s.NetPnL += t.RealizedPnL
		s.ExitBreakdown[t.Reason]++

		if t.Win() {
			s.Wins++
			s.GrossProfit += t.RealizedPnL
		} else {
			s.Losses++
			s.GrossLoss += -t.RealizedPnL
		}
	}

	if s.TotalTrades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.TotalTrades)
	}
	if res.InitialBalance > 0 {
		s.ReturnPct = s.NetPnL / res.InitialBalance
	}

	switch {
	case s.GrossLoss > 0:
		s.ProfitFactor = s.GrossProfit / s.GrossLoss
	case s.GrossProfit > 0:
		s.ProfitFactor = noLossProfitFactor
	}

	s.MaxDrawdown = maxDrawdown(res.Equity)
	s.Sharpe = sharpe(res.Trades)
	if s.MaxDrawdown > 0 {
		s.Calmar = s.ReturnPct / s.MaxDrawdown
	}

	return s
}

// maxDrawdown scans the equity curve for the deepest drop from a running
// peak, as a fraction of that peak.
func maxDrawdown(equity []EquitySample) float64 {
	var peak, worst float64
	for _, e := range equity {
		if e.Balance > peak {
			peak = e.Balance
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - e.Balance) / peak; dd > worst {
			worst = dd
		}
	}
	return worst
}

// sharpe is the mean per-trade PnL over its population standard deviation.
// Degenerate series (fewer than two trades, or zero variance) score zero.
func sharpe(trades []sim.ClosedTrade) float64 {
	n := len(trades)
	if n < 2 {
		return 0
	}

	var sum float64
	for _, t := range trades {
		sum += t.RealizedPnL
	}
	mean := sum / float64(n)

	var variance float64
	for _, t := range trades {
		d := t.RealizedPnL - mean
		variance += d * d
	}
	variance /= float64(n)

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return mean / std
}
