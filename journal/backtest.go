package journal

import (
	"fmt"
	"time"

	"backsim/backtest"
)

// SaveResult writes one backtest result to a journal: the run header, every
// closed trade, and the equity curve.
func SaveResult(j Journal, res *backtest.Result, dataset string, riskPct float64) error {
	run := Run{
		RunID:        res.RunID,
		Created:      time.Now().UTC(),
		Strategy:     res.Strategy,
		Instrument:   res.Symbol,
		Dataset:      dataset,
		Start:        res.Start,
		End:          res.End,
		RiskPct:      riskPct,
		StartBalance: res.InitialBalance,
		EndBalance:   res.FinalBalance,
		Trades:       res.Summary.TotalTrades,
		WinRate:      res.Summary.WinRate,
		ProfitFactor: res.Summary.ProfitFactor,
		MaxDrawdown:  res.Summary.MaxDrawdown,
		Sharpe:       res.Summary.Sharpe,
		Calmar:       res.Summary.Calmar,
	}
	if err := j.RecordRun(run); err != nil {
		return fmt.Errorf("record run %s: %w", res.RunID, err)
	}

	for _, t := range res.Trades {
		rec := TradeRecord{
			TradeID:     t.ID,
			RunID:       res.RunID,
			Instrument:  res.Symbol,
			Direction:   t.Direction.String(),
			Lots:        t.Lots,
			EntryPrice:  t.EntryPrice,
			ExitPrice:   t.ExitPrice,
			OpenTime:    t.EntryTime,
			CloseTime:   t.ExitTime,
			Commission:  t.Commission,
			RealizedPnL: t.RealizedPnL,
			Reason:      string(t.Reason),
			BarsHeld:    t.BarsHeld,
		}
		if err := j.RecordTrade(rec); err != nil {
			return fmt.Errorf("record trade %s: %w", t.ID, err)
		}
	}

	for _, e := range res.Equity {
		point := EquityPoint{RunID: res.RunID, Time: e.Time, Balance: e.Balance}
		if err := j.RecordEquity(point); err != nil {
			return fmt.Errorf("record equity point: %w", err)
		}
	}

	return nil
}
