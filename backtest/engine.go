// Package backtest runs strategies over historical bars and summarizes the
// outcome. The engine is single-threaded and deterministic: the same bars,
// strategy, and config always produce the same trades and equity curve.
package backtest

import (
	"errors"
	"fmt"
	"time"

	"backsim/indicators"
	"backsim/market"
	"backsim/pkg/id"
	"backsim/risk"
	"backsim/sim"
	"backsim/strategies"
)

// Trailing-stop constants, in ATR multiples. These belong to the engine
// rather than a strategy: every position gets the same protection policy.
const (
	breakevenATR     = 1.0
	trailStartATR    = 1.5
	trailDistanceATR = 1.0

	defaultATRPeriod = 14
)

// Config drives one backtest run. The Enable* fields are capability
// toggles; turning one off removes the whole mechanism from the run.
type Config struct {
	Symbol         string
	InitialBalance float64
	BaseRiskPct    float64
	ATRPeriod      int

	Costs   sim.CostModel
	Monitor risk.MonitorConfig

	EnableCosts        bool
	EnableAdaptiveRisk bool
	EnableTrailing     bool

	// TakeFirst flips the same-bar SL/TP tie toward the optimistic fill.
	TakeFirst bool
}

// EquitySample is one point of the equity curve: the account balance after
// all closes on the bar at Time.
type EquitySample struct {
	Time    time.Time
	Balance float64
}

// Result is the full outcome of a run: the closed-trade ledger in close
// order, the per-bar equity curve, and the computed summary.
type Result struct {
	RunID    string
	Strategy string
	Symbol   string
	Start    time.Time
	End      time.Time

	InitialBalance float64
	FinalBalance   float64

	Trades []sim.ClosedTrade
	Equity []EquitySample

	Summary Summary
}

// Engine wires the strategy, lifecycle manager, sizer, adaptive risk, and
// daily monitor together and owns the per-bar loop.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.ATRPeriod <= 0 {
		cfg.ATRPeriod = defaultATRPeriod
	}
	return &Engine{cfg: cfg}
}

// Run executes the strategy over the series. Bars are consumed strictly in
// order; open positions are managed before any new entry is considered, so
// a bar can close one trade and open the next.
func (e *Engine) Run(series *market.Series, strat strategies.Strategy) (*Result, error) {
	if series == nil || len(series.Bars) == 0 {
		return nil, errors.New("empty series")
	}
	if e.cfg.InitialBalance <= 0 {
		return nil, fmt.Errorf("initial balance %.2f must be positive", e.cfg.InitialBalance)
	}
	if e.cfg.BaseRiskPct <= 0 || e.cfg.BaseRiskPct > 1 {
		return nil, fmt.Errorf("base risk %.4f outside (0, 1]", e.cfg.BaseRiskPct)
	}

	symbol := e.cfg.Symbol
	if symbol == "" {
		symbol = series.Instrument
	}
	meta := market.Instrument(symbol)

	costs := e.cfg.Costs
	if !e.cfg.EnableCosts {
		costs = sim.CostModel{}
	}

	profile := strat.Profile()
	rules := sim.ExitRules{
		StopATR:      profile.StopATR,
		TakeATR:      profile.TakeATR,
		TimeExitBars: profile.TimeExitBars,
		TimeExitHour: profile.TimeExitHour,
	}
	if e.cfg.EnableTrailing {
		rules.Trailing = true
		rules.BreakevenATR = breakevenATR
		rules.TrailStartATR = trailStartATR
		rules.TrailDistATR = trailDistanceATR
	}
	if e.cfg.TakeFirst {
		rules.Precedence = sim.TakeFirst
	}

	mgr := sim.NewManager(meta, costs, rules)
	monitor := risk.NewMonitor(e.cfg.Monitor)
	atr := indicators.NewATR(e.cfg.ATRPeriod)

	var adaptive *risk.AdaptiveRisk
	if e.cfg.EnableAdaptiveRisk {
		adaptive = risk.NewAdaptiveRisk(e.cfg.BaseRiskPct)
	}

	strat.Reset()

	warmup := strat.Warmup()
	if atr.Warmup() > warmup {
		warmup = atr.Warmup()
	}

	res := &Result{
		RunID:          id.New(),
		Strategy:       strat.Name(),
		Symbol:         symbol,
		Start:          series.Bars[0].Time,
		End:            series.Bars[len(series.Bars)-1].Time,
		InitialBalance: e.cfg.InitialBalance,
	}

	balance := e.cfg.InitialBalance

	record := func(trade sim.ClosedTrade) {
		balance += trade.RealizedPnL
		if adaptive != nil {
			adaptive.RecordResult(trade.RealizedPnL)
		}
		monitor.RecordClose(trade.ExitTime, trade.RealizedPnL, balance)
		res.Trades = append(res.Trades, trade)
	}

	for i, bar := range series.Bars {
		strat.Update(bar)
		atr.Update(bar)

		for _, trade := range mgr.Step(i, bar, atr.Value()) {
			record(trade)
		}
		res.Equity = append(res.Equity, EquitySample{Time: bar.Time, Balance: balance})

		if i < warmup {
			continue
		}
		sig := strat.Signal()
		if sig == strategies.Hold {
			continue
		}
		if !profile.InSession(bar.Time.UTC().Hour()) {
			continue
		}
		if decision := monitor.CheckEntry(bar.Time, mgr.OpenCount()); !decision.Allowed {
			continue
		}

		riskPct := e.cfg.BaseRiskPct
		if adaptive != nil {
			riskPct = adaptive.Risk(balance)
		}
		if riskPct <= 0 {
			continue
		}

		stopDist := rules.StopDistance(atr.Value())
		size := risk.Size(risk.SizerInputs{
			Balance:    balance,
			RiskPct:    riskPct,
			StopPoints: meta.Points(stopDist),
			TickValue:  meta.TickValue,
			LotStep:    meta.LotStep,
			MinLot:     meta.MinLot,
			MaxLot:     meta.MaxLot,
		})
		if size.Lots <= 0 {
			continue
		}

		dir := sim.Long
		if sig == strategies.Sell {
			dir = sim.Short
		}
		mgr.Open(id.NewAt(bar.Time), dir, bar, i, atr.Value(), size.Lots)
		monitor.RecordEntry(bar.Time)
	}

	// Whatever is still open gets flushed at the last bar close.
	last := len(series.Bars) - 1
	if flushed := mgr.CloseAll(last, series.Bars[last], sim.ExitEndOfData); len(flushed) > 0 {
		for _, trade := range flushed {
			record(trade)
		}
		res.Equity = append(res.Equity, EquitySample{Time: series.Bars[last].Time, Balance: balance})
	}

	res.FinalBalance = balance
	res.Summary = Summarize(res)
	return res, nil
}
