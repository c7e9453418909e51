// Package journal persists backtest runs, their closed trades, and equity
// curves, to SQLite for querying and CSV for spreadsheets.
package journal

import "time"

// Run is the header row of one backtest: identity, dataset, and the
// summary statistics worth comparing across runs.
type Run struct {
	RunID      string
	Created    time.Time
	Strategy   string
	Instrument string
	Dataset    string

	Start time.Time
	End   time.Time

	RiskPct      float64
	StartBalance float64
	EndBalance   float64

	Trades       int
	WinRate      float64
	ProfitFactor float64
	MaxDrawdown  float64
	Sharpe       float64
	Calmar       float64
}

// TradeRecord is one closed trade, keyed to its run.
type TradeRecord struct {
	TradeID     string
	RunID       string
	Instrument  string
	Direction   string
	Lots        float64
	EntryPrice  float64
	ExitPrice   float64
	OpenTime    time.Time
	CloseTime   time.Time
	Commission  float64
	RealizedPnL float64
	Reason      string
	BarsHeld    int
}

// EquityPoint is one sample of a run's equity curve.
type EquityPoint struct {
	RunID   string
	Time    time.Time
	Balance float64
}

// Journal is the write side. Both backends are append-only; re-recording
// a run ID is the caller's mistake and surfaces as a constraint error on
// SQLite.
type Journal interface {
	RecordRun(Run) error
	RecordTrade(TradeRecord) error
	RecordEquity(EquityPoint) error
	Close() error
}
