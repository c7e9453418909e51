package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the queryable journal backend.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) a journal database at path and
// ensures the schema exists.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(r Run) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, created, strategy, instrument, dataset, period_start, period_end,
		 risk_pct, start_balance, end_balance, trades, win_rate, profit_factor,
		 max_drawdown, sharpe, calmar)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Strategy, r.Instrument, r.Dataset, r.Start, r.End,
		r.RiskPct, r.StartBalance, r.EndBalance, r.Trades, r.WinRate, r.ProfitFactor,
		r.MaxDrawdown, r.Sharpe, r.Calmar,
	)
	return err
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, run_id, instrument, direction, lots, entry_price, exit_price,
		 open_time, close_time, commission, realized_pnl, reason, bars_held)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.RunID, t.Instrument, t.Direction, t.Lots, t.EntryPrice, t.ExitPrice,
		t.OpenTime, t.CloseTime, t.Commission, t.RealizedPnL, t.Reason, t.BarsHeld,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquityPoint) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (run_id, time, balance) VALUES (?, ?, ?)`,
		e.RunID, e.Time, e.Balance,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
