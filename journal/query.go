package journal

import (
	"database/sql"
	"errors"
	"fmt"
)

const runColumns = `run_id, created, strategy, instrument, dataset, period_start,
	period_end, risk_pct, start_balance, end_balance, trades, win_rate,
	profit_factor, max_drawdown, sharpe, calmar`

func scanRun(row interface{ Scan(...any) error }) (Run, error) {
	var r Run
	err := row.Scan(
		&r.RunID, &r.Created, &r.Strategy, &r.Instrument, &r.Dataset, &r.Start,
		&r.End, &r.RiskPct, &r.StartBalance, &r.EndBalance, &r.Trades, &r.WinRate,
		&r.ProfitFactor, &r.MaxDrawdown, &r.Sharpe, &r.Calmar,
	)
	return r, err
}

// GetRun returns one run header by ID.
func (j *SQLite) GetRun(runID string) (Run, error) {
	row := j.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)

	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %q not found", runID)
	}
	return r, err
}

// ListRuns returns the most recent runs, newest first. A non-positive
// limit returns everything.
func (j *SQLite) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats negative LIMIT as unbounded
	}
	rows, err := j.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY created DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListTradesByRun returns a run's trades in close order.
func (j *SQLite) ListTradesByRun(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, run_id, instrument, direction, lots, entry_price, exit_price,
		       open_time, close_time, commission, realized_pnl, reason, bars_held
		FROM trades
		WHERE run_id = ?
		ORDER BY close_time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(
			&t.TradeID, &t.RunID, &t.Instrument, &t.Direction, &t.Lots, &t.EntryPrice,
			&t.ExitPrice, &t.OpenTime, &t.CloseTime, &t.Commission, &t.RealizedPnL,
			&t.Reason, &t.BarsHeld,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListEquityByRun returns a run's equity curve in time order.
func (j *SQLite) ListEquityByRun(runID string) ([]EquityPoint, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, balance
		FROM equity
		WHERE run_id = ?
		ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityPoint
	for rows.Next() {
		var e EquityPoint
		if err := rows.Scan(&e.RunID, &e.Time, &e.Balance); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
