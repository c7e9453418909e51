package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	strategy TEXT NOT NULL,
	instrument TEXT NOT NULL,
	dataset TEXT NOT NULL,
	period_start DATETIME NOT NULL,
	period_end DATETIME NOT NULL,
	risk_pct REAL NOT NULL,
	start_balance REAL NOT NULL,
	end_balance REAL NOT NULL,
	trades INTEGER NOT NULL,
	win_rate REAL NOT NULL,
	profit_factor REAL NOT NULL,
	max_drawdown REAL NOT NULL,
	sharpe REAL NOT NULL,
	calmar REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	instrument TEXT NOT NULL,
	direction TEXT NOT NULL,
	lots REAL NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	open_time DATETIME NOT NULL,
	close_time DATETIME NOT NULL,
	commission REAL NOT NULL,
	realized_pnl REAL NOT NULL,
	reason TEXT NOT NULL,
	bars_held INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	balance REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id, close_time);
CREATE INDEX IF NOT EXISTS idx_equity_run ON equity(run_id, time);
`
