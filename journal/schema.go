// journal/schema.go
package journal

// Prices and P/L columns are TEXT so decimal values survive a round
// trip exactly. REAL would reintroduce the float artifacts the
// simulator avoids.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	config_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	exchange TEXT NOT NULL,
	timeframe TEXT NOT NULL,
	status TEXT NOT NULL,
	initial_capital TEXT NOT NULL,
	final_equity TEXT NOT NULL,
	trades INTEGER NOT NULL,
	signals_used INTEGER NOT NULL,
	started_at DATETIME NOT NULL,
	completed_at DATETIME NOT NULL,
	duration_ms INTEGER NOT NULL,
	metrics TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	entry_price TEXT NOT NULL,
	exit_price TEXT NOT NULL,
	amount TEXT NOT NULL,
	fee TEXT NOT NULL,
	profit_loss TEXT NOT NULL,
	profit_loss_percent TEXT NOT NULL,
	entry_time DATETIME NOT NULL,
	exit_time DATETIME NOT NULL,
	exit_reason TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	equity TEXT NOT NULL,
	drawdown TEXT NOT NULL,
	open_positions INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id, exit_time);
CREATE INDEX IF NOT EXISTS idx_equity_run ON equity(run_id, time);
`
