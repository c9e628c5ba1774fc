package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// RecordRun replaces any existing row with the same run_id, so a rerun
// under a fixed ID overwrites its old summary.
func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO runs
		(run_id, config_id, symbol, exchange, timeframe, status, initial_capital, final_equity, trades, signals_used, started_at, completed_at, duration_ms, metrics)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.ConfigID, r.Symbol, r.Exchange, r.Timeframe, r.Status,
		r.InitialCapital.String(), r.FinalEquity.String(),
		r.Trades, r.SignalsUsed,
		r.StartedAt, r.CompletedAt, r.DurationMS,
		string(r.Metrics),
	)
	return err
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO trades
		(trade_id, run_id, symbol, side, entry_price, exit_price, amount, fee, profit_loss, profit_loss_percent, entry_time, exit_time, exit_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.RunID, t.Symbol, t.Side,
		t.EntryPrice.String(), t.ExitPrice.String(), t.Amount.String(),
		t.Fee.String(), t.ProfitLoss.String(), t.ProfitLossPercent.String(),
		t.EntryTime, t.ExitTime, t.ExitReason,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, time, equity, drawdown, open_positions)
		VALUES (?, ?, ?, ?, ?)`,
		e.RunID, e.Time, e.Equity.String(), e.Drawdown.String(), e.OpenPositions,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
