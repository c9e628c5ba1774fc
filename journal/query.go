package journal

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

// GetRun returns a single run summary by ID.
func (j *SQLite) GetRun(runID string) (RunRecord, error) {
	row := j.db.QueryRow(`
		SELECT run_id, config_id, symbol, exchange, timeframe, status, initial_capital, final_equity, trades, signals_used, started_at, completed_at, duration_ms, metrics
		FROM runs
		WHERE run_id = ?`, runID)

	rec, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return RunRecord{}, fmt.Errorf("run %q not found", runID)
		}
		return RunRecord{}, err
	}
	return rec, nil
}

// ListRuns returns all run summaries, most recent first.
func (j *SQLite) ListRuns() ([]RunRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, config_id, symbol, exchange, timeframe, status, initial_capital, final_equity, trades, signals_used, started_at, completed_at, duration_ms, metrics
		FROM runs
		ORDER BY completed_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTradesByRun returns a run's trades in close order.
func (j *SQLite) ListTradesByRun(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, run_id, symbol, side, entry_price, exit_price, amount, fee, profit_loss, profit_loss_percent, entry_time, exit_time, exit_reason
		FROM trades
		WHERE run_id = ?
		ORDER BY exit_time ASC, trade_id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var (
			rec                                   TradeRecord
			entry, exit, amount, fee, pnl, pnlPct string
		)
		if err := rows.Scan(
			&rec.TradeID,
			&rec.RunID,
			&rec.Symbol,
			&rec.Side,
			&entry,
			&exit,
			&amount,
			&fee,
			&pnl,
			&pnlPct,
			&rec.EntryTime,
			&rec.ExitTime,
			&rec.ExitReason,
		); err != nil {
			return nil, err
		}
		if err := parseDecimals(
			field{entry, &rec.EntryPrice},
			field{exit, &rec.ExitPrice},
			field{amount, &rec.Amount},
			field{fee, &rec.Fee},
			field{pnl, &rec.ProfitLoss},
			field{pnlPct, &rec.ProfitLossPercent},
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityByRun returns a run's equity curve in time order.
func (j *SQLite) ListEquityByRun(runID string) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, equity, drawdown, open_positions
		FROM equity
		WHERE run_id = ?
		ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var (
			rec        EquitySnapshot
			equity, dd string
		)
		if err := rows.Scan(&rec.RunID, &rec.Time, &equity, &dd, &rec.OpenPositions); err != nil {
			return nil, err
		}
		if err := parseDecimals(
			field{equity, &rec.Equity},
			field{dd, &rec.Drawdown},
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var (
		rec             RunRecord
		capital, equity string
		metrics         string
	)
	if err := row.Scan(
		&rec.RunID,
		&rec.ConfigID,
		&rec.Symbol,
		&rec.Exchange,
		&rec.Timeframe,
		&rec.Status,
		&capital,
		&equity,
		&rec.Trades,
		&rec.SignalsUsed,
		&rec.StartedAt,
		&rec.CompletedAt,
		&rec.DurationMS,
		&metrics,
	); err != nil {
		return RunRecord{}, err
	}
	rec.Metrics = []byte(metrics)
	if err := parseDecimals(
		field{capital, &rec.InitialCapital},
		field{equity, &rec.FinalEquity},
	); err != nil {
		return RunRecord{}, err
	}
	return rec, nil
}

type field struct {
	raw string
	dst *decimal.Decimal
}

func parseDecimals(fields ...field) error {
	for _, f := range fields {
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return fmt.Errorf("parse stored decimal %q: %w", f.raw, err)
		}
		*f.dst = v
	}
	return nil
}
