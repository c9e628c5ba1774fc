// journal/journal.go
package journal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/signalforge/backtester/backtest"
)

// RunRecord mirrors the runs table: one row per completed backtest.
// Metrics holds the serialized performance metrics as JSON.
type RunRecord struct {
	RunID     string
	ConfigID  string
	Symbol    string
	Exchange  string
	Timeframe string
	Status    string

	InitialCapital decimal.Decimal
	FinalEquity    decimal.Decimal

	Trades      int
	SignalsUsed int

	StartedAt   time.Time
	CompletedAt time.Time
	DurationMS  int64

	Metrics []byte
}

// TradeRecord mirrors the trades table.
type TradeRecord struct {
	RunID   string
	TradeID string
	Symbol  string
	Side    string

	EntryPrice        decimal.Decimal
	ExitPrice         decimal.Decimal
	Amount            decimal.Decimal
	Fee               decimal.Decimal
	ProfitLoss        decimal.Decimal
	ProfitLossPercent decimal.Decimal

	EntryTime  time.Time
	ExitTime   time.Time
	ExitReason string
}

// EquitySnapshot mirrors the equity table: one row per candle.
type EquitySnapshot struct {
	RunID         string
	Time          time.Time
	Equity        decimal.Decimal
	Drawdown      decimal.Decimal
	OpenPositions int
}

type Journal interface {
	RecordRun(RunRecord) error
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// FromResult flattens a backtest result into journal records keyed by
// runID.
func FromResult(runID string, res *backtest.Result) (RunRecord, []TradeRecord, []EquitySnapshot, error) {
	metrics, err := json.Marshal(res.Metrics)
	if err != nil {
		return RunRecord{}, nil, nil, fmt.Errorf("marshal metrics: %w", err)
	}

	run := RunRecord{
		RunID:          runID,
		ConfigID:       res.ConfigID,
		Symbol:         res.Symbol,
		Exchange:       res.Exchange,
		Timeframe:      string(res.Timeframe),
		Status:         string(res.Status),
		InitialCapital: res.InitialCapital,
		FinalEquity:    res.FinalEquity,
		Trades:         len(res.Trades),
		SignalsUsed:    len(res.SignalsUsed),
		StartedAt:      res.StartedAt,
		CompletedAt:    res.CompletedAt,
		DurationMS:     res.DurationMS,
		Metrics:        metrics,
	}

	trades := make([]TradeRecord, len(res.Trades))
	for i, tr := range res.Trades {
		trades[i] = TradeRecord{
			RunID:             runID,
			TradeID:           tr.ID,
			Symbol:            tr.Symbol,
			Side:              string(tr.Side),
			EntryPrice:        tr.EntryPrice,
			ExitPrice:         tr.ExitPrice,
			Amount:            tr.Amount,
			Fee:               tr.Fee,
			ProfitLoss:        tr.ProfitLoss,
			ProfitLossPercent: tr.ProfitLossPercent,
			EntryTime:         tr.EntryTime,
			ExitTime:          tr.ExitTime,
			ExitReason:        string(tr.ExitReason),
		}
	}

	equity := make([]EquitySnapshot, len(res.EquityCurve))
	for i, p := range res.EquityCurve {
		equity[i] = EquitySnapshot{
			RunID:         runID,
			Time:          p.Time,
			Equity:        p.Equity,
			Drawdown:      p.Drawdown,
			OpenPositions: p.OpenPositions,
		}
	}

	return run, trades, equity, nil
}

// Record writes a complete backtest result to the journal.
func Record(j Journal, runID string, res *backtest.Result) error {
	run, trades, equity, err := FromResult(runID, res)
	if err != nil {
		return err
	}
	if err := j.RecordRun(run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	for _, tr := range trades {
		if err := j.RecordTrade(tr); err != nil {
			return fmt.Errorf("record trade %s: %w", tr.TradeID, err)
		}
	}
	for _, eq := range equity {
		if err := j.RecordEquity(eq); err != nil {
			return fmt.Errorf("record equity point: %w", err)
		}
	}
	return nil
}
