package backtest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/signalforge/backtester/market"
	"github.com/signalforge/backtester/perf"
	"github.com/signalforge/backtester/sim"
)

// Position is the single mutable entity of a run. At most one exists
// at any simulated instant; it is created on an accepted entry signal
// and destroyed into a Trade on exit.
type Position struct {
	Side            market.Direction
	EntryPrice      decimal.Decimal
	Amount          decimal.Decimal
	StopLoss        decimal.Decimal
	TakeProfit      []decimal.Decimal
	EntryTime       time.Time
	EntryCommission decimal.Decimal
	UnrealizedPnL   decimal.Decimal
}

// Trade is an immutable closed-trade record.
type Trade struct {
	ID                string           `json:"id"`
	Symbol            string           `json:"symbol"`
	Side              market.Direction `json:"side"`
	EntryPrice        decimal.Decimal  `json:"entry_price"`
	ExitPrice         decimal.Decimal  `json:"exit_price"`
	Amount            decimal.Decimal  `json:"amount"`
	Fee               decimal.Decimal  `json:"fee"` // entry + exit commission
	ProfitLoss        decimal.Decimal  `json:"profit_loss"`
	ProfitLossPercent decimal.Decimal  `json:"profit_loss_percent"`
	EntryTime         time.Time        `json:"entry_time"`
	ExitTime          time.Time        `json:"exit_time"`
	ExitReason        sim.ExitReason   `json:"exit_reason"`
}

// EquityPoint is one sample of the equity curve, appended once per
// candle.
type EquityPoint struct {
	Time          time.Time       `json:"time"`
	Equity        decimal.Decimal `json:"equity"` // realized + open unrealized
	Drawdown      decimal.Decimal `json:"drawdown"`
	OpenPositions int             `json:"open_positions"` // 0 or 1
}

// Status of a finished run. The executor either returns a completed
// Result or an error; there is no partial result.
type Status string

const StatusCompleted Status = "completed"

// Result is the complete audit trail of one run.
type Result struct {
	ConfigID  string           `json:"config_id"`
	Symbol    string           `json:"symbol"`
	Exchange  string           `json:"exchange"`
	Timeframe market.Timeframe `json:"timeframe"`
	Status    Status           `json:"status"`

	InitialCapital decimal.Decimal `json:"initial_capital"`
	FinalEquity    decimal.Decimal `json:"final_equity"`

	Metrics     perf.Metrics      `json:"metrics"`
	Trades      []Trade           `json:"trades"`
	SignalsUsed market.SignalList `json:"signals_used"`
	EquityCurve []EquityPoint     `json:"equity_curve"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMS  int64     `json:"duration_ms"`
}
