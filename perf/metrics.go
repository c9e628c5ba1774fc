package perf

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeSample is the slice of a closed trade the calculator needs:
// net P&L and the holding window.
type TradeSample struct {
	PnL       decimal.Decimal
	EntryTime time.Time
	ExitTime  time.Time
}

// EquitySample is one point of the equity curve.
type EquitySample struct {
	Time   time.Time
	Equity decimal.Decimal
}

// Metrics is the aggregated performance report for one backtest run.
type Metrics struct {
	TotalTrades     int `json:"total_trades"`
	WinningTrades   int `json:"winning_trades"`
	LosingTrades    int `json:"losing_trades"`
	BreakEvenTrades int `json:"break_even_trades"`

	GrossProfit decimal.Decimal `json:"gross_profit"`
	GrossLoss   decimal.Decimal `json:"gross_loss"` // reported as a positive magnitude
	NetProfit   decimal.Decimal `json:"net_profit"`

	AveragePnL  decimal.Decimal `json:"average_pnl"`
	AverageWin  decimal.Decimal `json:"average_win"`
	AverageLoss decimal.Decimal `json:"average_loss"` // positive magnitude
	LargestWin  decimal.Decimal `json:"largest_win"`
	LargestLoss decimal.Decimal `json:"largest_loss"` // positive magnitude

	WinRate      decimal.Decimal `json:"win_rate"` // percent, 0 with no trades
	ProfitFactor Ratio           `json:"profit_factor"`
	PayoffRatio  Ratio           `json:"payoff_ratio"`
	Expectancy   decimal.Decimal `json:"expectancy"`

	SharpeRatio  Ratio `json:"sharpe_ratio"`
	SortinoRatio Ratio `json:"sortino_ratio"`
	CalmarRatio  Ratio `json:"calmar_ratio"`

	MaxDrawdown        decimal.Decimal `json:"max_drawdown"`
	MaxDrawdownPercent decimal.Decimal `json:"max_drawdown_percent"`
	TotalReturnPercent decimal.Decimal `json:"total_return_percent"`

	AvgTradeDuration time.Duration `json:"avg_trade_duration"`
	AvgWinDuration   time.Duration `json:"avg_win_duration"`
	AvgLossDuration  time.Duration `json:"avg_loss_duration"`
}
