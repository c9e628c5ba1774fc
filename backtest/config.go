package backtest

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/signalforge/backtester/market"
)

// Config is the immutable input of one backtest run.
// Percent fields are expressed in percent, not fractions: a
// MaxPositionSizePercent of 10 risks 10% of equity per entry.
type Config struct {
	ID        string           `json:"id"`
	Symbol    string           `json:"symbol"`
	Exchange  string           `json:"exchange"`
	Timeframe market.Timeframe `json:"timeframe"`

	InitialCapital         decimal.Decimal `json:"initial_capital"`
	Leverage               decimal.Decimal `json:"leverage"`
	MaxPositionSizePercent decimal.Decimal `json:"max_position_size_percent"`
	SlippagePercent        decimal.Decimal `json:"slippage_percent"`
	CommissionPercent      decimal.Decimal `json:"commission_percent"`
}

// Validate fails fast on configuration that would corrupt a run.
// An unknown timeframe is not an error here: it falls back to the
// documented 1h duration during signal matching.
func (c Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("config: symbol is required")
	}
	if !c.InitialCapital.IsPositive() {
		return fmt.Errorf("config: initial_capital must be positive, got %s", c.InitialCapital)
	}
	if !c.Leverage.IsPositive() {
		return fmt.Errorf("config: leverage must be positive, got %s", c.Leverage)
	}
	if !c.MaxPositionSizePercent.IsPositive() || c.MaxPositionSizePercent.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("config: max_position_size_percent must be in (0,100], got %s", c.MaxPositionSizePercent)
	}
	if c.SlippagePercent.IsNegative() {
		return fmt.Errorf("config: slippage_percent must not be negative")
	}
	if c.CommissionPercent.IsNegative() {
		return fmt.Errorf("config: commission_percent must not be negative")
	}
	return nil
}
