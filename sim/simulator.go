package sim

import (
	"github.com/shopspring/decimal"

	"github.com/signalforge/backtester/market"
)

var hundred = decimal.NewFromInt(100)

// Simulator fills synthetic orders against candles with a fixed
// slippage and commission model. It holds no state across calls and
// no randomness: the same order against the same candle always
// produces the same fill. Each backtest run constructs its own
// Simulator from that run's friction configuration.
type Simulator struct {
	slippagePct   decimal.Decimal // percent, e.g. 0.05 for 0.05%
	commissionPct decimal.Decimal
}

// New returns a Simulator with the given slippage and commission
// percentages.
func New(slippagePercent, commissionPercent decimal.Decimal) *Simulator {
	return &Simulator{
		slippagePct:   slippagePercent,
		commissionPct: commissionPercent,
	}
}

// ExecuteMarketOrder fills the order at the candle's open, widened by
// slippage against the trader: buys pay more, sells receive less.
// Commission is charged on the filled notional.
func (s *Simulator) ExecuteMarketOrder(o Order, c market.Candle) Fill {
	slip := s.slippagePct.Div(hundred)

	var fillPrice decimal.Decimal
	if o.Side == Buy {
		fillPrice = c.Open.Mul(decimal.NewFromInt(1).Add(slip))
	} else {
		fillPrice = c.Open.Mul(decimal.NewFromInt(1).Sub(slip))
	}

	commission := fillPrice.Mul(o.Amount).Mul(s.commissionPct.Div(hundred))

	return Fill{
		OrderID:    o.ID,
		Price:      fillPrice,
		Amount:     o.Amount,
		Commission: commission,
		Slippage:   fillPrice.Sub(c.Open).Abs(),
		Time:       c.Time,
	}
}

// Commission returns the commission charged on a notional of
// price * amount. Used for exit fills, which bypass the slippage
// model but still pay commission.
func (s *Simulator) Commission(price, amount decimal.Decimal) decimal.Decimal {
	return price.Mul(amount).Mul(s.commissionPct.Div(hundred))
}

// UnrealizedPnL is the open profit of a position marked at
// currentPrice: (current - entry) * amount for longs, negated for
// shorts.
func UnrealizedPnL(side market.Direction, entry, current, amount decimal.Decimal) decimal.Decimal {
	pnl := current.Sub(entry).Mul(amount)
	if side == market.Short {
		return pnl.Neg()
	}
	return pnl
}

// RealizedPnL is the closed profit of a round trip net of all
// commissions paid on entry and exit.
func RealizedPnL(side market.Direction, entry, exit, amount, totalCommissions decimal.Decimal) decimal.Decimal {
	return UnrealizedPnL(side, entry, exit, amount).Sub(totalCommissions)
}
