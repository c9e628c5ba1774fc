package sim

import (
	"github.com/shopspring/decimal"

	"github.com/signalforge/backtester/market"
)

// ExitReason says why a position was closed.
type ExitReason string

const (
	ExitNone          ExitReason = "none"
	ExitStopLoss      ExitReason = "stop_loss"
	ExitTakeProfit    ExitReason = "take_profit"
	ExitEndOfBacktest ExitReason = "end_of_backtest"
)

// ExitCheck is the outcome of evaluating a candle against a
// position's stop and take-profit levels.
type ExitCheck struct {
	Reason ExitReason
	Price  decimal.Decimal // the exact trigger level, not the candle extreme
}

// CheckExitConditions models stop/take hits within one candle.
//
// Longs: the stop fires if the low touches or crosses it; a
// take-profit fires on the first supplied level the high reaches.
// Shorts mirror high and low. Exits fill at the trigger level itself,
// the conservative assumption for stops.
//
// Stop-first policy: when both a stop and a take-profit would fire
// inside the same candle the stop wins. Intra-candle path is unknown,
// so the tie breaks toward risk, not profit.
func CheckExitConditions(side market.Direction, stop decimal.Decimal, takeProfits []decimal.Decimal, c market.Candle) ExitCheck {
	switch side {
	case market.Long:
		if stop.IsPositive() && c.Low.LessThanOrEqual(stop) {
			return ExitCheck{Reason: ExitStopLoss, Price: stop}
		}
		for _, tp := range takeProfits {
			if tp.IsPositive() && c.High.GreaterThanOrEqual(tp) {
				return ExitCheck{Reason: ExitTakeProfit, Price: tp}
			}
		}
	case market.Short:
		if stop.IsPositive() && c.High.GreaterThanOrEqual(stop) {
			return ExitCheck{Reason: ExitStopLoss, Price: stop}
		}
		for _, tp := range takeProfits {
			if tp.IsPositive() && c.Low.LessThanOrEqual(tp) {
				return ExitCheck{Reason: ExitTakeProfit, Price: tp}
			}
		}
	}
	return ExitCheck{Reason: ExitNone}
}
