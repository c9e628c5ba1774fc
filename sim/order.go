package sim

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of a synthetic order.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Order is an ephemeral market-order request. It lives for a single
// candle iteration and is never persisted beyond producing a Fill.
type Order struct {
	ID         string
	Side       Side
	Amount     decimal.Decimal
	StopLoss   decimal.Decimal   // zero means none
	TakeProfit []decimal.Decimal // checked in supplied order
	Time       time.Time
}

// Fill is the result of executing an Order against a candle.
type Fill struct {
	OrderID    string
	Price      decimal.Decimal
	Amount     decimal.Decimal
	Commission decimal.Decimal
	Slippage   decimal.Decimal // |fill price - candle open|
	Time       time.Time
}
