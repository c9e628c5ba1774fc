package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side a signal points at.
type Direction string

const (
	Long    Direction = "long"
	Short   Direction = "short"
	Neutral Direction = "neutral"
)

// SignalPrediction is one directional call produced by the signal
// subsystem. It is consumed read-only; the executor never mutates it.
type SignalPrediction struct {
	ID         string            `json:"id"`
	Symbol     string            `json:"symbol"`
	Direction  Direction         `json:"direction"`
	Confidence decimal.Decimal   `json:"confidence"` // [0,1]
	StopLoss   decimal.Decimal   `json:"stop_loss"`
	TakeProfit []decimal.Decimal `json:"take_profit"`
	Time       time.Time         `json:"timestamp"`
}

// Directional reports whether the signal actually calls a side.
func (s SignalPrediction) Directional() bool {
	return s.Direction == Long || s.Direction == Short
}

// SignalList is an ordered signal series.
type SignalList []SignalPrediction
