package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle represents one OHLCV bar for a fixed time bucket.
// Candles arrive from the historical store in strictly ascending
// timestamp order; gaps are tolerated and never filled here.
type Candle struct {
	Time   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume decimal.Decimal
}

// CandleList is an ordered candle series.
type CandleList []Candle

// Ascending reports whether timestamps are strictly increasing.
func (cl CandleList) Ascending() bool {
	for i := 1; i < len(cl); i++ {
		if !cl[i].Time.After(cl[i-1].Time) {
			return false
		}
	}
	return true
}
