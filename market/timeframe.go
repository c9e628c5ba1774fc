package market

import "time"

// Timeframe names a candle bucket size ("1m", "1h", ...).
type Timeframe string

const (
	M1  Timeframe = "1m"
	M5  Timeframe = "5m"
	M15 Timeframe = "15m"
	H1  Timeframe = "1h"
	H4  Timeframe = "4h"
	D1  Timeframe = "1d"
)

// DefaultTimeframeDuration is used for any timeframe not in the table.
// The fallback is deliberate: an unknown timeframe widens the signal
// matching window to an hour instead of failing the run.
const DefaultTimeframeDuration = time.Hour

var timeframeDurations = map[Timeframe]time.Duration{
	M1:  time.Minute,
	M5:  5 * time.Minute,
	M15: 15 * time.Minute,
	H1:  time.Hour,
	H4:  4 * time.Hour,
	D1:  24 * time.Hour,
}

// Duration returns the bucket length for the timeframe, or
// DefaultTimeframeDuration for unrecognized values.
func (tf Timeframe) Duration() time.Duration {
	if d, ok := timeframeDurations[tf]; ok {
		return d
	}
	return DefaultTimeframeDuration
}

// Known reports whether the timeframe is in the lookup table.
func (tf Timeframe) Known() bool {
	_, ok := timeframeDurations[tf]
	return ok
}
