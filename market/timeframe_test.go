package market

import (
	"testing"
	"time"
)

func TestTimeframeDuration(t *testing.T) {
	cases := []struct {
		tf   Timeframe
		want time.Duration
	}{
		{M1, time.Minute},
		{M5, 5 * time.Minute},
		{M15, 15 * time.Minute},
		{H1, time.Hour},
		{H4, 4 * time.Hour},
		{D1, 24 * time.Hour},
	}
	for _, c := range cases {
		if got := c.tf.Duration(); got != c.want {
			t.Errorf("%s: got %v want %v", c.tf, got, c.want)
		}
	}
}

func TestTimeframeDurationFallback(t *testing.T) {
	tf := Timeframe("3w")
	if tf.Known() {
		t.Fatalf("expected %q to be unknown", tf)
	}
	if got := tf.Duration(); got != DefaultTimeframeDuration {
		t.Fatalf("unknown timeframe: got %v want %v", got, DefaultTimeframeDuration)
	}
}

func TestCandleListAscending(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	cl := CandleList{{Time: t0}, {Time: t0.Add(time.Hour)}, {Time: t0.Add(2 * time.Hour)}}
	if !cl.Ascending() {
		t.Fatalf("expected ascending")
	}

	cl = append(cl, Candle{Time: t0.Add(2 * time.Hour)}) // duplicate timestamp
	if cl.Ascending() {
		t.Fatalf("expected not ascending with duplicate timestamp")
	}
}
