package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/signalforge/backtester/market"
	"github.com/signalforge/backtester/sim"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var base = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func hourly(i int) time.Time {
	return base.Add(time.Duration(i) * time.Hour)
}

func candle(i int, open, high, low, close string) market.Candle {
	return market.Candle{
		Time:   hourly(i),
		Open:   d(open),
		High:   d(high),
		Low:    d(low),
		Close:  d(close),
		Volume: d("10"),
	}
}

func longSignal(i int, confidence, stop string, takes ...string) market.SignalPrediction {
	sig := market.SignalPrediction{
		ID:         "sig",
		Symbol:     "BTC/USDT",
		Direction:  market.Long,
		Confidence: d(confidence),
		StopLoss:   d(stop),
		Time:       hourly(i),
	}
	for _, tp := range takes {
		sig.TakeProfit = append(sig.TakeProfit, d(tp))
	}
	return sig
}

func testConfig() Config {
	return Config{
		ID:                     "run-1",
		Symbol:                 "BTC/USDT",
		Exchange:               "binance",
		Timeframe:              market.H1,
		InitialCapital:         d("10000"),
		Leverage:               d("1"),
		MaxPositionSizePercent: d("100"),
		SlippagePercent:        d("0"),
		CommissionPercent:      d("0"),
	}
}

func run(t *testing.T, cfg Config, candles market.CandleList, signals market.SignalList) *Result {
	t.Helper()
	res, err := NewExecutor(cfg, nil).Run(context.Background(), candles, signals)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return res
}

func TestRunFailsFastOnBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.InitialCapital = d("0")

	_, err := NewExecutor(cfg, nil).Run(context.Background(), market.CandleList{candle(0, "1", "1", "1", "1")}, nil)
	if err == nil {
		t.Fatalf("expected error for non-positive capital")
	}
}

func TestRunFailsFastOnEmptyCandles(t *testing.T) {
	_, err := NewExecutor(testConfig(), nil).Run(context.Background(), nil, nil)
	if err == nil {
		t.Fatalf("expected error for empty candle series")
	}
}

func TestStopLossScenario(t *testing.T) {
	// One long signal, entry open=100, stop=95, next candle low=94.
	candles := market.CandleList{
		candle(1, "100", "101", "99", "100"),
		candle(2, "100", "100", "94", "96"),
		candle(3, "96", "97", "95.5", "96.5"),
	}
	signals := market.SignalList{longSignal(1, "0.9", "95")}

	res := run(t, testConfig(), candles, signals)

	if len(res.Trades) != 1 {
		t.Fatalf("trades: got %d want 1", len(res.Trades))
	}
	tr := res.Trades[0]
	if tr.ExitReason != sim.ExitStopLoss {
		t.Fatalf("exit reason: got %s want stop_loss", tr.ExitReason)
	}
	if !tr.ExitPrice.Equal(d("95")) {
		t.Fatalf("exit price: got %s want 95 (the stop level, not the candle low)", tr.ExitPrice)
	}
	if len(res.SignalsUsed) != 1 {
		t.Fatalf("signals used: got %d want 1", len(res.SignalsUsed))
	}
}

func TestEndOfBacktestScenario(t *testing.T) {
	// Same setup but the stop never trades: data ends with the
	// position open, forced close at the final candle's close.
	candles := market.CandleList{
		candle(1, "100", "101", "99", "100"),
		candle(2, "100", "100", "96", "97"),
	}
	signals := market.SignalList{longSignal(1, "0.9", "95")}

	res := run(t, testConfig(), candles, signals)

	if len(res.Trades) != 1 {
		t.Fatalf("trades: got %d want 1", len(res.Trades))
	}
	tr := res.Trades[0]
	if tr.ExitReason != sim.ExitEndOfBacktest {
		t.Fatalf("exit reason: got %s want end_of_backtest", tr.ExitReason)
	}
	if !tr.ExitPrice.Equal(d("97")) {
		t.Fatalf("exit price: got %s want 97", tr.ExitPrice)
	}
}

func TestLowConfidenceSignalIgnored(t *testing.T) {
	candles := market.CandleList{
		candle(1, "100", "101", "99", "100"),
		candle(2, "100", "101", "99", "100"),
	}
	signals := market.SignalList{longSignal(1, "0.80", "95")}

	res := run(t, testConfig(), candles, signals)

	if len(res.Trades) != 0 {
		t.Fatalf("trades: got %d want 0", len(res.Trades))
	}
	if len(res.SignalsUsed) != 0 {
		t.Fatalf("signals used: got %d want 0", len(res.SignalsUsed))
	}
	if !res.FinalEquity.Equal(d("10000")) {
		t.Fatalf("equity changed without trades: %s", res.FinalEquity)
	}
}

func TestSignalWithoutStopLossSkipped(t *testing.T) {
	candles := market.CandleList{
		candle(1, "100", "101", "99", "100"),
		candle(2, "100", "101", "99", "100"),
	}
	sig := longSignal(1, "0.95", "0") // anomaly: no stop
	res := run(t, testConfig(), candles, market.SignalList{sig})

	if len(res.Trades) != 0 {
		t.Fatalf("trades: got %d want 0", len(res.Trades))
	}
	if res.Status != StatusCompleted {
		t.Fatalf("anomalous signal must not abort the run")
	}
}

func TestNeutralSignalSkipped(t *testing.T) {
	sig := longSignal(1, "0.95", "95")
	sig.Direction = market.Neutral

	res := run(t, testConfig(), market.CandleList{
		candle(1, "100", "101", "99", "100"),
	}, market.SignalList{sig})

	if len(res.Trades) != 0 {
		t.Fatalf("trades: got %d want 0", len(res.Trades))
	}
}

func TestNoSignalsBoundary(t *testing.T) {
	candles := market.CandleList{
		candle(1, "100", "101", "99", "100"),
		candle(2, "100", "102", "98", "101"),
		candle(3, "101", "103", "100", "102"),
	}
	res := run(t, testConfig(), candles, nil)

	if len(res.Trades) != 0 {
		t.Fatalf("trades: got %d want 0", len(res.Trades))
	}
	if len(res.EquityCurve) != len(candles) {
		t.Fatalf("equity points: got %d want %d", len(res.EquityCurve), len(candles))
	}
	for _, p := range res.EquityCurve {
		if !p.Equity.Equal(d("10000")) {
			t.Fatalf("flat run must hold initial capital, got %s at %s", p.Equity, p.Time)
		}
		if p.OpenPositions != 0 {
			t.Fatalf("flat run has open positions at %s", p.Time)
		}
	}
	if res.Metrics.SharpeRatio.Defined {
		t.Fatalf("sharpe must be undefined with no trades")
	}
	if !res.Metrics.WinRate.IsZero() {
		t.Fatalf("win rate must be 0 with no trades, got %s", res.Metrics.WinRate)
	}
}

func TestSignalOutsideWindowNotMatched(t *testing.T) {
	// Signal at hour 1, next candles start at hour 4: more than one
	// timeframe away, so it never matches.
	candles := market.CandleList{
		candle(4, "100", "101", "99", "100"),
		candle(5, "100", "101", "99", "100"),
	}
	signals := market.SignalList{longSignal(1, "0.9", "95")}

	res := run(t, testConfig(), candles, signals)
	if len(res.Trades) != 0 {
		t.Fatalf("trades: got %d want 0", len(res.Trades))
	}
}

func TestShortPositionRoundTrip(t *testing.T) {
	sig := longSignal(1, "0.9", "105")
	sig.Direction = market.Short
	sig.TakeProfit = []decimal.Decimal{d("90")}

	candles := market.CandleList{
		candle(1, "100", "101", "99", "100"),
		candle(2, "100", "100", "89", "91"), // take-profit at 90 trades
	}

	res := run(t, testConfig(), candles, market.SignalList{sig})

	if len(res.Trades) != 1 {
		t.Fatalf("trades: got %d want 1", len(res.Trades))
	}
	tr := res.Trades[0]
	if tr.Side != market.Short {
		t.Fatalf("side: got %s", tr.Side)
	}
	if tr.ExitReason != sim.ExitTakeProfit || !tr.ExitPrice.Equal(d("90")) {
		t.Fatalf("got %s @ %s, want take_profit @ 90", tr.ExitReason, tr.ExitPrice)
	}
	if !tr.ProfitLoss.IsPositive() {
		t.Fatalf("short into a falling market should profit, got %s", tr.ProfitLoss)
	}
}

func TestSinglePositionInvariant(t *testing.T) {
	// Two high-confidence signals in a row: the second arrives while
	// a position is open and must not stack a second position.
	candles := market.CandleList{
		candle(1, "100", "101", "99", "100"),
		candle(2, "100", "101", "99", "100"),
		candle(3, "100", "101", "99", "100"),
	}
	signals := market.SignalList{
		longSignal(1, "0.9", "50"),
		longSignal(2, "0.9", "50"),
	}

	res := run(t, testConfig(), candles, signals)

	for _, p := range res.EquityCurve {
		if p.OpenPositions != 0 && p.OpenPositions != 1 {
			t.Fatalf("open positions %d at %s", p.OpenPositions, p.Time)
		}
	}
	if len(res.Trades) != 1 {
		t.Fatalf("trades: got %d want 1 (no stacking)", len(res.Trades))
	}
}

func TestTradesDoNotOverlap(t *testing.T) {
	candles := market.CandleList{
		candle(1, "100", "101", "99", "100"),
		candle(2, "100", "100", "94", "96"), // stop 95 trades
		candle(3, "96", "97", "95", "96"),
		candle(4, "96", "97", "95", "96"),
		candle(5, "96", "96", "90", "91"), // stop 92 trades
	}
	signals := market.SignalList{
		longSignal(1, "0.9", "95"),
		longSignal(4, "0.9", "92"),
	}

	res := run(t, testConfig(), candles, signals)

	if len(res.Trades) != 2 {
		t.Fatalf("trades: got %d want 2", len(res.Trades))
	}
	for i := 1; i < len(res.Trades); i++ {
		prev, next := res.Trades[i-1], res.Trades[i]
		if next.EntryTime.Before(prev.ExitTime) {
			t.Fatalf("trade %d overlaps previous: entry %s before exit %s", i, next.EntryTime, prev.ExitTime)
		}
	}
	for _, tr := range res.Trades {
		if tr.ExitTime.Before(tr.EntryTime) {
			t.Fatalf("trade %s exits before entry", tr.ID)
		}
	}
}

func TestEquityConservation(t *testing.T) {
	cfg := testConfig()
	cfg.SlippagePercent = d("0.1")
	cfg.CommissionPercent = d("0.05")
	cfg.MaxPositionSizePercent = d("50")
	cfg.Leverage = d("2")

	candles := market.CandleList{
		candle(1, "100", "101", "99", "100"),
		candle(2, "100", "100", "94", "96"),
		candle(3, "96", "97", "95", "96"),
		candle(4, "96", "98", "95.5", "97"),
		candle(5, "97", "99", "96", "98"),
	}
	signals := market.SignalList{
		longSignal(1, "0.9", "95"),
		longSignal(4, "0.9", "90"),
	}

	res := run(t, cfg, candles, signals)

	sum := cfg.InitialCapital
	for _, tr := range res.Trades {
		sum = sum.Add(tr.ProfitLoss)
	}
	last := res.EquityCurve[len(res.EquityCurve)-1].Equity
	if !last.Equal(sum) {
		t.Fatalf("equity conservation violated: curve %s vs initial+pnl %s", last, sum)
	}
	if !res.FinalEquity.Equal(sum) {
		t.Fatalf("final equity %s vs initial+pnl %s", res.FinalEquity, sum)
	}
}

func TestDrawdownTracksRunningPeak(t *testing.T) {
	cfg := testConfig()

	candles := market.CandleList{
		candle(1, "100", "101", "99", "100"),
		candle(2, "100", "112", "100", "110"), // up: new peak
		candle(3, "110", "110", "100", "101"), // down: drawdown vs peak
	}
	signals := market.SignalList{longSignal(1, "0.9", "50")}

	res := run(t, cfg, candles, signals)

	if len(res.EquityCurve) != 3 {
		t.Fatalf("equity points: got %d", len(res.EquityCurve))
	}
	if !res.EquityCurve[1].Drawdown.IsZero() {
		t.Fatalf("at the peak drawdown must be 0, got %s", res.EquityCurve[1].Drawdown)
	}
	if !res.EquityCurve[2].Drawdown.IsPositive() {
		t.Fatalf("after the peak drawdown must be positive, got %s", res.EquityCurve[2].Drawdown)
	}
}

func TestDeterminism(t *testing.T) {
	cfg := testConfig()
	cfg.SlippagePercent = d("0.25")
	cfg.CommissionPercent = d("0.1")

	candles := market.CandleList{
		candle(1, "41235.77", "41500", "41100", "41400.02"),
		candle(2, "41400.02", "41800", "41000", "41150.5"),
		candle(3, "41150.5", "41300", "40500", "40700"),
	}
	signals := market.SignalList{longSignal(1, "0.92", "40600", "41700")}

	a := run(t, cfg, candles, signals)
	b := run(t, cfg, candles, signals)

	// Timing fields are the only permitted difference.
	a.StartedAt, b.StartedAt = time.Time{}, time.Time{}
	a.CompletedAt, b.CompletedAt = time.Time{}, time.Time{}
	a.DurationMS, b.DurationMS = 0, 0

	if len(a.Trades) != len(b.Trades) {
		t.Fatalf("trade counts differ")
	}
	for i := range a.Trades {
		if a.Trades[i].ProfitLoss.String() != b.Trades[i].ProfitLoss.String() ||
			a.Trades[i].ExitPrice.String() != b.Trades[i].ExitPrice.String() ||
			a.Trades[i].ID != b.Trades[i].ID {
			t.Fatalf("trade %d differs: %+v vs %+v", i, a.Trades[i], b.Trades[i])
		}
	}
	for i := range a.EquityCurve {
		if a.EquityCurve[i].Equity.String() != b.EquityCurve[i].Equity.String() {
			t.Fatalf("equity point %d differs", i)
		}
	}
	if a.Metrics.NetProfit.String() != b.Metrics.NetProfit.String() {
		t.Fatalf("metrics differ")
	}
}

func TestEntryCommissionReducesEquity(t *testing.T) {
	cfg := testConfig()
	cfg.CommissionPercent = d("0.1")

	candles := market.CandleList{
		candle(1, "100", "100", "100", "100"), // flat candle, no price move
	}
	signals := market.SignalList{longSignal(1, "0.9", "50")}

	res := run(t, cfg, candles, signals)

	// amount = 10000/100 = 100; commission = 100 * 100 * 0.001 = 10.
	// Force-closed at 100 with zero exit commission.
	if len(res.Trades) != 1 {
		t.Fatalf("trades: got %d", len(res.Trades))
	}
	if !res.Trades[0].ProfitLoss.Equal(d("-10")) {
		t.Fatalf("pnl: got %s want -10 (the entry commission)", res.Trades[0].ProfitLoss)
	}
	if !res.FinalEquity.Equal(d("9990")) {
		t.Fatalf("final equity: got %s want 9990", res.FinalEquity)
	}
}

func TestCancellationBetweenCandles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExecutor(testConfig(), nil).Run(ctx, market.CandleList{
		candle(1, "100", "101", "99", "100"),
	}, nil)
	if err == nil {
		t.Fatalf("expected context error for cancelled run")
	}
}
