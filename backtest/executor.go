package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/signalforge/backtester/market"
	"github.com/signalforge/backtester/perf"
	"github.com/signalforge/backtester/sim"
)

var (
	hundred = decimal.NewFromInt(100)

	// minActionableConfidence is the fixed acceptance threshold: a
	// directional signal below it is skipped, never traded.
	minActionableConfidence = decimal.RequireFromString("0.85")
)

// Executor is the single stateful control loop of a run. It owns the
// position state machine, drives the order simulator per candle and
// hands the finished trade list to the performance calculator.
//
// An Executor carries per-run state: construct one per run and do not
// share it across goroutines. Independent runs with their own
// Executors are safe to run concurrently.
type Executor struct {
	cfg  Config
	sim  *sim.Simulator
	calc *perf.Calculator
	log  *zap.Logger

	realized decimal.Decimal // settled capital, commissions deducted
	pos      *Position
	trades   []Trade
	curve    []EquityPoint
	used     market.SignalList
	peak     decimal.Decimal
	runID    string
}

// NewExecutor builds an executor for one run. The simulator is a
// fresh value owned by this run, parameterized by the run's slippage
// and commission configuration. A nil logger disables logging.
func NewExecutor(cfg Config, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{
		cfg:  cfg,
		sim:  sim.New(cfg.SlippagePercent, cfg.CommissionPercent),
		calc: perf.NewCalculator(),
		log:  log,
	}
}

// Run replays the candle series against the signal series and returns
// the complete Result. Configuration problems fail before the first
// candle. Cancellation is checked between candle iterations, never
// mid-candle, so an aborted run has done no partial bookkeeping.
func (e *Executor) Run(ctx context.Context, candles market.CandleList, signals market.SignalList) (*Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("backtest: empty candle series")
	}
	if !e.cfg.Timeframe.Known() {
		e.log.Warn("unknown timeframe, using default duration",
			zap.String("timeframe", string(e.cfg.Timeframe)),
			zap.Duration("default", market.DefaultTimeframeDuration))
	}

	started := time.Now()

	e.runID = e.cfg.ID
	if e.runID == "" {
		e.runID = "backtest"
	}
	e.realized = e.cfg.InitialCapital
	e.pos = nil
	e.trades = nil
	e.curve = nil
	e.used = nil
	e.peak = decimal.Zero

	tfDur := e.cfg.Timeframe.Duration()

	si := 0
	var pending *market.SignalPrediction

	for i := range candles {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		c := candles[i]

		// 1) Exits come first: a stop or take-profit inside this
		// candle closes the position before anything else happens.
		if e.pos != nil {
			if ec := sim.CheckExitConditions(e.pos.Side, e.pos.StopLoss, e.pos.TakeProfit, c); ec.Reason != sim.ExitNone {
				e.closePosition(c, ec.Price, ec.Reason)
			}
		}

		// 2) Entries: the most recent signal whose timestamp falls in
		// (candle time - timeframe, candle time] is the candidate.
		for si < len(signals) && !signals[si].Time.After(c.Time) {
			pending = &signals[si]
			si++
		}
		if pending != nil && !pending.Time.After(c.Time.Add(-tfDur)) {
			pending = nil // aged out of the matching window
		}
		if e.pos == nil && pending != nil {
			if e.actionable(*pending) {
				if err := e.openPosition(*pending, c); err != nil {
					return nil, err
				}
			}
			// Consumed either way: a skipped signal is not retried on
			// later candles.
			pending = nil
		}

		// 3) Mark the open position to the candle close.
		if e.pos != nil {
			e.pos.UnrealizedPnL = sim.UnrealizedPnL(e.pos.Side, e.pos.EntryPrice, c.Close, e.pos.Amount)
		}

		// 4) One equity point per candle.
		e.appendEquity(c.Time)
	}

	// Anything still open is force-closed at the final close, with no
	// extra commission and no slippage. That keeps the last equity
	// point and the trade list consistent to the cent.
	if e.pos != nil {
		last := candles[len(candles)-1]
		e.closePosition(last, last.Close, sim.ExitEndOfBacktest)
	}

	tradeSamples := make([]perf.TradeSample, len(e.trades))
	for i, tr := range e.trades {
		tradeSamples[i] = perf.TradeSample{PnL: tr.ProfitLoss, EntryTime: tr.EntryTime, ExitTime: tr.ExitTime}
	}
	curveSamples := make([]perf.EquitySample, len(e.curve))
	for i, p := range e.curve {
		curveSamples[i] = perf.EquitySample{Time: p.Time, Equity: p.Equity}
	}
	metrics := e.calc.Calculate(e.cfg.InitialCapital, tradeSamples, curveSamples)

	completed := time.Now()

	e.log.Info("backtest complete",
		zap.String("run", e.runID),
		zap.String("symbol", e.cfg.Symbol),
		zap.Int("candles", len(candles)),
		zap.Int("trades", len(e.trades)),
		zap.String("final_equity", e.realized.String()),
	)

	return &Result{
		ConfigID:       e.cfg.ID,
		Symbol:         e.cfg.Symbol,
		Exchange:       e.cfg.Exchange,
		Timeframe:      e.cfg.Timeframe,
		Status:         StatusCompleted,
		InitialCapital: e.cfg.InitialCapital,
		FinalEquity:    e.realized,
		Metrics:        metrics,
		Trades:         e.trades,
		SignalsUsed:    e.used,
		EquityCurve:    e.curve,
		StartedAt:      started,
		CompletedAt:    completed,
		DurationMS:     completed.Sub(started).Milliseconds(),
	}, nil
}

// actionable filters data-quality anomalies locally: they are logged
// and skipped, never fatal to the run.
func (e *Executor) actionable(sig market.SignalPrediction) bool {
	switch {
	case !sig.Directional():
		e.log.Debug("signal skipped: neutral direction", zap.Time("signal", sig.Time))
		return false
	case sig.Confidence.LessThan(minActionableConfidence):
		e.log.Debug("signal skipped: below confidence threshold",
			zap.Time("signal", sig.Time),
			zap.String("confidence", sig.Confidence.String()))
		return false
	case !sig.StopLoss.IsPositive():
		e.log.Debug("signal skipped: missing stop loss", zap.Time("signal", sig.Time))
		return false
	}
	return true
}

func (e *Executor) openPosition(sig market.SignalPrediction, c market.Candle) error {
	if e.pos != nil {
		// Unreachable by construction; a second open position means
		// the state machine is broken, so fail the whole run.
		return fmt.Errorf("backtest: internal: position already open at %s", c.Time)
	}
	if !c.Open.IsPositive() {
		e.log.Warn("signal skipped: degenerate candle open", zap.Time("candle", c.Time))
		return nil
	}

	// equity * size% * leverage / open
	amount := e.realized.
		Mul(e.cfg.MaxPositionSizePercent).Div(hundred).
		Mul(e.cfg.Leverage).
		Div(c.Open)
	if !amount.IsPositive() {
		e.log.Warn("signal skipped: position size not positive", zap.Time("candle", c.Time))
		return nil
	}

	side := sim.Buy
	if sig.Direction == market.Short {
		side = sim.Sell
	}
	fill := e.sim.ExecuteMarketOrder(sim.Order{
		ID:         fmt.Sprintf("%s-%d", e.runID, len(e.trades)+1),
		Side:       side,
		Amount:     amount,
		StopLoss:   sig.StopLoss,
		TakeProfit: sig.TakeProfit,
		Time:       c.Time,
	}, c)

	e.pos = &Position{
		Side:            sig.Direction,
		EntryPrice:      fill.Price,
		Amount:          fill.Amount,
		StopLoss:        sig.StopLoss,
		TakeProfit:      sig.TakeProfit,
		EntryTime:       fill.Time,
		EntryCommission: fill.Commission,
	}
	e.realized = e.realized.Sub(fill.Commission)
	e.used = append(e.used, sig)

	e.log.Info("position opened",
		zap.String("side", string(sig.Direction)),
		zap.String("entry", fill.Price.String()),
		zap.String("amount", fill.Amount.String()),
		zap.Time("candle", c.Time),
	)
	return nil
}

// closePosition converts the open position into a Trade at exitPrice.
// Stop and take-profit fills are guaranteed at the trigger level, so
// the synthetic closing order is re-priced at that exact level; the
// end-of-data close charges no commission at all.
func (e *Executor) closePosition(c market.Candle, exitPrice decimal.Decimal, reason sim.ExitReason) {
	p := e.pos

	var exitCommission decimal.Decimal
	if reason != sim.ExitEndOfBacktest {
		closeSide := sim.Sell
		if p.Side == market.Short {
			closeSide = sim.Buy
		}
		fill := e.sim.ExecuteMarketOrder(sim.Order{
			ID:     fmt.Sprintf("%s-%d", e.runID, len(e.trades)+1),
			Side:   closeSide,
			Amount: p.Amount,
			Time:   c.Time,
		}, c)
		fill.Price = exitPrice
		fill.Commission = e.sim.Commission(exitPrice, p.Amount)
		exitCommission = fill.Commission
	}

	gross := sim.UnrealizedPnL(p.Side, p.EntryPrice, exitPrice, p.Amount)
	fee := p.EntryCommission.Add(exitCommission)
	pnl := gross.Sub(fee)

	var pnlPct decimal.Decimal
	if notional := p.EntryPrice.Mul(p.Amount); notional.IsPositive() {
		pnlPct = pnl.Div(notional).Mul(hundred)
	}

	e.trades = append(e.trades, Trade{
		ID:                fmt.Sprintf("%s-%d", e.runID, len(e.trades)+1),
		Symbol:            e.cfg.Symbol,
		Side:              p.Side,
		EntryPrice:        p.EntryPrice,
		ExitPrice:         exitPrice,
		Amount:            p.Amount,
		Fee:               fee,
		ProfitLoss:        pnl,
		ProfitLossPercent: pnlPct,
		EntryTime:         p.EntryTime,
		ExitTime:          c.Time,
		ExitReason:        reason,
	})

	// Entry commission already left the account when the position
	// opened; settle the gross move minus the exit commission.
	e.realized = e.realized.Add(gross).Sub(exitCommission)
	e.pos = nil

	e.log.Info("position closed",
		zap.String("reason", string(reason)),
		zap.String("exit", exitPrice.String()),
		zap.String("pnl", pnl.String()),
		zap.Time("candle", c.Time),
	)
}

func (e *Executor) appendEquity(t time.Time) {
	equity := e.realized
	open := 0
	if e.pos != nil {
		equity = equity.Add(e.pos.UnrealizedPnL)
		open = 1
	}
	if equity.GreaterThan(e.peak) {
		e.peak = equity
	}
	dd := e.peak.Sub(equity)
	if dd.IsNegative() {
		dd = decimal.Zero
	}
	e.curve = append(e.curve, EquityPoint{
		Time:          t,
		Equity:        equity,
		Drawdown:      dd,
		OpenPositions: open,
	})
}
