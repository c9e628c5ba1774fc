package perf

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Default risk model: 2% annual risk-free rate, crypto-style 365
// trading periods per year.
const (
	DefaultRiskFreeRate  = 0.02
	DefaultAnnualization = 365
)

var hundred = decimal.NewFromInt(100)

// ratioPlaces bounds ratio precision so formatting is reproducible.
const ratioPlaces = 8

// Calculator aggregates a trade list and an equity curve into a
// Metrics report. It is a pure function of its inputs: calling
// Calculate twice with the same arguments yields identical metrics.
type Calculator struct {
	RiskFreeRate  float64 // annual, e.g. 0.02
	Annualization float64 // periods per year for Sharpe/Sortino scaling
}

// NewCalculator returns a Calculator with the default risk model.
func NewCalculator() *Calculator {
	return &Calculator{
		RiskFreeRate:  DefaultRiskFreeRate,
		Annualization: DefaultAnnualization,
	}
}

// Calculate produces the full metrics table for one run.
// Every arithmetic edge case resolves to an explicit sentinel
// (undefined ratio, infinite ratio, zero duration); it never panics
// and never divides by zero.
func (c *Calculator) Calculate(initialCapital decimal.Decimal, trades []TradeSample, curve []EquitySample) Metrics {
	m := Metrics{
		ProfitFactor: UndefinedRatio(),
		PayoffRatio:  UndefinedRatio(),
		SharpeRatio:  UndefinedRatio(),
		SortinoRatio: UndefinedRatio(),
		CalmarRatio:  UndefinedRatio(),
	}

	var (
		winDur, lossDur, allDur time.Duration
	)

	for _, tr := range trades {
		m.TotalTrades++
		m.NetProfit = m.NetProfit.Add(tr.PnL)
		allDur += tr.ExitTime.Sub(tr.EntryTime)

		switch {
		case tr.PnL.IsPositive():
			m.WinningTrades++
			m.GrossProfit = m.GrossProfit.Add(tr.PnL)
			winDur += tr.ExitTime.Sub(tr.EntryTime)
			if tr.PnL.GreaterThan(m.LargestWin) {
				m.LargestWin = tr.PnL
			}
		case tr.PnL.IsNegative():
			m.LosingTrades++
			m.GrossLoss = m.GrossLoss.Add(tr.PnL.Abs())
			lossDur += tr.ExitTime.Sub(tr.EntryTime)
			if tr.PnL.Abs().GreaterThan(m.LargestLoss) {
				m.LargestLoss = tr.PnL.Abs()
			}
		default:
			m.BreakEvenTrades++
		}
	}

	if m.TotalTrades > 0 {
		n := decimal.NewFromInt(int64(m.TotalTrades))
		m.WinRate = decimal.NewFromInt(int64(m.WinningTrades)).Div(n).Mul(hundred)
		m.AveragePnL = m.NetProfit.Div(n)
		m.AvgTradeDuration = allDur / time.Duration(m.TotalTrades)
	}
	if m.WinningTrades > 0 {
		m.AverageWin = m.GrossProfit.Div(decimal.NewFromInt(int64(m.WinningTrades)))
		m.AvgWinDuration = winDur / time.Duration(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AverageLoss = m.GrossLoss.Div(decimal.NewFromInt(int64(m.LosingTrades)))
		m.AvgLossDuration = lossDur / time.Duration(m.LosingTrades)
	}

	m.ProfitFactor = c.profitFactor(m)
	m.PayoffRatio = c.payoffRatio(m)
	m.Expectancy = c.expectancy(m)

	m.MaxDrawdown, m.MaxDrawdownPercent = maxDrawdown(initialCapital, trades, curve)

	if initialCapital.IsPositive() {
		m.TotalReturnPercent = m.NetProfit.Div(initialCapital).Mul(hundred)
	}

	m.SharpeRatio = c.sharpe(trades)
	m.SortinoRatio = c.sortino(trades)
	m.CalmarRatio = c.calmar(m)

	return m
}

// profitFactor = gross profit / gross loss. Unbounded when gross loss
// is exactly zero but profit exists; undefined with no trades.
func (c *Calculator) profitFactor(m Metrics) Ratio {
	if m.TotalTrades == 0 {
		return UndefinedRatio()
	}
	if m.GrossLoss.IsZero() {
		if m.GrossProfit.IsPositive() {
			return InfiniteRatio()
		}
		return UndefinedRatio()
	}
	return DefinedRatio(m.GrossProfit.Div(m.GrossLoss).Round(ratioPlaces))
}

// payoffRatio = average win / average loss.
func (c *Calculator) payoffRatio(m Metrics) Ratio {
	if m.LosingTrades == 0 {
		if m.WinningTrades > 0 {
			return InfiniteRatio()
		}
		return UndefinedRatio()
	}
	if m.WinningTrades == 0 {
		return DefinedRatio(decimal.Zero)
	}
	return DefinedRatio(m.AverageWin.Div(m.AverageLoss).Round(ratioPlaces))
}

// expectancy = P(win)*avgWin - P(loss)*avgLoss, in account currency.
func (c *Calculator) expectancy(m Metrics) decimal.Decimal {
	if m.TotalTrades == 0 {
		return decimal.Zero
	}
	n := decimal.NewFromInt(int64(m.TotalTrades))
	pWin := decimal.NewFromInt(int64(m.WinningTrades)).Div(n)
	pLoss := decimal.NewFromInt(int64(m.LosingTrades)).Div(n)
	return pWin.Mul(m.AverageWin).Sub(pLoss.Mul(m.AverageLoss))
}

// sharpe = (mean(pnl) - daily risk-free) / stddev(pnl) * sqrt(annualization).
// Undefined below 2 trades or with zero variance: one trade or a flat
// series has no meaningful volatility denominator.
func (c *Calculator) sharpe(trades []TradeSample) Ratio {
	if len(trades) < 2 {
		return UndefinedRatio()
	}

	pnls := pnlFloats(trades)
	mean := meanOf(pnls)
	sd := stddevOf(pnls, mean)
	if sd == 0 {
		return UndefinedRatio()
	}

	dailyRF := c.RiskFreeRate / c.Annualization
	sharpe := (mean - dailyRF) / sd * math.Sqrt(c.Annualization)
	return DefinedRatio(decimal.NewFromFloat(sharpe).Round(ratioPlaces))
}

// sortino mirrors sharpe with downside deviation: only P&L below zero
// contributes to the denominator, but the divisor stays the full
// sample count.
func (c *Calculator) sortino(trades []TradeSample) Ratio {
	if len(trades) < 2 {
		return UndefinedRatio()
	}

	pnls := pnlFloats(trades)
	mean := meanOf(pnls)

	var downSq float64
	for _, p := range pnls {
		if p < 0 {
			downSq += p * p
		}
	}
	downside := math.Sqrt(downSq / float64(len(pnls)))
	if downside == 0 {
		return UndefinedRatio()
	}

	dailyRF := c.RiskFreeRate / c.Annualization
	sortino := (mean - dailyRF) / downside * math.Sqrt(c.Annualization)
	return DefinedRatio(decimal.NewFromFloat(sortino).Round(ratioPlaces))
}

// calmar = total return / max drawdown, undefined when drawdown is zero.
func (c *Calculator) calmar(m Metrics) Ratio {
	if m.MaxDrawdownPercent.IsZero() {
		return UndefinedRatio()
	}
	return DefinedRatio(m.TotalReturnPercent.Div(m.MaxDrawdownPercent).Round(ratioPlaces))
}

// maxDrawdown walks the equity curve once, tracking the running peak
// and the widest peak-to-trough gap. The percentage is relative to
// the peak in force at the deepest point, 0 when that peak is 0.
// With no curve it falls back to the cumulative P&L series seeded at
// the initial capital.
func maxDrawdown(initialCapital decimal.Decimal, trades []TradeSample, curve []EquitySample) (dd, ddPct decimal.Decimal) {
	series := make([]decimal.Decimal, 0, len(curve))
	if len(curve) > 0 {
		for _, p := range curve {
			series = append(series, p.Equity)
		}
	} else {
		equity := initialCapital
		for _, tr := range trades {
			equity = equity.Add(tr.PnL)
			series = append(series, equity)
		}
	}
	if len(series) == 0 {
		return decimal.Zero, decimal.Zero
	}

	peak := series[0]
	peakAtDeepest := peak
	for _, eq := range series {
		if eq.GreaterThan(peak) {
			peak = eq
		}
		gap := peak.Sub(eq)
		if gap.GreaterThan(dd) {
			dd = gap
			peakAtDeepest = peak
		}
	}

	if dd.IsPositive() && peakAtDeepest.IsPositive() {
		ddPct = dd.Div(peakAtDeepest).Mul(hundred)
	}
	return dd, ddPct
}

func pnlFloats(trades []TradeSample) []float64 {
	out := make([]float64, len(trades))
	for i, tr := range trades {
		out[i] = tr.PnL.InexactFloat64()
	}
	return out
}

func meanOf(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddevOf is the sample standard deviation (n-1 divisor); callers
// guarantee len(xs) >= 2.
func stddevOf(xs []float64, mean float64) float64 {
	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(xs)-1))
}
