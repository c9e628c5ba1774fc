package journal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/signalforge/backtester/perf"
)

type reportData struct {
	Run     RunRecord
	Metrics perf.Metrics
	Trades  []TradeRecord
}

// RunReport renders a run summary as an org-mode block. The metrics
// come from the run's serialized JSON, so a report can be rebuilt from
// the journal alone.
func RunReport(run RunRecord, trades []TradeRecord) (string, error) {
	var metrics perf.Metrics
	if len(run.Metrics) > 0 {
		if err := json.Unmarshal(run.Metrics, &metrics); err != nil {
			return "", fmt.Errorf("decode stored metrics: %w", err)
		}
	}

	t, err := template.New("report").Parse(runOrgTemplate)
	if err != nil {
		return "", err
	}

	buf := new(bytes.Buffer)
	if err := t.Execute(buf, reportData{Run: run, Metrics: metrics, Trades: trades}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const runOrgTemplate = `* BACKTEST: {{.Run.Symbol}} {{.Run.Timeframe}}
:PROPERTIES:
:RUN_ID:      {{.Run.RunID}}
:SYMBOL:      {{.Run.Symbol}}
:EXCHANGE:    {{if .Run.Exchange}}{{.Run.Exchange}}{{else}}(exchange?){{end}}
:TIMEFRAME:   {{.Run.Timeframe}}
:STATUS:      {{.Run.Status}}
:START_CAP:   {{.Run.InitialCapital}}
:FINAL_EQ:    {{.Run.FinalEquity}}
:TRADES:      {{.Run.Trades}}
:SIGNALS:     {{.Run.SignalsUsed}}
:STARTED:     {{.Run.StartedAt.Format "2006-01-02 15:04:05"}}
:DURATION_MS: {{.Run.DurationMS}}
:END:

** Performance Summary
- Net Profit:       *{{.Metrics.NetProfit}}*
- Return:           *{{.Metrics.TotalReturnPercent}}%*
- Max Drawdown:     *{{.Metrics.MaxDrawdown}} ({{.Metrics.MaxDrawdownPercent}}%)*
- Win Rate:         *{{.Metrics.WinRate}}%*
- Profit Factor:    *{{.Metrics.ProfitFactor}}*
- Payoff Ratio:     *{{.Metrics.PayoffRatio}}*
- Expectancy:       *{{.Metrics.Expectancy}}*
- Sharpe:           *{{.Metrics.SharpeRatio}}*
- Sortino:          *{{.Metrics.SortinoRatio}}*
- Calmar:           *{{.Metrics.CalmarRatio}}*

** Trade Distribution
| Outcome    | Count |
|------------+-------|
| Wins       | {{.Metrics.WinningTrades}} |
| Losses     | {{.Metrics.LosingTrades}} |
| Break-even | {{.Metrics.BreakEvenTrades}} |
| Total      | {{.Metrics.TotalTrades}} |

{{- if .Trades}}

** Trades
| ID | Side | Entry | Exit | P/L | Reason |
|----+------+-------+------+-----+--------|
{{- range .Trades}}
| {{.TradeID}} | {{.Side}} | {{.EntryPrice}} | {{.ExitPrice}} | {{.ProfitLoss}} | {{.ExitReason}} |
{{- end}}
{{- end}}
`
