package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCSVJournalHeaders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath)
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	tradesData, err := os.ReadFile(tradesPath)
	assert.NoError(t, err)
	equityData, err := os.ReadFile(equityPath)
	assert.NoError(t, err)

	tradesHeader, err := csv.NewReader(strings.NewReader(string(tradesData))).Read()
	assert.NoError(t, err)
	equityHeader, err := csv.NewReader(strings.NewReader(string(equityData))).Read()
	assert.NoError(t, err)

	wantTrades := []string{"run_id", "trade_id", "symbol", "side", "entry_price", "exit_price", "amount", "fee", "profit_loss", "profit_loss_percent", "entry_time", "exit_time", "exit_reason"}
	assert.Equal(t, wantTrades, tradesHeader)

	wantEquity := []string{"run_id", "time", "equity", "drawdown", "open_positions"}
	assert.Equal(t, wantEquity, equityHeader)
}

func TestCSVJournalRecordTrade(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j, err := NewCSV(filepath.Join(dir, "trades.csv"), filepath.Join(dir, "equity.csv"))
	assert.NoError(t, err)

	entry := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	exit := time.Date(2024, 1, 2, 4, 5, 6, 0, time.UTC)

	err = j.RecordTrade(TradeRecord{
		RunID:             "run-1",
		TradeID:           "run-1-1",
		Symbol:            "BTC/USDT",
		Side:              "short",
		EntryPrice:        d("99.9"),
		ExitPrice:         d("90"),
		Amount:            d("1.5"),
		Fee:               d("0.28485"),
		ProfitLoss:        d("14.56515"),
		ProfitLossPercent: d("9.72"),
		EntryTime:         entry,
		ExitTime:          exit,
		ExitReason:        "take_profit",
	})
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	data, err := os.ReadFile(filepath.Join(dir, "trades.csv"))
	assert.NoError(t, err)

	reader := csv.NewReader(strings.NewReader(string(data)))
	_, err = reader.Read() // header
	assert.NoError(t, err)
	row, err := reader.Read()
	assert.NoError(t, err)

	want := []string{
		"run-1",
		"run-1-1",
		"BTC/USDT",
		"short",
		"99.9",
		"90",
		"1.5",
		"0.28485",
		"14.56515",
		"9.72",
		entry.Format(time.RFC3339),
		exit.Format(time.RFC3339),
		"take_profit",
	}
	assert.Equal(t, want, row)
}

func TestCSVJournalRecordEquity(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j, err := NewCSV(filepath.Join(dir, "trades.csv"), filepath.Join(dir, "equity.csv"))
	assert.NoError(t, err)

	ts := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

	err = j.RecordEquity(EquitySnapshot{
		RunID:         "run-1",
		Time:          ts,
		Equity:        d("9999.9"),
		Drawdown:      d("0.1"),
		OpenPositions: 1,
	})
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	data, err := os.ReadFile(filepath.Join(dir, "equity.csv"))
	assert.NoError(t, err)

	reader := csv.NewReader(strings.NewReader(string(data)))
	_, err = reader.Read() // header
	assert.NoError(t, err)
	row, err := reader.Read()
	assert.NoError(t, err)

	want := []string{
		"run-1",
		ts.Format(time.RFC3339),
		"9999.9",
		"0.1",
		"1",
	}
	assert.Equal(t, want, row)
}
