package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/signalforge/backtester/backtest"
	"github.com/signalforge/backtester/config"
	"github.com/signalforge/backtester/dataset"
	"github.com/signalforge/backtester/internal/id"
	"github.com/signalforge/backtester/journal"
	"github.com/signalforge/backtester/market"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest from a config file",
	Long: `Run a backtest described by a YAML or JSON config file.

The config names the candle and signal files, the simulated account
parameters, and where results are journaled. The rendered run report
is printed when the backtest completes.

Example:
  backsim run --config backtest.yaml`,
	Args: cobra.NoArgs,
	RunE: runBacktest,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "backtest.yaml", "path to run config file")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return err
	}

	log, err := cfg.Logging.BuildLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Data.CandlesFile == "" {
		return fmt.Errorf("data.candles_file required")
	}

	candles, err := dataset.LoadCandles(cfg.Data.CandlesFile)
	if err != nil {
		return fmt.Errorf("load candles: %w", err)
	}

	var signals market.SignalList
	if cfg.Data.SignalsFile != "" {
		signals, err = dataset.LoadSignals(cfg.Data.SignalsFile)
		if err != nil {
			return fmt.Errorf("load signals: %w", err)
		}
	}

	btCfg := cfg.Backtest.BacktestConfig()
	runID := btCfg.ID
	if runID == "" {
		runID = id.NewRunID()
		btCfg.ID = runID
	}
	log.Info("starting backtest",
		zap.String("run", runID),
		zap.Int("candles", len(candles)),
		zap.Int("signals", len(signals)))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exec := backtest.NewExecutor(btCfg, log)
	result, err := exec.Run(ctx, candles, signals)
	if err != nil {
		return err
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return err
	}
	if j != nil {
		if err := journal.Record(j, runID, result); err != nil {
			j.Close()
			return err
		}
		if err := j.Close(); err != nil {
			return err
		}
	}

	run, trades, _, err := journal.FromResult(runID, result)
	if err != nil {
		return err
	}
	report, err := journal.RunReport(run, trades)
	if err != nil {
		return err
	}
	fmt.Println(report)
	return nil
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	case "csv":
		return journal.NewCSV(jc.TradesFile, jc.EquityFile)
	default:
		return nil, nil
	}
}
