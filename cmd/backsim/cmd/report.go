package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalforge/backtester/journal"
)

var reportCmd = &cobra.Command{
	Use:   "report <run-id>",
	Short: "Rebuild a run report from the journal",
	Long: `Rebuild and print the report of a journaled backtest run.

Examples:
  backsim report 01J8ZQ4X5T2M3N4P5Q6R7S8T9V
  backsim report my-run --db ./backtests.sqlite`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List journaled backtest runs",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var reportDBPath string

func init() {
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(runsCmd)

	reportCmd.Flags().StringVarP(&reportDBPath, "db", "d", "./backtests.sqlite", "path to SQLite journal DB")
	runsCmd.Flags().StringVarP(&reportDBPath, "db", "d", "./backtests.sqlite", "path to SQLite journal DB")
}

func runReport(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(reportDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	runID := args[0]
	run, err := j.GetRun(runID)
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	trades, err := j.ListTradesByRun(runID)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	report, err := journal.RunReport(run, trades)
	if err != nil {
		return err
	}
	fmt.Println(report)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(reportDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	runs, err := j.ListRuns()
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("no runs journaled")
		return nil
	}

	for _, r := range runs {
		fmt.Printf("%-28s %-12s %-6s trades=%-4d final=%s (%s)\n",
			r.RunID, r.Symbol, r.Timeframe, r.Trades, r.FinalEquity,
			r.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
