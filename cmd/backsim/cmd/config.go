package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalforge/backtester/config"
)

var configCmd = &cobra.Command{
	Use:   "config init [path]",
	Short: "Write a starter config file",
	Long: `Write a config file populated with defaults to path
(backtest.yaml if omitted). Edit the data section to point at your
candle and signal files before running.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if args[0] != "init" {
		return fmt.Errorf("unknown config subcommand %q", args[0])
	}
	path := "backtest.yaml"
	if len(args) > 1 {
		path = args[1]
	}

	if err := config.Default().SaveToFile(path); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
