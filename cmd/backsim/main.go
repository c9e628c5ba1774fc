package main

import (
	"os"

	"github.com/signalforge/backtester/cmd/backsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
