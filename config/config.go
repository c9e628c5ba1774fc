package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/signalforge/backtester/backtest"
	"github.com/signalforge/backtester/market"
)

// Config is the complete run configuration: the backtest parameters
// plus where data comes from and where results go.
type Config struct {
	Backtest BacktestSection `json:"backtest" yaml:"backtest"`
	Data     DataConfig      `json:"data" yaml:"data"`
	Journal  JournalConfig   `json:"journal" yaml:"journal"`
	Logging  LogConfig       `json:"logging" yaml:"logging"`
}

// BacktestSection is the file representation of backtest.Config.
// Prices and percentages are plain numbers here and converted to
// decimals when the run config is built.
type BacktestSection struct {
	ID        string `json:"id" yaml:"id" envconfig:"BACKSIM_RUN_ID"`
	Symbol    string `json:"symbol" yaml:"symbol" envconfig:"BACKSIM_SYMBOL"`
	Exchange  string `json:"exchange" yaml:"exchange" envconfig:"BACKSIM_EXCHANGE"`
	Timeframe string `json:"timeframe" yaml:"timeframe" envconfig:"BACKSIM_TIMEFRAME"`

	InitialCapital         float64 `json:"initial_capital" yaml:"initial_capital" envconfig:"BACKSIM_INITIAL_CAPITAL"`
	Leverage               float64 `json:"leverage" yaml:"leverage" envconfig:"BACKSIM_LEVERAGE"`
	MaxPositionSizePercent float64 `json:"max_position_size_percent" yaml:"max_position_size_percent" envconfig:"BACKSIM_MAX_POSITION_SIZE_PCT"`
	SlippagePercent        float64 `json:"slippage_percent" yaml:"slippage_percent" envconfig:"BACKSIM_SLIPPAGE_PCT"`
	CommissionPercent      float64 `json:"commission_percent" yaml:"commission_percent" envconfig:"BACKSIM_COMMISSION_PCT"`
}

// BacktestConfig converts the file section into the executor's
// decimal-typed configuration.
func (s BacktestSection) BacktestConfig() backtest.Config {
	return backtest.Config{
		ID:                     s.ID,
		Symbol:                 s.Symbol,
		Exchange:               s.Exchange,
		Timeframe:              market.Timeframe(s.Timeframe),
		InitialCapital:         decimal.NewFromFloat(s.InitialCapital),
		Leverage:               decimal.NewFromFloat(s.Leverage),
		MaxPositionSizePercent: decimal.NewFromFloat(s.MaxPositionSizePercent),
		SlippagePercent:        decimal.NewFromFloat(s.SlippagePercent),
		CommissionPercent:      decimal.NewFromFloat(s.CommissionPercent),
	}
}

// DataConfig names the input files for a run.
type DataConfig struct {
	CandlesFile string `json:"candles_file" yaml:"candles_file" envconfig:"BACKSIM_CANDLES_FILE"`
	SignalsFile string `json:"signals_file" yaml:"signals_file" envconfig:"BACKSIM_SIGNALS_FILE"`
}

// JournalConfig controls result persistence.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type" envconfig:"BACKSIM_JOURNAL_TYPE"` // "sqlite", "csv" or "none"
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty" envconfig:"BACKSIM_JOURNAL_DB"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty" envconfig:"BACKSIM_JOURNAL_TRADES"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty" envconfig:"BACKSIM_JOURNAL_EQUITY"`
}

// LogConfig controls the zap logger built for the run.
type LogConfig struct {
	Level       string `json:"level" yaml:"level" envconfig:"BACKSIM_LOG_LEVEL"` // debug, info, warn, error
	Development bool   `json:"development" yaml:"development" envconfig:"BACKSIM_LOG_DEV"`
}

// LoadFromFile loads configuration from a YAML or JSON file, applies
// environment overrides and validates the result. A .env file next to
// the process is honored when present.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	// .env is optional; real environment variables win either way.
	_ = godotenv.Load()
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration as YAML (.yaml/.yml) or
// indented JSON (anything else).
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks everything that should fail before a run starts.
func (c *Config) Validate() error {
	if err := c.Backtest.BacktestConfig().Validate(); err != nil {
		return err
	}
	switch c.Journal.Type {
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for sqlite type")
		}
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for csv type")
		}
	case "none", "":
	default:
		return fmt.Errorf("journal.type must be 'sqlite', 'csv' or 'none'")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Backtest: BacktestSection{
			Symbol:                 "BTC/USDT",
			Exchange:               "binance",
			Timeframe:              string(market.H1),
			InitialCapital:         10000,
			Leverage:               1,
			MaxPositionSizePercent: 10,
			SlippagePercent:        0.05,
			CommissionPercent:      0.1,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./backtests.sqlite",
		},
		Logging: LogConfig{
			Level: "info",
		},
	}
}
