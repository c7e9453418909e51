// Package config loads and validates backtest run configuration from YAML
// or JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"backsim/strategies"
)

// Config is the complete configuration of one backtest run.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Risk     RiskConfig     `json:"risk" yaml:"risk"`
	Costs    CostsConfig    `json:"costs" yaml:"costs"`
	Engine   EngineConfig   `json:"engine" yaml:"engine"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

// AccountConfig is the simulated account's starting state.
type AccountConfig struct {
	Currency string  `json:"currency" yaml:"currency"`
	Balance  float64 `json:"balance" yaml:"balance"`
}

// StrategyConfig selects the strategy and the instrument it trades.
type StrategyConfig struct {
	Name       string `json:"name" yaml:"name"`
	Instrument string `json:"instrument" yaml:"instrument"`
}

// RiskConfig sets the base risk fraction and the daily limits.
type RiskConfig struct {
	BasePct         float64 `json:"base_pct" yaml:"base_pct"`
	MaxOpenTrades   int     `json:"max_open_trades" yaml:"max_open_trades"`
	MaxDailyTrades  int     `json:"max_daily_trades" yaml:"max_daily_trades"`
	MaxDailyLossPct float64 `json:"max_daily_loss_pct" yaml:"max_daily_loss_pct"`
}

// CostsConfig is the execution cost model in price units.
type CostsConfig struct {
	Spread           float64 `json:"spread" yaml:"spread"`
	Slippage         float64 `json:"slippage" yaml:"slippage"`
	CommissionPerLot float64 `json:"commission_per_lot" yaml:"commission_per_lot"`
	MinLots          float64 `json:"min_lots" yaml:"min_lots"`
}

// EngineConfig carries the capability toggles. Pointers distinguish
// "absent" (defaulted to on) from an explicit false.
type EngineConfig struct {
	ATRPeriod    int   `json:"atr_period" yaml:"atr_period"`
	Costs        *bool `json:"costs" yaml:"costs"`
	AdaptiveRisk *bool `json:"adaptive_risk" yaml:"adaptive_risk"`
	Trailing     *bool `json:"trailing" yaml:"trailing"`
	TakeFirst    bool  `json:"take_first" yaml:"take_first"`
}

// JournalConfig selects the persistence backend.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "sqlite", "csv", or "none"
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
}

// CostsEnabled resolves the toggle, defaulting to on.
func (e EngineConfig) CostsEnabled() bool { return e.Costs == nil || *e.Costs }

// AdaptiveRiskEnabled resolves the toggle, defaulting to on.
func (e EngineConfig) AdaptiveRiskEnabled() bool { return e.AdaptiveRisk == nil || *e.AdaptiveRisk }

// TrailingEnabled resolves the toggle, defaulting to on.
func (e EngineConfig) TrailingEnabled() bool { return e.Trailing == nil || *e.Trailing }

// LoadFromFile reads a config, trying YAML first and falling back to JSON,
// then validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the config, as YAML for .yaml/.yml paths and JSON
// otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

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

// Validate checks the configuration for internally consistent values.
func (c *Config) Validate() error {
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	if _, err := strategies.ByName(c.Strategy.Name); err != nil {
		return err
	}
	if c.Strategy.Instrument == "" {
		return fmt.Errorf("strategy.instrument is required")
	}
	if c.Risk.BasePct <= 0 || c.Risk.BasePct > 1 {
		return fmt.Errorf("risk.base_pct must be in (0, 1]")
	}
	if c.Risk.MaxDailyLossPct < 0 || c.Risk.MaxDailyLossPct > 1 {
		return fmt.Errorf("risk.max_daily_loss_pct must be in [0, 1]")
	}
	if c.Costs.Spread < 0 || c.Costs.Slippage < 0 || c.Costs.CommissionPerLot < 0 {
		return fmt.Errorf("costs must be non-negative")
	}
	switch c.Journal.Type {
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for sqlite")
		}
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal.trades_file and journal.equity_file required for csv")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'sqlite', 'csv', or 'none'")
	}
	return nil
}

// Default returns the XAUUSD H1 baseline configuration.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Currency: "USD",
			Balance:  10000,
		},
		Strategy: StrategyConfig{
			Name:       "trend",
			Instrument: "XAUUSD",
		},
		Risk: RiskConfig{
			BasePct:         0.01,
			MaxOpenTrades:   1,
			MaxDailyTrades:  3,
			MaxDailyLossPct: 0.03,
		},
		Costs: CostsConfig{
			Spread:           0.30,
			Slippage:         0.10,
			CommissionPerLot: 7.0,
			MinLots:          0.01,
		},
		Engine: EngineConfig{
			ATRPeriod: 14,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./backsim.db",
		},
	}
}
