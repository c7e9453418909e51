package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"backsim/backtest"
	"backsim/config"
	"backsim/journal"
	"backsim/market"
	"backsim/risk"
	"backsim/sim"
	"backsim/strategies"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a strategy over a CSV bar dataset",
	Long: `Backtest replays an H1 bar dataset through a strategy and reports the
trade statistics.

Supported strategies: ` + fmt.Sprint(strategies.Names()) + `

Example:
  backsim backtest --data data/xau_h1_2024.csv --strategy momentum`,
	RunE: runBacktest,
}

var (
	btDataPath   string
	btConfigPath string
	btStrategy   string
	btInstrument string
	btBalance    float64
	btRiskPct    float64
	btNoCosts    bool
	btNoAdaptive bool
	btNoTrailing bool
	btTakeFirst  bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btDataPath, "data", "d", "", "path to bar CSV (required)")
	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "c", "", "path to YAML/JSON run config")
	backtestCmd.Flags().StringVarP(&btStrategy, "strategy", "s", "", "strategy name override")
	backtestCmd.Flags().StringVarP(&btInstrument, "instrument", "i", "", "instrument symbol override")
	backtestCmd.Flags().Float64VarP(&btBalance, "balance", "b", 0, "starting balance override")
	backtestCmd.Flags().Float64Var(&btRiskPct, "risk", 0, "base risk fraction override (0.01 = 1%)")
	backtestCmd.Flags().BoolVar(&btNoCosts, "no-costs", false, "disable the execution cost model")
	backtestCmd.Flags().BoolVar(&btNoAdaptive, "no-adaptive", false, "disable drawdown-adaptive risk")
	backtestCmd.Flags().BoolVar(&btNoTrailing, "no-trailing", false, "disable breakeven and trailing stops")
	backtestCmd.Flags().BoolVar(&btTakeFirst, "take-first", false, "resolve same-bar SL+TP optimistically")

	backtestCmd.MarkFlagRequired("data")
}

func loadRunConfig() (*config.Config, error) {
	cfg := config.Default()
	if btConfigPath != "" {
		var err error
		cfg, err = config.LoadFromFile(btConfigPath)
		if err != nil {
			return nil, err
		}
	}

	if btStrategy != "" {
		cfg.Strategy.Name = btStrategy
	}
	if btInstrument != "" {
		cfg.Strategy.Instrument = btInstrument
	}
	if btBalance > 0 {
		cfg.Account.Balance = btBalance
	}
	if btRiskPct > 0 {
		cfg.Risk.BasePct = btRiskPct
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}

	series, err := market.LoadCSV(btDataPath, cfg.Strategy.Instrument)
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}

	strat, err := strategies.ByName(cfg.Strategy.Name)
	if err != nil {
		return err
	}

	engine := backtest.NewEngine(backtest.Config{
		Symbol:         cfg.Strategy.Instrument,
		InitialBalance: cfg.Account.Balance,
		BaseRiskPct:    cfg.Risk.BasePct,
		ATRPeriod:      cfg.Engine.ATRPeriod,
		Costs: sim.CostModel{
			Spread:           cfg.Costs.Spread,
			Slippage:         cfg.Costs.Slippage,
			CommissionPerLot: cfg.Costs.CommissionPerLot,
			MinLots:          cfg.Costs.MinLots,
		},
		Monitor: risk.MonitorConfig{
			MaxOpenTrades:   cfg.Risk.MaxOpenTrades,
			MaxDailyTrades:  cfg.Risk.MaxDailyTrades,
			MaxDailyLossPct: cfg.Risk.MaxDailyLossPct,
		},
		EnableCosts:        cfg.Engine.CostsEnabled() && !btNoCosts,
		EnableAdaptiveRisk: cfg.Engine.AdaptiveRiskEnabled() && !btNoAdaptive,
		EnableTrailing:     cfg.Engine.TrailingEnabled() && !btNoTrailing,
		TakeFirst:          cfg.Engine.TakeFirst || btTakeFirst,
	})

	fmt.Printf("Running %s over %s (%d bars)\n\n", cfg.Strategy.Name, btDataPath, len(series.Bars))

	res, err := engine.Run(series, strat)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	backtest.PrintResult(os.Stdout, res)

	return saveToJournal(cfg, res)
}

func saveToJournal(cfg *config.Config, res *backtest.Result) error {
	var (
		j   journal.Journal
		err error
	)

	switch cfg.Journal.Type {
	case "sqlite":
		j, err = journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		j, err = journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	if err := journal.SaveResult(j, res, btDataPath, cfg.Risk.BasePct); err != nil {
		return err
	}
	fmt.Printf("Journaled run %s\n", res.RunID)
	return nil
}
