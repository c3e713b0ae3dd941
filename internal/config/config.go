// Package config loads simulation settings from YAML with sane defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openclubsim/transfermarket/internal/transfer"
	"github.com/openclubsim/transfermarket/internal/valuation"
)

// Config is the full runtime configuration.
type Config struct {
	Seed         int64  `yaml:"seed"`
	SeasonYear   int    `yaml:"season_year"`
	DatabasePath string `yaml:"database_path"`

	Valuation ValuationConfig `yaml:"valuation"`
	Market    MarketConfig    `yaml:"market"`
}

// ValuationConfig exposes the market-level valuation knobs. The per-factor
// calibration stays in code.
type ValuationConfig struct {
	MarketInflation  float64 `yaml:"market_inflation"`
	ActivityModifier float64 `yaml:"activity_modifier"`
}

// MarketConfig tunes negotiation and deadline-day behaviour.
type MarketConfig struct {
	MaxFeeRounds              int     `yaml:"max_fee_rounds"`
	MaxContractRounds         int     `yaml:"max_contract_rounds"`
	ListingMarkup             float64 `yaml:"listing_markup"`
	ListingMinFraction        float64 `yaml:"listing_min_fraction"`
	DeadlineMinBudgetMillions float64 `yaml:"deadline_min_budget_millions"`
	MaxDeadlineSignings       int     `yaml:"max_deadline_signings"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	mp := transfer.DefaultParams()
	return Config{
		Seed:         1,
		SeasonYear:   2025,
		DatabasePath: "data/market.db",
		Valuation: ValuationConfig{
			MarketInflation:  1.0,
			ActivityModifier: 1.0,
		},
		Market: MarketConfig{
			MaxFeeRounds:              mp.MaxFeeRounds,
			MaxContractRounds:         mp.MaxContractRounds,
			ListingMarkup:             mp.ListingMarkup,
			ListingMinFraction:        mp.ListingMinFraction,
			DeadlineMinBudgetMillions: mp.DeadlineMinBudgetMillions,
			MaxDeadlineSignings:       mp.MaxDeadlineSignings,
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	if c.SeasonYear < 1900 || c.SeasonYear > 2200 {
		return fmt.Errorf("config: season_year %d out of range", c.SeasonYear)
	}
	if c.Valuation.MarketInflation <= 0 {
		return fmt.Errorf("config: market_inflation must be positive")
	}
	if c.Valuation.ActivityModifier <= 0 {
		return fmt.Errorf("config: activity_modifier must be positive")
	}
	if c.Market.MaxFeeRounds < 1 {
		return fmt.Errorf("config: max_fee_rounds must be at least 1")
	}
	if c.Market.MaxContractRounds < 1 {
		return fmt.Errorf("config: max_contract_rounds must be at least 1")
	}
	if c.Market.ListingMarkup < 1 {
		return fmt.Errorf("config: listing_markup must be at least 1")
	}
	if c.Market.ListingMinFraction <= 0 || c.Market.ListingMinFraction > 1 {
		return fmt.Errorf("config: listing_min_fraction must be in (0, 1]")
	}
	return nil
}

// ValuationParams maps the config onto the valuation engine's parameters.
func (c Config) ValuationParams() valuation.Params {
	p := valuation.DefaultParams()
	p.MarketInflation = c.Valuation.MarketInflation
	p.ActivityModifier = c.Valuation.ActivityModifier
	return p
}

// MarketParams maps the config onto the market's parameters.
func (c Config) MarketParams() transfer.Params {
	return transfer.Params{
		MaxFeeRounds:              c.Market.MaxFeeRounds,
		MaxContractRounds:         c.Market.MaxContractRounds,
		ListingMarkup:             c.Market.ListingMarkup,
		ListingMinFraction:        c.Market.ListingMinFraction,
		DeadlineMinBudgetMillions: c.Market.DeadlineMinBudgetMillions,
		MaxDeadlineSignings:       c.Market.MaxDeadlineSignings,
	}
}
