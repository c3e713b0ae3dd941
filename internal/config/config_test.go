package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Seed != 1 || cfg.SeasonYear != 2025 {
		t.Fatalf("unexpected defaults: seed=%d year=%d", cfg.Seed, cfg.SeasonYear)
	}
	if cfg.Market.MaxFeeRounds != 10 || cfg.Market.MaxContractRounds != 5 {
		t.Fatalf("market defaults: %+v", cfg.Market)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"season year", func(c *Config) { c.SeasonYear = 1500 }},
		{"inflation", func(c *Config) { c.Valuation.MarketInflation = 0 }},
		{"activity", func(c *Config) { c.Valuation.ActivityModifier = -1 }},
		{"fee rounds", func(c *Config) { c.Market.MaxFeeRounds = 0 }},
		{"contract rounds", func(c *Config) { c.Market.MaxContractRounds = 0 }},
		{"markup", func(c *Config) { c.Market.ListingMarkup = 0.5 }},
		{"min fraction", func(c *Config) { c.Market.ListingMinFraction = 1.5 }},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: bad value passed validation", tc.name)
		}
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "market.yaml")
	body := `seed: 42
season_year: 2030
valuation:
  market_inflation: 1.2
market:
  max_fee_rounds: 3
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed != 42 || cfg.SeasonYear != 2030 {
		t.Fatalf("overrides not applied: seed=%d year=%d", cfg.Seed, cfg.SeasonYear)
	}
	if cfg.Valuation.MarketInflation != 1.2 {
		t.Fatalf("inflation got=%v", cfg.Valuation.MarketInflation)
	}
	if cfg.Market.MaxFeeRounds != 3 {
		t.Fatalf("fee rounds got=%d", cfg.Market.MaxFeeRounds)
	}
	// untouched keys keep their defaults
	if cfg.Market.MaxContractRounds != 5 || cfg.DatabasePath != "data/market.db" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("missing file should error")
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("market:\n  max_fee_rounds: 0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("invalid config should fail validation")
	}
}

func TestParamMappers(t *testing.T) {
	cfg := Default()
	cfg.Valuation.MarketInflation = 1.5
	cfg.Market.ListingMarkup = 1.4

	vp := cfg.ValuationParams()
	if vp.MarketInflation != 1.5 {
		t.Fatalf("valuation params inflation got=%v", vp.MarketInflation)
	}
	mp := cfg.MarketParams()
	if mp.ListingMarkup != 1.4 || mp.MaxFeeRounds != cfg.Market.MaxFeeRounds {
		t.Fatalf("market params: %+v", mp)
	}
}
