// Command marketsim runs one transfer window of the market simulation.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/openclubsim/transfermarket/internal/ai"
	"github.com/openclubsim/transfermarket/internal/api"
	"github.com/openclubsim/transfermarket/internal/calendar"
	"github.com/openclubsim/transfermarket/internal/config"
	"github.com/openclubsim/transfermarket/internal/football"
	"github.com/openclubsim/transfermarket/internal/persistence"
	"github.com/openclubsim/transfermarket/internal/transfer"
	"github.com/openclubsim/transfermarket/internal/valuation"
)

// clubSeeds define the generated league: name, country, tier, budget in
// millions. Tier drives squad ability.
var clubSeeds = []struct {
	Name    string
	Country string
	Tier    int
	Budget  float64
}{
	{"Thames United", "England", 1, 150},
	{"Real Castellana", "Spain", 1, 120},
	{"Nord Stern", "Germany", 2, 60},
	{"Calcio Aurora", "Italy", 2, 45},
	{"Olympique Rivage", "France", 3, 18},
	{"Porto Velho FC", "Portugal", 3, 8},
}

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	seedFlag := flag.Int64("seed", 0, "override world seed")
	servePort := flag.Int("serve", 0, "serve the observation API on this port after the run")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *seedFlag != 0 {
		cfg.Seed = *seedFlag
	}

	slog.Info("transfer market simulation", "seed", cfg.Seed, "season", cfg.SeasonYear)

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755)
	db, err := persistence.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DatabasePath)

	// ── World (deterministic from seed) ───────────────────────────────
	today := time.Date(cfg.SeasonYear, time.July, 15, 12, 0, 0, 0, time.UTC)
	gen := football.NewGenerator(cfg.Seed, today)

	var clubs []*football.Club
	for _, cs := range clubSeeds {
		club := gen.Club(cs.Name, cs.Country, cs.Tier, cs.Budget)
		clubs = append(clubs, club)
		slog.Info("club ready",
			"name", club.Name,
			"squad", len(club.Squad),
			"budget", football.FormatMoney(club.TransferBudget))
	}
	freeAgents := gen.FreeAgents(12, 68)
	dir := football.NewDirectory(clubs, freeAgents)

	// ── Market ────────────────────────────────────────────────────────
	cal := calendar.New(func() time.Time { return today }, calendar.SeasonWindows(cfg.SeasonYear)...)
	valuer := valuation.NewEngine(cfg.ValuationParams(), cal.Today)
	market := transfer.NewMarket(dir, db, cal, valuer, cfg.MarketParams())

	// ── Window business: every club plans and executes ────────────────
	totalTx := 0
	for i, club := range clubs {
		manager := ai.NewManager(club, market, cfg.Seed+int64(i))
		plan, err := manager.PlanTransferWindow()
		if err != nil {
			slog.Error("planning failed", "club", club.Name, "error", err)
			os.Exit(1)
		}
		txs, err := manager.ExecuteTransferPlan(plan)
		if err != nil {
			slog.Error("window business failed", "club", club.Name, "error", err)
			os.Exit(1)
		}
		totalTx += len(txs)
		for _, tx := range txs {
			slog.Info("transaction",
				"club", club.Name,
				"kind", tx.Kind,
				"player", tx.Player,
				"position", tx.Position,
				"amount", football.FormatMoney(tx.Amount))
		}
	}

	// ── Deadline day ──────────────────────────────────────────────────
	// The calendar closes over today, so this moves the simulation clock.
	today = time.Date(cfg.SeasonYear, time.August, 31, 12, 0, 0, 0, time.UTC)
	deals, err := market.SimulateDeadlineDay()
	if err != nil {
		slog.Error("deadline day failed", "error", err)
		os.Exit(1)
	}
	for _, deal := range deals {
		slog.Info("deadline deal",
			"player", deal.PlayerName,
			"from", deal.FromClub,
			"to", deal.ToClub,
			"fee", football.FormatMoney(deal.Fee))
	}

	// ── Wrap up ───────────────────────────────────────────────────────
	stats, err := market.Stats()
	if err != nil {
		slog.Error("stats failed", "error", err)
		os.Exit(1)
	}
	withdrawn, delisted, err := market.CloseWindow()
	if err != nil {
		slog.Error("window close failed", "error", err)
		os.Exit(1)
	}
	if err := db.SaveMeta("season", fmt.Sprintf("%d", cfg.SeasonYear)); err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Printf("\nWindow closed: %d transfers completed, %s spent.\n",
		stats.CompletedTransfers, football.FormatMoney(stats.TotalSpending))
	if stats.Biggest != nil {
		fmt.Printf("Biggest deal: %s to %s for %s.\n",
			stats.Biggest.PlayerName, stats.Biggest.ToClub, football.FormatMoney(stats.Biggest.Fee))
	}
	fmt.Printf("%d AI transactions, %d negotiations withdrawn, %d players delisted.\n",
		totalTx, withdrawn, delisted)

	if *servePort > 0 {
		srv := &api.Server{Market: market, Cal: cal, Port: *servePort}
		srv.Start()
		select {}
	}
}
