package transfer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openclubsim/transfermarket/internal/football"
	"github.com/openclubsim/transfermarket/internal/valuation"
)

// deadlineWorld builds two buying clubs and a single free agent so exactly
// one of them can land the signing.
func deadlineWorld() (*Market, []*football.Club, *football.Player) {
	a := testClub("Athletic A", 30)
	b := testClub("Borough B", 30)
	free := testPlayer("Last Minute", football.CM, 73, 27)
	free.Contract = nil

	cal := &fixedCalendar{
		today: time.Date(2025, time.August, 31, 12, 0, 0, 0, time.UTC),
		open:  true,
		start: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
	}
	valuer := valuation.NewEngine(valuation.DefaultParams(), cal.Today)
	dir := football.NewDirectory([]*football.Club{a, b}, []*football.Player{free})
	market := NewMarket(dir, NewMemoryStore(), cal, valuer, DefaultParams())
	return market, []*football.Club{a, b}, free
}

func TestDeadlineDayOutsideWindow(t *testing.T) {
	w := newTestWorld()
	w.cal.open = false

	deals, err := w.market.SimulateDeadlineDay()
	if err != nil {
		t.Fatalf("deadline day: %v", err)
	}
	if deals != nil {
		t.Fatalf("closed window should produce no deals, got %d", len(deals))
	}
}

func TestDeadlineDaySignsFreeAgentOnce(t *testing.T) {
	market, clubs, free := deadlineWorld()

	deals, err := market.SimulateDeadlineDay()
	if err != nil {
		t.Fatalf("deadline day: %v", err)
	}
	if len(deals) != 1 {
		t.Fatalf("deals got=%d want=1", len(deals))
	}
	if deals[0].PlayerName != free.Name {
		t.Fatalf("deal for %s, want %s", deals[0].PlayerName, free.Name)
	}
	if free.ClubID == nil {
		t.Fatalf("free agent was not signed")
	}
	// the player joined exactly one club
	joined := 0
	for _, c := range clubs {
		for _, p := range c.Squad {
			if p.ID == free.ID {
				joined++
			}
		}
	}
	if joined != 1 {
		t.Fatalf("player appears in %d squads", joined)
	}
}

func TestDeadlineDayRerunIsIdempotent(t *testing.T) {
	market, _, free := deadlineWorld()

	deals, err := market.SimulateDeadlineDay()
	if err != nil {
		t.Fatalf("deadline day: %v", err)
	}
	if len(deals) != 1 || free.ClubID == nil {
		t.Fatalf("first run should sign the free agent")
	}
	again, err := market.SimulateDeadlineDay()
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("second run made %d deals, the market was already settled", len(again))
	}
}

func TestDeadlineDayBuysListedPlayer(t *testing.T) {
	w := newTestWorld()
	w.cal.today = time.Date(2025, time.August, 31, 12, 0, 0, 0, time.UTC)

	asking := football.Millions(40)
	if _, err := w.market.ListPlayer(w.target, w.seller, asking, asking.Mul(decimal.NewFromFloat(0.8)), TypePermanent); err != nil {
		t.Fatalf("list: %v", err)
	}

	deals, err := w.market.SimulateDeadlineDay()
	if err != nil {
		t.Fatalf("deadline day: %v", err)
	}
	bought := false
	for _, d := range deals {
		if d.PlayerName == w.target.Name {
			bought = true
			if !d.Fee.Equal(asking) {
				t.Fatalf("listed player bought for %s, asking was %s", d.Fee, asking)
			}
		}
	}
	if !bought {
		t.Fatalf("listed player was not bought on deadline day")
	}
	if w.target.ClubID == nil || *w.target.ClubID != w.buyer.ID {
		t.Fatalf("listed player did not end up at the buying club")
	}
}
