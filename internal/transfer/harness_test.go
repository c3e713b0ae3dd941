package transfer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openclubsim/transfermarket/internal/football"
	"github.com/openclubsim/transfermarket/internal/valuation"
)

var testNow = time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC)

// fixedCalendar pins the clock and window state for tests.
type fixedCalendar struct {
	today time.Time
	open  bool
	start time.Time
}

func (c *fixedCalendar) Today() time.Time            { return c.today }
func (c *fixedCalendar) IsWindowOpen(time.Time) bool { return c.open }
func (c *fixedCalendar) WindowStart(time.Time) (time.Time, bool) {
	return c.start, c.open
}

func testPlayer(name string, pos football.Position, overall, age int) *football.Player {
	return &football.Player{
		ID:          uuid.New(),
		Name:        name,
		Nationality: "Argentina",
		BirthDate:   testNow.AddDate(-age, -3, 0),
		Positions:   []football.Position{pos},
		Ratings:     map[football.Position]int{pos: overall},
		Potential:   overall + 2,
		Fitness:     75,
		Contract: &football.Contract{
			WeeklyWage: decimal.NewFromInt(45_000),
			Ends:       testNow.AddDate(3, 0, 0),
		},
	}
}

func testClub(name string, budgetMillions float64) *football.Club {
	return &football.Club{
		ID:             uuid.New(),
		Name:           name,
		Country:        "England",
		TransferBudget: football.Millions(budgetMillions),
		WageBudget:     football.Millions(3),
	}
}

// testWorld is the standard fixture: two clubs with one key player each and
// one free agent, trading on an in-memory store inside an open window.
type testWorld struct {
	market *Market
	store  *MemoryStore
	cal    *fixedCalendar
	valuer *valuation.Engine

	seller *football.Club
	buyer  *football.Club
	target *football.Player
	free   *football.Player
}

func newTestWorld() *testWorld {
	seller := testClub("Seller FC", 40)
	buyer := testClub("Buyer FC", 200)
	target := testPlayer("Marco Silva", football.ST, 80, 25)
	seller.AddPlayer(target)
	buyer.AddPlayer(testPlayer("Home Striker", football.ST, 74, 27))
	free := testPlayer("Free Agent", football.CM, 72, 29)
	free.Contract = nil

	cal := &fixedCalendar{
		today: testNow,
		open:  true,
		start: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
	}
	valuer := valuation.NewEngine(valuation.DefaultParams(), cal.Today)
	store := NewMemoryStore()
	dir := football.NewDirectory([]*football.Club{seller, buyer}, []*football.Player{free})
	market := NewMarket(dir, store, cal, valuer, DefaultParams())

	return &testWorld{
		market: market,
		store:  store,
		cal:    cal,
		valuer: valuer,
		seller: seller,
		buyer:  buyer,
		target: target,
		free:   free,
	}
}
