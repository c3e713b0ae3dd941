package transfer

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/openclubsim/transfermarket/internal/football"
)

// searchWorld builds a pool with a spread of ages, abilities, and
// availability for filter tests.
func searchWorld() (*testWorld, map[string]*football.Player) {
	w := newTestWorld()
	pool := map[string]*football.Player{
		"young gk":   testPlayer("Young GK", football.GK, 68, 19),
		"prime st":   testPlayer("Prime ST", football.ST, 84, 26),
		"veteran cb": testPlayer("Veteran CB", football.CB, 76, 33),
		"squad cm":   testPlayer("Squad CM", football.CM, 71, 24),
		"spanish lw": testPlayer("Spanish LW", football.LW, 78, 23),
	}
	pool["spanish lw"].Nationality = "Spain"
	for _, p := range pool {
		w.seller.AddPlayer(p)
	}
	// rebuild the directory with the enlarged squad
	dir := football.NewDirectory([]*football.Club{w.seller, w.buyer}, []*football.Player{w.free})
	w.market = NewMarket(dir, w.store, w.cal, w.valuer, DefaultParams())
	return w, pool
}

func TestSearchPositionFilter(t *testing.T) {
	w, _ := searchWorld()

	cands, err := w.market.Search().Search(SearchCriteria{
		Positions: []football.Position{football.GK},
	}, w.buyer)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(cands) != 1 || cands[0].Player.Name != "Young GK" {
		t.Fatalf("position filter returned %d candidates", len(cands))
	}
}

func TestSearchAgeAndAbilityFilters(t *testing.T) {
	w, _ := searchWorld()

	cands, err := w.market.Search().Search(SearchCriteria{
		MinAge:     22,
		MaxAge:     28,
		MinOverall: 80,
	}, w.buyer)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for _, c := range cands {
		if c.Player.Name != "Prime ST" && c.Player.Name != "Marco Silva" {
			t.Fatalf("unexpected candidate %s", c.Player.Name)
		}
	}
	if len(cands) != 2 {
		t.Fatalf("candidate count got=%d want=2", len(cands))
	}
}

func TestSearchNationalityFilter(t *testing.T) {
	w, _ := searchWorld()

	cands, err := w.market.Search().Search(SearchCriteria{
		Nationalities: []string{"Spain"},
	}, w.buyer)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(cands) != 1 || cands[0].Player.Name != "Spanish LW" {
		t.Fatalf("nationality filter got %d candidates", len(cands))
	}
}

func TestSearchExcludesOwnPlayersByDefault(t *testing.T) {
	w, _ := searchWorld()

	cands, err := w.market.Search().Search(SearchCriteria{}, w.seller)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for _, c := range cands {
		if c.Player.ClubID != nil && *c.Player.ClubID == w.seller.ID {
			t.Fatalf("own player %s in results", c.Player.Name)
		}
	}
}

func TestSearchListedOnly(t *testing.T) {
	w, pool := searchWorld()
	if _, err := w.market.ListPlayer(pool["veteran cb"], w.seller, decimal.Zero, decimal.Zero, TypePermanent); err != nil {
		t.Fatalf("list: %v", err)
	}

	cands, err := w.market.Search().Search(SearchCriteria{ListedOnly: true}, w.buyer)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(cands) != 1 || cands[0].Player.Name != "Veteran CB" {
		t.Fatalf("listed-only got %d candidates", len(cands))
	}
	if cands[0].Status != AvailListed || cands[0].Listing == nil {
		t.Fatalf("listing context missing: %+v", cands[0])
	}
}

func TestSearchFreeAgentsOnly(t *testing.T) {
	w, _ := searchWorld()

	cands, err := w.market.Search().Search(SearchCriteria{FreeAgentsOnly: true}, w.buyer)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(cands) != 1 || cands[0].Player.Name != "Free Agent" {
		t.Fatalf("free-agents-only got %d candidates", len(cands))
	}
	if cands[0].Status != AvailFreeAgent {
		t.Fatalf("status got=%s want=%s", cands[0].Status, AvailFreeAgent)
	}
}

func TestSearchSortsByValueDescending(t *testing.T) {
	w, _ := searchWorld()

	cands, err := w.market.Search().Search(SearchCriteria{}, w.buyer)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(cands) < 3 {
		t.Fatalf("expected a full result set, got %d", len(cands))
	}
	for i := 1; i < len(cands); i++ {
		if cands[i].Value.GreaterThan(cands[i-1].Value) {
			t.Fatalf("results not sorted by value: %s above %s",
				cands[i].Player.Name, cands[i-1].Player.Name)
		}
	}
}

func TestSearchPagination(t *testing.T) {
	w, _ := searchWorld()
	s := w.market.Search()

	all, err := s.Search(SearchCriteria{}, w.buyer)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	page, err := s.Search(SearchCriteria{Limit: 2, Offset: 1}, w.buyer)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page size got=%d want=2", len(page))
	}
	if page[0].Player.ID != all[1].Player.ID {
		t.Fatalf("offset not applied")
	}

	empty, err := s.Search(SearchCriteria{Offset: 100}, w.buyer)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("past-the-end offset should be empty, got %d", len(empty))
	}
}

func TestSearchMaxValueFilter(t *testing.T) {
	w, _ := searchWorld()

	cap := football.Millions(20)
	cands, err := w.market.Search().Search(SearchCriteria{MaxValue: cap}, w.buyer)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for _, c := range cands {
		if c.Value.GreaterThan(cap) {
			t.Fatalf("%s valued %s above cap", c.Player.Name, c.Value)
		}
	}
}

func TestRecommendationsRespectBudget(t *testing.T) {
	w, _ := searchWorld()
	w.buyer.TransferBudget = football.Millions(30)

	recs, err := w.market.Search().Recommendations(w.buyer, football.ST, 3)
	if err != nil {
		t.Fatalf("recommendations: %v", err)
	}
	limit := w.buyer.TransferBudget.Mul(decimal.NewFromFloat(0.8))
	for _, r := range recs {
		if r.Value.GreaterThan(limit) {
			t.Fatalf("recommendation %s over budget: %s", r.Player.Name, r.Value)
		}
		if r.Player.RatingAt(football.ST) < 10 {
			t.Fatalf("recommendation %s cannot play the position", r.Player.Name)
		}
	}
}

func TestSimilarPlayersExcludesSelf(t *testing.T) {
	w, pool := searchWorld()
	subject := pool["prime st"]

	similar, err := w.market.Search().SimilarPlayers(subject, 5)
	if err != nil {
		t.Fatalf("similar players: %v", err)
	}
	for _, c := range similar {
		if c.Player.ID == subject.ID {
			t.Fatalf("subject returned as their own comparison")
		}
	}
}
