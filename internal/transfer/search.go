package transfer

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openclubsim/transfermarket/internal/football"
	"github.com/openclubsim/transfermarket/internal/valuation"
)

// Availability tells a searching club how reachable a player is.
type Availability string

const (
	AvailFreeAgent Availability = "free_agent"
	AvailListed    Availability = "transfer_listed"
	AvailExpiring  Availability = "expiring_contract"
	AvailNotListed Availability = "not_listed"
)

// SortKey orders search results.
type SortKey string

const (
	SortByValue         SortKey = "value"
	SortByAge           SortKey = "age"
	SortByOverall       SortKey = "overall"
	SortByPotential     SortKey = "potential"
	SortByValueForMoney SortKey = "value_for_money"
)

const defaultSearchLimit = 50

// SearchCriteria filters and orders the candidate pool. Zero values mean
// "no constraint". Own players are excluded unless IncludeOwnPlayers is set.
type SearchCriteria struct {
	Positions      []football.Position
	MinAge         int
	MaxAge         int
	MinOverall     int
	MaxOverall     int
	MinPotential   int
	MaxValue       decimal.Decimal
	MaxWage        decimal.Decimal
	ListedOnly     bool
	FreeAgentsOnly bool
	Nationalities  []string

	IncludeOwnPlayers bool
	SortBy            SortKey
	SortAscending     bool
	Limit             int
	Offset            int
}

// Candidate is one search hit with its market context attached.
type Candidate struct {
	Player       *football.Player
	Value        decimal.Decimal
	Status       Availability
	Listing      *Listing
	WageEstimate decimal.Decimal
}

// SearchEngine runs criteria over the player pool. Valuation runs last, on
// the survivors of the cheap filters.
type SearchEngine struct {
	dir    *football.Directory
	store  Store
	valuer *valuation.Engine
	clock  func() time.Time
}

func NewSearchEngine(dir *football.Directory, store Store, valuer *valuation.Engine, clock func() time.Time) *SearchEngine {
	return &SearchEngine{dir: dir, store: store, valuer: valuer, clock: clock}
}

// Search returns candidates matching the criteria, viewed from the
// searching club. A nil club searches the whole pool.
func (s *SearchEngine) Search(c SearchCriteria, searching *football.Club) ([]Candidate, error) {
	now := s.clock()
	var out []Candidate
	for _, p := range s.dir.Players() {
		if !s.matchesBasic(p, c, now) {
			continue
		}
		if !s.matchesAbility(p, c) {
			continue
		}
		if searching != nil && !c.IncludeOwnPlayers && p.ClubID != nil && *p.ClubID == searching.ID {
			continue
		}
		listing, err := s.store.ActiveListing(p.ID)
		if err != nil {
			return nil, err
		}
		if listing != nil && listing.ExpiredBy(now) {
			listing = nil
		}
		if c.ListedOnly && listing == nil {
			continue
		}
		if c.FreeAgentsOnly && !p.IsFreeAgent() {
			continue
		}
		value := s.valuer.Value(p)
		if c.MaxValue.IsPositive() && value.GreaterThan(c.MaxValue) {
			continue
		}
		wage := s.valuer.EstimateWageDemand(p, value)
		if c.MaxWage.IsPositive() && wage.GreaterThan(c.MaxWage) {
			continue
		}
		out = append(out, Candidate{
			Player:       p,
			Value:        value,
			Status:       s.availability(p, listing, now),
			Listing:      listing,
			WageEstimate: wage,
		})
	}

	s.sortCandidates(out, c, now)
	return paginate(out, c.Offset, c.Limit), nil
}

func (s *SearchEngine) matchesBasic(p *football.Player, c SearchCriteria, now time.Time) bool {
	if len(c.Positions) > 0 {
		ok := false
		for _, pos := range c.Positions {
			if p.RatingAt(pos) >= 10 {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	age := p.AgeOn(now)
	if c.MinAge > 0 && age < c.MinAge {
		return false
	}
	if c.MaxAge > 0 && age > c.MaxAge {
		return false
	}
	if len(c.Nationalities) > 0 {
		ok := false
		for _, nat := range c.Nationalities {
			if p.Nationality == nat {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func (s *SearchEngine) matchesAbility(p *football.Player, c SearchCriteria) bool {
	if c.MinOverall > 0 && p.Overall() < c.MinOverall {
		return false
	}
	if c.MaxOverall > 0 && p.Overall() > c.MaxOverall {
		return false
	}
	if c.MinPotential > 0 && p.Potential < c.MinPotential {
		return false
	}
	return true
}

func (s *SearchEngine) availability(p *football.Player, listing *Listing, now time.Time) Availability {
	switch {
	case p.IsFreeAgent():
		return AvailFreeAgent
	case listing != nil:
		return AvailListed
	case p.Contract != nil && p.Contract.Expiring(now):
		return AvailExpiring
	default:
		return AvailNotListed
	}
}

func (s *SearchEngine) sortCandidates(cands []Candidate, c SearchCriteria, now time.Time) {
	key := c.SortBy
	if key == "" {
		key = SortByValue
	}
	metric := func(cand Candidate) float64 { return football.InMillions(cand.Value) }
	switch key {
	case SortByAge:
		metric = func(cand Candidate) float64 { return float64(cand.Player.AgeOn(now)) }
	case SortByOverall:
		metric = func(cand Candidate) float64 { return float64(cand.Player.Overall()) }
	case SortByPotential:
		metric = func(cand Candidate) float64 { return float64(cand.Player.Potential) }
	case SortByValueForMoney:
		metric = valueForMoney
	}
	ascending := c.SortAscending
	if key == SortByAge {
		// youngest first is the useful default for age searches
		ascending = !ascending
	}
	sort.SliceStable(cands, func(i, j int) bool {
		mi, mj := metric(cands[i]), metric(cands[j])
		if mi != mj {
			if ascending {
				return mi < mj
			}
			return mi > mj
		}
		return cands[i].Player.ID.String() < cands[j].Player.ID.String()
	})
}

// valueForMoney is ability per million of market value.
func valueForMoney(c Candidate) float64 {
	m := football.InMillions(c.Value)
	if m < 0.1 {
		m = 0.1
	}
	return float64(c.Player.Overall()) / m
}

func paginate(cands []Candidate, offset, limit int) []Candidate {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if offset >= len(cands) {
		return nil
	}
	end := offset + limit
	if end > len(cands) {
		end = len(cands)
	}
	return cands[offset:end]
}

// Recommendations suggests signings for one position, scaled to the club's
// squad level and remaining budgets.
func (s *SearchEngine) Recommendations(club *football.Club, pos football.Position, max int) ([]Candidate, error) {
	if max <= 0 {
		max = 5
	}
	level := squadLevel(club)
	headroom := club.WageBudget.Sub(club.CommittedWages())

	c := SearchCriteria{
		Positions:  []football.Position{pos},
		MinOverall: maxInt(50, level-10),
		MaxOverall: minInt(99, level+15),
		MaxValue:   club.TransferBudget.Mul(decimal.NewFromFloat(0.8)),
		SortBy:     SortByValueForMoney,
		Limit:      max * 4,
	}
	if headroom.IsPositive() {
		c.MaxWage = headroom
	}
	cands, err := s.Search(c, club)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	score := func(cand Candidate) float64 {
		sc := float64(cand.Player.RatingAt(pos)) * 2
		sc += valueForMoney(cand) * 10
		switch age := cand.Player.AgeOn(now); {
		case age >= 21 && age <= 27:
			sc += 20
		case age < 21:
			sc += 15
		}
		switch cand.Status {
		case AvailListed:
			sc += 10
		case AvailFreeAgent:
			sc += 15
		}
		return sc
	}
	sort.SliceStable(cands, func(i, j int) bool {
		si, sj := score(cands[i]), score(cands[j])
		if si != sj {
			return si > sj
		}
		return cands[i].Player.ID.String() < cands[j].Player.ID.String()
	})
	if len(cands) > max {
		cands = cands[:max]
	}
	return cands, nil
}

// SimilarPlayers finds players resembling the given one by position, age
// and ability, ordered by a simple similarity score.
func (s *SearchEngine) SimilarPlayers(p *football.Player, max int) ([]Candidate, error) {
	if max <= 0 {
		max = 5
	}
	now := s.clock()
	age := p.AgeOn(now)
	c := SearchCriteria{
		Positions:         []football.Position{p.BestPosition()},
		MinAge:            maxInt(15, age-3),
		MaxAge:            age + 3,
		MinOverall:        maxInt(1, p.Overall()-5),
		MaxOverall:        minInt(99, p.Overall()+5),
		IncludeOwnPlayers: true,
		Limit:             max * 4,
	}
	cands, err := s.Search(c, nil)
	if err != nil {
		return nil, err
	}

	similarity := func(cand Candidate) float64 {
		other := cand.Player
		sc := 100.0
		sc -= float64(absInt(other.AgeOn(now)-age)) * 2
		sc -= float64(absInt(other.Overall() - p.Overall()))
		if other.BestPosition() == p.BestPosition() {
			sc += 20
		}
		if other.Nationality == p.Nationality {
			sc += 5
		}
		if sc < 0 {
			sc = 0
		}
		return sc
	}
	var out []Candidate
	for _, cand := range cands {
		if cand.Player.ID == p.ID {
			continue
		}
		out = append(out, cand)
	}
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := similarity(out[i]), similarity(out[j])
		if si != sj {
			return si > sj
		}
		return out[i].Player.ID.String() < out[j].Player.ID.String()
	})
	if len(out) > max {
		out = out[:max]
	}
	return out, nil
}

// squadLevel is the mean overall of the squad, with a sensible default for
// an empty one.
func squadLevel(club *football.Club) int {
	if len(club.Squad) == 0 {
		return 70
	}
	total := 0
	for _, p := range club.Squad {
		total += p.Overall()
	}
	return total / len(club.Squad)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
