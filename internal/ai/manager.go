// Package ai drives autonomous club behaviour on the transfer market:
// squad analysis, target identification, bid responses, and executing a
// window's worth of business.
package ai

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openclubsim/transfermarket/internal/football"
	"github.com/openclubsim/transfermarket/internal/transfer"
)

// Philosophy is the recruitment style a club follows.
type Philosophy string

const (
	PhilosophyYouth      Philosophy = "youth_development"
	PhilosophyStars      Philosophy = "stars"
	PhilosophyMoneyball  Philosophy = "moneyball"
	PhilosophyDomestic   Philosophy = "domestic_focus"
	PhilosophyLoans      Philosophy = "loan_army"
	PhilosophyFreeAgents Philosophy = "free_agents"
)

// SquadRole is a player's standing within the squad.
type SquadRole string

const (
	RoleStarter  SquadRole = "starter"
	RoleRotation SquadRole = "rotation"
	RoleBackup   SquadRole = "backup"
	RoleProspect SquadRole = "prospect"
	RoleSurplus  SquadRole = "surplus"
)

// positionRequirements is the minimum squad cover per position.
var positionRequirements = map[football.Position]int{
	football.GK:  3,
	football.CB:  4,
	football.LB:  2,
	football.RB:  2,
	football.CDM: 2,
	football.CM:  4,
	football.CAM: 2,
	football.LW:  2,
	football.RW:  2,
	football.ST:  3,
}

// SquadNeed is one gap the manager wants to fill.
type SquadNeed struct {
	Position   football.Position
	Priority   int // 1 lowest, 10 most urgent
	Role       SquadRole
	MaxAge     int
	MinAbility int
}

// SquadAnalysis is the manager's view of the squad.
type SquadAnalysis struct {
	TotalPlayers   int
	AverageAge     float64
	AverageAbility float64
	ByPosition     map[football.Position][]*football.Player
	AgeProfile     map[string]int
	ExpiringDeals  int
}

// SalePlan marks a player the club will list.
type SalePlan struct {
	Player      *football.Player
	Reason      string
	AskingPrice decimal.Decimal
}

// Target is a scored transfer candidate matched to a need.
type Target struct {
	Candidate transfer.Candidate
	Need      SquadNeed
	Score     float64
}

// Plan is the manager's intentions for a window.
type Plan struct {
	Philosophy Philosophy
	Budget     decimal.Decimal
	Analysis   SquadAnalysis
	Needs      []SquadNeed
	Targets    []Target
	Sales      []SalePlan
}

// Transaction records one action the manager took while executing a plan.
type Transaction struct {
	Kind     string // "listed" or "signed"
	Player   string
	Position string
	Amount   decimal.Decimal
}

// Manager runs one club's transfer business. The rng seeds any future
// stochastic policies; current decisions are deterministic so identical
// worlds produce identical windows.
type Manager struct {
	club   *football.Club
	market *transfer.Market
	rng    *rand.Rand
}

func NewManager(club *football.Club, market *transfer.Market, seed int64) *Manager {
	return &Manager{
		club:   club,
		market: market,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// DeterminePhilosophy derives the recruitment style from spending power.
func (m *Manager) DeterminePhilosophy() Philosophy {
	budget := football.InMillions(m.club.TransferBudget)
	switch {
	case budget > 100:
		return PhilosophyStars
	case budget > 50:
		return PhilosophyMoneyball
	case budget > 20:
		return PhilosophyYouth
	default:
		return PhilosophyFreeAgents
	}
}

// AnalyzeSquad profiles the squad: size, age buckets, ability, position
// cover, and contracts running down.
func (m *Manager) AnalyzeSquad() SquadAnalysis {
	today := m.today()
	a := SquadAnalysis{
		ByPosition: make(map[football.Position][]*football.Player),
		AgeProfile: map[string]int{"u21": 0, "21-25": 0, "26-30": 0, "over30": 0},
	}
	a.TotalPlayers = len(m.club.Squad)
	if a.TotalPlayers == 0 {
		return a
	}
	ageSum, abilitySum := 0, 0
	for _, p := range m.club.Squad {
		age := p.AgeOn(today)
		ageSum += age
		abilitySum += p.Overall()
		switch {
		case age < 21:
			a.AgeProfile["u21"]++
		case age <= 25:
			a.AgeProfile["21-25"]++
		case age <= 30:
			a.AgeProfile["26-30"]++
		default:
			a.AgeProfile["over30"]++
		}
		pos := p.BestPosition()
		a.ByPosition[pos] = append(a.ByPosition[pos], p)
		if p.Contract != nil && p.Contract.Expiring(today) {
			a.ExpiringDeals++
		}
	}
	a.AverageAge = float64(ageSum) / float64(a.TotalPlayers)
	a.AverageAbility = float64(abilitySum) / float64(a.TotalPlayers)
	return a
}

// IdentifyNeeds finds the positions short of cover or quality, most urgent
// first.
func (m *Manager) IdentifyNeeds(a SquadAnalysis) []SquadNeed {
	var needs []SquadNeed
	for pos, min := range positionRequirements {
		players := a.ByPosition[pos]
		switch {
		case len(players) == 0:
			needs = append(needs, SquadNeed{Position: pos, Priority: 10, Role: RoleStarter})
		case len(players) < min:
			needs = append(needs, SquadNeed{Position: pos, Priority: 8, Role: RoleRotation})
		case len(players) == min && !hasQuality(players, 70):
			needs = append(needs, SquadNeed{Position: pos, Priority: 5, Role: RoleRotation, MinAbility: 70})
		}
	}
	sort.SliceStable(needs, func(i, j int) bool {
		if needs[i].Priority != needs[j].Priority {
			return needs[i].Priority > needs[j].Priority
		}
		return needs[i].Position < needs[j].Position
	})
	return needs
}

func hasQuality(players []*football.Player, threshold int) bool {
	for _, p := range players {
		if p.Overall() >= threshold {
			return true
		}
	}
	return false
}

// IdentifySurplus picks the players the club should move on: excess bodies
// in overstocked positions and ageing high earners.
func (m *Manager) IdentifySurplus(a SquadAnalysis) []SalePlan {
	today := m.today()
	valuer := m.market.Valuer()
	var sales []SalePlan

	for _, pos := range sortedPositions(a.ByPosition) {
		players := a.ByPosition[pos]
		if len(players) <= 4 {
			continue
		}
		ranked := append([]*football.Player(nil), players...)
		sort.SliceStable(ranked, func(i, j int) bool {
			if ranked[i].Overall() != ranked[j].Overall() {
				return ranked[i].Overall() < ranked[j].Overall()
			}
			return ranked[i].ID.String() < ranked[j].ID.String()
		})
		for _, p := range ranked[:len(players)-4] {
			sales = append(sales, SalePlan{
				Player:      p,
				Reason:      "Surplus to requirements",
				AskingPrice: valuer.Value(p),
			})
		}
	}

	highWage := decimal.NewFromInt(100_000)
	for _, p := range m.club.Squad {
		if p.AgeOn(today) > 32 && p.Contract != nil && p.Contract.WeeklyWage.GreaterThan(highWage) {
			if !inSales(sales, p) {
				sales = append(sales, SalePlan{
					Player:      p,
					Reason:      "High wages for age",
					AskingPrice: valuer.Value(p),
				})
			}
		}
	}
	return sales
}

func inSales(sales []SalePlan, p *football.Player) bool {
	for _, s := range sales {
		if s.Player.ID == p.ID {
			return true
		}
	}
	return false
}

func sortedPositions(byPos map[football.Position][]*football.Player) []football.Position {
	out := make([]football.Position, 0, len(byPos))
	for pos := range byPos {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PlanBudget works out spendable money: the current budget plus expected
// sale income, less a reserve held back for emergencies.
func (m *Manager) PlanBudget(sales []SalePlan) decimal.Decimal {
	budget := m.club.TransferBudget
	for _, s := range sales {
		budget = budget.Add(s.AskingPrice.Mul(decimal.NewFromFloat(0.8)))
	}
	return budget.Mul(decimal.NewFromFloat(0.8)).Round(2)
}

// IdentifyTargets searches the market for the top needs, shaped by the
// club's philosophy, and scores every candidate.
func (m *Manager) IdentifyTargets(philosophy Philosophy, needs []SquadNeed, budget decimal.Decimal) ([]Target, error) {
	today := m.today()
	if len(needs) > 5 {
		needs = needs[:5]
	}
	var targets []Target
	for _, need := range needs {
		criteria := transfer.SearchCriteria{
			Positions: []football.Position{need.Position},
			MaxValue:  budget.Mul(decimal.NewFromFloat(0.4)),
			SortBy:    transfer.SortByValueForMoney,
			Limit:     5,
		}
		if need.MinAbility > 0 {
			criteria.MinOverall = need.MinAbility
		}
		switch philosophy {
		case PhilosophyYouth:
			criteria.MaxAge = 23
			criteria.MinPotential = 75
		case PhilosophyStars:
			criteria.MinOverall = 80
			criteria.MinAge = 24
		case PhilosophyFreeAgents:
			criteria.FreeAgentsOnly = true
		case PhilosophyDomestic:
			criteria.Nationalities = []string{m.club.Country}
		}

		cands, err := m.market.Search().Search(criteria, m.club)
		if err != nil {
			return nil, fmt.Errorf("searching %s targets: %w", need.Position, err)
		}
		for _, cand := range cands {
			targets = append(targets, Target{
				Candidate: cand,
				Need:      need,
				Score:     m.scoreTarget(cand, need, philosophy, today),
			})
		}
	}
	sort.SliceStable(targets, func(i, j int) bool {
		if targets[i].Score != targets[j].Score {
			return targets[i].Score > targets[j].Score
		}
		return targets[i].Candidate.Player.ID.String() < targets[j].Candidate.Player.ID.String()
	})
	return targets, nil
}

func (m *Manager) scoreTarget(cand transfer.Candidate, need SquadNeed, philosophy Philosophy, today time.Time) float64 {
	p := cand.Player
	score := float64(p.Overall())
	score += float64(p.RatingAt(need.Position)) * 2

	valueM := football.InMillions(cand.Value)
	if valueM < 0.1 {
		valueM = 0.1
	}
	score += float64(p.Overall()) / valueM * 20

	age := p.AgeOn(today)
	if philosophy == PhilosophyYouth {
		if age <= 21 {
			score += 30
		}
		if gap := p.Potential - p.Overall(); gap > 0 {
			score += float64(gap)
		}
	}
	switch cand.Status {
	case transfer.AvailListed:
		score += 20
	case transfer.AvailFreeAgent:
		score += 40
	}
	score += float64(need.Priority) * 5
	return score
}

// PlanTransferWindow builds the full plan: philosophy, analysis, needs,
// surplus, budget, and scored targets.
func (m *Manager) PlanTransferWindow() (*Plan, error) {
	philosophy := m.DeterminePhilosophy()
	analysis := m.AnalyzeSquad()
	needs := m.IdentifyNeeds(analysis)
	sales := m.IdentifySurplus(analysis)
	budget := m.PlanBudget(sales)
	targets, err := m.IdentifyTargets(philosophy, needs, budget)
	if err != nil {
		return nil, err
	}
	slog.Info("transfer plan drawn up",
		"club", m.club.Name,
		"philosophy", string(philosophy),
		"needs", len(needs),
		"targets", len(targets),
		"sales", len(sales),
		"budget", football.FormatMoney(budget))
	return &Plan{
		Philosophy: philosophy,
		Budget:     budget,
		Analysis:   analysis,
		Needs:      needs,
		Targets:    targets,
		Sales:      sales,
	}, nil
}

// ExecuteTransferPlan lists the surplus players and chases targets worth
// bidding for. It returns every transaction made.
func (m *Manager) ExecuteTransferPlan(plan *Plan) ([]Transaction, error) {
	var done []Transaction
	for _, sale := range plan.Sales {
		if sale.Player.ClubID == nil || *sale.Player.ClubID != m.club.ID {
			continue
		}
		listing, err := m.market.ListPlayer(sale.Player, m.club, decimal.Zero, decimal.Zero, transfer.TypePermanent)
		if err != nil {
			return done, fmt.Errorf("listing %s: %w", sale.Player.Name, err)
		}
		done = append(done, Transaction{
			Kind:     "listed",
			Player:   sale.Player.Name,
			Position: sale.Player.BestPosition().String(),
			Amount:   listing.AskingPrice,
		})
	}

	for _, target := range plan.Targets {
		if !m.shouldBid(target) {
			continue
		}
		tx, err := m.pursueTarget(target)
		if err != nil {
			return done, err
		}
		if tx != nil {
			done = append(done, *tx)
		}
	}
	return done, nil
}

// shouldBid filters targets down to the ones still worth chasing: within
// budget, for a need the squad still has, and scored well enough.
func (m *Manager) shouldBid(target Target) bool {
	if target.Candidate.Value.GreaterThan(m.club.TransferBudget) {
		return false
	}
	if m.currentNeed(target.Need.Position) < 5 {
		return false
	}
	return target.Score >= 100
}

// currentNeed reassesses a position against the live squad, since earlier
// signings in the same run may have filled it.
func (m *Manager) currentNeed(pos football.Position) int {
	count := 0
	for _, p := range m.club.Squad {
		if p.RatingAt(pos) >= 15 {
			count++
		}
	}
	switch {
	case count >= 3:
		return 0
	case count == 2:
		return 5
	case count == 1:
		return 8
	default:
		return 10
	}
}

// pursueTarget runs one signing attempt end to end: bid, a few rounds of
// fee talks, contract, completion.
func (m *Manager) pursueTarget(target Target) (*Transaction, error) {
	player := m.market.Directory().PlayerByID(target.Candidate.Player.ID)
	if player == nil {
		return nil, nil
	}
	if player.ClubID != nil && *player.ClubID == m.club.ID {
		return nil, nil
	}

	value := target.Candidate.Value
	var bid decimal.Decimal
	typ := transfer.TypePermanent
	if player.IsFreeAgent() {
		typ = transfer.TypeFree
	} else if target.Candidate.Listing != nil && target.Candidate.Listing.Active {
		bid = target.Candidate.Listing.AskingPrice
	} else {
		bid = value.Mul(decimal.NewFromFloat(0.9)).Round(2)
	}

	n, _, err := m.market.MakeTransferBid(player, m.club, bid, typ)
	if err != nil {
		return nil, fmt.Errorf("bidding for %s: %w", player.Name, err)
	}
	if n == nil {
		return nil, nil
	}

	ceiling := value.Mul(decimal.NewFromFloat(1.3))
	for rounds := 0; n.Open() && rounds < 3; rounds++ {
		raised := n.CurrentOffer.Mul(decimal.NewFromFloat(1.1)).Round(2)
		if raised.GreaterThan(ceiling) {
			break
		}
		if _, _, err := m.market.NegotiateTransfer(n, raised, false); err != nil {
			return nil, fmt.Errorf("negotiating for %s: %w", player.Name, err)
		}
	}
	if n.Status != transfer.StatusAgreed {
		return nil, nil
	}

	offer, _, err := m.market.MakeContractOffer(n, m.contractYears(player), decimal.Zero)
	if err != nil {
		return nil, fmt.Errorf("contract offer for %s: %w", player.Name, err)
	}
	if offer == nil {
		return nil, nil
	}
	if offer.Status != transfer.ContractAgreed {
		if _, _, err := m.market.NegotiateContract(offer, offer.DemandedWage, decimal.Zero, nil); err != nil {
			return nil, fmt.Errorf("contract talks for %s: %w", player.Name, err)
		}
	}
	if offer.Status != transfer.ContractAgreed {
		return nil, nil
	}

	ok, _, err := m.market.CompleteTransfer(n)
	if err != nil {
		return nil, fmt.Errorf("completing transfer of %s: %w", player.Name, err)
	}
	if !ok {
		return nil, nil
	}
	return &Transaction{
		Kind:     "signed",
		Player:   player.Name,
		Position: player.BestPosition().String(),
		Amount:   n.AgreedFee,
	}, nil
}

// contractYears gives prospects long deals and veterans short ones.
func (m *Manager) contractYears(p *football.Player) int {
	switch age := p.AgeOn(m.today()); {
	case age <= 23:
		return 5
	case age <= 29:
		return 4
	case age <= 32:
		return 2
	default:
		return 1
	}
}

// RespondToBid decides the selling side: accept, or counter at a price
// reflecting how much the club wants to keep the player.
func (m *Manager) RespondToBid(player *football.Player, amount decimal.Decimal) (bool, decimal.Decimal) {
	value := m.market.Valuer().Value(player)
	importance := m.playerImportance(player)

	listing, _ := m.market.ActiveListing(player.ID)
	listed := listing != nil

	switch {
	case listed:
		if amount.GreaterThanOrEqual(value.Mul(decimal.NewFromFloat(0.8))) {
			return true, decimal.Zero
		}
		return false, value.Mul(decimal.NewFromFloat(0.9)).Round(2)
	case importance == RoleSurplus:
		if amount.GreaterThanOrEqual(value) {
			return true, decimal.Zero
		}
		return false, value.Mul(decimal.NewFromFloat(1.1)).Round(2)
	case importance == RoleStarter:
		if amount.GreaterThanOrEqual(value.Mul(decimal.NewFromFloat(1.5))) {
			return true, decimal.Zero
		}
		return false, value.Mul(decimal.NewFromInt(2)).Round(2)
	default:
		if amount.GreaterThanOrEqual(value.Mul(decimal.NewFromFloat(1.2))) {
			return true, decimal.Zero
		}
		return false, value.Mul(decimal.NewFromFloat(1.3)).Round(2)
	}
}

// playerImportance ranks the player against squad mates in his position.
func (m *Manager) playerImportance(player *football.Player) SquadRole {
	pos := player.BestPosition()
	var peers []*football.Player
	for _, p := range m.club.Squad {
		if p.BestPosition() == pos {
			peers = append(peers, p)
		}
	}
	sort.SliceStable(peers, func(i, j int) bool {
		if peers[i].Overall() != peers[j].Overall() {
			return peers[i].Overall() > peers[j].Overall()
		}
		return peers[i].ID.String() < peers[j].ID.String()
	})
	rank := 0
	for i, p := range peers {
		if p.ID == player.ID {
			rank = i + 1
			break
		}
	}
	switch {
	case rank == 0:
		return RoleSurplus
	case rank <= 2:
		return RoleStarter
	case rank == 3:
		return RoleRotation
	case rank == 4:
		return RoleBackup
	default:
		return RoleSurplus
	}
}

func (m *Manager) today() time.Time {
	return m.market.Today()
}
