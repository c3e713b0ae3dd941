package transfer

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openclubsim/transfermarket/internal/football"
	"github.com/openclubsim/transfermarket/internal/valuation"
)

// Calendar is the slice of the season calendar the market needs: whether
// deals can be registered and where the current window started.
type Calendar interface {
	Today() time.Time
	IsWindowOpen(t time.Time) bool
	WindowStart(t time.Time) (time.Time, bool)
}

// Params tunes market behaviour. Zero values fall back to defaults.
type Params struct {
	MaxFeeRounds      int
	MaxContractRounds int

	// Listing price defaults as fractions of valuation and asking price.
	ListingMarkup      float64
	ListingMinFraction float64

	// Deadline day knobs.
	DeadlineMinBudgetMillions float64
	MaxDeadlineSignings       int
}

func DefaultParams() Params {
	return Params{
		MaxFeeRounds:              10,
		MaxContractRounds:         5,
		ListingMarkup:             1.2,
		ListingMinFraction:        0.8,
		DeadlineMinBudgetMillions: 1,
		MaxDeadlineSignings:       2,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.MaxFeeRounds <= 0 {
		p.MaxFeeRounds = d.MaxFeeRounds
	}
	if p.MaxContractRounds <= 0 {
		p.MaxContractRounds = d.MaxContractRounds
	}
	if p.ListingMarkup <= 0 {
		p.ListingMarkup = d.ListingMarkup
	}
	if p.ListingMinFraction <= 0 {
		p.ListingMinFraction = d.ListingMinFraction
	}
	if p.DeadlineMinBudgetMillions <= 0 {
		p.DeadlineMinBudgetMillions = d.DeadlineMinBudgetMillions
	}
	if p.MaxDeadlineSignings <= 0 {
		p.MaxDeadlineSignings = d.MaxDeadlineSignings
	}
	return p
}

// Market orchestrates the full transfer lifecycle over a directory of clubs
// and players: listings, bids, fee and contract negotiation, completion,
// and window closure.
type Market struct {
	dir    *football.Directory
	store  Store
	cal    Calendar
	valuer *valuation.Engine
	params Params

	fees      *FeeNegotiator
	contracts *ContractNegotiator
	search    *SearchEngine
}

func NewMarket(dir *football.Directory, store Store, cal Calendar, valuer *valuation.Engine, params Params) *Market {
	params = params.withDefaults()
	clock := cal.Today
	return &Market{
		dir:       dir,
		store:     store,
		cal:       cal,
		valuer:    valuer,
		params:    params,
		fees:      NewFeeNegotiator(valuer, dir, params.MaxFeeRounds, clock),
		contracts: NewContractNegotiator(valuer, params.MaxContractRounds, clock),
		search:    NewSearchEngine(dir, store, valuer, clock),
	}
}

// Valuer exposes the valuation engine for callers building on the market.
func (m *Market) Valuer() *valuation.Engine { return m.valuer }

// Search exposes the search engine.
func (m *Market) Search() *SearchEngine { return m.search }

// Fees exposes the fee negotiator.
func (m *Market) Fees() *FeeNegotiator { return m.fees }

// Contracts exposes the contract negotiator.
func (m *Market) Contracts() *ContractNegotiator { return m.contracts }

// Directory exposes the world view the market operates on.
func (m *Market) Directory() *football.Directory { return m.dir }

// Today returns the current simulation date.
func (m *Market) Today() time.Time { return m.cal.Today() }

// ActiveListing returns the player's live listing, if any. A listing past
// its expiry date comes off the market on first sight.
func (m *Market) ActiveListing(playerID uuid.UUID) (*Listing, error) {
	l, err := m.store.ActiveListing(playerID)
	if err != nil || l == nil {
		return nil, err
	}
	if l.ExpiredBy(m.cal.Today()) {
		if err := m.store.DeactivateListings(playerID); err != nil {
			return nil, fmt.Errorf("expiring listing: %w", err)
		}
		return nil, nil
	}
	return l, nil
}

// ActiveListings returns every live listing, oldest first, deactivating any
// that have expired.
func (m *Market) ActiveListings() ([]*Listing, error) {
	all, err := m.store.ActiveListings()
	if err != nil {
		return nil, err
	}
	today := m.cal.Today()
	out := all[:0]
	for _, l := range all {
		if l.ExpiredBy(today) {
			if err := m.store.DeactivateListings(l.PlayerID); err != nil {
				return nil, fmt.Errorf("expiring listing: %w", err)
			}
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// RecordsSince returns the transfer history on or after the given date.
func (m *Market) RecordsSince(t time.Time) ([]*TransferRecord, error) {
	return m.store.RecordsSince(t)
}

// ListPlayer puts a player on the transfer list. Zero prices default to a
// 20% markup on valuation with a minimum at 80% of asking. Any previous
// listing for the player is superseded.
func (m *Market) ListPlayer(player *football.Player, club *football.Club, asking, min decimal.Decimal, typ Type) (*Listing, error) {
	if asking.IsZero() {
		asking = m.valuer.Value(player).Mul(decimal.NewFromFloat(m.params.ListingMarkup)).Round(2)
	}
	if min.IsZero() {
		min = asking.Mul(decimal.NewFromFloat(m.params.ListingMinFraction)).Round(2)
	}
	if err := m.store.DeactivateListings(player.ID); err != nil {
		return nil, fmt.Errorf("deactivating old listings: %w", err)
	}
	l := &Listing{
		ID:          uuid.New(),
		PlayerID:    player.ID,
		ClubID:      club.ID,
		AskingPrice: asking,
		MinPrice:    min,
		Type:        typ,
		Listed:      m.cal.Today(),
		Active:      true,
	}
	if err := m.store.SaveListing(l); err != nil {
		return nil, fmt.Errorf("saving listing: %w", err)
	}
	slog.Info("player listed",
		"player", player.Name,
		"club", club.Name,
		"asking", football.FormatMoney(asking))
	return l, nil
}

// MakeTransferBid opens a negotiation for a player. Bids for contracted
// players need an open window; free agents can be approached at any time
// and agree the (usually zero) fee immediately.
func (m *Market) MakeTransferBid(player *football.Player, buyer *football.Club, amount decimal.Decimal, typ Type) (*Negotiation, string, error) {
	today := m.cal.Today()
	if !player.IsFreeAgent() && !m.cal.IsWindowOpen(today) {
		return nil, "Transfer window is closed", nil
	}
	if amount.GreaterThan(buyer.TransferBudget) {
		return nil, "Insufficient transfer budget", nil
	}
	existing, err := m.store.OpenNegotiation(player.ID, buyer.ID)
	if err != nil {
		return nil, "", fmt.Errorf("checking open negotiations: %w", err)
	}
	if existing != nil {
		return existing, "Negotiation already in progress", nil
	}

	n := m.fees.Initiate(player, buyer, typ, amount)

	if player.IsFreeAgent() {
		n.agree(n.CurrentOffer)
		if err := m.store.SaveNegotiation(n); err != nil {
			return nil, "", fmt.Errorf("saving negotiation: %w", err)
		}
		return n, "Free agent - no fee required", nil
	}

	listing, err := m.ActiveListing(player.ID)
	if err != nil {
		return nil, "", fmt.Errorf("checking listing: %w", err)
	}
	msg := "Bid submitted - awaiting response"
	if listing != nil && n.CurrentOffer.GreaterThanOrEqual(listing.AskingPrice) {
		n.agree(n.CurrentOffer)
		msg = "Bid accepted - asking price met"
	}
	if err := m.store.SaveNegotiation(n); err != nil {
		return nil, "", fmt.Errorf("saving negotiation: %w", err)
	}
	slog.Info("transfer bid",
		"player", player.Name,
		"buyer", buyer.Name,
		"amount", football.FormatMoney(n.CurrentOffer),
		"status", string(n.Status))
	return n, msg, nil
}

// NegotiateTransfer advances the fee negotiation from the buying side:
// either accept the fee on the table or raise the bid.
func (m *Market) NegotiateTransfer(n *Negotiation, newBid decimal.Decimal, acceptCurrent bool) (bool, string, error) {
	if !n.Open() {
		return false, fmt.Sprintf("Negotiation is %s", n.Status), nil
	}
	if acceptCurrent {
		n.agree(n.CurrentOffer)
		if err := m.store.SaveNegotiation(n); err != nil {
			return false, "", fmt.Errorf("saving negotiation: %w", err)
		}
		return true, "Transfer fee agreed", nil
	}
	if newBid.IsZero() {
		return false, "No new bid made", nil
	}

	buyer := m.dir.ClubByID(n.BuyingClubID)
	if newBid.GreaterThan(buyer.TransferBudget) {
		return false, "Insufficient transfer budget", nil
	}
	n.Rounds++
	n.appendOffer(newBid, FromBuyingClub, m.cal.Today())

	listing, err := m.ActiveListing(n.PlayerID)
	if err != nil {
		return false, "", fmt.Errorf("checking listing: %w", err)
	}
	agreed := false
	msg := "Negotiation continues"
	if listing != nil && newBid.GreaterThanOrEqual(listing.MinPrice) {
		n.agree(newBid)
		agreed = true
		msg = "Bid accepted"
	}
	if err := m.store.SaveNegotiation(n); err != nil {
		return false, "", fmt.Errorf("saving negotiation: %w", err)
	}
	return agreed, msg, nil
}

// CounterTransferOffer plays the selling club's side of the negotiation.
func (m *Market) CounterTransferOffer(n *Negotiation, amount decimal.Decimal, terms *OfferTerms) (bool, string, error) {
	if !n.Open() {
		return false, fmt.Sprintf("Negotiation is %s", n.Status), nil
	}
	ok, msg := m.fees.CounterOffer(n, amount, terms)
	if err := m.store.SaveNegotiation(n); err != nil {
		return false, "", fmt.Errorf("saving negotiation: %w", err)
	}
	return ok, msg, nil
}

// NegotiateLoanTerms sets loan terms on a loan negotiation.
func (m *Market) NegotiateLoanTerms(n *Negotiation, loanFee decimal.Decimal, wagePercent float64, buyOption decimal.Decimal, buyObligation bool) (bool, string, error) {
	if !n.Open() {
		return false, fmt.Sprintf("Negotiation is %s", n.Status), nil
	}
	ok, msg := m.fees.NegotiateLoanTerms(n, loanFee, wagePercent, buyOption, buyObligation)
	if err := m.store.SaveNegotiation(n); err != nil {
		return false, "", fmt.Errorf("saving negotiation: %w", err)
	}
	return ok, msg, nil
}

// MakeContractOffer opens contract talks once the fee is agreed. Only one
// offer exists per negotiation. A zero wage opens at the negotiator's
// default below the player's demand.
func (m *Market) MakeContractOffer(n *Negotiation, years int, wage decimal.Decimal) (*ContractOffer, string, error) {
	if n.Status != StatusAgreed {
		return nil, "Transfer fee not yet agreed", nil
	}
	existing, err := m.store.ContractForNegotiation(n.ID)
	if err != nil {
		return nil, "", fmt.Errorf("checking contract offers: %w", err)
	}
	if existing != nil {
		return existing, "Contract offer already exists", nil
	}

	player := m.dir.PlayerByID(n.PlayerID)
	club := m.dir.ClubByID(n.BuyingClubID)
	offer := m.contracts.CreateOffer(player, club, n, years, wage)

	msg := "Contract offer made - awaiting response"
	if m.contracts.PlayerAccepts(offer) {
		offer.transition(ContractAgreed)
		offer.FinalWage = offer.WeeklyWage
		msg = "Contract terms agreed"
	}
	if err := m.store.SaveContract(offer); err != nil {
		return nil, "", fmt.Errorf("saving contract offer: %w", err)
	}
	return offer, msg, nil
}

// NegotiateContract runs one more round of wage talks.
func (m *Market) NegotiateContract(o *ContractOffer, newWage, newBonus decimal.Decimal, clauses *ContractClauses) (bool, string, error) {
	if o.Closed() || o.Status == ContractAgreed {
		return false, fmt.Sprintf("Contract offer is %s", o.Status), nil
	}
	ok, msg := m.contracts.Negotiate(o, newWage, newBonus, clauses)
	if err := m.store.SaveContract(o); err != nil {
		return false, "", fmt.Errorf("saving contract offer: %w", err)
	}
	return ok, msg, nil
}

// CompleteTransfer settles an agreed deal: money moves, the player moves,
// the contract is signed, and a history record is written. All checks run
// before any state changes, so a failed completion leaves the world
// untouched.
func (m *Market) CompleteTransfer(n *Negotiation) (bool, string, error) {
	if n.Status != StatusAgreed {
		return false, "Transfer fee not agreed", nil
	}
	contract, err := m.store.ContractForNegotiation(n.ID)
	if err != nil {
		return false, "", fmt.Errorf("loading contract offer: %w", err)
	}
	if contract == nil || contract.Status != ContractAgreed {
		return false, "Contract terms not agreed", nil
	}

	player := m.dir.PlayerByID(n.PlayerID)
	buyer := m.dir.ClubByID(n.BuyingClubID)
	if player == nil || buyer == nil {
		return false, "Player or club no longer exists", nil
	}
	var seller *football.Club
	if n.SellingClubID != nil {
		seller = m.dir.ClubByID(*n.SellingClubID)
	}
	fee := n.AgreedFee
	paysFee := n.Type == TypePermanent
	if paysFee && buyer.TransferBudget.LessThan(fee) {
		return false, "Insufficient funds to complete transfer", nil
	}

	// All checks passed; from here every step must happen.
	today := m.cal.Today()
	if paysFee {
		buyer.TransferBudget = buyer.TransferBudget.Sub(fee)
		if seller != nil {
			seller.TransferBudget = seller.TransferBudget.Add(fee)
		}
	}
	if seller != nil {
		seller.RemovePlayer(player.ID)
	}
	buyer.AddPlayer(player)
	player.Contract = &football.Contract{
		WeeklyWage:    contract.FinalWage,
		Started:       today,
		Ends:          today.AddDate(contract.Years, 0, 0),
		SigningBonus:  contract.SigningBonus,
		ReleaseClause: contract.ReleaseClause,
	}
	record := &TransferRecord{
		ID:            uuid.New(),
		PlayerID:      player.ID,
		FromClubID:    n.SellingClubID,
		ToClubID:      buyer.ID,
		Type:          n.Type,
		Fee:           fee,
		TotalCost:     fee.Add(contract.SigningBonus).Add(contract.AgentFee),
		ContractYears: contract.Years,
		WeeklyWage:    contract.FinalWage,
		AgentFee:      contract.AgentFee,
		SigningBonus:  contract.SigningBonus,
		SellOnPercent: n.SellOnPercent,
		Date:          today,
	}

	n.transition(StatusCompleted)
	n.Completed = &today
	contract.transition(ContractSigned)
	contract.Signed = &today

	if err := m.store.DeactivateListings(player.ID); err != nil {
		return false, "", fmt.Errorf("deactivating listings: %w", err)
	}
	if err := m.store.SaveNegotiation(n); err != nil {
		return false, "", fmt.Errorf("saving negotiation: %w", err)
	}
	if err := m.store.SaveContract(contract); err != nil {
		return false, "", fmt.Errorf("saving contract: %w", err)
	}
	if err := m.store.AppendRecord(record); err != nil {
		return false, "", fmt.Errorf("recording transfer: %w", err)
	}

	slog.Info("transfer completed",
		"player", player.Name,
		"to", buyer.Name,
		"fee", football.FormatMoney(fee),
		"wage", football.FormatMoney(contract.FinalWage),
		"years", contract.Years)
	return true, fmt.Sprintf("%s has joined %s", player.Name, buyer.Name), nil
}

// CloseWindow withdraws every negotiation still in flight, agreed fees
// included, and takes all listings off the market. It returns the number of
// negotiations withdrawn and listings deactivated.
func (m *Market) CloseWindow() (int, int, error) {
	open, err := m.store.NegotiationsByStatus(StatusNegotiating)
	if err != nil {
		return 0, 0, fmt.Errorf("loading open negotiations: %w", err)
	}
	// A signed contract completes the negotiation on the spot, so anything
	// still AGREED here never got past contract talks. It dies with the
	// window too.
	agreed, err := m.store.NegotiationsByStatus(StatusAgreed)
	if err != nil {
		return 0, 0, fmt.Errorf("loading agreed negotiations: %w", err)
	}
	open = append(open, agreed...)
	for _, n := range open {
		n.transition(StatusWithdrawn)
		if err := m.store.SaveNegotiation(n); err != nil {
			return 0, 0, fmt.Errorf("saving negotiation: %w", err)
		}
	}
	listings, err := m.store.ActiveListings()
	if err != nil {
		return 0, 0, fmt.Errorf("loading listings: %w", err)
	}
	deactivated := 0
	for _, l := range listings {
		if err := m.store.DeactivateListings(l.PlayerID); err != nil {
			return 0, 0, fmt.Errorf("deactivating listings: %w", err)
		}
		deactivated++
	}
	slog.Info("transfer window closed",
		"withdrawn", len(open),
		"delisted", deactivated)
	return len(open), deactivated, nil
}
