package transfer

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openclubsim/transfermarket/internal/football"
	"github.com/openclubsim/transfermarket/internal/valuation"
)

// Strategy shades how aggressively a buying club opens the bidding.
type Strategy string

const (
	StrategyAggressive Strategy = "aggressive"
	StrategyFair       Strategy = "fair"
	StrategyDesperate  Strategy = "desperate"
	StrategyHardball   Strategy = "hardball"
)

// openingMultiplier is the fraction of valuation each strategy opens at.
var openingMultiplier = map[Strategy]float64{
	StrategyAggressive: 0.7,
	StrategyFair:       0.9,
	StrategyDesperate:  1.1,
	StrategyHardball:   0.6,
}

// FeeNegotiator runs the fee side of a transfer: opening bids, counter
// offers, and loan terms.
type FeeNegotiator struct {
	valuer    *valuation.Engine
	dir       *football.Directory
	maxRounds int
	clock     func() time.Time
}

func NewFeeNegotiator(valuer *valuation.Engine, dir *football.Directory, maxRounds int, clock func() time.Time) *FeeNegotiator {
	if maxRounds <= 0 {
		maxRounds = 10
	}
	return &FeeNegotiator{valuer: valuer, dir: dir, maxRounds: maxRounds, clock: clock}
}

// ClubStrategy picks the bidding strategy for a buying club. Fixed to fair
// so runs with the same seed reproduce identically.
func (fn *FeeNegotiator) ClubStrategy(buyer *football.Club) Strategy {
	return StrategyFair
}

// OpeningBid computes a strategy-shaded first offer, capped at 80% of the
// buyer's transfer budget and rounded to the nearest 0.1M.
func (fn *FeeNegotiator) OpeningBid(player *football.Player, buyer *football.Club, strategy Strategy) decimal.Decimal {
	mult, ok := openingMultiplier[strategy]
	if !ok {
		mult = openingMultiplier[StrategyFair]
	}
	value := fn.valuer.Value(player)
	bid := value.Mul(decimal.NewFromFloat(mult))
	cap := buyer.TransferBudget.Mul(decimal.NewFromFloat(0.8))
	if bid.GreaterThan(cap) {
		bid = cap
	}
	// round to 0.1M
	step := decimal.NewFromInt(100_000)
	return bid.Div(step).Round(0).Mul(step)
}

// Initiate opens a negotiation for a player. A zero amount lets the
// negotiator pick the opening bid from the buyer's strategy.
func (fn *FeeNegotiator) Initiate(player *football.Player, buyer *football.Club, typ Type, amount decimal.Decimal) *Negotiation {
	if amount.IsZero() && typ != TypeFree {
		amount = fn.OpeningBid(player, buyer, fn.ClubStrategy(buyer))
	}
	n := &Negotiation{
		ID:           uuid.New(),
		PlayerID:     player.ID,
		BuyingClubID: buyer.ID,
		Status:       StatusNegotiating,
		Type:         typ,
		InitialOffer: amount,
		Started:      fn.clock(),
	}
	if player.ClubID != nil {
		seller := *player.ClubID
		n.SellingClubID = &seller
	}
	n.appendOffer(amount, FromBuyingClub, n.Started)
	return n
}

// CounterOffer processes the selling club's counter. It returns whether the
// deal was struck and a message for the buying club.
func (fn *FeeNegotiator) CounterOffer(n *Negotiation, amount decimal.Decimal, terms *OfferTerms) (bool, string) {
	if !n.Open() {
		panic("transfer: counter offer on closed negotiation " + n.ID.String())
	}
	n.Rounds++
	if n.Rounds >= fn.maxRounds {
		n.transition(StatusRejected)
		return false, "Negotiations have broken down after too many rounds"
	}

	player := fn.dir.PlayerByID(n.PlayerID)
	buyer := fn.dir.ClubByID(n.BuyingClubID)
	value := fn.valuer.Value(player)
	previous := n.CurrentOffer
	n.appendOffer(amount, FromSellingClub, fn.clock())

	if amount.GreaterThan(buyer.TransferBudget) {
		return false, "Counter offer exceeds the buying club's budget"
	}
	if amount.GreaterThan(value.Mul(decimal.NewFromFloat(1.5))) {
		return false, "Counter offer is far above the player's valuation"
	}
	if previous.Sub(amount).Abs().LessThan(value.Mul(decimal.NewFromFloat(0.1))) {
		n.agree(amount)
		if terms != nil {
			n.SellOnPercent = terms.SellOnPercent
			n.PerformanceBonuses = terms.PerformanceBonuses
		}
		slog.Info("transfer fee agreed",
			"player", player.Name,
			"fee", football.FormatMoney(amount),
			"rounds", n.Rounds)
		return true, "Offers have converged - fee agreed"
	}
	return false, "Counter offer noted - gap remains"
}

// NegotiateLoanTerms sets loan terms on a loan negotiation and agrees the
// deal when the selling club's minimums are met: at least half the wages
// covered and a loan fee of at least 5% of valuation.
func (fn *FeeNegotiator) NegotiateLoanTerms(n *Negotiation, loanFee decimal.Decimal, wagePercent float64, buyOption decimal.Decimal, buyObligation bool) (bool, string) {
	if !n.Type.IsLoan() {
		return false, "Not a loan negotiation"
	}
	if !n.Open() {
		panic("transfer: loan terms on closed negotiation " + n.ID.String())
	}
	n.LoanFee = loanFee
	n.WagePercent = wagePercent
	n.BuyOption = buyOption
	n.BuyObligation = buyObligation

	player := fn.dir.PlayerByID(n.PlayerID)
	value := fn.valuer.Value(player)
	minFee := value.Mul(decimal.NewFromFloat(0.05))
	if wagePercent >= 50 && loanFee.GreaterThanOrEqual(minFee) {
		n.agree(loanFee)
		return true, "Loan terms agreed"
	}
	return false, "Loan terms under negotiation"
}
