package transfer

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openclubsim/transfermarket/internal/football"
	"github.com/openclubsim/transfermarket/internal/valuation"
)

// ContractNegotiator runs the wage side of a transfer once the fee is
// settled: the player's agent pushes the wage toward the demand while the
// club leans on bonuses and clauses.
type ContractNegotiator struct {
	valuer    *valuation.Engine
	maxRounds int
	clock     func() time.Time
}

func NewContractNegotiator(valuer *valuation.Engine, maxRounds int, clock func() time.Time) *ContractNegotiator {
	if maxRounds <= 0 {
		maxRounds = 5
	}
	return &ContractNegotiator{valuer: valuer, maxRounds: maxRounds, clock: clock}
}

// CreateOffer builds the club's initial contract offer. A zero wage opens
// at 85% of the player's demand. The signing bonus scales with ability and
// the agent takes 7% of the fee, with a floor for free transfers.
func (cn *ContractNegotiator) CreateOffer(player *football.Player, club *football.Club, n *Negotiation, years int, wage decimal.Decimal) *ContractOffer {
	fee := n.AgreedFee
	if fee.IsZero() {
		fee = n.CurrentOffer
	}
	demand := cn.valuer.EstimateWageDemand(player, fee)
	if wage.IsZero() {
		wage = demand.Mul(decimal.NewFromFloat(0.85)).Round(2)
	}

	bonusWeeks := int64(10)
	switch {
	case player.Overall() >= 80:
		bonusWeeks = 20
	case player.Overall() >= 75:
		bonusWeeks = 15
	}
	bonus := wage.Mul(decimal.NewFromInt(bonusWeeks))

	agentFee := fee.Mul(decimal.NewFromFloat(0.07))
	if agentFee.LessThan(decimal.NewFromInt(50_000)) {
		agentFee = decimal.NewFromInt(50_000)
	}

	return &ContractOffer{
		ID:            uuid.New(),
		NegotiationID: n.ID,
		PlayerID:      player.ID,
		ClubID:        club.ID,
		Status:        ContractProposed,
		Years:         years,
		WeeklyWage:    wage,
		DemandedWage:  demand,
		SigningBonus:  bonus,
		AgentFee:      agentFee,
		Offered:       cn.clock(),
	}
}

// PlayerAccepts reports whether the player takes the offer as it stands.
// A wage at 95% of demand is enough on its own; from 85% the player can be
// swayed by a large signing bonus or a low release clause.
func (cn *ContractNegotiator) PlayerAccepts(o *ContractOffer) bool {
	if o.DemandedWage.IsZero() {
		return true
	}
	ratio := o.WeeklyWage.Div(o.DemandedWage)
	if ratio.GreaterThanOrEqual(decimal.NewFromFloat(0.95)) {
		return true
	}
	if ratio.GreaterThanOrEqual(decimal.NewFromFloat(0.85)) {
		if o.SigningBonus.GreaterThan(o.DemandedWage.Mul(decimal.NewFromInt(15))) {
			return true
		}
		if o.ReleaseClause.IsPositive() && o.ReleaseClause.LessThan(o.DemandedWage.Mul(decimal.NewFromInt(1000))) {
			return true
		}
	}
	return false
}

// counterDemand is what the player asks for after turning down the current
// terms. Low offers get the full demand back; closer ones split the gap.
func (cn *ContractNegotiator) counterDemand(o *ContractOffer) decimal.Decimal {
	ratio := o.WeeklyWage.Div(o.DemandedWage)
	switch {
	case ratio.LessThan(decimal.NewFromFloat(0.7)):
		return o.DemandedWage
	case ratio.LessThan(decimal.NewFromFloat(0.85)):
		return o.DemandedWage.Mul(decimal.NewFromFloat(0.95)).Round(2)
	default:
		return o.WeeklyWage.Add(o.DemandedWage).Div(decimal.NewFromInt(2)).Round(2)
	}
}

// Negotiate applies revised terms and asks the player again. It returns
// whether the contract was agreed and a message for the club.
func (cn *ContractNegotiator) Negotiate(o *ContractOffer, newWage, newBonus decimal.Decimal, clauses *ContractClauses) (bool, string) {
	if o.Status != ContractProposed && o.Status != ContractNegotiating {
		panic(fmt.Sprintf("transfer: negotiating %s contract offer %s", o.Status, o.ID))
	}
	o.Rounds++
	if o.Rounds > cn.maxRounds {
		o.transition(ContractRejected)
		return false, "Player has ended negotiations"
	}

	if newWage.IsPositive() {
		o.WeeklyWage = newWage
	}
	if newBonus.IsPositive() {
		o.SigningBonus = newBonus
	}
	if clauses != nil {
		if clauses.ReleaseClause.IsPositive() {
			o.ReleaseClause = clauses.ReleaseClause
		}
		if clauses.WageRisePercent > 0 {
			o.WageRisePercent = clauses.WageRisePercent
		}
	}

	if cn.PlayerAccepts(o) {
		o.transition(ContractAgreed)
		o.FinalWage = o.WeeklyWage
		return true, "Contract terms agreed"
	}

	if o.Status == ContractProposed {
		o.transition(ContractNegotiating)
	}
	// The counter is a hint for the club only; the demand the acceptance
	// thresholds run against stays fixed.
	counter := cn.counterDemand(o)
	return false, fmt.Sprintf("Player demands %s per week", humanize.Comma(counter.Round(0).IntPart()))
}
