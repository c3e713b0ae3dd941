// Package transfer implements the transfer market engine: listings, fee and
// wage negotiation state machines, search, orchestration, and deadline-day
// batch simulation.
package transfer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a fee negotiation.
type Status string

const (
	StatusNegotiating Status = "negotiating"
	StatusAgreed      Status = "agreed"
	StatusMedical     Status = "medical"
	StatusCompleted   Status = "completed"
	StatusRejected    Status = "rejected"
	StatusWithdrawn   Status = "withdrawn"
)

// negotiationTransitions is the single source of truth for legal status
// moves. Everything else in the package goes through transition().
var negotiationTransitions = map[Status][]Status{
	StatusNegotiating: {StatusAgreed, StatusRejected, StatusWithdrawn},
	StatusAgreed:      {StatusMedical, StatusCompleted, StatusWithdrawn},
	StatusMedical:     {StatusCompleted, StatusRejected},
}

// ContractStatus is the lifecycle state of a contract offer.
type ContractStatus string

const (
	ContractProposed    ContractStatus = "proposed"
	ContractNegotiating ContractStatus = "negotiating"
	ContractAgreed      ContractStatus = "agreed"
	ContractSigned      ContractStatus = "signed"
	ContractRejected    ContractStatus = "rejected"
)

var contractTransitions = map[ContractStatus][]ContractStatus{
	ContractProposed:    {ContractNegotiating, ContractAgreed, ContractRejected},
	ContractNegotiating: {ContractAgreed, ContractRejected},
	ContractAgreed:      {ContractSigned, ContractRejected},
}

// Type is the kind of transfer being arranged.
type Type string

const (
	TypePermanent Type = "permanent"
	TypeLoan      Type = "loan"
	TypeLoanToBuy Type = "loan_to_buy"
	TypeFree      Type = "free"
)

// IsLoan reports whether the type carries loan terms.
func (t Type) IsLoan() bool {
	return t == TypeLoan || t == TypeLoanToBuy
}

// Listing is a club's offer to sell a player. At most one listing per player
// is active at any time; creating a new one supersedes the rest.
type Listing struct {
	ID       uuid.UUID
	PlayerID uuid.UUID
	ClubID   uuid.UUID

	AskingPrice decimal.Decimal
	MinPrice    decimal.Decimal
	Type        Type

	Listed  time.Time
	Expires *time.Time
	Active  bool
}

// ExpiredBy reports whether the listing's optional expiry date has passed.
func (l *Listing) ExpiredBy(day time.Time) bool {
	return l.Expires != nil && day.After(*l.Expires)
}

// OfferOrigin marks which side of a negotiation an offer came from.
type OfferOrigin string

const (
	FromBuyingClub  OfferOrigin = "buying_club"
	FromSellingClub OfferOrigin = "selling_club"
)

// Offer is one entry of a negotiation's append-only offer log.
type Offer struct {
	Round  int
	Amount decimal.Decimal
	From   OfferOrigin
	At     time.Time
}

// OfferTerms are the optional extras attached to a fee offer.
type OfferTerms struct {
	SellOnPercent      float64
	PerformanceBonuses map[string]decimal.Decimal
}

// Negotiation is the stateful fee exchange between a buying club and a
// selling club (nil seller for free agents).
type Negotiation struct {
	ID            uuid.UUID
	PlayerID      uuid.UUID
	SellingClubID *uuid.UUID
	BuyingClubID  uuid.UUID

	Status Status
	Type   Type

	InitialOffer decimal.Decimal
	CurrentOffer decimal.Decimal
	AgreedFee    decimal.Decimal // set only on agreement

	// OfferHistory is append-only and mutated only while negotiating.
	OfferHistory []Offer
	Rounds       int

	SellOnPercent      float64
	PerformanceBonuses map[string]decimal.Decimal

	// Loan terms, meaningful only for loan types.
	LoanFee       decimal.Decimal
	WagePercent   float64
	BuyOption     decimal.Decimal
	BuyObligation bool

	Started   time.Time
	Completed *time.Time
}

// Open reports whether the negotiation is still in play.
func (n *Negotiation) Open() bool {
	return n.Status == StatusNegotiating
}

// transition moves the negotiation to a new status. An illegal move is a
// caller bug and panics.
func (n *Negotiation) transition(to Status) {
	for _, allowed := range negotiationTransitions[n.Status] {
		if allowed == to {
			n.Status = to
			return
		}
	}
	panic(fmt.Sprintf("transfer: illegal negotiation transition %s -> %s", n.Status, to))
}

// appendOffer records a new offer and makes it current. Calling this on a
// closed negotiation is a caller bug and panics.
func (n *Negotiation) appendOffer(amount decimal.Decimal, from OfferOrigin, at time.Time) {
	if !n.Open() {
		panic(fmt.Sprintf("transfer: offer appended to %s negotiation %s", n.Status, n.ID))
	}
	n.OfferHistory = append(n.OfferHistory, Offer{
		Round:  len(n.OfferHistory),
		Amount: amount,
		From:   from,
		At:     at,
	})
	n.CurrentOffer = amount
}

// agree fixes the fee and moves the negotiation to AGREED.
func (n *Negotiation) agree(fee decimal.Decimal) {
	n.transition(StatusAgreed)
	n.AgreedFee = fee
}

// ContractClauses are the optional clauses a contract round can introduce.
type ContractClauses struct {
	ReleaseClause   decimal.Decimal
	WageRisePercent float64
}

// ContractOffer is the stateful wage exchange between a club and a player,
// created once a fee has been agreed.
type ContractOffer struct {
	ID            uuid.UUID
	NegotiationID uuid.UUID
	PlayerID      uuid.UUID
	ClubID        uuid.UUID

	Status ContractStatus
	Years  int

	WeeklyWage   decimal.Decimal
	DemandedWage decimal.Decimal
	FinalWage    decimal.Decimal

	SigningBonus    decimal.Decimal
	AgentFee        decimal.Decimal
	ReleaseClause   decimal.Decimal
	WageRisePercent float64

	Rounds  int
	Offered time.Time
	Signed  *time.Time
}

// Closed reports whether the offer has reached a terminal state.
func (o *ContractOffer) Closed() bool {
	return o.Status == ContractSigned || o.Status == ContractRejected
}

func (o *ContractOffer) transition(to ContractStatus) {
	for _, allowed := range contractTransitions[o.Status] {
		if allowed == to {
			o.Status = to
			return
		}
	}
	panic(fmt.Sprintf("transfer: illegal contract transition %s -> %s", o.Status, to))
}

// TransferRecord is the immutable history entry written when a transfer
// completes. Records are append-only and never mutated.
type TransferRecord struct {
	ID         uuid.UUID
	PlayerID   uuid.UUID
	FromClubID *uuid.UUID
	ToClubID   uuid.UUID

	Type          Type
	Fee           decimal.Decimal
	TotalCost     decimal.Decimal // fee + signing bonus + agent fee
	ContractYears int
	WeeklyWage    decimal.Decimal
	AgentFee      decimal.Decimal
	SigningBonus  decimal.Decimal
	SellOnPercent float64

	Date time.Time
}
