package transfer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/openclubsim/transfermarket/internal/football"
)

func TestListPlayerDefaults(t *testing.T) {
	w := newTestWorld()
	value := w.valuer.Value(w.target)

	l, err := w.market.ListPlayer(w.target, w.seller, decimal.Zero, decimal.Zero, TypePermanent)
	require.NoError(t, err)
	require.True(t, l.Active)
	require.True(t, l.AskingPrice.Equal(value.Mul(decimal.NewFromFloat(1.2)).Round(2)),
		"asking price %s", l.AskingPrice)
	require.True(t, l.MinPrice.Equal(l.AskingPrice.Mul(decimal.NewFromFloat(0.8)).Round(2)),
		"min price %s", l.MinPrice)
}

func TestRelistSupersedesOldListing(t *testing.T) {
	w := newTestWorld()

	first, err := w.market.ListPlayer(w.target, w.seller, football.Millions(90), football.Millions(70), TypePermanent)
	require.NoError(t, err)
	second, err := w.market.ListPlayer(w.target, w.seller, football.Millions(80), football.Millions(60), TypePermanent)
	require.NoError(t, err)

	require.False(t, first.Active, "old listing should be superseded")
	active, err := w.store.ActiveListing(w.target.ID)
	require.NoError(t, err)
	require.Equal(t, second.ID, active.ID)

	all, err := w.store.ActiveListings()
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestBidRejectedOutsideWindow(t *testing.T) {
	w := newTestWorld()
	w.cal.open = false

	n, msg, err := w.market.MakeTransferBid(w.target, w.buyer, football.Millions(50), TypePermanent)
	require.NoError(t, err)
	require.Nil(t, n)
	require.Equal(t, "Transfer window is closed", msg)
}

func TestFreeAgentBidIgnoresWindow(t *testing.T) {
	w := newTestWorld()
	w.cal.open = false

	n, _, err := w.market.MakeTransferBid(w.free, w.buyer, decimal.Zero, TypeFree)
	require.NoError(t, err)
	require.NotNil(t, n)
	require.Equal(t, StatusAgreed, n.Status)
	require.Nil(t, n.SellingClubID)
}

func TestBidRejectedOverBudget(t *testing.T) {
	w := newTestWorld()

	n, msg, err := w.market.MakeTransferBid(w.target, w.buyer, football.Millions(999), TypePermanent)
	require.NoError(t, err)
	require.Nil(t, n)
	require.Equal(t, "Insufficient transfer budget", msg)
}

func TestDuplicateBidReturnsExistingNegotiation(t *testing.T) {
	w := newTestWorld()

	first, _, err := w.market.MakeTransferBid(w.target, w.buyer, football.Millions(40), TypePermanent)
	require.NoError(t, err)
	second, msg, err := w.market.MakeTransferBid(w.target, w.buyer, football.Millions(45), TypePermanent)
	require.NoError(t, err)

	require.Same(t, first, second)
	require.Equal(t, "Negotiation already in progress", msg)
}

func TestBidMeetingAskingPriceAutoAgrees(t *testing.T) {
	w := newTestWorld()
	_, err := w.market.ListPlayer(w.target, w.seller, football.Millions(60), football.Millions(48), TypePermanent)
	require.NoError(t, err)

	n, msg, err := w.market.MakeTransferBid(w.target, w.buyer, football.Millions(60), TypePermanent)
	require.NoError(t, err)
	require.Equal(t, StatusAgreed, n.Status)
	require.Equal(t, "Bid accepted - asking price met", msg)
	require.True(t, n.AgreedFee.Equal(football.Millions(60)))
}

func TestNegotiateUpToMinPrice(t *testing.T) {
	w := newTestWorld()
	_, err := w.market.ListPlayer(w.target, w.seller, football.Millions(30), football.Millions(25), TypePermanent)
	require.NoError(t, err)

	n, _, err := w.market.MakeTransferBid(w.target, w.buyer, football.Millions(20), TypePermanent)
	require.NoError(t, err)
	require.Equal(t, StatusNegotiating, n.Status)

	agreed, _, err := w.market.NegotiateTransfer(n, football.Millions(23), false)
	require.NoError(t, err)
	require.False(t, agreed, "below min price should not close the deal")

	agreed, msg, err := w.market.NegotiateTransfer(n, football.Millions(26), false)
	require.NoError(t, err)
	require.True(t, agreed, msg)
	require.True(t, n.AgreedFee.Equal(football.Millions(26)))
}

func TestContractOfferRequiresAgreedFee(t *testing.T) {
	w := newTestWorld()
	n, _, err := w.market.MakeTransferBid(w.target, w.buyer, football.Millions(20), TypePermanent)
	require.NoError(t, err)

	offer, msg, err := w.market.MakeContractOffer(n, 4, decimal.Zero)
	require.NoError(t, err)
	require.Nil(t, offer)
	require.Equal(t, "Transfer fee not yet agreed", msg)
}

func TestSingleContractOfferPerNegotiation(t *testing.T) {
	w := newTestWorld()
	n := agreedNegotiation(w)
	require.NoError(t, w.store.SaveNegotiation(n))

	first, _, err := w.market.MakeContractOffer(n, 4, decimal.Zero)
	require.NoError(t, err)
	second, msg, err := w.market.MakeContractOffer(n, 5, decimal.Zero)
	require.NoError(t, err)

	require.Same(t, first, second)
	require.Equal(t, "Contract offer already exists", msg)
}

// completeDeal drives a transfer through fee, contract, and completion.
func completeDeal(t *testing.T, w *testWorld) *Negotiation {
	t.Helper()
	_, err := w.market.ListPlayer(w.target, w.seller, football.Millions(60), football.Millions(48), TypePermanent)
	require.NoError(t, err)
	n, _, err := w.market.MakeTransferBid(w.target, w.buyer, football.Millions(60), TypePermanent)
	require.NoError(t, err)
	require.Equal(t, StatusAgreed, n.Status)

	offer, _, err := w.market.MakeContractOffer(n, 4, decimal.Zero)
	require.NoError(t, err)
	if offer.Status != ContractAgreed {
		_, _, err = w.market.NegotiateContract(offer, offer.DemandedWage, decimal.Zero, nil)
		require.NoError(t, err)
	}
	require.Equal(t, ContractAgreed, offer.Status)

	ok, msg, err := w.market.CompleteTransfer(n)
	require.NoError(t, err)
	require.True(t, ok, msg)
	return n
}

func TestCompleteTransferMovesEverything(t *testing.T) {
	w := newTestWorld()
	sellerBefore := w.seller.TransferBudget
	buyerBefore := w.buyer.TransferBudget

	n := completeDeal(t, w)
	fee := n.AgreedFee

	require.Equal(t, StatusCompleted, n.Status)
	require.NotNil(t, n.Completed)

	// money conservation: buyer debit equals seller credit
	require.True(t, w.buyer.TransferBudget.Equal(buyerBefore.Sub(fee)))
	require.True(t, w.seller.TransferBudget.Equal(sellerBefore.Add(fee)))

	// the player moved and signed the negotiated terms
	require.NotNil(t, w.target.ClubID)
	require.Equal(t, w.buyer.ID, *w.target.ClubID)
	require.NotContains(t, w.seller.Squad, w.target)
	require.Contains(t, w.buyer.Squad, w.target)
	require.NotNil(t, w.target.Contract)
	require.True(t, w.target.Contract.WeeklyWage.IsPositive())

	// the listing is gone and history was written
	active, err := w.store.ActiveListing(w.target.ID)
	require.NoError(t, err)
	require.Nil(t, active)
	records, err := w.store.RecordsSince(w.cal.start)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.True(t, records[0].Fee.Equal(fee))
	require.True(t, records[0].TotalCost.GreaterThan(fee), "total cost should include bonus and agent fee")
}

func TestCompleteTransferWithoutContractChangesNothing(t *testing.T) {
	w := newTestWorld()
	n := agreedNegotiation(w)
	require.NoError(t, w.store.SaveNegotiation(n))

	sellerBefore := w.seller.TransferBudget
	buyerBefore := w.buyer.TransferBudget

	ok, msg, err := w.market.CompleteTransfer(n)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, "Contract terms not agreed", msg)

	require.Equal(t, StatusAgreed, n.Status)
	require.True(t, w.seller.TransferBudget.Equal(sellerBefore))
	require.True(t, w.buyer.TransferBudget.Equal(buyerBefore))
	require.Equal(t, w.seller.ID, *w.target.ClubID)
}

func TestCompleteTransferInsufficientFunds(t *testing.T) {
	w := newTestWorld()
	n := agreedNegotiation(w)
	require.NoError(t, w.store.SaveNegotiation(n))

	offer, _, err := w.market.MakeContractOffer(n, 4, decimal.Zero)
	require.NoError(t, err)
	if offer.Status != ContractAgreed {
		_, _, err = w.market.NegotiateContract(offer, offer.DemandedWage, decimal.Zero, nil)
		require.NoError(t, err)
	}

	// the budget collapsed between agreement and completion
	w.buyer.TransferBudget = decimal.NewFromInt(1)

	ok, msg, err := w.market.CompleteTransfer(n)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, "Insufficient funds to complete transfer", msg)
	require.Equal(t, w.seller.ID, *w.target.ClubID, "player must not move on a failed completion")
}

func TestFreeTransferSkipsBudgets(t *testing.T) {
	w := newTestWorld()
	buyerBefore := w.buyer.TransferBudget

	n, _, err := w.market.MakeTransferBid(w.free, w.buyer, decimal.Zero, TypeFree)
	require.NoError(t, err)
	offer, _, err := w.market.MakeContractOffer(n, 2, decimal.Zero)
	require.NoError(t, err)
	if offer.Status != ContractAgreed {
		_, _, err = w.market.NegotiateContract(offer, offer.DemandedWage, decimal.Zero, nil)
		require.NoError(t, err)
	}

	ok, _, err := w.market.CompleteTransfer(n)
	require.NoError(t, err)
	require.True(t, ok)

	require.True(t, w.buyer.TransferBudget.Equal(buyerBefore), "free transfers move no fee")
	require.Equal(t, w.buyer.ID, *w.free.ClubID)
}

func TestCloseWindowSweepsTheBoard(t *testing.T) {
	w := newTestWorld()
	_, err := w.market.ListPlayer(w.target, w.seller, decimal.Zero, decimal.Zero, TypePermanent)
	require.NoError(t, err)
	n, _, err := w.market.MakeTransferBid(w.target, w.buyer, football.Millions(20), TypePermanent)
	require.NoError(t, err)
	require.Equal(t, StatusNegotiating, n.Status)

	withdrawn, delisted, err := w.market.CloseWindow()
	require.NoError(t, err)
	require.Equal(t, 1, withdrawn)
	require.Equal(t, 1, delisted)
	require.Equal(t, StatusWithdrawn, n.Status)

	active, err := w.store.ActiveListings()
	require.NoError(t, err)
	require.Empty(t, active)
}

func TestCompleteTransferKeepsInjury(t *testing.T) {
	w := newTestWorld()
	w.target.Injury = &football.Injury{Severity: 6, Active: true}

	completeDeal(t, w)

	// Moving club does not heal anyone.
	require.NotNil(t, w.target.Injury)
	require.True(t, w.target.Injury.Active)
	require.Equal(t, 6, w.target.Injury.Severity)
}

func TestCloseWindowWithdrawsAgreedFeeWithoutContract(t *testing.T) {
	w := newTestWorld()
	_, err := w.market.ListPlayer(w.target, w.seller, football.Millions(60), football.Millions(48), TypePermanent)
	require.NoError(t, err)
	n, _, err := w.market.MakeTransferBid(w.target, w.buyer, football.Millions(60), TypePermanent)
	require.NoError(t, err)
	require.Equal(t, StatusAgreed, n.Status)

	withdrawn, _, err := w.market.CloseWindow()
	require.NoError(t, err)
	require.Equal(t, 1, withdrawn)
	require.Equal(t, StatusWithdrawn, n.Status)
}

func TestExpiredListingComesOffTheMarket(t *testing.T) {
	w := newTestWorld()
	l, err := w.market.ListPlayer(w.target, w.seller, football.Millions(60), football.Millions(48), TypePermanent)
	require.NoError(t, err)
	yesterday := testNow.AddDate(0, 0, -1)
	l.Expires = &yesterday
	require.NoError(t, w.store.SaveListing(l))

	got, err := w.market.ActiveListing(w.target.ID)
	require.NoError(t, err)
	require.Nil(t, got)
	require.False(t, l.Active, "expired listing stays active in the store")

	all, err := w.market.ActiveListings()
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestStatsSummarizeWindow(t *testing.T) {
	w := newTestWorld()
	completeDeal(t, w)

	stats, err := w.market.Stats()
	require.NoError(t, err)
	require.Equal(t, 1, stats.CompletedTransfers)
	require.True(t, stats.TotalSpending.Equal(football.Millions(60)))
	require.True(t, stats.AverageFee.Equal(football.Millions(60)))
	require.NotNil(t, stats.Biggest)
	require.Equal(t, "Marco Silva", stats.Biggest.PlayerName)
	require.Equal(t, "Buyer FC", stats.Biggest.ToClub)
}
