package transfer

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestOpeningBidFairStrategy(t *testing.T) {
	w := newTestWorld()
	fees := w.market.Fees()

	value := w.valuer.Value(w.target)
	bid := fees.OpeningBid(w.target, w.buyer, StrategyFair)

	want := value.Mul(decimal.NewFromFloat(0.9))
	// rounded to the nearest 0.1M
	if bid.Sub(want).Abs().GreaterThan(decimal.NewFromInt(50_000)) {
		t.Fatalf("fair opening bid got=%s want~%s", bid, want)
	}
	step := decimal.NewFromInt(100_000)
	if !bid.Mod(step).IsZero() {
		t.Fatalf("opening bid not rounded to 0.1M: %s", bid)
	}
}

func TestOpeningBidCappedByBudget(t *testing.T) {
	w := newTestWorld()
	w.buyer.TransferBudget = decimal.NewFromInt(10_000_000)

	bid := w.market.Fees().OpeningBid(w.target, w.buyer, StrategyDesperate)
	cap := w.buyer.TransferBudget.Mul(decimal.NewFromFloat(0.8))
	if bid.GreaterThan(cap) {
		t.Fatalf("opening bid %s exceeds budget cap %s", bid, cap)
	}
}

func TestCounterOfferConvergence(t *testing.T) {
	w := newTestWorld()
	fees := w.market.Fees()

	n := fees.Initiate(w.target, w.buyer, TypePermanent, decimal.Zero)
	value := w.valuer.Value(w.target)

	// a counter within 10% of valuation of the current offer closes the deal
	close := n.CurrentOffer.Add(value.Mul(decimal.NewFromFloat(0.05)))
	ok, msg := fees.CounterOffer(n, close, &OfferTerms{SellOnPercent: 10})
	if !ok {
		t.Fatalf("converging counter should be accepted: %s", msg)
	}
	if n.Status != StatusAgreed {
		t.Fatalf("status got=%s want=%s", n.Status, StatusAgreed)
	}
	if !n.AgreedFee.Equal(close) {
		t.Fatalf("agreed fee got=%s want=%s", n.AgreedFee, close)
	}
	if n.SellOnPercent != 10 {
		t.Fatalf("sell-on percent not captured: %.1f", n.SellOnPercent)
	}
}

func TestCounterOfferRejectsOverpricing(t *testing.T) {
	w := newTestWorld()
	fees := w.market.Fees()

	n := fees.Initiate(w.target, w.buyer, TypePermanent, decimal.Zero)
	value := w.valuer.Value(w.target)

	ok, _ := fees.CounterOffer(n, value.Mul(decimal.NewFromInt(2)), nil)
	if ok {
		t.Fatalf("counter at double valuation should not be accepted")
	}
	if n.Status != StatusNegotiating {
		t.Fatalf("negotiation should stay open, got %s", n.Status)
	}
}

func TestNegotiationBreaksDownAfterMaxRounds(t *testing.T) {
	w := newTestWorld()
	fees := w.market.Fees()

	n := fees.Initiate(w.target, w.buyer, TypePermanent, decimal.Zero)
	greedy := w.valuer.Value(w.target).Mul(decimal.NewFromInt(3))

	for n.Open() {
		fees.CounterOffer(n, greedy, nil)
		if n.Rounds > 20 {
			t.Fatalf("negotiation never terminated")
		}
	}
	if n.Status != StatusRejected {
		t.Fatalf("exhausted negotiation got=%s want=%s", n.Status, StatusRejected)
	}
	if n.Rounds != 10 {
		t.Fatalf("rounds at breakdown got=%d want=10", n.Rounds)
	}
}

func TestCounterOfferOnClosedNegotiationPanics(t *testing.T) {
	w := newTestWorld()
	fees := w.market.Fees()

	n := fees.Initiate(w.target, w.buyer, TypePermanent, decimal.Zero)
	n.agree(n.CurrentOffer)

	defer func() {
		if recover() == nil {
			t.Fatalf("counter on closed negotiation should panic")
		}
	}()
	fees.CounterOffer(n, decimal.NewFromInt(1), nil)
}

func TestOfferHistoryOrdering(t *testing.T) {
	w := newTestWorld()
	fees := w.market.Fees()

	n := fees.Initiate(w.target, w.buyer, TypePermanent, decimal.Zero)
	fees.CounterOffer(n, w.valuer.Value(w.target).Mul(decimal.NewFromInt(2)), nil)

	if len(n.OfferHistory) != 2 {
		t.Fatalf("history length got=%d want=2", len(n.OfferHistory))
	}
	for i, o := range n.OfferHistory {
		if o.Round != i {
			t.Fatalf("history entry %d has round %d", i, o.Round)
		}
	}
	if n.OfferHistory[0].From != FromBuyingClub || n.OfferHistory[1].From != FromSellingClub {
		t.Fatalf("history origins wrong: %+v", n.OfferHistory)
	}
}

func TestLoanTermsAcceptance(t *testing.T) {
	w := newTestWorld()
	fees := w.market.Fees()
	value := w.valuer.Value(w.target)

	n := fees.Initiate(w.target, w.buyer, TypeLoan, decimal.Zero)
	ok, _ := fees.NegotiateLoanTerms(n, value.Mul(decimal.NewFromFloat(0.01)), 100, decimal.Zero, false)
	if ok {
		t.Fatalf("token loan fee should not be accepted")
	}
	ok, _ = fees.NegotiateLoanTerms(n, value.Mul(decimal.NewFromFloat(0.06)), 40, decimal.Zero, false)
	if ok {
		t.Fatalf("low wage coverage should not be accepted")
	}
	ok, msg := fees.NegotiateLoanTerms(n, value.Mul(decimal.NewFromFloat(0.06)), 60, decimal.Zero, false)
	if !ok {
		t.Fatalf("fair loan terms should be accepted: %s", msg)
	}
	if n.Status != StatusAgreed {
		t.Fatalf("loan negotiation status got=%s want=%s", n.Status, StatusAgreed)
	}
}

func TestLoanTermsOnPermanentDeal(t *testing.T) {
	w := newTestWorld()
	fees := w.market.Fees()

	n := fees.Initiate(w.target, w.buyer, TypePermanent, decimal.Zero)
	if ok, _ := fees.NegotiateLoanTerms(n, decimal.NewFromInt(1_000_000), 60, decimal.Zero, false); ok {
		t.Fatalf("loan terms should be refused on a permanent deal")
	}
}
