package transfer

import (
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/openclubsim/transfermarket/internal/football"
)

// Deal is one completed deadline-day signing.
type Deal struct {
	PlayerName string
	FromClub   string
	ToClub     string
	Fee        decimal.Decimal
}

// SimulateDeadlineDay runs a burst of last-minute activity: every club with
// budget to spend scans the listed players and free agents and chases up to
// a couple of signings. Clubs act in club-ID order so the same world state
// always produces the same deals.
func (m *Market) SimulateDeadlineDay() ([]Deal, error) {
	if !m.cal.IsWindowOpen(m.cal.Today()) {
		return nil, nil
	}

	clubs := make([]*football.Club, 0, len(m.dir.Clubs()))
	clubs = append(clubs, m.dir.Clubs()...)
	sort.Slice(clubs, func(i, j int) bool {
		return clubs[i].ID.String() < clubs[j].ID.String()
	})

	minBudget := football.Millions(m.params.DeadlineMinBudgetMillions)
	var deals []Deal
	for _, club := range clubs {
		if club.TransferBudget.LessThanOrEqual(minBudget) {
			continue
		}
		if !m.clubNeedsSignings(club) {
			continue
		}
		targets, err := m.deadlineTargets(club)
		if err != nil {
			return deals, err
		}
		signed := 0
		for _, target := range targets {
			if signed >= m.params.MaxDeadlineSignings {
				break
			}
			deal, err := m.attemptDeadlineSigning(club, target)
			if err != nil {
				return deals, err
			}
			if deal != nil {
				deals = append(deals, *deal)
				signed++
			}
		}
	}
	if len(deals) > 0 {
		slog.Info("deadline day done", "deals", len(deals))
	}
	return deals, nil
}

// clubNeedsSignings keeps fully stocked squads out of the scramble.
func (m *Market) clubNeedsSignings(club *football.Club) bool {
	return len(club.Squad) < 28
}

// deadlineTargets gathers affordable listed players first, then free
// agents, cheapest value for money first.
func (m *Market) deadlineTargets(club *football.Club) ([]Candidate, error) {
	listed, err := m.search.Search(SearchCriteria{
		ListedOnly: true,
		MaxValue:   club.TransferBudget.Mul(decimal.NewFromFloat(0.5)),
		SortBy:     SortByValueForMoney,
		Limit:      10,
	}, club)
	if err != nil {
		return nil, err
	}
	free, err := m.search.Search(SearchCriteria{
		FreeAgentsOnly: true,
		SortBy:         SortByOverall,
		Limit:          5,
	}, club)
	if err != nil {
		return nil, err
	}
	return append(listed, free...), nil
}

// attemptDeadlineSigning pushes one target through bid, contract, and
// completion. Market state may have moved since the search, so every
// precondition is checked again just before acting.
func (m *Market) attemptDeadlineSigning(club *football.Club, target Candidate) (*Deal, error) {
	player := m.dir.PlayerByID(target.Player.ID)
	if player == nil {
		return nil, nil
	}
	if player.ClubID != nil && *player.ClubID == club.ID {
		return nil, nil
	}

	var bid decimal.Decimal
	typ := TypePermanent
	fromClub := ""
	switch {
	case player.IsFreeAgent():
		typ = TypeFree
	default:
		listing, err := m.ActiveListing(player.ID)
		if err != nil {
			return nil, err
		}
		if listing == nil || !listing.Active {
			return nil, nil
		}
		bid = listing.AskingPrice
		if from := m.dir.ClubOf(player); from != nil {
			fromClub = from.Name
		}
	}
	if bid.GreaterThan(club.TransferBudget) {
		return nil, nil
	}

	n, _, err := m.MakeTransferBid(player, club, bid, typ)
	if err != nil {
		return nil, err
	}
	if n == nil || n.Status != StatusAgreed {
		return nil, nil
	}
	offer, _, err := m.MakeContractOffer(n, 3, decimal.Zero)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, nil
	}
	if offer.Status != ContractAgreed {
		// no time to haggle: meet the wage demand
		if _, _, err := m.NegotiateContract(offer, offer.DemandedWage, decimal.Zero, nil); err != nil {
			return nil, err
		}
	}
	if offer.Status != ContractAgreed {
		return nil, nil
	}
	done, _, err := m.CompleteTransfer(n)
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, nil
	}
	return &Deal{
		PlayerName: player.Name,
		FromClub:   fromClub,
		ToClub:     club.Name,
		Fee:        n.AgreedFee,
	}, nil
}
