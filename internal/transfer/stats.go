package transfer

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BiggestDeal summarises the largest completed transfer of the window.
type BiggestDeal struct {
	PlayerName string
	ToClub     string
	Fee        decimal.Decimal
}

// Stats is a snapshot of market activity for the current window.
type Stats struct {
	ActiveListings     int
	OpenNegotiations   int
	CompletedTransfers int
	TotalSpending      decimal.Decimal
	AverageFee         decimal.Decimal
	Biggest            *BiggestDeal
}

// Stats summarises the market: live listings, open negotiations, and the
// completed deals since the current window opened. Outside a window the
// completed figures cover the whole history.
func (m *Market) Stats() (Stats, error) {
	s := Stats{
		TotalSpending: decimal.Zero,
		AverageFee:    decimal.Zero,
	}

	listings, err := m.store.ActiveListings()
	if err != nil {
		return s, fmt.Errorf("loading listings: %w", err)
	}
	s.ActiveListings = len(listings)

	open, err := m.store.NegotiationsByStatus(StatusNegotiating)
	if err != nil {
		return s, fmt.Errorf("loading negotiations: %w", err)
	}
	s.OpenNegotiations = len(open)

	since := time.Time{}
	if start, ok := m.cal.WindowStart(m.cal.Today()); ok {
		since = start
	}
	records, err := m.store.RecordsSince(since)
	if err != nil {
		return s, fmt.Errorf("loading transfer history: %w", err)
	}
	s.CompletedTransfers = len(records)
	if len(records) == 0 {
		return s, nil
	}

	var biggest *TransferRecord
	for _, r := range records {
		s.TotalSpending = s.TotalSpending.Add(r.Fee)
		if biggest == nil || r.Fee.GreaterThan(biggest.Fee) {
			biggest = r
		}
	}
	s.AverageFee = s.TotalSpending.Div(decimal.NewFromInt(int64(len(records)))).Round(2)

	deal := &BiggestDeal{Fee: biggest.Fee}
	if p := m.dir.PlayerByID(biggest.PlayerID); p != nil {
		deal.PlayerName = p.Name
	}
	if c := m.dir.ClubByID(biggest.ToClubID); c != nil {
		deal.ToClub = c.Name
	}
	s.Biggest = deal
	return s, nil
}
