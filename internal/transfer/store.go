package transfer

import (
	"time"

	"github.com/google/uuid"
)

// Store persists market state. Lookups that find nothing return nil with a
// nil error; errors are reserved for storage failure.
type Store interface {
	SaveListing(l *Listing) error
	ActiveListing(playerID uuid.UUID) (*Listing, error)
	ActiveListings() ([]*Listing, error)
	DeactivateListings(playerID uuid.UUID) error

	SaveNegotiation(n *Negotiation) error
	OpenNegotiation(playerID, buyerID uuid.UUID) (*Negotiation, error)
	NegotiationsByStatus(s Status) ([]*Negotiation, error)

	SaveContract(o *ContractOffer) error
	ContractForNegotiation(negotiationID uuid.UUID) (*ContractOffer, error)

	AppendRecord(r *TransferRecord) error
	RecordsSince(t time.Time) ([]*TransferRecord, error)
}

// MemoryStore keeps all market state in process. Slices preserve insertion
// order so iteration is deterministic.
type MemoryStore struct {
	listings     []*Listing
	negotiations []*Negotiation
	contracts    []*ContractOffer
	records      []*TransferRecord

	listingIndex     map[uuid.UUID]*Listing
	negotiationIndex map[uuid.UUID]*Negotiation
	contractIndex    map[uuid.UUID]*ContractOffer
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		listingIndex:     make(map[uuid.UUID]*Listing),
		negotiationIndex: make(map[uuid.UUID]*Negotiation),
		contractIndex:    make(map[uuid.UUID]*ContractOffer),
	}
}

func (m *MemoryStore) SaveListing(l *Listing) error {
	if _, ok := m.listingIndex[l.ID]; !ok {
		m.listings = append(m.listings, l)
		m.listingIndex[l.ID] = l
	}
	return nil
}

func (m *MemoryStore) ActiveListing(playerID uuid.UUID) (*Listing, error) {
	for _, l := range m.listings {
		if l.Active && l.PlayerID == playerID {
			return l, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) ActiveListings() ([]*Listing, error) {
	var out []*Listing
	for _, l := range m.listings {
		if l.Active {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *MemoryStore) DeactivateListings(playerID uuid.UUID) error {
	for _, l := range m.listings {
		if l.PlayerID == playerID {
			l.Active = false
		}
	}
	return nil
}

func (m *MemoryStore) SaveNegotiation(n *Negotiation) error {
	if _, ok := m.negotiationIndex[n.ID]; !ok {
		m.negotiations = append(m.negotiations, n)
		m.negotiationIndex[n.ID] = n
	}
	return nil
}

func (m *MemoryStore) OpenNegotiation(playerID, buyerID uuid.UUID) (*Negotiation, error) {
	for _, n := range m.negotiations {
		if n.Open() && n.PlayerID == playerID && n.BuyingClubID == buyerID {
			return n, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) NegotiationsByStatus(s Status) ([]*Negotiation, error) {
	var out []*Negotiation
	for _, n := range m.negotiations {
		if n.Status == s {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *MemoryStore) SaveContract(o *ContractOffer) error {
	if _, ok := m.contractIndex[o.ID]; !ok {
		m.contracts = append(m.contracts, o)
		m.contractIndex[o.ID] = o
	}
	return nil
}

func (m *MemoryStore) ContractForNegotiation(negotiationID uuid.UUID) (*ContractOffer, error) {
	for _, o := range m.contracts {
		if o.NegotiationID == negotiationID {
			return o, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) AppendRecord(r *TransferRecord) error {
	m.records = append(m.records, r)
	return nil
}

func (m *MemoryStore) RecordsSince(t time.Time) ([]*TransferRecord, error) {
	var out []*TransferRecord
	for _, r := range m.records {
		if !r.Date.Before(t) {
			out = append(out, r)
		}
	}
	return out, nil
}
