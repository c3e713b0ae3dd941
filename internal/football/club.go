package football

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Club owns its roster exclusively: a player belongs to at most one club at
// a time, and roster membership changes only through AddPlayer/RemovePlayer.
type Club struct {
	ID             uuid.UUID
	Name           string
	Country        string
	TransferBudget decimal.Decimal
	WageBudget     decimal.Decimal
	Reputation     int // 0–100
	Squad          []*Player
}

// AddPlayer places a player on the roster and points the player back at the
// club.
func (c *Club) AddPlayer(p *Player) {
	id := c.ID
	p.ClubID = &id
	c.Squad = append(c.Squad, p)
}

// RemovePlayer takes a player off the roster and clears their club
// reference. Returns the removed player, or nil if not rostered.
func (c *Club) RemovePlayer(id uuid.UUID) *Player {
	for i, p := range c.Squad {
		if p.ID == id {
			c.Squad = append(c.Squad[:i], c.Squad[i+1:]...)
			p.ClubID = nil
			return p
		}
	}
	return nil
}

// CommittedWages sums the weekly wages of the current roster.
func (c *Club) CommittedWages() decimal.Decimal {
	total := decimal.Zero
	for _, p := range c.Squad {
		if p.Contract != nil {
			total = total.Add(p.Contract.WeeklyWage)
		}
	}
	return total
}

// Directory is the read-only world view the search engine and market run
// against: every club and every player, rostered or free.
type Directory struct {
	clubs   []*Club
	players []*Player

	clubIndex   map[uuid.UUID]*Club
	playerIndex map[uuid.UUID]*Player
}

// NewDirectory builds a directory over the given clubs and free agents.
// Rostered players are collected from club squads.
func NewDirectory(clubs []*Club, freeAgents []*Player) *Directory {
	d := &Directory{
		clubs:       clubs,
		clubIndex:   make(map[uuid.UUID]*Club, len(clubs)),
		playerIndex: make(map[uuid.UUID]*Player),
	}
	for _, c := range clubs {
		d.clubIndex[c.ID] = c
		for _, p := range c.Squad {
			d.players = append(d.players, p)
			d.playerIndex[p.ID] = p
		}
	}
	for _, p := range freeAgents {
		d.players = append(d.players, p)
		d.playerIndex[p.ID] = p
	}
	return d
}

// Players returns every known player.
func (d *Directory) Players() []*Player {
	return d.players
}

// Clubs returns every known club.
func (d *Directory) Clubs() []*Club {
	return d.clubs
}

// PlayerByID looks up a player, nil when unknown.
func (d *Directory) PlayerByID(id uuid.UUID) *Player {
	return d.playerIndex[id]
}

// ClubByID looks up a club, nil when unknown.
func (d *Directory) ClubByID(id uuid.UUID) *Club {
	return d.clubIndex[id]
}

// ClubOf returns the club a player is rostered with, nil for free agents.
func (d *Directory) ClubOf(p *Player) *Club {
	if p.ClubID == nil {
		return nil
	}
	return d.clubIndex[*p.ClubID]
}
