package football

import (
	"time"

	"github.com/google/uuid"
)

// Injury describes a player's current injury state.
// Severity runs 0–10; anything at 8 or above is considered serious.
type Injury struct {
	Severity int
	Active   bool
}

// Player is a valued entity owned by the football domain. The transfer
// engine treats it as read-only except for club and contract reassignment,
// which happens only inside a completed transfer.
type Player struct {
	ID          uuid.UUID
	Name        string
	Nationality string
	BirthDate   time.Time

	// Positions the player can cover, primary first. Ratings holds the
	// 0–100 ability rating for each eligible position.
	Positions []Position
	Ratings   map[Position]int

	Potential int     // Peak ability ceiling, 0–100
	Fitness   float64 // 0–100, proxy for current form

	ClubID   *uuid.UUID // nil = free agent
	Contract *Contract
	Injury   *Injury
}

// AgeOn returns the player's age in whole years on the given date.
func (p *Player) AgeOn(on time.Time) int {
	age := on.Year() - p.BirthDate.Year()
	if on.YearDay() < p.BirthDate.YearDay() {
		age--
	}
	if age < 0 {
		age = 0
	}
	return age
}

// PrimaryPosition returns the player's first listed position.
func (p *Player) PrimaryPosition() Position {
	if len(p.Positions) == 0 {
		return CM
	}
	return p.Positions[0]
}

// BestPosition returns the eligible position with the highest rating.
func (p *Player) BestPosition() Position {
	best := p.PrimaryPosition()
	bestRating := p.RatingAt(best)
	for _, pos := range p.Positions {
		if r := p.RatingAt(pos); r > bestRating {
			best, bestRating = pos, r
		}
	}
	return best
}

// RatingAt returns the player's rating at a position, zero when the player
// does not cover it.
func (p *Player) RatingAt(pos Position) int {
	return p.Ratings[pos]
}

// Overall returns the player's rating at their primary position.
func (p *Player) Overall() int {
	return p.RatingAt(p.PrimaryPosition())
}

// IsFreeAgent reports whether the player is without a club.
func (p *Player) IsFreeAgent() bool {
	return p.ClubID == nil
}

// Injured reports whether the player carries an active injury.
func (p *Player) Injured() bool {
	return p.Injury != nil && p.Injury.Active
}
