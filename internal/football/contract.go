package football

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contract is a player's employment agreement with a club.
type Contract struct {
	WeeklyWage    decimal.Decimal
	Started       time.Time
	Ends          time.Time
	SigningBonus  decimal.Decimal
	ReleaseClause decimal.Decimal // zero = no clause
}

// YearsRemaining returns the fractional years left on the contract at the
// given date, never negative.
func (c *Contract) YearsRemaining(on time.Time) float64 {
	if c.Ends.Before(on) {
		return 0
	}
	days := c.Ends.Sub(on).Hours() / 24
	return days / 365.25
}

// Expiring reports whether less than a year remains at the given date.
func (c *Contract) Expiring(on time.Time) bool {
	return c.YearsRemaining(on) < 1
}
