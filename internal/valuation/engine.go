// Package valuation prices players from a multi-factor modifier chain.
// The calibration tables encode game balance and are tuned as a set; see
// the config package for the few knobs intended to move at runtime.
package valuation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/openclubsim/transfermarket/internal/football"
)

// Tier is one step of a threshold table: the multiplier applies when the
// measured quantity is at least Min.
type Tier struct {
	Min  int
	Mult float64
}

// Band is one step of a float threshold table.
type Band struct {
	Min  float64
	Mult float64
}

// Params carries every calibration constant of the valuation model.
type Params struct {
	// Base value in millions by positional role.
	BaseValues       map[football.Role]float64
	DefaultBaseValue float64

	// Age curve over discrete ages 16–35, with flat multipliers outside.
	AgeMultipliers map[int]float64
	AgeUnder16     float64
	AgeOver35      float64
	AgeFallback    float64

	// Ability tiers over the primary-position rating.
	AbilityTiers   []Tier
	AbilityFloor   float64

	// Potential gap bands, applied only up to PotentialMaxAge.
	PotentialMaxAge int
	PotentialTiers  []Tier

	// Form bands over fitness.
	FormBands []Band
	FormFloor float64

	// Contract bands over fractional years remaining.
	FreeAgentMod  float64
	ContractBands []Band
	ContractFloor float64

	// Injury severity tiers while an injury is active.
	InjuryTiers []Tier
	InjuryFloor float64

	// Nationality and versatility bonuses.
	MajorNations     []string
	MajorNationBonus float64
	VersatilityThree float64
	VersatilityTwo   float64
	VersatilityOne   float64
	VersatilityNone  float64

	// Market-wide scalars.
	MarketInflation  float64
	ActivityModifier float64

	// Clamp range in millions.
	MinValueMillions float64
	MaxValueMillions float64

	// Wage-demand model.
	AnnualWageFraction float64
	FeeFactorWeight    float64
	SeniorWageAge      int
	SeniorWagePremium  float64
	YouthWageAge       int
	YouthWageDiscount  float64
	AbilityWageNorm    float64

	// Release clause model.
	ReleaseClauseMultiplier float64
	YoungTalentClauseBonus  float64
	YoungTalentGap          int
}

// DefaultParams returns the tuned calibration. The values are intentional
// game balance; change them through config, not here.
func DefaultParams() Params {
	return Params{
		BaseValues: map[football.Role]float64{
			football.RoleGoalkeeper: 10.0,
			football.RoleDefender:   15.0,
			football.RoleMidfielder: 20.0,
			football.RoleForward:    25.0,
		},
		DefaultBaseValue: 15.0,

		AgeMultipliers: map[int]float64{
			16: 0.3, 17: 0.4, 18: 0.6, 19: 0.8, 20: 0.9,
			21: 1.0, 22: 1.1, 23: 1.2, 24: 1.3, 25: 1.4,
			26: 1.4, 27: 1.3, 28: 1.2, 29: 1.0, 30: 0.8,
			31: 0.6, 32: 0.4, 33: 0.3, 34: 0.2, 35: 0.15,
		},
		AgeUnder16:  0.2,
		AgeOver35:   0.1,
		AgeFallback: 0.5,

		AbilityTiers: []Tier{
			{90, 4.0}, {85, 3.0}, {80, 2.2}, {75, 1.6},
			{70, 1.2}, {65, 0.8}, {60, 0.5},
		},
		AbilityFloor: 0.3,

		PotentialMaxAge: 23,
		PotentialTiers: []Tier{
			{21, 1.8}, {16, 1.5}, {11, 1.3}, {6, 1.15},
		},

		FormBands: []Band{
			{95, 1.1}, {85, 1.05}, {70, 1.0}, {50, 0.9},
		},
		FormFloor: 0.8,

		FreeAgentMod: 0.1,
		ContractBands: []Band{
			{4, 1.0}, {3, 0.9}, {2, 0.7}, {1, 0.4},
		},
		ContractFloor: 0.15,

		InjuryTiers: []Tier{
			{8, 0.5}, {5, 0.7},
		},
		InjuryFloor: 0.9,

		MajorNations:     []string{"England", "Spain", "Germany", "Italy", "France"},
		MajorNationBonus: 1.1,
		VersatilityThree: 1.15,
		VersatilityTwo:   1.08,
		VersatilityOne:   1.0,
		VersatilityNone:  0.9,

		MarketInflation:  1.0,
		ActivityModifier: 1.0,

		MinValueMillions: 0.1,
		MaxValueMillions: 300.0,

		AnnualWageFraction: 0.25,
		FeeFactorWeight:    0.3,
		SeniorWageAge:      28,
		SeniorWagePremium:  1.2,
		YouthWageAge:       21,
		YouthWageDiscount:  0.8,
		AbilityWageNorm:    70.0,

		ReleaseClauseMultiplier: 1.5,
		YoungTalentClauseBonus:  1.3,
		YoungTalentGap:          10,
	}
}

// Breakdown records each factor of a valuation.
type Breakdown struct {
	BaseValue   float64
	Age         float64
	Ability     float64
	Potential   float64
	Form        float64
	Contract    float64
	Injury      float64
	Nationality float64
	Versatility float64
	Inflation   float64
	// FinalMillions is the clamped product of all factors, in millions.
	FinalMillions float64
}

// Engine computes market values. Pure and deterministic: the same player
// snapshot and reference date always yield the same value.
type Engine struct {
	params Params
	today  func() time.Time
}

// NewEngine creates a valuation engine. today anchors age and contract
// calculations; it must be supplied explicitly.
func NewEngine(params Params, today func() time.Time) *Engine {
	return &Engine{params: params, today: today}
}

// Params returns the engine's calibration.
func (e *Engine) Params() Params {
	return e.params
}

// Value returns the player's market value as a currency amount.
func (e *Engine) Value(p *football.Player) decimal.Decimal {
	m, _ := e.valueMillions(p)
	return football.Millions(m)
}

// ValueDetailed returns the market value together with the factor breakdown.
func (e *Engine) ValueDetailed(p *football.Player) (decimal.Decimal, Breakdown) {
	m, bd := e.valueMillions(p)
	return football.Millions(m), bd
}

func (e *Engine) valueMillions(p *football.Player) (float64, Breakdown) {
	now := e.today()

	base, ok := e.params.BaseValues[p.BestPosition().Role()]
	if !ok {
		base = e.params.DefaultBaseValue
	}

	bd := Breakdown{
		BaseValue:   base,
		Age:         e.ageMod(p.AgeOn(now)),
		Ability:     e.abilityMod(p),
		Potential:   e.potentialMod(p, now),
		Form:        e.formMod(p),
		Contract:    e.contractMod(p, now),
		Injury:      e.injuryMod(p),
		Nationality: e.nationalityMod(p),
		Versatility: e.versatilityMod(p),
		Inflation:   e.params.MarketInflation * e.params.ActivityModifier,
	}

	v := bd.BaseValue * bd.Age * bd.Ability * bd.Potential * bd.Form *
		bd.Contract * bd.Injury * bd.Nationality * bd.Versatility * bd.Inflation

	if v < e.params.MinValueMillions {
		v = e.params.MinValueMillions
	}
	if v > e.params.MaxValueMillions {
		v = e.params.MaxValueMillions
	}
	bd.FinalMillions = v
	return v, bd
}

func (e *Engine) ageMod(age int) float64 {
	if age < 16 {
		return e.params.AgeUnder16
	}
	if age > 35 {
		return e.params.AgeOver35
	}
	if m, ok := e.params.AgeMultipliers[age]; ok {
		return m
	}
	return e.params.AgeFallback
}

func (e *Engine) abilityMod(p *football.Player) float64 {
	overall := p.Overall()
	for _, t := range e.params.AbilityTiers {
		if overall >= t.Min {
			return t.Mult
		}
	}
	return e.params.AbilityFloor
}

func (e *Engine) potentialMod(p *football.Player, now time.Time) float64 {
	if p.AgeOn(now) > e.params.PotentialMaxAge {
		return 1.0
	}
	gap := p.Potential - p.Overall()
	for _, t := range e.params.PotentialTiers {
		if gap >= t.Min {
			return t.Mult
		}
	}
	return 1.0
}

func (e *Engine) formMod(p *football.Player) float64 {
	for _, b := range e.params.FormBands {
		if p.Fitness >= b.Min {
			return b.Mult
		}
	}
	return e.params.FormFloor
}

func (e *Engine) contractMod(p *football.Player, now time.Time) float64 {
	if p.Contract == nil {
		return e.params.FreeAgentMod
	}
	years := p.Contract.YearsRemaining(now)
	for _, b := range e.params.ContractBands {
		if years >= b.Min {
			return b.Mult
		}
	}
	return e.params.ContractFloor
}

func (e *Engine) injuryMod(p *football.Player) float64 {
	if !p.Injured() {
		return 1.0
	}
	for _, t := range e.params.InjuryTiers {
		if p.Injury.Severity >= t.Min {
			return t.Mult
		}
	}
	return e.params.InjuryFloor
}

func (e *Engine) nationalityMod(p *football.Player) float64 {
	for _, n := range e.params.MajorNations {
		if p.Nationality == n {
			return e.params.MajorNationBonus
		}
	}
	return 1.0
}

func (e *Engine) versatilityMod(p *football.Player) float64 {
	switch n := len(p.Positions); {
	case n >= 3:
		return e.params.VersatilityThree
	case n == 2:
		return e.params.VersatilityTwo
	case n == 1:
		return e.params.VersatilityOne
	}
	return e.params.VersatilityNone
}

// EstimateWageDemand estimates the weekly wage a player will ask for given
// the transfer fee being paid for them.
func (e *Engine) EstimateWageDemand(p *football.Player, transferFee decimal.Decimal) decimal.Decimal {
	valueMillions, _ := e.valueMillions(p)
	feeMillions := football.InMillions(transferFee)

	// A richer fee drags wages up; a cut-price deal drags them down.
	feeFactor := 1.0 + (feeMillions/valueMillions-1.0)*e.params.FeeFactorWeight

	baseWage := valueMillions * 1_000_000 * e.params.AnnualWageFraction / 52

	now := e.today()
	ageFactor := 1.0
	if age := p.AgeOn(now); age >= e.params.SeniorWageAge {
		ageFactor = e.params.SeniorWagePremium
	} else if age <= e.params.YouthWageAge {
		ageFactor = e.params.YouthWageDiscount
	}

	abilityFactor := float64(p.Overall()) / e.params.AbilityWageNorm

	return decimal.NewFromFloat(baseWage * feeFactor * ageFactor * abilityFactor).Round(2)
}

// ReleaseClause suggests a buyout price at the given multiple of market
// value. Pass 0 to use the calibrated default multiplier. Young players
// still far from their ceiling get a premium.
func (e *Engine) ReleaseClause(p *football.Player, multiplier float64) decimal.Decimal {
	if multiplier <= 0 {
		multiplier = e.params.ReleaseClauseMultiplier
	}
	if p.AgeOn(e.today()) <= e.params.PotentialMaxAge &&
		p.Potential-p.Overall() > e.params.YoungTalentGap {
		multiplier *= e.params.YoungTalentClauseBonus
	}
	m, _ := e.valueMillions(p)
	return football.Millions(m * multiplier)
}
