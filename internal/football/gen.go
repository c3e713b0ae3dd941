// Squad generation: deterministic seeded players and clubs for the demo
// binary and tests.
package football

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Generator creates players and clubs from a fixed seed so simulated worlds
// are reproducible.
type Generator struct {
	rng *rand.Rand
	now time.Time
}

// NewGenerator creates a generator. The reference date anchors birth dates so
// generated ages are stable regardless of wall-clock time.
func NewGenerator(seed int64, now time.Time) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: now,
	}
}

var firstNames = []string{
	"Alex", "Bruno", "Carlos", "Diego", "Emil", "Felix", "Gabriel", "Hugo",
	"Ivan", "Jonas", "Kylian", "Luca", "Marco", "Nico", "Oscar", "Pedro",
	"Rafael", "Sergio", "Thiago", "Viktor",
}

var lastNames = []string{
	"Almeida", "Bergmann", "Costa", "Dubois", "Eriksen", "Ferreira",
	"Gonzalez", "Hoffmann", "Iversen", "Jansen", "Kovac", "Larsen",
	"Moreau", "Novak", "Oliveira", "Petrov", "Rossi", "Silva", "Torres",
	"Weber",
}

var nations = []string{
	"England", "Spain", "Germany", "Italy", "France", "Brazil", "Argentina",
	"Portugal", "Netherlands", "Belgium",
}

// squadTemplate is the positional spread of a generated squad.
var squadTemplate = []Position{
	GK, GK, GK,
	CB, CB, CB, CB, LB, LB, RB, RB,
	CDM, CDM, CM, CM, CM, CM, CAM, CAM,
	LW, LW, RW, RW, ST, ST, ST,
}

// secondaryFor maps positions to a plausible secondary position.
var secondaryFor = map[Position]Position{
	CB: CDM, LB: LWB, RB: RWB, CDM: CM, CM: CAM, CAM: CM,
	LW: LM, RW: RM, ST: CF, CF: ST, LM: LW, RM: RW,
}

// Player generates one player at the given position around a target ability.
func (g *Generator) Player(pos Position, targetAbility int) *Player {
	age := 17 + g.rng.Intn(18) // 17–34
	ability := targetAbility - 5 + g.rng.Intn(11)
	if ability < 40 {
		ability = 40
	}
	if ability > 95 {
		ability = 95
	}

	potential := ability
	if age <= 23 {
		potential += g.rng.Intn(18)
		if potential > 99 {
			potential = 99
		}
	}

	positions := []Position{pos}
	ratings := map[Position]int{pos: ability}
	if sec, ok := secondaryFor[pos]; ok && g.rng.Float64() < 0.4 {
		positions = append(positions, sec)
		ratings[sec] = ability - 3 - g.rng.Intn(5)
	}

	birth := g.now.AddDate(-age, 0, -g.rng.Intn(330))

	return &Player{
		ID:          uuid.New(),
		Name:        fmt.Sprintf("%s %s", firstNames[g.rng.Intn(len(firstNames))], lastNames[g.rng.Intn(len(lastNames))]),
		Nationality: nations[g.rng.Intn(len(nations))],
		BirthDate:   birth,
		Positions:   positions,
		Ratings:     ratings,
		Potential:   potential,
		Fitness:     70 + g.rng.Float64()*30,
	}
}

// Club generates a club with a full squad around the given ability tier and
// transfer budget (in millions). Every squad player receives a contract.
func (g *Generator) Club(name, country string, tier int, budgetMillions float64) *Club {
	club := &Club{
		ID:             uuid.New(),
		Name:           name,
		Country:        country,
		TransferBudget: Millions(budgetMillions),
		WageBudget:     Millions(budgetMillions / 50),
		Reputation:     tier,
	}

	for _, pos := range squadTemplate {
		p := g.Player(pos, tier)
		years := 1 + g.rng.Intn(4)
		p.Contract = &Contract{
			WeeklyWage: Millions(float64(p.Overall()) / 2000), // rough wage scale
			Started:    g.now.AddDate(-1, 0, 0),
			Ends:       g.now.AddDate(years, 0, 0),
		}
		club.AddPlayer(p)
	}

	return club
}

// FreeAgents generates n players without clubs or contracts.
func (g *Generator) FreeAgents(n int, targetAbility int) []*Player {
	agents := make([]*Player, 0, n)
	for i := 0; i < n; i++ {
		pos := squadTemplate[g.rng.Intn(len(squadTemplate))]
		agents = append(agents, g.Player(pos, targetAbility))
	}
	return agents
}
