// Package football holds the externally-owned domain model the transfer
// engine operates on: players, clubs, contracts and positions. The engine
// reads freely but mutates only through market completion.
package football

import "strings"

// Role is the coarse positional group a player belongs to.
type Role uint8

const (
	RoleGoalkeeper Role = iota
	RoleDefender
	RoleMidfielder
	RoleForward
)

// Position is a detailed tactical position, used by search and squad planning.
type Position uint8

const (
	GK Position = iota
	CB
	LB
	RB
	LWB
	RWB
	CDM
	CM
	CAM
	LM
	RM
	LW
	RW
	CF
	ST
)

// NumPositions is the total number of detailed positions.
const NumPositions = 15

var positionRoles = [NumPositions]Role{
	GK:  RoleGoalkeeper,
	CB:  RoleDefender,
	LB:  RoleDefender,
	RB:  RoleDefender,
	LWB: RoleDefender,
	RWB: RoleDefender,
	CDM: RoleMidfielder,
	CM:  RoleMidfielder,
	CAM: RoleMidfielder,
	LM:  RoleMidfielder,
	RM:  RoleMidfielder,
	LW:  RoleForward,
	RW:  RoleForward,
	CF:  RoleForward,
	ST:  RoleForward,
}

var positionNames = [NumPositions]string{
	GK:  "GK",
	CB:  "CB",
	LB:  "LB",
	RB:  "RB",
	LWB: "LWB",
	RWB: "RWB",
	CDM: "CDM",
	CM:  "CM",
	CAM: "CAM",
	LM:  "LM",
	RM:  "RM",
	LW:  "LW",
	RW:  "RW",
	CF:  "CF",
	ST:  "ST",
}

// Role returns the coarse group for a detailed position.
func (p Position) Role() Role {
	if int(p) >= NumPositions {
		return RoleMidfielder
	}
	return positionRoles[p]
}

func (p Position) String() string {
	if int(p) >= NumPositions {
		return "??"
	}
	return positionNames[p]
}

// ParsePosition maps a position name ("ST", "cm") back to its Position.
func ParsePosition(s string) (Position, bool) {
	for i, name := range positionNames {
		if strings.EqualFold(s, name) {
			return Position(i), true
		}
	}
	return 0, false
}

func (r Role) String() string {
	switch r {
	case RoleGoalkeeper:
		return "GK"
	case RoleDefender:
		return "DF"
	case RoleMidfielder:
		return "MF"
	case RoleForward:
		return "FW"
	}
	return "??"
}
