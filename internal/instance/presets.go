package instance

import (
	"fmt"
	"strings"
)

// Size presets of the scalability tables.
var (
	Small  = Size{Name: "small", Members: 25, Defences: 20, Days: 15, Slots: 16, Rooms: 3, Roles: 3, Subjects: 15, D: 2, Candidates: 64}
	Medium = Size{Name: "medium", Members: 38, Defences: 30, Days: 15, Slots: 16, Rooms: 3, Roles: 3, Subjects: 15, D: 2, Candidates: 96}
	Large  = Size{Name: "large", Members: 50, Defences: 40, Days: 15, Slots: 16, Rooms: 3, Roles: 3, Subjects: 15, D: 2, Candidates: 128}
)

// SizeByName resolves "small", "medium" or "large".
func SizeByName(name string) (Size, error) {
	switch strings.ToLower(name) {
	case "small":
		return Small, nil
	case "medium", "med":
		return Medium, nil
	case "large":
		return Large, nil
	default:
		return Size{}, fmt.Errorf("unknown size %q (want small, medium or large)", name)
	}
}

// NewKnobs builds knobs from p(v=[1]) and p(h=[1]), the form the tables use.
func NewKnobs(fixedRoles int, pLik0, pMkp0, pV1, pH1 float64) Knobs {
	return Knobs{
		FixedRoles:    fixedRoles,
		PLik0:         pLik0,
		PMkp0:         pMkp0,
		PV21:          1 - pV1,
		PH21:          1 - pH1,
		RiqPerMember:  3,
		TiqPerDefence: 3,
	}
}

// GridFixed2 holds the knob rows with two fixed roles.
var GridFixed2 = []Knobs{
	NewKnobs(2, 0.82, 0.86, 0.8, 0.8),
	NewKnobs(2, 0.82, 0.86, 0.7, 0.7),
	NewKnobs(2, 0.82, 0.8, 0.8, 0.8),
	NewKnobs(2, 0.82, 0.8, 0.7, 0.7),
	NewKnobs(2, 0.78, 0.86, 0.8, 0.8),
	NewKnobs(2, 0.78, 0.86, 0.7, 0.7),
	NewKnobs(2, 0.78, 0.8, 0.8, 0.8),
	NewKnobs(2, 0.78, 0.8, 0.7, 0.7),
}

// GridFixed1 holds the knob rows with one fixed role.
var GridFixed1 = []Knobs{
	NewKnobs(1, 0.82, 0.86, 0.8, 0.8),
	NewKnobs(1, 0.82, 0.86, 0.7, 0.7),
	NewKnobs(1, 0.82, 0.8, 0.8, 0.8),
	NewKnobs(1, 0.82, 0.8, 0.7, 0.7),
	NewKnobs(1, 0.86, 0.86, 0.8, 0.8),
	NewKnobs(1, 0.86, 0.86, 0.7, 0.7),
	NewKnobs(1, 0.86, 0.8, 0.8, 0.8),
	NewKnobs(1, 0.86, 0.8, 0.7, 0.7),
}

// GridByName resolves "fixed2" or "fixed1".
func GridByName(name string) ([]Knobs, error) {
	switch strings.ToLower(name) {
	case "fixed2":
		return GridFixed2, nil
	case "fixed1":
		return GridFixed1, nil
	default:
		return nil, fmt.Errorf("unknown knob grid %q (want fixed2 or fixed1)", name)
	}
}
