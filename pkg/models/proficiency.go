package models

import (
	"fmt"
	"strings"
)

// Proficiency is how well a language is spoken, ordered from basic to native
type Proficiency string

const (
	ProficiencyBasic        Proficiency = "basic"
	ProficiencyIntermediate Proficiency = "intermediate"
	ProficiencyAdvanced     Proficiency = "advanced"
	ProficiencyFluent       Proficiency = "fluent"
	ProficiencyNative       Proficiency = "native"
)

var proficiencyOrder = []Proficiency{
	ProficiencyBasic,
	ProficiencyIntermediate,
	ProficiencyAdvanced,
	ProficiencyFluent,
	ProficiencyNative,
}

// Proficiencies returns every level, lowest first
func Proficiencies() []Proficiency {
	return append([]Proficiency(nil), proficiencyOrder...)
}

// Rank returns the position of p in the ordering, or -1 for unknown levels
func (p Proficiency) Rank() int {
	for i, level := range proficiencyOrder {
		if p == level {
			return i
		}
	}
	return -1
}

// Valid reports whether p is a known level
func (p Proficiency) Valid() bool {
	return p.Rank() >= 0
}

// ParseProficiency accepts a level name in any case
func ParseProficiency(s string) (Proficiency, error) {
	p := Proficiency(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown proficiency %q: must be one of %v", s, proficiencyOrder)
	}
	return p, nil
}
