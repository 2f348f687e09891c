package comparison

import "fmt"

// Strength is a judgment on the Saaty fundamental scale
type Strength int

// NoJudgment marks a pair nobody has rated yet
const NoJudgment Strength = 0

const (
	MinStrength Strength = 1
	MaxStrength Strength = 9
)

// Valid reports whether s is on the 1-9 scale
func (s Strength) Valid() bool {
	return s >= MinStrength && s <= MaxStrength
}

// Preference is one option of the fixed scale a UI presents
type Preference struct {
	Value       Strength `json:"value"`
	Description string   `json:"description"`
}

var scale = []Preference{
	{1, "1: Equal importance"},
	{2, "2: Equal importance"},
	{3, "3: Moderate importance"},
	{4, "4: Moderate importance"},
	{5, "5: Strong importance"},
	{6, "6: Strong importance"},
	{7, "7: Very strong importance"},
	{8, "8: Very strong importance"},
	{9, "9: Extreme importance"},
}

// Scale returns the nine scale options in ascending order
func Scale() []Preference {
	out := make([]Preference, len(scale))
	copy(out, scale)
	return out
}

// Label returns the display label for s
func (s Strength) Label() string {
	if !s.Valid() {
		return fmt.Sprintf("%d: invalid", int(s))
	}
	return scale[s-1].Description
}
