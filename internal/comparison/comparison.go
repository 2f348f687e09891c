package comparison

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrIncompleteJudgments = errors.New("not all preferences set")
	ErrInvalidStrength     = errors.New("strength outside the 1-9 scale")
	ErrInvalidDirection    = errors.New("invalid direction")
	ErrUnknownPair         = errors.New("pair is not part of the comparison set")
)

// Direction says which node of a pair is judged more important
type Direction int

const (
	// AOverB gives NodeA the raw strength and NodeB its reciprocal
	AOverB Direction = iota
	// BOverA swaps the assignment
	BOverA
)

func (d Direction) String() string {
	switch d {
	case AOverB:
		return "a_over_b"
	case BOverA:
		return "b_over_a"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// MarshalJSON encodes the direction as its string tag
func (d Direction) MarshalJSON() ([]byte, error) {
	if d != AOverB && d != BOverA {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, int(d))
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "a_over_b" or "b_over_a"
func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDirection, data)
	}
	switch s {
	case "a_over_b", "":
		*d = AOverB
	case "b_over_a":
		*d = BOverA
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
	return nil
}

// PairedComparison is one judgment between two siblings. A zero Strength
// means the judgment has not been made yet.
type PairedComparison struct {
	NodeA     string    `json:"node_a"`
	NodeB     string    `json:"node_b"`
	Direction Direction `json:"direction"`
	Strength  Strength  `json:"strength,omitempty"`
}

// Judged reports whether a strength has been supplied
func (c PairedComparison) Judged() bool {
	return c.Strength != NoJudgment
}

// Set is the full list of judgments for one parent
type Set []PairedComparison

// Build enumerates every unordered pair of children exactly once: outer
// index ascending, inner index above it ascending.
func Build(children []string) Set {
	n := len(children)
	set := make(Set, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			set = append(set, PairedComparison{
				NodeA:     children[i],
				NodeB:     children[j],
				Direction: AOverB,
			})
		}
	}
	return set
}

// Complete reports whether every pair has a strength
func (s Set) Complete() bool {
	for _, c := range s {
		if !c.Judged() {
			return false
		}
	}
	return true
}

// Pending returns the pairs still lacking a strength
func (s Set) Pending() Set {
	var pending Set
	for _, c := range s {
		if !c.Judged() {
			pending = append(pending, c)
		}
	}
	return pending
}

// Judge records a judgment for the pair (a, b), in either order. Passing
// the names reversed flips the direction so the judgment keeps its meaning.
func (s Set) Judge(a, b string, dir Direction, strength Strength) error {
	if !strength.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidStrength, int(strength))
	}
	if dir != AOverB && dir != BOverA {
		return fmt.Errorf("%w: %d", ErrInvalidDirection, int(dir))
	}
	for i := range s {
		switch {
		case s[i].NodeA == a && s[i].NodeB == b:
		case s[i].NodeA == b && s[i].NodeB == a:
			dir = 1 - dir
		default:
			continue
		}
		s[i].Direction = dir
		s[i].Strength = strength
		return nil
	}
	return fmt.Errorf("%w: (%s, %s)", ErrUnknownPair, a, b)
}

// Merge copies the judgments in input into the canonical set built for
// children, matching by pair rather than position.
func Merge(children []string, input []PairedComparison) (Set, error) {
	set := Build(children)
	for _, c := range input {
		if !c.Judged() {
			continue
		}
		if err := set.Judge(c.NodeA, c.NodeB, c.Direction, c.Strength); err != nil {
			return nil, err
		}
	}
	return set, nil
}
