package priority

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/todmy/ahp/internal/comparison"
	"github.com/todmy/ahp/internal/hierarchy"
)

// BuildMatrix creates the n×n reciprocal comparison matrix for children.
// Entries are looked up by pair, so the order of comparisons does not matter.
// Every pair must carry a strength.
func BuildMatrix(children []string, comparisons []comparison.PairedComparison) (*mat.Dense, error) {
	n := len(children)
	if n == 0 {
		return nil, fmt.Errorf("priority: no children to compare")
	}

	index := make(map[string]int, n)
	for i, name := range children {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("%w: child %q listed twice", hierarchy.ErrDuplicateNode, name)
		}
		index[name] = i
	}

	set, err := comparison.Merge(children, comparisons)
	if err != nil {
		return nil, err
	}
	if !set.Complete() {
		return nil, fmt.Errorf("%w: %d of %d pairs pending",
			comparison.ErrIncompleteJudgments, len(set.Pending()), len(set))
	}

	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}

	for _, c := range set {
		i, j := index[c.NodeA], index[c.NodeB]
		strength := float64(c.Strength)
		if c.Direction == comparison.BOverA {
			i, j = j, i
		}
		m.Set(i, j, strength)
		m.Set(j, i, 1/strength)
	}

	return m, nil
}

// LocalPriorities derives the priority vector of a comparison matrix by
// normalizing every column to sum 1, summing each row, and dividing the row
// totals by their grand total. The input matrix is not modified.
func LocalPriorities(m mat.Matrix) []float64 {
	r, c := m.Dims()
	if r == 0 || r != c {
		return nil
	}
	n := r

	normalized := mat.DenseCopyOf(m)
	for j := 0; j < n; j++ {
		col := mat.Col(nil, j, normalized)
		sum := floats.Sum(col)
		floats.Scale(1/sum, col)
		normalized.SetCol(j, col)
	}

	rowTotals := make([]float64, n)
	for i := 0; i < n; i++ {
		rowTotals[i] = floats.Sum(normalized.RawRowView(i))
	}

	floats.Scale(1/floats.Sum(rowTotals), rowTotals)
	return rowTotals
}

// Derive builds the comparison matrix for children and returns the local
// priorities, aligned with children.
func Derive(children []string, comparisons []comparison.PairedComparison) ([]float64, error) {
	m, err := BuildMatrix(children, comparisons)
	if err != nil {
		return nil, err
	}
	return LocalPriorities(m), nil
}
