package priority

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/todmy/ahp/internal/comparison"
	"github.com/todmy/ahp/internal/hierarchy"
)

const tolerance = 1e-9

func TestBuildMatrix_TwoChildren(t *testing.T) {
	m, err := BuildMatrix([]string{"child1", "child2"}, []comparison.PairedComparison{
		{NodeA: "child1", NodeB: "child2", Direction: comparison.AOverB, Strength: 3},
	})
	require.NoError(t, err)

	want := mat.NewDense(2, 2, []float64{1, 3, 1.0 / 3, 1})
	assert.True(t, mat.Equal(want, m))

	p := LocalPriorities(m)
	assert.InDelta(t, 0.75, p[0], tolerance)
	assert.InDelta(t, 0.25, p[1], tolerance)
}

func TestBuildMatrix_Toggled(t *testing.T) {
	m, err := BuildMatrix([]string{"child1", "child2"}, []comparison.PairedComparison{
		{NodeA: "child1", NodeB: "child2", Direction: comparison.BOverA, Strength: 5},
	})
	require.NoError(t, err)

	assert.Equal(t, 5.0, m.At(1, 0))
	assert.Equal(t, 0.2, m.At(0, 1))

	p := LocalPriorities(m)
	assert.InDelta(t, 1.0/6, p[0], tolerance)
	assert.InDelta(t, 5.0/6, p[1], tolerance)
}

func TestBuildMatrix_Reciprocal(t *testing.T) {
	children := []string{"a", "b", "c", "d"}
	strengths := []comparison.Strength{2, 7, 9, 3, 1, 8}
	set := comparison.Build(children)
	for i := range set {
		set[i].Strength = strengths[i]
		if i%2 == 1 {
			set[i].Direction = comparison.BOverA
		}
	}

	m, err := BuildMatrix(children, set)
	require.NoError(t, err)

	n := len(children)
	for i := 0; i < n; i++ {
		assert.Equal(t, 1.0, m.At(i, i))
		for j := 0; j < n; j++ {
			if i != j {
				assert.Equal(t, 1.0, m.At(i, j)*m.At(j, i), "[%d][%d]", i, j)
			}
		}
	}
}

func TestBuildMatrix_Incomplete(t *testing.T) {
	_, err := BuildMatrix([]string{"a", "b", "c"}, []comparison.PairedComparison{
		{NodeA: "a", NodeB: "b", Strength: 3},
	})
	assert.ErrorIs(t, err, comparison.ErrIncompleteJudgments)

	_, err = BuildMatrix(nil, nil)
	assert.Error(t, err)
}

func TestBuildMatrix_DuplicateChildren(t *testing.T) {
	_, err := BuildMatrix([]string{"A", "A"}, []comparison.PairedComparison{
		{NodeA: "A", NodeB: "A", Direction: comparison.AOverB, Strength: 3},
	})
	assert.ErrorIs(t, err, hierarchy.ErrDuplicateNode)
}

func TestLocalPriorities_EqualJudgments(t *testing.T) {
	children := []string{"a", "b", "c"}
	set := comparison.Build(children)
	for i := range set {
		set[i].Strength = 1
	}

	p, err := Derive(children, set)
	require.NoError(t, err)
	for _, v := range p {
		assert.InDelta(t, 1.0/3, v, tolerance)
	}
}

func TestLocalPriorities_Properties(t *testing.T) {
	for n := 1; n <= 9; n++ {
		children := make([]string, n)
		for i := range children {
			children[i] = string(rune('A' + i))
		}
		set := comparison.Build(children)
		for i := range set {
			set[i].Strength = comparison.Strength(i%9 + 1)
			set[i].Direction = comparison.Direction(i % 2)
		}

		first, err := Derive(children, set)
		require.NoError(t, err)
		require.Len(t, first, n)
		assert.InDelta(t, 1.0, floats.Sum(first), tolerance)
		for _, v := range first {
			assert.GreaterOrEqual(t, v, 0.0)
		}

		second, err := Derive(children, set)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestLocalPriorities_DoesNotMutateInput(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, 3, 1.0 / 3, 1})
	_ = LocalPriorities(m)
	assert.Equal(t, 3.0, m.At(0, 1))
	assert.Nil(t, LocalPriorities(mat.NewDense(2, 3, nil)))
}

func TestService_Evaluate(t *testing.T) {
	h, err := hierarchy.New([]hierarchy.Node{
		{Name: "root", Children: []string{"x", "y"}},
		{Name: "x"},
		{Name: "y"},
	})
	require.NoError(t, err)

	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))

	slots, err := svc.Comparisons(h, "root")
	require.NoError(t, err)
	require.Len(t, slots, 1)

	_, err = svc.Evaluate(h, "root", slots)
	assert.ErrorIs(t, err, comparison.ErrIncompleteJudgments)
	root := h.Root()
	assert.False(t, root.Evaluated())

	require.NoError(t, slots.Judge("x", "y", comparison.AOverB, 3))
	p, err := svc.Evaluate(h, "root", slots)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, p[0], tolerance)

	root = h.Root()
	assert.Equal(t, p, root.LocalPriorities)

	_, err = svc.Evaluate(h, "x", nil)
	assert.ErrorIs(t, err, hierarchy.ErrLeafNode)
	_, err = svc.Comparisons(h, "missing")
	assert.ErrorIs(t, err, hierarchy.ErrNodeNotFound)
}
