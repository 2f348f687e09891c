package comparison

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		children []string
		want     Set
	}{
		{name: "no children", children: nil, want: Set{}},
		{name: "single child", children: []string{"a"}, want: Set{}},
		{
			name:     "three children",
			children: []string{"a", "b", "c"},
			want: Set{
				{NodeA: "a", NodeB: "b"},
				{NodeA: "a", NodeB: "c"},
				{NodeA: "b", NodeB: "c"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.children)
			assert.Equal(t, tt.want, got)
			assert.False(t, len(got) > 0 && got.Complete())
		})
	}
}

func TestBuild_PairCount(t *testing.T) {
	for n := 2; n <= 9; n++ {
		children := make([]string, n)
		for i := range children {
			children[i] = string(rune('a' + i))
		}
		set := Build(children)
		assert.Len(t, set, n*(n-1)/2)

		seen := make(map[[2]string]bool)
		for _, c := range set {
			assert.NotEqual(t, c.NodeA, c.NodeB)
			assert.Equal(t, AOverB, c.Direction)
			assert.False(t, c.Judged())
			key := [2]string{c.NodeA, c.NodeB}
			assert.False(t, seen[key], "duplicate pair %v", key)
			seen[key] = true
		}
	}
}

func TestSet_Judge(t *testing.T) {
	set := Build([]string{"a", "b", "c"})

	require.NoError(t, set.Judge("a", "b", AOverB, 3))
	assert.False(t, set.Complete())
	assert.Len(t, set.Pending(), 2)

	// reversed names flip the direction
	require.NoError(t, set.Judge("c", "a", AOverB, 5))
	assert.Equal(t, BOverA, set[1].Direction)
	assert.Equal(t, Strength(5), set[1].Strength)

	require.NoError(t, set.Judge("b", "c", BOverA, 1))
	assert.True(t, set.Complete())
	assert.Empty(t, set.Pending())

	assert.ErrorIs(t, set.Judge("a", "b", AOverB, 0), ErrInvalidStrength)
	assert.ErrorIs(t, set.Judge("a", "b", AOverB, 10), ErrInvalidStrength)
	assert.ErrorIs(t, set.Judge("a", "z", AOverB, 2), ErrUnknownPair)
	assert.ErrorIs(t, set.Judge("a", "b", Direction(7), 2), ErrInvalidDirection)
}

func TestMerge(t *testing.T) {
	children := []string{"a", "b", "c"}

	t.Run("order independent", func(t *testing.T) {
		set, err := Merge(children, []PairedComparison{
			{NodeA: "b", NodeB: "c", Strength: 2},
			{NodeA: "a", NodeB: "c", Direction: BOverA, Strength: 4},
			{NodeA: "a", NodeB: "b", Strength: 9},
		})
		require.NoError(t, err)
		assert.True(t, set.Complete())
		assert.Equal(t, Set{
			{NodeA: "a", NodeB: "b", Direction: AOverB, Strength: 9},
			{NodeA: "a", NodeB: "c", Direction: BOverA, Strength: 4},
			{NodeA: "b", NodeB: "c", Direction: AOverB, Strength: 2},
		}, set)
	})

	t.Run("unjudged entries are left pending", func(t *testing.T) {
		set, err := Merge(children, []PairedComparison{{NodeA: "a", NodeB: "b"}})
		require.NoError(t, err)
		assert.Len(t, set.Pending(), 3)
	})

	t.Run("unknown pair", func(t *testing.T) {
		_, err := Merge(children, []PairedComparison{{NodeA: "a", NodeB: "x", Strength: 1}})
		assert.ErrorIs(t, err, ErrUnknownPair)
	})
}

func TestDirection_JSON(t *testing.T) {
	var c PairedComparison
	require.NoError(t, json.Unmarshal([]byte(`{"node_a":"a","node_b":"b","direction":"b_over_a","strength":5}`), &c))
	assert.Equal(t, BOverA, c.Direction)
	assert.Equal(t, Strength(5), c.Strength)

	out, err := json.Marshal(PairedComparison{NodeA: "a", NodeB: "b"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"node_a":"a","node_b":"b","direction":"a_over_b"}`, string(out))

	var d Direction
	assert.ErrorIs(t, json.Unmarshal([]byte(`"sideways"`), &d), ErrInvalidDirection)
}

func TestScale(t *testing.T) {
	s := Scale()
	require.Len(t, s, 9)
	for i, p := range s {
		assert.Equal(t, Strength(i+1), p.Value)
		assert.True(t, p.Value.Valid())
	}
	assert.Equal(t, "1: Equal importance", Strength(1).Label())
	assert.Equal(t, "9: Extreme importance", Strength(9).Label())
	assert.False(t, NoJudgment.Valid())

	s[0].Description = "mutated"
	assert.Equal(t, "1: Equal importance", Scale()[0].Description)
}
