package affinity

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var grid123 = [][]uint8{
	{1, 2, 3},
	{4, 5, 6},
	{7, 8, 9},
}

func TestLayoutWeights3x3(t *testing.T) {
	l := LayoutFor(Shape3x3)
	want := [3][3]int{
		{1, 2, 1},
		{2, 4, 2},
		{1, 2, 1},
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			assert.Equal(t, want[r][c], l.Weight(r, c), "cell (%d,%d)", r, c)
		}
	}

	// edge midpoint and centre share two sub-windows
	assert.Equal(t, 2, l.PairWeight(0, 1, 1, 1))
	assert.Equal(t, 2, l.PairWeight(1, 2, 1, 1))
	// corner with adjacent edge, corner with centre, adjacent edges
	assert.Equal(t, 1, l.PairWeight(0, 0, 0, 1))
	assert.Equal(t, 1, l.PairWeight(0, 0, 1, 1))
	assert.Equal(t, 1, l.PairWeight(0, 1, 1, 0))
	// diagonal corners, opposite edges, neighbouring corners
	assert.Equal(t, 0, l.PairWeight(0, 0, 2, 2))
	assert.Equal(t, 0, l.PairWeight(0, 1, 2, 1))
	assert.Equal(t, 0, l.PairWeight(1, 0, 1, 2))
	assert.Equal(t, 0, l.PairWeight(0, 0, 0, 2))
}

func TestLayoutForRejectsUnsupportedShape(t *testing.T) {
	assert.Panics(t, func() { LayoutFor(Shape{Rows: 4, Cols: 4}) })
	assert.Panics(t, func() { LayoutFor(Shape{Rows: 1, Cols: 3}) })
	assert.Panics(t, func() { Build(Window{}) })
	assert.Panics(t, func() { BuildNaive(Window{}) })
}

func TestBuildGrid123(t *testing.T) {
	w := NewWindow(grid123)
	single, joint := Build(w)

	assert.Equal(t, map[uint8]int{1: 1, 3: 1, 7: 1, 9: 1, 2: 2, 4: 2, 6: 2, 8: 2, 5: 4}, single.Map())
	assert.Equal(t, 16, single.Total())

	want := map[Pair]int{
		// top-left sub-window {1,2,4,5}
		{2, 1}: 1, {4, 1}: 1, {5, 1}: 1, {4, 2}: 1,
		// top-right {2,3,5,6}
		{3, 2}: 1, {6, 3}: 1, {5, 3}: 1, {6, 2}: 1,
		// bottom-left {4,5,7,8}
		{7, 4}: 1, {8, 7}: 1, {7, 5}: 1, {8, 4}: 1,
		// bottom-right {5,6,8,9}
		{9, 6}: 1, {9, 8}: 1, {9, 5}: 1, {8, 6}: 1,
		// edge-centre pairs appear in two sub-windows
		{5, 2}: 2, {5, 4}: 2, {6, 5}: 2, {8, 5}: 2,
	}
	assert.Equal(t, want, joint.Map())

	naiveSingle, naiveJoint := BuildNaive(w)
	assert.Equal(t, naiveSingle.Map(), single.Map())
	assert.Equal(t, naiveJoint.Map(), joint.Map())
}

func TestBuildDeduplicatesWithinSubWindow(t *testing.T) {
	w := NewWindow([][]uint8{
		{7, 7, 7},
		{7, 3, 7},
		{7, 7, 7},
	})
	single, joint := Build(w)
	assert.Equal(t, map[uint8]int{7: 4, 3: 4}, single.Map())
	assert.Equal(t, map[Pair]int{{7, 3}: 4}, joint.Map())
}

func TestWeightTotals(t *testing.T) {
	tests := []struct {
		name  string
		rows  [][]uint8
		total int
	}{
		{"3x3", grid123, 16},
		{"2x3", [][]uint8{{1, 2, 3}, {4, 5, 6}}, 8},
		{"3x2", [][]uint8{{1, 2}, {3, 4}, {5, 6}}, 8},
		{"2x2", [][]uint8{{1, 2}, {3, 4}}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			single, _ := Build(NewWindow(tt.rows))
			assert.Equal(t, tt.total, single.Total())
			assert.Equal(t, tt.total, NewWindow(tt.rows).Shape.SubWindows()*4)
		})
	}
}

func TestUniformWindowHasNoPairs(t *testing.T) {
	for _, shape := range []Shape{Shape2x2, Shape2x3, Shape3x2, Shape3x3} {
		rows := make([][]uint8, shape.Rows)
		for r := range rows {
			rows[r] = make([]uint8, shape.Cols)
			for c := range rows[r] {
				rows[r][c] = 5
			}
		}
		single, joint := Build(NewWindow(rows))
		assert.Equal(t, 0, joint.Len(), "shape %s", shape)
		assert.Equal(t, map[uint8]int{5: shape.SubWindows()}, single.Map(), "shape %s", shape)
	}
}

func TestBuildMatchesNaive(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, shape := range []Shape{Shape2x2, Shape2x3, Shape3x2, Shape3x3} {
		// Small alphabets force repeated values inside sub-windows.
		for _, alphabet := range []int{2, 3, 5, 256} {
			for i := 0; i < 500; i++ {
				rows := make([][]uint8, shape.Rows)
				for r := range rows {
					rows[r] = make([]uint8, shape.Cols)
					for c := range rows[r] {
						rows[r][c] = uint8(rng.Intn(alphabet))
					}
				}
				w := NewWindow(rows)
				single, joint := Build(w)
				naiveSingle, naiveJoint := BuildNaive(w)
				require.Equal(t, naiveSingle.Map(), single.Map(), "singles for %v", rows)
				require.Equal(t, naiveJoint.Map(), joint.Map(), "pairs for %v", rows)
			}
		}
	}
}

func TestJointTableCount(t *testing.T) {
	_, joint := Build(NewWindow(grid123))
	n, ok := joint.Count(2, 5)
	require.True(t, ok)
	assert.Equal(t, 2, n)
	n, ok = joint.Count(5, 2)
	require.True(t, ok)
	assert.Equal(t, 2, n)
	_, ok = joint.Count(1, 9)
	assert.False(t, ok)
	_, ok = joint.Count(5, 5)
	assert.False(t, ok)
}
