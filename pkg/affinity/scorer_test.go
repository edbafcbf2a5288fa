package affinity

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateScenarios(t *testing.T) {
	tests := []struct {
		name   string
		rows   [][]uint8
		metric Metric
		want   uint8
	}{
		{"grid 1..9", grid123, MinNorm, 4},
		{"uniform", [][]uint8{{5, 5, 5}, {5, 5, 5}, {5, 5, 5}}, MinNorm, 0},
		{"all zero", [][]uint8{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}}, MinNorm, 0},
		{"corner 2x2", [][]uint8{{10, 200}, {10, 50}}, MinNorm, 190},
		{"corner 2x2 raw", [][]uint8{{10, 200}, {10, 50}}, RawCount, 190},
		{"uniform 2x2", [][]uint8{{9, 9}, {9, 9}}, MinNorm, 0},
		// (3,2) and (90,3) score 1, (90,2) only 1/2 despite the larger gap.
		{"higher score beats larger gap", [][]uint8{{3, 2, 3}, {90, 3, 3}, {3, 3, 3}}, MinNorm, 87},
		{"raw count", [][]uint8{{3, 2, 3}, {90, 3, 3}, {3, 3, 3}}, RawCount, 87},
		// every pair scores 1/2 under MaxNorm, so the largest gap wins
		{"max norm tie", [][]uint8{{3, 2, 3}, {90, 3, 3}, {3, 3, 3}}, MaxNorm, 88},
		{"max norm", [][]uint8{{10, 10, 10}, {10, 20, 10}, {10, 10, 200}}, MaxNorm, 10},
		{"min norm", [][]uint8{{10, 10, 10}, {10, 20, 10}, {10, 10, 200}}, MinNorm, 190},
		{"2x3 edge", [][]uint8{{0, 255, 0}, {0, 0, 0}}, MinNorm, 255},
		{"3x2 edge", [][]uint8{{4, 4}, {4, 8}, {4, 4}}, MinNorm, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindow(tt.rows)
			assert.Equal(t, tt.want, Evaluate(w, tt.metric))

			single, joint := BuildNaive(w)
			assert.Equal(t, tt.want, Select(&single, &joint, tt.metric), "naive tables")
		})
	}
}

func TestTieBreakPrefersLargerDifference(t *testing.T) {
	// Under MinNorm (2,1) and (5,1) both score 1; the larger gap must win
	// regardless of the order pairs are visited in.
	w := NewWindow([][]uint8{
		{1, 1, 1},
		{1, 2, 1},
		{1, 1, 5},
	})
	single, joint := Build(w)
	s21, _ := joint.Count(2, 1)
	s51, _ := joint.Count(5, 1)
	w1, _ := single.Weight(1)
	w2, _ := single.Weight(2)
	w5, _ := single.Weight(5)
	require.Equal(t, 0, MinNorm.Score(s21, w2, w1).Cmp(MinNorm.Score(s51, w5, w1)))
	assert.Equal(t, uint8(4), Evaluate(w, MinNorm))
}

func TestTwoByTwoIsMaxMinusMin(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		rows := [][]uint8{
			{uint8(rng.Intn(256)), uint8(rng.Intn(256))},
			{uint8(rng.Intn(256)), uint8(rng.Intn(256))},
		}
		lo, hi := rows[0][0], rows[0][0]
		for _, row := range rows {
			for _, v := range row {
				lo, hi = min(lo, v), max(hi, v)
			}
		}
		for _, m := range []Metric{MinNorm, MaxNorm, RawCount} {
			require.Equal(t, hi-lo, Evaluate(NewWindow(rows), m), "%v under %s", rows, m)
		}
	}
}

func TestMinNormIsBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	one := Ratio{Num: 1, Den: 1}
	for i := 0; i < 2000; i++ {
		rows := make([][]uint8, 3)
		for r := range rows {
			rows[r] = []uint8{uint8(rng.Intn(4)), uint8(rng.Intn(4)), uint8(rng.Intn(4))}
		}
		single, joint := Build(NewWindow(rows))
		joint.Each(func(p Pair, count int) {
			a, _ := single.Weight(p.Hi)
			b, _ := single.Weight(p.Lo)
			score := MinNorm.Score(count, a, b)
			require.Greater(t, score.Float64(), 0.0)
			require.LessOrEqual(t, score.Cmp(one), 0, "pair %s in %v", p, rows)
		})
	}
}

func TestSelectPanicsOnMissingSingle(t *testing.T) {
	var single SingleTable
	var joint JointTable
	single.add(3, 1)
	joint.add(MakePair(3, 9), 1)
	assert.Panics(t, func() { Select(&single, &joint, MinNorm) })
}

func TestRatioCmp(t *testing.T) {
	assert.Equal(t, 0, Ratio{1, 2}.Cmp(Ratio{2, 4}))
	assert.Equal(t, 1, Ratio{3, 4}.Cmp(Ratio{2, 4}))
	assert.Equal(t, -1, Ratio{1, 4}.Cmp(Ratio{1, 2}))
	assert.InDelta(t, 0.75, Ratio{3, 4}.Float64(), 1e-12)
}

func TestParseMetric(t *testing.T) {
	for name, want := range map[string]Metric{"min": MinNorm, "": MinNorm, "max": MaxNorm, "raw": RawCount} {
		m, err := ParseMetric(name)
		require.NoError(t, err)
		assert.Equal(t, want, m)
	}
	_, err := ParseMetric("median")
	assert.Error(t, err)
}
