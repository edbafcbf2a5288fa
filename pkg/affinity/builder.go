package affinity

import (
	"fmt"
	"math/bits"
)

// Layout records, for one window shape, which 2x2 sub-windows contain each
// cell. Bit k of a cell mask is set when sub-window k (numbered row-major by
// its top-left offset) covers the cell.
type Layout struct {
	Shape Shape
	masks [9]uint8
}

func newLayout(s Shape) *Layout {
	l := &Layout{Shape: s}
	subCols := s.Cols - 1
	for r := 0; r < s.Rows; r++ {
		for c := 0; c < s.Cols; c++ {
			var mask uint8
			for r0 := max(r-1, 0); r0 <= min(r, s.Rows-2); r0++ {
				for c0 := max(c-1, 0); c0 <= min(c, s.Cols-2); c0++ {
					mask |= 1 << uint(r0*subCols+c0)
				}
			}
			l.masks[r*s.Cols+c] = mask
		}
	}
	return l
}

var (
	layout2x2 = newLayout(Shape2x2)
	layout2x3 = newLayout(Shape2x3)
	layout3x2 = newLayout(Shape3x2)
	layout3x3 = newLayout(Shape3x3)
)

// LayoutFor returns the precomputed layout of a supported shape. Any other
// shape is a programming error.
func LayoutFor(s Shape) *Layout {
	switch s {
	case Shape3x3:
		return layout3x3
	case Shape2x3:
		return layout2x3
	case Shape3x2:
		return layout3x2
	case Shape2x2:
		return layout2x2
	}
	panic(fmt.Sprintf("unsupported window shape %s", s))
}

// Weight is the number of sub-windows containing cell (r, c): 1 for corners,
// 2 for edge midpoints and 4 for the centre of a 3x3 window.
func (l *Layout) Weight(r, c int) int {
	return bits.OnesCount8(l.masks[r*l.Shape.Cols+c])
}

// PairWeight is the number of sub-windows containing both cells.
func (l *Layout) PairWeight(r1, c1, r2, c2 int) int {
	return bits.OnesCount8(l.masks[r1*l.Shape.Cols+c1] & l.masks[r2*l.Shape.Cols+c2])
}

// Build computes the single and joint frequency tables of w from the
// precomputed layout of its shape, without enumerating sub-windows.
//
// Cells holding the same value are merged first by OR-ing their sub-window
// masks, so a value is counted once per sub-window however many cells hold it.
func Build(w Window) (SingleTable, JointTable) {
	l := LayoutFor(w.Shape)

	var values [maxSingles]uint8
	var masks [maxSingles]uint8
	n := 0
	for i := 0; i < w.Len(); i++ {
		v := w.cells[i]
		j := 0
		for j < n && values[j] != v {
			j++
		}
		if j == n {
			values[n] = v
			n++
		}
		masks[j] |= l.masks[i]
	}

	var single SingleTable
	var joint JointTable
	for i := 0; i < n; i++ {
		single.values[i] = values[i]
		single.weights[i] = bits.OnesCount8(masks[i])
	}
	single.n = n

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if shared := bits.OnesCount8(masks[i] & masks[j]); shared > 0 {
				joint.pairs[joint.n] = MakePair(values[i], values[j])
				joint.counts[joint.n] = shared
				joint.n++
			}
		}
	}
	return single, joint
}

// BuildNaive computes the same tables as Build by visiting every 2x2
// sub-window. It is kept as a reference for Build.
func BuildNaive(w Window) (SingleTable, JointTable) {
	if !w.Shape.Supported() {
		panic(fmt.Sprintf("unsupported window shape %s", w.Shape))
	}

	var single SingleTable
	var joint JointTable
	for r0 := 0; r0+1 < w.Shape.Rows; r0++ {
		for c0 := 0; c0+1 < w.Shape.Cols; c0++ {
			var distinct [4]uint8
			k := 0
			for _, v := range [4]uint8{w.At(r0, c0), w.At(r0, c0+1), w.At(r0+1, c0), w.At(r0+1, c0+1)} {
				seen := false
				for _, d := range distinct[:k] {
					if d == v {
						seen = true
						break
					}
				}
				if !seen {
					distinct[k] = v
					k++
				}
			}

			for i := 0; i < k; i++ {
				single.add(distinct[i], 1)
				for j := i + 1; j < k; j++ {
					joint.add(MakePair(distinct[i], distinct[j]), 1)
				}
			}
		}
	}
	return single, joint
}
