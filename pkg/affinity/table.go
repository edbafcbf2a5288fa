package affinity

import "fmt"

const (
	maxSingles = 9
	maxPairs   = maxSingles * (maxSingles - 1) / 2
)

// Pair is an unordered pair of distinct sample values in canonical order
// (Hi > Lo).
type Pair struct {
	Hi uint8
	Lo uint8
}

// MakePair orders a and b canonically. a and b must differ.
func MakePair(a, b uint8) Pair {
	if a < b {
		a, b = b, a
	}
	return Pair{Hi: a, Lo: b}
}

// Diff returns Hi - Lo.
func (p Pair) Diff() uint8 { return p.Hi - p.Lo }

func (p Pair) String() string { return fmt.Sprintf("(%d,%d)", p.Hi, p.Lo) }

// SingleTable maps sample values to the number of sub-windows they occur in.
// A window holds at most 9 distinct values, so entries live inline.
type SingleTable struct {
	values  [maxSingles]uint8
	weights [maxSingles]int
	n       int
}

func (t *SingleTable) add(v uint8, weight int) {
	for i := 0; i < t.n; i++ {
		if t.values[i] == v {
			t.weights[i] += weight
			return
		}
	}
	t.values[t.n] = v
	t.weights[t.n] = weight
	t.n++
}

// Weight returns the weighted count of v and whether v is present.
func (t *SingleTable) Weight(v uint8) (int, bool) {
	for i := 0; i < t.n; i++ {
		if t.values[i] == v {
			return t.weights[i], true
		}
	}
	return 0, false
}

// Len returns the number of distinct values.
func (t *SingleTable) Len() int { return t.n }

// Total returns the sum of all weights.
func (t *SingleTable) Total() int {
	sum := 0
	for i := 0; i < t.n; i++ {
		sum += t.weights[i]
	}
	return sum
}

// Each calls fn for every entry in insertion order.
func (t *SingleTable) Each(fn func(v uint8, weight int)) {
	for i := 0; i < t.n; i++ {
		fn(t.values[i], t.weights[i])
	}
}

// Map returns the table as a map, mostly for tests and debugging.
func (t *SingleTable) Map() map[uint8]int {
	m := make(map[uint8]int, t.n)
	t.Each(func(v uint8, w int) { m[v] = w })
	return m
}

// JointTable maps canonical value pairs to the number of sub-windows in which
// both values occur.
type JointTable struct {
	pairs  [maxPairs]Pair
	counts [maxPairs]int
	n      int
}

func (t *JointTable) add(p Pair, count int) {
	for i := 0; i < t.n; i++ {
		if t.pairs[i] == p {
			t.counts[i] += count
			return
		}
	}
	t.pairs[t.n] = p
	t.counts[t.n] = count
	t.n++
}

// Count returns the joint count of a and b in either order.
func (t *JointTable) Count(a, b uint8) (int, bool) {
	if a == b {
		return 0, false
	}
	p := MakePair(a, b)
	for i := 0; i < t.n; i++ {
		if t.pairs[i] == p {
			return t.counts[i], true
		}
	}
	return 0, false
}

// Len returns the number of pairs.
func (t *JointTable) Len() int { return t.n }

// Each calls fn for every pair in insertion order.
func (t *JointTable) Each(fn func(p Pair, count int)) {
	for i := 0; i < t.n; i++ {
		fn(t.pairs[i], t.counts[i])
	}
}

// Map returns the table as a map, mostly for tests and debugging.
func (t *JointTable) Map() map[Pair]int {
	m := make(map[Pair]int, t.n)
	t.Each(func(p Pair, c int) { m[p] = c })
	return m
}
