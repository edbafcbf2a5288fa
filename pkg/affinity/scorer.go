package affinity

import "fmt"

// Select returns |a-b| of the pair with the highest score. Equal scores are
// resolved in favour of the larger difference. A window without any
// co-occurring distinct pair yields 0.
func Select(single *SingleTable, joint *JointTable, m Metric) uint8 {
	var best Ratio
	var bestDiff uint8
	found := false

	joint.Each(func(p Pair, count int) {
		a, ok := single.Weight(p.Hi)
		if !ok {
			panic(fmt.Sprintf("value %d of pair %s missing from single table", p.Hi, p))
		}
		b, ok := single.Weight(p.Lo)
		if !ok {
			panic(fmt.Sprintf("value %d of pair %s missing from single table", p.Lo, p))
		}

		score := m.Score(count, a, b)
		diff := p.Diff()
		if !found {
			best, bestDiff, found = score, diff, true
			return
		}
		switch score.Cmp(best) {
		case 1:
			best, bestDiff = score, diff
		case 0:
			if diff > bestDiff {
				bestDiff = diff
			}
		}
	})
	return bestDiff
}

// Evaluate runs the per-pixel kernel: closed-form tables followed by pair
// selection under m.
func Evaluate(w Window, m Metric) uint8 {
	single, joint := Build(w)
	return Select(&single, &joint, m)
}

// Kernel computes one output sample from one sampled window.
type Kernel func(w Window) uint8

// AffinityKernel returns the affinity kernel for metric m.
func AffinityKernel(m Metric) Kernel {
	return func(w Window) uint8 { return Evaluate(w, m) }
}
