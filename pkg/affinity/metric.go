package affinity

import "fmt"

// Ratio is an exact non-negative rational score. Keeping scores exact makes
// tie detection independent of floating point rounding.
type Ratio struct {
	Num int
	Den int
}

// Cmp returns -1, 0 or +1 as r is less than, equal to or greater than o.
func (r Ratio) Cmp(o Ratio) int {
	lhs, rhs := r.Num*o.Den, o.Num*r.Den
	switch {
	case lhs < rhs:
		return -1
	case lhs > rhs:
		return 1
	default:
		return 0
	}
}

// Float64 returns the score as a real number.
func (r Ratio) Float64() float64 { return float64(r.Num) / float64(r.Den) }

func (r Ratio) String() string { return fmt.Sprintf("%d/%d", r.Num, r.Den) }

// Metric scores a value pair from its joint count and the single weights of
// its two values.
type Metric interface {
	Score(joint, a, b int) Ratio
	String() string
}

type minNorm struct{}

func (minNorm) Score(joint, a, b int) Ratio { return Ratio{Num: joint, Den: min(a, b)} }
func (minNorm) String() string              { return "min" }

type maxNorm struct{}

func (maxNorm) Score(joint, a, b int) Ratio { return Ratio{Num: joint, Den: max(a, b)} }
func (maxNorm) String() string              { return "max" }

type rawCount struct{}

func (rawCount) Score(joint, _, _ int) Ratio { return Ratio{Num: joint, Den: 1} }
func (rawCount) String() string              { return "raw" }

var (
	// MinNorm divides the joint count by the smaller single weight. A pair
	// cannot co-occur more often than its rarer value occurs, so scores lie in
	// (0, 1]. This is the default metric.
	MinNorm Metric = minNorm{}
	// MaxNorm divides the joint count by the larger single weight.
	MaxNorm Metric = maxNorm{}
	// RawCount ranks pairs by joint count alone.
	RawCount Metric = rawCount{}
)

// ParseMetric maps "min", "max" or "raw" to a Metric.
func ParseMetric(name string) (Metric, error) {
	switch name {
	case "min", "":
		return MinNorm, nil
	case "max":
		return MaxNorm, nil
	case "raw":
		return RawCount, nil
	default:
		return nil, fmt.Errorf("unknown affinity metric %q", name)
	}
}
