// Package features summarises feature images for downstream classification:
// per-channel distribution statistics and a 3x3 regional breakdown.
package features

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"mammofeat/pkg/affinity"
)

// madScale makes the median absolute deviation a consistent estimator of the
// standard deviation for normally distributed data.
const madScale = 1.4826

// ChannelStats describes the sample distribution of one channel.
type ChannelStats struct {
	Min     uint8
	Max     uint8
	Mean    float64
	StdDev  float64
	Median  float64
	MAD     float64
	NonZero float64 // fraction of non-zero samples
}

func (s ChannelStats) String() string {
	return fmt.Sprintf("{Min=%d, Max=%d, Mean=%f, StdDev=%f, Median=%f, MAD=%f, NonZero=%f}",
		s.Min, s.Max, s.Mean, s.StdDev, s.Median, s.MAD, s.NonZero)
}

// Describe computes ChannelStats for every channel of img.
func Describe(img *affinity.Image) []ChannelStats {
	out := make([]ChannelStats, img.Channels)
	n := img.Width * img.Height
	if n == 0 {
		return out
	}

	values := make([]float64, n)
	for c := 0; c < img.Channels; c++ {
		s := ChannelStats{Min: 255}
		nonZero := 0
		for i := range values {
			v := img.Pix[i*img.Channels+c]
			values[i] = float64(v)
			s.Min, s.Max = min(s.Min, v), max(s.Max, v)
			if v != 0 {
				nonZero++
			}
		}
		s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
		if n == 1 {
			s.StdDev = 0
		}
		s.Median, s.MAD = MedianMAD(values)
		s.NonZero = float64(nonZero) / float64(n)
		out[c] = s
	}
	return out
}

// MedianMAD returns the empirical median of values and the scaled median
// absolute deviation around it. The input is not modified.
func MedianMAD(values []float64) (float64, float64) {
	if len(values) == 0 {
		return math.NaN(), math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	median := stat.Quantile(0.5, stat.Empirical, sorted, nil)

	for i, v := range sorted {
		sorted[i] = math.Abs(v - median)
	}
	sort.Float64s(sorted)
	return median, madScale * stat.Quantile(0.5, stat.Empirical, sorted, nil)
}
