package features

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"mammofeat/pkg/affinity"
)

const (
	zoneEdgeFraction = 0.25
	minPixelsPerZone = 16
)

// ZonePosition identifies a zone in the 3x3 grid.
type ZonePosition int

const (
	ZoneTopLeft ZonePosition = iota
	ZoneTop
	ZoneTopRight
	ZoneLeft
	ZoneCenter
	ZoneRight
	ZoneBottomLeft
	ZoneBottom
	ZoneBottomRight
)

// ZoneOrder lists the zones row by row.
var ZoneOrder = []ZonePosition{
	ZoneTopLeft, ZoneTop, ZoneTopRight,
	ZoneLeft, ZoneCenter, ZoneRight,
	ZoneBottomLeft, ZoneBottom, ZoneBottomRight,
}

var zoneLabels = map[ZonePosition]string{
	ZoneTopLeft:     "TL",
	ZoneTop:         "T",
	ZoneTopRight:    "TR",
	ZoneLeft:        "L",
	ZoneCenter:      "Center",
	ZoneRight:       "R",
	ZoneBottomLeft:  "BL",
	ZoneBottom:      "B",
	ZoneBottomRight: "BR",
}

func (p ZonePosition) String() string { return zoneLabels[p] }

// ZoneData holds per-zone statistics of one channel.
type ZoneData struct {
	Label      string
	Mean       float64
	Median     float64
	NonZero    float64
	PixelCount int
}

// ZoneAnalysis is the regional breakdown of a feature image. The central
// zone spans the middle half of each axis, the outer zones the remaining
// quarters.
type ZoneAnalysis struct {
	Width    int
	Height   int
	Zones    map[ZonePosition]ZoneData
	Spread   float64 // (highest - lowest zone mean) relative to the mean of all zones, in percent
	Hottest  ZonePosition
	Coldest  ZonePosition
	Reliable bool
}

// AnalyzeZones splits channel c of img into a 3x3 grid and computes per-zone
// statistics.
func AnalyzeZones(img *affinity.Image, c int) *ZoneAnalysis {
	if img.Width == 0 || img.Height == 0 {
		return nil
	}

	xLo := float64(img.Width) * zoneEdgeFraction
	xHi := float64(img.Width) * (1.0 - zoneEdgeFraction)
	yLo := float64(img.Height) * zoneEdgeFraction
	yHi := float64(img.Height) * (1.0 - zoneEdgeFraction)

	samples := make(map[ZonePosition][]float64, len(ZoneOrder))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			pos := classifyZone(float64(x)+0.5, float64(y)+0.5, xLo, xHi, yLo, yHi)
			samples[pos] = append(samples[pos], float64(img.At(x, y, c)))
		}
	}

	result := &ZoneAnalysis{
		Width:    img.Width,
		Height:   img.Height,
		Zones:    make(map[ZonePosition]ZoneData, len(ZoneOrder)),
		Reliable: true,
	}
	means := make([]float64, 0, len(ZoneOrder))
	for _, pos := range ZoneOrder {
		zd := computeZoneData(pos, samples[pos])
		result.Zones[pos] = zd
		if zd.PixelCount < minPixelsPerZone {
			result.Reliable = false
		}
		if zd.PixelCount > 0 {
			means = append(means, zd.Mean)
		}
	}

	bestMean, worstMean := math.Inf(-1), math.Inf(1)
	for _, pos := range ZoneOrder {
		z := result.Zones[pos]
		if z.PixelCount == 0 {
			continue
		}
		if z.Mean > bestMean {
			bestMean = z.Mean
			result.Hottest = pos
		}
		if z.Mean < worstMean {
			worstMean = z.Mean
			result.Coldest = pos
		}
	}

	if overall := stat.Mean(means, nil); overall > 0 {
		result.Spread = (floats.Max(means) - floats.Min(means)) / overall * 100.0
	}
	return result
}

func classifyZone(x, y, xLo, xHi, yLo, yHi float64) ZonePosition {
	var col, row int
	if x < xLo {
		col = 0
	} else if x < xHi {
		col = 1
	} else {
		col = 2
	}
	if y < yLo {
		row = 0
	} else if y < yHi {
		row = 1
	} else {
		row = 2
	}

	grid := [3][3]ZonePosition{
		{ZoneTopLeft, ZoneTop, ZoneTopRight},
		{ZoneLeft, ZoneCenter, ZoneRight},
		{ZoneBottomLeft, ZoneBottom, ZoneBottomRight},
	}
	return grid[row][col]
}

func computeZoneData(pos ZonePosition, values []float64) ZoneData {
	zd := ZoneData{
		Label:      zoneLabels[pos],
		PixelCount: len(values),
	}
	if len(values) == 0 {
		return zd
	}

	nonZero := 0
	for _, v := range values {
		if v != 0 {
			nonZero++
		}
	}
	zd.Mean = stat.Mean(values, nil)
	zd.Median, _ = MedianMAD(values)
	zd.NonZero = float64(nonZero) / float64(len(values))
	return zd
}
