// Package filters holds the simple neighbourhood and point filters that
// accompany the affinity feature: window range, centre deviation, blending
// with the source image and 16-level quantisation.
package filters

import (
	"context"
	"fmt"

	"mammofeat/pkg/affinity"
)

// MaxDiffKernel returns the range (max - min) of the window.
func MaxDiffKernel(w affinity.Window) uint8 {
	lo, hi := uint8(255), uint8(0)
	for _, v := range w.Cells() {
		lo, hi = min(lo, v), max(hi, v)
	}
	return hi - lo
}

// CenterDiffKernel returns the largest absolute deviation of any cell from the
// window's centre sample.
func CenterDiffKernel(w affinity.Window) uint8 {
	center := w.CenterValue()
	var best uint8
	for _, v := range w.Cells() {
		d := v - center
		if v < center {
			d = center - v
		}
		best = max(best, d)
	}
	return best
}

// MaxDiff computes the window range image.
func MaxDiff(ctx context.Context, img *affinity.Image, p *affinity.Params) (*affinity.Image, error) {
	return affinity.Apply(ctx, img, p, MaxDiffKernel)
}

// CenterDiff computes the centre deviation image.
func CenterDiff(ctx context.Context, img *affinity.Image, p *affinity.Params) (*affinity.Image, error) {
	return affinity.Apply(ctx, img, p, CenterDiffKernel)
}

// Average blends a feature image with the source image it was derived from,
// sample by sample, as (source + feature) / 2. A feature image produced with
// cropped edges is smaller than its source; it is aligned to the source
// centre.
func Average(source, feature *affinity.Image) (*affinity.Image, error) {
	if source.Channels != feature.Channels {
		return nil, fmt.Errorf("channel mismatch: source has %d, feature has %d", source.Channels, feature.Channels)
	}
	dx, dy := source.Width-feature.Width, source.Height-feature.Height
	if dx < 0 || dy < 0 || dx%2 != 0 || dy%2 != 0 {
		return nil, fmt.Errorf("feature %dx%d cannot be centred in source %dx%d",
			feature.Width, feature.Height, source.Width, source.Height)
	}
	dx, dy = dx/2, dy/2

	out := affinity.NewImage(feature.Width, feature.Height, feature.Channels)
	for y := 0; y < feature.Height; y++ {
		for x := 0; x < feature.Width; x++ {
			for c := 0; c < feature.Channels; c++ {
				sum := uint16(source.At(x+dx, y+dy, c)) + uint16(feature.At(x, y, c))
				out.Set(x, y, c, uint8(sum/2))
			}
		}
	}
	return out, nil
}

// Div16 quantises img in place to 16 levels by integer division.
func Div16(img *affinity.Image) {
	for i := range img.Pix {
		img.Pix[i] /= 16
	}
}
