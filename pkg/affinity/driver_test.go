package affinity

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomImage(rng *rand.Rand, width, height, channels, levels int) *Image {
	img := NewImage(width, height, channels)
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(levels))
	}
	return img
}

func TestComputeCropMatchesKernel(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	img := randomImage(rng, 17, 11, 1, 8)

	out, err := Compute(context.Background(), img, NewParams())
	require.NoError(t, err)
	require.Equal(t, 15, out.Width)
	require.Equal(t, 9, out.Height)
	require.Equal(t, 1, out.Channels)

	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			rows := make([][]uint8, 3)
			for r := 0; r < 3; r++ {
				rows[r] = []uint8{img.At(x, y+r, 0), img.At(x+1, y+r, 0), img.At(x+2, y+r, 0)}
			}
			single, joint := BuildNaive(NewWindow(rows))
			require.Equal(t, Select(&single, &joint, MinNorm), out.At(x, y, 0), "pixel (%d,%d)", x, y)
		}
	}
}

func TestComputeShrinkKeepsSize(t *testing.T) {
	img := NewGray([][]uint8{
		{10, 200, 7, 7},
		{10, 50, 7, 7},
		{1, 1, 7, 7},
	})
	p := NewParams()
	p.Edge = EdgeShrink

	out, err := Compute(context.Background(), img, p)
	require.NoError(t, err)
	require.Equal(t, 4, out.Width)
	require.Equal(t, 3, out.Height)

	// top-left corner sees the 2x2 block {10, 200, 10, 50}
	assert.Equal(t, uint8(190), out.At(0, 0, 0))
	// right column is uniform
	assert.Equal(t, uint8(0), out.At(3, 1, 0))
}

func TestComputeShrinkMatchesClampedWindows(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := NewParams()
	p.Edge = EdgeShrink

	for _, size := range [][2]int{{2, 2}, {2, 7}, {7, 2}, {3, 3}, {9, 6}} {
		w, h := size[0], size[1]
		img := randomImage(rng, w, h, 1, 6)
		out, err := Compute(context.Background(), img, p)
		require.NoError(t, err)
		require.Equal(t, w, out.Width)
		require.Equal(t, h, out.Height)

		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				var rows [][]uint8
				for yy := max(0, y-1); yy <= min(h-1, y+1); yy++ {
					var row []uint8
					for xx := max(0, x-1); xx <= min(w-1, x+1); xx++ {
						row = append(row, img.At(xx, yy, 0))
					}
					rows = append(rows, row)
				}
				single, joint := BuildNaive(NewWindow(rows))
				require.Equal(t, Select(&single, &joint, MinNorm), out.At(x, y, 0), "%dx%d pixel (%d,%d)", w, h, x, y)
			}
		}
	}
}

func TestComputeColorChannelsIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	img := randomImage(rng, 12, 9, 3, 16)

	p := NewParams()
	out, err := Compute(context.Background(), img, p)
	require.NoError(t, err)
	require.Equal(t, 3, out.Channels)

	for c := 0; c < 3; c++ {
		gray, err := Compute(context.Background(), img.Channel(c), p)
		require.NoError(t, err)
		assert.Equal(t, gray.Pix, out.Channel(c).Pix, "channel %d", c)
	}
}

func TestComputeWorkersAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	img := randomImage(rng, 40, 33, 1, 6)

	p := NewParams()
	p.Workers = 1
	serial, err := Compute(context.Background(), img, p)
	require.NoError(t, err)

	for _, workers := range []int{2, 3, 7, 64} {
		p.Workers = workers
		parallel, err := Compute(context.Background(), img, p)
		require.NoError(t, err)
		assert.Equal(t, serial.Pix, parallel.Pix, "workers=%d", workers)
	}
}

func TestComputeErrors(t *testing.T) {
	_, err := Compute(context.Background(), NewImage(2, 5, 1), NewParams())
	assert.ErrorIs(t, err, ErrImageTooSmall)

	p := NewParams()
	p.Edge = EdgeShrink
	_, err = Compute(context.Background(), NewImage(2, 2, 1), p)
	assert.NoError(t, err)
	_, err = Compute(context.Background(), NewImage(1, 5, 1), p)
	assert.ErrorIs(t, err, ErrImageTooSmall)

	_, err = Compute(context.Background(), NewImage(4, 4, 2), NewParams())
	assert.ErrorIs(t, err, ErrUnsupportedChannels)

	_, err = Compute(context.Background(), NewImage(4, 4, 1), &Params{Workers: 1})
	assert.Error(t, err)
}

func TestComputeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := Compute(ctx, NewImage(8, 8, 1), NewParams())
	assert.Nil(t, out)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestApplyKeepsImageWhenCancelledAfterLastRow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	img := NewImage(5, 5, 1)
	p := NewParams()
	p.Workers = 1

	calls := 0
	// 3x3 output; cancel while the last output pixel is computed.
	kernel := func(w Window) uint8 {
		calls++
		if calls == 9 {
			cancel()
		}
		return 1
	}
	out, err := Apply(ctx, img, p, kernel)
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 1, 1, 1, 1, 1, 1, 1, 1}, out.Pix)
}

func TestSaturate(t *testing.T) {
	img := NewGray([][]uint8{{10, 11, 12}, {13, 14, 15}})
	Saturate(img)
	assert.Equal(t, []uint8{0, 51, 102, 153, 204, 255}, img.Pix)

	flat := NewGray([][]uint8{{9, 9}, {9, 9}})
	Saturate(flat)
	assert.Equal(t, []uint8{0, 0, 0, 0}, flat.Pix)

	color := NewImage(2, 1, 3)
	copy(color.Pix, []uint8{0, 7, 100, 5, 7, 200})
	Saturate(color)
	assert.Equal(t, []uint8{0, 0, 0, 255, 0, 255}, color.Pix)
}

func TestSaturateMapsRangeEndpoints(t *testing.T) {
	for lo := 0; lo < 256; lo++ {
		for hi := lo + 1; hi < 256; hi++ {
			img := NewGray([][]uint8{{uint8(lo), uint8((lo + hi) / 2), uint8(hi)}})
			Saturate(img)
			require.Equal(t, uint8(0), img.Pix[0], "range [%d,%d]", lo, hi)
			require.Equal(t, uint8(255), img.Pix[2], "range [%d,%d]", lo, hi)
			require.LessOrEqual(t, img.Pix[1], img.Pix[2], "range [%d,%d]", lo, hi)
		}
	}
}
