package affinity

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// Compute produces the affinity feature image of img. Every channel is
// processed independently and the output keeps the input's channel count.
func Compute(ctx context.Context, img *Image, p *Params) (*Image, error) {
	if p == nil {
		p = NewParams()
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	return Apply(ctx, img, p, AffinityKernel(p.Metric))
}

// Apply runs kernel over the neighbourhood of every output pixel and channel.
// Rows are split into contiguous bands, one per worker; each worker writes
// only its own rows. The context is checked between rows; a run that skipped
// rows because of cancellation returns no image.
func Apply(ctx context.Context, img *Image, p *Params, kernel Kernel) (*Image, error) {
	if p == nil {
		p = NewParams()
	}
	if img.Channels != 1 && img.Channels != 3 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedChannels, img.Channels)
	}
	minSize := 3
	if p.Edge == EdgeShrink {
		minSize = 2
	}
	if img.Width < minSize || img.Height < minSize {
		return nil, fmt.Errorf("%w: %dx%d with %s edges", ErrImageTooSmall, img.Width, img.Height, p.Edge)
	}

	outW, outH := p.Edge.OutputSize(img.Width, img.Height)
	out := NewImage(outW, outH, img.Channels)

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, outH)
	rowsPerWorker := (outH + workers - 1) / workers

	var (
		wg      sync.WaitGroup
		aborted atomic.Bool
	)
	for i := 0; i < workers; i++ {
		startRow := i * rowsPerWorker
		endRow := min(startRow+rowsPerWorker, outH)
		if startRow >= endRow {
			break
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := startRow; y < endRow; y++ {
				select {
				case <-ctx.Done():
					aborted.Store(true)
					return
				default:
				}

				off := y * outW * out.Channels
				for x := 0; x < outW; x++ {
					for c := 0; c < img.Channels; c++ {
						out.Pix[off] = kernel(Neighborhood(img, c, x, y, p.Edge))
						off++
					}
				}
			}
		}()
	}
	wg.Wait()

	if aborted.Load() {
		return nil, fmt.Errorf("neighbourhood run aborted: %w", ctx.Err())
	}
	return out, nil
}
