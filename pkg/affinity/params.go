package affinity

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedChannels is returned for images that are neither grayscale
	// nor 3-channel.
	ErrUnsupportedChannels = errors.New("unsupported channel count")
	// ErrImageTooSmall is returned when no window fits inside the image.
	ErrImageTooSmall = errors.New("image too small for neighbourhood window")
)

// Params controls a neighbourhood run.
type Params struct {
	// Metric scores value pairs. Only used by the affinity kernel.
	Metric Metric
	// Edge selects cropping or window shrinking at the image border.
	Edge EdgePolicy
	// Workers is the number of goroutines sharing the rows. 0 uses GOMAXPROCS.
	Workers int
}

// NewParams returns the default parameters: MinNorm metric, cropped borders
// and one worker per CPU.
func NewParams() *Params {
	return &Params{
		Metric:  MinNorm,
		Edge:    EdgeCrop,
		Workers: 0,
	}
}

// Validate checks the parameters for consistency.
func (p *Params) Validate() error {
	if p.Metric == nil {
		return fmt.Errorf("metric must be set")
	}
	if p.Edge != EdgeCrop && p.Edge != EdgeShrink {
		return fmt.Errorf("invalid edge policy %d", p.Edge)
	}
	if p.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", p.Workers)
	}
	return nil
}

func (p *Params) String() string {
	return fmt.Sprintf("{Metric=%s, Edge=%s, Workers=%d}", p.Metric, p.Edge, p.Workers)
}
