package affinity

import "fmt"

// Image is an 8-bit image with 1 or 3 interleaved channels stored row-major.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// NewImage allocates a zeroed image.
func NewImage(width, height, channels int) *Image {
	return &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

// NewGray wraps row-major grayscale rows. All rows must have the same length.
func NewGray(rows [][]uint8) *Image {
	if len(rows) == 0 {
		return NewImage(0, 0, 1)
	}
	img := NewImage(len(rows[0]), len(rows), 1)
	for y, row := range rows {
		if len(row) != img.Width {
			panic(fmt.Sprintf("row %d has %d samples, want %d", y, len(row), img.Width))
		}
		copy(img.Pix[y*img.Width:], row)
	}
	return img
}

func (img *Image) offset(x, y, c int) int {
	return (y*img.Width+x)*img.Channels + c
}

// At returns the sample at (x, y) in channel c.
func (img *Image) At(x, y, c int) uint8 { return img.Pix[img.offset(x, y, c)] }

// Set stores the sample at (x, y) in channel c.
func (img *Image) Set(x, y, c int, v uint8) { img.Pix[img.offset(x, y, c)] = v }

// Clone returns a deep copy.
func (img *Image) Clone() *Image {
	out := NewImage(img.Width, img.Height, img.Channels)
	copy(out.Pix, img.Pix)
	return out
}

// Channel extracts channel c as a single-channel image.
func (img *Image) Channel(c int) *Image {
	if c < 0 || c >= img.Channels {
		panic(fmt.Sprintf("channel %d out of range [0, %d)", c, img.Channels))
	}
	out := NewImage(img.Width, img.Height, 1)
	for i := range out.Pix {
		out.Pix[i] = img.Pix[i*img.Channels+c]
	}
	return out
}

func (img *Image) String() string {
	return fmt.Sprintf("{Width=%d, Height=%d, Channels=%d}", img.Width, img.Height, img.Channels)
}
