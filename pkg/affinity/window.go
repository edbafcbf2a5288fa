package affinity

import (
	"fmt"
	"image"
)

// Shape is the size of a sampling window in rows and columns.
type Shape struct {
	Rows int
	Cols int
}

var (
	Shape2x2 = Shape{Rows: 2, Cols: 2}
	Shape2x3 = Shape{Rows: 2, Cols: 3}
	Shape3x2 = Shape{Rows: 3, Cols: 2}
	Shape3x3 = Shape{Rows: 3, Cols: 3}
)

// Supported reports whether s is one of the four window shapes the engine handles.
func (s Shape) Supported() bool {
	return (s.Rows == 2 || s.Rows == 3) && (s.Cols == 2 || s.Cols == 3)
}

// SubWindows returns the number of 2x2 blocks contained in a window of this shape.
func (s Shape) SubWindows() int {
	return (s.Rows - 1) * (s.Cols - 1)
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%d", s.Rows, s.Cols)
}

// EdgePolicy decides how pixels whose 3x3 neighbourhood leaves the image are treated.
type EdgePolicy int

const (
	// EdgeCrop only evaluates fully contained 3x3 windows; the output loses a
	// one pixel border on each side.
	EdgeCrop EdgePolicy = iota
	// EdgeShrink clamps the window to the image, producing 2x3/3x2 windows along
	// the edges and 2x2 windows at the corners. Output size equals input size.
	EdgeShrink
)

func (p EdgePolicy) String() string {
	switch p {
	case EdgeCrop:
		return "crop"
	case EdgeShrink:
		return "shrink"
	default:
		return "unknown"
	}
}

// ParseEdgePolicy maps "crop" or "shrink" to an EdgePolicy.
func ParseEdgePolicy(name string) (EdgePolicy, error) {
	switch name {
	case "crop", "":
		return EdgeCrop, nil
	case "shrink":
		return EdgeShrink, nil
	default:
		return 0, fmt.Errorf("unknown edge policy %q", name)
	}
}

// OutputSize returns the dimensions of the image the driver produces for a
// width x height input.
func (p EdgePolicy) OutputSize(width, height int) (int, int) {
	if p == EdgeCrop {
		return width - 2, height - 2
	}
	return width, height
}

// Window is a small rectangular block of samples. Cells are addressed by their
// position inside the window, not by image coordinates.
type Window struct {
	Shape Shape
	// Center is the in-window position of the pixel the window was sampled for.
	Center image.Point
	cells  [9]uint8
}

// NewWindow builds a window from row-major cell values.
func NewWindow(rows [][]uint8) Window {
	var w Window
	w.Shape = Shape{Rows: len(rows)}
	if len(rows) > 0 {
		w.Shape.Cols = len(rows[0])
	}
	if !w.Shape.Supported() {
		panic(fmt.Sprintf("unsupported window shape %s", w.Shape))
	}
	for r, row := range rows {
		if len(row) != w.Shape.Cols {
			panic(fmt.Sprintf("window row %d has %d cells, want %d", r, len(row), w.Shape.Cols))
		}
		copy(w.cells[r*w.Shape.Cols:], row)
	}
	w.Center = image.Pt(w.Shape.Cols/2, w.Shape.Rows/2)
	return w
}

// At returns the cell at row r, column c.
func (w Window) At(r, c int) uint8 { return w.cells[r*w.Shape.Cols+c] }

// Len returns the number of cells.
func (w Window) Len() int { return w.Shape.Rows * w.Shape.Cols }

// Cells returns a copy of the cell values in row-major order.
func (w Window) Cells() []uint8 {
	out := make([]uint8, w.Len())
	copy(out, w.cells[:w.Len()])
	return out
}

// CenterValue returns the sample of the pixel the window was taken for.
func (w Window) CenterValue() uint8 { return w.At(w.Center.Y, w.Center.X) }

// Sample copies a window of the given shape whose top-left cell is anchor.
// The caller guarantees the window lies inside the image.
func Sample(img *Image, channel int, anchor image.Point, shape Shape) Window {
	if !shape.Supported() {
		panic(fmt.Sprintf("unsupported window shape %s", shape))
	}
	w := Window{Shape: shape}
	stride := img.Width * img.Channels
	i := 0
	for r := 0; r < shape.Rows; r++ {
		off := (anchor.Y+r)*stride + anchor.X*img.Channels + channel
		for c := 0; c < shape.Cols; c++ {
			w.cells[i] = img.Pix[off]
			off += img.Channels
			i++
		}
	}
	w.Center = image.Pt(shape.Cols/2, shape.Rows/2)
	return w
}

// Neighborhood samples the window feeding output pixel (x, y).
//
// With EdgeCrop, (x, y) is an output coordinate and the 3x3 window is anchored
// at (x, y) in the input. With EdgeShrink the window is centred on (x, y) and
// clamped to the image bounds.
func Neighborhood(img *Image, channel, x, y int, edge EdgePolicy) Window {
	if edge == EdgeCrop {
		return Sample(img, channel, image.Pt(x, y), Shape3x3)
	}

	x0, x1 := max(x-1, 0), min(x+1, img.Width-1)
	y0, y1 := max(y-1, 0), min(y+1, img.Height-1)
	w := Sample(img, channel, image.Pt(x0, y0), Shape{Rows: y1 - y0 + 1, Cols: x1 - x0 + 1})
	w.Center = image.Pt(x-x0, y-y0)
	return w
}
