//go:build !purego && !js

package imgio

import (
	"fmt"
	"io"

	"gocv.io/x/gocv"

	"mammofeat/pkg/affinity"
)

// SupportedFormats returns the extensions OpenCV reads and writes for us.
func SupportedFormats() []string {
	return []string{".pgm", ".ppm", ".pnm", ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp"}
}

func readFlags(mode ColorMode) gocv.IMReadFlag {
	if mode == ColorRGB {
		return gocv.IMReadColor
	}
	return gocv.IMReadGrayScale
}

// Load reads an image file and converts it to 8-bit samples.
func Load(path string, mode ColorMode) (*affinity.Image, error) {
	if !IsSupportedFormat(path) {
		return nil, unsupported(path)
	}
	src := gocv.IMRead(path, readFlags(mode))
	defer src.Close()
	if src.Empty() {
		return nil, fmt.Errorf("could not load image: %s", path)
	}

	return fromMat(src)
}

// Decode reads an encoded image from r.
func Decode(r io.Reader, mode ColorMode) (*affinity.Image, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	src, err := gocv.IMDecode(buf, readFlags(mode))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	defer src.Close()
	if src.Empty() {
		return nil, fmt.Errorf("decoding image: no image data")
	}

	return fromMat(src)
}

// Save writes img to path in the format implied by its extension.
func Save(path string, img *affinity.Image) error {
	if !IsSupportedFormat(path) {
		return unsupported(path)
	}
	m, err := toMat(img)
	if err != nil {
		return err
	}
	defer m.Close()

	if !gocv.IMWrite(path, m) {
		return fmt.Errorf("could not write image: %s", path)
	}
	return nil
}

// Encode writes img to w as PNG.
func Encode(w io.Writer, img *affinity.Image) error {
	m, err := toMat(img)
	if err != nil {
		return err
	}
	defer m.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, m)
	if err != nil {
		return fmt.Errorf("encoding image: %w", err)
	}
	defer buf.Close()

	_, err = w.Write(buf.GetBytes())
	return err
}

// fromMat copies an 8-bit Mat; colour samples are reordered from OpenCV's BGR
// to RGB.
func fromMat(m gocv.Mat) (*affinity.Image, error) {
	if m.Type() != gocv.MatTypeCV8UC1 && m.Type() != gocv.MatTypeCV8UC3 {
		return nil, fmt.Errorf("%w: mat type %v", affinity.ErrUnsupportedChannels, m.Type())
	}
	if m.Channels() == 3 {
		rgb := gocv.NewMat()
		defer rgb.Close()
		gocv.CvtColor(m, &rgb, gocv.ColorBGRToRGB)
		m = rgb
	}
	data, err := m.DataPtrUint8()
	if err != nil {
		return nil, fmt.Errorf("reading mat data: %w", err)
	}

	img := affinity.NewImage(m.Cols(), m.Rows(), m.Channels())
	copy(img.Pix, data)
	return img, nil
}

// toMat wraps img in a Mat in OpenCV channel order. The caller closes it.
func toMat(img *affinity.Image) (gocv.Mat, error) {
	mt := gocv.MatTypeCV8UC1
	switch img.Channels {
	case 1:
	case 3:
		mt = gocv.MatTypeCV8UC3
	default:
		return gocv.Mat{}, fmt.Errorf("%w: %d", affinity.ErrUnsupportedChannels, img.Channels)
	}

	m, err := gocv.NewMatFromBytes(img.Height, img.Width, mt, img.Pix)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("creating mat: %w", err)
	}
	if img.Channels == 1 {
		return m, nil
	}
	defer m.Close()
	bgr := gocv.NewMat()
	gocv.CvtColor(m, &bgr, gocv.ColorRGBToBGR)
	return bgr, nil
}
