//go:build purego || js

package imgio

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spakin/netpbm"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"mammofeat/pkg/affinity"
)

// SupportedFormats returns the extensions the pure Go codecs read and write.
func SupportedFormats() []string {
	return []string{".pgm", ".ppm", ".pnm", ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp"}
}

// Load reads an image file and converts it to 8-bit samples.
func Load(path string, mode ColorMode) (*affinity.Image, error) {
	if !IsSupportedFormat(path) {
		return nil, unsupported(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	return Decode(f, mode)
}

// Decode reads an encoded image from r. Netpbm input is recognised through
// the decoders netpbm registers with the image package.
func Decode(r io.Reader, mode ColorMode) (*affinity.Image, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	img := affinity.NewImage(w, h, mode.Channels())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := src.At(bounds.Min.X+x, bounds.Min.Y+y)
			if mode == ColorGray {
				img.Set(x, y, 0, color.GrayModel.Convert(c).(color.Gray).Y)
				continue
			}
			r, g, b, _ := c.RGBA()
			img.Set(x, y, 0, uint8(r>>8))
			img.Set(x, y, 1, uint8(g>>8))
			img.Set(x, y, 2, uint8(b>>8))
		}
	}
	return img, nil
}

// Save writes img to path in the format implied by its extension.
func Save(path string, img *affinity.Image) error {
	if !IsSupportedFormat(path) {
		return unsupported(path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating image file: %w", err)
	}
	if err := encodeAs(f, img, strings.ToLower(filepath.Ext(path))); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// Encode writes img to w as PNG.
func Encode(w io.Writer, img *affinity.Image) error {
	return encodeAs(w, img, ".png")
}

func encodeAs(w io.Writer, img *affinity.Image, ext string) error {
	m, err := toStdImage(img)
	if err != nil {
		return err
	}
	switch ext {
	case ".png":
		return png.Encode(w, m)
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, m, &jpeg.Options{Quality: 95})
	case ".tif", ".tiff":
		return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate})
	case ".bmp":
		return bmp.Encode(w, m)
	case ".pgm", ".ppm", ".pnm":
		return netpbm.Encode(w, m, &netpbm.EncodeOptions{
			Format:   netpbmFormat(ext, img.Channels),
			MaxValue: 255,
		})
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func netpbmFormat(ext string, channels int) netpbm.Format {
	switch {
	case ext == ".pgm":
		return netpbm.PGM
	case ext == ".ppm":
		return netpbm.PPM
	case channels == 3:
		return netpbm.PPM
	default:
		return netpbm.PGM
	}
}

func toStdImage(img *affinity.Image) (image.Image, error) {
	rect := image.Rect(0, 0, img.Width, img.Height)
	switch img.Channels {
	case 1:
		g := image.NewGray(rect)
		copy(g.Pix, img.Pix)
		return g, nil
	case 3:
		rgba := image.NewRGBA(rect)
		for i, j := 0, 0; i < len(img.Pix); i, j = i+3, j+4 {
			rgba.Pix[j] = img.Pix[i]
			rgba.Pix[j+1] = img.Pix[i+1]
			rgba.Pix[j+2] = img.Pix[i+2]
			rgba.Pix[j+3] = 0xff
		}
		return rgba, nil
	default:
		return nil, fmt.Errorf("%w: %d", affinity.ErrUnsupportedChannels, img.Channels)
	}
}
