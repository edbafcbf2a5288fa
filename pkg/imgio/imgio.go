// Package imgio loads and stores 8-bit images for the feature pipeline.
//
// The default build reads and writes through OpenCV (gocv). Building with the
// purego tag (or for js/wasm) switches to the standard image codecs plus TIFF
// and BMP from golang.org/x/image and netpbm from github.com/spakin/netpbm.
// Both backends handle the PGM files of the MIAS mammogram set.
package imgio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned when the active backend cannot handle a
// file extension.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ColorMode selects how decoded images are mapped to channels.
type ColorMode int

const (
	// ColorGray converts every input to a single luminance channel.
	ColorGray ColorMode = iota
	// ColorRGB keeps three channels in R, G, B order.
	ColorRGB
)

func (m ColorMode) String() string {
	switch m {
	case ColorGray:
		return "gray"
	case ColorRGB:
		return "rgb"
	default:
		return "unknown"
	}
}

// ParseColorMode maps "gray" or "rgb" to a ColorMode.
func ParseColorMode(name string) (ColorMode, error) {
	switch strings.ToLower(name) {
	case "gray", "grey", "":
		return ColorGray, nil
	case "rgb", "color":
		return ColorRGB, nil
	default:
		return 0, fmt.Errorf("unknown color mode %q", name)
	}
}

// Channels returns the channel count produced by the mode.
func (m ColorMode) Channels() int {
	if m == ColorRGB {
		return 3
	}
	return 1
}

// IsSupportedFormat reports whether the active backend can read path.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// OutputName returns the file name an output derived from input should be
// written under. The extension is kept when the backend can encode it and
// replaced by .png otherwise.
func OutputName(input string) string {
	base := filepath.Base(input)
	if IsSupportedFormat(base) {
		return base
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".png"
}

func unsupported(path string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}
