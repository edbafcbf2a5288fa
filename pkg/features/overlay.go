package features

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"math"
	"os"

	"github.com/nfnt/resize"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"mammofeat/pkg/affinity"
)

// RenderZoneOverlay draws channel c of a feature image with the zone grid and
// per-zone statistics on top, and writes it as a JPEG file.
func RenderZoneOverlay(img *affinity.Image, c int, zones *ZoneAnalysis, outputPath string) error {
	rendered, err := renderZoneImage(img, c, zones)
	if err != nil {
		return err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create overlay file: %w", err)
	}
	defer f.Close()

	return jpeg.Encode(f, rendered, &jpeg.Options{Quality: 90})
}

// RenderZoneOverlayBytes is RenderZoneOverlay returning the JPEG bytes.
func RenderZoneOverlayBytes(img *affinity.Image, c int, zones *ZoneAnalysis) ([]byte, error) {
	rendered, err := renderZoneImage(img, c, zones)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rendered, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderZoneImage(img *affinity.Image, c int, zones *ZoneAnalysis) (*image.RGBA, error) {
	if zones == nil {
		return nil, fmt.Errorf("no zone analysis data")
	}
	if img.Width == 0 || img.Height == 0 {
		return nil, fmt.Errorf("empty feature image")
	}

	// Render at reduced resolution (800px wide, proportional height)
	const targetWidth = 800
	scale := float64(targetWidth) / float64(img.Width)
	imgW := targetWidth
	imgH := int(float64(img.Height) * scale)
	if imgH < 100 {
		imgH = 100
	}

	summaryH := 60
	totalH := imgH + summaryH

	out := image.NewRGBA(image.Rect(0, 0, imgW, totalH))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.RGBA{0, 0, 0, 255}), image.Point{}, draw.Src)
	// Nearest neighbour keeps the discrete feature levels visible.
	thumb := resize.Resize(uint(imgW), uint(imgH), channelGray(img, c), resize.NearestNeighbor)
	draw.Draw(out, image.Rect(0, 0, imgW, imgH), thumb, thumb.Bounds().Min, draw.Src)

	xLo := int(float64(imgW) * zoneEdgeFraction)
	xHi := int(float64(imgW) * (1.0 - zoneEdgeFraction))
	yLo := int(float64(imgH) * zoneEdgeFraction)
	yHi := int(float64(imgH) * (1.0 - zoneEdgeFraction))
	xBounds := [3][2]int{{0, xLo}, {xLo, xHi}, {xHi, imgW}}
	yBounds := [3][2]int{{0, yLo}, {yLo, yHi}, {yHi, imgH}}

	gridColor := color.RGBA{255, 200, 0, 255}
	for x := 0; x < imgW; x++ {
		out.SetRGBA(x, yLo, gridColor)
		out.SetRGBA(x, yHi, gridColor)
	}
	for y := 0; y < imgH; y++ {
		out.SetRGBA(xLo, y, gridColor)
		out.SetRGBA(xHi, y, gridColor)
	}

	face := basicfont.Face7x13
	textColor := color.RGBA{255, 230, 80, 255}
	for i, pos := range ZoneOrder {
		row, col := i/3, i%3
		zone := zones.Zones[pos]
		cx := (xBounds[col][0] + xBounds[col][1]) / 2
		cy := (yBounds[row][0] + yBounds[row][1]) / 2

		drawCenteredText(out, face, zone.Label, cx, cy-14, textColor)
		drawCenteredText(out, face, fmt.Sprintf("mean: %.2f", zone.Mean), cx, cy+2, textColor)
		drawCenteredText(out, face, fmt.Sprintf("nz=%.0f%%", zone.NonZero*100), cx, cy+16, textColor)
	}

	if zones.Hottest != zones.Coldest {
		fromX, fromY := zoneCenter(zones.Coldest, xBounds, yBounds)
		toX, toY := zoneCenter(zones.Hottest, xBounds, yBounds)
		arrowColor := color.RGBA{255, 80, 80, 255}
		drawLine(out, fromX, fromY, toX, toY, arrowColor)
		drawArrowHead(out, fromX, fromY, toX, toY, arrowColor)
	}

	summaryColor := color.RGBA{220, 220, 220, 255}
	summaryY := imgH + 15
	spreadStr := fmt.Sprintf("Spread: %.1f%%  (hottest: %s, coldest: %s)", zones.Spread, zones.Hottest, zones.Coldest)
	sizeStr := fmt.Sprintf("Feature image: %d x %d", zones.Width, zones.Height)
	if !zones.Reliable {
		sizeStr += "  [SMALL ZONES - UNRELIABLE]"
	}
	drawText(out, face, spreadStr, 10, summaryY, summaryColor)
	drawText(out, face, sizeStr, 10, summaryY+18, summaryColor)

	return out, nil
}

// channelGray copies channel c of img into a standard grayscale image.
func channelGray(img *affinity.Image, c int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			g.Pix[y*g.Stride+x] = img.At(x, y, c)
		}
	}
	return g
}

func zoneCenter(pos ZonePosition, xBounds, yBounds [3][2]int) (int, int) {
	row, col := int(pos)/3, int(pos)%3
	return (xBounds[col][0] + xBounds[col][1]) / 2, (yBounds[row][0] + yBounds[row][1]) / 2
}

func drawText(img *image.RGBA, face font.Face, s string, x, y int, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func drawCenteredText(img *image.RGBA, face font.Face, s string, cx, cy int, c color.RGBA) {
	advance := font.MeasureString(face, s)
	drawText(img, face, s, cx-advance.Round()/2, cy, c)
}

// drawLine draws a 2px Bresenham line.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := intAbs(x1 - x0)
	dy := -intAbs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		img.Set(x0, y0, c)
		img.Set(x0+1, y0, c)
		img.Set(x0, y0+1, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func drawArrowHead(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := float64(x1 - x0)
	dy := float64(y1 - y0)
	length := math.Hypot(dx, dy)
	if length < 1 {
		return
	}
	dx /= length
	dy /= length

	const sz = 15.0
	px := float64(x1) - dx*sz
	py := float64(y1) - dy*sz
	drawLine(img, x1, y1, int(px+dy*sz*0.4), int(py-dx*sz*0.4), c)
	drawLine(img, x1, y1, int(px-dy*sz*0.4), int(py+dx*sz*0.4), c)
}

func intAbs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
