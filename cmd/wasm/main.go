//go:build js && wasm

package main

import (
	"bytes"
	"context"
	"syscall/js"

	"mammofeat/pkg/affinity"
	"mammofeat/pkg/features"
	"mammofeat/pkg/imgio"
)

var (
	lastFeature *affinity.Image
	lastZones   *features.ZoneAnalysis
)

func main() {
	js.Global().Set("analyzeImage", js.FuncOf(analyzeImage))
	js.Global().Set("renderOverlay", js.FuncOf(renderOverlay))
	select {} // block forever
}

// analyzeImage(fileBytes, {metric, edge, color, saturate}) computes the
// affinity image of an encoded PNG/JPEG/TIFF/BMP file.
func analyzeImage(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("usage: analyzeImage(fileBytes, options)")
	}

	jsBytes := args[0]
	length := jsBytes.Get("length").Int()
	fileBytes := make([]byte, length)
	js.CopyBytesToGo(fileBytes, jsBytes)

	params := affinity.NewParams()
	mode := imgio.ColorGray
	saturate := true
	if len(args) >= 2 && args[1].Type() == js.TypeObject {
		opts := args[1]
		var err error
		if v := opts.Get("metric"); v.Type() == js.TypeString {
			if params.Metric, err = affinity.ParseMetric(v.String()); err != nil {
				return errorResult(err.Error())
			}
		}
		if v := opts.Get("edge"); v.Type() == js.TypeString {
			if params.Edge, err = affinity.ParseEdgePolicy(v.String()); err != nil {
				return errorResult(err.Error())
			}
		}
		if v := opts.Get("color"); v.Type() == js.TypeString {
			if mode, err = imgio.ParseColorMode(v.String()); err != nil {
				return errorResult(err.Error())
			}
		}
		if v := opts.Get("saturate"); v.Type() == js.TypeBoolean {
			saturate = v.Bool()
		}
	}

	img, err := imgio.Decode(bytes.NewReader(fileBytes), mode)
	if err != nil {
		return errorResult("decode error: " + err.Error())
	}

	feature, err := affinity.Compute(context.Background(), img, params)
	if err != nil {
		return errorResult("affinity error: " + err.Error())
	}
	stats := features.Describe(feature)
	lastFeature = feature
	lastZones = features.AnalyzeZones(feature, 0)

	display := feature
	if saturate {
		display = feature.Clone()
		affinity.Saturate(display)
	}
	var buf bytes.Buffer
	if err := imgio.Encode(&buf, display); err != nil {
		return errorResult("encode error: " + err.Error())
	}

	jsStats := make([]interface{}, len(stats))
	for i, s := range stats {
		jsStats[i] = map[string]interface{}{
			"min":     int(s.Min),
			"max":     int(s.Max),
			"mean":    s.Mean,
			"stddev":  s.StdDev,
			"median":  s.Median,
			"mad":     s.MAD,
			"nonZero": s.NonZero,
		}
	}

	jsResult := map[string]interface{}{
		"width":    feature.Width,
		"height":   feature.Height,
		"channels": jsStats,
		"params":   params.String(),
		"png":      toUint8Array(buf.Bytes()),
	}

	if lastZones != nil {
		jsZones := make([]interface{}, len(features.ZoneOrder))
		for i, pos := range features.ZoneOrder {
			z := lastZones.Zones[pos]
			jsZones[i] = map[string]interface{}{
				"label":      z.Label,
				"mean":       z.Mean,
				"median":     z.Median,
				"nonZero":    z.NonZero,
				"pixelCount": z.PixelCount,
			}
		}
		jsResult["zones"] = map[string]interface{}{
			"zones":    jsZones,
			"spread":   lastZones.Spread,
			"hottest":  lastZones.Hottest.String(),
			"coldest":  lastZones.Coldest.String(),
			"reliable": lastZones.Reliable,
		}
	}

	return js.ValueOf(jsResult)
}

func renderOverlay(this js.Value, args []js.Value) interface{} {
	if lastFeature == nil || lastZones == nil {
		return js.Null()
	}

	jpegBytes, err := features.RenderZoneOverlayBytes(lastFeature, 0, lastZones)
	if err != nil {
		return js.Null()
	}
	return toUint8Array(jpegBytes)
}

func toUint8Array(b []byte) js.Value {
	uint8Array := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(uint8Array, b)
	return uint8Array
}

func errorResult(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{
		"error": msg,
	})
}
