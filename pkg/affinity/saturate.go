package affinity

// Saturate linearly stretches every channel of img in place so that its
// observed sample range maps onto 0..255. A constant channel maps to 0.
func Saturate(img *Image) {
	for c := 0; c < img.Channels; c++ {
		lo, hi := uint8(255), uint8(0)
		for i := c; i < len(img.Pix); i += img.Channels {
			v := img.Pix[i]
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}

		span := max(int(hi-lo), 1)
		for i := c; i < len(img.Pix); i += img.Channels {
			img.Pix[i] = uint8(int(img.Pix[i]-lo) * 255 / span)
		}
	}
}
