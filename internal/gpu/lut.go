//go:build !nogpu

package gpu

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// lutWidth is the width of the altitude color lookup texture. faces.wgsl
// samples it as a 256x1 RGBA8 strip along u = normalized altitude.
const lutWidth = 256

// buildLUTBytes resamples an arbitrary ramp image into the 256x1 RGBA strip
// uploaded as the altitude LUT. The image is stretched over the full strip,
// so any width works; typically the ramp is a 1-pixel-tall gradient.
func buildLUTBytes(img image.Image) []byte {
	strip := image.NewRGBA(image.Rect(0, 0, lutWidth, 1))
	xdraw.ApproxBiLinear.Scale(strip, strip.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return strip.Pix
}

// defaultAltitudeRamp builds the built-in terrain-style ramp: deep blue
// through green and brown to white.
func defaultAltitudeRamp() []byte {
	stops := []struct {
		at      float64
		r, g, b uint8
	}{
		{0.00, 22, 58, 122},   // deep water
		{0.30, 46, 118, 181},  // shallow water
		{0.38, 200, 186, 118}, // shore
		{0.50, 64, 134, 59},   // lowland
		{0.70, 116, 94, 61},   // highland
		{0.85, 130, 130, 130}, // rock
		{1.00, 245, 245, 245}, // snow
	}

	pix := make([]byte, lutWidth*4)
	for x := 0; x < lutWidth; x++ {
		t := float64(x) / float64(lutWidth-1)
		hi := 1
		for hi < len(stops)-1 && stops[hi].at < t {
			hi++
		}
		lo := hi - 1
		span := stops[hi].at - stops[lo].at
		f := 0.0
		if span > 0 {
			f = (t - stops[lo].at) / span
		}
		if f < 0 {
			f = 0
		} else if f > 1 {
			f = 1
		}
		pix[x*4+0] = uint8(float64(stops[lo].r) + f*float64(int(stops[hi].r)-int(stops[lo].r)))
		pix[x*4+1] = uint8(float64(stops[lo].g) + f*float64(int(stops[hi].g)-int(stops[lo].g)))
		pix[x*4+2] = uint8(float64(stops[lo].b) + f*float64(int(stops[hi].b)-int(stops[lo].b)))
		pix[x*4+3] = 255
	}
	return pix
}
