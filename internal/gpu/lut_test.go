//go:build !nogpu

package gpu

import (
	"image"
	"image/color"
	"testing"
)

func TestDefaultAltitudeRamp(t *testing.T) {
	pix := defaultAltitudeRamp()
	if len(pix) != lutWidth*4 {
		t.Fatalf("ramp size = %d, want %d", len(pix), lutWidth*4)
	}

	// First stop: deep water blue.
	if pix[0] != 22 || pix[1] != 58 || pix[2] != 122 || pix[3] != 255 {
		t.Errorf("ramp start = %v, want deep water (22, 58, 122, 255)", pix[0:4])
	}
	// Last stop: snow.
	end := (lutWidth - 1) * 4
	if pix[end] != 245 || pix[end+1] != 245 || pix[end+2] != 245 {
		t.Errorf("ramp end = %v, want snow (245, 245, 245)", pix[end:end+3])
	}
	for x := 0; x < lutWidth; x++ {
		if pix[x*4+3] != 255 {
			t.Fatalf("alpha at %d = %d, want 255", x, pix[x*4+3])
		}
	}
}

func TestBuildLUTBytes(t *testing.T) {
	// A 2x1 red-to-red ramp resamples to a uniform strip.
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 200, A: 255})
	src.SetRGBA(1, 0, color.RGBA{R: 200, A: 255})

	pix := buildLUTBytes(src)
	if len(pix) != lutWidth*4 {
		t.Fatalf("LUT size = %d, want %d", len(pix), lutWidth*4)
	}
	for x := 0; x < lutWidth; x++ {
		if pix[x*4] != 200 || pix[x*4+1] != 0 {
			t.Fatalf("pixel %d = %v, want (200, 0, 0)", x, pix[x*4:x*4+4])
		}
	}
}
