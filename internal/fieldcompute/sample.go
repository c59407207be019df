// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fieldcompute

// SampleVolume evaluates f at every lattice corner of g and returns the
// filled scalar volume. Mirrors shaders/sample.wgsl: one value per corner,
// (N+1)^3 corners, linear index z*(N+1)^2 + y*(N+1) + x.
func SampleVolume(g Grid, f Field, workers int) *Volume {
	corners := g.N + 1
	vol := &Volume{
		N:    g.N,
		Data: make([]float32, corners*corners*corners),
	}
	slice := corners * corners
	parallelFor(corners, workers, func(z0, z1 int) {
		for z := z0; z < z1; z++ {
			base := z * slice
			for y := 0; y < corners; y++ {
				row := base + y*corners
				for x := 0; x < corners; x++ {
					p := g.CornerPos(x, y, z)
					vol.Data[row+x] = f.Eval(p[0], p[1], p[2])
				}
			}
		}
	})
	return vol
}
