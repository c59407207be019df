// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fieldcompute

import "github.com/go-gl/mathgl/mgl32"

// GradientAt returns the potential gradient of cell (x,y,z) estimated from
// the cell's own eight corner samples: each component is the mean difference
// between the four corners on the positive face and the four on the negative
// face. Only lattice-local reads, so boundary cells need no clamping. The
// result is in lattice units; only the direction is meaningful after
// normalizing. Matches sn_cell_normal in shaders/faces.wgsl.
func GradientAt(vol *Volume, x, y, z int) mgl32.Vec3 {
	var v [8]float32
	for i, off := range cornerOffsets {
		v[i] = vol.At(x+off[0], y+off[1], z+off[2])
	}
	return mgl32.Vec3{
		(v[1] + v[3] + v[5] + v[7] - v[0] - v[2] - v[4] - v[6]) * 0.25,
		(v[2] + v[3] + v[6] + v[7] - v[0] - v[1] - v[4] - v[5]) * 0.25,
		(v[4] + v[5] + v[6] + v[7] - v[0] - v[1] - v[2] - v[3]) * 0.25,
	}
}

// CellNormal normalizes the cell gradient. Zero-gradient cells fall back to
// +Y so downstream code never sees a NaN normal.
func CellNormal(vol *Volume, x, y, z int) mgl32.Vec3 {
	g := GradientAt(vol, x, y, z)
	if g.Len() == 0 {
		return mgl32.Vec3{0, 1, 0}
	}
	return g.Normalize()
}
