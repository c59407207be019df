// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fieldcompute

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ClassifyCells finds every sign-change cell in vol and places one smoothed
// vertex inside it. The vertex is the mean of the edge crossings, clamped to
// the cell box. Matches shaders/classify.wgsl thread for thread: one cell per
// invocation, inside means value < 0, crossing parameter t = |va|/(|va|+|vb|).
func ClassifyCells(g Grid, vol *Volume, workers int) *CellGrid {
	cells := NewCellGrid(g.N)
	slice := g.N * g.N
	parallelFor(g.N, workers, func(z0, z1 int) {
		var corner [8]float32
		for z := z0; z < z1; z++ {
			for y := 0; y < g.N; y++ {
				row := z*slice + y*g.N
				for x := 0; x < g.N; x++ {
					var mask uint8
					for i, off := range cornerOffsets {
						v := vol.At(x+off[0], y+off[1], z+off[2])
						corner[i] = v
						if v < 0 {
							mask |= 1 << i
						}
					}
					if mask == 0 || mask == 0xff {
						continue
					}

					var sum mgl32.Vec3
					crossings := 0
					for _, e := range cellEdges {
						va, vb := corner[e[0]], corner[e[1]]
						if (va < 0) == (vb < 0) {
							continue
						}
						t := abs32(va) / (abs32(va) + abs32(vb))
						a := cornerOffsets[e[0]]
						b := cornerOffsets[e[1]]
						sum = sum.Add(mgl32.Vec3{
							lerp(float32(a[0]), float32(b[0]), t),
							lerp(float32(a[1]), float32(b[1]), t),
							lerp(float32(a[2]), float32(b[2]), t),
						})
						crossings++
					}
					if crossings == 0 {
						// Unreachable: a mixed-sign mask implies at least
						// one sign-change edge.
						panic(fmt.Sprintf("fieldcompute: cell (%d,%d,%d) mask %#x has no crossings", x, y, z, mask))
					}

					inv := 1 / float32(crossings)
					local := mgl32.Vec3{
						clamp01(sum.X() * inv),
						clamp01(sum.Y() * inv),
						clamp01(sum.Z() * inv),
					}
					idx := row + x
					cells.Flags[idx] = true
					cells.Verts[idx] = mgl32.Vec3{
						g.Origin.X() + (float32(x)+local.X())*g.CellSize,
						g.Origin.Y() + (float32(y)+local.Y())*g.CellSize,
						g.Origin.Z() + (float32(z)+local.Z())*g.CellSize,
					}
				}
			}
		}
	})
	return cells
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
