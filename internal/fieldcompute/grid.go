// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fieldcompute

import "github.com/go-gl/mathgl/mgl32"

// Field is any scalar function of position. potential.Field satisfies it.
type Field interface {
	Eval(x, y, z float32) float32
}

// Grid describes the sampling lattice: N cells per side, corner (i,j,k)
// at Origin + (i,j,k)*CellSize.
type Grid struct {
	N        int
	CellSize float32
	Origin   mgl32.Vec3
}

// CornerPos returns the world position of grid corner (x, y, z).
func (g Grid) CornerPos(x, y, z int) mgl32.Vec3 {
	return mgl32.Vec3{
		g.Origin.X() + float32(x)*g.CellSize,
		g.Origin.Y() + float32(y)*g.CellSize,
		g.Origin.Z() + float32(z)*g.CellSize,
	}
}

// cornerOffsets are the 8 cell corners in binary order: bit 0 = +x,
// bit 1 = +y, bit 2 = +z. The classify shader uses the same order.
var cornerOffsets = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
}

// cellEdges are the 12 cell edges as pairs of corner indices: 4 along x,
// 4 along y, 4 along z.
var cellEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7}, // x
	{0, 2}, {1, 3}, {4, 6}, {5, 7}, // y
	{0, 4}, {1, 5}, {2, 6}, {3, 7}, // z
}

// Volume is a dense scalar volume over the (N+1)^3 grid corners.
type Volume struct {
	N    int // cells per side; (N+1) corners per side
	Data []float32
}

// NewVolume allocates a zero volume for an N-cell grid.
func NewVolume(n int) *Volume {
	k := n + 1
	return &Volume{N: n, Data: make([]float32, k*k*k)}
}

// Index returns the linear index of corner (x, y, z).
func (v *Volume) Index(x, y, z int) int {
	k := v.N + 1
	return (z*k+y)*k + x
}

// At returns the scalar value at corner (x, y, z).
func (v *Volume) At(x, y, z int) float32 {
	return v.Data[v.Index(x, y, z)]
}

// CellGrid holds per-cell classification output: the on-surface flag and,
// for on-surface cells, the smoothed vertex position in world space.
type CellGrid struct {
	N     int
	Verts []mgl32.Vec3 // valid only where Flags is set
	Flags []bool
}

// NewCellGrid allocates an empty cell grid for an N-cell grid.
func NewCellGrid(n int) *CellGrid {
	return &CellGrid{
		N:     n,
		Verts: make([]mgl32.Vec3, n*n*n),
		Flags: make([]bool, n*n*n),
	}
}

// Index returns the linear index of cell (x, y, z). This matches the
// compaction contract: z*N*N + y*N + x, identical on both backends.
func (g *CellGrid) Index(x, y, z int) int {
	return (z*g.N+y)*g.N + x
}

// Coords decodes a linear cell index back into (x, y, z).
func (g *CellGrid) Coords(i int) (x, y, z int) {
	x = i % g.N
	y = (i / g.N) % g.N
	z = i / (g.N * g.N)
	return
}

// OnSurfaceCount returns the number of flagged cells (sequential scan;
// used by tests to verify the compactor).
func (g *CellGrid) OnSurfaceCount() int {
	n := 0
	for _, f := range g.Flags {
		if f {
			n++
		}
	}
	return n
}
