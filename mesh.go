package surfacenets

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/surfacenets/internal/fieldcompute"
)

// Mesh is an extracted isosurface as a flat triangle soup: three positions
// per triangle, one normal per vertex. Vertices are not shared; adjacent
// triangles repeat the same smoothed cell vertex.
type Mesh struct {
	// Positions holds vertex positions in world space, three per triangle.
	Positions []mgl32.Vec3

	// Normals holds one unit normal per vertex, parallel to Positions.
	Normals []mgl32.Vec3
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int { return len(m.Positions) / 3 }

// meshFromCompute adopts the internal mesh representation without copying.
func meshFromCompute(cm *fieldcompute.Mesh) *Mesh {
	return &Mesh{Positions: cm.Positions, Normals: cm.Normals}
}

// Camera holds the per-frame view parameters for GPU rendering.
type Camera struct {
	// MVP is the combined model-view-projection matrix applied to world
	// space vertices.
	MVP mgl32.Mat4

	// Eye is the camera position in world space.
	Eye mgl32.Vec3

	// Light is the direction toward the light in world space. It does not
	// need to be normalized; the shader normalizes it.
	Light mgl32.Vec3
}

// FrameStats summarizes one extraction pass.
type FrameStats struct {
	// ActiveCells is the number of cells whose corner samples straddle the
	// isosurface.
	ActiveCells uint32

	// Triangles is the triangle budget of the frame. On the GPU this is the
	// fixed vertex expansion (6 triangles per active cell, including
	// degenerate slots); on the CPU it is the exact emitted triangle count.
	Triangles uint32

	// GPU reports whether the frame was produced by the GPU pipeline.
	GPU bool

	// Elapsed is the wall-clock duration of the extraction.
	Elapsed time.Duration
}
