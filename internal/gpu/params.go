//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// FieldParams holds the per-frame grid parameters that map to the
// FieldParams uniform buffer in every WGSL shader.
//
// This struct must match the WGSL FieldParams struct: two u32 fields, two
// f32 fields, then a vec3<f32> aligned to 16 bytes. The trailing 4 bytes of
// padding bring the uniform to its 32-byte WGSL size.
type FieldParams struct {
	// N is the number of cells per grid side.
	N uint32

	// Corners is N+1, the number of lattice corners per side.
	Corners uint32

	// CellSize is the world-space edge length of one cell.
	CellSize float32

	// Time is the elapsed time in seconds, available to animated potentials.
	Time float32

	// Origin is the world-space position of lattice corner (0,0,0).
	Origin mgl32.Vec3
}

// fieldParamsSize is the byte size of the FieldParams uniform:
// 4 scalar fields (16 bytes) + vec3 at offset 16 (12 bytes) + 4 bytes pad.
const fieldParamsSize = 32

// toBytes serializes FieldParams to little-endian bytes matching the WGSL
// uniform layout.
func (p FieldParams) toBytes() []byte {
	buf := make([]byte, fieldParamsSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], p.N)
	le.PutUint32(buf[4:8], p.Corners)
	le.PutUint32(buf[8:12], math.Float32bits(p.CellSize))
	le.PutUint32(buf[12:16], math.Float32bits(p.Time))
	le.PutUint32(buf[16:20], math.Float32bits(p.Origin.X()))
	le.PutUint32(buf[20:24], math.Float32bits(p.Origin.Y()))
	le.PutUint32(buf[24:28], math.Float32bits(p.Origin.Z()))
	// Bytes 28..31 remain zero.
	return buf
}

// DrawIndirectArgs mirrors the 16-byte indirect draw argument block consumed
// by RenderPassEncoder.DrawIndirect. The compact stage accumulates
// VertexCount on the GPU; the host only ever writes the reset state.
type DrawIndirectArgs struct {
	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstInstance uint32
}

// drawArgsSize is the byte size of DrawIndirectArgs.
const drawArgsSize = 16

// facesVertsPerCell is the fixed vertex budget per active cell: 3 grid
// edges leaving the cell's minimal corner, 2 triangles each, 3 vertices
// per triangle. The vertex shader emits degenerate points for the unused
// slots. Must match the atomicAdd stride in compact.wgsl.
const facesVertsPerCell = 18

// resetDrawArgs is the host-side per-frame reset state: zero vertices,
// one instance. The compact stage only ever adds to VertexCount.
var resetDrawArgs = DrawIndirectArgs{InstanceCount: 1}

// toBytes serializes DrawIndirectArgs in little-endian order.
func (a DrawIndirectArgs) toBytes() []byte {
	buf := make([]byte, drawArgsSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], a.VertexCount)
	le.PutUint32(buf[4:8], a.InstanceCount)
	le.PutUint32(buf[8:12], a.FirstVertex)
	le.PutUint32(buf[12:16], a.FirstInstance)
	return buf
}

// cameraUniformSize is the byte size of the Camera uniform in faces.wgsl:
// mat4x4<f32> (64) + eye vec4 (16) + light vec4 (16).
const cameraUniformSize = 96

// cameraToBytes serializes the camera uniform: column-major MVP matrix,
// eye position, and light direction, each padded to vec4.
func cameraToBytes(mvp mgl32.Mat4, eye, light mgl32.Vec3) []byte {
	buf := make([]byte, cameraUniformSize)
	le := binary.LittleEndian
	for i := 0; i < 16; i++ {
		le.PutUint32(buf[i*4:i*4+4], math.Float32bits(mvp[i]))
	}
	putVec4 := func(off int, v mgl32.Vec3, w float32) {
		le.PutUint32(buf[off:off+4], math.Float32bits(v.X()))
		le.PutUint32(buf[off+4:off+8], math.Float32bits(v.Y()))
		le.PutUint32(buf[off+8:off+12], math.Float32bits(v.Z()))
		le.PutUint32(buf[off+12:off+16], math.Float32bits(w))
	}
	putVec4(64, eye, 1)
	putVec4(80, light, 0)
	return buf
}
