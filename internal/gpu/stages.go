//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// fieldWGSize is the workgroup size used by all extraction compute shaders.
// This matches the @workgroup_size attribute in every WGSL shader.
const fieldWGSize = 256

// FieldStage identifies one of the three compute stages of the extraction
// pipeline. The face-generation stage is not listed here: it runs as a
// vertex shader in the render pass, fed by DrawIndirect.
type FieldStage int

const (
	// StageSample evaluates the potential at every lattice corner.
	// Input: params. Output: scalars.
	StageSample FieldStage = iota

	// StageClassify places one smoothed vertex per sign-change cell.
	// Input: params + scalars. Output: verts (vec4: position + flag).
	StageClassify

	// StageCompact assigns every on-surface cell a dense slot via
	// atomicAdd on the indirect draw vertex count.
	// Input: params + verts. Output: active + args + stats.
	StageCompact

	// StageCount is the total number of compute stages.
	StageCount
)

// String returns the human-readable name of the compute stage.
func (s FieldStage) String() string {
	switch s {
	case StageSample:
		return "sample"
	case StageClassify:
		return "classify"
	case StageCompact:
		return "compact"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// stageBindGroupLayoutEntries returns the bind group layout entries for a
// given compute stage. These entries match the @group(0) @binding(N)
// annotations in the corresponding WGSL shader files exactly.
func stageBindGroupLayoutEntries(stage FieldStage) []gputypes.BindGroupLayoutEntry {
	// paramsUniform is binding(0) = FieldParams uniform buffer.
	// Every stage has this at binding 0.
	paramsUniform := gputypes.BindGroupLayoutEntry{
		Binding:    0,
		Visibility: gputypes.ShaderStageCompute,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	}
	storageRO := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
		}
	}
	storageRW := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
		}
	}

	switch stage {
	case StageSample:
		// @binding(0) uniform params
		// @binding(1) storage(read_write) scalars
		return []gputypes.BindGroupLayoutEntry{
			paramsUniform, storageRW(1),
		}

	case StageClassify:
		// @binding(0) uniform params
		// @binding(1) storage(read) scalars
		// @binding(2) storage(read_write) verts
		return []gputypes.BindGroupLayoutEntry{
			paramsUniform, storageRO(1), storageRW(2),
		}

	case StageCompact:
		// @binding(0) uniform params
		// @binding(1) storage(read) verts
		// @binding(2) storage(read_write) active
		// @binding(3) storage(read_write) args   -- atomicAdd vertex_count
		// @binding(4) storage(read_write) stats  -- atomicAdd active_cells
		return []gputypes.BindGroupLayoutEntry{
			paramsUniform, storageRO(1), storageRW(2), storageRW(3), storageRW(4),
		}

	default:
		return nil
	}
}

// stageBindGroupEntries returns the bind group entries for a given stage,
// mapping each binding index to the correct buffer from FieldBuffers.
func stageBindGroupEntries(stage FieldStage, bufs *FieldBuffers) []gputypes.BindGroupEntry {
	entry := func(binding uint32, buf hal.Buffer) gputypes.BindGroupEntry {
		return gputypes.BindGroupEntry{
			Binding: binding,
			Resource: gputypes.BufferBinding{
				Buffer: buf.NativeHandle(),
				Offset: 0,
				Size:   0, // 0 = entire buffer
			},
		}
	}

	switch stage {
	case StageSample:
		return []gputypes.BindGroupEntry{
			entry(0, bufs.Params),
			entry(1, bufs.Scalars),
		}

	case StageClassify:
		return []gputypes.BindGroupEntry{
			entry(0, bufs.Params),
			entry(1, bufs.Scalars),
			entry(2, bufs.Verts),
		}

	case StageCompact:
		return []gputypes.BindGroupEntry{
			entry(0, bufs.Params),
			entry(1, bufs.Verts),
			entry(2, bufs.Active),
			entry(3, bufs.DrawArgs),
			entry(4, bufs.Stats),
		}

	default:
		return nil
	}
}

// stageElementCount returns the number of threads a stage needs for the
// given grid: one per lattice corner for sampling, one per cell otherwise.
func stageElementCount(stage FieldStage, p FieldParams) uint32 {
	if stage == StageSample {
		return p.Corners * p.Corners * p.Corners
	}
	return p.N * p.N * p.N
}

// computeWorkgroupCount performs ceiling division of the element count by
// the workgroup size.
func computeWorkgroupCount(elementCount uint32) uint32 {
	return (elementCount + fieldWGSize - 1) / fieldWGSize
}
