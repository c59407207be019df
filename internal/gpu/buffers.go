//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// FieldBuffers holds all GPU buffer references for the extraction pipeline.
// Buffers are sized once for a grid configuration and reused across frames;
// the per-frame reset only rewrites Params, DrawArgs, and Stats.
type FieldBuffers struct {
	// Params is the FieldParams uniform buffer.
	// Bound at group(0) binding(0) in all stages and in the face pass.
	Params hal.Buffer

	// Scalars holds one potential sample per lattice corner, (N+1)^3 f32.
	// Written by sample, read by classify and the face pass.
	Scalars hal.Buffer

	// Verts holds one vec4 per cell: world position in xyz, on-surface
	// flag in w. Written by classify, read by compact and the face pass.
	Verts hal.Buffer

	// Active is the compacted list of on-surface cell indices, N^3 u32
	// worst case. Written by compact, read by the face vertex shader.
	Active hal.Buffer

	// DrawArgs is the 16-byte indirect draw argument block. Reset by the
	// host each frame, accumulated by compact, consumed by DrawIndirect.
	DrawArgs hal.Buffer

	// Stats is the 4-byte active-cell counter, readable by the host.
	Stats hal.Buffer
}

// fieldBufSizes holds computed buffer sizes for a grid configuration.
type fieldBufSizes struct {
	params   uint64
	scalars  uint64
	verts    uint64
	active   uint64
	drawArgs uint64
	stats    uint64
}

func computeFieldBufSizes(p FieldParams) fieldBufSizes {
	corners := uint64(p.Corners)
	cells := uint64(p.N) * uint64(p.N) * uint64(p.N)
	return fieldBufSizes{
		params:   fieldParamsSize,
		scalars:  corners * corners * corners * 4,
		verts:    cells * 16,
		active:   cells * 4,
		drawArgs: drawArgsSize,
		stats:    4,
	}
}

// total returns the summed byte size of all pipeline buffers, used for
// validating a grid against storage limits before any allocation.
func (s fieldBufSizes) total() uint64 {
	return s.params + s.scalars + s.verts + s.active + s.drawArgs + s.stats
}

// AllocateBuffers creates all GPU buffers for the given grid parameters.
// The caller must call DestroyBuffers when the configuration changes or the
// pipeline shuts down.
func (d *FieldDispatcher) AllocateBuffers(p FieldParams) (*FieldBuffers, error) {
	sz := computeFieldBufSizes(p)
	bufs := &FieldBuffers{}

	uniformCPU := gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst
	storageGPU := gputypes.BufferUsageStorage
	// DrawArgs doubles as the indirect source; Stats is read back.
	argsUsage := gputypes.BufferUsageStorage | gputypes.BufferUsageIndirect | gputypes.BufferUsageCopyDst
	statsUsage := gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc

	type bufSpec struct {
		target *hal.Buffer
		label  string
		size   uint64
		usage  gputypes.BufferUsage
	}
	specs := []bufSpec{
		{&bufs.Params, "snets_params", sz.params, uniformCPU},
		{&bufs.Scalars, "snets_scalars", sz.scalars, storageGPU},
		{&bufs.Verts, "snets_verts", sz.verts, storageGPU},
		{&bufs.Active, "snets_active", sz.active, storageGPU},
		{&bufs.DrawArgs, "snets_draw_args", sz.drawArgs, argsUsage},
		{&bufs.Stats, "snets_stats", sz.stats, statsUsage},
	}

	for _, s := range specs {
		buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
			Label: s.label,
			Size:  s.size,
			Usage: s.usage,
		})
		if err != nil {
			d.DestroyBuffers(bufs)
			return nil, fmt.Errorf("surfacenets gpu: create %s buffer: %w", s.label, err)
		}
		*s.target = buf
	}

	slogger().Debug("surfacenets gpu: buffers allocated",
		"grid", fmt.Sprintf("%d^3", p.N),
		"scalar_bytes", sz.scalars,
		"vertex_bytes", sz.verts,
		"total_bytes", sz.total())

	return bufs, nil
}

// DestroyBuffers releases all GPU buffers in the given FieldBuffers.
// After this call, the buffers must not be used.
func (d *FieldDispatcher) DestroyBuffers(bufs *FieldBuffers) {
	if bufs == nil {
		return
	}

	destroyBuf := func(b hal.Buffer) {
		if b != nil {
			d.device.DestroyBuffer(b)
		}
	}

	destroyBuf(bufs.Params)
	destroyBuf(bufs.Scalars)
	destroyBuf(bufs.Verts)
	destroyBuf(bufs.Active)
	destroyBuf(bufs.DrawArgs)
	destroyBuf(bufs.Stats)

	// Zero out all fields to prevent accidental reuse.
	*bufs = FieldBuffers{}
}
