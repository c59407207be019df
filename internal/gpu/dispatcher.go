//go:build !nogpu

// dispatcher.go defines the GPU dispatch orchestration for the extraction
// pipeline. It manages shader compilation, pipeline creation, and the
// 3-stage dispatch sequence that mirrors the CPU reference in
// internal/fieldcompute.

package gpu

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// fieldFenceTimeout is the maximum time to wait for GPU work to complete.
const fieldFenceTimeout = 5 * time.Second

// FieldDispatcher orchestrates the extraction compute pipeline.
// It manages shader compilation and the 3-stage dispatch sequence that
// mirrors the CPU reference in internal/fieldcompute.
//
// Pipeline stages (in dispatch order):
//  1. sample   -- potential evaluation at every lattice corner
//  2. classify -- per-cell sign masks and smoothed vertex placement
//  3. compact  -- atomic slot assignment into the indirect draw args
//
// Each stage's output feeds into subsequent stages through GPU storage
// buffers; compute passes in one command encoder get implicit storage
// barriers between them. The face pass (faces.wgsl) is owned by
// FacesRenderer and consumes the compacted args via DrawIndirect.
type FieldDispatcher struct {
	mu sync.RWMutex

	// device is the HAL device providing GPU resource creation.
	device hal.Device

	// queue is the HAL queue for command submission and buffer writes.
	queue hal.Queue

	// pipelines are the compiled compute pipelines, one per stage.
	pipelines [StageCount]hal.ComputePipeline

	// pipelineLayouts are the pipeline layouts, one per stage.
	pipelineLayouts [StageCount]hal.PipelineLayout

	// bgLayouts are the bind group layouts, one per stage.
	bgLayouts [StageCount]hal.BindGroupLayout

	// shaderModules are the compiled shader modules, one per stage.
	shaderModules [StageCount]hal.ShaderModule

	// shaderSources are the WGSL sources, indexed by stage. The sample
	// source is the template instantiated with the potential expression.
	shaderSources [StageCount]string

	// stagingStats is a persistent 4-byte MapRead buffer for the
	// active-cell count readback.
	stagingStats hal.Buffer

	// initialized indicates whether shaders have been compiled.
	initialized bool
}

// NewFieldDispatcher creates a dispatcher attached to the given HAL device
// and queue, specialized for the potential whose WGSL expression is
// potentialExpr. The dispatcher must be initialized with Init() before
// Encode() can be called.
func NewFieldDispatcher(device hal.Device, queue hal.Queue, potentialExpr string) (*FieldDispatcher, error) {
	samplerSrc, err := instantiateSampler(potentialExpr)
	if err != nil {
		return nil, err
	}

	d := &FieldDispatcher{
		device: device,
		queue:  queue,
	}
	d.shaderSources = [StageCount]string{
		StageSample:   samplerSrc,
		StageClassify: shaderClassify,
		StageCompact:  shaderCompact,
	}
	return d, nil
}

// Init compiles all WGSL shaders and creates compute pipelines.
// Must be called before Encode. It is safe to call Init multiple times;
// subsequent calls are no-ops if already initialized.
func (d *FieldDispatcher) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initialized {
		return nil
	}

	for i := FieldStage(0); i < StageCount; i++ {
		src := d.shaderSources[i]
		if src == "" {
			return fmt.Errorf("surfacenets gpu: missing shader source for stage %s", i)
		}

		stageName := fmt.Sprintf("snets_%s", i)

		module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  stageName,
			Source: hal.ShaderSource{WGSL: src},
		})
		if err != nil {
			d.destroyPartialInit(i)
			return fmt.Errorf("surfacenets gpu: create shader module for %s: %w", i, err)
		}
		d.shaderModules[i] = module

		entries := stageBindGroupLayoutEntries(i)
		bgLayout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label:   stageName + "_bgl",
			Entries: entries,
		})
		if err != nil {
			d.destroyPartialInit(i + 1) // module was already stored
			return fmt.Errorf("surfacenets gpu: create bind group layout for %s: %w", i, err)
		}
		d.bgLayouts[i] = bgLayout

		pipelineLayout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
			Label:            stageName + "_pl",
			BindGroupLayouts: []hal.BindGroupLayout{bgLayout},
		})
		if err != nil {
			d.destroyPartialInit(i + 1)
			return fmt.Errorf("surfacenets gpu: create pipeline layout for %s: %w", i, err)
		}
		d.pipelineLayouts[i] = pipelineLayout

		pipeline, err := d.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
			Label:  stageName,
			Layout: pipelineLayout,
			Compute: hal.ComputeState{
				Module:     module,
				EntryPoint: "main",
			},
		})
		if err != nil {
			d.destroyPartialInit(i + 1)
			return fmt.Errorf("surfacenets gpu: create compute pipeline for %s: %w", i, err)
		}
		d.pipelines[i] = pipeline

		slogger().Debug("surfacenets gpu: pipeline created",
			"stage", i.String(),
			"bindings", len(entries),
			"shader_bytes", len(src))
	}

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "snets_stats_staging",
		Size:  4,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		d.destroyPartialInit(StageCount)
		return fmt.Errorf("surfacenets gpu: create stats staging buffer: %w", err)
	}
	d.stagingStats = staging

	slogger().Info("surfacenets gpu: all pipelines initialized",
		"stages", int(StageCount))

	d.initialized = true
	return nil
}

// destroyPartialInit cleans up resources for stages [0, upTo) during
// a failed Init(). This ensures no resource leaks on partial initialization.
func (d *FieldDispatcher) destroyPartialInit(upTo FieldStage) {
	for j := FieldStage(0); j < upTo; j++ {
		if d.pipelines[j] != nil {
			d.device.DestroyComputePipeline(d.pipelines[j])
			d.pipelines[j] = nil
		}
		if d.pipelineLayouts[j] != nil {
			d.device.DestroyPipelineLayout(d.pipelineLayouts[j])
			d.pipelineLayouts[j] = nil
		}
		if d.bgLayouts[j] != nil {
			d.device.DestroyBindGroupLayout(d.bgLayouts[j])
			d.bgLayouts[j] = nil
		}
		if d.shaderModules[j] != nil {
			d.device.DestroyShaderModule(d.shaderModules[j])
			d.shaderModules[j] = nil
		}
	}
}

// Close releases all GPU resources held by the dispatcher.
// After Close, the dispatcher must be re-initialized with Init() before use.
func (d *FieldDispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.destroyPartialInit(StageCount)
	if d.stagingStats != nil {
		d.device.DestroyBuffer(d.stagingStats)
		d.stagingStats = nil
	}
	d.initialized = false
}

// dispatchResources tracks per-frame GPU resources for cleanup.
type dispatchResources struct {
	device     hal.Device
	bindGroups []hal.BindGroup
	cmdBuf     hal.CommandBuffer
	fence      hal.Fence
}

// cleanup destroys all tracked per-frame resources.
func (r *dispatchResources) cleanup() {
	if r.fence != nil {
		r.device.DestroyFence(r.fence)
	}
	if r.cmdBuf != nil {
		r.device.FreeCommandBuffer(r.cmdBuf)
	}
	for _, g := range r.bindGroups {
		r.device.DestroyBindGroup(g)
	}
}

// Dispatch runs one extraction frame: uploads the frame uniforms, resets
// the indirect args and stats, then records the three compute stages into
// a single command buffer and waits for completion. After Dispatch returns,
// bufs.DrawArgs holds the vertex count for the face pass and bufs.Stats the
// exact active-cell count.
func (d *FieldDispatcher) Dispatch(bufs *FieldBuffers, params FieldParams) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.initialized {
		return fmt.Errorf("surfacenets gpu: dispatcher not initialized, call Init() first")
	}
	if bufs == nil {
		return fmt.Errorf("surfacenets gpu: buffers must not be nil")
	}

	// Per-frame reset. instance_count is preset to 1 here; the compact
	// stage only bumps vertex_count.
	d.queue.WriteBuffer(bufs.Params, 0, params.toBytes())
	d.queue.WriteBuffer(bufs.DrawArgs, 0, resetDrawArgs.toBytes())
	d.queue.WriteBuffer(bufs.Stats, 0, []byte{0, 0, 0, 0})

	res := &dispatchResources{device: d.device}
	defer res.cleanup()

	if err := d.encodeComputeStages(res, bufs, params); err != nil {
		return err
	}
	return d.submitAndWait(res)
}

// encodeComputeStages records the three compute passes plus the stats copy
// into a command buffer.
func (d *FieldDispatcher) encodeComputeStages(res *dispatchResources, bufs *FieldBuffers, params FieldParams) error {
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "snets_extract",
	})
	if err != nil {
		return fmt.Errorf("surfacenets gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("snets_extract"); err != nil {
		return fmt.Errorf("surfacenets gpu: begin encoding: %w", err)
	}

	for i := FieldStage(0); i < StageCount; i++ {
		elements := stageElementCount(i, params)
		wgCount := computeWorkgroupCount(elements)
		if wgCount == 0 {
			continue
		}

		bg, bgErr := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   fmt.Sprintf("snets_%s_bg", i),
			Layout:  d.bgLayouts[i],
			Entries: stageBindGroupEntries(i, bufs),
		})
		if bgErr != nil {
			encoder.DiscardEncoding()
			return fmt.Errorf("surfacenets gpu: create bind group for %s: %w", i, bgErr)
		}
		res.bindGroups = append(res.bindGroups, bg)

		pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{
			Label: fmt.Sprintf("snets_%s", i),
		})
		pass.SetPipeline(d.pipelines[i])
		pass.SetBindGroup(0, bg, nil)
		pass.Dispatch(wgCount, 1, 1)
		pass.End()

		slogger().Debug("surfacenets gpu: dispatched stage",
			"stage", i.String(),
			"elements", elements,
			"workgroups", wgCount)
	}

	encoder.CopyBufferToBuffer(bufs.Stats, d.stagingStats, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: 4},
	})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("surfacenets gpu: end encoding: %w", err)
	}
	res.cmdBuf = cmdBuf
	return nil
}

// submitAndWait submits the command buffer and waits for GPU completion.
func (d *FieldDispatcher) submitAndWait(res *dispatchResources) error {
	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("surfacenets gpu: create fence: %w", err)
	}
	res.fence = fence

	if err := d.queue.Submit([]hal.CommandBuffer{res.cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("surfacenets gpu: submit: %w", err)
	}

	ok, err := d.device.Wait(fence, 1, fieldFenceTimeout)
	if err != nil {
		return fmt.Errorf("surfacenets gpu: wait for GPU: %w", err)
	}
	if !ok {
		return fmt.Errorf("surfacenets gpu: GPU timeout after %v", fieldFenceTimeout)
	}
	return nil
}

// ActiveCellCount reads back the active-cell counter written by the compact
// stage of the most recent Dispatch.
func (d *FieldDispatcher) ActiveCellCount() (uint32, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.initialized {
		return 0, fmt.Errorf("surfacenets gpu: dispatcher not initialized")
	}
	readback := make([]byte, 4)
	if err := d.queue.ReadBuffer(d.stagingStats, 0, readback); err != nil {
		return 0, fmt.Errorf("surfacenets gpu: stats readback: %w", err)
	}
	return binary.LittleEndian.Uint32(readback), nil
}
