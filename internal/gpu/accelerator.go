//go:build !nogpu

// Package gpu implements the GPU extraction pipeline: four WGSL passes
// (sample, classify, compact, faces) over wgpu/hal, orchestrated behind
// the surfacenets.Accelerator interface.
package gpu

import (
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/surfacenets"
	"github.com/gogpu/surfacenets/potential"
)

// FieldAccelerator is the wgpu-backed surface nets accelerator. It owns
// either a self-acquired Vulkan device or a provider-shared one, plus the
// compute dispatcher, the faces renderer, and the field buffers for one
// grid configuration.
type FieldAccelerator struct {
	mu sync.Mutex

	// Self-acquired device, nil when a provider supplies one.
	acquired *acquiredDevice

	device hal.Device
	queue  hal.Queue

	// provider is the external device provider, set before Init.
	provider any

	dispatcher *FieldDispatcher
	renderer   *FacesRenderer
	bufs       *FieldBuffers
	params     FieldParams

	initialized bool
}

// Compile-time check that FieldAccelerator satisfies the public contract.
var _ surfacenets.Accelerator = (*FieldAccelerator)(nil)

// NewFieldAccelerator creates an uninitialized accelerator. Init must be
// called before Extract or Render.
func NewFieldAccelerator() *FieldAccelerator { return &FieldAccelerator{} }

// Name returns the accelerator name.
func (a *FieldAccelerator) Name() string { return "wgpu" }

// SetDeviceProvider makes the accelerator use an externally owned device.
// Must be called before Init.
func (a *FieldAccelerator) SetDeviceProvider(provider any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.initialized {
		return fmt.Errorf("surfacenets gpu: device provider must be set before Init")
	}
	if _, _, err := providerHAL(provider); err != nil {
		return err
	}
	a.provider = provider
	return nil
}

// SetLogger configures diagnostic logging for the GPU pipeline.
func (a *FieldAccelerator) SetLogger(l *slog.Logger) { setLogger(l) }

// Init compiles the potential into the sampling shader, validates it,
// acquires a device (unless a provider supplied one), and creates the
// compute pipelines, field buffers, and renderer.
func (a *FieldAccelerator) Init(cfg surfacenets.Config, field potential.Field) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.initialized {
		return fmt.Errorf("surfacenets gpu: accelerator already initialized")
	}

	expr, ok := potential.CompileWGSL(field, "pos")
	if !ok {
		return surfacenets.ErrNotGPUExpressible
	}
	samplerWGSL, err := instantiateSampler(expr)
	if err != nil {
		return err
	}

	// Validate the generated shader host-side before touching the GPU, so
	// a malformed potential expression fails with a naga error instead of
	// a backend pipeline error.
	if err := validateWGSL(samplerWGSL); err != nil {
		return fmt.Errorf("surfacenets gpu: potential does not compile: %w", err)
	}

	if a.provider != nil {
		device, queue, err := providerHAL(a.provider)
		if err != nil {
			return err
		}
		a.device = device
		a.queue = queue
		slogger().Info("using shared GPU device")
	} else {
		acq, err := acquireDevice()
		if err != nil {
			return err
		}
		a.acquired = acq
		a.device = acq.device
		a.queue = acq.queue
		slogger().Info("GPU adapter selected", "adapter", acq.name)
	}

	dispatcher, err := NewFieldDispatcher(a.device, a.queue, expr)
	if err != nil {
		a.releaseDevice()
		return err
	}
	if err := dispatcher.Init(); err != nil {
		a.releaseDevice()
		return err
	}
	a.dispatcher = dispatcher

	a.params = FieldParams{
		N:        uint32(cfg.N),
		Corners:  uint32(cfg.Corners()),
		CellSize: cfg.CellSize,
		Origin:   cfg.Origin,
	}
	bufs, err := dispatcher.AllocateBuffers(a.params)
	if err != nil {
		a.dispatcher.Close()
		a.dispatcher = nil
		a.releaseDevice()
		return err
	}
	a.bufs = bufs
	a.renderer = NewFacesRenderer(a.device, a.queue)

	a.initialized = true
	return nil
}

// Extract dispatches the sample, classify, and compact passes for one
// frame and reads back the active-cell count.
func (a *FieldAccelerator) Extract(timeSec float32) (surfacenets.FrameStats, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.initialized {
		return surfacenets.FrameStats{}, surfacenets.ErrNoGPU
	}

	began := time.Now()
	params := a.params
	params.Time = timeSec
	if err := a.dispatcher.Dispatch(a.bufs, params); err != nil {
		return surfacenets.FrameStats{}, err
	}
	active, err := a.dispatcher.ActiveCellCount()
	if err != nil {
		return surfacenets.FrameStats{}, err
	}
	return surfacenets.FrameStats{
		ActiveCells: active,
		Triangles:   active * (facesVertsPerCell / 3),
		GPU:         true,
		Elapsed:     time.Since(began),
	}, nil
}

// Render draws the last dispatched frame into dst.
func (a *FieldAccelerator) Render(cam surfacenets.Camera, dst *image.RGBA) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.initialized {
		return surfacenets.ErrNoGPU
	}
	return a.renderer.Render(a.bufs, cam.MVP, cam.Eye, cam.Light, dst)
}

// SetColorRamp replaces the renderer's altitude ramp; safe before Init.
func (a *FieldAccelerator) SetColorRamp(img image.Image) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.renderer != nil {
		a.renderer.SetColorRamp(img)
	}
}

// Close releases all GPU resources. An externally provided device is left
// untouched.
func (a *FieldAccelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.renderer != nil {
		a.renderer.Destroy()
		a.renderer = nil
	}
	if a.bufs != nil && a.dispatcher != nil {
		a.dispatcher.DestroyBuffers(a.bufs)
		a.bufs = nil
	}
	if a.dispatcher != nil {
		a.dispatcher.Close()
		a.dispatcher = nil
	}
	a.releaseDevice()
	a.initialized = false
}

// releaseDevice destroys a self-acquired device; provider devices are
// owned by the host.
func (a *FieldAccelerator) releaseDevice() {
	if a.acquired != nil {
		a.acquired.release()
		a.acquired = nil
	}
	a.device = nil
	a.queue = nil
}

// validateWGSL compiles the shader with naga and checks the SPIR-V output.
// Known naga gaps (runtime-sized arrays on some versions) are tolerated;
// the backend compiler is the final arbiter.
func validateWGSL(src string) error {
	spirv, err := naga.Compile(src)
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") {
			slogger().Debug("naga validation skipped", "reason", msg)
			return nil
		}
		return err
	}
	if len(spirv) < 4 {
		return fmt.Errorf("naga produced truncated SPIR-V (%d bytes)", len(spirv))
	}
	return nil
}
