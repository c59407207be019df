package surfacenets

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/gogpu/surfacenets/internal/fieldcompute"
	"github.com/gogpu/surfacenets/potential"
)

// Extractor runs the surface nets pipeline over one fixed grid and
// potential: sample the scalar field at grid corners, place one smoothed
// vertex per sign-change cell, compact the active cells, and generate the
// quad faces linking neighboring vertices.
//
// When a GPU backend package is linked in (blank import of
// surfacenets/gpu) the four stages run as GPU compute and render passes;
// otherwise, or when GPU initialization fails, the CPU reference pipeline
// produces the same mesh.
//
// An Extractor is safe for concurrent use; extraction calls serialize.
type Extractor struct {
	mu      sync.Mutex
	cfg     Config
	field   potential.Field
	workers int
	acc     Accelerator
	start   time.Time
	closed  bool
}

// New creates an extractor for the given grid and potential.
//
// The configuration is validated against the buffer budget first. GPU
// initialization failures are logged and downgrade the extractor to the
// CPU pipeline unless WithRequireGPU is set.
func New(cfg Config, field potential.Field, opts ...Option) (*Extractor, error) {
	if field == nil {
		return nil, ErrNilField
	}

	var o extractorOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(o.maxBufferBytes); err != nil {
		return nil, err
	}

	ex := &Extractor{
		cfg:     cfg,
		field:   field,
		workers: o.workers,
		start:   time.Now(),
	}

	if !o.withoutGPU {
		if acc := newAccelerator(); acc != nil {
			acc.SetLogger(Logger())
			if err := ex.initGPU(acc, &o); err != nil {
				if o.requireGPU {
					return nil, err
				}
				Logger().Warn("GPU init failed, falling back to CPU extraction",
					"accelerator", acc.Name(), "error", err)
			} else {
				ex.acc = acc
				trackAccelerator(acc)
			}
		}
	}
	if ex.acc == nil && o.requireGPU {
		return nil, fmt.Errorf("%w: no accelerator registered", ErrNoGPU)
	}
	return ex, nil
}

// initGPU wires the provider and color ramp and initializes the
// accelerator; the accelerator is closed on failure.
func (ex *Extractor) initGPU(acc Accelerator, o *extractorOptions) error {
	if o.deviceProvider != nil {
		if err := acc.SetDeviceProvider(o.deviceProvider); err != nil {
			acc.Close()
			return err
		}
	}
	if err := acc.Init(ex.cfg, ex.field); err != nil {
		acc.Close()
		return err
	}
	if o.colorRamp != nil {
		acc.SetColorRamp(o.colorRamp)
	}
	return nil
}

// GPUActive reports whether the GPU pipeline is in use.
func (ex *Extractor) GPUActive() bool {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	return ex.acc != nil
}

// Config returns the extractor's grid configuration.
func (ex *Extractor) Config() Config { return ex.cfg }

// Extract runs one extraction pass and returns its statistics. On the GPU
// the mesh stays resident in GPU buffers for RenderFrame; on the CPU the
// mesh is built and discarded (use ExtractMesh to keep it).
func (ex *Extractor) Extract() (FrameStats, error) {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	if ex.closed {
		return FrameStats{}, ErrClosed
	}

	if ex.acc != nil {
		return ex.acc.Extract(float32(time.Since(ex.start).Seconds()))
	}

	began := time.Now()
	_, stats := fieldcompute.Extract(ex.grid(), ex.field, ex.workers)
	return FrameStats{
		ActiveCells: stats.ActiveCells,
		Triangles:   stats.Triangles,
		Elapsed:     time.Since(began),
	}, nil
}

// ExtractMesh runs the CPU reference pipeline and returns the mesh. It is
// independent of the GPU state and always available, so hosts can inspect
// geometry or export it even when frames render on the GPU.
func (ex *Extractor) ExtractMesh() (*Mesh, FrameStats, error) {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	if ex.closed {
		return nil, FrameStats{}, ErrClosed
	}

	began := time.Now()
	mesh, stats := fieldcompute.Extract(ex.grid(), ex.field, ex.workers)
	return meshFromCompute(mesh), FrameStats{
		ActiveCells: stats.ActiveCells,
		Triangles:   stats.Triangles,
		Elapsed:     time.Since(began),
	}, nil
}

// RenderFrame draws the most recently extracted frame into dst using the
// GPU pipeline. Returns ErrNoGPU when extraction runs on the CPU.
func (ex *Extractor) RenderFrame(cam Camera, dst *image.RGBA) error {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	if ex.closed {
		return ErrClosed
	}
	if ex.acc == nil {
		return ErrNoGPU
	}
	return ex.acc.Render(cam, dst)
}

// SetColorRamp replaces the altitude color ramp used by GPU rendering.
// Pass nil to restore the built-in terrain ramp. No-op on the CPU path.
func (ex *Extractor) SetColorRamp(img image.Image) {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	if ex.acc != nil {
		ex.acc.SetColorRamp(img)
	}
}

// Close releases the extractor's GPU resources. The extractor cannot be
// used afterwards. Close is idempotent.
func (ex *Extractor) Close() {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	if ex.closed {
		return
	}
	ex.closed = true
	if ex.acc != nil {
		untrackAccelerator(ex.acc)
		ex.acc.Close()
		ex.acc = nil
	}
}

func (ex *Extractor) grid() fieldcompute.Grid {
	return fieldcompute.Grid{N: ex.cfg.N, CellSize: ex.cfg.CellSize, Origin: ex.cfg.Origin}
}
