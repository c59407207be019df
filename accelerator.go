package surfacenets

import (
	"errors"
	"image"
	"log/slog"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/surfacenets/potential"
)

// DeviceHandle provides GPU device access from a host application.
//
// Hosts that already own a GPU device (a gogpu window, for example)
// implement DeviceHandle and pass it via [WithDeviceProvider], so the
// extractor shares the device instead of creating its own.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, giving the
// interface a surfacenets-specific name while staying compatible with the
// gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// Accelerator is a GPU extraction provider.
//
// When registered via RegisterAccelerator, Extractor tries GPU extraction
// first. If the accelerator fails to initialize, extraction transparently
// falls back to the CPU pipeline.
//
// Implementations are provided by GPU backend packages. Users opt in via
// blank import:
//
//	import _ "github.com/gogpu/surfacenets/gpu" // enables GPU extraction
type Accelerator interface {
	// Name returns the accelerator name (e.g., "wgpu").
	Name() string

	// Init compiles the potential to WGSL, creates GPU resources, and
	// allocates the field buffers for the given grid. Called once per
	// extractor. Returns ErrNotGPUExpressible if the potential contains
	// host-only nodes.
	Init(cfg Config, field potential.Field) error

	// Extract dispatches the compute stages for one frame. The elapsed
	// time feeds animated potentials.
	Extract(timeSec float32) (FrameStats, error)

	// Render draws the most recently extracted frame into dst.
	Render(cam Camera, dst *image.RGBA) error

	// SetDeviceProvider switches the accelerator to an externally owned
	// device. Must be called before Init.
	SetDeviceProvider(provider any) error

	// SetColorRamp replaces the altitude color ramp used by Render.
	SetColorRamp(img image.Image)

	// SetLogger configures diagnostic logging.
	SetLogger(l *slog.Logger)

	// Close releases all GPU resources held by the accelerator.
	Close()
}

var (
	accelMu      sync.RWMutex
	accelFactory func() Accelerator

	// liveAccels tracks accelerators owned by open extractors, so
	// SetLogger reaches pipelines created before the call.
	liveAccels = map[Accelerator]struct{}{}
)

// RegisterAccelerator registers a factory for GPU accelerators. Each
// Extractor gets its own instance, so several extractors with different
// grids and potentials can coexist.
//
// Only one factory can be registered; subsequent calls replace it. Typical
// usage is a blank import of the backend package, whose init calls this:
//
//	func init() {
//	    surfacenets.RegisterAccelerator(func() surfacenets.Accelerator {
//	        return gpu.NewFieldAccelerator()
//	    })
//	}
func RegisterAccelerator(factory func() Accelerator) error {
	if factory == nil {
		return errors.New("surfacenets: accelerator factory must not be nil")
	}
	accelMu.Lock()
	accelFactory = factory
	accelMu.Unlock()
	return nil
}

// newAccelerator returns a fresh accelerator from the registered factory,
// or nil if no backend package is linked in.
func newAccelerator() Accelerator {
	accelMu.RLock()
	f := accelFactory
	accelMu.RUnlock()
	if f == nil {
		return nil
	}
	return f()
}

// trackAccelerator records an accelerator adopted by an extractor.
func trackAccelerator(a Accelerator) {
	accelMu.Lock()
	liveAccels[a] = struct{}{}
	accelMu.Unlock()
}

// untrackAccelerator removes an accelerator on extractor close.
func untrackAccelerator(a Accelerator) {
	accelMu.Lock()
	delete(liveAccels, a)
	accelMu.Unlock()
}

// propagateLogger passes the logger to every live accelerator. Called from
// SetLogger so a logger configured after extractor creation still reaches
// running GPU pipelines.
func propagateLogger(l *slog.Logger) {
	accelMu.RLock()
	defer accelMu.RUnlock()
	for a := range liveAccels {
		a.SetLogger(l)
	}
}
