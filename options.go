package surfacenets

import "image"

// Option configures an Extractor during creation.
//
// Example:
//
//	// Default: GPU extraction when a backend is linked in, CPU otherwise.
//	ex, err := surfacenets.New(cfg, field)
//
//	// Force the CPU reference pipeline:
//	ex, err := surfacenets.New(cfg, field, surfacenets.WithoutGPU())
type Option func(*extractorOptions)

// extractorOptions holds optional configuration for Extractor creation.
type extractorOptions struct {
	workers        int
	maxBufferBytes uint64
	deviceProvider any
	colorRamp      image.Image
	withoutGPU     bool
	requireGPU     bool
}

// WithWorkers sets the number of goroutines the CPU pipeline uses.
// Zero or negative selects GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *extractorOptions) { o.workers = n }
}

// WithMaxBufferMB overrides the GPU buffer budget the grid is validated
// against. Zero keeps DefaultMaxBufferMB.
func WithMaxBufferMB(mb int) Option {
	return func(o *extractorOptions) {
		if mb > 0 {
			o.maxBufferBytes = uint64(mb) * 1024 * 1024
		}
	}
}

// WithDeviceProvider shares an externally owned GPU device with the
// extractor instead of letting it open its own adapter. The provider
// should implement [DeviceHandle] or expose HalDevice() any and
// HalQueue() any methods returning wgpu/hal types.
func WithDeviceProvider(provider any) Option {
	return func(o *extractorOptions) { o.deviceProvider = provider }
}

// WithColorRamp sets the altitude color ramp used by GPU rendering. The
// image is resampled to a 256x1 lookup texture.
func WithColorRamp(img image.Image) Option {
	return func(o *extractorOptions) { o.colorRamp = img }
}

// WithoutGPU forces the CPU reference pipeline even when a GPU backend
// is linked in.
func WithoutGPU() Option {
	return func(o *extractorOptions) { o.withoutGPU = true }
}

// WithRequireGPU makes New fail instead of falling back to the CPU when
// GPU initialization does not succeed.
func WithRequireGPU() Option {
	return func(o *extractorOptions) { o.requireGPU = true }
}
