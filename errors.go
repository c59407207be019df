package surfacenets

import "errors"

// Extraction errors.
var (
	// ErrGridTooLarge is returned when the grid's buffer sizes would exceed
	// the configured memory budget. This is checked before any dispatch.
	ErrGridTooLarge = errors.New("surfacenets: grid exceeds buffer budget")

	// ErrInvalidGrid is returned for a non-positive grid side or cell size.
	ErrInvalidGrid = errors.New("surfacenets: invalid grid configuration")

	// ErrNilField is returned when the potential field is nil.
	ErrNilField = errors.New("surfacenets: potential field is nil")

	// ErrClosed is returned when operating on a closed extractor.
	ErrClosed = errors.New("surfacenets: extractor is closed")

	// ErrNoGPU is returned by GPU-only operations when extraction runs on
	// the CPU pipeline (no backend registered, or GPU init failed).
	ErrNoGPU = errors.New("surfacenets: GPU pipeline not available")

	// ErrNotGPUExpressible is returned when the potential composition
	// contains a CPU-only node (potential.Func) and therefore cannot be
	// compiled into the sampling shader.
	ErrNotGPUExpressible = errors.New("surfacenets: potential is not expressible in WGSL")
)
