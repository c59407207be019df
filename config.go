package surfacenets

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Grid limits.
const (
	// MinGridSide is the smallest usable grid: a single cell still needs
	// 2 corners per axis.
	MinGridSide = 1

	// MaxGridSide is a sanity cap on the grid side length. (N+1)^3 corner
	// samples at 4 bytes each already reach ~4 GiB around N=1023.
	MaxGridSide = 1024

	// DefaultMaxBufferMB is the default per-extractor GPU buffer budget.
	DefaultMaxBufferMB = 512
)

// Config describes the sampling grid: a cubic lattice of N cells per
// side, uniform and axis-aligned, fixed for the lifetime of an Extractor.
//
// Grid corner (i,j,k), 0 <= i,j,k <= N, maps to world position
// Origin + (i,j,k)*CellSize. Cell (i,j,k), 0 <= i,j,k < N, is the unit
// cube between corner (i,j,k) and corner (i+1,j+1,k+1).
type Config struct {
	// N is the number of cells per grid side.
	N int

	// CellSize is the world-space edge length of one cell.
	CellSize float32

	// Origin is the world-space position of grid corner (0,0,0).
	Origin mgl32.Vec3
}

// Corners returns the number of grid corners per side (N+1).
func (c Config) Corners() int { return c.N + 1 }

// CellCount returns the total number of cells (N^3).
func (c Config) CellCount() int { return c.N * c.N * c.N }

// CornerCount returns the total number of grid corners ((N+1)^3).
func (c Config) CornerCount() int {
	k := c.N + 1
	return k * k * k
}

// BufferBytes returns the total GPU storage the grid requires across the
// scalar volume ((N+1)^3 x f32), the vertex volume (N^3 x vec4<f32>), and
// the active-cell index list (N^3 x u32).
func (c Config) BufferBytes() uint64 {
	corners := uint64(c.N + 1)
	cells := uint64(c.N)
	scalar := corners * corners * corners * 4
	vertex := cells * cells * cells * 16
	active := cells * cells * cells * 4
	return scalar + vertex + active
}

// Validate checks the configuration against the given buffer budget in
// bytes. Configuration errors are rejected here, before any dispatch;
// the pipeline itself has no mid-flight error states.
//
// A zero maxBufferBytes applies the DefaultMaxBufferMB budget.
func (c Config) Validate(maxBufferBytes uint64) error {
	if c.N < MinGridSide || c.N > MaxGridSide {
		return fmt.Errorf("%w: N=%d outside [%d, %d]", ErrInvalidGrid, c.N, MinGridSide, MaxGridSide)
	}
	if !(c.CellSize > 0) { // also rejects NaN
		return fmt.Errorf("%w: cell size %v must be positive", ErrInvalidGrid, c.CellSize)
	}
	if maxBufferBytes == 0 {
		maxBufferBytes = DefaultMaxBufferMB * 1024 * 1024
	}
	if need := c.BufferBytes(); need > maxBufferBytes {
		return fmt.Errorf("%w: N=%d needs %d bytes, budget is %d", ErrGridTooLarge, c.N, need, maxBufferBytes)
	}
	return nil
}
