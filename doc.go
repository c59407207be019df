// Package surfacenets extracts polygonal meshes from implicit surfaces
// (isosurfaces of scalar potential fields) on the GPU, in real time.
//
// # Overview
//
// surfacenets implements the naive surface-nets algorithm as a three-stage
// GPU compute pipeline followed by an indirect draw:
//
//  1. Sample: evaluate the potential at every grid corner into a dense
//     scalar volume.
//  2. Classify: for every cell, detect sign changes across its 8 corners
//     and place one smoothed vertex at the center of mass of the cell's
//     edge crossings.
//  3. Compact: append the indices of surface-crossing cells into a dense
//     list with a single atomic counter, sizing the subsequent draw call
//     directly from GPU memory.
//  4. Draw: an indirect draw expands each compacted cell into up to three
//     quads linking the smoothed vertices of adjacent cells.
//
// No stage reads intermediate results back to the host; the geometry
// volume varies per frame without fixed-size vertex buffers or CPU-GPU
// round trips.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/surfacenets"
//	    "github.com/gogpu/surfacenets/potential"
//	)
//
//	field := potential.Union(
//	    potential.Sphere{Radius: 0.8},
//	    potential.Plane{},
//	)
//	ex, err := surfacenets.New(surfacenets.Config{N: 64, CellSize: 0.05}, field)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ex.Close()
//
//	mesh, stats, err := ex.ExtractMesh() // CPU reference path
//
// GPU extraction requires a wgpu-capable device; blank-import the gpu
// subpackage (or supply a shared device with WithDeviceProvider) and use
// Extract/RenderFrame:
//
//	import _ "github.com/gogpu/surfacenets/gpu"
//
// # Architecture
//
// The library is organized into:
//   - Public API: Config, Extractor, Mesh, Camera
//   - potential: composable potential functions (noise + algebra)
//   - internal/fieldcompute: CPU reference pipeline, used as fallback and
//     by the test suite
//   - internal/gpu: wgpu compute + render pipelines (WGSL shaders)
//
// # Coordinate System
//
// The grid is a cubic lattice of N cells per side; grid corner (i,j,k)
// maps to world position Origin + (i,j,k)*CellSize. The isosurface is the
// zero level set of the potential; negative values are inside.
package surfacenets

// Version information
const (
	// Version is the current version of the library
	Version = "0.2.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 2

	// VersionPatch is the patch version
	VersionPatch = 0
)
