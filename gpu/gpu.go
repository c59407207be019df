//go:build !nogpu

// Package gpu registers the wgpu-backed accelerator for GPU isosurface
// extraction.
//
// Import this package to run the sample, classify, compact, and faces
// stages as GPU passes. Each Extractor gets its own accelerator instance;
// if GPU initialization fails (no Vulkan available, potential not
// expressible in WGSL), extraction falls back to the CPU pipeline.
//
// Usage:
//
//	import _ "github.com/gogpu/surfacenets/gpu" // enable GPU extraction
package gpu

import (
	"github.com/gogpu/surfacenets"
	gpuimpl "github.com/gogpu/surfacenets/internal/gpu"
)

func init() {
	err := surfacenets.RegisterAccelerator(func() surfacenets.Accelerator {
		return gpuimpl.NewFieldAccelerator()
	})
	if err != nil {
		surfacenets.Logger().Warn("GPU accelerator not available", "err", err)
	}
}
