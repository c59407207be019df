// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package fieldcompute is the CPU reference implementation of the
// surface-nets extraction pipeline. Every stage mirrors one WGSL compute
// or render stage in internal/gpu:
//
//	SampleVolume       <-> shaders/sample.wgsl
//	ClassifyCells      <-> shaders/classify.wgsl
//	CompactActiveCells <-> shaders/compact.wgsl
//	GenerateFaces      <-> shaders/faces.wgsl (vertex expansion)
//	GradientAt         <-> shaders/faces.wgsl (normal estimation)
//
// The package is the ground truth for the pipeline's testable
// properties and doubles as the fallback backend when no GPU device is
// available. Keep the two sides in lockstep: any change to cell
// indexing, edge enumeration, or winding here must be mirrored in the
// shaders.
package fieldcompute
