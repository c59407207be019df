// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fieldcompute

// Stats reports the intermediate sizes of an extraction, matching what the
// GPU path writes into its stats buffer.
type Stats struct {
	ActiveCells uint32
	Triangles   uint32
}

// Extract runs the full pipeline on the CPU: sample the field, place one
// vertex per sign-change cell, compact the active cells into a dense index
// list, then generate faces from that list alone.
// workers <= 0 uses one goroutine per CPU.
func Extract(g Grid, f Field, workers int) (*Mesh, Stats) {
	vol := SampleVolume(g, f, workers)
	cells := ClassifyCells(g, vol, workers)
	active := CompactActiveCells(cells, workers)
	mesh := GenerateFaces(g, vol, cells, active)
	return mesh, Stats{
		ActiveCells: uint32(len(active)),
		Triangles:   uint32(mesh.TriangleCount()),
	}
}
