// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fieldcompute

import "sync"

// CompactActiveCells writes the linear index of every flagged cell into a
// dense active list, the same slot -> cell mapping shaders/compact.wgsl
// builds with atomicAdd. The GPU claims slots in nondeterministic order;
// here a count-then-write sweep orders the list by ascending cell index,
// so repeated runs yield identical meshes. Length, membership, and the
// downstream contract are the same on both backends: the list is the face
// generator's only source of cells.
func CompactActiveCells(cells *CellGrid, workers int) []uint32 {
	ranges := splitRanges(len(cells.Flags), workers)
	if len(ranges) == 0 {
		return nil
	}

	counts := make([]int, len(ranges))
	var wg sync.WaitGroup
	for r := range ranges {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			n := 0
			for i := ranges[r][0]; i < ranges[r][1]; i++ {
				if cells.Flags[i] {
					n++
				}
			}
			counts[r] = n
		}(r)
	}
	wg.Wait()

	offsets := make([]int, len(ranges))
	total := 0
	for r, n := range counts {
		offsets[r] = total
		total += n
	}

	active := make([]uint32, total)
	for r := range ranges {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			slot := offsets[r]
			for i := ranges[r][0]; i < ranges[r][1]; i++ {
				if cells.Flags[i] {
					active[slot] = uint32(i)
					slot++
				}
			}
		}(r)
	}
	wg.Wait()

	return active
}
