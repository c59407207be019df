// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fieldcompute

import (
	"runtime"
	"sync"
)

// splitRanges divides [0, n) into at most `workers` contiguous chunks.
// workers <= 0 uses GOMAXPROCS. The split depends only on n and workers,
// so callers that need two passes over the same chunks get identical
// ranges both times.
func splitRanges(n, workers int) [][2]int {
	if n <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers
	ranges := make([][2]int, 0, workers)
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		ranges = append(ranges, [2]int{start, end})
	}
	return ranges
}

// parallelFor splits [0, n) into contiguous chunks and runs fn on each
// from its own goroutine. workers <= 0 uses GOMAXPROCS. fn must be safe
// to call concurrently on disjoint ranges.
func parallelFor(n, workers int, fn func(start, end int)) {
	ranges := splitRanges(n, workers)
	if len(ranges) == 0 {
		return
	}
	if len(ranges) == 1 {
		fn(ranges[0][0], ranges[0][1])
		return
	}

	var wg sync.WaitGroup
	for _, r := range ranges {
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(r[0], r[1])
	}
	wg.Wait()
}
