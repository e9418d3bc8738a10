// Package threading provides shared concurrency primitives: a fixed worker
// pool for parallel-for style fan-out (used by the contour tracer), a stable
// index sort (used by the tabular view engine), and a reader/writer mutex in
// which queued writers block newly arriving readers.
package threading

import (
	"context"
	"runtime"
	"sort"
	"sync"
)

// Manager partitions index ranges across a fixed worker pool. It has no
// per-call goroutine-count configuration beyond construction: a bounded
// resource sized once and reused.
type Manager struct {
	workers int
}

// New creates a Manager with the given worker count. A count <= 0 defaults
// to runtime.NumCPU(), mirroring worker.New's "workers <= 0 -> 1" guard but
// scaled to available cores since parallel_for is CPU-bound, not I/O-bound.
func New(workers int) *Manager {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers <= 0 {
		workers = 1
	}
	return &Manager{workers: workers}
}

// Workers returns the configured worker count.
func (m *Manager) Workers() int { return m.workers }

// ParallelFor partitions [begin, end) into contiguous chunks, one per
// worker, and invokes fn(lo, hi) for each chunk concurrently. It blocks
// until every chunk completes or ctx is cancelled. No ordering is
// guaranteed across chunks.
func (m *Manager) ParallelFor(ctx context.Context, begin, end int, fn func(lo, hi int)) {
	if end <= begin {
		return
	}
	n := end - begin
	workers := m.workers
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for lo := begin; lo < end; lo += chunk {
		hi := lo + chunk
		if hi > end {
			hi = end
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			default:
			}
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

// ForEachLevel is a convenience wrapper used by the contourer: the level
// indices are partitioned into ParallelFor chunks (one goroutine per chunk,
// at most one chunk per worker), and each chunk calls fn for its levels in
// order — levels processed in parallel, each level writing only to its own
// slot.
func (m *Manager) ForEachLevel(ctx context.Context, numLevels int, fn func(level int)) {
	m.ParallelFor(ctx, 0, numLevels, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			select {
			case <-ctx.Done():
				return
			default:
			}
			fn(i)
		}
	})
}

// StableSortIndices sorts idx in place using cmp, stably — the tabular view
// engine's SortByColumn relies on this stability to keep equal-key rows in
// their prior relative order.
func StableSortIndices(idx []int, cmp func(a, b int) bool) {
	sort.SliceStable(idx, func(i, j int) bool {
		return cmp(idx[i], idx[j])
	})
}
