package compute

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Sweeps with fewer rows than this stay on one goroutine.
const minParallelRows = 16

// CPUBackend splits a sweep into contiguous row bands, one per worker.
type CPUBackend struct {
	workers int
}

func NewCPUBackend(workers int) *CPUBackend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &CPUBackend{workers: workers}
}

func (c *CPUBackend) Name() string { return "cpu" }
func (c *CPUBackend) Workers() int { return c.workers }

func (c *CPUBackend) Rows(n int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if c.workers == 1 || n < minParallelRows {
		fn(0, n)
		return
	}

	chunkSize := (n + c.workers - 1) / c.workers

	var g errgroup.Group
	for lo := 0; lo < n; lo += chunkSize {
		hi := min(lo+chunkSize, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}
