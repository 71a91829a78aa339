package kernel

import (
	"sync"

	"github.com/soocke/corrmatch/domain/candidate"
)

// HeapPool reuses candidate.TopK instances across scan calls (the
// package-level sharedHeapPool below serves every call, across
// match_image invocations), following the teacher's
// domain/capture/frame_pool.go sync.Pool acquire/recycle idiom —
// generalized from pooling RGBA frame buffers to pooling candidate
// heaps, per spec.md §5's "hot scan loops must not allocate" /
// "per-invocation working buffers... reused across placements".
type HeapPool struct {
	pool sync.Pool
}

// NewHeapPool constructs an empty pool.
func NewHeapPool() *HeapPool {
	return &HeapPool{}
}

// Acquire returns a TopK with the given capacity, reused from the pool
// when possible.
func (p *HeapPool) Acquire(capacity int) *candidate.TopK {
	if v := p.pool.Get(); v != nil {
		h := v.(*candidate.TopK)
		h.Reset(capacity)
		return h
	}
	return candidate.NewTopK(capacity)
}

// Release returns h to the pool for reuse. h must not be accessed by
// the caller afterward.
func (p *HeapPool) Release(h *candidate.TopK) {
	if h == nil {
		return
	}
	p.pool.Put(h)
}

// sharedHeapPool is the package-wide pool every Scan* entry point
// acquires its working heap from. sync.Pool is itself safe for
// concurrent use, so the parallel scan variants share it across
// worker goroutines rather than each holding a private pool.
var sharedHeapPool = NewHeapPool()
