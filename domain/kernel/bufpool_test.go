package kernel

import (
	"testing"

	"github.com/soocke/corrmatch/domain/candidate"
)

func TestHeapPool_AcquireReleaseReusesInstance(t *testing.T) {
	p := NewHeapPool()
	h1 := p.Acquire(4)
	h1.Insert(candidate.Candidate{X: 0, Y: 0, Score: 1})
	p.Release(h1)

	h2 := p.Acquire(4)
	if h2.Len() != 0 {
		t.Fatalf("expected a reused heap to come back empty, got len %d", h2.Len())
	}
}

func TestHeapPool_AcquireGrowsCapacityOnReuse(t *testing.T) {
	p := NewHeapPool()
	h := p.Acquire(2)
	p.Release(h)

	h2 := p.Acquire(8)
	for i := 0; i < 8; i++ {
		h2.Insert(candidate.Candidate{X: i, Y: 0, Score: float32(i)})
	}
	if h2.Len() != 8 {
		t.Fatalf("expected capacity 8 after Acquire growth, got len %d", h2.Len())
	}
}
