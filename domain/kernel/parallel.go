package kernel

import (
	"runtime"
	"sync"

	"github.com/soocke/corrmatch/domain/candidate"
	"github.com/soocke/corrmatch/domain/imaging"
	"github.com/soocke/corrmatch/domain/template"
)

// workerCount returns the number of row-partitions to use for a
// parallel scan over rows rows, bounded by runtime.NumCPU() and never
// exceeding the row count.
func workerCount(rows int) int {
	n := runtime.NumCPU()
	if n > rows {
		n = rows
	}
	if n < 1 {
		n = 1
	}
	return n
}

// rowChunks splits [y0,y1) into n contiguous, non-overlapping ranges
// in increasing order, which is what makes the merge step below
// deterministic: chunk i always covers the same rows regardless of
// how goroutines happen to schedule.
func rowChunks(y0, y1, n int) []Bounds {
	total := y1 - y0
	base := total / n
	rem := total % n
	chunks := make([]Bounds, 0, n)
	start := y0
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}
		if size == 0 {
			continue
		}
		chunks = append(chunks, Bounds{Y0: start, Y1: start + size})
		start += size
	}
	return chunks
}

// mergeAndFinish concatenates per-worker results in increasing worker
// index order, re-applies the global top-K bound, and finishes with
// NMS — exactly reproducing what a single sequential top-K/NMS pass
// over all placements would have produced, since no worker's local
// top-K (capacity == the global topK) can ever discard a candidate
// that belongs in the true global top-K (spec.md §4.4, §5).
func mergeAndFinish(perWorker [][]candidate.Candidate, topK, nmsRadius int) []candidate.Candidate {
	merged := sharedHeapPool.Acquire(topK)
	defer sharedHeapPool.Release(merged)
	for _, local := range perWorker {
		for _, c := range local {
			merged.Insert(c)
		}
	}
	return candidate.NMS(merged.Sorted(), nmsRadius)
}

// ScanUnmaskedParallel is the parallel counterpart to ScanUnmasked: it
// partitions bounds' rows across a bounded worker pool (modeled on the
// teacher's domain/capture/multi_scale.go MultiScaleMatchParallel
// semaphore+WaitGroup pattern), scans each partition sequentially in
// raster order, and deterministically merges the results.
func ScanUnmaskedParallel(img imaging.View, plan *template.Plan, bounds Bounds, metric Metric, minVarI float32, level, angleIdx, topK, nmsRadius int) []candidate.Candidate {
	if bounds.Empty() {
		return nil
	}
	n := workerCount(bounds.Y1 - bounds.Y0)
	chunks := rowChunks(bounds.Y0, bounds.Y1, n)
	results := make([][]candidate.Candidate, len(chunks))

	var wg sync.WaitGroup
	sem := make(chan struct{}, n)
	for i, chunk := range chunks {
		chunk.X0, chunk.X1 = bounds.X0, bounds.X1
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, chunk Bounds) {
			defer wg.Done()
			defer func() { <-sem }()
			heap := sharedHeapPool.Acquire(topK)
			scanUnmaskedInto(heap, img, plan, chunk, metric, minVarI, level, angleIdx)
			results[i] = heap.Sorted()
			sharedHeapPool.Release(heap)
		}(i, chunk)
	}
	wg.Wait()
	return mergeAndFinish(results, topK, nmsRadius)
}

// ScanMaskedParallel is the masked counterpart of ScanUnmaskedParallel.
func ScanMaskedParallel(img imaging.View, plan *template.MaskedPlan, bounds Bounds, metric Metric, minVarI float32, level, angleIdx, topK, nmsRadius int) []candidate.Candidate {
	if bounds.Empty() || plan.NValid == 0 {
		return nil
	}
	n := workerCount(bounds.Y1 - bounds.Y0)
	chunks := rowChunks(bounds.Y0, bounds.Y1, n)
	results := make([][]candidate.Candidate, len(chunks))

	var wg sync.WaitGroup
	sem := make(chan struct{}, n)
	for i, chunk := range chunks {
		chunk.X0, chunk.X1 = bounds.X0, bounds.X1
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, chunk Bounds) {
			defer wg.Done()
			defer func() { <-sem }()
			heap := sharedHeapPool.Acquire(topK)
			scanMaskedInto(heap, img, plan, chunk, metric, minVarI, level, angleIdx)
			results[i] = heap.Sorted()
			sharedHeapPool.Release(heap)
		}(i, chunk)
	}
	wg.Wait()
	return mergeAndFinish(results, topK, nmsRadius)
}

func scanUnmaskedInto(heap *candidate.TopK, img imaging.View, plan *template.Plan, bounds Bounds, metric Metric, minVarI float32, level, angleIdx int) {
	tw, th := plan.Width, plan.Height
	for y := bounds.Y0; y < bounds.Y1; y++ {
		for x := bounds.X0; x < bounds.X1; x++ {
			w := accumulateUnmasked(img, plan, x, y, tw, th)
			var score float32
			var ok bool
			switch metric {
			case SSD:
				score, ok = scoreSSD(w, plan.Mean, plan.SumSq)
			default:
				score, ok = scoreZNCC(w, plan.Norm, minVarI)
			}
			if !ok {
				continue
			}
			heap.Insert(candidate.Candidate{X: x, Y: y, Level: level, AngleIdx: angleIdx, Score: score})
		}
	}
}

func scanMaskedInto(heap *candidate.TopK, img imaging.View, plan *template.MaskedPlan, bounds Bounds, metric Metric, minVarI float32, level, angleIdx int) {
	meanM := float32(plan.SumT / float64(plan.NValid))
	for y := bounds.Y0; y < bounds.Y1; y++ {
		for x := bounds.X0; x < bounds.X1; x++ {
			w := accumulateMasked(img, plan, x, y)
			var score float32
			var ok bool
			switch metric {
			case SSD:
				score, ok = scoreSSD(w, meanM, plan.SumT2)
			default:
				score, ok = scoreZNCC(w, plan.Norm, minVarI)
			}
			if !ok {
				continue
			}
			heap.Insert(candidate.Candidate{X: x, Y: y, Level: level, AngleIdx: angleIdx, Score: score})
		}
	}
}
