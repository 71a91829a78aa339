package kernel

import (
	"github.com/soocke/corrmatch/domain/candidate"
	"github.com/soocke/corrmatch/domain/imaging"
	"github.com/soocke/corrmatch/domain/template"
)

// Bounds is the inclusive-exclusive placement window [X0,X1)x[Y0,Y1)
// over which a Scan call searches; the full template must fit at
// every placement in range.
type Bounds struct{ X0, Y0, X1, Y1 int }

// ValidBounds returns the full window over which an tw x th template
// fits inside an iw x ih image.
func ValidBounds(iw, ih, tw, th int) Bounds {
	return Bounds{X0: 0, Y0: 0, X1: iw - tw + 1, Y1: ih - th + 1}
}

func (b Bounds) Empty() bool { return b.X1 <= b.X0 || b.Y1 <= b.Y0 }

// ScanUnmasked scores every placement of plan's template in bounds
// against img using metric, keeping the topK best subject to spatial
// NMS of the given radius. angleIdx is stamped onto every emitted
// Candidate (0 for the no-rotation fast path).
func ScanUnmasked(img imaging.View, plan *template.Plan, bounds Bounds, metric Metric, minVarI float32, level, angleIdx, topK, nmsRadius int) []candidate.Candidate {
	heap := sharedHeapPool.Acquire(topK)
	defer sharedHeapPool.Release(heap)
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
	return candidate.NMS(heap.Sorted(), nmsRadius)
}

// ScoreAtUnmasked scores a single placement (x, y) of plan's template
// against img — used by the final subpixel/subangle fit (spec.md
// §4.9), which needs individual neighbor scores rather than a full
// scan.
func ScoreAtUnmasked(img imaging.View, plan *template.Plan, x, y int, metric Metric, minVarI float32) (float32, bool) {
	w := accumulateUnmasked(img, plan, x, y, plan.Width, plan.Height)
	if metric == SSD {
		return scoreSSD(w, plan.Mean, plan.SumSq)
	}
	return scoreZNCC(w, plan.Norm, minVarI)
}

// ScoreAtMasked is the masked counterpart of ScoreAtUnmasked.
func ScoreAtMasked(img imaging.View, plan *template.MaskedPlan, x, y int, metric Metric, minVarI float32) (float32, bool) {
	if plan.NValid == 0 {
		return 0, false
	}
	w := accumulateMasked(img, plan, x, y)
	if metric == SSD {
		meanM := float32(plan.SumT / float64(plan.NValid))
		return scoreSSD(w, meanM, plan.SumT2)
	}
	return scoreZNCC(w, plan.Norm, minVarI)
}

// accumulateUnmasked accumulates window statistics in the template's
// natural raster order (row-major, left-to-right, top-to-bottom) —
// never via a summed-area table — so results are bit-reproducible
// regardless of thread count (spec.md §5).
func accumulateUnmasked(img imaging.View, plan *template.Plan, x, y, tw, th int) windowStats {
	var w windowStats
	w.n = tw * th
	zm := plan.ZeroMean
	for dy := 0; dy < th; dy++ {
		row := img.Row(y + dy)[x : x+tw]
		base := dy * tw
		for dx := 0; dx < tw; dx++ {
			v := float64(row[dx])
			w.sum += v
			w.sumSq += v * v
			w.crossZM += v * float64(zm[base+dx])
		}
	}
	return w
}

// ScanMasked scores every placement of a rotated masked plan against
// img, accumulating only over the plan's valid-pixel sample list, in
// the list's stored (raster) order.
func ScanMasked(img imaging.View, plan *template.MaskedPlan, bounds Bounds, metric Metric, minVarI float32, level, angleIdx, topK, nmsRadius int) []candidate.Candidate {
	if plan.NValid == 0 {
		return nil
	}
	heap := sharedHeapPool.Acquire(topK)
	defer sharedHeapPool.Release(heap)
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
	return candidate.NMS(heap.Sorted(), nmsRadius)
}

func accumulateMasked(img imaging.View, plan *template.MaskedPlan, x, y int) windowStats {
	var w windowStats
	w.n = plan.NValid
	for _, s := range plan.Samples {
		v := float64(img.At(x+s.DX, y+s.DY))
		w.sum += v
		w.sumSq += v * v
		w.crossZM += v * float64(s.ZMean)
	}
	return w
}
