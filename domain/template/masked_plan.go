package template

import "math"

// ValidSample is one (dx, dy, T') triple for a masked template plan —
// the data structure scanned directly by the masked kernels (spec.md
// §4.3).
type ValidSample struct {
	DX, DY int
	ZMean  float32
}

// MaskedPlan is the precomputed statistics of a rotated, masked
// template: zero-mean values over valid pixels (masked-out entries
// zeroed), the raw sum and sum-of-squares over valid pixels, their L2
// norm, the valid pixel count, and a compact list of valid samples for
// the scalar masked scan.
type MaskedPlan struct {
	Width, Height int
	AngleDeg      float64
	ZeroMean      []float32 // length Width*Height, masked-out entries zero
	Valid         []bool
	SumT          float64
	SumT2         float64
	Norm          float32 // ||T'_M||
	NValid        int
	Samples       []ValidSample
}

// CompileMasked rotates t by thetaDeg and builds its MaskedPlan.
func CompileMasked(t Template, thetaDeg float64) MaskedPlan {
	rm := RotateMasked(t, thetaDeg)
	w, h := rm.Width, rm.Height

	var sumT, sumT2 float64
	nValid := 0
	for i, ok := range rm.Valid {
		if !ok {
			continue
		}
		v := float64(rm.Gray[i])
		sumT += v
		sumT2 += v * v
		nValid++
	}

	zm := make([]float32, w*h)
	samples := make([]ValidSample, 0, nValid)
	var sumSq float64
	if nValid > 0 {
		mean := sumT / float64(nValid)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				if !rm.Valid[i] {
					continue
				}
				d := float64(rm.Gray[i]) - mean
				zm[i] = float32(d)
				sumSq += d * d
				samples = append(samples, ValidSample{DX: x, DY: y, ZMean: float32(d)})
			}
		}
	}

	return MaskedPlan{
		Width:    w,
		Height:   h,
		AngleDeg: thetaDeg,
		ZeroMean: zm,
		Valid:    rm.Valid,
		SumT:     sumT,
		SumT2:    sumT2,
		Norm:     float32(math.Sqrt(sumSq)),
		NValid:   nValid,
		Samples:  samples,
	}
}
