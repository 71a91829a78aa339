// Package fit implements the separable 2D/1D quadratic vertex fits
// used to refine the final integer-grid peak into a subpixel position
// and subangle. No teacher analog exists for this concern; it is a
// closed-form parabola-vertex solve built directly from spec.md §4.9,
// using stdlib math only (there is no third-party numerical-fitting
// dependency anywhere in the retrieved pack worth pulling in for a
// three-point quadratic vertex, and doing so would not reduce the
// bespoke code this formula requires).
package fit

// Quadratic1D fits a parabola through (−1, sMinus), (0, sZero),
// (1, sPlus) and returns the vertex offset clamped to [-0.5, 0.5]. The
// concavity term is curv = 2·sZero − sMinus − sPlus, which is positive
// exactly when sZero is a genuine local max of the three samples (it
// reduces to -2a for the fitted parabola a·x²+bx+c); when it is
// non-positive the three points don't describe a downward-opening
// parabola with a unique maximum and the offset is zero.
func Quadratic1D(sMinus, sZero, sPlus float32) float32 {
	curv := 2*sZero - sMinus - sPlus
	if curv <= 0 {
		return 0
	}
	offset := 0.5 * (sPlus - sMinus) / curv
	return clamp(offset, -0.5, 0.5)
}

// Quadratic1DScaled behaves like Quadratic1D but scales and clamps the
// result to [-halfRange, halfRange] instead of [-0.5, 0.5] — used for
// the subangle fit, whose natural unit is the angle step rather than
// one pixel (spec.md §4.9).
func Quadratic1DScaled(sMinus, sZero, sPlus float32, halfRange float64) float64 {
	curv := 2*sZero - sMinus - sPlus
	if curv <= 0 {
		return 0
	}
	offset := 0.5 * float64(sPlus-sMinus) / float64(curv)
	return clamp64(offset, -halfRange, halfRange)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Peak2D is the separable 2D subpixel fit result: offsets in x and y,
// each independently fit from the peak and its immediate horizontal
// and vertical neighbors (spec.md §4.9's "separable" note — this is
// exact for separable landscapes and an approximation otherwise).
type Peak2D struct {
	DX, DY float32
}

// FitPeak2D computes the subpixel offset of a peak given its score and
// the scores of its four axis-aligned neighbors (left, right, up,
// down).
func FitPeak2D(center, left, right, up, down float32) Peak2D {
	return Peak2D{
		DX: Quadratic1D(left, center, right),
		DY: Quadratic1D(up, center, down),
	}
}
