package template

import "math"

// Rotated is the result of an unmasked rotation: a fully dense image of
// the same dimensions as the source, with fill used for out-of-bounds
// samples.
type Rotated struct {
	Width, Height int
	Pix           []uint8
}

// RotatedMasked is the result of a masked rotation: a zero-meanable
// grayscale image plus a validity mask, both dense over the source
// dimensions. Masked-out pixels are 0 in Gray.
type RotatedMasked struct {
	Width, Height int
	Gray          []float32
	Valid         []bool
}

// invSrcCoord computes the inverse-rotated source coordinate of output
// pixel (xo, yo) about pivot (cx, cy) for rotation angle thetaDeg
// (degrees). Trigonometry is computed in f32 per spec.md §4.2.
func invSrcCoord(xo, yo int, cx, cy float32, thetaDeg float64) (float32, float32) {
	theta := float32(-thetaDeg * math.Pi / 180.0)
	cos := float32(math.Cos(float64(theta)))
	sin := float32(math.Sin(float64(theta)))
	// At right angles f32 trig leaves residues of ~1e-7 where the exact
	// value is 0; snapping them keeps the source coordinates exact, so
	// rotations by 0, 90, 180 and 270 degrees mark the same number of
	// pixels valid.
	if math.Abs(float64(cos)) < 1e-6 {
		cos = 0
	}
	if math.Abs(float64(sin)) < 1e-6 {
		sin = 0
	}
	dx := float32(xo) - cx
	dy := float32(yo) - cy
	srcX := cx + dx*cos - dy*sin
	srcY := cy + dx*sin + dy*cos
	return srcX, srcY
}

// inRange reports whether v is in [0, limit] with a strict, no-epsilon
// check on the lower bound: a coordinate strictly less than zero is
// always out of range regardless of magnitude, so it can never be cast
// to an unsigned/int index. See spec.md §4.2 and §9 ("rotation boundary
// check").
func inRange(v, limit float32) bool {
	if v < 0 {
		return false
	}
	return v <= limit
}

// RotateUnmasked rotates t by thetaDeg about its center, sampling with
// bilinear interpolation. Pixels whose inverse-rotated source falls
// outside the template are filled with fill.
func RotateUnmasked(t Template, thetaDeg float64, fill uint8) Rotated {
	w, h := t.Width, t.Height
	cx32, cy32 := centerF32(t)
	out := make([]uint8, w*h)
	limX := float32(w - 1)
	limY := float32(h - 1)
	for yo := 0; yo < h; yo++ {
		for xo := 0; xo < w; xo++ {
			srcX, srcY := invSrcCoord(xo, yo, cx32, cy32, thetaDeg)
			if !inRange(srcX, limX) || !inRange(srcY, limY) {
				out[yo*w+xo] = fill
				continue
			}
			out[yo*w+xo] = bilinearSample(t, srcX, srcY)
		}
	}
	return Rotated{Width: w, Height: h, Pix: out}
}

// RotateMasked rotates t by thetaDeg about its center, producing a
// dense zero/one validity mask alongside the sampled grayscale values.
// A pixel is valid iff all four bilinear neighbors used to sample it
// exist strictly inside the template bounds (spec.md §4.2).
func RotateMasked(t Template, thetaDeg float64) RotatedMasked {
	w, h := t.Width, t.Height
	cx32, cy32 := centerF32(t)
	gray := make([]float32, w*h)
	valid := make([]bool, w*h)
	limX := float32(w - 1)
	limY := float32(h - 1)
	for yo := 0; yo < h; yo++ {
		for xo := 0; xo < w; xo++ {
			srcX, srcY := invSrcCoord(xo, yo, cx32, cy32, thetaDeg)
			idx := yo*w + xo
			if !fourNeighborsStrictlyInside(srcX, srcY, limX, limY) {
				continue
			}
			gray[idx] = float32(bilinearSample(t, srcX, srcY))
			valid[idx] = true
		}
	}
	return RotatedMasked{Width: w, Height: h, Gray: gray, Valid: valid}
}

func centerF32(t Template) (float32, float32) {
	cx, cy := t.Center()
	return float32(cx), float32(cy)
}

// fourNeighborsStrictlyInside reports whether the four integer
// bilinear neighbors of (srcX, srcY) all exist strictly inside
// [0, limX] x [0, limY].
func fourNeighborsStrictlyInside(srcX, srcY, limX, limY float32) bool {
	if srcX < 0 || srcY < 0 {
		return false
	}
	x0 := float32(math.Floor(float64(srcX)))
	y0 := float32(math.Floor(float64(srcY)))
	x1 := x0 + 1
	y1 := y0 + 1
	if x0 < 0 || y0 < 0 || x1 > limX || y1 > limY {
		return false
	}
	return true
}

// bilinearSample samples t at floating-point coordinate (srcX, srcY),
// clamping the upper neighbor to the last valid index when srcX/srcY
// sits exactly on the boundary (weight is then exactly zero, so the
// clamp never changes the result — see domain/template/rotate.go's
// callers, which already guarantee srcX<=W-1, srcY<=H-1).
func bilinearSample(t Template, srcX, srcY float32) uint8 {
	w := t.Width
	x0 := int(math.Floor(float64(srcX)))
	y0 := int(math.Floor(float64(srcY)))
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 > t.Width-1 {
		x1 = t.Width - 1
	}
	if y1 > t.Height-1 {
		y1 = t.Height - 1
	}
	dx := srcX - float32(x0)
	dy := srcY - float32(y0)

	g00 := float32(t.Pix[y0*w+x0])
	g10 := float32(t.Pix[y0*w+x1])
	g01 := float32(t.Pix[y1*w+x0])
	g11 := float32(t.Pix[y1*w+x1])

	top := g00*(1-dx) + g10*dx
	bottom := g01*(1-dx) + g11*dx
	v := top*(1-dy) + bottom*dy
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v + 0.5)
}
