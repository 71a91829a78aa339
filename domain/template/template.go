// Package template implements the owned template buffer, its unmasked
// and masked statistics plans, and bilinear rotation. The plan caching
// idea (precompute mean/std once, reuse per placement) is grounded on
// the teacher's domain/capture/ncc.go templatePrecomp type; rotation's
// bilinear interpolation loop is grounded on the same file's
// getScaledTemplatePrecompFromBase, generalized from scale-resampling
// to rotate-resampling per spec.md §4.2.
package template

import (
	"math"

	"github.com/soocke/corrmatch/errs"
)

// Template is an owned contiguous grayscale buffer.
type Template struct {
	Width, Height int
	Pix           []uint8
}

// New validates and constructs a Template from a contiguous buffer.
func New(width, height int, pix []uint8) (Template, error) {
	if width < 1 || height < 1 {
		return Template{}, errs.New(errs.InvalidInput, "template dimensions must be >= 1")
	}
	if len(pix) != width*height {
		return Template{}, errs.New(errs.InvalidInput, "template pixel buffer length must equal width*height")
	}
	return Template{Width: width, Height: height, Pix: pix}, nil
}

// Center returns the rotation pivot (cx, cy) = ((W-1)/2, (H-1)/2).
func (t Template) Center() (float64, float64) {
	return float64(t.Width-1) / 2, float64(t.Height-1) / 2
}

// Plan is the precomputed unmasked statistics of a template: mean,
// zero-mean values (f32), their L2 norm, and pixel count. Immutable
// once built.
type Plan struct {
	Width, Height int
	Mean          float32
	ZeroMean      []float32 // length Width*Height, raster order
	Norm          float32   // ||T'||
	N             int
	SumT          float64 // Sigma T[i], cached for SSD's raw-value reconstruction
	SumSq         float64 // Sigma T[i]^2, cached for SSD
}

// Compile builds an unmasked Plan from t. Fails with InvalidInput if
// t has zero pixels (guarded already by New, kept here defensively for
// Templates assembled by other means).
func Compile(t Template) (Plan, error) {
	n := t.Width * t.Height
	if n == 0 {
		return Plan{}, errs.New(errs.InvalidInput, "template has zero pixels")
	}
	var sum float64
	for _, p := range t.Pix {
		sum += float64(p)
	}
	mean := sum / float64(n)
	zm := make([]float32, n)
	var sumSq, sumSqRaw float64
	for i, p := range t.Pix {
		d := float64(p) - mean
		zm[i] = float32(d)
		sumSq += d * d
		sumSqRaw += float64(p) * float64(p)
	}
	return Plan{
		Width:    t.Width,
		Height:   t.Height,
		Mean:     float32(mean),
		ZeroMean: zm,
		Norm:     float32(math.Sqrt(sumSq)),
		N:        n,
		SumT:     sum,
		SumSq:    sumSqRaw,
	}, nil
}
