// Package angle implements the deterministic rotation-angle discretization
// used by the coarse and refinement searches. There is no teacher analog
// for this concern (the teacher repo never searches over rotation); the
// grid is built directly from spec.md §3's algebraic invariants rather
// than float accumulation, so indexing is exact and restartable.
package angle

import "github.com/soocke/corrmatch/errs"

// Grid is a finite, ordered sequence of angles (degrees) at a uniform
// step. Angle(i) is computed algebraically from the start angle and
// step, never by repeated addition, so the sequence is free of
// accumulated floating-point drift and is safe to re-derive from
// scratch at any pyramid level.
type Grid struct {
	start float64
	step  float64
	count int
}

// Full returns a Grid covering [-180, 180) at step degrees. Length is
// ceil(360/step).
func Full(step float64) (Grid, error) {
	if step <= 0 {
		return Grid{}, errs.New(errs.InvalidConfig, "angle step must be > 0")
	}
	count := int(ceilDiv(360.0, step))
	if count < 1 {
		count = 1
	}
	return Grid{start: -180.0, step: step, count: count}, nil
}

// Centered returns a Grid covering center ± radius*step inclusive
// (2*radius+1 angles), at step degrees.
func Centered(center, step float64, radius int) (Grid, error) {
	if step <= 0 {
		return Grid{}, errs.New(errs.InvalidConfig, "angle step must be > 0")
	}
	if radius < 0 {
		return Grid{}, errs.New(errs.InvalidConfig, "angle neighborhood radius must be >= 0")
	}
	return Grid{start: center - float64(radius)*step, step: step, count: 2*radius + 1}, nil
}

// Len returns the number of angles in the grid.
func (g Grid) Len() int { return g.count }

// Step returns the grid's uniform spacing in degrees.
func (g Grid) Step() float64 { return g.step }

// Angle returns the i-th angle in degrees, computed algebraically
// (start + i*step), not accumulated.
func (g Grid) Angle(i int) float64 {
	return g.start + float64(i)*g.step
}

// Nearest returns the index of the angle in g closest to deg.
func (g Grid) Nearest(deg float64) int {
	if g.count == 0 {
		return 0
	}
	idx := int((deg-g.start)/g.step + 0.5)
	if idx < 0 {
		idx = 0
	}
	if idx > g.count-1 {
		idx = g.count - 1
	}
	return idx
}

func ceilDiv(a, b float64) float64 {
	q := a / b
	fl := float64(int64(q))
	if q > fl {
		return fl + 1
	}
	return fl
}
