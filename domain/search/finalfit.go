package search

import (
	"github.com/soocke/corrmatch/domain/angle"
	"github.com/soocke/corrmatch/domain/compiled"
	"github.com/soocke/corrmatch/domain/fit"
	"github.com/soocke/corrmatch/domain/imaging"
	"github.com/soocke/corrmatch/domain/kernel"
)

// FinalFit evaluates the level-0 peak and its four axis-aligned
// neighbors (spec.md §4.9) at the best angle, plus — when rotation is
// enabled — the neighboring angle steps at the same position, and
// fits a separable 2D quadratic plus a 1D subangle quadratic to
// produce the final subpixel/subangle match. ok is false if the peak
// itself no longer scores (e.g. it sits against the valid-placement
// boundary with a degenerate window).
func FinalFit(img imaging.View, ct *compiled.CompiledTemplate, seed Seed, p Params) (Result, bool) {
	lvl := ct.Levels[0]
	bounds := kernel.ValidBounds(img.Width, img.Height, ct.TemplateLevels[0].Width, ct.TemplateLevels[0].Height)

	var grid angle.Grid
	if ct.RotationEnabled {
		grid = lvl.Bank.Grid
	}

	scoreAt := func(x, y, angleIdx int) (float32, bool) {
		if x < bounds.X0 || x >= bounds.X1 || y < bounds.Y0 || y >= bounds.Y1 {
			return 0, false
		}
		if !ct.RotationEnabled {
			return kernel.ScoreAtUnmasked(img, lvl.Unmasked, x, y, p.Metric, p.MinVarI)
		}
		if angleIdx < 0 || angleIdx > grid.Len()-1 {
			return 0, false
		}
		return kernel.ScoreAtMasked(img, lvl.Bank.Plan(angleIdx), x, y, p.Metric, p.MinVarI)
	}

	angleIdx := 0
	if ct.RotationEnabled {
		angleIdx = grid.Nearest(seed.AngleDeg)
	}

	center, ok := scoreAt(seed.X, seed.Y, angleIdx)
	if !ok {
		return Result{}, false
	}

	left, lok := scoreAt(seed.X-1, seed.Y, angleIdx)
	right, rok := scoreAt(seed.X+1, seed.Y, angleIdx)
	if !lok || !rok {
		left, right = center, center
	}
	up, uok := scoreAt(seed.X, seed.Y-1, angleIdx)
	down, dok := scoreAt(seed.X, seed.Y+1, angleIdx)
	if !uok || !dok {
		up, down = center, center
	}
	peak := fit.FitPeak2D(center, left, right, up, down)

	angleDeg := seed.AngleDeg
	if ct.RotationEnabled {
		angleDeg = grid.Angle(angleIdx)
		if grid.Len() > 1 {
			step := grid.Step()
			sMinus, mok := scoreAt(seed.X, seed.Y, angleIdx-1)
			sPlus, pok := scoreAt(seed.X, seed.Y, angleIdx+1)
			if mok && pok {
				angleDeg += fit.Quadratic1DScaled(sMinus, center, sPlus, step/2)
			}
		}
	}

	return Result{
		X:        float64(seed.X) + float64(peak.DX),
		Y:        float64(seed.Y) + float64(peak.DY),
		AngleDeg: angleDeg,
		Score:    center,
	}, true
}
