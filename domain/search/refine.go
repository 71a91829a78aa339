package search

import (
	"github.com/soocke/corrmatch/domain/candidate"
	"github.com/soocke/corrmatch/domain/compiled"
	"github.com/soocke/corrmatch/domain/imaging"
	"github.com/soocke/corrmatch/domain/kernel"
)

// refineLevel descends one pyramid level (spec.md §4.8): every seed's
// position is projected to this level by doubling (each level is half
// the previous one's resolution, so one descent step is always a ×2
// projection regardless of how many levels separate it from the
// original coarse level), an ROI is opened around the projection, and
// — when rotation is enabled — an angle neighborhood around the
// seed's angle is scanned at this level's own AngleGrid. Only the best
// peak per seed survives, and a final cross-seed NMS pass removes
// seeds that converged onto the same location.
func refineLevel(img imaging.View, ct *compiled.CompiledTemplate, lvl int, seeds []Seed, p Params) []Seed {
	levelPlan := ct.Levels[lvl]
	tpl := ct.TemplateLevels[lvl]
	full := kernel.ValidBounds(img.Width, img.Height, tpl.Width, tpl.Height)
	if full.Empty() {
		return nil
	}
	roiRadius := candidate.LevelRadius(p.ROIRadius, lvl)
	nmsRadius := candidate.LevelRadius(p.NMSRadius, lvl)

	peaks := make([]candidate.Candidate, 0, len(seeds))
	for _, seed := range seeds {
		cx, cy := seed.X*2, seed.Y*2
		bounds := roiBounds(cx, cy, roiRadius, full)
		if bounds.Empty() {
			continue
		}
		best, ok := bestInROI(img, ct, levelPlan, lvl, bounds, seed, p)
		if ok {
			peaks = append(peaks, best)
		}
	}

	final := candidate.NMSAcrossAngles(peaks, nmsRadius)
	if len(final) > p.BeamWidth {
		final = final[:p.BeamWidth]
	}
	return toSeeds(final, gridForLevel(ct, lvl))
}

func bestInROI(img imaging.View, ct *compiled.CompiledTemplate, levelPlan compiled.LevelPlan, lvl int, bounds kernel.Bounds, seed Seed, p Params) (candidate.Candidate, bool) {
	if !ct.RotationEnabled {
		cands := scanLevel(img, levelPlan.Unmasked, nil, bounds, p, lvl, 0, 1, 0)
		if len(cands) == 0 {
			return candidate.Candidate{}, false
		}
		return cands[0], true
	}

	grid := levelPlan.Bank.Grid
	center := grid.Nearest(seed.AngleDeg)
	lo, hi := center-p.AngleNeighborhood, center+p.AngleNeighborhood
	if lo < 0 {
		lo = 0
	}
	if hi > grid.Len()-1 {
		hi = grid.Len() - 1
	}

	best := candidate.NewTopK(1)
	for a := lo; a <= hi; a++ {
		plan := levelPlan.Bank.Plan(a)
		cands := scanLevel(img, nil, plan, bounds, p, lvl, a, 1, 0)
		for _, c := range cands {
			best.Insert(c)
		}
	}
	sorted := best.Sorted()
	if len(sorted) == 0 {
		return candidate.Candidate{}, false
	}
	return sorted[0], true
}

// roiBounds returns the ROI of the given Chebyshev radius around
// (cx, cy), clipped to full.
func roiBounds(cx, cy, radius int, full kernel.Bounds) kernel.Bounds {
	b := kernel.Bounds{X0: cx - radius, Y0: cy - radius, X1: cx + radius + 1, Y1: cy + radius + 1}
	if b.X0 < full.X0 {
		b.X0 = full.X0
	}
	if b.Y0 < full.Y0 {
		b.Y0 = full.Y0
	}
	if b.X1 > full.X1 {
		b.X1 = full.X1
	}
	if b.Y1 > full.Y1 {
		b.Y1 = full.Y1
	}
	return b
}
