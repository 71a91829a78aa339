// Package search implements the coarse-to-fine matcher orchestration:
// an exhaustive coarse scan at the pyramid's coarsest level (§4.6),
// level-by-level ROI/angle-neighborhood refinement (§4.8), and the
// final subpixel/subangle fit (§4.9). It is grounded on the teacher's
// domain/capture/detect.go (a config-driven entry point calling into
// the scan) and multi_scale.go's parallel fan-out/merge shape, now
// applied jointly over translation and rotation across pyramid levels
// rather than over a fixed list of scale factors.
package search

import (
	"sort"

	"github.com/soocke/corrmatch/domain/angle"
	"github.com/soocke/corrmatch/domain/candidate"
	"github.com/soocke/corrmatch/domain/compiled"
	"github.com/soocke/corrmatch/domain/imaging"
	"github.com/soocke/corrmatch/domain/kernel"
	"github.com/soocke/corrmatch/domain/template"
	"github.com/soocke/corrmatch/errs"
)

// Params bundles the per-invocation search knobs threaded down from
// MatchConfig (spec.md §6).
type Params struct {
	Metric            kernel.Metric
	Parallel          bool
	BeamWidth         int
	PerAngleTopK      int
	NMSRadius         int
	ROIRadius         int
	AngleNeighborhood int
	MinVarI           float32
}

// Seed is a candidate position carried between pyramid levels. Unlike
// candidate.Candidate, its angle is a concrete degree value rather
// than an index into one level's AngleGrid, since each pyramid level
// has its own grid with its own step (spec.md §4.8).
type Seed struct {
	X, Y     int
	AngleDeg float64
	Score    float32
}

// Result is a fully refined and subpixel/subangle-fitted match
// (spec.md §4.9's "Final match is (x+δx, y+δy, θ+δθ, s₀)").
type Result struct {
	X, Y     float64
	AngleDeg float64
	Score    float32
}

// EffectiveLevels returns the number of pyramid levels usable by a
// search: the image pyramid and the template pyramid may have
// truncated to different depths (imaging.BuildPyramid stops once
// either dimension drops below 2), so the search only ever uses the
// shallower of the two.
func EffectiveLevels(ct *compiled.CompiledTemplate, pyr imaging.Pyramid) int {
	n := ct.NumLevels()
	if len(pyr.Levels) < n {
		n = len(pyr.Levels)
	}
	return n
}

// Run executes the full coarse-to-fine search and returns the
// refined, fitted candidates, best first, at most p.BeamWidth of them.
// It returns errs.Degenerate if no candidate survives any stage.
func Run(pyr imaging.Pyramid, ct *compiled.CompiledTemplate, p Params) ([]Result, error) {
	img0, tpl0 := pyr.Levels[0], ct.TemplateLevels[0]
	if img0.Width < tpl0.Width || img0.Height < tpl0.Height {
		return nil, errs.New(errs.InvalidInput, "image is smaller than the template at level 0")
	}

	levels := EffectiveLevels(ct, pyr)
	if levels == 0 {
		return nil, errs.New(errs.Degenerate, "template does not fit the image at any pyramid level")
	}
	coarsest := levels - 1

	seeds := Coarse(pyr.Levels[coarsest].View(), ct, coarsest, p)
	if len(seeds) == 0 {
		return nil, errs.New(errs.Degenerate, "coarse search found no candidate placement")
	}

	for lvl := coarsest - 1; lvl >= 0; lvl-- {
		seeds = refineLevel(pyr.Levels[lvl].View(), ct, lvl, seeds, p)
		if len(seeds) == 0 {
			return nil, errs.New(errs.Degenerate, "refinement found no surviving candidate")
		}
	}

	results := make([]Result, 0, len(seeds))
	for _, s := range seeds {
		r, ok := FinalFit(pyr.Levels[0].View(), ct, s, p)
		if ok {
			results = append(results, r)
		}
	}
	if len(results) == 0 {
		return nil, errs.New(errs.Degenerate, "final fit found no surviving candidate")
	}
	// seeds arrived in deterministic score-descending order out of the
	// last refinement's NMS pass; re-sort defensively since the final
	// fit recomputes each score independently and a stable sort keeps
	// equal-score entries in that same deterministic order rather than
	// depending on fit rounding to preserve it.
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results, nil
}

func scanLevel(img imaging.View, unmasked *template.Plan, masked *template.MaskedPlan, bounds kernel.Bounds, p Params, level, angleIdx, topK, nmsRadius int) []candidate.Candidate {
	if masked != nil {
		if p.Parallel {
			return kernel.ScanMaskedParallel(img, masked, bounds, p.Metric, p.MinVarI, level, angleIdx, topK, nmsRadius)
		}
		return kernel.ScanMasked(img, masked, bounds, p.Metric, p.MinVarI, level, angleIdx, topK, nmsRadius)
	}
	if p.Parallel {
		return kernel.ScanUnmaskedParallel(img, unmasked, bounds, p.Metric, p.MinVarI, level, angleIdx, topK, nmsRadius)
	}
	return kernel.ScanUnmasked(img, unmasked, bounds, p.Metric, p.MinVarI, level, angleIdx, topK, nmsRadius)
}

func gridForLevel(ct *compiled.CompiledTemplate, lvl int) angle.Grid {
	if !ct.RotationEnabled {
		return angle.Grid{}
	}
	return ct.Levels[lvl].Bank.Grid
}

func toSeeds(cands []candidate.Candidate, grid angle.Grid) []Seed {
	seeds := make([]Seed, len(cands))
	for i, c := range cands {
		var deg float64
		if grid.Len() > 0 {
			deg = grid.Angle(c.AngleIdx)
		}
		seeds[i] = Seed{X: c.X, Y: c.Y, AngleDeg: deg, Score: c.Score}
	}
	return seeds
}
