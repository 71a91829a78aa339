package search

import (
	"github.com/soocke/corrmatch/domain/angle"
	"github.com/soocke/corrmatch/domain/candidate"
	"github.com/soocke/corrmatch/domain/compiled"
	"github.com/soocke/corrmatch/domain/imaging"
	"github.com/soocke/corrmatch/domain/kernel"
)

// Coarse runs the exhaustive coarse search at pyramid level coarsest
// (spec.md §4.6): a single unmasked scan when rotation is disabled, or
// a scan over every angle in that level's AngleGrid when enabled, with
// per-angle top-M gather followed by a global top-K + cross-angle NMS
// merge (the "both" resolution of the per_angle_topk/NMS Open
// Question, recorded in DESIGN.md). Returns at most p.BeamWidth seeds,
// best first.
func Coarse(levelImg imaging.View, ct *compiled.CompiledTemplate, coarsest int, p Params) []Seed {
	tpl := ct.TemplateLevels[coarsest]
	bounds := kernel.ValidBounds(levelImg.Width, levelImg.Height, tpl.Width, tpl.Height)
	if bounds.Empty() {
		return nil
	}
	radius := candidate.LevelRadius(p.NMSRadius, coarsest)
	levelPlan := ct.Levels[coarsest]

	if !ct.RotationEnabled {
		cands := scanLevel(levelImg, levelPlan.Unmasked, nil, bounds, p, coarsest, 0, p.BeamWidth, radius)
		return toSeeds(cands, angle.Grid{})
	}

	grid := levelPlan.Bank.Grid
	all := make([]candidate.Candidate, 0, grid.Len()*p.PerAngleTopK)
	for a := 0; a < grid.Len(); a++ {
		plan := levelPlan.Bank.Plan(a)
		cands := scanLevel(levelImg, nil, plan, bounds, p, coarsest, a, p.PerAngleTopK, radius)
		all = append(all, cands...)
	}

	merged := candidate.NewTopK(p.BeamWidth)
	for _, c := range all {
		merged.Insert(c)
	}
	final := candidate.NMSAcrossAngles(merged.Sorted(), radius)
	return toSeeds(final, grid)
}
