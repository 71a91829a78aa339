package compiled

import (
	"math"

	"github.com/soocke/corrmatch/domain/angle"
	"github.com/soocke/corrmatch/domain/imaging"
	"github.com/soocke/corrmatch/domain/template"
	"github.com/soocke/corrmatch/errs"
)

// LevelPlan is the per-pyramid-level compiled state: exactly one of
// Unmasked or Bank is set, depending on whether rotation is enabled.
type LevelPlan struct {
	Unmasked *template.Plan
	Bank     *RotationBank
}

// CompiledTemplate bundles a template pyramid with, per level, either
// an unmasked plan or a rotation bank. Immutable after construction
// except for the banks' write-once slots (§4.7).
type CompiledTemplate struct {
	Config          Config
	RotationEnabled bool
	TemplateLevels  []template.Template
	Levels          []LevelPlan
}

// NumLevels returns the number of pyramid levels actually built
// (may be less than Config.MaxLevels; see imaging.BuildPyramid).
func (c *CompiledTemplate) NumLevels() int { return len(c.Levels) }

// CoarsestLevel returns the index of the coarsest (last) level.
func (c *CompiledTemplate) CoarsestLevel() int { return len(c.Levels) - 1 }

// LevelStepDeg returns the angle grid step used at pyramid level lvl,
// shrinking geometrically from CoarseStepDeg at the coarsest level
// toward MinStepDeg at level 0 (spec.md §4.8). No additional "shrink"
// multiplier is applied beyond the level-to-level halving, since
// halving per level already tracks the pyramid's own 2x downsampling
// factor.
func (c *CompiledTemplate) LevelStepDeg(lvl int) float64 {
	coarsest := c.CoarsestLevel()
	step := c.Config.CoarseStepDeg / math.Pow(2, float64(coarsest-lvl))
	if step < c.Config.MinStepDeg {
		step = c.Config.MinStepDeg
	}
	return step
}

// buildTemplatePyramid downsamples t the same way imaging.BuildPyramid
// downsamples images, so the template and the search image shrink
// identically across levels.
func buildTemplatePyramid(t template.Template, maxLevels int) ([]template.Template, error) {
	view, err := imaging.NewView(t.Width, t.Height, t.Width, t.Pix)
	if err != nil {
		return nil, err
	}
	pyr, err := imaging.BuildPyramid(view, maxLevels)
	if err != nil {
		return nil, err
	}
	out := make([]template.Template, len(pyr.Levels))
	for i, lvl := range pyr.Levels {
		tt, err := template.New(lvl.Width, lvl.Height, lvl.Pix)
		if err != nil {
			return nil, errs.Wrap(errs.Internal, "template pyramid level failed validation", err)
		}
		out[i] = tt
	}
	return out, nil
}

// CompileUnrotated builds the rotation-disabled fast path: an unmasked
// Plan per pyramid level.
func CompileUnrotated(t template.Template, cfg Config) (*CompiledTemplate, error) {
	if err := cfg.Validate(false); err != nil {
		return nil, err
	}
	levels, err := buildTemplatePyramid(t, cfg.MaxLevels)
	if err != nil {
		return nil, err
	}
	plans := make([]LevelPlan, len(levels))
	for i, lvl := range levels {
		p, err := template.Compile(lvl)
		if err != nil {
			return nil, err
		}
		pc := p
		plans[i] = LevelPlan{Unmasked: &pc}
	}
	return &CompiledTemplate{Config: cfg, RotationEnabled: false, TemplateLevels: levels, Levels: plans}, nil
}

// Compile builds the rotation-enabled path: a RotationBank per
// pyramid level, each with its own angle grid (step shrinking toward
// finer levels per LevelStepDeg).
func Compile(t template.Template, cfg Config) (*CompiledTemplate, error) {
	if err := cfg.Validate(true); err != nil {
		return nil, err
	}
	levels, err := buildTemplatePyramid(t, cfg.MaxLevels)
	if err != nil {
		return nil, err
	}
	ct := &CompiledTemplate{Config: cfg, RotationEnabled: true, TemplateLevels: levels, Levels: make([]LevelPlan, len(levels))}
	for i, lvl := range levels {
		grid, err := angle.Full(ct.LevelStepDeg(i))
		if err != nil {
			return nil, err
		}
		ct.Levels[i] = LevelPlan{Bank: newRotationBank(lvl, grid)}
	}
	return ct, nil
}
