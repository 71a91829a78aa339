// Package compiled implements CompiledTemplate: a template pyramid
// plus, per level, either an unmasked plan (the no-rotation fast path)
// or a lazily-populated bank of masked, rotated plans indexed by an
// angle grid. The lazy-bank publication primitive is grounded on the
// teacher's domain/capture/ncc.go tmplCacheByDim double-checked
// sync.RWMutex cache, generalized here to one sync.Once-guarded slot
// per (level, angle index) rather than one cache entry per dimension.
package compiled

import "github.com/soocke/corrmatch/errs"

// Config controls pyramid depth and, when rotation is enabled, the
// angle step schedule across pyramid levels.
type Config struct {
	MaxLevels     int     // pyramid depth cap (>= 1)
	CoarseStepDeg float64 // angle step at the coarsest level (> 0)
	MinStepDeg    float64 // minimum angle step after refinement shrinkage (0 < min <= coarse)
	FillValue     uint8   // fill for rotated-out pixels, unmasked variant
}

// Validate checks Config ranges, returning an InvalidConfig error on
// the first violation. Unlike the teacher's Config.Validate (which
// clamps out-of-range fields to defaults), CorrMatch's configs are
// rejected outright per spec.md §7 ("validation errors are returned at
// config/construction time, never mid-scan").
func (c Config) Validate(rotationEnabled bool) error {
	if c.MaxLevels < 1 {
		return errs.New(errs.InvalidConfig, "max_levels must be >= 1")
	}
	if !rotationEnabled {
		return nil
	}
	if c.CoarseStepDeg <= 0 {
		return errs.New(errs.InvalidConfig, "coarse_step_deg must be > 0")
	}
	if c.MinStepDeg <= 0 {
		return errs.New(errs.InvalidConfig, "min_step_deg must be > 0")
	}
	if c.MinStepDeg > c.CoarseStepDeg {
		return errs.New(errs.InvalidConfig, "min_step_deg must be <= coarse_step_deg")
	}
	return nil
}
