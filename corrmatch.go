// Package corrmatch implements deterministic, CPU-only grayscale
// template matching with translation and optional rotation search at
// subpixel/subangle precision. The package wires together the
// image-pyramid, template-plan, rotation-bank, scan-kernel, and
// coarse-to-fine search subpackages into the library surface described
// by spec.md §6: construct a Template, compile it against a
// CompileConfig, build a Matcher from the compiled template and a
// MatchConfig, then call MatchImage / MatchImageTopK.
package corrmatch

import (
	"github.com/soocke/corrmatch/domain/compiled"
	"github.com/soocke/corrmatch/domain/imaging"
	"github.com/soocke/corrmatch/domain/kernel"
	"github.com/soocke/corrmatch/domain/search"
	"github.com/soocke/corrmatch/domain/template"
	"github.com/soocke/corrmatch/errs"
)

// Template is an owned grayscale template buffer.
type Template = template.Template

// NewTemplate constructs a Template from a contiguous grayscale buffer
// of length width*height.
func NewTemplate(width, height int, pix []uint8) (Template, error) {
	return template.New(width, height, pix)
}

// View is a borrowed grayscale image, the input to MatchImage /
// MatchImageTopK.
type View = imaging.View

// NewView constructs a View over an existing buffer, borrowed rather
// than copied.
func NewView(width, height, stride int, pix []uint8) (View, error) {
	return imaging.NewView(width, height, stride, pix)
}

// Metric selects the per-placement scoring formula.
type Metric = kernel.Metric

const (
	ZNCC = kernel.ZNCC
	SSD  = kernel.SSD
)

// CompileConfig controls pyramid depth and, when rotation is enabled,
// the angle step schedule across pyramid levels (spec.md §6).
type CompileConfig struct {
	MaxLevels     int     // pyramid depth cap (>= 1)
	CoarseStepDeg float64 // angle step at the coarsest level (> 0), rotation only
	MinStepDeg    float64 // minimum angle step after refinement shrinkage, rotation only
	FillValue     uint8   // fill for rotated-out pixels, unmasked variant
}

func (c CompileConfig) toInternal() compiled.Config {
	return compiled.Config{
		MaxLevels:     c.MaxLevels,
		CoarseStepDeg: c.CoarseStepDeg,
		MinStepDeg:    c.MinStepDeg,
		FillValue:     c.FillValue,
	}
}

// CompiledTemplate is a Template compiled against a CompileConfig: a
// template pyramid plus, per level, either an unmasked plan (rotation
// disabled) or a lazily-populated rotation bank (enabled).
type CompiledTemplate struct {
	inner    *compiled.CompiledTemplate
	rotation bool
}

// Compile builds the rotation-enabled compiled template.
func Compile(t Template, cfg CompileConfig) (*CompiledTemplate, error) {
	ct, err := compiled.Compile(t, cfg.toInternal())
	if err != nil {
		return nil, err
	}
	return &CompiledTemplate{inner: ct, rotation: true}, nil
}

// CompileUnrotated builds the rotation-disabled fast-path compiled
// template.
func CompileUnrotated(t Template, cfg CompileConfig) (*CompiledTemplate, error) {
	ct, err := compiled.CompileUnrotated(t, cfg.toInternal())
	if err != nil {
		return nil, err
	}
	return &CompiledTemplate{inner: ct, rotation: false}, nil
}

// MatchConfig controls a Matcher's search behavior (spec.md §6).
type MatchConfig struct {
	Metric            Metric  // ZNCC or SSD
	Rotation          bool    // must agree with how the CompiledTemplate was built
	Parallel          bool    // request parallel execution
	BeamWidth         int     // candidates carried between levels (>= 1)
	PerAngleTopK      int     // candidates per angle at coarse level (>= 1), rotation only
	NMSRadius         int     // spatial NMS Chebyshev radius at level 0 (>= 0)
	ROIRadius         int     // ROI half-size during refinement (>= 1)
	AngleNeighborhood int     // +/- steps scanned during refinement, rotation only (>= 0)
	MinVarI           float32 // image-window variance floor for ZNCC (ignored for SSD)
}

// Validate checks MatchConfig ranges against whether rotation is
// enabled, returning InvalidConfig on the first violation (spec.md
// §7: "validation errors are returned at config/construction time,
// never mid-scan").
func (c MatchConfig) Validate() error {
	if c.BeamWidth < 1 {
		return errs.New(errs.InvalidConfig, "beam_width must be >= 1")
	}
	if c.ROIRadius < 1 {
		return errs.New(errs.InvalidConfig, "roi_radius must be >= 1")
	}
	if c.NMSRadius < 0 {
		return errs.New(errs.InvalidConfig, "nms_radius must be >= 0")
	}
	if c.MinVarI < 0 {
		return errs.New(errs.InvalidConfig, "min_var_i must be >= 0")
	}
	if c.Rotation {
		if c.PerAngleTopK < 1 {
			return errs.New(errs.InvalidConfig, "per_angle_topk must be >= 1 when rotation is enabled")
		}
		if c.AngleNeighborhood < 0 {
			return errs.New(errs.InvalidConfig, "angle_neighborhood must be >= 0")
		}
	}
	return nil
}

func (c MatchConfig) toParams() search.Params {
	return search.Params{
		Metric:            c.Metric,
		Parallel:          c.Parallel,
		BeamWidth:         c.BeamWidth,
		PerAngleTopK:      c.PerAngleTopK,
		NMSRadius:         c.NMSRadius,
		ROIRadius:         c.ROIRadius,
		AngleNeighborhood: c.AngleNeighborhood,
		MinVarI:           c.MinVarI,
	}
}

// Match is a single fitted result: position and angle in image
// coordinates (subpixel/subangle, spec.md §4.9) and the score at the
// winning integer-grid placement.
type Match struct {
	X, Y     float64
	AngleDeg float64
	Score    float32
}

// Matcher binds a CompiledTemplate to a MatchConfig. It is immutable
// after construction and safe for concurrent use by multiple callers
// (spec.md §5: the CompiledTemplate is shared by reference, its only
// mutable state being the rotation bank's write-once slots).
type Matcher struct {
	ct  *compiled.CompiledTemplate
	cfg MatchConfig
}

// NewMatcher validates cfg and binds it to ct. cfg.Rotation must agree
// with how ct was built (Compile vs. CompileUnrotated); a mismatch is
// InvalidConfig, since a Matcher configured for rotation cannot search
// angles a CompileUnrotated template never built plans for, and a
// Matcher configured without rotation would silently ignore an
// enabled rotation bank's cost.
func NewMatcher(ct *CompiledTemplate, cfg MatchConfig) (*Matcher, error) {
	if cfg.Rotation != ct.rotation {
		return nil, errs.New(errs.InvalidConfig, "match_config.rotation must match how the template was compiled")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Matcher{ct: ct.inner, cfg: cfg}, nil
}

// MatchImage searches view and returns the single best match.
//
// parallel=true is always honored in this build: the scan kernels fan
// out over a bounded goroutine pool whenever Go's runtime provides
// more than one usable core, and produce bit-identical results to the
// sequential path regardless (spec.md §5, §8). ParallelUnavailable
// therefore never fires from this implementation; the Kind is kept in
// the taxonomy (errs.Kind) because spec.md §7 requires it to exist for
// deployments that cannot offer it, even though this one always can.
func (m *Matcher) MatchImage(view View) (Match, error) {
	results, err := m.run(view)
	if err != nil {
		return Match{}, err
	}
	return toMatch(results[0]), nil
}

// MatchImageTopK searches view and returns up to k matches, best
// first, each separated from every other by more than nms_radius
// (Chebyshev) in (x, y).
func (m *Matcher) MatchImageTopK(view View, k int) ([]Match, error) {
	if k < 1 {
		return nil, errs.New(errs.InvalidConfig, "k must be >= 1")
	}
	results, err := m.run(view)
	if err != nil {
		return nil, err
	}
	if k > len(results) {
		k = len(results)
	}
	out := make([]Match, k)
	for i := 0; i < k; i++ {
		out[i] = toMatch(results[i])
	}
	return out, nil
}

func (m *Matcher) run(view View) ([]search.Result, error) {
	pyr, err := imaging.BuildPyramid(view, m.ct.Config.MaxLevels)
	if err != nil {
		return nil, err
	}
	return search.Run(pyr, m.ct, m.cfg.toParams())
}

func toMatch(r search.Result) Match {
	return Match{X: r.X, Y: r.Y, AngleDeg: r.AngleDeg, Score: r.Score}
}
