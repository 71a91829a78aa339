package corrmatch

import (
	"math"
	"testing"

	"github.com/soocke/corrmatch/errs"
)

func fillBlock(pix []uint8, iw, x0, y0, w, h int, val uint8) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix[(y0+y)*iw+x0+x] = val
		}
	}
}

func TestMatchImage_DegenerateOnZeroVarianceImage(t *testing.T) {
	pix := make([]uint8, 32*32)
	view, err := NewView(32, 32, 32, pix)
	if err != nil {
		t.Fatalf("NewView: %v", err)
	}
	tplPix := make([]uint8, 8*8)
	for i := range tplPix {
		tplPix[i] = 128
	}
	tpl, err := NewTemplate(8, 8, tplPix)
	if err != nil {
		t.Fatalf("NewTemplate: %v", err)
	}
	ct, err := CompileUnrotated(tpl, CompileConfig{MaxLevels: 2})
	if err != nil {
		t.Fatalf("CompileUnrotated: %v", err)
	}
	m, err := NewMatcher(ct, MatchConfig{Metric: ZNCC, BeamWidth: 4, NMSRadius: 2, ROIRadius: 4, MinVarI: 1e-6})
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	_, err = m.MatchImage(view)
	if err == nil {
		t.Fatalf("expected Degenerate error")
	}
	if kind, ok := errs.As(err); !ok || kind != errs.Degenerate {
		t.Fatalf("expected errs.Degenerate, got %v", err)
	}
}

func TestMatchImage_InvalidInputWhenImageSmallerThanTemplate(t *testing.T) {
	pix := make([]uint8, 8*8)
	for i := range pix {
		pix[i] = 50
	}
	view, err := NewView(8, 8, 8, pix)
	if err != nil {
		t.Fatalf("NewView: %v", err)
	}
	tplPix := make([]uint8, 16*16)
	for i := range tplPix {
		tplPix[i] = 200
	}
	tpl, err := NewTemplate(16, 16, tplPix)
	if err != nil {
		t.Fatalf("NewTemplate: %v", err)
	}
	ct, err := CompileUnrotated(tpl, CompileConfig{MaxLevels: 2})
	if err != nil {
		t.Fatalf("CompileUnrotated: %v", err)
	}
	m, err := NewMatcher(ct, MatchConfig{Metric: ZNCC, BeamWidth: 4, NMSRadius: 2, ROIRadius: 4, MinVarI: 1e-6})
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	_, err = m.MatchImage(view)
	if err == nil {
		t.Fatalf("expected InvalidInput error")
	}
	if kind, ok := errs.As(err); !ok || kind != errs.InvalidInput {
		t.Fatalf("expected errs.InvalidInput, got %v", err)
	}
}

func TestMatchImage_FindsExactBlock(t *testing.T) {
	const iw, ih = 64, 64
	pix := make([]uint8, iw*ih)
	for i := range pix {
		pix[i] = 50
	}
	fillBlock(pix, iw, 20, 10, 16, 16, 200)
	view, err := NewView(iw, ih, iw, pix)
	if err != nil {
		t.Fatalf("NewView: %v", err)
	}
	tplPix := make([]uint8, 16*16)
	for i := range tplPix {
		tplPix[i] = 200
	}
	tpl, err := NewTemplate(16, 16, tplPix)
	if err != nil {
		t.Fatalf("NewTemplate: %v", err)
	}
	ct, err := CompileUnrotated(tpl, CompileConfig{MaxLevels: 3})
	if err != nil {
		t.Fatalf("CompileUnrotated: %v", err)
	}
	m, err := NewMatcher(ct, MatchConfig{Metric: ZNCC, BeamWidth: 4, NMSRadius: 4, ROIRadius: 6, MinVarI: 1e-6})
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	match, err := m.MatchImage(view)
	if err != nil {
		t.Fatalf("MatchImage: %v", err)
	}
	if math.Abs(match.X-20) > 1.0 || math.Abs(match.Y-10) > 1.0 {
		t.Fatalf("expected match near (20,10), got (%.2f,%.2f)", match.X, match.Y)
	}
	if match.AngleDeg != 0 {
		t.Fatalf("expected angle 0 with rotation disabled, got %v", match.AngleDeg)
	}
	if match.Score < 0.95 {
		t.Fatalf("expected score >= 0.95, got %v", match.Score)
	}
}

func TestMatchImageTopK_FindsBothDisjointCopies(t *testing.T) {
	const iw, ih = 128, 128
	pix := make([]uint8, iw*ih)
	for i := range pix {
		pix[i] = 30
	}
	fillBlock(pix, iw, 10, 10, 16, 16, 210)
	fillBlock(pix, iw, 90, 90, 16, 16, 210)
	view, err := NewView(iw, ih, iw, pix)
	if err != nil {
		t.Fatalf("NewView: %v", err)
	}
	tplPix := make([]uint8, 16*16)
	for i := range tplPix {
		tplPix[i] = 210
	}
	tpl, err := NewTemplate(16, 16, tplPix)
	if err != nil {
		t.Fatalf("NewTemplate: %v", err)
	}
	ct, err := CompileUnrotated(tpl, CompileConfig{MaxLevels: 3})
	if err != nil {
		t.Fatalf("CompileUnrotated: %v", err)
	}
	m, err := NewMatcher(ct, MatchConfig{Metric: ZNCC, BeamWidth: 8, NMSRadius: 4, ROIRadius: 6, MinVarI: 1e-6})
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	matches, err := m.MatchImageTopK(view, 2)
	if err != nil {
		t.Fatalf("MatchImageTopK: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	for _, match := range matches {
		if match.Score < 0.95 {
			t.Fatalf("expected score >= 0.95, got %v", match.Score)
		}
	}
	if matches[0].Score < matches[1].Score {
		t.Fatalf("expected matches in descending score order, got %+v", matches)
	}
	foundFirst := math.Abs(matches[0].X-10) < 1.0 && math.Abs(matches[0].Y-10) < 1.0
	foundSecond := math.Abs(matches[1].X-90) < 1.0 && math.Abs(matches[1].Y-90) < 1.0
	if !foundFirst && !(math.Abs(matches[1].X-10) < 1.0 && math.Abs(matches[1].Y-10) < 1.0) {
		t.Fatalf("expected one match near (10,10), got %+v", matches)
	}
	if !foundSecond && !(math.Abs(matches[0].X-90) < 1.0 && math.Abs(matches[0].Y-90) < 1.0) {
		t.Fatalf("expected one match near (90,90), got %+v", matches)
	}
}

func TestMatchConfig_ValidateRejectsBadRanges(t *testing.T) {
	bad := MatchConfig{Metric: ZNCC, BeamWidth: 0, ROIRadius: 4}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected InvalidConfig for beam_width=0")
	}
	bad2 := MatchConfig{Metric: ZNCC, BeamWidth: 1, ROIRadius: 4, Rotation: true, PerAngleTopK: 0}
	if err := bad2.Validate(); err == nil {
		t.Fatalf("expected InvalidConfig for per_angle_topk=0 with rotation enabled")
	}
}

func TestNewMatcher_RejectsRotationMismatch(t *testing.T) {
	tplPix := make([]uint8, 8*8)
	tpl, _ := NewTemplate(8, 8, tplPix)
	ct, err := CompileUnrotated(tpl, CompileConfig{MaxLevels: 1})
	if err != nil {
		t.Fatalf("CompileUnrotated: %v", err)
	}
	_, err = NewMatcher(ct, MatchConfig{Metric: ZNCC, BeamWidth: 1, ROIRadius: 1, Rotation: true, PerAngleTopK: 1})
	if err == nil {
		t.Fatalf("expected InvalidConfig for rotation mismatch")
	}
}
