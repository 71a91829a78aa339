package kernel

import (
	"math"
	"testing"

	"github.com/soocke/corrmatch/domain/imaging"
	"github.com/soocke/corrmatch/domain/template"
)

func embedBlock(iw, ih, bx, by, bw, bh int, bg, fg uint8) imaging.View {
	pix := make([]uint8, iw*ih)
	for i := range pix {
		pix[i] = bg
	}
	for y := 0; y < bh; y++ {
		for x := 0; x < bw; x++ {
			pix[(by+y)*iw+(bx+x)] = fg
		}
	}
	v, _ := imaging.NewView(iw, ih, iw, pix)
	return v
}

func blockTemplate(t *testing.T, w, h int, val uint8) template.Template {
	t.Helper()
	pix := make([]uint8, w*h)
	for i := range pix {
		pix[i] = val
	}
	tpl, err := template.New(w, h, pix)
	if err != nil {
		t.Fatalf("template.New: %v", err)
	}
	return tpl
}

func TestScanUnmasked_SelfMatchScoresOne(t *testing.T) {
	img := embedBlock(64, 64, 20, 10, 16, 16, 50, 200)
	tpl := blockTemplate(t, 16, 16, 200)
	plan, err := template.Compile(tpl)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	bounds := ValidBounds(64, 64, 16, 16)
	out := ScanUnmasked(img, &plan, bounds, ZNCC, 1e-6, 0, 0, 4, 2)
	if len(out) == 0 {
		t.Fatalf("expected at least one candidate")
	}
	best := out[0]
	if best.X != 20 || best.Y != 10 {
		t.Fatalf("expected match at (20,10), got (%d,%d)", best.X, best.Y)
	}
	if math.Abs(float64(best.Score)-1.0) > 1e-3 {
		t.Fatalf("expected score ~1.0, got %v", best.Score)
	}
}

func TestScanUnmasked_DegenerateZeroVarianceImage(t *testing.T) {
	pix := make([]uint8, 32*32)
	for i := range pix {
		pix[i] = 0
	}
	img, _ := imaging.NewView(32, 32, 32, pix)
	tpl := blockTemplate(t, 8, 8, 128)
	plan, err := template.Compile(tpl)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	bounds := ValidBounds(32, 32, 8, 8)
	out := ScanUnmasked(img, &plan, bounds, ZNCC, 1e-6, 0, 0, 4, 2)
	if len(out) != 0 {
		t.Fatalf("expected no candidates for zero-variance image, got %d", len(out))
	}
}

func TestScanUnmasked_SSDPrefersExactMatch(t *testing.T) {
	img := embedBlock(40, 40, 5, 5, 10, 10, 60, 180)
	tpl := blockTemplate(t, 10, 10, 180)
	plan, err := template.Compile(tpl)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	bounds := ValidBounds(40, 40, 10, 10)
	out := ScanUnmasked(img, &plan, bounds, SSD, 0, 0, 0, 2, 2)
	if len(out) == 0 {
		t.Fatalf("expected a candidate")
	}
	if out[0].X != 5 || out[0].Y != 5 {
		t.Fatalf("expected exact match at (5,5), got (%d,%d)", out[0].X, out[0].Y)
	}
	if out[0].Score != 0 {
		t.Fatalf("expected SSD score 0 for an exact match, got %v", out[0].Score)
	}
}

func TestScanMasked_SelfMatchAtEachRightAngle(t *testing.T) {
	pix := make([]uint8, 8*8)
	for i := range pix {
		pix[i] = uint8(30 + i%7*20)
	}
	tpl, err := template.New(8, 8, pix)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, a := range []float64{0, 90, 180, 270} {
		mp := template.CompileMasked(tpl, a)
		// Build an image embedding the rotated template at (12,12).
		img := imaging.View{}
		{
			iw, ih := 48, 48
			buf := make([]uint8, iw*ih)
			img, _ = imaging.NewView(iw, ih, iw, buf)
			for _, s := range mp.Samples {
				v := mp.ZeroMean[s.DY*mp.Width+s.DX] + float32(mp.SumT/float64(mp.NValid))
				buf[(12+s.DY)*iw+(12+s.DX)] = clampByte(v)
			}
		}
		bounds := ValidBounds(48, 48, mp.Width, mp.Height)
		out := ScanMasked(img, &mp, bounds, ZNCC, 1e-6, 0, 0, 2, 2)
		if len(out) == 0 {
			t.Fatalf("angle %v: expected a candidate", a)
		}
		if out[0].X != 12 || out[0].Y != 12 {
			t.Fatalf("angle %v: expected match at (12,12), got (%d,%d)", a, out[0].X, out[0].Y)
		}
		if math.Abs(float64(out[0].Score)-1.0) > 1e-2 {
			t.Fatalf("angle %v: expected score ~1.0, got %v", a, out[0].Score)
		}
	}
}

func clampByte(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func TestScanUnmaskedParallel_MatchesSequential(t *testing.T) {
	img := embedBlock(80, 80, 30, 40, 12, 12, 70, 210)
	tpl := blockTemplate(t, 12, 12, 210)
	plan, err := template.Compile(tpl)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	bounds := ValidBounds(80, 80, 12, 12)
	seq := ScanUnmasked(img, &plan, bounds, ZNCC, 1e-6, 0, 0, 5, 3)
	par := ScanUnmaskedParallel(img, &plan, bounds, ZNCC, 1e-6, 0, 0, 5, 3)
	if len(seq) != len(par) {
		t.Fatalf("length mismatch: sequential=%d parallel=%d", len(seq), len(par))
	}
	for i := range seq {
		if seq[i] != par[i] {
			t.Fatalf("candidate %d differs: sequential=%+v parallel=%+v", i, seq[i], par[i])
		}
	}
}
