package imaging

import "testing"

func TestBuildPyramid_DepthTruncation(t *testing.T) {
	pix := make([]uint8, 64)
	for i := range pix {
		pix[i] = 100
	}
	view, err := NewView(8, 8, 8, pix)
	if err != nil {
		t.Fatalf("NewView: %v", err)
	}
	pyr, err := BuildPyramid(view, 4)
	if err != nil {
		t.Fatalf("BuildPyramid: %v", err)
	}
	if len(pyr.Levels) != 3 {
		t.Fatalf("expected 3 levels (8->4->2, stop), got %d", len(pyr.Levels))
	}
	last := pyr.Levels[2]
	if last.Width != 2 || last.Height != 2 {
		t.Fatalf("expected 2x2 final level, got %dx%d", last.Width, last.Height)
	}
	for _, p := range last.Pix {
		if p != 100 {
			t.Fatalf("constant image should downsample to constant value, got %d", p)
		}
	}
}

func TestBuildPyramid_Sizes(t *testing.T) {
	pix := make([]uint8, 17*13)
	view, err := NewView(17, 13, 17, pix)
	if err != nil {
		t.Fatalf("NewView: %v", err)
	}
	pyr, err := BuildPyramid(view, 3)
	if err != nil {
		t.Fatalf("BuildPyramid: %v", err)
	}
	wantW, wantH := 17, 13
	for i, lvl := range pyr.Levels {
		if lvl.Width != wantW || lvl.Height != wantH {
			t.Fatalf("level %d: want %dx%d got %dx%d", i, wantW, wantH, lvl.Width, lvl.Height)
		}
		wantW /= 2
		wantH /= 2
	}
}

func TestBuildPyramid_RoundingIsBankers(t *testing.T) {
	// four pixels 1,2,2,3 -> sum=8 -> (8+2)/4=2
	pix := []uint8{1, 2, 2, 3}
	view, err := NewView(2, 2, 2, pix)
	if err != nil {
		t.Fatalf("NewView: %v", err)
	}
	pyr, err := BuildPyramid(view, 2)
	if err != nil {
		t.Fatalf("BuildPyramid: %v", err)
	}
	if len(pyr.Levels) != 1 {
		t.Fatalf("2x2 cannot produce a 1x1 level (min dim 2); want 1 level, got %d", len(pyr.Levels))
	}

	// The same four pixels as the top-left 2x2 block of a 4x4 view do
	// produce a level 1, whose first pixel is (8+2)/4 = 2.
	pix4 := []uint8{
		1, 2, 0, 0,
		2, 3, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
	}
	view4, err := NewView(4, 4, 4, pix4)
	if err != nil {
		t.Fatalf("NewView: %v", err)
	}
	pyr4, err := BuildPyramid(view4, 2)
	if err != nil {
		t.Fatalf("BuildPyramid: %v", err)
	}
	if len(pyr4.Levels) != 2 {
		t.Fatalf("expected 2 levels for a 4x4 view, got %d", len(pyr4.Levels))
	}
	if got := pyr4.Levels[1].Pix[0]; got != 2 {
		t.Fatalf("expected (1+2+2+3+2)/4 = 2, got %d", got)
	}
}

func TestBuildPyramid_EmptyViewRejected(t *testing.T) {
	if _, err := NewView(0, 0, 0, nil); err == nil {
		t.Fatalf("expected error for empty view")
	}
	if _, err := BuildPyramid(View{}, 1); err == nil {
		t.Fatalf("expected BuildPyramid to reject an empty view")
	}
}

func TestBuildPyramid_InvalidMaxLevels(t *testing.T) {
	pix := make([]uint8, 4)
	view, _ := NewView(2, 2, 2, pix)
	if _, err := BuildPyramid(view, 0); err == nil {
		t.Fatalf("expected InvalidConfig error for max_levels < 1")
	}
}
