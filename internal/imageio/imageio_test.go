package imageio

import (
	"image"
	"image/color"
	"testing"

	corrimg "github.com/soocke/corrmatch/domain/imaging"
)

func TestToGray_AppliesBT709Weights(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, G: 0, B: 0, A: 255})
	img.Set(1, 0, color.RGBA{R: 0, G: 255, B: 0, A: 255})
	img.Set(0, 1, color.RGBA{R: 0, G: 0, B: 255, A: 255})
	img.Set(1, 1, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	view, err := ToGray(img)
	if err != nil {
		t.Fatalf("ToGray: %v", err)
	}
	if view.Width != 2 || view.Height != 2 {
		t.Fatalf("expected 2x2 view, got %dx%d", view.Width, view.Height)
	}
	if view.At(1, 1) != 255 {
		t.Fatalf("expected pure white to map to 255, got %d", view.At(1, 1))
	}
	red := view.At(0, 0)
	green := view.At(1, 0)
	blue := view.At(0, 1)
	if !(green > red && red > blue) {
		t.Fatalf("expected BT.709 luma ordering green > red > blue, got red=%d green=%d blue=%d", red, green, blue)
	}
}

func TestPreviewResize_NoOpWhenAlreadySmall(t *testing.T) {
	pix := make([]uint8, 4*4)
	v, err := corrimg.NewView(4, 4, 4, pix)
	if err != nil {
		t.Fatalf("NewView: %v", err)
	}
	out := PreviewResize(v, 8)
	if out.Width != 4 || out.Height != 4 {
		t.Fatalf("expected no-op resize, got %dx%d", out.Width, out.Height)
	}
}

func TestPreviewResize_ShrinksLargerSide(t *testing.T) {
	pix := make([]uint8, 20*10)
	for i := range pix {
		pix[i] = uint8(i % 256)
	}
	v, err := corrimg.NewView(20, 10, 20, pix)
	if err != nil {
		t.Fatalf("NewView: %v", err)
	}
	out := PreviewResize(v, 10)
	if out.Width != 10 || out.Height != 5 {
		t.Fatalf("expected 10x5, got %dx%d", out.Width, out.Height)
	}
}
