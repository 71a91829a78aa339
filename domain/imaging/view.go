// Package imaging implements the borrowed grayscale image view and the
// box-averaging image pyramid used by the coarse-to-fine search. The
// per-pixel grayscale bookkeeping here is grounded on the teacher's
// domain/capture/ncc.go buildGrayPrecomp row-major accumulation style,
// generalized from a single owned RGBA frame to a borrowed 8-bit view
// with explicit stride plus an owned multi-level pyramid.
package imaging

import "github.com/soocke/corrmatch/errs"

// View is a borrowed 2D grayscale image: width, height, stride (pixels
// per row, may exceed width), and the backing pixel buffer. Row i
// starts at Pix[i*Stride : i*Stride+Width].
type View struct {
	Width, Height int
	Stride        int
	Pix           []uint8
}

// NewView validates and constructs a View over an existing buffer. The
// buffer is borrowed, not copied.
func NewView(width, height, stride int, pix []uint8) (View, error) {
	if width < 1 || height < 1 {
		return View{}, errs.New(errs.InvalidInput, "image view dimensions must be >= 1")
	}
	if stride < width {
		return View{}, errs.New(errs.InvalidInput, "stride must be >= width")
	}
	if len(pix) < (height-1)*stride+width {
		return View{}, errs.New(errs.InvalidInput, "pixel buffer too small for declared dimensions/stride")
	}
	return View{Width: width, Height: height, Stride: stride, Pix: pix}, nil
}

// At returns the pixel value at (x, y). Callers must stay in bounds;
// this is a hot-path accessor and performs no bounds checking beyond
// what Go's slice indexing provides.
func (v View) At(x, y int) uint8 {
	return v.Pix[y*v.Stride+x]
}

// Row returns the pixel row y as a slice of length Width.
func (v View) Row(y int) []uint8 {
	off := y * v.Stride
	return v.Pix[off : off+v.Width]
}
