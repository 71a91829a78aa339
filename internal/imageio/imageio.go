// Package imageio loads 8-bit grayscale views from PNG (or any image
// disintegration/imaging can decode) for the CLI's image and template
// inputs (spec.md §6's "Image I/O" external collaborator). Grayscale
// coercion uses the same ITU-R BT.709 luma weights as the teacher's
// domain/capture/ncc.go buildGrayPrecomp/getScaledTemplatePrecompFromBase,
// rather than disintegration/imaging's own Grayscale helper, so a PNG
// loaded here and a raw buffer built by hand produce identical pixel
// values for the same source color.
package imageio

import (
	"image"
	"image/png"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	corrimg "github.com/soocke/corrmatch/domain/imaging"
	"github.com/soocke/corrmatch/errs"
)

// DecodeGray decodes an image from r and coerces it to an owned
// 8-bit grayscale corrimg.View.
func DecodeGray(r io.Reader) (corrimg.View, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return corrimg.View{}, errs.Wrap(errs.InvalidInput, "failed to decode image", err)
	}
	return ToGray(img)
}

// DecodeGrayFile opens path and decodes it via DecodeGray.
func DecodeGrayFile(path string) (corrimg.View, error) {
	f, err := os.Open(path)
	if err != nil {
		return corrimg.View{}, errs.Wrap(errs.InvalidInput, "failed to open image file", err)
	}
	defer f.Close()
	return DecodeGray(f)
}

// ToGray coerces an already-decoded image.Image to an owned 8-bit
// grayscale corrimg.View using BT.709 luma weights.
func ToGray(img image.Image) (corrimg.View, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bb, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			// RGBA() returns 16-bit-scaled channel values; shift back
			// to 8-bit before weighting, matching the teacher's
			// ncc.go convention of weighting 8-bit channel values.
			r8 := float64(r >> 8)
			g8 := float64(g >> 8)
			b8 := float64(bb >> 8)
			gray := 0.2126*r8 + 0.7152*g8 + 0.0722*b8
			pix[y*w+x] = clampByte(gray)
		}
	}
	return corrimg.NewView(w, h, w, pix)
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// PreviewResize downsamples a grayscale view to at most maxDim on its
// longer side, for the CLI's --debug preview dump. Grounded on the
// teacher's domain/capture/multi_scale.go CatmullRom.Scale call, the
// one place in the pack that reaches for golang.org/x/image/draw for
// resampling rather than disintegration/imaging's own Resize (kept
// here to exercise the same dependency for the same kind of
// operation, not a training-relevant downsample — the match pyramid
// always uses the box-average in domain/imaging instead, since §4.1
// requires deterministic integer box averaging, not a resampling
// kernel that disagrees across library versions).
func PreviewResize(v corrimg.View, maxDim int) corrimg.View {
	if maxDim < 1 || (v.Width <= maxDim && v.Height <= maxDim) {
		return v
	}
	scale := float64(maxDim) / float64(max(v.Width, v.Height))
	nw := max(1, int(float64(v.Width)*scale))
	nh := max(1, int(float64(v.Height)*scale))

	src := ToImage(v)
	dst := image.NewGray(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	pix := make([]uint8, nw*nh)
	for y := 0; y < nh; y++ {
		copy(pix[y*nw:(y+1)*nw], dst.Pix[y*dst.Stride:y*dst.Stride+nw])
	}
	out, _ := corrimg.NewView(nw, nh, nw, pix)
	return out
}

// ToImage copies v into a stdlib *image.Gray, for handing a View to
// any API (golang.org/x/image/draw, image/png, ...) that wants an
// image.Image rather than CorrMatch's own View type.
func ToImage(v corrimg.View) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, v.Width, v.Height))
	for y := 0; y < v.Height; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+v.Width], v.Row(y))
	}
	return img
}

// WritePreviewPNG writes a downsampled (at most maxDim on its longer
// side) PNG preview of v to path, for the CLI's --debug-dir dump
// (SPEC_FULL.md §4.10/§6).
func WritePreviewPNG(path string, v corrimg.View, maxDim int) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.Internal, "failed to create preview file", err)
	}
	defer f.Close()
	if err := png.Encode(f, ToImage(PreviewResize(v, maxDim))); err != nil {
		return errs.Wrap(errs.Internal, "failed to encode preview PNG", err)
	}
	return nil
}
