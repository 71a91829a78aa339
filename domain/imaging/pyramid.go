package imaging

import "github.com/soocke/corrmatch/errs"

// Level is one owned, contiguous grayscale image in a Pyramid. Stride
// always equals Width (levels are never borrowed).
type Level struct {
	Width, Height int
	Pix           []uint8
}

func (l Level) View() View {
	return View{Width: l.Width, Height: l.Height, Stride: l.Width, Pix: l.Pix}
}

// Pyramid is an ordered sequence of owned image levels, level 0 being
// the original (copied) input. Each subsequent level is half the
// dimensions of its predecessor, 2x2 box-averaged.
type Pyramid struct {
	Levels []Level
}

// BuildPyramid constructs a Pyramid from view with up to maxLevels
// total levels (including level 0). Depth truncates at the largest k
// such that level k's dimensions are both >= 2; deeper levels are
// simply not produced rather than erroring (spec.md §4.1).
func BuildPyramid(view View, maxLevels int) (Pyramid, error) {
	if view.Width < 1 || view.Height < 1 {
		return Pyramid{}, errs.New(errs.InvalidInput, "pyramid source view is empty")
	}
	if maxLevels < 1 {
		return Pyramid{}, errs.New(errs.InvalidConfig, "max_levels must be >= 1")
	}

	levels := make([]Level, 0, maxLevels)
	levels = append(levels, copyLevel(view))

	for len(levels) < maxLevels {
		prev := levels[len(levels)-1]
		nw, nh := prev.Width/2, prev.Height/2
		if nw < 2 || nh < 2 {
			break
		}
		levels = append(levels, downsample(prev, nw, nh))
	}
	return Pyramid{Levels: levels}, nil
}

func copyLevel(v View) Level {
	pix := make([]uint8, v.Width*v.Height)
	for y := 0; y < v.Height; y++ {
		copy(pix[y*v.Width:(y+1)*v.Width], v.Row(y))
	}
	return Level{Width: v.Width, Height: v.Height, Pix: pix}
}

// downsample computes a (nw x nh) level from prev by 2x2 box averaging
// with banker's-rounding-compatible integer arithmetic: (sum+2)/4 over
// the four source pixels, discarding any odd trailing row/column.
func downsample(prev Level, nw, nh int) Level {
	out := make([]uint8, nw*nh)
	pw := prev.Width
	src := prev.Pix
	for yo := 0; yo < nh; yo++ {
		y0 := 2 * yo
		y1 := y0 + 1
		rowA := src[y0*pw : y0*pw+pw]
		rowB := src[y1*pw : y1*pw+pw]
		for xo := 0; xo < nw; xo++ {
			x0 := 2 * xo
			x1 := x0 + 1
			sum := uint16(rowA[x0]) + uint16(rowA[x1]) + uint16(rowB[x0]) + uint16(rowB[x1])
			out[yo*nw+xo] = uint8((sum + 2) / 4)
		}
	}
	return Level{Width: nw, Height: nh, Pix: out}
}
