package candidate

// NMS applies spatial non-maximum suppression with Chebyshev radius
// radius: candidates are considered in descending priority (Less) and
// a candidate is accepted iff no already-accepted candidate lies
// within radius in (x, y) while sharing the same angle bucket
// (AngleIdx). Angle is never suppressed across buckets — only spatial
// proximity within the same angle is (spec.md §4.5).
func NMS(cands []Candidate, radius int) []Candidate {
	return nms(cands, radius, true)
}

// NMSAcrossAngles applies the same spatial suppression as NMS but
// ignores AngleIdx entirely: a candidate at one angle can suppress a
// spatially-close candidate at another. Used for the coarse search's
// global merge across per-angle candidate lists (spec.md §4.6: "apply
// global top-K and NMS (across angles, NMS is spatial only; angle is
// not suppressed)") and for the final cross-seed merge, where the same
// physical location found at two nearby angles must collapse to one
// result rather than appear twice in the top-K.
func NMSAcrossAngles(cands []Candidate, radius int) []Candidate {
	return nms(cands, radius, false)
}

func nms(cands []Candidate, radius int, sameAngleOnly bool) []Candidate {
	sorted := make([]Candidate, len(cands))
	copy(sorted, cands)
	sortByLess(sorted)

	accepted := make([]Candidate, 0, len(sorted))
	for _, c := range sorted {
		suppressed := false
		for _, a := range accepted {
			if sameAngleOnly && a.AngleIdx != c.AngleIdx {
				continue
			}
			if chebyshev(a.X-c.X, a.Y-c.Y) <= radius {
				suppressed = true
				break
			}
		}
		if !suppressed {
			accepted = append(accepted, c)
		}
	}
	return accepted
}

func chebyshev(dx, dy int) int {
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// LevelRadius scales a level-0 NMS radius down to pyramid level lvl
// (resolved Open Question, see DESIGN.md): radius shrinks by 2^lvl,
// floored at 1, keeping the same real-world suppression distance at
// every level since the image itself is half the size per level.
func LevelRadius(radius0 int, lvl int) int {
	r := radius0
	for i := 0; i < lvl; i++ {
		r /= 2
	}
	if r < 1 {
		r = 1
	}
	return r
}

func sortByLess(c []Candidate) {
	// simple insertion sort is fine: NMS candidate lists are small
	// (top-K/beam-width bounded), and this keeps the ordering
	// comparison identical to Less used elsewhere without pulling in
	// sort.Slice's closure overhead in a hot loop.
	for i := 1; i < len(c); i++ {
		j := i
		for j > 0 && Less(c[j], c[j-1]) {
			c[j], c[j-1] = c[j-1], c[j]
			j--
		}
	}
}
