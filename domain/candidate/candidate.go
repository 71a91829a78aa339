// Package candidate implements the fixed-capacity top-K heap and
// spatial non-maximum suppression shared by the coarse search and the
// refinement pipeline. There is no teacher analog for a bounded
// top-K/NMS structure; it is built directly against spec.md §3/§4.5 as
// a small hand-rolled binary min-heap rather than an implementation of
// stdlib container/heap's interface (see DESIGN.md for why no pack
// dependency fits this concern).
package candidate

// Candidate is a scored placement: top-left template position (x, y)
// at some pyramid level, an angle index into that level's AngleGrid
// (0 when rotation is disabled), and a score.
type Candidate struct {
	X, Y     int
	Level    int
	AngleIdx int
	Score    float32
}

// Less implements the deterministic total order from spec.md §3: ties
// are broken lexicographically by (-score, y, x, angle_idx), so higher
// score wins, and among equal scores the topmost-leftmost, lowest
// angle index wins. Less(a, b) reports whether a strictly precedes b
// in this order (a is "better" or "first").
func Less(a, b Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	if a.X != b.X {
		return a.X < b.X
	}
	return a.AngleIdx < b.AngleIdx
}
