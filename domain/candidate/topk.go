package candidate

import "sort"

// TopK is a fixed-capacity min-heap over Candidate, keyed by score:
// while under capacity every insertion is kept; once full, a new
// candidate replaces the current minimum iff its score strictly
// exceeds it (spec.md §4.5).
type TopK struct {
	cap   int
	items []Candidate
}

// NewTopK constructs a TopK with the given capacity (must be >= 1).
func NewTopK(capacity int) *TopK {
	if capacity < 1 {
		capacity = 1
	}
	return &TopK{cap: capacity, items: make([]Candidate, 0, capacity)}
}

// Insert offers c to the heap.
func (h *TopK) Insert(c Candidate) {
	if len(h.items) < h.cap {
		h.items = append(h.items, c)
		h.up(len(h.items) - 1)
		return
	}
	if c.Score > h.items[0].Score {
		h.items[0] = c
		h.down(0)
	}
}

// Len returns the number of candidates currently held.
func (h *TopK) Len() int { return len(h.items) }

// Reset empties h for reuse, growing its backing capacity if needed.
// Used by HeapPool to recycle heaps across scan calls.
func (h *TopK) Reset(capacity int) {
	if capacity < 1 {
		capacity = 1
	}
	h.cap = capacity
	if cap(h.items) < capacity {
		h.items = make([]Candidate, 0, capacity)
	} else {
		h.items = h.items[:0]
	}
}

// Sorted returns all held candidates ordered by the deterministic
// total order (Less), best first. The heap itself is left unmodified.
func (h *TopK) Sorted() []Candidate {
	out := make([]Candidate, len(h.items))
	copy(out, h.items)
	sort.Slice(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out
}

// min-heap over Score (ascending, so items[0] is always the worst
// currently-held candidate).
func (h *TopK) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[parent].Score <= h.items[i].Score {
			break
		}
		h.items[parent], h.items[i] = h.items[i], h.items[parent]
		i = parent
	}
}

func (h *TopK) down(i int) {
	n := len(h.items)
	for {
		l, r := 2*i+1, 2*i+2
		smallest := i
		if l < n && h.items[l].Score < h.items[smallest].Score {
			smallest = l
		}
		if r < n && h.items[r].Score < h.items[smallest].Score {
			smallest = r
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
