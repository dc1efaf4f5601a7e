// Package queue provides the heap structures used by the search algorithms:
// a min-ordered frontier for nearest-subtree-first traversal and a bounded
// max-heap that keeps the k best hits seen so far.
package queue

import "github.com/hupe1980/metrigo/metric"

// Item is an entry of a Frontier: an arbitrary payload with a priority.
type Item[P any, D metric.Number] struct {
	Payload  P
	Priority D
}

// Frontier is a min-heap of items ordered by ascending priority. Value-based
// storage, no pointer indirection.
type Frontier[P any, D metric.Number] struct {
	items []Item[P, D]
}

// NewFrontier initializes a frontier with the given capacity hint.
func NewFrontier[P any, D metric.Number](capacity int) *Frontier[P, D] {
	return &Frontier[P, D]{items: make([]Item[P, D], 0, capacity)}
}

// Len returns the number of queued items.
func (f *Frontier[P, D]) Len() int { return len(f.items) }

// Push inserts an item while maintaining the heap invariant.
func (f *Frontier[P, D]) Push(payload P, priority D) {
	f.items = append(f.items, Item[P, D]{Payload: payload, Priority: priority})
	i := len(f.items) - 1
	for i > 0 {
		p := (i - 1) / 2
		if f.items[p].Priority <= f.items[i].Priority {
			return
		}
		f.items[i], f.items[p] = f.items[p], f.items[i]
		i = p
	}
}

// Pop removes and returns the item with the smallest priority.
func (f *Frontier[P, D]) Pop() (Item[P, D], bool) {
	n := len(f.items)
	if n == 0 {
		return Item[P, D]{}, false
	}
	root := f.items[0]
	last := f.items[n-1]
	f.items[n-1] = Item[P, D]{}
	f.items = f.items[:n-1]
	if n-1 > 0 {
		f.items[0] = last
		f.siftDown(0)
	}
	return root, true
}

func (f *Frontier[P, D]) siftDown(i int) {
	n := len(f.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		if r := l + 1; r < n && f.items[r].Priority < f.items[l].Priority {
			best = r
		}
		if f.items[i].Priority <= f.items[best].Priority {
			return
		}
		f.items[i], f.items[best] = f.items[best], f.items[i]
		i = best
	}
}

// Hit is an entry of a Hits collection: a dataset index and its distance to
// the query.
type Hit[D metric.Number] struct {
	Index    int
	Distance D
}

// Hits is a bounded max-heap keeping the k best (smallest-distance) hits.
// Ties on distance are broken toward smaller indices so results are
// deterministic.
type Hits[D metric.Number] struct {
	k     int
	items []Hit[D]
}

// NewHits initializes a bounded hit collection of capacity k.
func NewHits[D metric.Number](k int) *Hits[D] {
	return &Hits[D]{k: k, items: make([]Hit[D], 0, max(k, 0))}
}

// Len returns the number of collected hits.
func (h *Hits[D]) Len() int { return len(h.items) }

// Full reports whether the collection holds k hits.
func (h *Hits[D]) Full() bool { return len(h.items) >= h.k }

// Threshold returns the current worst kept distance. Only meaningful when
// the collection is non-empty.
func (h *Hits[D]) Threshold() D {
	if len(h.items) == 0 {
		var zero D
		return zero
	}
	return h.items[0].Distance
}

// greater orders the heap: the root is the worst kept hit, where worse means
// larger distance, or equal distance with larger index.
func (h *Hits[D]) greater(i, j int) bool {
	if h.items[i].Distance != h.items[j].Distance {
		return h.items[i].Distance > h.items[j].Distance
	}
	return h.items[i].Index > h.items[j].Index
}

// Push offers a hit. When the collection is full, the hit replaces the
// current worst entry only if it is better.
func (h *Hits[D]) Push(index int, distance D) {
	if h.k <= 0 {
		return
	}
	if len(h.items) < h.k {
		h.items = append(h.items, Hit[D]{Index: index, Distance: distance})
		i := len(h.items) - 1
		for i > 0 {
			p := (i - 1) / 2
			if !h.greater(i, p) {
				break
			}
			h.items[i], h.items[p] = h.items[p], h.items[i]
			i = p
		}
		return
	}

	worst := h.items[0]
	if distance > worst.Distance || (distance == worst.Distance && index >= worst.Index) {
		return
	}
	h.items[0] = Hit[D]{Index: index, Distance: distance}
	h.siftDown(0)
}

func (h *Hits[D]) siftDown(i int) {
	n := len(h.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		if r := l + 1; r < n && h.greater(r, l) {
			best = r
		}
		if !h.greater(best, i) {
			return
		}
		h.items[i], h.items[best] = h.items[best], h.items[i]
		i = best
	}
}

// Sorted drains the collection and returns the hits ordered by ascending
// (distance, index).
func (h *Hits[D]) Sorted() []Hit[D] {
	out := make([]Hit[D], len(h.items))
	for i := len(h.items) - 1; i >= 0; i-- {
		out[i] = h.items[0]
		last := h.items[len(h.items)-1]
		h.items = h.items[:len(h.items)-1]
		if len(h.items) > 0 {
			h.items[0] = last
			h.siftDown(0)
		}
	}
	return out
}
