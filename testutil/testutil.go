package testutil

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/hupe1980/metrigo/metric"
	"github.com/hupe1980/metrigo/search"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// RandomString returns a random string over alphabet with a length in
// [minLen, maxLen].
func (r *RNG) RandomString(minLen, maxLen int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.randomString(minLen, maxLen, alphabet)
}

// RandomStrings returns n random strings over alphabet with lengths in
// [minLen, maxLen].
func (r *RNG) RandomStrings(n, minLen, maxLen int, alphabet string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, n)
	for i := range out {
		out[i] = r.randomString(minLen, maxLen, alphabet)
	}
	return out
}

func (r *RNG) randomString(minLen, maxLen int, alphabet string) string {
	length := minLen
	if maxLen > minLen {
		length += r.rand.Intn(maxLen - minLen + 1)
	}
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = alphabet[r.rand.Intn(len(alphabet))]
	}
	return string(buf)
}

// MutateString applies edits random single-character substitutions,
// insertions or deletions to s.
func (r *RNG) MutateString(s string, edits int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf := []byte(s)
	for e := 0; e < edits; e++ {
		switch op := r.rand.Intn(3); {
		case op == 0 && len(buf) > 0: // substitute
			buf[r.rand.Intn(len(buf))] = alphabet[r.rand.Intn(len(alphabet))]
		case op == 1: // insert
			pos := r.rand.Intn(len(buf) + 1)
			buf = append(buf[:pos], append([]byte{alphabet[r.rand.Intn(len(alphabet))]}, buf[pos:]...)...)
		case op == 2 && len(buf) > 0: // delete
			pos := r.rand.Intn(len(buf))
			buf = append(buf[:pos], buf[pos+1:]...)
		}
	}
	return string(buf)
}

// UniformVectors returns n vectors of the given dimension with components
// in [0, 1).
func (r *RNG) UniformVectors(n, dim int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([][]float32, n)
	for i := range out {
		v := make([]float32, dim)
		for j := range v {
			v[j] = r.rand.Float32()
		}
		out[i] = v
	}
	return out
}

// ExactRange computes range search results by brute force: every instance
// within radius of the query, sorted by (distance, index). Zero hits come
// back as a nil slice, the same shape the tree algorithms return.
func ExactRange[I any, D metric.Number](items []I, m metric.Metric[I, D], query I, radius D) []search.Hit[D] {
	var hits []search.Hit[D]
	for i, item := range items {
		d := m.Distance(query, item)
		if d <= radius {
			hits = append(hits, search.Hit[D]{Index: i, Distance: d})
		}
	}
	sortHits(hits)
	return hits
}

// ExactKNN computes the k nearest neighbors by brute force, sorted by
// (distance, index). Ties at the kth distance resolve to the smallest
// index, matching the tree-based algorithms.
func ExactKNN[I any, D metric.Number](items []I, m metric.Metric[I, D], query I, k int) []search.Hit[D] {
	hits := make([]search.Hit[D], 0, len(items))
	for i, item := range items {
		hits = append(hits, search.Hit[D]{Index: i, Distance: m.Distance(query, item)})
	}
	sortHits(hits)
	if k < len(hits) {
		hits = hits[:k]
	}
	if len(hits) == 0 {
		return nil
	}
	return hits
}

func sortHits[D metric.Number](hits []search.Hit[D]) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Index < hits[j].Index
	})
}
