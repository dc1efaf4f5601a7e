package dataset

import (
	"errors"

	"github.com/hupe1980/metrigo/metric"
)

// Compile-time check to ensure FlatSlice satisfies the Dataset interface.
var _ Dataset[string, uint32] = (*FlatSlice[string, uint32])(nil)

// ErrEmptyDataset is returned when constructing a dataset with no instances.
var ErrEmptyDataset = errors.New("dataset must contain at least one instance")

// Options contains configuration options for a FlatSlice.
type Options struct {
	// Cache enables the internal distance cache. Defaults to the
	// metric's IsExpensive hint.
	Cache bool
}

// FlatSlice is an in-memory Dataset backed by a plain slice of instances.
type FlatSlice[I any, D metric.Number] struct {
	items []I
	m     metric.Metric[I, D]
	cache *Cache[D] // nil when caching is disabled
}

// NewFlatSlice creates a Dataset over items using the given metric.
func NewFlatSlice[I any, D metric.Number](items []I, m metric.Metric[I, D], optFns ...func(o *Options)) (*FlatSlice[I, D], error) {
	if len(items) == 0 {
		return nil, ErrEmptyDataset
	}

	opts := Options{Cache: m.IsExpensive()}
	for _, fn := range optFns {
		fn(&opts)
	}

	f := &FlatSlice[I, D]{items: items, m: m}
	if opts.Cache {
		f.cache = NewCache[D](m.HasSymmetry())
	}
	return f, nil
}

// Metric returns the distance function used by this dataset.
func (f *FlatSlice[I, D]) Metric() metric.Metric[I, D] { return f.m }

// Cardinality returns the number of instances.
func (f *FlatSlice[I, D]) Cardinality() int { return len(f.items) }

// Indices returns all valid indices.
func (f *FlatSlice[I, D]) Indices() []int {
	out := make([]int, len(f.items))
	for i := range out {
		out[i] = i
	}
	return out
}

// Instance returns the instance at index i.
func (f *FlatSlice[I, D]) Instance(i int) (I, error) { return f.items[i], nil }

// Distance returns the distance between the instances at i and j.
func (f *FlatSlice[I, D]) Distance(i, j int) (D, error) {
	if i == j && f.m.HasIdentity() {
		var zero D
		return zero, nil
	}
	if f.cache != nil {
		if d, ok := f.cache.Get(i, j); ok {
			return d, nil
		}
	}
	d := f.m.Distance(f.items[i], f.items[j])
	if f.cache != nil {
		f.cache.Put(i, j, d)
	}
	return d, nil
}

// BatchDistance returns the distances from instance i to every instance in js.
func (f *FlatSlice[I, D]) BatchDistance(i int, js []int) ([]D, error) {
	return BatchDistance[I, D](f, i, js)
}

// Pairwise returns the distance matrix over the given indices.
func (f *FlatSlice[I, D]) Pairwise(indices []int) ([][]D, error) {
	return Pairwise[I, D](f, indices)
}

// ChooseUnique returns up to n distinct indices sampled from candidates.
func (f *FlatSlice[I, D]) ChooseUnique(candidates []int, n int, seed uint64) []int {
	return ChooseUnique(candidates, n, seed)
}

// CacheLen returns the number of cached distances, or 0 when caching is
// disabled.
func (f *FlatSlice[I, D]) CacheLen() int {
	if f.cache == nil {
		return 0
	}
	return f.cache.Len()
}

// ClearCache empties the distance cache if one is configured.
func (f *FlatSlice[I, D]) ClearCache() {
	if f.cache != nil {
		f.cache.Clear()
	}
}
