// Package dataset defines the indexed instance collection that trees are
// built over and searches run against. A Dataset pairs a sequence of
// instances with the metric used to compare them and optionally caches
// distances between index pairs.
package dataset

import "github.com/hupe1980/metrigo/metric"

// Dataset is an indexed, immutable collection of instances. Indices are
// stable for the lifetime of the value: they are never renumbered, so tree
// nodes and search hits can refer to instances by index alone.
//
// Implementations must be safe for concurrent readers.
type Dataset[I any, D metric.Number] interface {
	// Metric returns the distance function used by this dataset.
	Metric() metric.Metric[I, D]

	// Cardinality returns the number of instances.
	Cardinality() int

	// Indices returns all valid indices, 0 through Cardinality()-1.
	Indices() []int

	// Instance returns the instance at index i. The error is only
	// non-nil for stores that materialize instances lazily, such as a
	// codec-backed dataset failing to decode.
	Instance(i int) (I, error)

	// Distance returns the distance between the instances at i and j,
	// consulting the dataset's cache when one is configured.
	Distance(i, j int) (D, error)

	// BatchDistance returns the distances from instance i to every
	// instance in js, in order.
	BatchDistance(i int, js []int) ([]D, error)

	// Pairwise returns the full distance matrix over the given indices:
	// result[a][b] is the distance between indices[a] and indices[b].
	Pairwise(indices []int) ([][]D, error)

	// ChooseUnique returns up to n distinct indices sampled from the
	// candidates, deterministically for a given seed.
	ChooseUnique(candidates []int, n int, seed uint64) []int
}
