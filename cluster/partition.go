package cluster

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/metrigo/metric"
)

// Number is the distance-value constraint, re-exported for convenience.
type Number = metric.Number

// PartitionDataset is the view of a dataset the partitioner needs: purely
// index-based distance queries, independent of the instance type. Every
// dataset.Dataset satisfies it.
type PartitionDataset[D Number] interface {
	Cardinality() int
	Distance(i, j int) (D, error)
	BatchDistance(i int, js []int) ([]D, error)
	Pairwise(indices []int) ([][]D, error)
	ChooseUnique(candidates []int, n int, seed uint64) []int
}

// maxSampleSize bounds the number of instances sampled for center selection.
const maxSampleSize = 100

// parallelSplitThreshold is the cardinality above which the two children of
// a split are built concurrently.
const parallelSplitThreshold = 1 << 12

// Criterion decides whether a cluster should be partitioned further. It is
// consulted before every split; returning false makes the cluster a leaf.
type Criterion[D Number] func(b *Ball[D]) bool

// MaxDepth returns a criterion that partitions clusters shallower than depth.
func MaxDepth[D Number](depth int) Criterion[D] {
	return func(b *Ball[D]) bool { return b.depth < depth }
}

// MinCardinality returns a criterion that partitions clusters with at least
// n members.
func MinCardinality[D Number](n int) Criterion[D] {
	return func(b *Ball[D]) bool { return b.cardinality >= n }
}

// New creates a single unpartitioned cluster over the given indices: it
// selects an approximate geometric-median center from a bounded sample and
// computes the covering radius. The same seed always produces the same
// cluster.
//
// Returns ErrEmptyIndices if indices is empty.
func New[D Number](data PartitionDataset[D], indices []int, depth int, seed uint64) (*Ball[D], error) {
	if len(indices) == 0 {
		return nil, ErrEmptyIndices
	}

	b := &Ball[D]{
		indices:     append([]int(nil), indices...),
		depth:       depth,
		cardinality: len(indices),
	}

	if len(indices) == 1 {
		b.center = indices[0]
		b.radialIndex = indices[0]
		return b, nil
	}

	center, err := selectCenter(data, indices, seed)
	if err != nil {
		return nil, err
	}
	b.center = center

	dists, err := data.BatchDistance(center, indices)
	if err != nil {
		return nil, err
	}
	b.radialIndex = indices[0]
	for n, d := range dists {
		if d > b.radius {
			b.radius = d
			b.radialIndex = indices[n]
		}
	}
	return b, nil
}

// selectCenter approximates the geometric median: it samples about
// sqrt(cardinality) members and returns the sample with the smallest sum of
// distances to the other samples.
func selectCenter[D Number](data PartitionDataset[D], indices []int, seed uint64) (int, error) {
	n := int(math.Sqrt(float64(len(indices))))
	if n < 1 {
		n = 1
	}
	if n > maxSampleSize {
		n = maxSampleSize
	}

	samples := data.ChooseUnique(indices, n, seed)
	if len(samples) == 1 {
		return samples[0], nil
	}

	matrix, err := data.Pairwise(samples)
	if err != nil {
		return 0, err
	}

	center := samples[0]
	best := math.Inf(1)
	for r, row := range matrix {
		var sum float64
		for _, d := range row {
			sum += float64(d)
		}
		if sum < best {
			best = sum
			center = samples[r]
		}
	}
	return center, nil
}

// Partition recursively splits the cluster while criteria returns true and
// the cluster remains splittable. A cluster with a single member, or whose
// members are all identical (radius zero), stays a leaf. The two sides of a
// split are built concurrently for large clusters; they touch disjoint index
// sets and only read shared state.
func (b *Ball[D]) Partition(data PartitionDataset[D], criteria Criterion[D], seed uint64) error {
	if b.cardinality < 2 || b.radius <= 0 || !criteria(b) {
		return nil
	}

	leftIndices, rightIndices, err := b.split(data)
	if err != nil {
		return err
	}

	var left, right *Ball[D]
	build := func(indices []int, side uint64, out **Ball[D]) error {
		childSeed := childSeed(seed, b.depth, side)
		child, err := New(data, indices, b.depth+1, childSeed)
		if err != nil {
			return err
		}
		if err := child.Partition(data, criteria, childSeed); err != nil {
			return err
		}
		*out = child
		return nil
	}

	if b.cardinality >= parallelSplitThreshold {
		var g errgroup.Group
		g.Go(func() error { return build(leftIndices, 0, &left) })
		g.Go(func() error { return build(rightIndices, 1, &right) })
		if err := g.Wait(); err != nil {
			return err
		}
	} else {
		if err := build(leftIndices, 0, &left); err != nil {
			return err
		}
		if err := build(rightIndices, 1, &right); err != nil {
			return err
		}
	}

	b.children = []*Ball[D]{left, right}
	b.indices = nil // members now live in the children
	return nil
}

// PartitionFurther re-partitions only the leaves that still satisfy the
// criterion, leaving all ancestors untouched. Callers use it to deepen a
// tree in bounded increments instead of recursing to full depth at once.
func (b *Ball[D]) PartitionFurther(data PartitionDataset[D], criteria Criterion[D], seed uint64) error {
	if b.IsLeaf() {
		return b.Partition(data, criteria, childSeed(seed, b.depth, uint64(b.center)))
	}

	leaves := b.Leaves()
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, leaf := range leaves {
		g.Go(func() error {
			return leaf.Partition(data, criteria, childSeed(seed, leaf.depth, uint64(leaf.center)))
		})
	}
	return g.Wait()
}

// split selects two poles and assigns every member to the closer one. The
// first pole is the member farthest from the center, the second the member
// farthest from the first pole. Ties go to the first pole, which makes
// assignment deterministic.
func (b *Ball[D]) split(data PartitionDataset[D]) (left, right []int, err error) {
	leftPole := b.radialIndex

	fromLeft, err := data.BatchDistance(leftPole, b.indices)
	if err != nil {
		return nil, nil, err
	}
	rightPole := b.indices[0]
	var maxDist D
	for n, d := range fromLeft {
		if d > maxDist {
			maxDist = d
			rightPole = b.indices[n]
		}
	}

	fromRight, err := data.BatchDistance(rightPole, b.indices)
	if err != nil {
		return nil, nil, err
	}

	for n, i := range b.indices {
		if fromLeft[n] <= fromRight[n] {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right, nil
}

// childSeed derives a deterministic seed for one side of a split using a
// splitmix64-style mix.
func childSeed(seed uint64, depth int, side uint64) uint64 {
	x := seed ^ (uint64(depth)+1)*0x9E3779B97F4A7C15 ^ (side+1)*0xBF58476D1CE4E5B9
	x ^= x >> 30
	x *= 0xBF58476D1CE4E5B9
	x ^= x >> 27
	x *= 0x94D049BB133111EB
	return x ^ x>>31
}
