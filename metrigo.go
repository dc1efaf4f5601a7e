package metrigo

import (
	"fmt"
	"os"

	"github.com/hupe1980/metrigo/cluster"
	"github.com/hupe1980/metrigo/dataset"
	"github.com/hupe1980/metrigo/metric"
	"github.com/hupe1980/metrigo/search"
)

// DefaultDepthIncrement bounds how much deeper a single partitioning pass
// may grow the tree. Deepening in increments keeps recursion depth bounded
// on skewed trees; the final tree shape is the same as recursing all the
// way down in one pass.
const DefaultDepthIncrement = 128

// New creates a builder for an index over items using the given metric.
//
// The builder is immutable: each method returns an updated copy, so partial
// configurations can be shared safely.
//
//	ix, err := metrigo.New[string, uint32](seqs, metric.NewLevenshtein()).
//	    Seed(42).
//	    Build()
func New[I any, D metric.Number](items []I, m metric.Metric[I, D]) Builder[I, D] {
	return Builder[I, D]{
		items:          items,
		m:              m,
		depthIncrement: DefaultDepthIncrement,
	}
}

// Builder configures and builds an Index.
type Builder[I any, D metric.Number] struct {
	items          []I
	m              metric.Metric[I, D]
	seed           uint64
	depthIncrement int
	cache          *bool
	criterion      cluster.Criterion[D]
	treeFile       string
	logger         *Logger
}

// Seed sets the sampling seed. The same seed always produces the same tree.
func (b Builder[I, D]) Seed(seed uint64) Builder[I, D] {
	b.seed = seed
	return b
}

// DepthIncrement sets how much deeper each partitioning pass may go.
// Default: DefaultDepthIncrement.
func (b Builder[I, D]) DepthIncrement(n int) Builder[I, D] {
	b.depthIncrement = n
	return b
}

// Cache overrides the distance-cache default (the metric's IsExpensive
// hint).
func (b Builder[I, D]) Cache(enabled bool) Builder[I, D] {
	b.cache = &enabled
	return b
}

// Criterion adds a stopping criterion: clusters for which it returns false
// stay leaves. Without one the tree is partitioned until every leaf is a
// singleton.
func (b Builder[I, D]) Criterion(c cluster.Criterion[D]) Builder[I, D] {
	b.criterion = c
	return b
}

// TreeFile resumes the tree from path when the file exists, instead of
// rebuilding; after a fresh build the tree is written there.
func (b Builder[I, D]) TreeFile(path string) Builder[I, D] {
	b.treeFile = path
	return b
}

// Logger sets the logger. Default: no output.
func (b Builder[I, D]) Logger(l *Logger) Builder[I, D] {
	b.logger = l
	return b
}

// Build constructs the dataset and partitions the tree.
func (b Builder[I, D]) Build() (*Index[I, D], error) {
	logger := b.logger
	if logger == nil {
		logger = NoopLogger()
	}

	var optFns []func(o *dataset.Options)
	if b.cache != nil {
		enabled := *b.cache
		optFns = append(optFns, func(o *dataset.Options) { o.Cache = enabled })
	}
	data, err := dataset.NewFlatSlice(b.items, b.m, optFns...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConstruction, err)
	}
	logger = logger.WithDataset(data.Cardinality(), b.m.Name())

	if b.treeFile != "" {
		if _, statErr := os.Stat(b.treeFile); statErr == nil {
			logger.Info("resuming tree", "path", b.treeFile)
			root, err := cluster.Load[D](b.treeFile)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
			}
			if root.Cardinality() != data.Cardinality() {
				return nil, fmt.Errorf("%w: tree file covers %d instances, dataset has %d",
					ErrConstruction, root.Cardinality(), data.Cardinality())
			}
			return &Index[I, D]{data: data, root: root, seed: b.seed, logger: logger}, nil
		}
	}

	root, err := b.partition(data, logger)
	if err != nil {
		return nil, err
	}

	if b.treeFile != "" {
		logger.Info("writing tree", "path", b.treeFile)
		if err := root.Save(b.treeFile); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
	}
	return &Index[I, D]{data: data, root: root, seed: b.seed, logger: logger}, nil
}

func (b Builder[I, D]) partition(data *dataset.FlatSlice[I, D], logger *Logger) (*cluster.Ball[D], error) {
	criteria := func(target int) cluster.Criterion[D] {
		return func(c *cluster.Ball[D]) bool {
			if c.Depth() >= target {
				return false
			}
			return b.criterion == nil || b.criterion(c)
		}
	}

	root, err := cluster.New[D](data, data.Indices(), 0, b.seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConstruction, err)
	}
	if err := root.Partition(data, criteria(1), b.seed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConstruction, err)
	}

	// Deepen in bounded increments until no leaf splits anymore. Leaves
	// of identical instances cannot split, so progress is measured by
	// leaf count rather than by reaching all-singletons.
	target := 1
	leaves := len(root.Leaves())
	for {
		target += b.depthIncrement
		if err := root.PartitionFurther(data, criteria(target), b.seed); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConstruction, err)
		}
		grown := len(root.Leaves())
		if grown == leaves {
			break
		}
		leaves = grown
	}

	logger.WithTree(leaves, root.MaxDepth()).Info("built tree")
	return root, nil
}

// Index combines a dataset with its partition tree and exposes the search
// surface. Safe for concurrent use; all operations are read-only.
type Index[I any, D metric.Number] struct {
	data   *dataset.FlatSlice[I, D]
	root   *cluster.Ball[D]
	seed   uint64
	logger *Logger
}

// Data returns the backing dataset.
func (ix *Index[I, D]) Data() dataset.Dataset[I, D] { return ix.data }

// Tree returns the root of the partition tree.
func (ix *Index[I, D]) Tree() *cluster.Ball[D] { return ix.root }

// RangeSearch returns every instance within radius of the query.
func (ix *Index[I, D]) RangeSearch(query I, radius D) ([]search.Hit[D], error) {
	return search.RnnClustered[I, D, *cluster.Ball[D]]{Radius: radius}.Search(ix.data, ix.root, query)
}

// KNNSearch returns the k nearest instances to the query.
func (ix *Index[I, D]) KNNSearch(query I, k int) ([]search.Hit[D], error) {
	return search.KnnDepthFirst[I, D, *cluster.Ball[D]]{K: k}.Search(ix.data, ix.root, query)
}

// Search runs an arbitrary algorithm for a single query.
func (ix *Index[I, D]) Search(alg search.Algorithm[I, D, *cluster.Ball[D]], query I) ([]search.Hit[D], error) {
	return alg.Search(ix.data, ix.root, query)
}

// BatchSearch runs an arbitrary algorithm over many queries in parallel.
func (ix *Index[I, D]) BatchSearch(alg search.Algorithm[I, D, *cluster.Ball[D]], queries []I) ([][]search.Hit[D], error) {
	return search.BatchSearch(alg, ix.data, ix.root, queries)
}
