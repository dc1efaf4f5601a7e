package search

import (
	"fmt"

	"github.com/hupe1980/metrigo/dataset"
	"github.com/hupe1980/metrigo/metric"
)

// KnnRepeatedRnn approximates K-nearest-neighbor search with repeated range
// searches: it starts from a small radius derived from the tree and
// multiplies it by Multiplier until at least K hits are found, then keeps
// the K closest. Each round is a single coarse tree traversal, which can be
// cheaper than the finer-grained pruning of the other strategies.
type KnnRepeatedRnn[I any, D metric.Number, C Cluster[D, C]] struct {
	K int

	// Multiplier is the per-round radius growth factor and must exceed 1.
	// Values at or below 1, including the zero value, fall back to 2.
	Multiplier D
}

func (a KnnRepeatedRnn[I, D, C]) Name() string {
	return fmt.Sprintf("KnnRepeatedRnn(%d, %v)", a.K, a.Multiplier)
}

func (a KnnRepeatedRnn[I, D, C]) Search(data dataset.Dataset[I, D], root C, query I) ([]Hit[D], error) {
	var zero C
	if root == zero || a.K <= 0 {
		return nil, nil
	}

	multiplier := a.Multiplier
	if multiplier <= 1 {
		multiplier = 2
	}

	// Start from the mean spacing implied by the root ball; for discrete
	// distance types the smallest useful radius is one.
	radius := root.Radius() / D(root.Cardinality())
	if radius <= 0 {
		radius = 1
	}

	for {
		hits, err := RnnClustered[I, D, C]{Radius: radius}.Search(data, root, query)
		if err != nil {
			return nil, err
		}
		if len(hits) >= a.K || len(hits) >= root.Cardinality() {
			// Over-collection is expected; trim to the K closest.
			if len(hits) > a.K {
				hits = hits[:a.K]
			}
			return hits, nil
		}
		next := radius * multiplier
		if next <= radius {
			// The radius overflowed its distance type; fall back to
			// scanning every member.
			return a.scanAll(data, root, query)
		}
		radius = next
	}
}

func (a KnnRepeatedRnn[I, D, C]) scanAll(data dataset.Dataset[I, D], root C, query I) ([]Hit[D], error) {
	hits := make([]Hit[D], 0, root.Cardinality())
	for _, i := range root.Indices() {
		d, err := queryDistance(data, query, i)
		if err != nil {
			return nil, err
		}
		hits = append(hits, Hit[D]{Index: i, Distance: d})
	}
	sortHits(hits)
	if len(hits) > a.K {
		hits = hits[:a.K]
	}
	return hits, nil
}
