package search

import (
	"fmt"
	"sort"

	"github.com/hupe1980/metrigo/dataset"
	"github.com/hupe1980/metrigo/internal/queue"
	"github.com/hupe1980/metrigo/metric"
)

// KnnBreadthFirst finds the K nearest neighbors level by level: at each
// level it keeps only the clusters that can still contribute to the K-set,
// judged against a distance threshold guaranteed to cover K instances, and
// defers all leaf scans until no internal cluster remains. It returns the
// same K-set as KnnDepthFirst; only the traversal order differs.
type KnnBreadthFirst[I any, D metric.Number, C Cluster[D, C]] struct {
	K int
}

func (a KnnBreadthFirst[I, D, C]) Name() string {
	return fmt.Sprintf("KnnBreadthFirst(%d)", a.K)
}

// candidate is a cluster with its query bounds: lower is the least possible
// member distance, upper the greatest. saturated marks an upper whose sum
// overflowed the distance type; such a bound is treated as unbounded.
type candidate[D metric.Number, C any] struct {
	cluster   C
	lower     D
	upper     D
	saturated bool
}

func (a KnnBreadthFirst[I, D, C]) Search(data dataset.Dataset[I, D], root C, query I) ([]Hit[D], error) {
	var zero C
	if root == zero || a.K <= 0 {
		return nil, nil
	}

	triangle := data.Metric().ObeysTriangleInequality()

	bounds := func(c C) (candidate[D, C], error) {
		centerDist, err := queryDistance(data, query, c.Center())
		if err != nil {
			return candidate[D, C]{}, err
		}
		// Integer distance types can wrap on the addition; a wrapped sum
		// is strictly below centerDist since the radius is non-negative.
		upper := centerDist + c.Radius()
		return candidate[D, C]{
			cluster:   c,
			lower:     lowerBound(centerDist, c.Radius(), triangle),
			upper:     upper,
			saturated: upper < centerDist,
		}, nil
	}

	rootCand, err := bounds(root)
	if err != nil {
		return nil, err
	}
	layer := []candidate[D, C]{rootCand}

	for {
		internal := false
		for _, cand := range layer {
			if !cand.cluster.IsLeaf() {
				internal = true
				break
			}
		}
		if !internal {
			break
		}

		// Expand internal clusters one level.
		next := make([]candidate[D, C], 0, 2*len(layer))
		for _, cand := range layer {
			if cand.cluster.IsLeaf() {
				next = append(next, cand)
				continue
			}
			for _, child := range cand.cluster.Children() {
				childCand, err := bounds(child)
				if err != nil {
					return nil, err
				}
				next = append(next, childCand)
			}
		}

		layer = pruneLayer(next, a.K, triangle)
	}

	// Finalize: scan the members of the surviving leaves.
	best := queue.NewHits[D](a.K)
	for _, cand := range layer {
		for _, i := range cand.cluster.Indices() {
			d, err := queryDistance(data, query, i)
			if err != nil {
				return nil, err
			}
			best.Push(i, d)
		}
	}

	out := make([]Hit[D], 0, best.Len())
	for _, h := range best.Sorted() {
		out = append(out, Hit[D]{Index: h.Index, Distance: h.Distance})
	}
	return out, nil
}

// pruneLayer drops every candidate whose lower bound exceeds a threshold
// distance that is guaranteed to cover at least k instances: the smallest
// upper bound tau such that the clusters with upper <= tau hold k members.
// Any true k-nearest neighbor lies within tau, so dropped clusters cannot
// contribute. Saturated upper bounds sort after every finite one; when the
// covering bound is itself saturated, tau is unbounded and nothing is
// dropped. Without the triangle inequality nothing is dropped either.
func pruneLayer[D metric.Number, C Cluster[D, C]](layer []candidate[D, C], k int, triangle bool) []candidate[D, C] {
	if !triangle || len(layer) <= 1 {
		return layer
	}

	uppers := make([]candidate[D, C], len(layer))
	copy(uppers, layer)
	sort.Slice(uppers, func(i, j int) bool {
		if uppers[i].saturated != uppers[j].saturated {
			return uppers[j].saturated
		}
		return uppers[i].upper < uppers[j].upper
	})

	var covered int
	tau := uppers[len(uppers)-1]
	for _, cand := range uppers {
		covered += cand.cluster.Cardinality()
		if covered >= k {
			tau = cand
			break
		}
	}
	if tau.saturated {
		return layer
	}

	kept := layer[:0]
	for _, cand := range layer {
		if cand.lower <= tau.upper {
			kept = append(kept, cand)
		}
	}
	return kept
}
