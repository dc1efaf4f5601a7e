// Package search implements the algorithms that traverse a partition tree:
// range search and three k-nearest-neighbor strategies. All of them prune
// subtrees with the triangle-inequality lower bound
//
//	d(query, x) >= d(query, center) - radius
//
// and work over anything satisfying the Cluster view, so they run unmodified
// against both uncompressed Ball trees and compressed SquishyBall trees.
package search

import (
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/metrigo/dataset"
	"github.com/hupe1980/metrigo/metric"
)

// Hit is a single search result: a dataset index and its distance to the
// query.
type Hit[D metric.Number] struct {
	Index    int
	Distance D
}

// Cluster is the tree-node view the algorithms need. The recursive type
// parameter C lets each tree type return children of its own concrete type.
type Cluster[D metric.Number, C any] interface {
	comparable
	Center() int
	Radius() D
	Depth() int
	Cardinality() int
	IsLeaf() bool
	Indices() []int
	Children() []C
}

// Algorithm is the common contract of the search strategies. Search returns
// the hits for one query, sorted by ascending (distance, index). Searching
// an empty tree yields no hits and no error.
type Algorithm[I any, D metric.Number, C Cluster[D, C]] interface {
	// Name returns a short identifier including the parameters, e.g.
	// "KnnDepthFirst(10)".
	Name() string

	// Search runs one query against the tree rooted at root.
	Search(data dataset.Dataset[I, D], root C, query I) ([]Hit[D], error)
}

// BatchSearch runs one query per worker across the batch. Queries are
// independent; results are returned in query order.
func BatchSearch[I any, D metric.Number, C Cluster[D, C]](alg Algorithm[I, D, C], data dataset.Dataset[I, D], root C, queries []I) ([][]Hit[D], error) {
	out := make([][]Hit[D], len(queries))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for q, query := range queries {
		g.Go(func() error {
			hits, err := alg.Search(data, root, query)
			if err != nil {
				return err
			}
			out[q] = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// lowerBound returns the smallest possible distance from the query to any
// member of a cluster with the given center distance and radius. Without the
// triangle inequality no bound is sound, so it degrades to zero and nothing
// is ever pruned.
func lowerBound[D metric.Number](centerDist, radius D, triangle bool) D {
	if !triangle || centerDist <= radius {
		var zero D
		return zero
	}
	return centerDist - radius
}

// queryDistance computes the distance from the query to the instance at
// index i.
func queryDistance[I any, D metric.Number](data dataset.Dataset[I, D], query I, i int) (D, error) {
	inst, err := data.Instance(i)
	if err != nil {
		var zero D
		return zero, err
	}
	return data.Metric().Distance(query, inst), nil
}

// sortHits orders hits by ascending (distance, index) in place.
func sortHits[D metric.Number](hits []Hit[D]) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Index < hits[j].Index
	})
}
