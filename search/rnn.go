package search

import (
	"fmt"

	"github.com/hupe1980/metrigo/dataset"
	"github.com/hupe1980/metrigo/metric"
)

// RnnClustered is tree-accelerated range search: it returns every instance
// within Radius of the query. There is no upper bound on the number of hits.
type RnnClustered[I any, D metric.Number, C Cluster[D, C]] struct {
	Radius D
}

func (a RnnClustered[I, D, C]) Name() string {
	return fmt.Sprintf("RnnClustered(%v)", a.Radius)
}

func (a RnnClustered[I, D, C]) Search(data dataset.Dataset[I, D], root C, query I) ([]Hit[D], error) {
	var zero C
	if root == zero {
		return nil, nil
	}

	triangle := data.Metric().ObeysTriangleInequality()
	var hits []Hit[D]

	var visit func(c C) error
	visit = func(c C) error {
		centerDist, err := queryDistance(data, query, c.Center())
		if err != nil {
			return err
		}
		if lowerBound(centerDist, c.Radius(), triangle) > a.Radius {
			return nil
		}
		if c.IsLeaf() {
			for _, i := range c.Indices() {
				d := centerDist
				if i != c.Center() {
					if d, err = queryDistance(data, query, i); err != nil {
						return err
					}
				}
				if d <= a.Radius {
					hits = append(hits, Hit[D]{Index: i, Distance: d})
				}
			}
			return nil
		}
		for _, child := range c.Children() {
			if err := visit(child); err != nil {
				return err
			}
		}
		return nil
	}

	if err := visit(root); err != nil {
		return nil, err
	}
	sortHits(hits)
	return hits, nil
}
