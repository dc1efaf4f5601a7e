package search

import (
	"fmt"

	"github.com/hupe1980/metrigo/dataset"
	"github.com/hupe1980/metrigo/internal/queue"
	"github.com/hupe1980/metrigo/metric"
)

// KnnDepthFirst finds the K nearest neighbors by visiting clusters in order
// of ascending lower-bound distance to the query, scanning leaves into a
// bounded best-K collection and pruning every subtree whose lower bound
// exceeds the current K-th best distance.
type KnnDepthFirst[I any, D metric.Number, C Cluster[D, C]] struct {
	K int
}

func (a KnnDepthFirst[I, D, C]) Name() string {
	return fmt.Sprintf("KnnDepthFirst(%d)", a.K)
}

func (a KnnDepthFirst[I, D, C]) Search(data dataset.Dataset[I, D], root C, query I) ([]Hit[D], error) {
	var zero C
	if root == zero || a.K <= 0 {
		return nil, nil
	}

	triangle := data.Metric().ObeysTriangleInequality()
	best := queue.NewHits[D](a.K)
	frontier := queue.NewFrontier[C, D](64)

	push := func(c C) error {
		centerDist, err := queryDistance(data, query, c.Center())
		if err != nil {
			return err
		}
		frontier.Push(c, lowerBound(centerDist, c.Radius(), triangle))
		return nil
	}
	if err := push(root); err != nil {
		return nil, err
	}

	for {
		item, ok := frontier.Pop()
		if !ok {
			break
		}
		// The frontier is ordered by lower bound, so once the nearest
		// unvisited subtree cannot beat the K-th best, nothing can.
		if best.Full() && item.Priority > best.Threshold() {
			break
		}

		c := item.Payload
		if c.IsLeaf() {
			for _, i := range c.Indices() {
				d, err := queryDistance(data, query, i)
				if err != nil {
					return nil, err
				}
				best.Push(i, d)
			}
			continue
		}
		for _, child := range c.Children() {
			if err := push(child); err != nil {
				return nil, err
			}
		}
	}

	out := make([]Hit[D], 0, best.Len())
	for _, h := range best.Sorted() {
		out = append(out, Hit[D]{Index: h.Index, Distance: h.Distance})
	}
	return out, nil
}
