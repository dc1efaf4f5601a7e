// Package squish transforms a partition tree plus its backing dataset into a
// compressed, directly searchable form: a SquishyBall tree whose instances
// live in a CodecData store as small diffs against reference instances. The
// tree shape, centers and radii are preserved, so every search algorithm
// runs unmodified over the compressed pair and returns the same hits.
package squish

import (
	"fmt"

	"github.com/hupe1980/metrigo/metric"
)

// Number is the distance-value constraint, re-exported for convenience.
type Number = metric.Number

// SquishyBall structurally mirrors a cluster.Ball: same member indices, same
// center, radius and depth. It additionally records, per node, the reference
// index its center is encoded against. It owns no instance data and is never
// mutated after construction.
type SquishyBall[D Number] struct {
	indices     []int // leaf members; internal nodes derive from children
	center      int
	radius      D
	depth       int
	cardinality int

	// reference is the index the node's center is encoded against: the
	// parent's center, or the center itself at the root.
	reference int

	children []*SquishyBall[D]
}

// Center returns the dataset index of the cluster's center instance.
func (s *SquishyBall[D]) Center() int { return s.center }

// Radius returns the maximum distance from the center to any member.
func (s *SquishyBall[D]) Radius() D { return s.radius }

// Depth returns the node's depth; the root has depth 0.
func (s *SquishyBall[D]) Depth() int { return s.depth }

// Cardinality returns the number of member instances.
func (s *SquishyBall[D]) Cardinality() int { return s.cardinality }

// Reference returns the index the node's center is encoded against.
func (s *SquishyBall[D]) Reference() int { return s.reference }

// IsLeaf reports whether the node has no children.
func (s *SquishyBall[D]) IsLeaf() bool { return len(s.children) == 0 }

// IsSingleton reports whether the cluster contains exactly one instance.
func (s *SquishyBall[D]) IsSingleton() bool { return s.cardinality == 1 }

// Children returns the node's children: nil for a leaf, two nodes otherwise.
func (s *SquishyBall[D]) Children() []*SquishyBall[D] { return s.children }

// Indices returns the member indices of the cluster.
func (s *SquishyBall[D]) Indices() []int {
	if s.IsLeaf() {
		return s.indices
	}
	out := make([]int, 0, s.cardinality)
	var walk func(*SquishyBall[D])
	walk = func(n *SquishyBall[D]) {
		if n.IsLeaf() {
			out = append(out, n.indices...)
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(s)
	return out
}

// Leaves returns the leaf clusters of the subtree in left-to-right order.
func (s *SquishyBall[D]) Leaves() []*SquishyBall[D] {
	var out []*SquishyBall[D]
	var walk func(*SquishyBall[D])
	walk = func(n *SquishyBall[D]) {
		if n.IsLeaf() {
			out = append(out, n)
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(s)
	return out
}

// Subtree returns every cluster of the subtree in preorder.
func (s *SquishyBall[D]) Subtree() []*SquishyBall[D] {
	var out []*SquishyBall[D]
	var walk func(*SquishyBall[D])
	walk = func(n *SquishyBall[D]) {
		out = append(out, n)
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(s)
	return out
}

func (s *SquishyBall[D]) String() string {
	return fmt.Sprintf("SquishyBall(depth=%d card=%d center=%d ref=%d radius=%v)",
		s.depth, s.cardinality, s.center, s.reference, s.radius)
}
