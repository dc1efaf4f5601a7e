// Package cluster implements the hierarchical partition tree (ball tree)
// over a metric-space dataset. Each node covers a subset of dataset indices
// with a center instance and a covering radius; internal nodes have exactly
// two children whose index sets partition the parent's.
package cluster

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyIndices is returned when a cluster is constructed over an
	// empty index set. This is a caller precondition violation and aborts
	// tree construction.
	ErrEmptyIndices = errors.New("cluster: candidate index set is empty")
)

// Ball is a node of the partition tree. A Ball is immutable once its subtree
// has been partitioned: searches only read it.
type Ball[D Number] struct {
	// indices holds the member indices while the node is a leaf. Internal
	// nodes derive their members from their children so the partition
	// invariant (children disjoint, union equals parent) holds by
	// construction.
	indices []int

	center      int
	radius      D
	radialIndex int // member farthest from center; first pole for a split
	depth       int
	cardinality int

	children []*Ball[D] // nil for a leaf, exactly two otherwise
}

// Center returns the dataset index of the cluster's center instance.
func (b *Ball[D]) Center() int { return b.center }

// Radius returns the maximum distance from the center to any member.
func (b *Ball[D]) Radius() D { return b.radius }

// Depth returns the node's depth; the root has depth 0.
func (b *Ball[D]) Depth() int { return b.depth }

// Cardinality returns the number of member instances.
func (b *Ball[D]) Cardinality() int { return b.cardinality }

// IsLeaf reports whether the node has no children.
func (b *Ball[D]) IsLeaf() bool { return len(b.children) == 0 }

// IsSingleton reports whether the cluster contains exactly one instance.
// Singletons are always leaves.
func (b *Ball[D]) IsSingleton() bool { return b.cardinality == 1 }

// Children returns the node's children: nil for a leaf, two nodes otherwise.
func (b *Ball[D]) Children() []*Ball[D] { return b.children }

// Indices returns the member indices of the cluster. For internal nodes the
// slice is the concatenation of the children's indices.
func (b *Ball[D]) Indices() []int {
	if b.IsLeaf() {
		return b.indices
	}
	out := make([]int, 0, b.cardinality)
	var walk func(*Ball[D])
	walk = func(n *Ball[D]) {
		if n.IsLeaf() {
			out = append(out, n.indices...)
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(b)
	return out
}

// Leaves returns the leaf clusters of the subtree in left-to-right order.
func (b *Ball[D]) Leaves() []*Ball[D] {
	var out []*Ball[D]
	var walk func(*Ball[D])
	walk = func(n *Ball[D]) {
		if n.IsLeaf() {
			out = append(out, n)
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(b)
	return out
}

// Subtree returns every cluster of the subtree in preorder.
func (b *Ball[D]) Subtree() []*Ball[D] {
	var out []*Ball[D]
	var walk func(*Ball[D])
	walk = func(n *Ball[D]) {
		out = append(out, n)
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(b)
	return out
}

// MaxDepth returns the depth of the deepest node in the subtree.
func (b *Ball[D]) MaxDepth() int {
	d := b.depth
	for _, c := range b.children {
		if cd := c.MaxDepth(); cd > d {
			d = cd
		}
	}
	return d
}

func (b *Ball[D]) String() string {
	return fmt.Sprintf("Ball(depth=%d card=%d center=%d radius=%v)", b.depth, b.cardinality, b.center, b.radius)
}
