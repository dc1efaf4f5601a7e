package cluster

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// Validate checks the structural invariants of the whole subtree:
//
//   - every index set is non-empty and the cardinality matches it
//   - radii are non-negative and singletons are leaves
//   - children are at depth parent+1
//   - for every internal node, the children's index sets are disjoint and
//     their union equals the parent's index set
//
// A violation means the tree was corrupted after construction; searches
// assume a valid tree and do not re-check.
func (b *Ball[D]) Validate() error {
	_, err := b.validate()
	return err
}

func (b *Ball[D]) validate() (*roaring.Bitmap, error) {
	members := roaring.New()
	for _, i := range b.Indices() {
		members.Add(uint32(i))
	}

	switch {
	case members.IsEmpty():
		return nil, fmt.Errorf("cluster at depth %d: %w", b.depth, ErrEmptyIndices)
	case uint64(b.cardinality) != members.GetCardinality():
		return nil, fmt.Errorf("cluster at depth %d: cardinality %d does not match %d distinct members",
			b.depth, b.cardinality, members.GetCardinality())
	case b.radius < 0:
		return nil, fmt.Errorf("cluster at depth %d: negative radius %v", b.depth, b.radius)
	case b.IsSingleton() && !b.IsLeaf():
		return nil, fmt.Errorf("cluster at depth %d: singleton with children", b.depth)
	case !members.Contains(uint32(b.center)):
		return nil, fmt.Errorf("cluster at depth %d: center %d is not a member", b.depth, b.center)
	}

	if b.IsLeaf() {
		return members, nil
	}
	if len(b.children) != 2 {
		return nil, fmt.Errorf("cluster at depth %d: %d children, want 2", b.depth, len(b.children))
	}

	union := roaring.New()
	for _, child := range b.children {
		if child.depth != b.depth+1 {
			return nil, fmt.Errorf("cluster at depth %d: child depth %d, want %d", b.depth, child.depth, b.depth+1)
		}
		childMembers, err := child.validate()
		if err != nil {
			return nil, err
		}
		if union.Intersects(childMembers) {
			return nil, fmt.Errorf("cluster at depth %d: children share members", b.depth)
		}
		union.Or(childMembers)
	}
	if !union.Equals(members) {
		return nil, fmt.Errorf("cluster at depth %d: children do not cover parent members", b.depth)
	}
	return members, nil
}
