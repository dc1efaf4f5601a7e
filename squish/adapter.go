package squish

import (
	"fmt"

	"github.com/hupe1980/metrigo/cluster"
	"github.com/hupe1980/metrigo/dataset"
	"github.com/hupe1980/metrigo/metric"
)

// FromBall converts a finished Ball tree and its dataset into a SquishyBall
// tree plus a CodecData store. The dataset's metric must implement the Codec
// capability; metric.ErrNoCodec is returned otherwise.
//
// Reference selection follows the center chain: the root center is stored
// raw, every other cluster's center is encoded against its parent's center,
// and each remaining leaf member is encoded against its leaf's center.
// Every diff lives in the blob of the leaf that owns the index. The
// transform is non-destructive: the Ball tree and dataset are only read.
func FromBall[I any, D Number](ball *cluster.Ball[D], data dataset.Dataset[I, D], optFns ...func(o *CodecDataOptions)) (*SquishyBall[D], *CodecData[I, D], error) {
	codec, ok := data.Metric().(metric.Codec[I, D])
	if !ok {
		return nil, nil, metric.ErrNoCodec
	}

	cd, err := newCodecData(codec, data.Cardinality(), optFns...)
	if err != nil {
		return nil, nil, err
	}
	cd.rootIndex = ball.Center()
	if cd.rootInstance, err = data.Instance(ball.Center()); err != nil {
		return nil, nil, err
	}

	// First pass: pick a reference for every index. Centers claim their
	// reference at the edge to their parent; everything left is encoded
	// against its leaf's center. The root center stays raw.
	refOf := make(map[int]int, data.Cardinality())
	assignReferences(ball, ball.Center(), true, refOf)

	// Second pass: mirror the tree and emit one compressed blob per leaf.
	enc := &encoder[I, D]{data: data, codec: codec, cd: cd, refOf: refOf}
	root, err := enc.build(ball, ball.Center())
	if err != nil {
		return nil, nil, err
	}
	return root, cd, nil
}

func assignReferences[D Number](b *cluster.Ball[D], parentCenter int, isRoot bool, refOf map[int]int) {
	center := b.Center()
	if !isRoot {
		if _, done := refOf[center]; !done {
			refOf[center] = parentCenter
		}
	}
	if b.IsLeaf() {
		for _, i := range b.Indices() {
			if i == center && isRoot {
				continue
			}
			if _, done := refOf[i]; !done {
				refOf[i] = center
			}
		}
		return
	}
	for _, child := range b.Children() {
		assignReferences(child, center, false, refOf)
	}
}

type encoder[I any, D Number] struct {
	data  dataset.Dataset[I, D]
	codec metric.Codec[I, D]
	cd    *CodecData[I, D]
	refOf map[int]int
}

func (e *encoder[I, D]) build(b *cluster.Ball[D], parentCenter int) (*SquishyBall[D], error) {
	s := &SquishyBall[D]{
		center:      b.Center(),
		radius:      b.Radius(),
		depth:       b.Depth(),
		cardinality: b.Cardinality(),
		reference:   parentCenter,
	}

	if !b.IsLeaf() {
		for _, child := range b.Children() {
			sc, err := e.build(child, b.Center())
			if err != nil {
				return nil, err
			}
			s.children = append(s.children, sc)
		}
		return s, nil
	}

	s.indices = append([]int(nil), b.Indices()...)

	var entries []entry
	for _, i := range s.indices {
		ref, ok := e.refOf[i]
		if !ok {
			continue // the raw root center
		}
		diff, err := e.encode(ref, i)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{target: i, reference: ref, diff: diff})
	}

	blobID := len(e.cd.blobs)
	e.cd.blobs = append(e.cd.blobs, compressBlock(appendEntries(nil, entries)))
	for _, i := range s.indices {
		e.cd.leafOf[i] = blobID
	}
	return s, nil
}

func (e *encoder[I, D]) encode(reference, target int) ([]byte, error) {
	refInst, err := e.data.Instance(reference)
	if err != nil {
		return nil, err
	}
	targetInst, err := e.data.Instance(target)
	if err != nil {
		return nil, err
	}
	diff, err := e.codec.Encode(refInst, targetInst)
	if err != nil {
		return nil, fmt.Errorf("encode instance %d against %d: %w", target, reference, err)
	}
	return diff, nil
}
