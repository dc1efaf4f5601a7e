package squish

import (
	"fmt"

	"github.com/hupe1980/metrigo/internal/binio"
	"github.com/hupe1980/metrigo/metric"
)

// Save writes the subtree to path. Load reproduces a structurally identical
// tree; the byte layout is an internal detail.
func (s *SquishyBall[D]) Save(path string) error {
	return binio.WriteFile(path, binio.KindSquishyBall, s.appendTo(nil))
}

// Load reads a tree written by Save.
func Load[D Number](path string) (*SquishyBall[D], error) {
	payload, err := binio.ReadFile(path, binio.KindSquishyBall)
	if err != nil {
		return nil, err
	}
	s, rest, err := readSquishy[D](payload, 0)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("trailing bytes after tree payload")
	}
	return s, nil
}

func (s *SquishyBall[D]) appendTo(buf []byte) []byte {
	var flags byte
	if s.IsLeaf() {
		flags |= 1
	}
	buf = append(buf, flags)
	buf = binio.AppendUvarint(buf, uint64(s.center))
	buf = binio.AppendUvarint(buf, uint64(s.reference))
	buf = binio.AppendNumber(buf, s.radius)
	if s.IsLeaf() {
		buf = binio.AppendUvarint(buf, uint64(len(s.indices)))
		for _, i := range s.indices {
			buf = binio.AppendUvarint(buf, uint64(i))
		}
		return buf
	}
	for _, c := range s.children {
		buf = c.appendTo(buf)
	}
	return buf
}

func readSquishy[D Number](buf []byte, depth int) (*SquishyBall[D], []byte, error) {
	if len(buf) == 0 {
		return nil, nil, fmt.Errorf("truncated tree payload")
	}
	flags := buf[0]
	buf = buf[1:]

	s := &SquishyBall[D]{depth: depth}
	var v uint64
	var err error
	if v, buf, err = binio.ReadUvarint(buf); err != nil {
		return nil, nil, err
	}
	s.center = int(v)
	if v, buf, err = binio.ReadUvarint(buf); err != nil {
		return nil, nil, err
	}
	s.reference = int(v)
	if s.radius, buf, err = binio.ReadNumber[D](buf); err != nil {
		return nil, nil, err
	}

	if flags&1 != 0 {
		var count uint64
		if count, buf, err = binio.ReadUvarint(buf); err != nil {
			return nil, nil, err
		}
		s.indices = make([]int, count)
		for i := range s.indices {
			if v, buf, err = binio.ReadUvarint(buf); err != nil {
				return nil, nil, err
			}
			s.indices[i] = int(v)
		}
		s.cardinality = len(s.indices)
		return s, buf, nil
	}

	left, buf, err := readSquishy[D](buf, depth+1)
	if err != nil {
		return nil, nil, err
	}
	right, buf, err := readSquishy[D](buf, depth+1)
	if err != nil {
		return nil, nil, err
	}
	s.children = []*SquishyBall[D]{left, right}
	s.cardinality = left.cardinality + right.cardinality
	return s, buf, nil
}

// Save writes the store to path. The diff blobs are written as-is; the
// store's caches are not persisted.
func (c *CodecData[I, D]) Save(path string) error {
	rootBytes, err := c.codec.MarshalInstance(c.rootInstance)
	if err != nil {
		return err
	}

	var buf []byte
	buf = binio.AppendUvarint(buf, uint64(c.cardinality))
	buf = binio.AppendUvarint(buf, uint64(c.rootIndex))
	buf = binio.AppendBytes(buf, rootBytes)
	buf = binio.AppendUvarint(buf, uint64(len(c.blobs)))
	for _, blob := range c.blobs {
		buf = binio.AppendBytes(buf, blob)
	}
	for _, id := range c.leafOf {
		buf = binio.AppendUvarint(buf, uint64(id))
	}
	return binio.WriteFile(path, binio.KindCodecData, buf)
}

// LoadCodecData reads a store written by Save. The codec must be the same
// metric the store was built with.
func LoadCodecData[I any, D Number](path string, codec metric.Codec[I, D], optFns ...func(o *CodecDataOptions)) (*CodecData[I, D], error) {
	buf, err := binio.ReadFile(path, binio.KindCodecData)
	if err != nil {
		return nil, err
	}

	cardinality, buf, err := binio.ReadUvarint(buf)
	if err != nil {
		return nil, err
	}
	cd, err := newCodecData(codec, int(cardinality), optFns...)
	if err != nil {
		return nil, err
	}

	rootIndex, buf, err := binio.ReadUvarint(buf)
	if err != nil {
		return nil, err
	}
	cd.rootIndex = int(rootIndex)

	rootBytes, buf, err := binio.ReadBytes(buf)
	if err != nil {
		return nil, err
	}
	if cd.rootInstance, err = codec.UnmarshalInstance(rootBytes); err != nil {
		return nil, err
	}

	blobCount, buf, err := binio.ReadUvarint(buf)
	if err != nil {
		return nil, err
	}
	cd.blobs = make([][]byte, blobCount)
	for i := range cd.blobs {
		var blob []byte
		if blob, buf, err = binio.ReadBytes(buf); err != nil {
			return nil, err
		}
		cd.blobs[i] = append([]byte(nil), blob...)
	}

	for i := range cd.leafOf {
		var id uint64
		if id, buf, err = binio.ReadUvarint(buf); err != nil {
			return nil, err
		}
		cd.leafOf[i] = int(id)
	}
	return cd, nil
}
