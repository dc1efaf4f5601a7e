package squish

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hupe1980/metrigo/dataset"
	"github.com/hupe1980/metrigo/internal/binio"
	"github.com/hupe1980/metrigo/metric"
)

// Compile-time check to ensure CodecData satisfies the Dataset interface.
var _ dataset.Dataset[string, uint32] = (*CodecData[string, uint32])(nil)

// ErrNotEncoded is returned when an index has no encoding, which means the
// store was built over a tree that did not cover that index.
var ErrNotEncoded = errors.New("index has no encoding")

// CodecError reports a failed instance decode. Decoding is lossless by
// contract, so a decode failure means the diff bytes or the reference chain
// are corrupt; it is a consistency violation, not a transient condition.
type CodecError struct {
	Index int
	cause error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("decode instance %d: %v", e.Index, e.cause)
}

func (e *CodecError) Unwrap() error { return e.cause }

// defaultDecodedCacheSize bounds the decoded-instance LRU.
const defaultDecodedCacheSize = 4096

// CodecDataOptions contains configuration options for a CodecData store.
type CodecDataOptions struct {
	// DecodedCacheSize bounds the LRU of decoded instances.
	DecodedCacheSize int

	// DistanceCache enables the index-pair distance cache, same contract
	// as the uncompressed dataset's cache.
	DistanceCache bool
}

// CodecData is a Dataset whose instances are stored as reference-relative
// byte diffs grouped into LZ4-compressed per-leaf blobs. Instances are
// decoded on demand: a lookup walks the reference chain up to the raw root
// instance, decoding each hop. Decoded instances are held in a bounded LRU.
type CodecData[I any, D Number] struct {
	codec       metric.Codec[I, D]
	cardinality int

	rootIndex    int
	rootInstance I

	blobs  [][]byte // compressed per-leaf entry groups
	leafOf []int    // instance index -> blob id

	decoded *lru.Cache[int, I]
	cache   *dataset.Cache[D] // nil when disabled
}

// entry is one encoded instance inside a leaf blob.
type entry struct {
	target    int
	reference int
	diff      []byte
}

func newCodecData[I any, D Number](codec metric.Codec[I, D], cardinality int, optFns ...func(o *CodecDataOptions)) (*CodecData[I, D], error) {
	opts := CodecDataOptions{
		DecodedCacheSize: defaultDecodedCacheSize,
		DistanceCache:    codec.IsExpensive(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	decoded, err := lru.New[int, I](opts.DecodedCacheSize)
	if err != nil {
		return nil, err
	}

	cd := &CodecData[I, D]{
		codec:       codec,
		cardinality: cardinality,
		leafOf:      make([]int, cardinality),
		decoded:     decoded,
	}
	if opts.DistanceCache {
		cd.cache = dataset.NewCache[D](codec.HasSymmetry())
	}
	return cd, nil
}

// Metric returns the codec metric backing this store.
func (c *CodecData[I, D]) Metric() metric.Metric[I, D] { return c.codec }

// Cardinality returns the number of instances.
func (c *CodecData[I, D]) Cardinality() int { return c.cardinality }

// Indices returns all valid indices.
func (c *CodecData[I, D]) Indices() []int {
	out := make([]int, c.cardinality)
	for i := range out {
		out[i] = i
	}
	return out
}

// Instance decodes and returns the instance at index i. The result is
// bit-for-bit identical to the original dataset's instance.
func (c *CodecData[I, D]) Instance(i int) (I, error) {
	if i == c.rootIndex {
		return c.rootInstance, nil
	}
	if inst, ok := c.decoded.Get(i); ok {
		return inst, nil
	}

	var zero I
	if i < 0 || i >= c.cardinality {
		return zero, &CodecError{Index: i, cause: ErrNotEncoded}
	}

	ent, err := c.lookup(i)
	if err != nil {
		return zero, &CodecError{Index: i, cause: err}
	}
	ref, err := c.Instance(ent.reference)
	if err != nil {
		return zero, err
	}
	inst, err := c.codec.Decode(ref, ent.diff)
	if err != nil {
		return zero, &CodecError{Index: i, cause: err}
	}
	c.decoded.Add(i, inst)
	return inst, nil
}

// lookup finds the encoded entry for index i inside its leaf blob.
func (c *CodecData[I, D]) lookup(i int) (entry, error) {
	blob := c.blobs[c.leafOf[i]]
	raw, err := decompressBlock(blob)
	if err != nil {
		return entry{}, err
	}
	entries, err := parseEntries(raw)
	if err != nil {
		return entry{}, err
	}
	for _, ent := range entries {
		if ent.target == i {
			return ent, nil
		}
	}
	return entry{}, ErrNotEncoded
}

// Distance returns the distance between the instances at i and j, decoding
// them on demand.
func (c *CodecData[I, D]) Distance(i, j int) (D, error) {
	var zero D
	if i == j && c.codec.HasIdentity() {
		return zero, nil
	}
	if c.cache != nil {
		if d, ok := c.cache.Get(i, j); ok {
			return d, nil
		}
	}
	a, err := c.Instance(i)
	if err != nil {
		return zero, err
	}
	b, err := c.Instance(j)
	if err != nil {
		return zero, err
	}
	d := c.codec.Distance(a, b)
	if c.cache != nil {
		c.cache.Put(i, j, d)
	}
	return d, nil
}

// BatchDistance returns the distances from instance i to every instance in js.
func (c *CodecData[I, D]) BatchDistance(i int, js []int) ([]D, error) {
	return dataset.BatchDistance[I, D](c, i, js)
}

// Pairwise returns the distance matrix over the given indices.
func (c *CodecData[I, D]) Pairwise(indices []int) ([][]D, error) {
	return dataset.Pairwise[I, D](c, indices)
}

// ChooseUnique returns up to n distinct indices sampled from candidates.
func (c *CodecData[I, D]) ChooseUnique(candidates []int, n int, seed uint64) []int {
	return dataset.ChooseUnique(candidates, n, seed)
}

// CompressedSize returns the total bytes of the stored leaf blobs.
func (c *CodecData[I, D]) CompressedSize() int {
	var total int
	for _, b := range c.blobs {
		total += len(b)
	}
	return total
}

func appendEntries(buf []byte, entries []entry) []byte {
	buf = binio.AppendUvarint(buf, uint64(len(entries)))
	for _, ent := range entries {
		buf = binio.AppendUvarint(buf, uint64(ent.target))
		buf = binio.AppendUvarint(buf, uint64(ent.reference))
		buf = binio.AppendBytes(buf, ent.diff)
	}
	return buf
}

func parseEntries(buf []byte) ([]entry, error) {
	count, buf, err := binio.ReadUvarint(buf)
	if err != nil {
		return nil, err
	}
	entries := make([]entry, 0, count)
	for range count {
		var target, reference uint64
		var diff []byte
		if target, buf, err = binio.ReadUvarint(buf); err != nil {
			return nil, err
		}
		if reference, buf, err = binio.ReadUvarint(buf); err != nil {
			return nil, err
		}
		if diff, buf, err = binio.ReadBytes(buf); err != nil {
			return nil, err
		}
		entries = append(entries, entry{
			target:    int(target),
			reference: int(reference),
			diff:      diff,
		})
	}
	return entries, nil
}
