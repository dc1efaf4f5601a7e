package metrigo

import (
	"fmt"

	"github.com/hupe1980/metrigo/cluster"
	"github.com/hupe1980/metrigo/dataset"
	"github.com/hupe1980/metrigo/metric"
	"github.com/hupe1980/metrigo/search"
	"github.com/hupe1980/metrigo/squish"
)

// Compress builds the compressed counterpart of the index: a squashed tree
// plus a codec dataset holding the instances as per-leaf diff blocks. The
// metric must implement metric.Codec.
func (ix *Index[I, D]) Compress(optFns ...func(o *squish.CodecDataOptions)) (*Compressed[I, D], error) {
	root, data, err := squish.FromBall[I, D](ix.root, ix.data, optFns...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCodec, err)
	}

	ix.logger.Info("compressed dataset", "compressedSize", data.CompressedSize())

	return &Compressed[I, D]{data: data, root: root, logger: ix.logger}, nil
}

// Compressed is an index whose instances live in compressed form. Searches
// decode only the instances the algorithms actually touch. Safe for
// concurrent use.
type Compressed[I any, D metric.Number] struct {
	data   *squish.CodecData[I, D]
	root   *squish.SquishyBall[D]
	logger *Logger
}

// LoadCompressed restores a compressed index written by Save. The codec
// must match the one used at compression time.
func LoadCompressed[I any, D metric.Number](treePath, dataPath string, codec metric.Codec[I, D], optFns ...func(o *squish.CodecDataOptions)) (*Compressed[I, D], error) {
	root, err := squish.Load[D](treePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	data, err := squish.LoadCodecData(dataPath, codec, optFns...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return &Compressed[I, D]{data: data, root: root, logger: NoopLogger()}, nil
}

// Save writes the squashed tree and the codec dataset to the given paths.
func (cx *Compressed[I, D]) Save(treePath, dataPath string) error {
	if err := cx.root.Save(treePath); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := cx.data.Save(dataPath); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

// Data returns the codec dataset.
func (cx *Compressed[I, D]) Data() dataset.Dataset[I, D] { return cx.data }

// Tree returns the root of the squashed tree.
func (cx *Compressed[I, D]) Tree() *squish.SquishyBall[D] { return cx.root }

// CompressedSize returns the total size of the diff blocks in bytes.
func (cx *Compressed[I, D]) CompressedSize() int { return cx.data.CompressedSize() }

// RangeSearch returns every instance within radius of the query.
func (cx *Compressed[I, D]) RangeSearch(query I, radius D) ([]search.Hit[D], error) {
	return search.RnnClustered[I, D, *squish.SquishyBall[D]]{Radius: radius}.Search(cx.data, cx.root, query)
}

// KNNSearch returns the k nearest instances to the query.
func (cx *Compressed[I, D]) KNNSearch(query I, k int) ([]search.Hit[D], error) {
	return search.KnnDepthFirst[I, D, *squish.SquishyBall[D]]{K: k}.Search(cx.data, cx.root, query)
}

// Search runs an arbitrary algorithm for a single query.
func (cx *Compressed[I, D]) Search(alg search.Algorithm[I, D, *squish.SquishyBall[D]], query I) ([]search.Hit[D], error) {
	return alg.Search(cx.data, cx.root, query)
}

// BatchSearch runs an arbitrary algorithm over many queries in parallel.
func (cx *Compressed[I, D]) BatchSearch(alg search.Algorithm[I, D, *squish.SquishyBall[D]], queries []I) ([][]search.Hit[D], error) {
	return search.BatchSearch(alg, cx.data, cx.root, queries)
}

// Verify runs range search for every radius and all three k-NN algorithms
// for every k against both the uncompressed and the compressed index and
// checks that the hits agree query by query. Any disagreement is reported
// as a verification error carrying the first mismatch.
func (ix *Index[I, D]) Verify(cx *Compressed[I, D], queries []I, radii []D, ks []int) error {
	for _, radius := range radii {
		plain := search.RnnClustered[I, D, *cluster.Ball[D]]{Radius: radius}
		squashed := search.RnnClustered[I, D, *squish.SquishyBall[D]]{Radius: radius}
		if err := ix.verifyPair(cx, plain, squashed, queries); err != nil {
			return err
		}
	}
	for _, k := range ks {
		pairs := []struct {
			plain    search.Algorithm[I, D, *cluster.Ball[D]]
			squashed search.Algorithm[I, D, *squish.SquishyBall[D]]
		}{
			{search.KnnDepthFirst[I, D, *cluster.Ball[D]]{K: k}, search.KnnDepthFirst[I, D, *squish.SquishyBall[D]]{K: k}},
			{search.KnnBreadthFirst[I, D, *cluster.Ball[D]]{K: k}, search.KnnBreadthFirst[I, D, *squish.SquishyBall[D]]{K: k}},
			{search.KnnRepeatedRnn[I, D, *cluster.Ball[D]]{K: k}, search.KnnRepeatedRnn[I, D, *squish.SquishyBall[D]]{K: k}},
		}
		for _, p := range pairs {
			if err := ix.verifyPair(cx, p.plain, p.squashed, queries); err != nil {
				return err
			}
		}
	}
	return nil
}

func (ix *Index[I, D]) verifyPair(cx *Compressed[I, D], plain search.Algorithm[I, D, *cluster.Ball[D]], squashed search.Algorithm[I, D, *squish.SquishyBall[D]], queries []I) error {
	want, err := ix.BatchSearch(plain, queries)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrVerification, plain.Name(), err)
	}
	got, err := cx.BatchSearch(squashed, queries)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrVerification, squashed.Name(), err)
	}
	if err := search.VerifyHits(want, got); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrVerification, plain.Name(), err)
	}
	return nil
}
