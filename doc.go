// Package metrigo is an embedded similarity-search library for arbitrary
// metric spaces. Given a dataset of instances and a distance function with
// declared algebraic properties, it builds a hierarchical partition tree
// (a ball tree) and answers range queries and k-nearest-neighbor queries by
// pruning subtrees with the triangle inequality instead of scanning the
// whole dataset.
//
// A second layer compresses the tree together with its dataset: every
// instance is re-expressed as a small diff against a reference instance, and
// the same search algorithms run directly over the compressed form, decoding
// instances lazily. Compression is lossless, so compressed and uncompressed
// searches return identical hits; the library can verify that equivalence
// explicitly.
//
// # Quick start
//
//	ix, err := metrigo.New[string, uint32](sequences, metric.NewLevenshtein()).
//	    Seed(42).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	hits, err := ix.RangeSearch(query, 10)
//	near, err := ix.KNNSearch(query, 5)
//
// Compress and search the compressed form:
//
//	cx, err := ix.Compress()
//	hits, err = cx.RangeSearch(query, 10)
//
// The metric, dataset, tree and search layers are all usable directly; the
// facade only wires them together. See the metric, dataset, cluster, search
// and squish packages.
package metrigo
