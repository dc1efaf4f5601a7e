// Package testutil provides testing utilities for metrigo.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating deterministic random instances and
// for computing exact search results by brute force.
//
// # Random Instance Generation
//
//	rng := testutil.NewRNG(seed)
//	seqs := rng.RandomStrings(100, 10, 30, "ACGT")
//	vecs := rng.UniformVectors(100, 8)
//
// # Exact Search (Ground Truth)
//
//	hits := testutil.ExactRange(items, m, query, radius)
//	hits := testutil.ExactKNN(items, m, query, k)
package testutil
