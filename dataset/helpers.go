package dataset

import (
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/metrigo/metric"
)

// batchParallelThreshold is the job count below which batch distance
// computations stay single-threaded.
const batchParallelThreshold = 256

// BatchDistance computes the distances from instance i to every instance in
// js, fanning out across workers for large batches. Implementations of
// Dataset can delegate to it.
func BatchDistance[I any, D metric.Number](d Dataset[I, D], i int, js []int) ([]D, error) {
	out := make([]D, len(js))
	if len(js) < batchParallelThreshold {
		for n, j := range js {
			dist, err := d.Distance(i, j)
			if err != nil {
				return nil, err
			}
			out[n] = dist
		}
		return out, nil
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := (len(js) + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < len(js); start += chunk {
		end := min(start+chunk, len(js))
		g.Go(func() error {
			for n := start; n < end; n++ {
				dist, err := d.Distance(i, js[n])
				if err != nil {
					return err
				}
				out[n] = dist
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Pairwise computes the full distance matrix over the given indices, one row
// per worker task.
func Pairwise[I any, D metric.Number](d Dataset[I, D], indices []int) ([][]D, error) {
	out := make([][]D, len(indices))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for r, i := range indices {
		g.Go(func() error {
			row, err := d.BatchDistance(i, indices)
			if err != nil {
				return err
			}
			out[r] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ChooseUnique returns up to min(n, len(candidates)) distinct indices drawn
// from candidates via a seeded partial Fisher-Yates shuffle. The result is
// deterministic for a given (candidates, n, seed).
func ChooseUnique(candidates []int, n int, seed uint64) []int {
	if n <= 0 || len(candidates) == 0 {
		return nil
	}
	if n > len(candidates) {
		n = len(candidates)
	}

	rng := rand.New(rand.NewPCG(seed, uint64(len(candidates))))
	pool := make([]int, len(candidates))
	copy(pool, candidates)
	for i := range n {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
