package search

import (
	"fmt"

	"github.com/hupe1980/metrigo/metric"
)

// MismatchError reports the first query whose compressed and uncompressed
// search results differ. It signals a broken search-equivalence invariant,
// not an I/O failure, and is therefore a distinct type.
type MismatchError[D metric.Number] struct {
	Query        int
	Uncompressed []Hit[D]
	Compressed   []Hit[D]
}

func (e *MismatchError[D]) Error() string {
	return fmt.Sprintf("search results diverge for query %d: %d uncompressed hits vs %d compressed hits",
		e.Query, len(e.Uncompressed), len(e.Compressed))
}

// VerifyHits checks that per-query hit sets from an uncompressed and a
// compressed search are identical: same indices with the same distances.
// Hits are compared in sorted (distance, index) order, the order every
// Algorithm returns.
func VerifyHits[D metric.Number](uncompressed, compressed [][]Hit[D]) error {
	if len(uncompressed) != len(compressed) {
		return fmt.Errorf("query count mismatch: %d vs %d", len(uncompressed), len(compressed))
	}
	for q := range uncompressed {
		if !hitsEqual(uncompressed[q], compressed[q]) {
			return &MismatchError[D]{
				Query:        q,
				Uncompressed: uncompressed[q],
				Compressed:   compressed[q],
			}
		}
	}
	return nil
}

func hitsEqual[D metric.Number](a, b []Hit[D]) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
