package metrigo_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/metrigo"
	"github.com/hupe1980/metrigo/cluster"
	"github.com/hupe1980/metrigo/metric"
	"github.com/hupe1980/metrigo/search"
	"github.com/hupe1980/metrigo/testutil"
)

func buildIndex(t *testing.T, items []string, seed uint64) *metrigo.Index[string, uint32] {
	t.Helper()

	ix, err := metrigo.New[string, uint32](items, metric.NewLevenshtein()).
		Seed(seed).
		Build()
	require.NoError(t, err)
	return ix
}

func TestBuildLifecycle(t *testing.T) {
	rng := testutil.NewRNG(61)
	items := rng.RandomStrings(50, 8, 24, "ACGT")

	ix := buildIndex(t, items, 61)

	assert.Equal(t, 50, ix.Data().Cardinality())
	require.NoError(t, ix.Tree().Validate())
	assert.Equal(t, 50, ix.Tree().Cardinality())

	for _, leaf := range ix.Tree().Leaves() {
		assert.True(t, leaf.IsSingleton() || leaf.Radius() == 0)
	}
}

func TestBuildEmptyDataset(t *testing.T) {
	_, err := metrigo.New[string, uint32](nil, metric.NewLevenshtein()).Build()
	assert.ErrorIs(t, err, metrigo.ErrConstruction)
}

func TestBuildWithCriterion(t *testing.T) {
	rng := testutil.NewRNG(67)
	items := rng.RandomStrings(64, 8, 24, "ACGT")

	ix, err := metrigo.New[string, uint32](items, metric.NewLevenshtein()).
		Seed(67).
		Criterion(cluster.MinCardinality[uint32](8)).
		Build()
	require.NoError(t, err)

	require.NoError(t, ix.Tree().Validate())
	for _, leaf := range ix.Tree().Leaves() {
		assert.Less(t, leaf.Cardinality(), 8)
	}
}

func TestIndexSearch(t *testing.T) {
	rng := testutil.NewRNG(71)
	items := rng.RandomStrings(60, 8, 24, "ACGT")
	m := metric.NewLevenshtein()

	ix := buildIndex(t, items, 71)

	query := rng.MutateString(items[7], 2, "ACGT")

	t.Run("range", func(t *testing.T) {
		want := testutil.ExactRange(items, metric.Metric[string, uint32](m), query, 6)

		got, err := ix.RangeSearch(query, 6)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("knn", func(t *testing.T) {
		want := testutil.ExactKNN(items, metric.Metric[string, uint32](m), query, 5)

		got, err := ix.KNNSearch(query, 5)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("batch", func(t *testing.T) {
		queries := rng.RandomStrings(8, 8, 24, "ACGT")
		alg := search.KnnDepthFirst[string, uint32, *cluster.Ball[uint32]]{K: 3}

		batch, err := ix.BatchSearch(alg, queries)
		require.NoError(t, err)
		require.Len(t, batch, len(queries))
		for q, query := range queries {
			assert.Equal(t, testutil.ExactKNN(items, metric.Metric[string, uint32](m), query, 3), batch[q])
		}
	})
}

// Compressed and uncompressed searches must return identical hits for every
// algorithm across a spread of radii and k values.
func TestSearchCompressionEquivalence(t *testing.T) {
	rng := testutil.NewRNG(73)
	items := rng.RandomStrings(100, 10, 40, "ACGT")

	ix := buildIndex(t, items, 73)

	cx, err := ix.Compress()
	require.NoError(t, err)
	assert.Positive(t, cx.CompressedSize())

	queries := make([]string, 0, 10)
	for i := range 10 {
		queries = append(queries, rng.MutateString(items[i*7], 4, "ACGT"))
	}

	radii := []uint32{5, 10, 100}
	ks := []int{1, 10, 100}
	require.NoError(t, ix.Verify(cx, queries, radii, ks))
}

func TestTreeFilePersistence(t *testing.T) {
	rng := testutil.NewRNG(79)
	items := rng.RandomStrings(40, 8, 24, "ACGT")

	path := filepath.Join(t.TempDir(), "tree.bin")

	first, err := metrigo.New[string, uint32](items, metric.NewLevenshtein()).
		Seed(79).
		TreeFile(path).
		Build()
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)

	// Second build resumes from the file.
	second, err := metrigo.New[string, uint32](items, metric.NewLevenshtein()).
		Seed(79).
		TreeFile(path).
		Build()
	require.NoError(t, err)

	want, got := first.Tree().Subtree(), second.Tree().Subtree()
	require.Equal(t, len(want), len(got))
	for i := range want {
		assert.Equal(t, want[i].Center(), got[i].Center())
		assert.Equal(t, want[i].Radius(), got[i].Radius())
		assert.Equal(t, want[i].Indices(), got[i].Indices())
	}
}

func TestCompressedSaveLoad(t *testing.T) {
	rng := testutil.NewRNG(83)
	items := rng.RandomStrings(50, 8, 24, "ACGT")

	ix := buildIndex(t, items, 83)
	cx, err := ix.Compress()
	require.NoError(t, err)

	dir := t.TempDir()
	treePath := filepath.Join(dir, "tree.bin")
	dataPath := filepath.Join(dir, "data.bin")
	require.NoError(t, cx.Save(treePath, dataPath))

	loaded, err := metrigo.LoadCompressed[string, uint32](treePath, dataPath, metric.NewLevenshtein())
	require.NoError(t, err)

	query := rng.MutateString(items[3], 2, "ACGT")

	want, err := cx.KNNSearch(query, 5)
	require.NoError(t, err)

	got, err := loaded.KNNSearch(query, 5)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCompressWithoutCodec(t *testing.T) {
	items := []string{"aa", "ab", "ba", "bb"}

	ix, err := metrigo.New[string, uint32](items, discreteMetric{}).Build()
	require.NoError(t, err)

	_, err = ix.Compress()
	assert.ErrorIs(t, err, metrigo.ErrCodec)
}

// discreteMetric has no codec capability.
type discreteMetric struct{}

func (discreteMetric) Distance(a, b string) uint32 {
	if a == b {
		return 0
	}
	return 1
}

func (discreteMetric) Name() string                  { return "discrete" }
func (discreteMetric) HasIdentity() bool             { return true }
func (discreteMetric) HasNonNegativity() bool        { return true }
func (discreteMetric) HasSymmetry() bool             { return true }
func (discreteMetric) ObeysTriangleInequality() bool { return true }
func (discreteMetric) IsExpensive() bool             { return false }

func TestCountingMetricThroughIndex(t *testing.T) {
	rng := testutil.NewRNG(89)
	items := rng.RandomStrings(40, 8, 24, "ACGT")

	counting := metric.NewCounting[string, uint32](metric.NewLevenshtein())
	ix, err := metrigo.New[string, uint32](items, counting).Seed(89).Build()
	require.NoError(t, err)

	counting.Enable()
	counting.ResetCount()

	_, err = ix.KNNSearch("ACGTACGT", 3)
	require.NoError(t, err)

	assert.Positive(t, counting.Count())

	counting.Disable()
	before := counting.Count()
	_, err = ix.KNNSearch("ACGTACGT", 3)
	require.NoError(t, err)
	assert.Equal(t, before, counting.Count())
}
