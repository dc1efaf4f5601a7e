package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/metrigo/dataset"
	"github.com/hupe1980/metrigo/metric"
	"github.com/hupe1980/metrigo/testutil"
)

func newStringData(t *testing.T, items []string) *dataset.FlatSlice[string, uint32] {
	t.Helper()

	data, err := dataset.NewFlatSlice[string, uint32](items, metric.NewLevenshtein())
	require.NoError(t, err)
	return data
}

func buildTree[D Number](t *testing.T, data PartitionDataset[D], seed uint64) *Ball[D] {
	t.Helper()

	indices := make([]int, data.Cardinality())
	for i := range indices {
		indices[i] = i
	}
	root, err := New(data, indices, 0, seed)
	require.NoError(t, err)
	require.NoError(t, root.Partition(data, MaxDepth[D](1024), seed))
	return root
}

func TestNewCluster(t *testing.T) {
	t.Run("empty indices", func(t *testing.T) {
		data := newStringData(t, []string{"a"})

		_, err := New[uint32](data, nil, 0, 1)
		assert.ErrorIs(t, err, ErrEmptyIndices)
	})

	t.Run("singleton", func(t *testing.T) {
		data := newStringData(t, []string{"a", "b"})

		b, err := New[uint32](data, []int{1}, 3, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, b.Center())
		assert.Equal(t, uint32(0), b.Radius())
		assert.Equal(t, 3, b.Depth())
		assert.Equal(t, 1, b.Cardinality())
		assert.True(t, b.IsLeaf())
		assert.True(t, b.IsSingleton())
	})

	t.Run("radius covers all members", func(t *testing.T) {
		items := []string{"aaaa", "aaab", "abbb", "bbbb"}
		data := newStringData(t, items)

		b, err := New[uint32](data, []int{0, 1, 2, 3}, 0, 1)
		require.NoError(t, err)

		for i := range items {
			d, err := data.Distance(b.Center(), i)
			require.NoError(t, err)
			assert.LessOrEqual(t, d, b.Radius())
		}
	})
}

// Four distinct points, stopping criterion "depth < 1": exactly one split
// with both children non-empty whose union is the full index set.
func TestSingleSplitScenario(t *testing.T) {
	vectors := [][]float32{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{5, 5, 5},
	}
	data, err := dataset.NewFlatSlice[[]float32, float32](vectors, metric.NewEuclidean())
	require.NoError(t, err)

	root, err := New[float32](data, []int{0, 1, 2, 3}, 0, 42)
	require.NoError(t, err)
	require.NoError(t, root.Partition(data, MaxDepth[float32](1), 42))

	require.Len(t, root.Children(), 2)
	left, right := root.Children()[0], root.Children()[1]
	assert.True(t, left.IsLeaf())
	assert.True(t, right.IsLeaf())
	assert.Positive(t, left.Cardinality())
	assert.Positive(t, right.Cardinality())

	union := append(append([]int(nil), left.Indices()...), right.Indices()...)
	assert.ElementsMatch(t, []int{0, 1, 2, 3}, union)

	require.NoError(t, root.Validate())
}

func TestPartitionCompleteness(t *testing.T) {
	rng := testutil.NewRNG(7)
	items := rng.RandomStrings(80, 5, 20, "ACGT")
	data := newStringData(t, items)

	root := buildTree[uint32](t, data, 7)

	require.NoError(t, root.Validate())
	assert.ElementsMatch(t, data.Indices(), root.Indices())

	for _, leaf := range root.Leaves() {
		// Distinct random strings partition down to singletons; only
		// duplicate instances may share a leaf.
		if leaf.Cardinality() > 1 {
			assert.Equal(t, uint32(0), leaf.Radius())
		}
	}
}

func TestPartitionDuplicates(t *testing.T) {
	items := []string{"same", "same", "same", "same"}
	data := newStringData(t, items)

	root := buildTree[uint32](t, data, 1)

	// Identical instances cannot be separated: the root stays a leaf.
	assert.True(t, root.IsLeaf())
	assert.Equal(t, uint32(0), root.Radius())
	assert.Equal(t, 4, root.Cardinality())
}

func TestPartitionDeterminism(t *testing.T) {
	rng := testutil.NewRNG(11)
	items := rng.RandomStrings(60, 5, 15, "ACGT")

	a := buildTree[uint32](t, newStringData(t, items), 99)
	b := buildTree[uint32](t, newStringData(t, items), 99)

	as, bs := a.Subtree(), b.Subtree()
	require.Equal(t, len(as), len(bs))
	for i := range as {
		assert.Equal(t, as[i].Center(), bs[i].Center())
		assert.Equal(t, as[i].Radius(), bs[i].Radius())
		assert.Equal(t, as[i].Depth(), bs[i].Depth())
		assert.Equal(t, as[i].Cardinality(), bs[i].Cardinality())
	}
}

func TestPartitionFurther(t *testing.T) {
	rng := testutil.NewRNG(13)
	items := rng.RandomStrings(50, 5, 15, "ACGT")
	data := newStringData(t, items)

	root, err := New[uint32](data, data.Indices(), 0, 5)
	require.NoError(t, err)
	require.NoError(t, root.Partition(data, MaxDepth[uint32](2), 5))
	shallow := root.MaxDepth()
	require.LessOrEqual(t, shallow, 2)

	require.NoError(t, root.PartitionFurther(data, MaxDepth[uint32](1024), 5))

	require.NoError(t, root.Validate())
	assert.GreaterOrEqual(t, root.MaxDepth(), shallow)
	for _, leaf := range root.Leaves() {
		assert.True(t, leaf.IsSingleton() || leaf.Radius() == 0)
	}
}

func TestMinCardinalityCriterion(t *testing.T) {
	rng := testutil.NewRNG(17)
	items := rng.RandomStrings(64, 5, 15, "ACGT")
	data := newStringData(t, items)

	root, err := New[uint32](data, data.Indices(), 0, 3)
	require.NoError(t, err)
	require.NoError(t, root.Partition(data, MinCardinality[uint32](10), 3))

	require.NoError(t, root.Validate())
	for _, leaf := range root.Leaves() {
		assert.Less(t, leaf.Cardinality(), 10)
	}
}

func TestLeavesAndSubtree(t *testing.T) {
	rng := testutil.NewRNG(19)
	items := rng.RandomStrings(30, 5, 15, "ACGT")
	data := newStringData(t, items)

	root := buildTree[uint32](t, data, 23)

	leaves := root.Leaves()
	subtree := root.Subtree()
	assert.Less(t, len(leaves), len(subtree))

	var leafCount int
	for _, c := range subtree {
		if c.IsLeaf() {
			leafCount++
		}
	}
	assert.Equal(t, len(leaves), leafCount)
}

func TestChildSeedStability(t *testing.T) {
	assert.Equal(t, childSeed(42, 3, 0), childSeed(42, 3, 0))
	assert.NotEqual(t, childSeed(42, 3, 0), childSeed(42, 3, 1))
	assert.NotEqual(t, childSeed(42, 3, 0), childSeed(42, 4, 0))
}
