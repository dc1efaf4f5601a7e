package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEuclideanDistance(t *testing.T) {
	m := NewEuclidean()

	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 0},
		{name: "axis aligned", a: []float32{0, 0, 0}, b: []float32{3, 0, 0}, want: 3},
		{name: "pythagorean", a: []float32{0, 0}, b: []float32{3, 4}, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, m.Distance(tt.a, tt.b), 1e-6)
			assert.InDelta(t, tt.want, m.Distance(tt.b, tt.a), 1e-6)
		})
	}
}

func TestHammingDistance(t *testing.T) {
	m := NewHamming()

	tests := []struct {
		name string
		a, b string
		want uint32
	}{
		{name: "identical", a: "ACGT", b: "ACGT", want: 0},
		{name: "one substitution", a: "ACGT", b: "ACTT", want: 1},
		{name: "all different", a: "AAAA", b: "TTTT", want: 4},
		{name: "length mismatch", a: "ACGT", b: "ACGTTT", want: 2},
		{name: "empty against word", a: "", b: "ACGT", want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Distance(tt.a, tt.b))
			assert.Equal(t, tt.want, m.Distance(tt.b, tt.a))
		})
	}
}

func TestLevenshteinDistance(t *testing.T) {
	m := NewLevenshtein()

	tests := []struct {
		name string
		a, b string
		want uint32
	}{
		{name: "identical", a: "kitten", b: "kitten", want: 0},
		{name: "classic", a: "kitten", b: "sitting", want: 3},
		{name: "insertion only", a: "abc", b: "abxc", want: 1},
		{name: "deletion only", a: "abxc", b: "abc", want: 1},
		{name: "empty against word", a: "", b: "hello", want: 5},
		{name: "both empty", a: "", b: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Distance(tt.a, tt.b))
			assert.Equal(t, tt.want, m.Distance(tt.b, tt.a))
		})
	}
}

// Every bundled metric declares the full set of metric laws. Check them on
// sampled values instead of trusting the declarations.
func TestMetricLaws(t *testing.T) {
	samples := []string{"", "A", "ACGT", "ACGTACGT", "TTTT", "ACTT", "GATTACA"}

	metrics := []Metric[string, uint32]{NewHamming(), NewLevenshtein()}

	for _, m := range metrics {
		t.Run(m.Name(), func(t *testing.T) {
			require.True(t, m.HasIdentity())
			require.True(t, m.HasSymmetry())
			require.True(t, m.HasNonNegativity())
			require.True(t, m.ObeysTriangleInequality())

			for _, x := range samples {
				assert.Zero(t, m.Distance(x, x))
				for _, y := range samples {
					assert.Equal(t, m.Distance(x, y), m.Distance(y, x))
					for _, z := range samples {
						assert.LessOrEqual(t, m.Distance(x, z), m.Distance(x, y)+m.Distance(y, z))
					}
				}
			}
		})
	}
}

func TestEuclideanCodecRoundTrip(t *testing.T) {
	m := NewEuclidean()

	tests := []struct {
		name      string
		reference []float32
		target    []float32
	}{
		{name: "identical", reference: []float32{1, 2, 3}, target: []float32{1, 2, 3}},
		{name: "single change", reference: []float32{1, 2, 3}, target: []float32{1, 9, 3}},
		{name: "all changed", reference: []float32{1, 2, 3}, target: []float32{4, 5, 6}},
		{name: "length mismatch", reference: []float32{1, 2, 3}, target: []float32{1, 2}},
		{name: "empty target", reference: []float32{1, 2, 3}, target: []float32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff, err := m.Encode(tt.reference, tt.target)
			require.NoError(t, err)

			got, err := m.Decode(tt.reference, diff)
			require.NoError(t, err)
			assert.Equal(t, tt.target, got)
		})
	}
}

func TestHammingCodecRoundTrip(t *testing.T) {
	m := NewHamming()

	tests := []struct {
		name      string
		reference string
		target    string
	}{
		{name: "identical", reference: "ACGT", target: "ACGT"},
		{name: "substitutions", reference: "ACGT", target: "TCGA"},
		{name: "length mismatch", reference: "ACGT", target: "AC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff, err := m.Encode(tt.reference, tt.target)
			require.NoError(t, err)

			got, err := m.Decode(tt.reference, diff)
			require.NoError(t, err)
			assert.Equal(t, tt.target, got)
		})
	}
}

func TestLevenshteinCodecRoundTrip(t *testing.T) {
	m := NewLevenshtein()

	tests := []struct {
		name      string
		reference string
		target    string
	}{
		{name: "identical", reference: "kitten", target: "kitten"},
		{name: "classic", reference: "kitten", target: "sitting"},
		{name: "from empty", reference: "", target: "hello"},
		{name: "to empty", reference: "hello", target: ""},
		{name: "disjoint", reference: "aaaa", target: "bbbb"},
		{name: "shared prefix", reference: "GATTACA", target: "GATTTACA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff, err := m.Encode(tt.reference, tt.target)
			require.NoError(t, err)

			got, err := m.Decode(tt.reference, diff)
			require.NoError(t, err)
			assert.Equal(t, tt.target, got)
		})
	}
}

func TestDecodeMalformedDiff(t *testing.T) {
	t.Run("euclidean", func(t *testing.T) {
		m := NewEuclidean()

		_, err := m.Decode([]float32{1, 2}, nil)
		assert.ErrorIs(t, err, ErrMalformedDiff)

		_, err = m.Decode([]float32{1, 2}, []byte{0xFF})
		assert.ErrorIs(t, err, ErrMalformedDiff)
	})

	t.Run("hamming", func(t *testing.T) {
		m := NewHamming()

		_, err := m.Decode("AC", nil)
		assert.ErrorIs(t, err, ErrMalformedDiff)

		_, err = m.Decode("AC", []byte{0xFF})
		assert.ErrorIs(t, err, ErrMalformedDiff)
	})
}

func TestMarshalInstanceRoundTrip(t *testing.T) {
	t.Run("euclidean", func(t *testing.T) {
		m := NewEuclidean()

		data, err := m.MarshalInstance([]float32{1.5, -2.25, 0})
		require.NoError(t, err)

		got, err := m.UnmarshalInstance(data)
		require.NoError(t, err)
		assert.Equal(t, []float32{1.5, -2.25, 0}, got)
	})

	t.Run("levenshtein", func(t *testing.T) {
		m := NewLevenshtein()

		data, err := m.MarshalInstance("GATTACA")
		require.NoError(t, err)

		got, err := m.UnmarshalInstance(data)
		require.NoError(t, err)
		assert.Equal(t, "GATTACA", got)
	})
}
