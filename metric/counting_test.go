package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountingToggle(t *testing.T) {
	c := NewCounting[string, uint32](NewLevenshtein())

	// Counting is on by default.
	for range 5 {
		c.Distance("kitten", "sitting")
	}
	assert.Equal(t, uint64(5), c.Count())

	// ResetCount returns the pre-reset value and zeroes the counter.
	assert.Equal(t, uint64(5), c.ResetCount())
	assert.Equal(t, uint64(0), c.Count())

	// Disabling freezes the counter across further calls.
	c.Enable()
	c.Distance("a", "b")
	c.Disable()
	c.Distance("a", "b")
	c.Distance("a", "b")
	assert.Equal(t, uint64(1), c.Count())
}

func TestCountingForwardsCapabilities(t *testing.T) {
	inner := NewLevenshtein()
	c := NewCounting[string, uint32](inner)

	assert.Equal(t, inner.Name(), c.Name())
	assert.Equal(t, inner.HasIdentity(), c.HasIdentity())
	assert.Equal(t, inner.HasSymmetry(), c.HasSymmetry())
	assert.Equal(t, inner.HasNonNegativity(), c.HasNonNegativity())
	assert.Equal(t, inner.ObeysTriangleInequality(), c.ObeysTriangleInequality())
	assert.Equal(t, inner.IsExpensive(), c.IsExpensive())
	assert.Same(t, inner, c.Unwrap())

	assert.Equal(t, inner.Distance("kitten", "sitting"), c.Distance("kitten", "sitting"))
}

func TestCountingCodecDelegation(t *testing.T) {
	c := NewCounting[string, uint32](NewLevenshtein())

	diff, err := c.Encode("kitten", "sitting")
	require.NoError(t, err)

	got, err := c.Decode("kitten", diff)
	require.NoError(t, err)
	assert.Equal(t, "sitting", got)

	data, err := c.MarshalInstance("kitten")
	require.NoError(t, err)

	got, err = c.UnmarshalInstance(data)
	require.NoError(t, err)
	assert.Equal(t, "kitten", got)
}

// nonCodec is a metric without codec support.
type nonCodec struct{}

func (nonCodec) Distance(a, b string) uint32 {
	if a == b {
		return 0
	}
	return 1
}

func (nonCodec) Name() string                  { return "discrete" }
func (nonCodec) HasIdentity() bool             { return true }
func (nonCodec) HasNonNegativity() bool        { return true }
func (nonCodec) HasSymmetry() bool             { return true }
func (nonCodec) ObeysTriangleInequality() bool { return true }
func (nonCodec) IsExpensive() bool             { return false }

func TestCountingWithoutCodec(t *testing.T) {
	c := NewCounting[string, uint32](nonCodec{})

	_, err := c.Encode("a", "b")
	assert.ErrorIs(t, err, ErrNoCodec)

	_, err = c.Decode("a", []byte{0})
	assert.ErrorIs(t, err, ErrNoCodec)
}
