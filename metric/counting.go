package metric

import (
	"sync"
	"sync/atomic"
)

// Compile-time checks to ensure Counting keeps the wrapped capabilities.
var _ Metric[string, uint32] = (*Counting[string, uint32])(nil)
var _ Codec[string, uint32] = (*Counting[string, uint32])(nil)

// Counting wraps a Metric and counts Distance invocations. The counter is
// shared by all goroutines using the wrapper and is mutated under a lock.
// Toggling the counter on or off is a cheap flag flip that does not replace
// the wrapped metric; counts racing with a toggle are best-effort, which is
// fine for profiling.
type Counting[I any, D Number] struct {
	inner   Metric[I, D]
	enabled atomic.Bool

	mu    sync.Mutex
	count uint64
}

// NewCounting wraps m with an enabled invocation counter.
func NewCounting[I any, D Number](m Metric[I, D]) *Counting[I, D] {
	c := &Counting[I, D]{inner: m}
	c.enabled.Store(true)
	return c
}

// Distance delegates to the wrapped metric, incrementing the counter when
// counting is enabled.
func (c *Counting[I, D]) Distance(a, b I) D {
	if c.enabled.Load() {
		c.mu.Lock()
		c.count++
		c.mu.Unlock()
	}
	return c.inner.Distance(a, b)
}

// Enable turns invocation counting on.
func (c *Counting[I, D]) Enable() { c.enabled.Store(true) }

// Disable turns invocation counting off. The counter keeps its value.
func (c *Counting[I, D]) Disable() { c.enabled.Store(false) }

// Count returns the number of counted Distance calls.
func (c *Counting[I, D]) Count() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// ResetCount zeroes the counter and returns its previous value.
func (c *Counting[I, D]) ResetCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.count
	c.count = 0
	return old
}

// Unwrap returns the wrapped metric.
func (c *Counting[I, D]) Unwrap() Metric[I, D] { return c.inner }

func (c *Counting[I, D]) Name() string                  { return c.inner.Name() }
func (c *Counting[I, D]) HasIdentity() bool             { return c.inner.HasIdentity() }
func (c *Counting[I, D]) HasNonNegativity() bool        { return c.inner.HasNonNegativity() }
func (c *Counting[I, D]) HasSymmetry() bool             { return c.inner.HasSymmetry() }
func (c *Counting[I, D]) ObeysTriangleInequality() bool { return c.inner.ObeysTriangleInequality() }
func (c *Counting[I, D]) IsExpensive() bool             { return c.inner.IsExpensive() }

// Encode delegates to the wrapped metric's codec capability.
// Returns ErrNoCodec if the wrapped metric is not a Codec.
func (c *Counting[I, D]) Encode(reference, target I) ([]byte, error) {
	if cd, ok := c.inner.(Codec[I, D]); ok {
		return cd.Encode(reference, target)
	}
	return nil, ErrNoCodec
}

// Decode delegates to the wrapped metric's codec capability.
// Returns ErrNoCodec if the wrapped metric is not a Codec.
func (c *Counting[I, D]) Decode(reference I, diff []byte) (I, error) {
	if cd, ok := c.inner.(Codec[I, D]); ok {
		return cd.Decode(reference, diff)
	}
	var zero I
	return zero, ErrNoCodec
}

// MarshalInstance delegates to the wrapped metric's codec capability.
func (c *Counting[I, D]) MarshalInstance(instance I) ([]byte, error) {
	if cd, ok := c.inner.(Codec[I, D]); ok {
		return cd.MarshalInstance(instance)
	}
	return nil, ErrNoCodec
}

// UnmarshalInstance delegates to the wrapped metric's codec capability.
func (c *Counting[I, D]) UnmarshalInstance(data []byte) (I, error) {
	if cd, ok := c.inner.(Codec[I, D]); ok {
		return cd.UnmarshalInstance(data)
	}
	var zero I
	return zero, ErrNoCodec
}
