// Package metric defines the distance-function contract used by every other
// package in metrigo. A Metric is a pure function between two instances of an
// opaque type, annotated with the algebraic properties it guarantees. Search
// and tree construction only rely on the declared properties, never on the
// concrete instance type.
package metric

// Number is the constraint for distance values. Any ordered numeric type
// works; unsigned types are common for discrete metrics such as Hamming or
// Levenshtein distance.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Metric computes the distance between two instances of type I as a value of
// type D. Implementations must be safe for concurrent use and must not
// mutate their arguments.
//
// The boolean capability methods declare which metric-space axioms hold.
// Callers use them to decide which optimizations are sound: tree pruning
// requires ObeysTriangleInequality, the shared distance cache requires
// HasSymmetry to canonicalize its keys, and HasIdentity enables the
// distance(i,i)=0 fast path.
type Metric[I any, D Number] interface {
	// Distance returns the distance between a and b.
	Distance(a, b I) D

	// Name returns a short identifier for the metric, e.g. "levenshtein".
	Name() string

	// HasIdentity reports whether d(x,x) == 0 for all x.
	HasIdentity() bool

	// HasNonNegativity reports whether d(x,y) >= 0 for all x, y.
	HasNonNegativity() bool

	// HasSymmetry reports whether d(x,y) == d(y,x) for all x, y.
	HasSymmetry() bool

	// ObeysTriangleInequality reports whether
	// d(x,z) <= d(x,y) + d(y,z) for all x, y, z.
	ObeysTriangleInequality() bool

	// IsExpensive hints that a single distance call is costly enough that
	// callers should cache results.
	IsExpensive() bool
}

// Codec is the optional compression capability of a Metric. A Codec can
// express one instance as a byte diff against a reference instance and
// reverse the transform exactly.
//
// The round-trip law is load-bearing for compressed search:
//
//	Decode(ref, Encode(ref, x)) == x, bit for bit.
//
// MarshalInstance/UnmarshalInstance serialize a standalone instance with the
// same exactness requirement; they anchor the reference chain during
// persistence.
type Codec[I any, D Number] interface {
	Metric[I, D]

	// Encode returns a byte diff that transforms reference into target.
	Encode(reference, target I) ([]byte, error)

	// Decode applies a diff produced by Encode to the reference, yielding
	// the original target.
	Decode(reference I, diff []byte) (I, error)

	// MarshalInstance serializes a standalone instance.
	MarshalInstance(instance I) ([]byte, error)

	// UnmarshalInstance reverses MarshalInstance.
	UnmarshalInstance(data []byte) (I, error)
}
