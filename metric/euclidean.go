package metric

import (
	"encoding/binary"
	"math"
)

// Compile-time check to ensure Euclidean satisfies the Codec interface.
var _ Codec[[]float32, float32] = (*Euclidean)(nil)

// Euclidean is the L2 distance between float32 vectors of equal length.
// Its codec stores a target vector as the set of positions where it differs
// from the reference, which compresses well for vectors that share most of
// their components.
type Euclidean struct{}

// NewEuclidean creates a new Euclidean distance metric.
func NewEuclidean() *Euclidean { return &Euclidean{} }

func (*Euclidean) Distance(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return float32(math.Sqrt(float64(sum)))
}

func (*Euclidean) Name() string                  { return "euclidean" }
func (*Euclidean) HasIdentity() bool             { return true }
func (*Euclidean) HasNonNegativity() bool        { return true }
func (*Euclidean) HasSymmetry() bool             { return true }
func (*Euclidean) ObeysTriangleInequality() bool { return true }
func (*Euclidean) IsExpensive() bool             { return false }

const (
	diffTagRaw   = 0 // diff carries a full copy of the target
	diffTagDelta = 1 // diff carries positional changes against the reference
)

// Encode expresses target relative to reference. When the lengths match the
// diff lists only the differing positions; otherwise it falls back to a full
// copy.
func (e *Euclidean) Encode(reference, target []float32) ([]byte, error) {
	if len(reference) != len(target) {
		return append([]byte{diffTagRaw}, e.marshal(target)...), nil
	}

	var changed int
	for i := range target {
		if math.Float32bits(target[i]) != math.Float32bits(reference[i]) {
			changed++
		}
	}

	buf := make([]byte, 1, 1+binary.MaxVarintLen64*(changed+1)+4*changed)
	buf[0] = diffTagDelta
	buf = binary.AppendUvarint(buf, uint64(changed))
	for i := range target {
		tb := math.Float32bits(target[i])
		if tb != math.Float32bits(reference[i]) {
			buf = binary.AppendUvarint(buf, uint64(i))
			buf = binary.LittleEndian.AppendUint32(buf, tb)
		}
	}
	return buf, nil
}

// Decode applies a diff produced by Encode to the reference.
func (e *Euclidean) Decode(reference []float32, diff []byte) ([]float32, error) {
	if len(diff) == 0 {
		return nil, ErrMalformedDiff
	}
	tag, body := diff[0], diff[1:]

	switch tag {
	case diffTagRaw:
		return e.UnmarshalInstance(body)
	case diffTagDelta:
		out := make([]float32, len(reference))
		copy(out, reference)
		count, n := binary.Uvarint(body)
		if n <= 0 {
			return nil, ErrMalformedDiff
		}
		body = body[n:]
		for range count {
			pos, n := binary.Uvarint(body)
			if n <= 0 {
				return nil, ErrMalformedDiff
			}
			body = body[n:]
			if int(pos) >= len(out) || len(body) < 4 {
				return nil, ErrMalformedDiff
			}
			out[pos] = math.Float32frombits(binary.LittleEndian.Uint32(body))
			body = body[4:]
		}
		return out, nil
	default:
		return nil, ErrMalformedDiff
	}
}

// MarshalInstance serializes a vector as a length prefix plus raw bits.
func (e *Euclidean) MarshalInstance(instance []float32) ([]byte, error) {
	return e.marshal(instance), nil
}

// UnmarshalInstance reverses MarshalInstance.
func (*Euclidean) UnmarshalInstance(data []byte) ([]float32, error) {
	length, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, ErrMalformedDiff
	}
	data = data[n:]
	if len(data) < int(length)*4 {
		return nil, ErrMalformedDiff
	}
	out := make([]float32, length)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out, nil
}

func (*Euclidean) marshal(v []float32) []byte {
	buf := binary.AppendUvarint(make([]byte, 0, binary.MaxVarintLen64+4*len(v)), uint64(len(v)))
	for _, f := range v {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}
