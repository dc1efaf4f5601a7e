package metric

import "encoding/binary"

// Compile-time check to ensure Hamming satisfies the Codec interface.
var _ Codec[string, uint32] = (*Hamming)(nil)

// Hamming is the Hamming distance between strings: the number of positions
// at which the bytes differ. It is a proper metric only over equal-length
// strings; when lengths differ, the extra tail of the longer string counts
// toward the distance.
type Hamming struct{}

// NewHamming creates a new Hamming distance metric.
func NewHamming() *Hamming { return &Hamming{} }

func (*Hamming) Distance(a, b string) uint32 {
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	d := uint32(len(long) - len(short))
	for i := range len(short) {
		if short[i] != long[i] {
			d++
		}
	}
	return d
}

func (*Hamming) Name() string                  { return "hamming" }
func (*Hamming) HasIdentity() bool             { return true }
func (*Hamming) HasNonNegativity() bool        { return true }
func (*Hamming) HasSymmetry() bool             { return true }
func (*Hamming) ObeysTriangleInequality() bool { return true }
func (*Hamming) IsExpensive() bool             { return false }

// Encode stores target as the positions where it differs from reference.
// Falls back to a full copy for length mismatches.
func (*Hamming) Encode(reference, target string) ([]byte, error) {
	if len(reference) != len(target) {
		buf := make([]byte, 1+len(target))
		buf[0] = diffTagRaw
		copy(buf[1:], target)
		return buf, nil
	}

	buf := []byte{diffTagDelta}
	var changes []byte
	var count uint64
	for i := range len(target) {
		if target[i] != reference[i] {
			changes = binary.AppendUvarint(changes, uint64(i))
			changes = append(changes, target[i])
			count++
		}
	}
	buf = binary.AppendUvarint(buf, count)
	return append(buf, changes...), nil
}

// Decode applies a diff produced by Encode to the reference.
func (*Hamming) Decode(reference string, diff []byte) (string, error) {
	if len(diff) == 0 {
		return "", ErrMalformedDiff
	}
	tag, body := diff[0], diff[1:]

	switch tag {
	case diffTagRaw:
		return string(body), nil
	case diffTagDelta:
		out := []byte(reference)
		count, n := binary.Uvarint(body)
		if n <= 0 {
			return "", ErrMalformedDiff
		}
		body = body[n:]
		for range count {
			pos, n := binary.Uvarint(body)
			if n <= 0 || len(body) < n+1 {
				return "", ErrMalformedDiff
			}
			body = body[n:]
			if int(pos) >= len(out) {
				return "", ErrMalformedDiff
			}
			out[pos] = body[0]
			body = body[1:]
		}
		return string(out), nil
	default:
		return "", ErrMalformedDiff
	}
}

// MarshalInstance serializes the string bytes as-is.
func (*Hamming) MarshalInstance(instance string) ([]byte, error) {
	return []byte(instance), nil
}

// UnmarshalInstance reverses MarshalInstance.
func (*Hamming) UnmarshalInstance(data []byte) (string, error) {
	return string(data), nil
}
