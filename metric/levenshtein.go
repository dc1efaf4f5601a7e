package metric

import "encoding/binary"

// Compile-time check to ensure Levenshtein satisfies the Codec interface.
var _ Codec[string, uint32] = (*Levenshtein)(nil)

// Levenshtein is the edit distance between strings: the minimum number of
// single-byte insertions, deletions and substitutions that turn one string
// into the other. Its codec stores a target as the edit script against a
// reference, so near-duplicate strings compress to a handful of bytes.
type Levenshtein struct{}

// NewLevenshtein creates a new Levenshtein distance metric.
func NewLevenshtein() *Levenshtein { return &Levenshtein{} }

func (*Levenshtein) Distance(a, b string) uint32 {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return uint32(len(b))
	}
	if len(b) == 0 {
		return uint32(len(a))
	}

	prev := make([]uint32, len(b)+1)
	curr := make([]uint32, len(b)+1)
	for j := range prev {
		prev[j] = uint32(j)
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = uint32(i)
		for j := 1; j <= len(b); j++ {
			cost := uint32(1)
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func (*Levenshtein) Name() string                  { return "levenshtein" }
func (*Levenshtein) HasIdentity() bool             { return true }
func (*Levenshtein) HasNonNegativity() bool        { return true }
func (*Levenshtein) HasSymmetry() bool             { return true }
func (*Levenshtein) ObeysTriangleInequality() bool { return true }
func (*Levenshtein) IsExpensive() bool             { return true }

// Edit-script opcodes. A script is a sequence of ops applied left to right
// against the reference.
const (
	editKeep   = 0 // copy the next n reference bytes
	editDelete = 1 // skip the next n reference bytes
	editInsert = 2 // append the following n literal bytes
)

// Encode computes the minimal edit script turning reference into target via
// a full dynamic-programming backtrace. Substitutions are emitted as a
// delete plus an insert, which keeps the opcode set minimal without
// affecting the round-trip guarantee.
func (*Levenshtein) Encode(reference, target string) ([]byte, error) {
	m, n := len(reference), len(target)

	// dp[i][j] = edit distance between reference[:i] and target[:j].
	dp := make([][]uint32, m+1)
	for i := range dp {
		dp[i] = make([]uint32, n+1)
		dp[i][0] = uint32(i)
	}
	for j := 0; j <= n; j++ {
		dp[0][j] = uint32(j)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			cost := uint32(1)
			if reference[i-1] == target[j-1] {
				cost = 0
			}
			dp[i][j] = min(dp[i-1][j]+1, dp[i][j-1]+1, dp[i-1][j-1]+cost)
		}
	}

	// Backtrace from (m,n), producing ops in reverse order.
	type op struct {
		code byte
		n    int
		lit  []byte
	}
	var ops []op
	push := func(code byte, lit byte) {
		if len(ops) > 0 && ops[len(ops)-1].code == code {
			last := &ops[len(ops)-1]
			last.n++
			if code == editInsert {
				last.lit = append(last.lit, lit)
			}
			return
		}
		o := op{code: code, n: 1}
		if code == editInsert {
			o.lit = []byte{lit}
		}
		ops = append(ops, o)
	}
	i, j := m, n
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && reference[i-1] == target[j-1] && dp[i][j] == dp[i-1][j-1]:
			push(editKeep, 0)
			i--
			j--
		case i > 0 && dp[i][j] == dp[i-1][j]+1:
			push(editDelete, 0)
			i--
		case j > 0 && dp[i][j] == dp[i][j-1]+1:
			push(editInsert, target[j-1])
			j--
		default: // substitution
			push(editDelete, 0)
			push(editInsert, target[j-1])
			i--
			j--
		}
	}

	// Ops were collected reversed; serialize back to front. Inserted
	// literals were appended reversed as well.
	var buf []byte
	for k := len(ops) - 1; k >= 0; k-- {
		o := ops[k]
		buf = append(buf, o.code)
		buf = binary.AppendUvarint(buf, uint64(o.n))
		if o.code == editInsert {
			for l := len(o.lit) - 1; l >= 0; l-- {
				buf = append(buf, o.lit[l])
			}
		}
	}
	return buf, nil
}

// Decode applies an edit script produced by Encode to the reference.
func (*Levenshtein) Decode(reference string, diff []byte) (string, error) {
	var out []byte
	pos := 0
	for len(diff) > 0 {
		code := diff[0]
		count, n := binary.Uvarint(diff[1:])
		if n <= 0 {
			return "", ErrMalformedDiff
		}
		diff = diff[1+n:]

		switch code {
		case editKeep:
			if pos+int(count) > len(reference) {
				return "", ErrMalformedDiff
			}
			out = append(out, reference[pos:pos+int(count)]...)
			pos += int(count)
		case editDelete:
			if pos+int(count) > len(reference) {
				return "", ErrMalformedDiff
			}
			pos += int(count)
		case editInsert:
			if len(diff) < int(count) {
				return "", ErrMalformedDiff
			}
			out = append(out, diff[:count]...)
			diff = diff[count:]
		default:
			return "", ErrMalformedDiff
		}
	}
	return string(out), nil
}

// MarshalInstance serializes the string bytes as-is.
func (*Levenshtein) MarshalInstance(instance string) ([]byte, error) {
	return []byte(instance), nil
}

// UnmarshalInstance reverses MarshalInstance.
func (*Levenshtein) UnmarshalInstance(data []byte) (string, error) {
	return string(data), nil
}
