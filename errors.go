package metrigo

import "errors"

// The error taxonomy of the library. Every error returned by the facade
// wraps exactly one of these sentinels, so callers can classify failures
// with errors.Is and decide whether retrying makes sense:
//
//   - ErrConstruction: invalid inputs to tree building (e.g. an empty
//     candidate index set). Not retryable; the inputs are wrong.
//   - ErrPersistence: an underlying read/write failed. Retryable, or the
//     caller may rebuild from scratch.
//   - ErrCodec: an instance failed to encode or decode. A decode failure
//     breaks the lossless round-trip invariant and is not retryable.
//   - ErrVerification: compressed and uncompressed search results differ.
//     A correctness-check failure, deliberately distinct from I/O errors.
var (
	ErrConstruction = errors.New("metrigo: construction error")
	ErrPersistence  = errors.New("metrigo: persistence error")
	ErrCodec        = errors.New("metrigo: codec error")
	ErrVerification = errors.New("metrigo: verification mismatch")
)
