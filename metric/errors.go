package metric

import "errors"

var (
	// ErrNoCodec is returned when an encode/decode capability is requested
	// from a metric that does not implement Codec.
	ErrNoCodec = errors.New("metric does not support encoding")

	// ErrMalformedDiff is returned when a diff cannot be applied to the
	// given reference instance.
	ErrMalformedDiff = errors.New("malformed instance diff")
)
