package squish

import (
	"encoding/binary"
	"errors"

	"github.com/pierrec/lz4/v4"
)

// Leaf blobs are LZ4 block compressed with an 8-byte header:
// [UncompressedSize uint32][CompressedSize uint32][Data...].
// CompressedSize == 0 means the data is stored uncompressed, which happens
// when the blob is incompressible and compression would not pay for itself.
const blockHeaderSize = 8

var errBadBlock = errors.New("malformed compressed block")

func compressBlock(data []byte) []byte {
	bound := lz4.CompressBlockBound(len(data))
	compressed := make([]byte, bound)
	n, err := lz4.CompressBlock(data, compressed, nil)

	if err != nil || n == 0 || float64(n) > float64(len(data))*0.9 {
		// Incompressible; store raw.
		out := make([]byte, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(out[4:], 0)
		copy(out[blockHeaderSize:], data)
		return out
	}

	out := make([]byte, blockHeaderSize+n)
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[4:], uint32(n))
	copy(out[blockHeaderSize:], compressed[:n])
	return out
}

func decompressBlock(block []byte) ([]byte, error) {
	if len(block) < blockHeaderSize {
		return nil, errBadBlock
	}
	uncompressedSize := binary.LittleEndian.Uint32(block[0:])
	compressedSize := binary.LittleEndian.Uint32(block[4:])
	body := block[blockHeaderSize:]

	if compressedSize == 0 {
		if uint32(len(body)) < uncompressedSize {
			return nil, errBadBlock
		}
		return body[:uncompressedSize], nil
	}

	if uint32(len(body)) < compressedSize {
		return nil, errBadBlock
	}
	out := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(body[:compressedSize], out)
	if err != nil {
		return nil, err
	}
	if uint32(n) != uncompressedSize {
		return nil, errBadBlock
	}
	return out, nil
}
