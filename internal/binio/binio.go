// Package binio implements the on-disk framing shared by all metrigo
// persistence: a fixed header with magic number, format version, payload kind
// and CRC32, followed by a zstd-compressed payload.
package binio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
	"os"
	"reflect"

	"github.com/klauspost/compress/zstd"
)

const (
	// MagicNumber identifies metrigo binary files (ASCII: "MGO1").
	MagicNumber = 0x4D474F31
	// Version is the current file format version.
	Version = 0x00010000

	// Payload kinds.
	KindBall        = 1
	KindSquishyBall = 2
	KindCodecData   = 3

	headerSize = 16
)

var (
	ErrInvalidMagic   = errors.New("invalid magic number")
	ErrInvalidVersion = errors.New("unsupported format version")
	ErrKindMismatch   = errors.New("unexpected payload kind")
	ErrChecksum       = errors.New("payload checksum mismatch")
)

// WriteFile frames and writes a payload to path: the payload is
// zstd-compressed, checksummed and prefixed with the header.
func WriteFile(path string, kind uint8, payload []byte) error {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	compressed := enc.EncodeAll(payload, nil)
	_ = enc.Close()

	buf := make([]byte, headerSize, headerSize+len(compressed))
	binary.LittleEndian.PutUint32(buf[0:], MagicNumber)
	binary.LittleEndian.PutUint32(buf[4:], Version)
	buf[8] = kind
	binary.LittleEndian.PutUint32(buf[12:], crc32.ChecksumIEEE(compressed))
	buf = append(buf, compressed...)

	return os.WriteFile(path, buf, 0o644)
}

// ReadFile reads a file written by WriteFile, verifying the header and
// checksum, and returns the decompressed payload.
func ReadFile(path string, kind uint8) ([]byte, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(buf) < headerSize {
		return nil, fmt.Errorf("%w: file too small", ErrInvalidMagic)
	}
	if binary.LittleEndian.Uint32(buf[0:]) != MagicNumber {
		return nil, ErrInvalidMagic
	}
	if binary.LittleEndian.Uint32(buf[4:]) != Version {
		return nil, ErrInvalidVersion
	}
	if buf[8] != kind {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrKindMismatch, buf[8], kind)
	}
	compressed := buf[headerSize:]
	if crc32.ChecksumIEEE(compressed) != binary.LittleEndian.Uint32(buf[12:]) {
		return nil, ErrChecksum
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(compressed, nil)
}

// AppendNumber serializes a numeric value as a kind byte plus 8 bytes of
// payload, preserving the exact bit pattern for all integer widths and IEEE
// floats. reflect is used so named numeric types round-trip too.
func AppendNumber(buf []byte, v any) []byte {
	rv := reflect.ValueOf(v)
	buf = append(buf, byte(rv.Kind()))
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return binary.LittleEndian.AppendUint64(buf, math.Float64bits(rv.Float()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return binary.LittleEndian.AppendUint64(buf, uint64(rv.Int()))
	default:
		return binary.LittleEndian.AppendUint64(buf, rv.Uint())
	}
}

// ReadNumber reverses AppendNumber into a value of type D, returning the
// remaining buffer.
func ReadNumber[D any](buf []byte) (D, []byte, error) {
	var zero D
	if len(buf) < 9 {
		return zero, nil, errors.New("short buffer for number")
	}
	kind := reflect.Kind(buf[0])
	bits := binary.LittleEndian.Uint64(buf[1:9])

	rv := reflect.New(reflect.TypeFor[D]()).Elem()
	if kindGroup(kind) != kindGroup(rv.Kind()) {
		return zero, nil, fmt.Errorf("number kind %d does not match target type %s", kind, rv.Type())
	}
	switch kind {
	case reflect.Float32, reflect.Float64:
		rv.SetFloat(math.Float64frombits(bits))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		rv.SetInt(int64(bits))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		rv.SetUint(bits)
	default:
		return zero, nil, fmt.Errorf("unsupported number kind %d", kind)
	}
	return rv.Interface().(D), buf[9:], nil
}

func kindGroup(k reflect.Kind) int {
	switch k {
	case reflect.Float32, reflect.Float64:
		return 1
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return 2
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return 3
	default:
		return 0
	}
}

// AppendUvarint appends v as an unsigned varint.
func AppendUvarint(buf []byte, v uint64) []byte {
	return binary.AppendUvarint(buf, v)
}

// ReadUvarint reads an unsigned varint, returning the remaining buffer.
func ReadUvarint(buf []byte) (uint64, []byte, error) {
	v, n := binary.Uvarint(buf)
	if n <= 0 {
		return 0, nil, errors.New("short buffer for uvarint")
	}
	return v, buf[n:], nil
}

// AppendBytes appends a length-prefixed byte slice.
func AppendBytes(buf, b []byte) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(b)))
	return append(buf, b...)
}

// ReadBytes reads a length-prefixed byte slice, returning the remaining
// buffer. The returned slice aliases buf.
func ReadBytes(buf []byte) ([]byte, []byte, error) {
	n, rest, err := ReadUvarint(buf)
	if err != nil {
		return nil, nil, err
	}
	if uint64(len(rest)) < n {
		return nil, nil, errors.New("short buffer for bytes")
	}
	return rest[:n], rest[n:], nil
}
