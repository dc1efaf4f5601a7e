package binio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.bin")
	payload := []byte("the payload to round trip")

	require.NoError(t, WriteFile(path, KindBall, payload))

	got, err := ReadFile(path, KindBall)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReadFileValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.bin")
	require.NoError(t, WriteFile(path, KindBall, []byte("payload")))

	t.Run("kind mismatch", func(t *testing.T) {
		_, err := ReadFile(path, KindCodecData)
		assert.ErrorIs(t, err, ErrKindMismatch)
	})

	t.Run("bad magic", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.bin")
		require.NoError(t, os.WriteFile(bad, []byte("garbage garbage garbage"), 0o600))

		_, err := ReadFile(bad, KindBall)
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("corrupted payload", func(t *testing.T) {
		buf, err := os.ReadFile(path)
		require.NoError(t, err)
		buf[len(buf)-1] ^= 0xFF
		corrupt := filepath.Join(dir, "corrupt.bin")
		require.NoError(t, os.WriteFile(corrupt, buf, 0o600))

		_, err = ReadFile(corrupt, KindBall)
		assert.ErrorIs(t, err, ErrChecksum)
	})
}

func TestNumberRoundTrip(t *testing.T) {
	t.Run("uint32", func(t *testing.T) {
		buf := AppendNumber(nil, uint32(4711))
		v, rest, err := ReadNumber[uint32](buf)
		require.NoError(t, err)
		assert.Equal(t, uint32(4711), v)
		assert.Empty(t, rest)
	})

	t.Run("float32", func(t *testing.T) {
		buf := AppendNumber(nil, float32(3.25))
		v, rest, err := ReadNumber[float32](buf)
		require.NoError(t, err)
		assert.Equal(t, float32(3.25), v)
		assert.Empty(t, rest)
	})

	t.Run("kind mismatch", func(t *testing.T) {
		buf := AppendNumber(nil, float32(1.5))
		_, _, err := ReadNumber[uint32](buf)
		assert.Error(t, err)
	})
}

func TestBytesRoundTrip(t *testing.T) {
	buf := AppendBytes(nil, []byte("abc"))
	buf = AppendBytes(buf, nil)

	b, rest, err := ReadBytes(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), b)

	b, rest, err = ReadBytes(rest)
	require.NoError(t, err)
	assert.Empty(t, b)
	assert.Empty(t, rest)
}
