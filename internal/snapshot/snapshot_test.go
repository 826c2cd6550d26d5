package snapshot

import (
	"compress/gzip"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loam-ml/datakit/internal/idx"
)

// testSplit returns a small split with non-uniform content so ordering bugs
// show up in comparisons.
func testSplit(t *testing.T, n int) *idx.RawSplit {
	t.Helper()

	raw := &idx.RawSplit{
		X: make([]byte, n*idx.ImageSize),
		Y: make([]byte, n),
		N: n,
	}
	for i := range raw.X {
		raw.X[i] = byte(i % 251)
	}
	for i := range raw.Y {
		raw.Y[i] = byte(i % 10)
	}
	return raw
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.dksn.gz")
	raw := testSplit(t, 5)

	require.NoError(t, Write(path, raw))

	got, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, raw.N, got.N)
	assert.Equal(t, raw.X, got.X, "pixel data must round-trip byte-for-byte")
	assert.Equal(t, raw.Y, got.Y, "label data must round-trip byte-for-byte")
}

func TestWrite_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mnist", "nested", "train.dksn.gz")
	require.NoError(t, Write(path, testSplit(t, 1)))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestWrite_LeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "train.dksn.gz")
	require.NoError(t, Write(path, testSplit(t, 2)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "train.dksn.gz", entries[0].Name())
}

func TestEnsure_ProducesOnceThenLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.dksn.gz")
	want := testSplit(t, 3)

	calls := 0
	produce := func() (*idx.RawSplit, error) {
		calls++
		return want, nil
	}

	first, err := Ensure(path, produce)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Same(t, want, first, "fresh produce result is returned without a reload")

	second, err := Ensure(path, produce)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second call must be a pure cache hit")
	assert.Equal(t, want.X, second.X)
	assert.Equal(t, want.Y, second.Y)
}

func TestEnsure_ProduceErrorWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.dksn.gz")

	_, err := Ensure(path, func() (*idx.RawSplit, error) {
		return nil, os.ErrDeadlineExceeded
	})
	require.ErrorIs(t, err, os.ErrDeadlineExceeded)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "failed produce must not leave a snapshot")
}

func TestRead_InvalidMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.dksn.gz")

	file, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(file)
	_, err = zw.Write([]byte("NOPE"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, file.Close())

	_, err = Read(path)
	require.ErrorIs(t, err, ErrInvalidMagic)
}

func TestRead_UnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.dksn.gz")

	file, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(file)
	_, err = zw.Write([]byte(MagicBytes))
	require.NoError(t, err)
	for _, field := range []uint32{99, 0, idx.ImageSize} {
		require.NoError(t, binary.Write(zw, binary.LittleEndian, field))
	}
	require.NoError(t, zw.Close())
	require.NoError(t, file.Close())

	_, err = Read(path)
	require.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestRead_TruncatedPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.dksn.gz")

	file, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(file)
	_, err = zw.Write([]byte(MagicBytes))
	require.NoError(t, err)
	for _, field := range []uint32{FormatVersion, 4, idx.ImageSize} {
		require.NoError(t, binary.Write(zw, binary.LittleEndian, field))
	}
	// Declares 4 records but carries only one image worth of bytes.
	_, err = zw.Write(make([]byte, idx.ImageSize))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, file.Close())

	_, err = Read(path)
	require.Error(t, err)
}

func TestRead_NotAFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.dksn.gz"))
	require.Error(t, err)
}
