package snapshot

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/loam-ml/datakit/internal/idx"
)

// Format constants.
const (
	MagicBytes    = "DKSN"
	FormatVersion = 1
)

// Write serializes raw to path. The archive is assembled in a temporary file
// next to path and renamed into place once fully written.
func Write(path string, raw *idx.RawSplit) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp := path + ".tmp"
	//nolint:gosec // G304: cache path is owned by this process
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}

	if err := encode(file, raw); err != nil {
		_ = file.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to publish snapshot: %w", err)
	}
	return nil
}

func encode(w io.Writer, raw *idx.RawSplit) error {
	zw := gzip.NewWriter(w)

	if _, err := zw.Write([]byte(MagicBytes)); err != nil {
		return fmt.Errorf("failed to write magic bytes: %w", err)
	}
	header := []uint32{FormatVersion, uint32(raw.N), idx.ImageSize}
	for _, field := range header {
		if err := binary.Write(zw, binary.LittleEndian, field); err != nil {
			return fmt.Errorf("failed to write header field: %w", err)
		}
	}
	if _, err := zw.Write(raw.X); err != nil {
		return fmt.Errorf("failed to write pixel data: %w", err)
	}
	if _, err := zw.Write(raw.Y); err != nil {
		return fmt.Errorf("failed to write label data: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	return nil
}

// Read loads a snapshot previously written by Write. The stored arrays come
// back byte-for-byte identical to what was written.
func Read(path string) (*idx.RawSplit, error) {
	//nolint:gosec // G304: cache path is owned by this process
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer file.Close()

	raw, err := decode(file)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return raw, nil
}

func decode(r io.Reader) (*idx.RawSplit, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer zr.Close()

	magic := make([]byte, len(MagicBytes))
	if _, err := io.ReadFull(zr, magic); err != nil {
		return nil, fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if string(magic) != MagicBytes {
		return nil, ErrInvalidMagic
	}

	var version, count, recordSize uint32
	for _, field := range []*uint32{&version, &count, &recordSize} {
		if err := binary.Read(zr, binary.LittleEndian, field); err != nil {
			return nil, fmt.Errorf("failed to read header field: %w", err)
		}
	}
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, version, FormatVersion)
	}
	if recordSize != idx.ImageSize {
		return nil, fmt.Errorf("%w: record size %d, want %d", ErrBadGeometry, recordSize, idx.ImageSize)
	}
	if count > 1<<24 {
		return nil, fmt.Errorf("record count %d exceeds sanity limit", count)
	}

	raw := &idx.RawSplit{
		X: make([]byte, int(count)*idx.ImageSize),
		Y: make([]byte, count),
		N: int(count),
	}
	if _, err := io.ReadFull(zr, raw.X); err != nil {
		return nil, fmt.Errorf("failed to read pixel data: %w", err)
	}
	if _, err := io.ReadFull(zr, raw.Y); err != nil {
		return nil, fmt.Errorf("failed to read label data: %w", err)
	}

	// The archive must end exactly after the label data.
	if _, err := io.ReadFull(zr, make([]byte, 1)); err != io.EOF {
		return nil, ErrTrailingData
	}
	return raw, nil
}

// Ensure is the cache gate: if a snapshot exists at path it is loaded and
// returned, otherwise produce is called, its result persisted to path and
// returned directly without a redundant reload. Sequential callers therefore
// parse each split at most once per cache path; concurrent callers must
// serialize externally.
func Ensure(path string, produce func() (*idx.RawSplit, error)) (*idx.RawSplit, error) {
	if _, err := os.Stat(path); err == nil {
		return Read(path)
	}

	raw, err := produce()
	if err != nil {
		return nil, err
	}
	if err := Write(path, raw); err != nil {
		return nil, err
	}
	return raw, nil
}
