package idx

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
)

// MNIST image geometry. The IDX image header declares these and they are
// validated on read.
const (
	Rows      = 28
	Cols      = 28
	ImageSize = Rows * Cols
)

const (
	imagesMagic = 0x00000803 // ubyte, 3 dimensions
	labelsMagic = 0x00000801 // ubyte, 1 dimension

	// maxRecords bounds the declared record count before any allocation
	// happens. The largest real split is 60000 records; anything in the
	// millions means a corrupted header.
	maxRecords = 1 << 24
)

// RawSplit is one dataset split as parsed from an IDX pair, before any
// normalization. X is image-major: image i occupies
// X[i*ImageSize : (i+1)*ImageSize]. Index i of X and Y always refers to the
// same example.
type RawSplit struct {
	X []byte // N*ImageSize pixel bytes
	Y []byte // N label bytes
	N int    // record count, identical across both source streams
}

// ReadPair parses a gzip-compressed IDX image/label stream pair into a
// RawSplit. Both streams are read sequentially to completion. The record
// counts declared by the two headers must agree.
func ReadPair(images, labels io.Reader) (*RawSplit, error) {
	zx, err := gzip.NewReader(images)
	if err != nil {
		return nil, fmt.Errorf("failed to open image stream: %w", err)
	}
	defer zx.Close()

	zy, err := gzip.NewReader(labels)
	if err != nil {
		return nil, fmt.Errorf("failed to open label stream: %w", err)
	}
	defer zy.Close()

	nx, err := readImageHeader(zx)
	if err != nil {
		return nil, fmt.Errorf("image header: %w", err)
	}
	ny, err := readLabelHeader(zy)
	if err != nil {
		return nil, fmt.Errorf("label header: %w", err)
	}
	if nx != ny {
		return nil, fmt.Errorf("%w: %d images, %d labels", ErrCountMismatch, nx, ny)
	}

	raw := &RawSplit{
		X: make([]byte, nx*ImageSize),
		Y: make([]byte, nx),
		N: nx,
	}
	if _, err := io.ReadFull(zx, raw.X); err != nil {
		return nil, fmt.Errorf("failed to read %d image records: %w", nx, err)
	}
	if _, err := io.ReadFull(zy, raw.Y); err != nil {
		return nil, fmt.Errorf("failed to read %d label records: %w", nx, err)
	}

	return raw, nil
}

// readImageHeader reads magic, record count and image dimensions.
func readImageHeader(r io.Reader) (int, error) {
	var h [4]uint32 // magic, count, rows, cols
	for i := range h {
		if err := binary.Read(r, binary.BigEndian, &h[i]); err != nil {
			return 0, fmt.Errorf("failed to read header field %d: %w", i, err)
		}
	}
	if h[0] != imagesMagic {
		return 0, fmt.Errorf("%w: got 0x%08X, want 0x%08X", ErrBadMagic, h[0], uint32(imagesMagic))
	}
	if h[2] != Rows || h[3] != Cols {
		return 0, fmt.Errorf("%w: got %dx%d, want %dx%d", ErrBadDimensions, h[2], h[3], Rows, Cols)
	}
	return checkCount(h[1])
}

// readLabelHeader reads magic and record count.
func readLabelHeader(r io.Reader) (int, error) {
	var magic, count uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return 0, fmt.Errorf("failed to read magic: %w", err)
	}
	if magic != labelsMagic {
		return 0, fmt.Errorf("%w: got 0x%08X, want 0x%08X", ErrBadMagic, magic, uint32(labelsMagic))
	}
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return 0, fmt.Errorf("failed to read record count: %w", err)
	}
	return checkCount(count)
}

func checkCount(count uint32) (int, error) {
	if count > maxRecords {
		return 0, fmt.Errorf("%w: %d", ErrTooManyRecords, count)
	}
	return int(count), nil
}
